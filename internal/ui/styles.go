package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	ColorCyan   = lipgloss.Color("36")  // Teal - primary actions
	ColorGreen  = lipgloss.Color("35")  // Green - success
	ColorYellow = lipgloss.Color("220") // Amber - warnings
	ColorRed    = lipgloss.Color("167") // Soft red - errors
	ColorWhite  = lipgloss.Color("255") // Bright white - values
	ColorGray   = lipgloss.Color("245") // Gray - secondary text
	ColorDim    = lipgloss.Color("240") // Dim gray - muted text
)

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(ColorCyan)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(ColorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(ColorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(ColorYellow)

	// StyleError for error messages.
	StyleError = lipgloss.NewStyle().Foreground(ColorRed)

	styleBarFull  = lipgloss.NewStyle().Foreground(ColorCyan)
	styleBarEmpty = lipgloss.NewStyle().Foreground(ColorDim)
)

// Icons
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "!"
	IconInfo    = "›"
)
