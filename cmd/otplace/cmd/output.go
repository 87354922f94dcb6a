package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/OpenTraceLab/OpenTracePlace/internal/ui"
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(ui.ColorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(ui.ColorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(ui.ColorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(ui.ColorGray)
	styleKey         = lipgloss.NewStyle().Foreground(ui.ColorGray)
	styleHeader      = lipgloss.NewStyle().Foreground(ui.ColorGray).Bold(true)
)

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(ui.IconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(ui.IconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(ui.IconWarning)+" "+ui.StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(ui.IconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+ui.StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printKeyValue prints an aligned "key: value" line
func printKeyValue(w io.Writer, key string, value any) {
	fmt.Fprintf(w, "  %s %s\n", styleKey.Render(fmt.Sprintf("%-12s", key+":")), ui.StyleValue.Render(fmt.Sprint(value)))
}

// printTable renders rows under headers with a rounded border
func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ui.ColorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	fmt.Fprintln(w, t.Render())
}

// mm formats board units as millimetres
func mm(units float64) string {
	return fmt.Sprintf("%.3f mm", units/1e6)
}
