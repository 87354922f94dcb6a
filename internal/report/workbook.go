package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet    = "Summary"
	footprintsSheet = "Footprints"
	netsSheet       = "Nets"
)

// Workbook builds a spreadsheet with a summary, footprint and net sheet.
// The caller must Close the returned file.
func (s Scores) Workbook() (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{footprintsSheet, netsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create style: %w", err)
	}

	summary := [][]any{
		{"Board", s.Board},
		{"Footprints", len(s.Footprints)},
		{"Nets", len(s.Nets)},
		{"Spread (mm)", s.Spread},
		{"Wiring cost (mm)", s.WiringCost},
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		f.Close()
		return nil, err
	}

	fpRows := [][]any{{"Reference", "Side", "X (mm)", "Y (mm)", "Width (mm)", "Height (mm)", "Ignored", "Nets", "Wiring cost (mm)"}}
	for _, fp := range s.Footprints {
		fpRows = append(fpRows, []any{fp.ID, fp.Side.String(), fp.X, fp.Y, fp.Width, fp.Height, fp.Ignored, fp.Nets, fp.WiringCost})
	}
	netRows := [][]any{{"Net", "Footprints", "Pads", "Wiring cost (mm)"}}
	for _, n := range s.Nets {
		netRows = append(netRows, []any{n.Name, n.Footprints, n.Pads, n.WiringCost})
	}

	for sheet, rows := range map[string][][]any{footprintsSheet: fpRows, netsSheet: netRows} {
		if err := writeRows(f, sheet, rows); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// WriteWorkbook writes the workbook in xlsx format to w
func (s Scores) WriteWorkbook(w io.Writer) error {
	f, err := s.Workbook()
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// SaveWorkbook writes the workbook to path
func (s Scores) SaveWorkbook(path string) error {
	f, err := s.Workbook()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
