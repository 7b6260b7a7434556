package importer

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jpcardenas/archivador/internal/catalog"
)

const headerFill = "4F46E5"

// NotePasswordToken marks where a profile note renders the configured
// default password.
const NotePasswordToken = "{default_password}"

// Template builds the downloadable spreadsheet for a profile: a styled
// header row in the profile's column order, note lines when the profile
// has them, and one reference sheet per name-resolved column listing the
// values currently valid in the catalog. The column table is the same
// slice the validator reads, so the two cannot disagree.
func (e *Engine) Template(p *Profile, lookups *catalog.Lookups) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", p.Title); err != nil {
		return nil, fmt.Errorf("rename data sheet: %w", err)
	}

	for i, col := range p.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(p.Title, cell, col.Header); err != nil {
			return nil, fmt.Errorf("write header %q: %w", col.Header, err)
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(p.Title, name, name, col.Width); err != nil {
			return nil, fmt.Errorf("set width for column %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Border: []excelize.Border{
			{Type: "left", Style: 1, Color: "000000"},
			{Type: "right", Style: 1, Color: "000000"},
			{Type: "top", Style: 1, Color: "000000"},
			{Type: "bottom", Style: 1, Color: "000000"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(p.Columns), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(p.Title, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	if len(p.Notes) > 0 {
		if err := writeNotes(f, p.Title, p.Notes, e.defaultPassword); err != nil {
			return nil, err
		}
	}

	for _, col := range p.Columns {
		if col.Sheet == "" {
			continue
		}
		if err := addReferenceSheet(f, col.Sheet, lookups.Names(col.Lookup)); err != nil {
			return nil, err
		}
	}

	idx, err := f.GetSheetIndex(p.Title)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	return f, nil
}

// writeNotes prints italic note lines starting at A3, under one blank
// spacer row, expanding the password token with the configured default.
func writeNotes(f *excelize.File, sheet string, notes []string, password string) error {
	if err := f.SetCellValue(sheet, "A3", "Notas:"); err != nil {
		return err
	}
	for i, note := range notes {
		note = strings.ReplaceAll(note, NotePasswordToken, password)
		cell := fmt.Sprintf("A%d", 4+i)
		if err := f.SetCellValue(sheet, cell, note); err != nil {
			return err
		}
	}
	italic, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Italic: true},
	})
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A3", fmt.Sprintf("A%d", 3+len(notes)), italic)
}

// addReferenceSheet lists valid values for one column, one per row
// under a bold "Valores Disponibles" header. Re-adding a sheet that a
// previous column already created is a no-op.
func addReferenceSheet(f *excelize.File, name string, values []string) error {
	if idx, err := f.GetSheetIndex(name); err == nil && idx >= 0 {
		return nil
	}
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %q: %w", name, err)
	}
	if err := f.SetCellValue(name, "A1", "Valores Disponibles"); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", "A1", bold); err != nil {
		return err
	}
	for i, v := range values {
		if err := f.SetCellValue(name, fmt.Sprintf("A%d", 2+i), v); err != nil {
			return err
		}
	}
	return f.SetColWidth(name, "A", "A", 40)
}
