package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"capig-dash-go/internal/types"
)

// Sink receives destination tables.
type Sink interface {
	WriteSheet(s *types.Sheet) error
}

const scratchSheet = "_scratch"

// reset leaves an empty sheet called name, dropping any previous content.
func (w *Workbook) reset(name string) error {
	if w == nil || w.f == nil {
		return ErrNoWorkbook
	}
	if idx, _ := w.f.GetSheetIndex(name); idx != -1 {
		// excelize keeps the last sheet of a workbook
		if w.f.SheetCount == 1 {
			if _, err := w.f.NewSheet(scratchSheet); err != nil {
				return fmt.Errorf("new sheet %s: %w", scratchSheet, err)
			}
			defer w.f.DeleteSheet(scratchSheet)
		}
		if err := w.f.DeleteSheet(name); err != nil {
			return fmt.Errorf("delete sheet %s: %w", name, err)
		}
	}
	if _, err := w.f.NewSheet(name); err != nil {
		return fmt.Errorf("new sheet %s: %w", name, err)
	}
	return nil
}

// WriteSheet clears the destination sheet and writes header plus rows, then
// applies the column number formats.
func (w *Workbook) WriteSheet(s *types.Sheet) error {
	if err := w.reset(s.Name); err != nil {
		return err
	}
	header := make([]any, len(s.Header))
	for i, h := range s.Header {
		header[i] = h
	}
	if err := w.f.SetSheetRow(s.Name, "A1", &header); err != nil {
		return fmt.Errorf("write header %s: %w", s.Name, err)
	}
	for i, r := range s.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := r
		if err := w.f.SetSheetRow(s.Name, cell, &row); err != nil {
			return fmt.Errorf("write row %s:%d: %w", s.Name, i+2, err)
		}
	}
	if len(s.Rows) == 0 || len(s.Formats) == 0 {
		return nil
	}
	styles := map[string]int{}
	for col, h := range s.Header {
		format, ok := s.Formats[h]
		if !ok {
			continue
		}
		id, ok := styles[format]
		if !ok {
			f := format
			var err error
			if id, err = w.f.NewStyle(&excelize.Style{CustomNumFmt: &f}); err != nil {
				return fmt.Errorf("style %q: %w", format, err)
			}
			styles[format] = id
		}
		top, _ := excelize.CoordinatesToCellName(col+1, 2)
		bottom, _ := excelize.CoordinatesToCellName(col+1, len(s.Rows)+1)
		if err := w.f.SetCellStyle(s.Name, top, bottom, id); err != nil {
			return fmt.Errorf("apply style %s!%s: %w", s.Name, h, err)
		}
	}
	return nil
}

// NumberFormat returns the custom number format of a written cell, "" when
// the cell has none.
func (w *Workbook) NumberFormat(sheet, cell string) (string, error) {
	id, err := w.f.GetCellStyle(sheet, cell)
	if err != nil || id == 0 {
		return "", err
	}
	st, err := w.f.GetStyle(id)
	if err != nil || st.CustomNumFmt == nil {
		return "", err
	}
	return *st.CustomNumFmt, nil
}

// Values returns the stored (unformatted) cells of sheet, header included.
func (w *Workbook) Values(sheet string) ([][]string, error) {
	rows, err := w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows %s: %w", sheet, err)
	}
	return rows, nil
}

// Save writes the workbook to path, or back to where it was opened from
// when path is empty.
func (w *Workbook) Save(path string) error {
	if w == nil || w.f == nil {
		return ErrNoWorkbook
	}
	if path == "" {
		path = w.path
	}
	if path == "" {
		return fmt.Errorf("save: no output path")
	}
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	w.path = path
	return nil
}

// Bytes serializes the workbook.
func (w *Workbook) Bytes() ([]byte, error) {
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
