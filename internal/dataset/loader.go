// Package dataset reads source sheets from a workbook and writes destination
// sheets back to it.
package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"capig-dash-go/internal/label"
	"capig-dash-go/internal/table"
)

var ErrNoWorkbook = errors.New("workbook not loaded")

// Source is a set of named raw grids.
type Source interface {
	Sheets() []string
	Grid(name string) ([][]string, bool, error)
}

// Workbook is an xlsx file held in memory.
type Workbook struct {
	f    *excelize.File
	path string
}

// New returns an empty workbook.
func New() *Workbook {
	return &Workbook{f: excelize.NewFile()}
}

// Open loads the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return &Workbook{f: f, path: path}, nil
}

func (w *Workbook) Path() string { return w.path }

func (w *Workbook) Sheets() []string {
	if w == nil || w.f == nil {
		return nil
	}
	return w.f.GetSheetList()
}

// Grid returns the raw cells of sheet name. A missing sheet is reported with
// ok=false and no error.
func (w *Workbook) Grid(name string) ([][]string, bool, error) {
	if w == nil || w.f == nil {
		return nil, false, ErrNoWorkbook
	}
	if idx, err := w.f.GetSheetIndex(name); err != nil || idx == -1 {
		return nil, false, nil
	}
	rows, err := w.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, true, fmt.Errorf("read rows %s: %w", name, err)
	}
	return rows, true, nil
}

// SetGrid replaces sheet name with raw string cells.
func (w *Workbook) SetGrid(name string, grid [][]string) error {
	if err := w.reset(name); err != nil {
		return err
	}
	for i, r := range grid {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		row := make([]any, len(r))
		for j, v := range r {
			row[j] = v
		}
		if err := w.f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("set row %s:%d: %w", name, i+1, err)
		}
	}
	return nil
}

func (w *Workbook) Close() error {
	if w == nil || w.f == nil {
		return nil
	}
	return w.f.Close()
}

// Table reads the first existing sheet among candidates. When none exists the
// result is an empty table named after the first candidate.
func Table(src Source, candidates ...string) (table.Table, error) {
	for _, name := range candidates {
		grid, ok, err := src.Grid(name)
		if err != nil {
			return table.Table{}, err
		}
		if ok {
			return table.Read(name, grid), nil
		}
	}
	name := ""
	if len(candidates) > 0 {
		name = candidates[0]
	}
	return table.Read(name, nil), nil
}

// FindSheet returns the first sheet whose normalized name contains partial
// and does not contain exclude (when exclude is set).
func FindSheet(src Source, partial, exclude string) (string, bool) {
	p := label.Normalize(partial)
	x := label.Normalize(exclude)
	for _, s := range src.Sheets() {
		n := label.Normalize(s)
		if !strings.Contains(n, p) {
			continue
		}
		if x != "" && strings.Contains(n, x) {
			continue
		}
		return s, true
	}
	return "", false
}
