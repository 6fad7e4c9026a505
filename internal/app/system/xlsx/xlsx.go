// Package xlsx wraps excelize with the small surface the report and
// import handlers need: styled header rows, data rows, bold totals,
// and column widths sized to content. Every workbook the app emits
// goes through a Workbook so they all share one look.
package xlsx

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// minColWidth keeps narrow columns readable when content is short.
const minColWidth = 12.0

// Workbook is an in-memory xlsx file under construction.
type Workbook struct {
	f           *excelize.File
	headerStyle int
	totalStyle  int
	cellStyle   int
	sheets      int
}

// Sheet appends rows to one worksheet.
type Sheet struct {
	wb   *Workbook
	name string
	row  int
	// widest content seen per column, used by finishWidths
	widths []float64
}

// NewWorkbook creates an empty workbook with the shared styles
// registered.
func NewWorkbook() (*Workbook, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border:    thinBorder(),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}

	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: thinBorder(),
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("total style: %w", err)
	}

	cellStyle, err := f.NewStyle(&excelize.Style{Border: thinBorder()})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("cell style: %w", err)
	}

	return &Workbook{
		f:           f,
		headerStyle: headerStyle,
		totalStyle:  totalStyle,
		cellStyle:   cellStyle,
	}, nil
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
}

// AddSheet creates a named worksheet. The first sheet added replaces
// the default Sheet1.
func (wb *Workbook) AddSheet(name string) (*Sheet, error) {
	idx, err := wb.f.NewSheet(name)
	if err != nil {
		return nil, fmt.Errorf("create sheet %q: %w", name, err)
	}
	if wb.sheets == 0 {
		wb.f.DeleteSheet("Sheet1")
		wb.f.SetActiveSheet(idx)
	}
	wb.sheets++
	return &Sheet{wb: wb, name: name}, nil
}

// Header writes a styled header row and seeds the column widths.
func (s *Sheet) Header(cols []string) error {
	s.row++
	for i, col := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, s.row)
		if err != nil {
			return err
		}
		if err := s.wb.f.SetCellValue(s.name, cell, col); err != nil {
			return err
		}
		if err := s.wb.f.SetCellStyle(s.name, cell, cell, s.wb.headerStyle); err != nil {
			return err
		}
		s.observeWidth(i, col)
	}
	return nil
}

// Row writes one data row.
func (s *Sheet) Row(values ...any) error {
	return s.writeRow(values, s.wb.cellStyle)
}

// Total writes a bold row, typically the sum line under a section.
func (s *Sheet) Total(values ...any) error {
	return s.writeRow(values, s.wb.totalStyle)
}

// Blank leaves an empty row, separating sections within a sheet.
func (s *Sheet) Blank() {
	s.row++
}

func (s *Sheet) writeRow(values []any, style int) error {
	s.row++
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, s.row)
		if err != nil {
			return err
		}
		if err := s.wb.f.SetCellValue(s.name, cell, v); err != nil {
			return err
		}
		if err := s.wb.f.SetCellStyle(s.name, cell, cell, style); err != nil {
			return err
		}
		s.observeWidth(i, fmt.Sprint(v))
	}
	return nil
}

func (s *Sheet) observeWidth(col int, content string) {
	for len(s.widths) <= col {
		s.widths = append(s.widths, minColWidth)
	}
	// rough width heuristic: one unit per character plus padding
	if w := float64(len(content)) + 2; w > s.widths[col] {
		s.widths[col] = w
	}
}

func (s *Sheet) finishWidths() error {
	for i, w := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if w > 60 {
			w = 60
		}
		if err := s.wb.f.SetColWidth(s.name, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

// Bytes finalizes column widths on every sheet and serializes the
// workbook. The Workbook must not be used afterwards.
func (wb *Workbook) Bytes(sheets ...*Sheet) ([]byte, error) {
	defer wb.f.Close()
	for _, s := range sheets {
		if err := s.finishWidths(); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if err := wb.f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadRows opens an xlsx stream and returns every row of the first
// sheet as strings. Used by the expense import.
func ReadRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}
