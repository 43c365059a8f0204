package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"

	"leadfinder/models"
)

// SheetName is the worksheet holding the combined leads.
const SheetName = "Combined Leads"

// XLSXWriter writes combined leads to a single-sheet spreadsheet. Rows are
// buffered and saved on Close.
type XLSXWriter struct {
	mu     sync.Mutex
	path   string
	file   *excelize.File
	next   int
	widths func(column string) float64
}

// NewXLSXWriter prepares a spreadsheet at path with the header row and the
// column widths given by widths.
func NewXLSXWriter(path string, widths func(column string) float64) (*XLSXWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("xlsx: create output dir: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx: name sheet: %w", err)
	}

	x := &XLSXWriter{path: path, file: f, next: 2, widths: widths}
	if err := x.writeHeader(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return x, nil
}

func (x *XLSXWriter) writeHeader() error {
	header := make([]any, len(LeadColumns))
	for i, c := range LeadColumns {
		header[i] = c
	}
	if err := x.file.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: write header: %w", err)
	}

	bold, err := x.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}
	if err := x.file.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}

	for i, c := range LeadColumns {
		if x.widths == nil {
			break
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("xlsx: column name: %w", err)
		}
		if err := x.file.SetColWidth(SheetName, col, col, x.widths(c)); err != nil {
			return fmt.Errorf("xlsx: width of %q: %w", c, err)
		}
	}

	return x.file.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// Write appends leads below the rows already written.
func (x *XLSXWriter) Write(leads []*models.Lead) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, l := range leads {
		cell, err := excelize.CoordinatesToCellName(1, x.next)
		if err != nil {
			return fmt.Errorf("xlsx: cell name: %w", err)
		}
		row := leadValues(l)
		if err := x.file.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("xlsx: write row %d: %w", x.next, err)
		}
		x.next++
	}
	return nil
}

// Close saves the spreadsheet and releases it.
func (x *XLSXWriter) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.file.SaveAs(x.path); err != nil {
		_ = x.file.Close()
		return fmt.Errorf("xlsx: save %q: %w", x.path, err)
	}
	return x.file.Close()
}

// leadValues is leadRecord with the review count kept numeric.
func leadValues(l *models.Lead) []any {
	rec := leadRecord(l)
	row := make([]any, len(rec))
	for i, v := range rec {
		row[i] = v
	}
	row[5] = l.Reviews
	return row
}

// ReadCombined reads back a spreadsheet written by XLSXWriter, returning
// its header and leads.
func ReadCombined(path string) ([]string, []*models.Lead, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("xlsx: open %q: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("xlsx: read %q: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	leads := make([]*models.Lead, 0, len(rows)-1)
	for _, rec := range rows[1:] {
		leads = append(leads, parseLeadRecord(rec))
	}
	return rows[0], leads, nil
}
