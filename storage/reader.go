package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"leadfinder/models"
	"leadfinder/utils"
)

// Classifier assigns a source label and priority to an input file.
type Classifier func(filename string) (source string, priority int)

// Reader loads scraped sheets (.csv and .xlsx) into raw batches.
type Reader struct {
	logger    *utils.Logger
	sentinels map[models.Field]string
	classify  Classifier
	skip      map[string]struct{}

	// OnError, if set, is called for every file ReadDir skips as unreadable.
	OnError func(path string, err error)
}

// NewReader creates a Reader. Cells equal to the sentinel of their column,
// ignoring case, are marked missing. Files named in skip (base names, case-insensitive)
// are ignored.
func NewReader(logger *utils.Logger, sentinels map[models.Field]string, classify Classifier, skip ...string) *Reader {
	s := make(map[string]struct{}, len(skip))
	for _, name := range skip {
		if name != "" {
			s[strings.ToLower(filepath.Base(name))] = struct{}{}
		}
	}
	return &Reader{logger: logger, sentinels: sentinels, classify: classify, skip: s}
}

// ReadDir reads every supported file in dir, in name order. A file that
// cannot be read is logged and skipped.
func (r *Reader) ReadDir(dir string) ([]*models.RawBatch, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reader: list %q: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, "~$") || !supported(name) {
			continue
		}
		if _, skip := r.skip[strings.ToLower(name)]; skip {
			r.logger.Debug("[reader] Skipping output file %s", name)
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	batches := make([]*models.RawBatch, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		batch, err := r.ReadFile(path)
		if err != nil {
			r.logger.Error("[reader] %v", err)
			if r.OnError != nil {
				r.OnError(path, err)
			}
			continue
		}
		if len(batch.Records) == 0 {
			r.logger.Warn("[reader] %s has no data rows", path)
		}
		batches = append(batches, batch)
	}

	r.logger.Info("[reader] Loaded %d of %d files from %s", len(batches), len(names), dir)
	return batches, nil
}

// ReadFile reads one .csv or .xlsx file. Only the first sheet of a
// spreadsheet is used.
func (r *Reader) ReadFile(path string) (*models.RawBatch, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("reader: unsupported file %q", path)
	}
	if err != nil {
		return nil, err
	}

	batch := r.toBatch(rows)
	batch.File = filepath.Base(path)
	if r.classify != nil {
		batch.Source, batch.Priority = r.classify(batch.File)
	} else {
		batch.Source = batch.File
	}
	r.logger.Debug("[reader] %s: %d rows, source %q", batch.File, len(batch.Records), batch.Source)
	return batch, nil
}

func (r *Reader) toBatch(rows [][]string) *models.RawBatch {
	batch := &models.RawBatch{}
	if len(rows) == 0 {
		return batch
	}

	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	columns := make(map[int]models.Field, len(header))
	for i, h := range header {
		f, ok := models.FieldForColumn(h)
		if !ok || batch.Fields.Has(f) {
			continue
		}
		columns[i] = f
		batch.Fields = batch.Fields.With(f)
	}

	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec := &models.RawRecord{}
		for i, f := range columns {
			if i >= len(row) {
				continue
			}
			c := rec.Cell(f)
			c.Value = row[i]
			if s, ok := r.sentinels[f]; ok && strings.EqualFold(strings.TrimSpace(row[i]), s) {
				c.Missing = true
			}
		}
		batch.Records = append(batch.Records, rec)
	}
	return batch
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reader: open %q: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reader: parse %q: %w", path, err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("reader: open %q: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reader: read %q: %w", path, err)
	}
	return rows, nil
}

func supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
