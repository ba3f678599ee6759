// Package importer loads listing catalogs and the procedures manual into the
// database. It runs from cmd/importer, the admin API and the scheduled job.
package importer

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/omriShneor/project_casa/internal/database"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// ListingWriter persists imported listings
type ListingWriter interface {
	UpsertListing(l *database.Listing) error
}

// Result summarizes one import run
type Result struct {
	File     string   `json:"file"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

type Importer struct {
	listings ListingWriter
	logger   *zap.Logger
	now      func() time.Time
}

func New(listings ListingWriter, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{listings: listings, logger: logger, now: time.Now}
}

// ImportListingsFile imports a .csv, .xlsx or .json catalog.
func (i *Importer) ImportListingsFile(path string) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".json" && ext != ".csv" && ext != ".xlsx" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	var rows []map[string]string
	var err error
	switch ext {
	case ".csv":
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		defer f.Close()
		rows, err = ReadCSV(f)
	case ".xlsx":
		rows, err = ReadXLSX(path)
	case ".json":
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		defer f.Close()
		rows, err = ReadJSON(f)
	}
	if err != nil {
		return nil, err
	}

	result := i.ImportRows(rows)
	result.File = filepath.Base(path)
	return result, nil
}

// ImportRows upserts one listing per row. Bad rows are counted and reported,
// they never abort the run.
func (i *Importer) ImportRows(rows []map[string]string) *Result {
	result := &Result{}
	for n, row := range rows {
		listing, err := ListingFromRow(row, i.now())
		if err == nil {
			err = i.listings.UpsertListing(listing)
		}
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", n+1, err))
			i.logger.Warn("skipping listing row", zap.Int("row", n+1), zap.Error(err))
			continue
		}
		result.Imported++
	}
	i.logger.Info("listings imported", zap.Int("imported", result.Imported), zap.Int("skipped", result.Skipped))
	return result
}

// ReadCSV reads a header row followed by records.
func ReadCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return tableRows(records), nil
}

// ReadXLSX reads the first sheet, whose first row is the header.
func ReadXLSX(path string) ([]map[string]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return tableRows(records), nil
}

// ReadJSON reads an array of objects. Arrays become ";"-joined values.
func ReadJSON(r io.Reader) ([]map[string]string, error) {
	var items []map[string]any
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode JSON catalog: %w", err)
	}

	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		row := make(map[string]string, len(item))
		for k, v := range item {
			row[k] = jsonValue(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func jsonValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "si"
		}
		return "no"
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, jsonValue(e))
		}
		return strings.Join(parts, ";")
	default:
		return fmt.Sprint(t)
	}
}

func tableRows(records [][]string) []map[string]string {
	if len(records) < 2 {
		return nil
	}
	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		empty := true
		for c, name := range header {
			if c < len(rec) {
				row[name] = rec[c]
				if strings.TrimSpace(rec[c]) != "" {
					empty = false
				}
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows
}

// ManualWriter persists manual chunks
type ManualWriter interface {
	SaveManualChunks(document string, chunks []database.ManualChunk) error
}

// Embedder turns text into a vector, e.g. the Ollama backend.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
