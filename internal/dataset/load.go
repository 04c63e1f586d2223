package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/verte-zerg/launchdash/internal/model"
	"github.com/verte-zerg/launchdash/internal/store"
)

// Column names expected in the CSV header.
const (
	ColumnSite            = "Launch Site"
	ColumnPayload         = "Payload Mass (kg)"
	ColumnClass           = "class"
	ColumnBoosterCategory = "Booster Version Category"
	ColumnFlightNumber    = "Flight Number"
	ColumnBoosterVersion  = "Booster Version"
)

var requiredColumns = []string{ColumnSite, ColumnPayload, ColumnClass, ColumnBoosterCategory}

// ParseError reports a malformed value in a tabular source.
type ParseError struct {
	Path   string
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: column %q: %v", e.Path, e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads a dataset from a CSV file or a SQLite file written by convert.
func Load(ctx context.Context, path string) (*Dataset, error) {
	if path == "" {
		return nil, fmt.Errorf("dataset path is empty")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return LoadSQLite(ctx, path)
	default:
		return LoadCSV(path)
	}
}

// LoadCSV reads launch records from a CSV file with a header row.
func LoadCSV(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only dataset.
			_ = cerr
		}
	}()
	records, err := ReadCSV(path, file)
	if err != nil {
		return nil, err
	}
	ds, err := New(path, records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// ReadCSV parses launch records from r. name is only used in error messages.
func ReadCSV(name string, r io.Reader) ([]model.LaunchRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", name, ErrEmpty)
		}
		return nil, fmt.Errorf("%s: failed to read header: %w", name, err)
	}
	cols, err := indexColumns(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var records []model.LaunchRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		line, _ := reader.FieldPos(0)
		rec, err := parseRow(row, cols)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Path = name
				pe.Line = line
				return nil, pe
			}
			return nil, err
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmpty)
	}
	return records, nil
}

type columnIndex map[string]int

func indexColumns(header []string) (columnIndex, error) {
	cols := columnIndex{}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := cols[name]; dup && name != "" {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		cols[name] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, strconv.Quote(name))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func (c columnIndex) get(row []string, name string) (string, bool) {
	idx, ok := c[name]
	if !ok || idx >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[idx]), true
}

func parseRow(row []string, cols columnIndex) (model.LaunchRecord, error) {
	var rec model.LaunchRecord
	site, _ := cols.get(row, ColumnSite)
	if site == "" {
		return rec, &ParseError{Column: ColumnSite, Err: fmt.Errorf("value is empty")}
	}
	rec.Site = site

	payloadRaw, _ := cols.get(row, ColumnPayload)
	payload, err := strconv.ParseFloat(payloadRaw, 64)
	if err != nil || math.IsNaN(payload) || math.IsInf(payload, 0) {
		return rec, &ParseError{Column: ColumnPayload, Err: fmt.Errorf("invalid number %q", payloadRaw)}
	}
	if payload < 0 {
		return rec, &ParseError{Column: ColumnPayload, Err: fmt.Errorf("negative payload %v", payload)}
	}
	rec.PayloadMassKg = payload

	classRaw, _ := cols.get(row, ColumnClass)
	class, err := parseClass(classRaw)
	if err != nil {
		return rec, &ParseError{Column: ColumnClass, Err: err}
	}
	rec.Class = class

	rec.BoosterCategory, _ = cols.get(row, ColumnBoosterCategory)
	rec.BoosterVersion, _ = cols.get(row, ColumnBoosterVersion)
	if raw, ok := cols.get(row, ColumnFlightNumber); ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return rec, &ParseError{Column: ColumnFlightNumber, Err: fmt.Errorf("invalid integer %q", raw)}
		}
		rec.FlightNumber = n
	}
	return rec, nil
}

// parseClass accepts "0"/"1" and their float spellings ("1.0").
func parseClass(raw string) (int, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid class %q", raw)
	}
	switch v {
	case model.ClassFailure:
		return model.ClassFailure, nil
	case model.ClassSuccess:
		return model.ClassSuccess, nil
	default:
		return 0, fmt.Errorf("class must be 0 or 1, got %q", raw)
	}
}

// LoadSQLite reads launch records from the launches table of a SQLite file.
func LoadSQLite(ctx context.Context, path string) (*Dataset, error) {
	st, err := store.OpenReadOnly(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			_ = cerr
		}
	}()
	records, err := st.ListLaunches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read launches from %s: %w", path, err)
	}
	ds, err := New(path, records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}
