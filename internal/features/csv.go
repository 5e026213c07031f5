package features

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pricecast-dev/pricecast/internal/model"
)

// ReadTable reads a feature table CSV. Columns are matched by header name,
// and the header must list exactly the default schema's columns.
func ReadTable(r io.Reader) ([]model.FeatureRow, error) {
	cr := csv.NewReader(r)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading feature CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var rows []model.FeatureRow
	for i, rec := range records[1:] {
		row, err := UnmarshalRow(header, rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteTable writes rows with the schema's columns as header.
func WriteTable(w io.Writer, s Schema, rows []model.FeatureRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	cols := s.Columns()
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		rec, err := MarshalRow(cols, row)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRow converts a FeatureRow to CSV fields in column order.
func MarshalRow(cols []string, row model.FeatureRow) ([]string, error) {
	rec := make([]string, len(cols))
	for i, c := range cols {
		v, err := value(row, c)
		if err != nil {
			return nil, err
		}
		rec[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return rec, nil
}

// UnmarshalRow converts CSV fields to a FeatureRow.
func UnmarshalRow(cols, record []string) (model.FeatureRow, error) {
	if len(record) != len(cols) {
		return model.FeatureRow{}, fmt.Errorf("expected %d fields, got %d", len(cols), len(record))
	}
	var row model.FeatureRow
	for i, c := range cols {
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return model.FeatureRow{}, fmt.Errorf("parsing %s %q: %w", c, record[i], err)
		}
		if err := setValue(&row, c, v); err != nil {
			return model.FeatureRow{}, err
		}
	}
	return row, nil
}

// SaveTable writes the feature table to path, overwriting it.
func SaveTable(path string, s Schema, rows []model.FeatureRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating feature table dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating feature table: %w", err)
	}
	defer f.Close()

	if err := WriteTable(f, s, rows); err != nil {
		return fmt.Errorf("writing feature table: %w", err)
	}
	return nil
}

// LoadTable reads the feature table at path.
func LoadTable(path string) ([]model.FeatureRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening feature table: %w", err)
	}
	defer f.Close()

	rows, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("reading feature table %s: %w", path, err)
	}
	return rows, nil
}

var errHeader = errors.New("feature table header does not match schema")

func checkHeader(header []string) error {
	want := DefaultSchema().Columns()
	if len(header) != len(want) {
		return fmt.Errorf("%w: got %v", errHeader, header)
	}
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		seen[h] = true
	}
	for _, c := range want {
		if !seen[c] {
			return fmt.Errorf("%w: missing %s", errHeader, c)
		}
	}
	return nil
}
