// Package ingest reads raw registry exports into RawRecords.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pricecast-dev/pricecast/internal/model"
)

// ErrInputNotFound is returned when the input file or directory is missing.
var ErrInputNotFound = fmt.Errorf("input not found: %w", fs.ErrNotExist)

// headerProbe is the column whose presence identifies the header row.
const headerProbe = model.ColUsage

const bom = "\ufeff"

// Table is a raw source table.
type Table struct {
	Columns []string
	Records []model.RawRecord
}

// Has reports whether the source carried the named column.
func (t *Table) Has(column string) bool {
	return slices.Contains(t.Columns, column)
}

// ReadTable reads a registry CSV. When the first row is a title row (the
// second row carries the expected column names) it is skipped.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading registry CSV: %w", err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	headerIdx := 0
	if len(rows) > 1 && slices.Contains(cleanHeader(rows[1]), headerProbe) {
		headerIdx = 1
	}
	header := cleanHeader(rows[headerIdx])
	idx := columnIndex(header)

	t := &Table{Columns: header}
	for i, row := range rows[headerIdx+1:] {
		t.Records = append(t.Records, unmarshalRaw(row, idx, headerIdx+i+2))
	}
	return t, nil
}

// Open reads a registry CSV from disk.
func Open(path string) (*Table, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrInputNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Load reads a single CSV, or every CSV in a directory (in name order),
// into one table. Columns are the union seen across files.
func Load(path string) (*Table, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrInputNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return Open(path)
	}

	files, err := Scan(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CSV files in %s: %w", path, ErrInputNotFound)
	}

	merged := &Table{}
	for _, fi := range files {
		t, err := Open(fi.Path)
		if err != nil {
			return nil, err
		}
		for _, c := range t.Columns {
			if !merged.Has(c) {
				merged.Columns = append(merged.Columns, c)
			}
		}
		merged.Records = append(merged.Records, t.Records...)
	}
	return merged, nil
}

// FileInfo describes a CSV file in an input directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Scan returns the CSV files directly inside dir, sorted by name.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading input dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

func cleanHeader(row []string) []string {
	out := make([]string, len(row))
	for i, h := range row {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, bom))
	}
	return out
}

// fieldIndex holds the column position of each RawRecord field, -1 if absent.
type fieldIndex struct {
	district, txType, tradeDate, buildDate, buildingType, usage,
	remarks, unitPrice, area, transferFloor, totalFloors int
}

func columnIndex(header []string) fieldIndex {
	idx := fieldIndex{
		district:      slices.Index(header, model.ColDistrict),
		txType:        slices.Index(header, model.ColTransactionType),
		tradeDate:     slices.Index(header, model.ColTradeDate),
		buildDate:     slices.Index(header, model.ColBuildDate),
		buildingType:  slices.Index(header, model.ColBuildingType),
		usage:         slices.Index(header, model.ColUsage),
		remarks:       slices.Index(header, model.ColRemarks),
		unitPrice:     slices.Index(header, model.ColUnitPrice),
		area:          slices.Index(header, model.ColArea),
		transferFloor: slices.Index(header, model.ColTransferFloor),
		totalFloors:   slices.Index(header, model.ColTotalFloors),
	}
	// Some exports rename the building-type column; take the first *型態 one.
	if idx.buildingType < 0 {
		idx.buildingType = slices.IndexFunc(header, func(h string) bool {
			return strings.Contains(h, "型態")
		})
	}
	return idx
}

func unmarshalRaw(row []string, idx fieldIndex, line int) model.RawRecord {
	get := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	return model.RawRecord{
		Line:            line,
		District:        get(idx.district),
		TransactionType: get(idx.txType),
		TradeDate:       get(idx.tradeDate),
		BuildDate:       get(idx.buildDate),
		BuildingType:    get(idx.buildingType),
		Usage:           get(idx.usage),
		Remarks:         get(idx.remarks),
		UnitPrice:       get(idx.unitPrice),
		Area:            get(idx.area),
		TransferFloor:   get(idx.transferFloor),
		TotalFloors:     get(idx.totalFloors),
	}
}
