// Package runlog keeps the append-only CSV history of training runs.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one training run.
type Entry struct {
	Timestamp  time.Time
	RunID      string
	ModelID    string
	Rows       int
	TrainRows  int
	TestRows   int
	RMSE       float64
	R2         float64
	Grade      string
	CommitHash string
}

// Header is the CSV header for train-log.csv.
const Header = "timestamp,run_id,model_id,rows,train_rows,test_rows,rmse,r2,grade,commit_hash"

// RelPath is the run log's location under a project root.
const RelPath = "logs/train-log.csv"

const (
	numFields     = 10
	colTimestamp  = 0
	colRunID      = 1
	colModelID    = 2
	colRows       = 3
	colTrainRows  = 4
	colTestRows   = 5
	colRMSE       = 6
	colR2         = 7
	colGrade      = 8
	colCommitHash = 9
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colModelID] = e.ModelID
	row[colRows] = strconv.Itoa(e.Rows)
	row[colTrainRows] = strconv.Itoa(e.TrainRows)
	row[colTestRows] = strconv.Itoa(e.TestRows)
	row[colRMSE] = strconv.FormatFloat(e.RMSE, 'f', 4, 64)
	row[colR2] = strconv.FormatFloat(e.R2, 'f', 4, 64)
	row[colGrade] = e.Grade
	row[colCommitHash] = e.CommitHash
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	e := Entry{
		Timestamp:  ts,
		RunID:      record[colRunID],
		ModelID:    record[colModelID],
		Grade:      record[colGrade],
		CommitHash: record[colCommitHash],
	}
	ints := []struct {
		col int
		dst *int
	}{
		{colRows, &e.Rows},
		{colTrainRows, &e.TrainRows},
		{colTestRows, &e.TestRows},
	}
	for _, f := range ints {
		if *f.dst, err = strconv.Atoi(record[f.col]); err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[f.col], err)
		}
	}
	if e.RMSE, err = strconv.ParseFloat(record[colRMSE], 64); err != nil {
		return Entry{}, fmt.Errorf("parsing rmse %q: %w", record[colRMSE], err)
	}
	if e.R2, err = strconv.ParseFloat(record[colR2], 64); err != nil {
		return Entry{}, fmt.Errorf("parsing r2 %q: %w", record[colR2], err)
	}
	return e, nil
}

// Append writes entries to <projectRoot>/logs/train-log.csv, creating the
// file and header if needed.
func Append(projectRoot string, entries []Entry) error {
	path := filepath.Join(projectRoot, RelPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening train log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <projectRoot>/logs/train-log.csv.
// Returns an empty slice if the file does not exist.
func Read(projectRoot string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(projectRoot, RelPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening train log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

// RunIDs lists the run IDs recorded so far.
func RunIDs(projectRoot string) ([]string, error) {
	entries, err := Read(projectRoot)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.RunID
	}
	return ids, nil
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading train log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
