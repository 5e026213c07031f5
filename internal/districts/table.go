// Package districts holds the district code table shared by training and
// serving. Codes are assigned once, when features are built, and persisted.
package districts

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// RelPath is the table's location under a project root.
const RelPath = "models/districts.csv"

// Table is a bijective district code <-> name mapping.
type Table struct {
	entries []Entry
	byName  map[string]int
	byCode  map[int]string
}

// Build assigns codes 0..n-1 to the distinct non-empty names in sorted order.
func Build(names []string) *Table {
	distinct := make(map[string]bool)
	for _, n := range names {
		if n != "" {
			distinct[n] = true
		}
	}
	sorted := make([]string, 0, len(distinct))
	for n := range distinct {
		sorted = append(sorted, n)
	}
	slices.Sort(sorted)

	entries := make([]Entry, len(sorted))
	for i, n := range sorted {
		entries[i] = Entry{Code: i, Name: n}
	}
	t, _ := NewTable(entries)
	return t
}

// NewTable creates a Table, rejecting duplicate codes or names.
func NewTable(entries []Entry) (*Table, error) {
	byName := make(map[string]int, len(entries))
	byCode := make(map[int]string, len(entries))
	for _, e := range entries {
		if _, dup := byName[e.Name]; dup {
			return nil, fmt.Errorf("duplicate district name %q", e.Name)
		}
		if _, dup := byCode[e.Code]; dup {
			return nil, fmt.Errorf("duplicate district code %d", e.Code)
		}
		byName[e.Name] = e.Code
		byCode[e.Code] = e.Name
	}
	return &Table{entries: entries, byName: byName, byCode: byCode}, nil
}

// Load reads models/districts.csv from a project root.
func Load(projectRoot string) (*Table, error) {
	path := filepath.Join(projectRoot, RelPath)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening district table: %w", err)
	}
	defer f.Close()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, fmt.Errorf("reading district table: %w", err)
	}
	return NewTable(entries)
}

// Save writes the table to models/districts.csv, overwriting it.
func (t *Table) Save(projectRoot string) error {
	path := filepath.Join(projectRoot, RelPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating models dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating district table file: %w", err)
	}
	defer f.Close()

	if err := WriteEntries(f, t.entries); err != nil {
		return fmt.Errorf("writing district table: %w", err)
	}
	return nil
}

// Entries returns all entries in code order as stored.
func (t *Table) Entries() []Entry {
	return t.entries
}

// Len returns the number of districts.
func (t *Table) Len() int {
	return len(t.entries)
}

// Code returns the code for a district name.
func (t *Table) Code(name string) (int, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// Name returns the district name for a code.
func (t *Table) Name(code int) (string, bool) {
	n, ok := t.byCode[code]
	return n, ok
}

// Names returns district names sorted for display.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		names = append(names, e.Name)
	}
	slices.Sort(names)
	return names
}
