package districts

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_SortedCodes(t *testing.T) {
	tbl := Build([]string{"鼓山區", "左營區", "三民區", "左營區", "", "鼓山區"})
	require.Equal(t, 3, tbl.Len())

	// Codes follow sorted name order, independent of input order.
	want := []string{"三民區", "左營區", "鼓山區"}
	for code, name := range want {
		got, ok := tbl.Code(name)
		require.True(t, ok, name)
		assert.Equal(t, code, got, name)

		n, ok := tbl.Name(code)
		require.True(t, ok)
		assert.Equal(t, name, n)
	}

	_, ok := tbl.Code("")
	assert.False(t, ok)
}

func TestBuild_StableAcrossOrderings(t *testing.T) {
	a := Build([]string{"B", "A", "C"})
	b := Build([]string{"C", "C", "A", "B"})
	assert.Equal(t, a.Entries(), b.Entries())
}

func TestNewTable_RejectsDuplicates(t *testing.T) {
	_, err := NewTable([]Entry{{Code: 0, Name: "A"}, {Code: 1, Name: "A"}})
	assert.Error(t, err)

	_, err = NewTable([]Entry{{Code: 0, Name: "A"}, {Code: 0, Name: "B"}})
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	entries := []Entry{{Code: 0, Name: "三民區"}, {Code: 1, Name: "左營區"}}

	var buf bytes.Buffer
	require.NoError(t, WriteEntries(&buf, entries))
	assert.True(t, strings.HasPrefix(buf.String(), "district_code,district_name\n"))

	got, err := ReadEntries(&buf)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	_, err := UnmarshalEntry([]string{"x", "A"})
	assert.Error(t, err)

	_, err = UnmarshalEntry([]string{"1", ""})
	assert.Error(t, err)

	_, err = UnmarshalEntry([]string{"1"})
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	tbl := Build([]string{"前鎮區", "三民區"})
	require.NoError(t, tbl.Save(dir))

	_, err := os.Stat(filepath.Join(dir, "models", "districts.csv"))
	require.NoError(t, err)

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, tbl.Entries(), got.Entries())
	assert.Equal(t, []string{"三民區", "前鎮區"}, got.Names())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
