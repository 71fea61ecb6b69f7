package benchmark

import (
	"path/filepath"
	"strings"
)

// Source file formats
const (
	FormatParquet = "parquet"
	FormatCSV     = "csv"
	FormatXLSX    = "xlsx"
)

// frame is the untyped, string-celled table every reader produces.
// Harmonization works on frames; normalization turns a frame into Rows.
type frame struct {
	columns []string
	records [][]string
}

func newFrame(columns []string) *frame {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
	}
	return &frame{columns: cols}
}

// add appends a record, padding short records with empty cells.
func (f *frame) add(record []string) {
	row := make([]string, len(f.columns))
	copy(row, record)
	f.records = append(f.records, row)
}

// col returns the index of the first column with the given name, or -1.
func (f *frame) col(name string) int {
	for i, c := range f.columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (f *frame) has(name string) bool {
	return f.col(name) >= 0
}

func (f *frame) rename(mapping map[string]string) {
	for i, c := range f.columns {
		if to, ok := mapping[c]; ok {
			f.columns[i] = to
		}
	}
}

// copyColumn adds dst as a copy of src. It never overwrites an existing dst.
func (f *frame) copyColumn(src, dst string) bool {
	if f.has(dst) {
		return false
	}
	i := f.col(src)
	if i < 0 {
		return false
	}
	f.columns = append(f.columns, dst)
	for r := range f.records {
		f.records[r] = append(f.records[r], f.records[r][i])
	}
	return true
}

func (f *frame) columnNames() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

// formatOf maps a file name to its reader format by extension.
func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return FormatParquet
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	default:
		return ""
	}
}
