package benchmark

import (
	"sort"
	"time"
)

// Column names of the harmonized schema
const (
	ColYear                   = "year"
	ColSNI3                   = "sni_3"
	ColSizeClass              = "size_class"
	ColAntalForetag           = "antal_foretag"
	ColRorelsemarginalPct     = "rorelsemarginal_pct"
	ColNettomarginalPct       = "nettomarginal_pct"
	ColPersonalkostnadNetto   = "personalkostnad_netto_pct"
	ColPersonalkostnadPerAnst = "personalkostnad_per_anst_tkr"
)

// RequiredColumns must all be present after harmonization.
var RequiredColumns = []string{
	ColYear, ColSNI3, ColSizeClass,
	ColAntalForetag, ColRorelsemarginalPct, ColNettomarginalPct,
	ColPersonalkostnadNetto, ColPersonalkostnadPerAnst,
}

// Row is one (year, industry, size class) observation.
type Row struct {
	Year                   string `json:"year"`
	SNI3                   string `json:"sni_3"`
	SizeClass              string `json:"size_class"`
	AntalForetag           Number `json:"antal_foretag"`
	RorelsemarginalPct     Number `json:"rorelsemarginal_pct"`
	NettomarginalPct       Number `json:"nettomarginal_pct"`
	PersonalkostnadNetto   Number `json:"personalkostnad_netto_pct"`
	PersonalkostnadPerAnst Number `json:"personalkostnad_per_anst_tkr"`
}

// Key returns the segment the row belongs to
func (r Row) Key() SegmentKey {
	return SegmentKey{Year: r.Year, SNI3: r.SNI3, SizeClass: r.SizeClass}
}

// SegmentKey is the exact-match lookup key.
type SegmentKey struct {
	Year      string `json:"year"`
	SNI3      string `json:"sni_3"`
	SizeClass string `json:"size_class"`
}

// Source describes where a table was loaded from.
type Source struct {
	Path        string    `json:"path"`
	Format      string    `json:"format"`
	SizeBytes   int64     `json:"size_bytes"`
	Fingerprint string    `json:"fingerprint"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// Table is the immutable benchmark dataset. All methods are safe for
// concurrent use; none of them expose internal storage.
type Table struct {
	rows    []Row
	columns []string
	index   map[SegmentKey][]int
	source  Source
}

// NewTable builds a table from normalized rows. The rows and column list
// are copied.
func NewTable(rows []Row, columns []string, source Source) *Table {
	t := &Table{
		rows:    make([]Row, len(rows)),
		columns: make([]string, len(columns)),
		index:   make(map[SegmentKey][]int),
		source:  source,
	}
	copy(t.rows, rows)
	copy(t.columns, columns)
	for i, r := range t.rows {
		k := r.Key()
		t.index[k] = append(t.index[k], i)
	}
	return t
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns the harmonized column names, including pass-through columns.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Source returns load metadata
func (t *Table) Source() Source {
	return t.source
}

// Match returns a copy of every row whose key equals k exactly.
func (t *Table) Match(k SegmentKey) []Row {
	idx := t.index[k]
	if len(idx) == 0 {
		return nil
	}
	out := make([]Row, len(idx))
	for i, j := range idx {
		out[i] = t.rows[j]
	}
	return out
}

// Segments lists the distinct keys, optionally restricted to one year,
// sorted by year, industry and size class.
func (t *Table) Segments(year string) []SegmentKey {
	out := make([]SegmentKey, 0, len(t.index))
	for k := range t.index {
		if year != "" && k.Year != year {
			continue
		}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.SNI3 != b.SNI3 {
			return a.SNI3 < b.SNI3
		}
		return a.SizeClass < b.SizeClass
	})
	return out
}
