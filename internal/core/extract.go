package core

import "strings"

// WildcardColumn selects the implicit single column of a line-based file.
const WildcardColumn = "*"

// ExtractedColumn is one requested column pulled out of a RecordSet.
// Values keep file order and keep duplicates.
type ExtractedColumn struct {
	Name   string
	Values []string
	Found  bool
}

// ParseColumnNames splits a comma-separated list of column names. Names are
// trimmed; empty names and repeats are dropped.
func ParseColumnNames(s string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// ExtractColumns pulls each named column out of rs. It returns one
// ExtractedColumn per name, in request order, and how many were found.
//
// Header matching ignores case and surrounding or repeated whitespace.
// Blank cells are skipped. A line-based set answers only to "" or "*";
// callers wanting whole lines for any other name use Lines directly.
func ExtractColumns(rs *RecordSet, names []string) ([]ExtractedColumn, int) {
	cols := make([]ExtractedColumn, len(names))
	found := 0

	for i, name := range names {
		cols[i].Name = name

		if !rs.HasColumns() {
			if strings.TrimSpace(name) == "" || strings.TrimSpace(name) == WildcardColumn {
				cols[i].Found = true
				cols[i].Values = append([]string(nil), rs.Lines...)
				found++
			}
			continue
		}

		idx := rs.ColumnIndex(name)
		if idx < 0 {
			continue
		}
		cols[i].Found = true
		found++

		for _, row := range rs.Rows {
			if v := normalizeValue(row.Get(idx)); v != "" {
				cols[i].Values = append(cols[i].Values, v)
			}
		}
	}

	return cols, found
}

// ColumnIndex returns the position of the first header matching name, or
// -1.
func (rs *RecordSet) ColumnIndex(name string) int {
	want := normalizeHeader(name)
	if want == "" {
		return -1
	}
	for i, h := range rs.Header {
		if normalizeHeader(h) == want {
			return i
		}
	}
	return -1
}
