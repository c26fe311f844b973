package core

// SourceKind tags what an ingested file can offer to the column extractor.
type SourceKind int

const (
	// KindTable is a file with a header row (spreadsheet or delimited text).
	KindTable SourceKind = iota
	// KindLines is a line-based text file with no column structure.
	KindLines
)

func (k SourceKind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindLines:
		return "lines"
	default:
		return "unknown"
	}
}

// Upload is one file received from a client.
type Upload struct {
	Name string
	Data []byte
}

// Record is one row of a tabular file. Cells are aligned to the owning
// RecordSet's Header; blank cells are empty strings, never missing.
type Record []string

// RecordSet is the ingested form of one file. Exactly one of Rows or Lines
// is populated, depending on Kind.
type RecordSet struct {
	Name   string
	Kind   SourceKind
	Header []string
	Rows   []Record
	Lines  []string
}

// HasColumns reports whether the set carries a header.
func (rs *RecordSet) HasColumns() bool {
	return rs.Kind == KindTable
}

// Len returns the number of records: data rows for tables, non-blank
// lines for text.
func (rs *RecordSet) Len() int {
	if rs.Kind == KindLines {
		return len(rs.Lines)
	}
	return len(rs.Rows)
}

// Get returns the cell at column index col, or "" when out of range.
func (r Record) Get(col int) string {
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}
