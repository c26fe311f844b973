package core

// ingest.go is the single seam where file kinds are told apart. Everything
// downstream consumes a RecordSet and only asks HasColumns().
//
// Supported inputs:
//
//   - .xlsx / .xlsm: first sheet, first row is the header (excelize)
//   - .tsv: tab separated text
//   - .csv: delimited text, separator sniffed from the leading records
//   - .txt and anything else that looks like text: one value per line
//
// Legacy binary .xls workbooks are rejected with ErrUnsupportedFormat.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format is the physical layout of an uploaded file.
type Format int

const (
	FormatSpreadsheet Format = iota
	FormatDelimited
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatSpreadsheet:
		return "spreadsheet"
	case FormatDelimited:
		return "delimited"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

var (
	zipSignature = []byte("PK\x03\x04")
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

// headerTokens are column titles that show up as the first line of
// single-column text exports. They are never data.
var headerTokens = map[string]bool{
	"uid":     true,
	"id":      true,
	"doc_num": true,
	"docnum":  true,
}

// candidateSeparators are tried in order; earlier entries win ties.
var candidateSeparators = []rune{';', ',', '\t'}

// sniffRows is how many leading records are parsed per candidate
// separator.
const sniffRows = 20

// DetectFormat decides how to parse a file from its extension, confirmed
// against the content signature.
func DetectFormat(name string, data []byte) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))

	switch ext {
	case ".xlsx", ".xlsm":
		if !bytes.HasPrefix(data, zipSignature) {
			return 0, fmt.Errorf("%w: %s is not a valid workbook", ErrUnsupportedFormat, name)
		}
		return FormatSpreadsheet, nil
	case ".xls":
		return 0, fmt.Errorf("%w: legacy .xls workbooks are not supported, save %s as .xlsx", ErrUnsupportedFormat, name)
	case ".csv", ".tsv":
		if looksBinary(data) {
			return 0, fmt.Errorf("%w: %s is not a text file", ErrUnsupportedFormat, name)
		}
		return FormatDelimited, nil
	case ".txt", "":
		if looksBinary(data) {
			return 0, fmt.Errorf("%w: %s is not a text file", ErrUnsupportedFormat, name)
		}
		return FormatText, nil
	}

	// Unknown extension: trust the content.
	switch {
	case bytes.HasPrefix(data, zipSignature):
		return FormatSpreadsheet, nil
	case bytes.HasPrefix(data, oleSignature), looksBinary(data):
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	default:
		return FormatText, nil
	}
}

// Ingest parses an upload into a RecordSet. Empty and header-only files
// yield an empty set, not an error.
func Ingest(u Upload) (*RecordSet, error) {
	format, err := DetectFormat(u.Name, u.Data)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatSpreadsheet:
		return readSpreadsheet(u)
	case FormatDelimited:
		return readDelimited(u)
	default:
		return readLines(u), nil
	}
}

// readSpreadsheet reads the first worksheet of an xlsx workbook.
func readSpreadsheet(u Upload) (*RecordSet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(u.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook %s: %v", ErrUnsupportedFormat, u.Name, err)
	}
	defer f.Close()

	rs := &RecordSet{Name: u.Name, Kind: KindTable}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return rs, nil
	}

	// GetRows returns the formatted (displayed) value of every cell, so
	// numbers and dates arrive as the user sees them.
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", sheets[0], u.Name, err)
	}

	return buildTable(rs, rows), nil
}

// readDelimited reads a CSV/TSV export.
func readDelimited(u Upload) (*RecordSet, error) {
	text := decodeText(u.Data)

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = separatorFor(u.Name, text)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				// Malformed line: skip it and keep reading.
				continue
			}
			return nil, fmt.Errorf("read %s: %w", u.Name, err)
		}
		rows = append(rows, rec)
	}

	return buildTable(&RecordSet{Name: u.Name, Kind: KindTable}, rows), nil
}

// buildTable turns raw rows into an aligned table. Rows shorter than the
// header are padded with empty cells; fully blank rows are dropped.
func buildTable(rs *RecordSet, rows [][]string) *RecordSet {
	if len(rows) == 0 {
		return rs
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	rs.Header = header

	for _, raw := range rows[1:] {
		if isBlankRow(raw) {
			continue
		}
		rec := make(Record, len(header))
		copy(rec, raw)
		rs.Rows = append(rs.Rows, rec)
	}
	return rs
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// separatorFor returns the field separator of a delimited upload.
func separatorFor(name, text string) rune {
	if strings.EqualFold(filepath.Ext(name), ".tsv") {
		return '\t'
	}
	return sniffSeparator(text)
}

// sniffSeparator parses the leading records with every candidate and keeps
// the one giving the widest header. Among equally wide headers the
// candidate whose data rows most often share that width wins. Quoted
// fields are honored, so separators inside them do not count.
func sniffSeparator(text string) rune {
	best, bestFields, bestMatches := ',', 1, -1
	for _, sep := range candidateSeparators {
		fields, matches := separatorFit(text, sep)
		if fields > bestFields || (fields == bestFields && fields > 1 && matches > bestMatches) {
			best, bestFields, bestMatches = sep, fields, matches
		}
	}
	return best
}

// separatorFit reports the header width under sep and how many of the
// following records have that same width.
func separatorFit(text string, sep rune) (fields, matches int) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sep
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	for n := 0; n < sniffRows; n++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		switch {
		case fields == 0:
			fields = len(rec)
		case len(rec) == fields:
			matches++
		}
	}
	return fields, matches
}

// readLines reads a text file as one value per non-blank line.
func readLines(u Upload) *RecordSet {
	text := decodeText(u.Data)
	rs := &RecordSet{Name: u.Name, Kind: KindLines}

	for _, line := range strings.Split(text, "\n") {
		v := normalizeValue(line)
		if v == "" || headerTokens[strings.ToLower(v)] {
			continue
		}
		rs.Lines = append(rs.Lines, v)
	}
	return rs
}
