package core

import (
	"fmt"
	"strings"
	"time"
)

// defaultKeyColumns are tried, in order, when a tabular comparison input
// names no column. They are the record keys of the two usual exports.
var defaultKeyColumns = []string{"doc_num", "TV_SERIALNUMBER"}

// Side selects one exclusive list of a comparison.
type Side string

const (
	SideFile1 Side = "file1"
	SideFile2 Side = "file2"
)

// ParseSide validates a side selector.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case SideFile1:
		return SideFile1, nil
	case SideFile2:
		return SideFile2, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSide, s)
	}
}

// ComparisonResult classifies the values of two files. Totals are raw
// record counts; InBoth and the exclusive lists work on distinct values.
type ComparisonResult struct {
	File1Name   string
	File2Name   string
	File1Total  int
	File2Total  int
	InBoth      int
	OnlyInFile1 []string
	OnlyInFile2 []string
	MonthName   string
	ComparedAt  time.Time
}

// ComparisonValues derives the value list of rs used as record identity.
// Line-based sets contribute every line. Tables contribute the named
// column, or the first default key column present, or the first column.
func ComparisonValues(rs *RecordSet, column string) ([]string, error) {
	if !rs.HasColumns() {
		return append([]string(nil), rs.Lines...), nil
	}
	if len(rs.Header) == 0 {
		return nil, nil
	}

	idx := -1
	if strings.TrimSpace(column) != "" {
		idx = rs.ColumnIndex(column)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q in %s (columns: %s)",
				ErrColumnNotFound, column, rs.Name, strings.Join(rs.Header, ", "))
		}
	} else {
		for _, key := range defaultKeyColumns {
			if idx = rs.ColumnIndex(key); idx >= 0 {
				break
			}
		}
		if idx < 0 {
			idx = 0
		}
	}

	var values []string
	for _, row := range rs.Rows {
		if v := normalizeValue(row.Get(idx)); v != "" {
			values = append(values, v)
		}
	}
	return values, nil
}

// Compare classifies values1 and values2. Either side being empty is an
// ErrEmptyInput: an empty comparison would report every record as missing.
func Compare(name1 string, values1 []string, name2 string, values2 []string) (*ComparisonResult, error) {
	if len(values1) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyInput, name1)
	}
	if len(values2) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyInput, name2)
	}

	set1 := toSet(values1)
	set2 := toSet(values2)

	inBoth := 0
	for v := range set1 {
		if _, ok := set2[v]; ok {
			inBoth++
		}
	}

	return &ComparisonResult{
		File1Name:   name1,
		File2Name:   name2,
		File1Total:  len(values1),
		File2Total:  len(values2),
		InBoth:      inBoth,
		OnlyInFile1: exclusive(values1, set2),
		OnlyInFile2: exclusive(values2, set1),
	}, nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// exclusive returns the distinct values absent from other, in input order.
func exclusive(values []string, other map[string]struct{}) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, v := range values {
		if _, ok := other[v]; ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Exclusive returns the exclusive list of side and the names of the file
// it belongs to and the file it was compared against.
func (r *ComparisonResult) Exclusive(side Side) (values []string, own, other string) {
	if side == SideFile2 {
		return r.OnlyInFile2, r.File2Name, r.File1Name
	}
	return r.OnlyInFile1, r.File1Name, r.File2Name
}

// RenderComparison renders the counts of r as a plain-text report in lang.
func RenderComparison(r *ComparisonResult, lang Language) string {
	ruler := strings.Repeat("-", rulerWidth)
	n1, n2 := r.File1Name, r.File2Name

	var heading string
	switch {
	case r.MonthName != "" && lang == LangUZ:
		heading = fmt.Sprintf("%s uchun statistika (%s-%s)", r.MonthName, n1, n2)
	case r.MonthName != "":
		heading = fmt.Sprintf("Статистика за %s (%s-%s)", r.MonthName, n1, n2)
	default:
		heading = fmt.Sprintf("%s (%s-%s)", lang.pick("Сравнение", "Solishtirish"), n1, n2)
	}

	only1 := FormatNumber(len(r.OnlyInFile1))
	only2 := FormatNumber(len(r.OnlyInFile2))

	var body []string
	if lang == LangUZ {
		body = []string{
			fmt.Sprintf("%s bergan faylda jami: %s", n1, FormatNumber(r.File1Total)),
			"",
			fmt.Sprintf("%s bergan faylda jami: %s", n2, FormatNumber(r.File2Total)),
			"",
			ruler,
			"",
			fmt.Sprintf("Ikkalasida ham mavjud bo'lganlar soni: %s", FormatNumber(r.InBoth)),
			"",
			fmt.Sprintf("%s bergan faylda mavjud, %s bergan faylda yo'q soni: %s", n1, n2, only1),
			"",
			fmt.Sprintf("%s bergan faylda mavjud, %s bergan faylda yo'q soni: %s", n2, n1, only2),
		}
	} else {
		body = []string{
			fmt.Sprintf("В файле от %s всего: %s", n1, FormatNumber(r.File1Total)),
			"",
			fmt.Sprintf("В файле от %s всего: %s", n2, FormatNumber(r.File2Total)),
			"",
			ruler,
			"",
			fmt.Sprintf("Присутствуют в обоих файлах: %s", FormatNumber(r.InBoth)),
			"",
			fmt.Sprintf("Есть в %s, нет в %s: %s", n1, n2, only1),
			"",
			fmt.Sprintf("Есть в %s, нет в %s: %s", n2, n1, only2),
		}
	}

	lines := []string{heading, "", ruler}
	lines = append(lines, body...)
	lines = append(lines, "", ruler)
	return joinLines(lines)
}

// RenderDifferences renders one exclusive list of r as a plain listing,
// one value per line, no header.
func RenderDifferences(r *ComparisonResult, side Side) string {
	values, _, _ := r.Exclusive(side)
	return joinLines(values)
}

// DifferencesFilename names the download of one exclusive list:
// "<own>_minus_<other>_<timestamp>.txt".
func DifferencesFilename(r *ComparisonResult, side Side, at time.Time) string {
	_, own, other := r.Exclusive(side)
	return fmt.Sprintf("%s_minus_%s_%s.txt", safeFilePart(own), safeFilePart(other), at.Format("20060102_150405"))
}

// safeFilePart keeps a display name usable inside a download filename.
func safeFilePart(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '"', '*', '?', '<', '>', '|', '\r', '\n':
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
	if s == "" {
		return "file"
	}
	return s
}
