package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ViolationColumn is the header the analyzer looks for.
const ViolationColumn = "qoidabuzarlik nomi"

// ViolationCount is one ranked line of a violation report.
type ViolationCount struct {
	Number        int    `json:"number"`
	ViolationText string `json:"violation_text"`
	Count         int    `json:"count"`
}

// ViolationAnalysis is the frequency table of one file. Violations is
// ranked by count, ties in first-seen order.
type ViolationAnalysis struct {
	Violations  []ViolationCount
	Total       int
	UniqueTypes int
}

// MostCommon returns the top-ranked entry, or nil for an empty analysis.
func (a ViolationAnalysis) MostCommon() *ViolationCount {
	if len(a.Violations) == 0 {
		return nil
	}
	top := a.Violations[0]
	return &top
}

// AnalyzeViolations counts the values of the violation column of rs.
func AnalyzeViolations(rs *RecordSet) (ViolationAnalysis, error) {
	if !rs.HasColumns() {
		return ViolationAnalysis{}, fmt.Errorf("%w: %q in %s: file has no header row",
			ErrColumnNotFound, ViolationColumn, rs.Name)
	}

	cols, found := ExtractColumns(rs, []string{ViolationColumn})
	if found == 0 {
		return ViolationAnalysis{}, fmt.Errorf("%w: %q in %s (columns: %s)",
			ErrColumnNotFound, ViolationColumn, rs.Name, strings.Join(rs.Header, ", "))
	}

	return CountViolations(cols[0].Values), nil
}

// CountViolations builds the ranked frequency table of values. Blank
// values are ignored.
func CountViolations(values []string) ViolationAnalysis {
	counts := make(map[string]int)
	var order []string

	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	ranked := make([]ViolationCount, len(order))
	total := 0
	for i, v := range order {
		ranked[i] = ViolationCount{ViolationText: v, Count: counts[v]}
		total += counts[v]
	}

	// order is first-seen, so a stable sort keeps that as the tie-break.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	for i := range ranked {
		ranked[i].Number = i + 1
	}

	return ViolationAnalysis{
		Violations:  ranked,
		Total:       total,
		UniqueTypes: len(ranked),
	}
}

// DefaultReportName names a report after its source file and creation time.
func DefaultReportName(filename string, at time.Time) string {
	return fmt.Sprintf("%s - %s", filename, at.Format("02.01.2006 15:04"))
}

// ReportHeader identifies a rendered violation report.
type ReportHeader struct {
	ReportName  string
	Filename    string
	ProcessedAt time.Time
}

// RenderViolationReport renders the analysis as a plain-text report in
// lang: a header block with totals, then one ranked line per violation
// type giving its text and count.
func RenderViolationReport(h ReportHeader, a ViolationAnalysis, lang Language) string {
	lines := []string{
		bannerRule,
		lang.pick("ОТЧЕТ ПО НАРУШЕНИЯМ", "QOIDABUZARLIKLAR HISOBOTI"),
		bannerRule,
		lang.pick("Отчет", "Hisobot") + ": " + h.ReportName,
		lang.pick("Файл", "Fayl") + ": " + h.Filename,
		lang.pick("Дата формирования", "Tuzilgan sana") + ": " + h.ProcessedAt.Format("02.01.2006 15:04:05"),
		lang.pick("Всего нарушений", "Jami qoidabuzarliklar") + ": " + FormatNumber(a.Total),
		lang.pick("Уникальных типов", "Unikal turlar") + ": " + FormatNumber(a.UniqueTypes),
		bannerRule,
		"",
	}

	for _, v := range a.Violations {
		lines = append(lines, fmt.Sprintf("%d. %s — %s", v.Number, v.ViolationText, FormatNumber(v.Count)))
	}

	return joinLines(lines)
}
