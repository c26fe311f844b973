package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCountViolations_Scenario(t *testing.T) {
	a := CountViolations([]string{"A", "B", "A", "C", "B", "A"})

	if a.Total != 6 {
		t.Errorf("Total = %d, want 6", a.Total)
	}
	if a.UniqueTypes != 3 {
		t.Errorf("UniqueTypes = %d, want 3", a.UniqueTypes)
	}

	want := []ViolationCount{
		{Number: 1, ViolationText: "A", Count: 3},
		{Number: 2, ViolationText: "B", Count: 2},
		{Number: 3, ViolationText: "C", Count: 1},
	}
	for i, w := range want {
		if a.Violations[i] != w {
			t.Errorf("Violations[%d] = %+v, want %+v", i, a.Violations[i], w)
		}
	}

	if mc := a.MostCommon(); mc == nil || mc.ViolationText != "A" {
		t.Errorf("MostCommon = %+v, want A", mc)
	}
}

func TestCountViolations_TiesKeepFirstSeenOrder(t *testing.T) {
	a := CountViolations([]string{"late", "early", "early", "late", "single"})

	got := make([]string, len(a.Violations))
	for i, v := range a.Violations {
		got[i] = v.ViolationText
	}
	if want := []string{"late", "early", "single"}; !equalStrings(got, want) {
		t.Errorf("order = %q, want %q", got, want)
	}
	if a.MostCommon().ViolationText != "late" {
		t.Errorf("tie for most common should go to the first seen value")
	}
}

func TestCountViolations_TotalsMatchCounts(t *testing.T) {
	inputs := [][]string{
		{"x"},
		{"x", "x", "x"},
		{"a", "b", "c", "d"},
		{"a", " ", "", "b", "a"},
		{"Пропуск", "Пропуск", "O'tkazib yuborish"},
	}

	for _, in := range inputs {
		a := CountViolations(in)
		sum := 0
		for _, v := range a.Violations {
			sum += v.Count
		}
		if sum != a.Total {
			t.Errorf("%q: sum of counts %d != Total %d", in, sum, a.Total)
		}
		if len(a.Violations) != a.UniqueTypes {
			t.Errorf("%q: %d entries != UniqueTypes %d", in, len(a.Violations), a.UniqueTypes)
		}
	}
}

func TestCountViolations_Empty(t *testing.T) {
	a := CountViolations(nil)
	if a.Total != 0 || a.UniqueTypes != 0 || a.MostCommon() != nil {
		t.Errorf("empty analysis = %+v", a)
	}
}

func TestAnalyzeViolations(t *testing.T) {
	rs, err := Ingest(Upload{Name: "v.xlsx", Data: violationWorkbook(t, "A", "B", "A", "", "C", "B", "A")})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	a, err := AnalyzeViolations(rs)
	if err != nil {
		t.Fatalf("AnalyzeViolations: %v", err)
	}
	if a.Total != 6 || a.UniqueTypes != 3 {
		t.Errorf("Total=%d UniqueTypes=%d, want 6 and 3", a.Total, a.UniqueTypes)
	}
}

func TestAnalyzeViolations_ColumnNotFound(t *testing.T) {
	tests := []struct {
		name string
		rs   *RecordSet
	}{
		{"other columns", &RecordSet{Name: "a.xlsx", Kind: KindTable, Header: []string{"name"}, Rows: []Record{{"x"}}}},
		{"line file", &RecordSet{Name: "a.txt", Kind: KindLines, Lines: []string{"x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AnalyzeViolations(tt.rs)
			if !errors.Is(err, ErrColumnNotFound) {
				t.Errorf("err = %v, want ErrColumnNotFound", err)
			}
		})
	}
}

func TestRenderViolationReport(t *testing.T) {
	a := CountViolations(append(repeat("A", 12345), "B"))
	h := ReportHeader{
		ReportName:  "Январь",
		Filename:    "v.xlsx",
		ProcessedAt: time.Date(2024, 1, 31, 9, 5, 0, 0, time.UTC),
	}

	ru := RenderViolationReport(h, a, LangRU)
	for _, want := range []string{
		"ОТЧЕТ ПО НАРУШЕНИЯМ",
		"Отчет: Январь",
		"Файл: v.xlsx",
		"Дата формирования: 31.01.2024 09:05:00",
		"Всего нарушений: 12 346",
		"Уникальных типов: 2",
		"1. A — 12 345\n",
		"2. B — 1\n",
	} {
		if !strings.Contains(ru, want) {
			t.Errorf("ru report missing %q:\n%s", want, ru)
		}
	}

	uz := RenderViolationReport(h, a, LangUZ)
	for _, want := range []string{"QOIDABUZARLIKLAR HISOBOTI", "Jami qoidabuzarliklar: 12 346", "1. A — 12 345\n"} {
		if !strings.Contains(uz, want) {
			t.Errorf("uz report missing %q:\n%s", want, uz)
		}
	}
}

func TestDefaultReportName(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)
	if got, want := DefaultReportName("march.xlsx", at), "march.xlsx - 05.03.2024 14:07"; got != want {
		t.Errorf("DefaultReportName = %q, want %q", got, want)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1000:    "1 000",
		12345:   "12 345",
		1234567: "1 234 567",
	}
	for n, want := range tests {
		if got := FormatNumber(n); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", n, got, want)
		}
	}
}

func repeat(v string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = v
	}
	return out
}
