package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCompare_Scenario(t *testing.T) {
	r, err := Compare("Pochta", []string{"1", "2", "3"}, "Telecom", []string{"2", "3", "4"})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	if r.File1Total != 3 || r.File2Total != 3 {
		t.Errorf("totals = %d/%d, want 3/3", r.File1Total, r.File2Total)
	}
	if r.InBoth != 2 {
		t.Errorf("InBoth = %d, want 2", r.InBoth)
	}
	if !equalStrings(r.OnlyInFile1, []string{"1"}) {
		t.Errorf("OnlyInFile1 = %q, want [1]", r.OnlyInFile1)
	}
	if !equalStrings(r.OnlyInFile2, []string{"4"}) {
		t.Errorf("OnlyInFile2 = %q, want [4]", r.OnlyInFile2)
	}
}

func TestCompare_Symmetry(t *testing.T) {
	cases := []struct {
		a, b []string
	}{
		{[]string{"1", "2", "3"}, []string{"2", "3", "4"}},
		{[]string{"x", "x", "y"}, []string{"y", "z", "z", "w"}},
		{[]string{"only"}, []string{"other"}},
		{[]string{"5", "4", "3", "2", "1"}, []string{"1", "3", "5"}},
	}

	for _, c := range cases {
		ab, err := Compare("a", c.a, "b", c.b)
		if err != nil {
			t.Fatalf("Compare(a,b): %v", err)
		}
		ba, err := Compare("b", c.b, "a", c.a)
		if err != nil {
			t.Fatalf("Compare(b,a): %v", err)
		}

		if ab.InBoth != ba.InBoth {
			t.Errorf("%q vs %q: InBoth %d != %d", c.a, c.b, ab.InBoth, ba.InBoth)
		}
		if !equalStrings(ab.OnlyInFile1, ba.OnlyInFile2) {
			t.Errorf("%q vs %q: OnlyInFile1 %q != reversed OnlyInFile2 %q", c.a, c.b, ab.OnlyInFile1, ba.OnlyInFile2)
		}
		if !equalStrings(ab.OnlyInFile2, ba.OnlyInFile1) {
			t.Errorf("%q vs %q: OnlyInFile2 %q != reversed OnlyInFile1 %q", c.a, c.b, ab.OnlyInFile2, ba.OnlyInFile1)
		}
	}
}

func TestCompare_IdenticalInput(t *testing.T) {
	values := []string{"a", "b", "a", "c", "b"}

	r, err := Compare("f", values, "f", values)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if r.InBoth != 3 {
		t.Errorf("InBoth = %d, want distinct count 3", r.InBoth)
	}
	if len(r.OnlyInFile1) != 0 || len(r.OnlyInFile2) != 0 {
		t.Errorf("exclusive lists should be empty: %q %q", r.OnlyInFile1, r.OnlyInFile2)
	}
	if r.File1Total != 5 {
		t.Errorf("File1Total = %d, want raw count 5", r.File1Total)
	}
}

func TestCompare_ExclusiveKeepsOrderAndDeduplicates(t *testing.T) {
	r, err := Compare("a", []string{"9", "7", "9", "8", "shared"}, "b", []string{"shared"})
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if !equalStrings(r.OnlyInFile1, []string{"9", "7", "8"}) {
		t.Errorf("OnlyInFile1 = %q", r.OnlyInFile1)
	}
}

func TestCompare_EmptyInput(t *testing.T) {
	if _, err := Compare("a", nil, "b", []string{"1"}); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("empty file1: err = %v", err)
	}
	if _, err := Compare("a", []string{"1"}, "b", []string{}); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("empty file2: err = %v", err)
	}
}

func TestComparisonValues(t *testing.T) {
	table := func(header []string, rows ...Record) *RecordSet {
		return &RecordSet{Name: "t.xlsx", Kind: KindTable, Header: header, Rows: rows}
	}

	tests := []struct {
		name    string
		rs      *RecordSet
		column  string
		want    []string
		wantErr error
	}{
		{
			name: "line file uses every line",
			rs:   &RecordSet{Kind: KindLines, Lines: []string{"1", "2"}},
			want: []string{"1", "2"},
		},
		{
			name: "doc_num is the default key",
			rs:   table([]string{"region", "DOC_NUM"}, Record{"x", "10"}, Record{"y", " 11 "}),
			want: []string{"10", "11"},
		},
		{
			name: "TV_SERIALNUMBER is the second default",
			rs:   table([]string{"region", "tv_serialnumber"}, Record{"x", "S1"}),
			want: []string{"S1"},
		},
		{
			name: "first column otherwise",
			rs:   table([]string{"uid", "region"}, Record{"u1", "x"}, Record{"", "y"}),
			want: []string{"u1"},
		},
		{
			name:   "explicit column",
			rs:     table([]string{"uid", "region"}, Record{"u1", "x"}),
			column: "Region",
			want:   []string{"x"},
		},
		{
			name:    "explicit column missing",
			rs:      table([]string{"uid"}, Record{"u1"}),
			column:  "region",
			wantErr: ErrColumnNotFound,
		},
		{
			name: "empty table",
			rs:   &RecordSet{Kind: KindTable},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComparisonValues(tt.rs, tt.column)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !equalStrings(got, tt.want) {
				t.Errorf("values = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderComparison(t *testing.T) {
	r := &ComparisonResult{
		File1Name:   "Pochta",
		File2Name:   "Telecom",
		File1Total:  15000,
		File2Total:  14990,
		InBoth:      14000,
		OnlyInFile1: repeat("p", 1000),
		OnlyInFile2: []string{"t"},
	}

	ru := RenderComparison(r, LangRU)
	for _, want := range []string{
		"Сравнение (Pochta-Telecom)",
		"В файле от Pochta всего: 15 000",
		"Присутствуют в обоих файлах: 14 000",
		"Есть в Pochta, нет в Telecom: 1 000",
		"Есть в Telecom, нет в Pochta: 1",
		strings.Repeat("-", 44),
	} {
		if !strings.Contains(ru, want) {
			t.Errorf("ru output missing %q:\n%s", want, ru)
		}
	}

	r.MonthName = "Mart"
	uz := RenderComparison(r, LangUZ)
	for _, want := range []string{
		"Mart uchun statistika (Pochta-Telecom)",
		"Ikkalasida ham mavjud bo'lganlar soni: 14 000",
		"Pochta bergan faylda mavjud, Telecom bergan faylda yo'q soni: 1 000",
	} {
		if !strings.Contains(uz, want) {
			t.Errorf("uz output missing %q:\n%s", want, uz)
		}
	}
}

func TestRenderDifferences(t *testing.T) {
	r := &ComparisonResult{
		File1Name:   "Pochta",
		File2Name:   "Tele/com",
		OnlyInFile1: []string{"3", "1"},
		OnlyInFile2: []string{"9"},
	}

	if got, want := RenderDifferences(r, SideFile1), "3\n1\n"; got != want {
		t.Errorf("file1 body = %q, want %q", got, want)
	}
	if got, want := RenderDifferences(r, SideFile2), "9\n"; got != want {
		t.Errorf("file2 body = %q, want %q", got, want)
	}

	at := time.Date(2024, 5, 1, 12, 30, 45, 0, time.UTC)
	if got, want := DifferencesFilename(r, SideFile2, at), "Tele_com_minus_Pochta_20240501_123045.txt"; got != want {
		t.Errorf("filename = %q, want %q", got, want)
	}
}

func TestParseSide(t *testing.T) {
	if s, err := ParseSide(" FILE2 "); err != nil || s != SideFile2 {
		t.Errorf("ParseSide(FILE2) = %q, %v", s, err)
	}
	if _, err := ParseSide("file3"); !errors.Is(err, ErrInvalidSide) {
		t.Errorf("ParseSide(file3) err = %v", err)
	}
}
