package core

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// workbook builds an in-memory xlsx whose first sheet holds rows.
func workbook(t *testing.T, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &cells); err != nil {
			t.Fatalf("write row %d: %v", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// violationWorkbook builds a violation export with the given values.
func violationWorkbook(t *testing.T, values ...string) []byte {
	t.Helper()
	rows := [][]string{{"№", "Qoidabuzarlik nomi", "sana"}}
	for i, v := range values {
		rows = append(rows, []string{string(rune('1' + i%9)), v, "01.02.2024"})
	}
	return workbook(t, rows)
}

func lines(values ...string) []byte {
	return []byte(joinLines(values))
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
