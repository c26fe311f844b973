package core

// export.go renders merge results for the inline preview and the TXT and
// Excel downloads. The downloads take the merged data alone, since that is
// all a client resubmits.

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// MergedSheetName is the worksheet written by RenderMergeWorkbook.
const MergedSheetName = "Merged Data"

// DefaultPreviewLimit caps the values listed per column in the inline
// merge report.
const DefaultPreviewLimit = 1000

// RenderMergeText renders the full merge report: per-file statistics,
// per-column totals, then the values of each column. At most limit values
// per column are listed; limit <= 0 lists everything.
func RenderMergeText(r *MergeResult, lang Language, limit int) string {
	lines := []string{
		bannerRule,
		lang.pick("РЕЗУЛЬТАТЫ ОБЪЕДИНЕНИЯ ФАЙЛОВ", "FAYLLARNI BIRLASHTIRISH NATIJALARI"),
		bannerRule,
		"",
		lang.pick("Обработано файлов", "Qayta ishlangan fayllar") + ": " + FormatNumber(len(r.FileStats)),
		"",
	}

	for i, fs := range r.FileStats {
		found := "-"
		if len(fs.ColumnsFound) > 0 {
			found = strings.Join(fs.ColumnsFound, ", ")
		}
		lines = append(lines,
			fmt.Sprintf("%d. %s", i+1, fs.Name),
			fmt.Sprintf("   %s: %s", lang.pick("Строк", "Qatorlar"), FormatNumber(fs.TotalRows)),
			fmt.Sprintf("   %s: %s", lang.pick("Найдено столбцов", "Topilgan ustunlar"), found),
			"",
		)
	}

	lines = append(lines, sectionRule, lang.pick("ОБЩИЕ РЕЗУЛЬТАТЫ:", "UMUMIY NATIJALAR:"), sectionRule)
	for _, col := range r.Columns {
		lines = append(lines, fmt.Sprintf("%s: %s %s", col, FormatNumber(r.TotalUniqueRecords[col]),
			lang.pick("уникальных записей", "noyob yozuv")))
	}
	lines = append(lines, sectionRule, "")

	for _, col := range r.Columns {
		values := r.MergedData[col]
		lines = append(lines, fmt.Sprintf("=== %s ===", col), "")

		shown := values
		if limit > 0 && len(values) > limit {
			shown = values[:limit]
		}
		lines = append(lines, shown...)

		if len(shown) < len(values) {
			rest := FormatNumber(len(values) - len(shown))
			lines = append(lines,
				"",
				lang.pick("... и еще "+rest+" записей", "... va yana "+rest+" yozuv"),
				"",
				lang.pick("[Скачайте TXT или Excel файл для просмотра всех записей]",
					"[TXT yoki Excel faylni yuklab oling - barcha yozuvlar uchun]"),
			)
		}

		lines = append(lines, "", fmt.Sprintf("%s: %s %s", lang.pick("Всего", "Jami"),
			FormatNumber(len(values)), lang.pick("записей", "yozuv")), "")
	}

	return joinLines(lines)
}

// RenderMergedDataText renders merged data for the TXT download: a header
// line per column, its values one per line, columns separated by a blank
// line. The listing is never truncated.
func RenderMergedDataText(columns []string, data map[string][]string, lang Language) string {
	var lines []string
	for i, col := range columns {
		if i > 0 {
			lines = append(lines, "")
		}
		values := data[col]
		lines = append(lines, fmt.Sprintf("=== %s (%s: %s) ===", col,
			lang.pick("записей", "yozuv"), FormatNumber(len(values))))
		lines = append(lines, values...)
	}
	return joinLines(lines)
}

// RenderMergeWorkbook writes merged data as a single-sheet xlsx workbook,
// one column per name, shorter columns padded with empty cells.
func RenderMergeWorkbook(columns []string, data map[string][]string) ([]byte, error) {
	if len(columns) == 0 {
		return nil, ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", MergedSheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for c, col := range columns {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(MergedSheetName, cell, col); err != nil {
			return nil, fmt.Errorf("write header %q: %w", col, err)
		}
		if err := f.SetCellStyle(MergedSheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("style header %q: %w", col, err)
		}

		// Values stay strings so ids with leading zeros survive.
		for r, v := range data[col] {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellStr(MergedSheetName, cell, v); err != nil {
				return nil, fmt.Errorf("write %s: %w", cell, err)
			}
		}

		colName, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(MergedSheetName, colName, colName, 25); err != nil {
			return nil, fmt.Errorf("set width of %s: %w", colName, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}
