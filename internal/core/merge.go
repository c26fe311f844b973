package core

import "fmt"

// FileStats describes what one merge input contributed.
type FileStats struct {
	Name         string   `json:"name"`
	TotalRows    int      `json:"total_rows"`
	ColumnsFound []string `json:"columns_found"`
}

// MergeResult pools the requested columns of several files. MergedData
// holds, per column, the distinct values in first-seen order across files
// taken in submission order.
type MergeResult struct {
	Columns            []string
	FileStats          []FileStats
	MergedData         map[string][]string
	TotalUniqueRecords map[string]int
}

// Merge pools columns across sets. A file missing a column is not an
// error; it is simply absent from that file's ColumnsFound. Line-based
// files have no header and contribute their lines to every column.
func Merge(sets []*RecordSet, columns []string) (*MergeResult, error) {
	if len(sets) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientFiles, len(sets))
	}
	if len(columns) == 0 {
		return nil, ErrNoColumnsSpecified
	}

	result := &MergeResult{
		Columns:            append([]string(nil), columns...),
		FileStats:          make([]FileStats, 0, len(sets)),
		MergedData:         make(map[string][]string, len(columns)),
		TotalUniqueRecords: make(map[string]int, len(columns)),
	}

	seen := make(map[string]map[string]struct{}, len(columns))
	for _, col := range columns {
		seen[col] = make(map[string]struct{})
		result.MergedData[col] = []string{}
	}

	for _, rs := range sets {
		stats := FileStats{Name: rs.Name, TotalRows: rs.Len(), ColumnsFound: []string{}}

		for _, ec := range extractForMerge(rs, columns) {
			if !ec.Found {
				continue
			}
			stats.ColumnsFound = append(stats.ColumnsFound, ec.Name)

			for _, v := range ec.Values {
				if _, dup := seen[ec.Name][v]; dup {
					continue
				}
				seen[ec.Name][v] = struct{}{}
				result.MergedData[ec.Name] = append(result.MergedData[ec.Name], v)
			}
		}

		result.FileStats = append(result.FileStats, stats)
	}

	for _, col := range columns {
		result.TotalUniqueRecords[col] = len(result.MergedData[col])
	}

	return result, nil
}

// extractForMerge applies the whole-line fallback for line-based sets.
func extractForMerge(rs *RecordSet, columns []string) []ExtractedColumn {
	if rs.HasColumns() {
		cols, _ := ExtractColumns(rs, columns)
		return cols
	}

	cols := make([]ExtractedColumn, len(columns))
	for i, col := range columns {
		cols[i] = ExtractedColumn{Name: col, Values: rs.Lines, Found: true}
	}
	return cols
}
