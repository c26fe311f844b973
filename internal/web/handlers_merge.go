package web

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/JonMunkholm/recon/internal/core"
)

// mergeDefaultColumns is used when the client sends no column_names field.
const mergeDefaultColumns = "doc_num"

// MergeData is a merge result on the wire. The same shape comes back in
// merge download requests.
type MergeData struct {
	FileStats          []core.FileStats    `json:"file_stats"`
	TotalUniqueRecords map[string]int      `json:"total_unique_records"`
	Columns            []string            `json:"columns"`
	MergedData         map[string][]string `json:"merged_data"`
	TextOutput         string              `json:"text_output,omitempty"`
}

// MergeResponse wraps a merge result.
type MergeResponse struct {
	Success bool      `json:"success"`
	Result  MergeData `json:"result"`
}

// MergeDownloadRequest carries a previous merge result back for export.
// Report asks the text download for the full statistics report instead of
// the column listing.
type MergeDownloadRequest struct {
	MergedData *MergeData `json:"merged_data"`
	Language   string     `json:"language"`
	Report     bool       `json:"report,omitempty"`
}

func newMergeData(r *core.MergeResult, lang core.Language, previewLimit int) MergeData {
	return MergeData{
		FileStats:          r.FileStats,
		TotalUniqueRecords: r.TotalUniqueRecords,
		Columns:            r.Columns,
		MergedData:         r.MergedData,
		TextOutput:         core.RenderMergeText(r, lang, previewLimit),
	}
}

// columns returns the column order of d. Clients that dropped the columns
// list get the merged data keys in sorted order.
func (d *MergeData) columns() []string {
	if len(d.Columns) > 0 {
		return d.Columns
	}
	cols := make([]string, 0, len(d.MergedData))
	for col := range d.MergedData {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func (d *MergeData) result() *core.MergeResult {
	cols := d.columns()
	totals := d.TotalUniqueRecords
	if totals == nil {
		totals = make(map[string]int, len(cols))
		for _, col := range cols {
			totals[col] = len(d.MergedData[col])
		}
	}
	return &core.MergeResult{
		Columns:            cols,
		FileStats:          d.FileStats,
		MergedData:         d.MergedData,
		TotalUniqueRecords: totals,
	}
}

// handleMerge pools columns across the uploaded files.
func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	lang := core.LangRU
	maxFiles := s.cfg.Upload.MaxFiles

	limit := s.cfg.Upload.MaxFileSize*int64(max(maxFiles, 2)) + multipartOverhead
	if err := parseMultipart(w, r, limit); err != nil {
		respondError(w, r, err, lang)
		return
	}
	lang = language(r.FormValue("language"), core.LangRU)

	uploads, err := s.formFiles(r, "files[]", "files")
	if err != nil {
		respondError(w, r, err, lang)
		return
	}
	if maxFiles > 0 && len(uploads) > maxFiles {
		respondError(w, r, fmt.Errorf("too many files: %d, limit %d", len(uploads), maxFiles), lang)
		return
	}

	columns, ok := formValue(r, "column_names")
	if !ok {
		columns = mergeDefaultColumns
	}

	result, err := s.service.MergeFiles(r.Context(), core.MergeRequest{
		Files:   uploads,
		Columns: columns,
	})
	if err != nil {
		respondError(w, r, err, lang)
		return
	}

	writeJSON(w, MergeResponse{
		Success: true,
		Result:  newMergeData(result, lang, s.service.PreviewLimit()),
	})
}

// decodeMergeDownload reads a merge download request, rejecting one that
// carries no merged columns.
func (s *Server) decodeMergeDownload(w http.ResponseWriter, r *http.Request) (*MergeDownloadRequest, bool) {
	var req MergeDownloadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, s.defaultLang)
		return nil, false
	}
	if req.MergedData == nil || len(req.MergedData.columns()) == 0 {
		respondError(w, r, core.ErrNoData, s.defaultLang)
		return nil, false
	}
	return &req, true
}

// handleMergeDownloadText sends the merged columns as a text file: a header
// line per column, its values one per line, columns separated by a blank
// line. With report set and per-file statistics present it sends the
// complete statistics report instead.
func (s *Server) handleMergeDownloadText(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeMergeDownload(w, r)
	if !ok {
		return
	}
	lang := language(req.Language, core.LangRU)
	data := req.MergedData

	var body string
	if req.Report && len(data.FileStats) > 0 {
		body = core.RenderMergeText(data.result(), lang, 0)
	} else {
		body = core.RenderMergedDataText(data.columns(), data.MergedData, lang)
	}

	filename := fmt.Sprintf("merged_data_%s.txt", s.service.Now().Format("20060102_150405"))
	writeAttachment(w, filename, contentTypeText, []byte(body))
}

// handleMergeDownloadExcel sends the merged columns as an xlsx workbook.
func (s *Server) handleMergeDownloadExcel(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeMergeDownload(w, r)
	if !ok {
		return
	}

	body, err := core.RenderMergeWorkbook(req.MergedData.columns(), req.MergedData.MergedData)
	if err != nil {
		respondError(w, r, err, s.defaultLang)
		return
	}

	filename := fmt.Sprintf("merged_data_%s.xlsx", s.service.Now().Format("20060102_150405"))
	writeAttachment(w, filename, contentTypeXLSX, body)
}
