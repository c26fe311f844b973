package web

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/recon/internal/core"
)

// comparisonDefaultLang is the report language of a comparison when the
// client names none.
const comparisonDefaultLang = core.LangUZ

// Display names used when the client labels neither file.
const (
	defaultFile1Name = "Файл 1"
	defaultFile2Name = "Файл 2"
)

// ComparisonData is a comparison result on the wire. The same shape comes
// back in difference download requests.
type ComparisonData struct {
	File1Name       string   `json:"file1_name"`
	File2Name       string   `json:"file2_name"`
	File1Total      int      `json:"file1_total"`
	File2Total      int      `json:"file2_total"`
	InBoth          int      `json:"in_both"`
	OnlyInFile1     int      `json:"only_in_file1"`
	OnlyInFile2     int      `json:"only_in_file2"`
	OnlyInFile1List []string `json:"only_in_file1_list"`
	OnlyInFile2List []string `json:"only_in_file2_list"`
	MonthName       string   `json:"month_name,omitempty"`
	TextOutput      string   `json:"text_output"`
}

// ComparisonResponse wraps a comparison result.
type ComparisonResponse struct {
	Success bool           `json:"success"`
	Result  ComparisonData `json:"result"`
}

// DifferencesRequest asks for one exclusive list of a previous comparison.
type DifferencesRequest struct {
	ComparisonData *ComparisonData `json:"comparison_data"`
	FileType       string          `json:"file_type"`
}

func newComparisonData(r *core.ComparisonResult, lang core.Language) ComparisonData {
	return ComparisonData{
		File1Name:       r.File1Name,
		File2Name:       r.File2Name,
		File1Total:      r.File1Total,
		File2Total:      r.File2Total,
		InBoth:          r.InBoth,
		OnlyInFile1:     len(r.OnlyInFile1),
		OnlyInFile2:     len(r.OnlyInFile2),
		OnlyInFile1List: nonNil(r.OnlyInFile1),
		OnlyInFile2List: nonNil(r.OnlyInFile2),
		MonthName:       r.MonthName,
		TextOutput:      core.RenderComparison(r, lang),
	}
}

// result rebuilds the part of a comparison needed for downloads.
func (d *ComparisonData) result() *core.ComparisonResult {
	return &core.ComparisonResult{
		File1Name:   d.File1Name,
		File2Name:   d.File2Name,
		File1Total:  d.File1Total,
		File2Total:  d.File2Total,
		InBoth:      d.InBoth,
		OnlyInFile1: d.OnlyInFile1List,
		OnlyInFile2: d.OnlyInFile2List,
		MonthName:   d.MonthName,
	}
}

// handleCompare compares two uploaded files.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	lang := comparisonDefaultLang

	if err := parseMultipart(w, r, 2*s.cfg.Upload.MaxFileSize+multipartOverhead); err != nil {
		respondError(w, r, err, lang)
		return
	}
	lang = language(r.FormValue("language"), comparisonDefaultLang)

	file1, err := s.formFile(r, "file1")
	if err != nil {
		respondError(w, r, err, lang)
		return
	}
	file2, err := s.formFile(r, "file2")
	if err != nil {
		respondError(w, r, err, lang)
		return
	}

	result, err := s.service.CompareFiles(r.Context(), core.CompareRequest{
		File1:     file1,
		File2:     file2,
		File1Name: displayName(r, "file1_name", defaultFile1Name),
		File2Name: displayName(r, "file2_name", defaultFile2Name),
		Column:    r.FormValue("column_name"),
		MonthName: r.FormValue("month_name"),
	})
	if err != nil {
		respondError(w, r, err, lang)
		return
	}

	writeJSON(w, ComparisonResponse{
		Success: true,
		Result:  newComparisonData(result, lang),
	})
}

// displayName returns the trimmed label posted under field, or fallback
// when the field is missing or blank.
func displayName(r *http.Request, field, fallback string) string {
	if v, ok := formValue(r, field); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// handleDownloadDifferences sends one exclusive list of a comparison the
// client already holds.
func (s *Server) handleDownloadDifferences(w http.ResponseWriter, r *http.Request) {
	var req DifferencesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, s.defaultLang)
		return
	}
	if req.ComparisonData == nil {
		respondError(w, r, core.ErrNoData, s.defaultLang)
		return
	}

	fileType := req.FileType
	if strings.TrimSpace(fileType) == "" {
		fileType = string(core.SideFile1)
	}
	side, err := core.ParseSide(fileType)
	if err != nil {
		respondError(w, r, err, s.defaultLang)
		return
	}

	result := req.ComparisonData.result()
	filename := core.DifferencesFilename(result, side, s.service.Now())
	writeAttachment(w, filename, contentTypeText, []byte(core.RenderDifferences(result, side)))
}
