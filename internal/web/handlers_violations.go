package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/recon/internal/core"
	"github.com/go-chi/chi/v5"
)

// previewViolations is how many ranked lines the upload response carries.
const previewViolations = 10

// ViolationStats summarizes a ranked violation table.
type ViolationStats struct {
	TotalViolations int                  `json:"total_violations"`
	UniqueTypes     int                  `json:"unique_types"`
	MostCommon      *core.ViolationCount `json:"most_common"`
	LeastCommon     *core.ViolationCount `json:"least_common"`
	AveragePerType  float64              `json:"average_per_type"`
}

// ViolationUploadResponse is returned after a violation file is analyzed
// and stored.
type ViolationUploadResponse struct {
	Success    bool                  `json:"success"`
	ReportID   string                `json:"report_id"`
	ReportName string                `json:"report_name"`
	MessageRU  string                `json:"message_ru"`
	MessageUZ  string                `json:"message_uz"`
	Stats      ViolationStats        `json:"stats"`
	Violations []core.ViolationCount `json:"violations"`
	TextOutput string                `json:"text_output"`
}

// ReportSummaryResponse is one entry of the report listing.
type ReportSummaryResponse struct {
	ID              string    `json:"id"`
	ReportName      string    `json:"report_name"`
	Filename        string    `json:"filename"`
	ProcessedAt     time.Time `json:"processed_at"`
	TotalViolations int       `json:"total_violations"`
	UniqueTypes     int       `json:"unique_types"`
}

// ReportDetailResponse is a stored report with its full ranked table.
type ReportDetailResponse struct {
	ReportSummaryResponse
	Violations []core.ViolationCount `json:"violations"`
	Language   core.Language         `json:"language"`
	TextOutput string                `json:"text_output"`
}

func newViolationStats(a core.ViolationAnalysis) ViolationStats {
	stats := ViolationStats{
		TotalViolations: a.Total,
		UniqueTypes:     a.UniqueTypes,
		MostCommon:      a.MostCommon(),
	}
	if n := len(a.Violations); n > 0 {
		last := a.Violations[n-1]
		stats.LeastCommon = &last
		stats.AveragePerType = float64(a.Total) / float64(n)
	}
	return stats
}

func newReportSummary(s core.ReportSummary) ReportSummaryResponse {
	return ReportSummaryResponse{
		ID:              s.ID,
		ReportName:      s.ReportName,
		Filename:        s.Filename,
		ProcessedAt:     s.ProcessedAt,
		TotalViolations: s.TotalViolations,
		UniqueTypes:     s.UniqueTypes,
	}
}

// nonNil keeps empty lists as [] rather than null on the wire.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// handleViolationsUpload analyzes an uploaded violation file and stores the
// report.
func (s *Server) handleViolationsUpload(w http.ResponseWriter, r *http.Request) {
	lang := s.defaultLang

	if err := parseMultipart(w, r, s.cfg.Upload.MaxFileSize+multipartOverhead); err != nil {
		respondError(w, r, err, lang)
		return
	}
	lang = language(r.FormValue("language"), s.defaultLang)

	upload, err := s.formFile(r, "file")
	if err != nil {
		respondError(w, r, err, lang)
		return
	}

	report, err := s.service.AnalyzeViolations(r.Context(), core.ViolationRequest{
		File:       upload,
		ReportName: r.FormValue("report_name"),
		Language:   lang,
	})
	if err != nil {
		respondError(w, r, err, lang)
		return
	}

	preview := report.Violations
	if len(preview) > previewViolations {
		preview = preview[:previewViolations]
	}

	writeJSON(w, ViolationUploadResponse{
		Success:    true,
		ReportID:   report.ID,
		ReportName: report.ReportName,
		MessageRU:  fmt.Sprintf("Файл успешно обработан. Найдено %d нарушений.", report.TotalViolations),
		MessageUZ:  fmt.Sprintf("Fayl muvaffaqiyatli qayta ishlandi. %d ta qoidabuzarlik topildi.", report.TotalViolations),
		Stats:      newViolationStats(report.Analysis()),
		Violations: nonNil(preview),
		TextOutput: report.TextOutput,
	})
}

// handleListReports lists stored reports, newest first.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.service.ListReports(r.Context())
	if err != nil {
		respondError(w, r, err, s.defaultLang)
		return
	}

	reports := make([]ReportSummaryResponse, len(summaries))
	for i, sum := range summaries {
		reports[i] = newReportSummary(sum)
	}
	writeJSON(w, map[string]any{"reports": reports})
}

// handleGetReport returns one stored report. ?lang= selects the language
// of text_output.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, s.defaultLang)
		return
	}

	lang := language(r.URL.Query().Get("lang"), report.Language)
	writeJSON(w, ReportDetailResponse{
		ReportSummaryResponse: newReportSummary(report.Summary()),
		Violations:            nonNil(report.Violations),
		Language:              lang,
		TextOutput:            report.TextFor(lang),
	})
}

// handleDownloadReport sends a stored report as a text file.
func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	lang := language(r.URL.Query().Get("lang"), s.defaultLang)

	body, filename, err := s.service.ReportDownload(r.Context(), chi.URLParam(r, "id"), lang)
	if err != nil {
		respondError(w, r, err, lang)
		return
	}
	writeAttachment(w, filename, contentTypeText, []byte(body))
}

// handleDeleteReport removes a stored report.
func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteReport(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err, s.defaultLang)
		return
	}
	writeJSON(w, map[string]any{
		"success":    true,
		"message_ru": "Отчет успешно удалён",
		"message_uz": "Hisobot muvaffaqiyatli o'chirildi",
	})
}
