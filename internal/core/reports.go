package core

import (
	"context"
	"time"
)

// StoredViolationReport is a persisted violation analysis. ID and
// ProcessedAt are assigned once at creation and never change.
type StoredViolationReport struct {
	ID              string
	ReportName      string
	Filename        string
	ProcessedAt     time.Time
	TotalViolations int
	UniqueTypes     int
	Violations      []ViolationCount
	Language        Language
	TextOutput      string
}

// ReportSummary is one entry of the report listing.
type ReportSummary struct {
	ID              string
	ReportName      string
	Filename        string
	ProcessedAt     time.Time
	TotalViolations int
	UniqueTypes     int
}

// Summary returns the listing view of r.
func (r *StoredViolationReport) Summary() ReportSummary {
	return ReportSummary{
		ID:              r.ID,
		ReportName:      r.ReportName,
		Filename:        r.Filename,
		ProcessedAt:     r.ProcessedAt,
		TotalViolations: r.TotalViolations,
		UniqueTypes:     r.UniqueTypes,
	}
}

// Analysis rebuilds the computed numbers of r.
func (r *StoredViolationReport) Analysis() ViolationAnalysis {
	return ViolationAnalysis{
		Violations:  r.Violations,
		Total:       r.TotalViolations,
		UniqueTypes: r.UniqueTypes,
	}
}

// Header returns the identifying block of the rendered report.
func (r *StoredViolationReport) Header() ReportHeader {
	return ReportHeader{ReportName: r.ReportName, Filename: r.Filename, ProcessedAt: r.ProcessedAt}
}

// TextFor returns the report text in lang. The stored text is reused when
// it was rendered in lang; otherwise the stored counts are rendered again.
func (r *StoredViolationReport) TextFor(lang Language) string {
	if lang == r.Language && r.TextOutput != "" {
		return r.TextOutput
	}
	return RenderViolationReport(r.Header(), r.Analysis(), lang)
}

// ReportStore persists violation reports.
//
// Implementations must give concurrent creates distinct, durable entries,
// return ErrReportNotFound for unknown or deleted ids, and wrap storage
// failures in ErrPersistence. List returns newest first.
type ReportStore interface {
	CreateViolationReport(ctx context.Context, r *StoredViolationReport) error
	ListViolationReports(ctx context.Context) ([]ReportSummary, error)
	GetViolationReport(ctx context.Context, id string) (*StoredViolationReport, error)
	DeleteViolationReport(ctx context.Context, id string) error
	Close() error
}
