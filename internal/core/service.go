package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/recon/internal/logging"
)

// DefaultRetryDelay is the pause before the single retry of a failed
// store operation.
const DefaultRetryDelay = 200 * time.Millisecond

// Operation names used in logs and metrics.
const (
	OpViolations = "violations"
	OpCompare    = "compare"
	OpMerge      = "merge"
)

// Observer receives job outcomes. The metrics package implements it.
type Observer interface {
	ObserveJob(operation string, err error, elapsed time.Duration)
	ObserveRecords(operation string, n int)
}

type nopObserver struct{}

func (nopObserver) ObserveJob(string, error, time.Duration) {}
func (nopObserver) ObserveRecords(string, int) {}

// Service runs the reconciliation operations. It is safe for concurrent
// use; the only state shared between requests is the ReportStore.
type Service struct {
	store        ReportStore
	limiter      *JobLimiter
	observer     Observer
	now          func() time.Time
	newID        func() string
	previewLimit int
	retryDelay   time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithLimiter bounds concurrent jobs.
func WithLimiter(l *JobLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithObserver reports job outcomes to o.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the uuid report id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// WithPreviewLimit sets how many values per column the merge preview lists.
func WithPreviewLimit(n int) Option {
	return func(s *Service) { s.previewLimit = n }
}

// WithRetryDelay sets the pause before retrying a failed store operation.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Service) { s.retryDelay = d }
}

// NewService creates a Service backed by store.
func NewService(store ReportStore, opts ...Option) *Service {
	s := &Service{
		store:        store,
		limiter:      NewJobLimiter(DefaultMaxConcurrentJobs, DefaultMaxWaitTime),
		observer:     nopObserver{},
		now:          time.Now,
		newID:        func() string { return uuid.NewString() },
		previewLimit: DefaultPreviewLimit,
		retryDelay:   DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limiter returns the job limiter, for shutdown draining and status.
func (s *Service) Limiter() *JobLimiter {
	return s.limiter
}

// PreviewLimit returns the merge preview limit.
func (s *Service) PreviewLimit() int {
	return s.previewLimit
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// runJob holds a limiter slot for the duration of fn and records its
// outcome.
func (s *Service) runJob(ctx context.Context, op string, fn func() error) error {
	if err := s.limiter.Acquire(ctx); err != nil {
		s.observer.ObserveJob(op, err, 0)
		return err
	}
	defer s.limiter.Release()

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	s.observer.ObserveJob(op, err, elapsed)

	log := logging.WithFields(ctx, "operation", op, "duration_ms", elapsed.Milliseconds())
	switch {
	case err == nil:
		log.Info("job completed")
	case IsUserError(err):
		log.Info("job rejected", "error", err)
	default:
		log.Error("job failed", "error", err)
	}
	return err
}

// withRetry runs fn and retries it once when it fails with ErrPersistence.
func (s *Service) withRetry(ctx context.Context, what string, fn func() error) error {
	err := fn()
	if err == nil || !errors.Is(err, ErrPersistence) {
		return err
	}

	logging.FromContext(ctx).Warn("report store failed, retrying", "operation", what, "error", err)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.retryDelay):
	}
	return fn()
}

// ViolationRequest is one violation file submitted for analysis.
type ViolationRequest struct {
	File       Upload
	ReportName string
	Language   Language
}

// AnalyzeViolations ingests a violation file, ranks its violation types
// and stores the report. Nothing is stored when ctx ends before the
// analysis completes.
func (s *Service) AnalyzeViolations(ctx context.Context, req ViolationRequest) (*StoredViolationReport, error) {
	var report *StoredViolationReport

	err := s.runJob(ctx, OpViolations, func() error {
		rs, err := Ingest(req.File)
		if err != nil {
			return err
		}
		s.observer.ObserveRecords(OpViolations, rs.Len())

		analysis, err := AnalyzeViolations(rs)
		if err != nil {
			return err
		}

		processedAt := s.now()
		name := strings.TrimSpace(req.ReportName)
		if name == "" {
			name = DefaultReportName(req.File.Name, processedAt)
		}

		report = &StoredViolationReport{
			ID:              s.newID(),
			ReportName:      name,
			Filename:        req.File.Name,
			ProcessedAt:     processedAt,
			TotalViolations: analysis.Total,
			UniqueTypes:     analysis.UniqueTypes,
			Violations:      analysis.Violations,
			Language:        req.Language,
		}
		report.TextOutput = RenderViolationReport(report.Header(), analysis, req.Language)

		// A request abandoned mid-flight leaves no report behind.
		if err := ctx.Err(); err != nil {
			return err
		}

		return s.withRetry(ctx, "create report", func() error {
			return s.store.CreateViolationReport(ctx, report)
		})
	})
	if err != nil {
		return nil, err
	}

	logging.WithFields(ctx, "report_id", report.ID, "file", report.Filename).
		Info("violation report stored", "total", report.TotalViolations, "unique_types", report.UniqueTypes)
	return report, nil
}

// ListReports returns stored report summaries, newest first.
func (s *Service) ListReports(ctx context.Context) ([]ReportSummary, error) {
	var out []ReportSummary
	err := s.withRetry(ctx, "list reports", func() error {
		var err error
		out, err = s.store.ListViolationReports(ctx)
		return err
	})
	return out, err
}

// GetReport returns a stored report.
func (s *Service) GetReport(ctx context.Context, id string) (*StoredViolationReport, error) {
	var out *StoredViolationReport
	err := s.withRetry(ctx, "get report", func() error {
		var err error
		out, err = s.store.GetViolationReport(ctx, id)
		return err
	})
	return out, err
}

// DeleteReport removes a stored report for good.
func (s *Service) DeleteReport(ctx context.Context, id string) error {
	err := s.withRetry(ctx, "delete report", func() error {
		return s.store.DeleteViolationReport(ctx, id)
	})
	if err == nil {
		logging.FromContext(ctx).Info("violation report deleted", "report_id", id)
	}
	return err
}

// ReportDownload renders a stored report as a text file in lang and
// returns its body and filename.
func (s *Service) ReportDownload(ctx context.Context, id string, lang Language) (string, string, error) {
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return "", "", err
	}
	filename := fmt.Sprintf("violations_report_%s.txt", report.ProcessedAt.Format("20060102_150405"))
	return report.TextFor(lang), filename, nil
}

// CompareRequest is a pair of files submitted for comparison.
type CompareRequest struct {
	File1     Upload
	File2     Upload
	File1Name string
	File2Name string
	Column    string
	MonthName string
}

// CompareFiles classifies the values of two files.
func (s *Service) CompareFiles(ctx context.Context, req CompareRequest) (*ComparisonResult, error) {
	var result *ComparisonResult

	err := s.runJob(ctx, OpCompare, func() error {
		sets, err := s.ingestAll(ctx, OpCompare, []Upload{req.File1, req.File2})
		if err != nil {
			return err
		}

		values1, err := ComparisonValues(sets[0], req.Column)
		if err != nil {
			return err
		}
		values2, err := ComparisonValues(sets[1], req.Column)
		if err != nil {
			return err
		}

		name1 := firstNonEmpty(req.File1Name, req.File1.Name)
		name2 := firstNonEmpty(req.File2Name, req.File2.Name)

		result, err = Compare(name1, values1, name2, values2)
		if err != nil {
			return err
		}
		result.MonthName = strings.TrimSpace(req.MonthName)
		result.ComparedAt = s.now()
		return nil
	})
	return result, err
}

// MergeRequest is a set of files and the columns to pool from them.
type MergeRequest struct {
	Files   []Upload
	Columns string
}

// MergeFiles pools the requested columns across files.
func (s *Service) MergeFiles(ctx context.Context, req MergeRequest) (*MergeResult, error) {
	if len(req.Files) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientFiles, len(req.Files))
	}
	columns := ParseColumnNames(req.Columns)
	if len(columns) == 0 {
		return nil, ErrNoColumnsSpecified
	}

	var result *MergeResult
	err := s.runJob(ctx, OpMerge, func() error {
		sets, err := s.ingestAll(ctx, OpMerge, req.Files)
		if err != nil {
			return err
		}
		result, err = Merge(sets, columns)
		return err
	})
	return result, err
}

// ingestAll ingests uploads in parallel, keeping submission order.
func (s *Service) ingestAll(ctx context.Context, op string, uploads []Upload) ([]*RecordSet, error) {
	sets := make([]*RecordSet, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	for i, u := range uploads {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rs, err := Ingest(u)
			if err != nil {
				return err
			}
			sets[i] = rs
			s.observer.ObserveRecords(op, rs.Len())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
