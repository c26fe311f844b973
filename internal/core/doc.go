// Package core provides the reconciliation and analysis engine.
//
// The package holds all domain logic independent of any transport layer. It
// is used by the web handlers and by tests without modification.
//
// # Architecture
//
// Every operation starts by turning an upload into a [RecordSet]:
//
//   - Ingest: [Ingest] detects the file kind (xlsx workbook, delimited text
//     or one value per line) and decodes it. Downstream code only asks
//     [RecordSet.HasColumns].
//   - Extract: [ExtractColumns] pulls named columns with forgiving header
//     matching; [ParseColumnNames] turns user input into a column list.
//   - Analyze: [AnalyzeViolations] ranks the values of the violation
//     column; reports are persisted through a [ReportStore].
//   - Compare: [Compare] classifies the distinct values of two files into
//     present in both, only in the first and only in the second.
//   - Merge: [Merge] pools columns across many files, keeping first-seen
//     order.
//
// # Service
//
// [Service] runs these steps as jobs. A [JobLimiter] bounds how many run at
// once, an [Observer] receives timings, and report persistence is retried
// once on [ErrPersistence].
//
//	svc := core.NewService(store,
//	    core.WithLimiter(core.NewJobLimiter(4, 30*time.Second)),
//	    core.WithObserver(recorder),
//	)
//	report, err := svc.AnalyzeViolations(ctx, core.ViolationRequest{File: upload})
//
// # Rendering
//
// Results are computed once and rendered per request in Russian or Uzbek
// ([Language]). Numbers are grouped with a space: 12 345.
//
// # Error Handling
//
// Errors wrap the sentinels in errors.go. [MapError] turns any error into a
// [UserMessage] with a support code and both translations:
//
//   - IN001-IN010: Input errors (format, columns, files)
//   - REP001-REP002: Report store errors
//   - REQ001-REQ004: Request errors (busy, cancelled, timeout, rate limit)
package core
