package core

import "errors"

// Sentinel errors for the reconciliation engine. Callers wrap them with
// context via fmt.Errorf("%w: ...") and test with errors.Is.
var (
	// ErrUnsupportedFormat is returned when a file is neither a spreadsheet
	// nor a text/delimited file.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrColumnNotFound is returned when a required column is missing.
	ErrColumnNotFound = errors.New("column not found")

	// ErrEmptyInput is returned when a comparison side yields no values.
	ErrEmptyInput = errors.New("empty input")

	// ErrInsufficientFiles is returned when a merge gets fewer than two files.
	ErrInsufficientFiles = errors.New("insufficient files")

	// ErrNoColumnsSpecified is returned when the merge column list is empty.
	ErrNoColumnsSpecified = errors.New("no columns specified")

	// ErrReportNotFound is returned on view/delete of an unknown report id.
	ErrReportNotFound = errors.New("report not found")

	// ErrPersistence marks a store-layer I/O failure. It is the only error
	// class that is retried.
	ErrPersistence = errors.New("persistence failure")

	// ErrInvalidSide is returned when a difference download names neither
	// file1 nor file2.
	ErrInvalidSide = errors.New("invalid file side")

	// ErrNoData is returned when a download request carries no result payload.
	ErrNoData = errors.New("no data to export")
)

// IsUserError reports whether err belongs to the user-input class: it is
// caused by the request itself and never retried.
func IsUserError(err error) bool {
	for _, target := range []error{
		ErrUnsupportedFormat,
		ErrColumnNotFound,
		ErrEmptyInput,
		ErrInsufficientFiles,
		ErrNoColumnsSpecified,
		ErrReportNotFound,
		ErrInvalidSide,
		ErrNoData,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
