// Package store implements core.ReportStore on PostgreSQL (pgx) and on an
// embedded SQLite file (gorm). Both keep the full ranked violation list as
// JSON next to the summary columns, so a report can be rendered again in
// any language without recomputation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/recon/internal/config"
	"github.com/JonMunkholm/recon/internal/core"
)

// Open connects the report store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (core.ReportStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case config.DriverPostgres:
		p, err := OpenPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.DriverSQLite:
		s, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// persistErr classifies a driver error. Cancellation passes through
// untouched; everything else is an ErrPersistence.
func persistErr(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, core.ErrPersistence, err)
}

func notFound(id string) error {
	return fmt.Errorf("report %s: %w", id, core.ErrReportNotFound)
}

func encodeViolations(v []core.ViolationCount) ([]byte, error) {
	if v == nil {
		v = []core.ViolationCount{}
	}
	return json.Marshal(v)
}

func decodeViolations(data []byte) ([]core.ViolationCount, error) {
	var v []core.ViolationCount
	if len(data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode violations: %w", err)
	}
	return v, nil
}
