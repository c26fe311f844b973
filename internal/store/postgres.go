package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/recon/internal/config"
	"github.com/JonMunkholm/recon/internal/core"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS violation_reports (
	id               TEXT PRIMARY KEY,
	report_name      TEXT        NOT NULL,
	filename         TEXT        NOT NULL,
	processed_at     TIMESTAMPTZ NOT NULL,
	total_violations INTEGER     NOT NULL,
	unique_types     INTEGER     NOT NULL,
	violations       JSONB       NOT NULL,
	language         TEXT        NOT NULL,
	text_output      TEXT        NOT NULL
);
CREATE INDEX IF NOT EXISTS violation_reports_processed_at_idx
	ON violation_reports (processed_at DESC);
`

// Postgres is a ReportStore on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, pings and migrates the schema.
func OpenPostgres(ctx context.Context, cfg config.StoreConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := NewPostgres(pool)
	if err := p.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// NewPostgres wraps an existing pool. Call Migrate before first use.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the report table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("migrate report schema: %w", err)
	}
	return nil
}

func (p *Postgres) CreateViolationReport(ctx context.Context, r *core.StoredViolationReport) error {
	violations, err := encodeViolations(r.Violations)
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO violation_reports
			(id, report_name, filename, processed_at, total_violations, unique_types, violations, language, text_output)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.ReportName, r.Filename, r.ProcessedAt.UTC(), r.TotalViolations, r.UniqueTypes,
		violations, string(r.Language), r.TextOutput,
	)
	if err != nil {
		return persistErr("create report", err)
	}
	return nil
}

func (p *Postgres) ListViolationReports(ctx context.Context) ([]core.ReportSummary, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, report_name, filename, processed_at, total_violations, unique_types
		FROM violation_reports
		ORDER BY processed_at DESC, id`)
	if err != nil {
		return nil, persistErr("list reports", err)
	}
	defer rows.Close()

	out := []core.ReportSummary{}
	for rows.Next() {
		var s core.ReportSummary
		if err := rows.Scan(&s.ID, &s.ReportName, &s.Filename, &s.ProcessedAt, &s.TotalViolations, &s.UniqueTypes); err != nil {
			return nil, persistErr("scan report", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list reports", err)
	}
	return out, nil
}

func (p *Postgres) GetViolationReport(ctx context.Context, id string) (*core.StoredViolationReport, error) {
	var (
		r          core.StoredViolationReport
		violations []byte
		lang       string
		at         time.Time
	)

	err := p.pool.QueryRow(ctx, `
		SELECT id, report_name, filename, processed_at, total_violations, unique_types, violations, language, text_output
		FROM violation_reports
		WHERE id = $1`, id,
	).Scan(&r.ID, &r.ReportName, &r.Filename, &at, &r.TotalViolations, &r.UniqueTypes, &violations, &lang, &r.TextOutput)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, persistErr("get report", err)
	}

	if r.Violations, err = decodeViolations(violations); err != nil {
		return nil, persistErr("get report", err)
	}
	r.ProcessedAt = at
	r.Language = core.Language(lang)
	return &r, nil
}

func (p *Postgres) DeleteViolationReport(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM violation_reports WHERE id = $1`, id)
	if err != nil {
		return persistErr("delete report", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}

// Ping checks the database connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
