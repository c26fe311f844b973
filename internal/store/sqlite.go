package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JonMunkholm/recon/internal/core"
)

// reportRow is the gorm model of a stored violation report.
type reportRow struct {
	ID              string    `gorm:"primaryKey;size:36"`
	ReportName      string    `gorm:"size:512"`
	Filename        string    `gorm:"size:1024"`
	ProcessedAt     time.Time `gorm:"index"`
	TotalViolations int
	UniqueTypes     int
	Violations      string `gorm:"type:text"`
	Language        string `gorm:"size:8"`
	TextOutput      string `gorm:"type:text"`
}

func (reportRow) TableName() string { return "violation_reports" }

// SQLite is a ReportStore in an embedded SQLite file.
type SQLite struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates
// the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(sqliteDSN(path)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// SQLite allows one writer; a single connection serializes access
	// instead of surfacing "database is locked".
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&reportRow{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate report schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// sqliteDSN adds a busy timeout to path.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)"
}

func (s *SQLite) CreateViolationReport(ctx context.Context, r *core.StoredViolationReport) error {
	violations, err := encodeViolations(r.Violations)
	if err != nil {
		return err
	}

	row := reportRow{
		ID:              r.ID,
		ReportName:      r.ReportName,
		Filename:        r.Filename,
		ProcessedAt:     r.ProcessedAt.UTC(),
		TotalViolations: r.TotalViolations,
		UniqueTypes:     r.UniqueTypes,
		Violations:      string(violations),
		Language:        string(r.Language),
		TextOutput:      r.TextOutput,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return persistErr("create report", err)
	}
	return nil
}

func (s *SQLite) ListViolationReports(ctx context.Context) ([]core.ReportSummary, error) {
	var rows []reportRow
	err := s.db.WithContext(ctx).
		Select("id", "report_name", "filename", "processed_at", "total_violations", "unique_types").
		Order("processed_at DESC").Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, persistErr("list reports", err)
	}

	out := make([]core.ReportSummary, len(rows))
	for i, row := range rows {
		out[i] = core.ReportSummary{
			ID:              row.ID,
			ReportName:      row.ReportName,
			Filename:        row.Filename,
			ProcessedAt:     row.ProcessedAt,
			TotalViolations: row.TotalViolations,
			UniqueTypes:     row.UniqueTypes,
		}
	}
	return out, nil
}

func (s *SQLite) GetViolationReport(ctx context.Context, id string) (*core.StoredViolationReport, error) {
	var row reportRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, persistErr("get report", err)
	}

	violations, err := decodeViolations([]byte(row.Violations))
	if err != nil {
		return nil, persistErr("get report", err)
	}

	return &core.StoredViolationReport{
		ID:              row.ID,
		ReportName:      row.ReportName,
		Filename:        row.Filename,
		ProcessedAt:     row.ProcessedAt,
		TotalViolations: row.TotalViolations,
		UniqueTypes:     row.UniqueTypes,
		Violations:      violations,
		Language:        core.Language(row.Language),
		TextOutput:      row.TextOutput,
	}, nil
}

func (s *SQLite) DeleteViolationReport(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&reportRow{})
	if res.Error != nil {
		return persistErr("delete report", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(id)
	}
	return nil
}

// Ping checks the database file is usable.
func (s *SQLite) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
