package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/recon/internal/config"
	"github.com/JonMunkholm/recon/internal/core"
)

// Runs against a real server only when RECON_TEST_DATABASE_URL is set.
func openTestPostgres(t *testing.T) *Postgres {
	t.Helper()

	url := os.Getenv("RECON_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("RECON_TEST_DATABASE_URL not set")
	}

	p, err := OpenPostgres(context.Background(), config.StoreConfig{
		Driver:          config.DriverPostgres,
		DatabaseURL:     url,
		MaxConns:        4,
		MinConns:        0,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestPostgres_Lifecycle(t *testing.T) {
	p := openTestPostgres(t)
	ctx := context.Background()

	id := uuid.NewString()
	at := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, p.CreateViolationReport(ctx, sampleReport(id, at)))

	got, err := p.GetViolationReport(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.ProcessedAt.Equal(at))
	assert.Len(t, got.Violations, 2)

	list, err := p.ListViolationReports(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, list)

	require.NoError(t, p.DeleteViolationReport(ctx, id))

	_, err = p.GetViolationReport(ctx, id)
	assert.ErrorIs(t, err, core.ErrReportNotFound)
	assert.ErrorIs(t, p.DeleteViolationReport(ctx, id), core.ErrReportNotFound)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "mongo"})
	assert.Error(t, err)
}

func TestOpen_SQLite(t *testing.T) {
	s, err := Open(context.Background(), config.StoreConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: t.TempDir() + "/r.db",
	})
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}
