package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/recon/internal/core"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeOK, Outcome(nil))
	assert.Equal(t, OutcomeRejected, Outcome(fmt.Errorf("x: %w", core.ErrEmptyInput)))
	assert.Equal(t, OutcomeBusy, Outcome(core.ErrTooManyJobs))
	assert.Equal(t, OutcomeCancelled, Outcome(context.Canceled))
	assert.Equal(t, OutcomeFailed, Outcome(errors.New("boom")))
}

func TestRecorder_ObserveJob(t *testing.T) {
	r := New()

	r.ObserveJob(core.OpMerge, nil, 20*time.Millisecond)
	r.ObserveJob(core.OpMerge, nil, 30*time.Millisecond)
	r.ObserveJob(core.OpMerge, core.ErrInsufficientFiles, time.Millisecond)
	r.ObserveRecords(core.OpMerge, 120)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.jobs.WithLabelValues(core.OpMerge, OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.jobs.WithLabelValues(core.OpMerge, OutcomeRejected)))
	assert.Equal(t, 120.0, testutil.ToFloat64(r.records.WithLabelValues(core.OpMerge)))
}

func TestRecorder_MiddlewareUsesRoutePattern(t *testing.T) {
	r := New()

	router := chi.NewRouter()
	router.Use(r.Middleware)
	router.Get("/violations/report/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	router.Handle("/metrics", r.Handler())

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/violations/report/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(
		r.requests.WithLabelValues(http.MethodGet, "/violations/report/{id}", "404")))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "recon_http_requests_total"))
}
