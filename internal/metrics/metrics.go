// Package metrics exposes Prometheus counters for reconciliation jobs and
// HTTP traffic. Each Recorder owns its registry, so tests and multiple
// servers in one process never collide on collector registration.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/recon/internal/core"
)

const namespace = "recon"

// Recorder implements core.Observer and the HTTP metrics middleware.
type Recorder struct {
	registry *prometheus.Registry

	jobs        *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	records     *prometheus.CounterVec
	requests    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
}

var _ core.Observer = (*Recorder)(nil)

// New creates a Recorder with Go runtime and process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Reconciliation jobs by operation and outcome.",
		}, []string{"operation", "outcome"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Time spent processing a job, excluding the wait for a slot.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_ingested_total",
			Help:      "Rows or lines read from uploaded files.",
		}, []string{"operation"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"method", "route", "status"}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.jobs, r.jobDuration, r.records, r.requests, r.reqDuration,
	)
	return r
}

// Outcome labels.
const (
	OutcomeOK        = "ok"
	OutcomeRejected  = "rejected"
	OutcomeBusy      = "busy"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// Outcome classifies a job error for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case core.IsUserError(err):
		return OutcomeRejected
	case core.MapError(err).Code == "REQ001":
		return OutcomeBusy
	case core.MapError(err).Code == "REQ002":
		return OutcomeCancelled
	default:
		return OutcomeFailed
	}
}

// ObserveJob records one finished job.
func (r *Recorder) ObserveJob(operation string, err error, elapsed time.Duration) {
	r.jobs.WithLabelValues(operation, Outcome(err)).Inc()
	if elapsed > 0 {
		r.jobDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	}
}

// ObserveRecords counts ingested rows.
func (r *Recorder) ObserveRecords(operation string, n int) {
	r.records.WithLabelValues(operation).Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests by chi route pattern, so ids in paths do not
// explode label cardinality.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

		next.ServeHTTP(ww, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		r.requests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
		r.reqDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	})
}
