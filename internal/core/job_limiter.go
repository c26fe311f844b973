package core

// job_limiter.go bounds how many analysis, comparison and merge jobs run at
// once. Ingesting a large workbook holds the whole file in memory, so the
// number of parallel jobs is the memory ceiling of the service.
//
// When every slot is taken a new job waits up to maxWait and then fails with
// ErrTooManyJobs. WaitForDrain lets shutdown finish in-flight jobs.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyJobs is returned when no job slot frees up within the wait
// timeout. Clients should retry after a short delay.
var ErrTooManyJobs = errors.New("too many concurrent jobs")

// DefaultMaxConcurrentJobs is the default limit for parallel jobs.
const DefaultMaxConcurrentJobs = 4

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// JobLimiter is a counting semaphore over request jobs.
type JobLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewJobLimiter creates a limiter that allows at most maxConcurrent jobs.
func NewJobLimiter(maxConcurrent int, maxWait time.Duration) *JobLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentJobs
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &JobLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire takes a job slot, waiting at most maxWait. The caller must
// Release the slot when the job completes.
func (l *JobLimiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.TryAcquire() {
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		// The caller's own cancellation wins over our timeout.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyJobs
	}
}

// TryAcquire takes a slot without blocking.
func (l *JobLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *JobLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of running jobs.
func (l *JobLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// Available returns the number of free slots.
func (l *JobLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until no job is running or ctx is done.
func (l *JobLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// JobLimiterStatus is a snapshot of the limiter for the health endpoint.
type JobLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state.
func (l *JobLimiter) Status() JobLimiterStatus {
	return JobLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: cap(l.semaphore),
	}
}
