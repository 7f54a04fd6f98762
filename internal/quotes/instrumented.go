package quotes

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jwaldner/breakingbad/internal/logger"
	"github.com/jwaldner/breakingbad/internal/metrics"
)

// Instrumented wraps a Provider with timing, Prometheus histograms and slow
// call logging.
type Instrumented struct {
	// accessed atomically; kept first for 64-bit alignment
	totalRequests int64
	totalNanos    int64
	slowRequests  int64
	failures      int64

	next    Provider
	metrics *metrics.Metrics
	slow    time.Duration
}

func NewInstrumented(next Provider, m *metrics.Metrics, slow time.Duration) *Instrumented {
	if slow <= 0 {
		slow = 2 * time.Second
	}
	return &Instrumented{next: next, metrics: m, slow: slow}
}

func (i *Instrumented) Name() string { return i.next.Name() }

func (i *Instrumented) Quote(ctx context.Context, symbol string) (*Quote, error) {
	start := time.Now()
	q, err := i.next.Quote(ctx, symbol)
	duration := time.Since(start)

	atomic.AddInt64(&i.totalRequests, 1)
	atomic.AddInt64(&i.totalNanos, int64(duration))
	if err != nil {
		atomic.AddInt64(&i.failures, 1)
	}

	i.metrics.ObserveQuote(i.next.Name(), outcome(err), duration)

	logger.Debug.Printf("📡 API CALL: Quote(%s) took %v", symbol, duration)
	if duration > i.slow {
		atomic.AddInt64(&i.slowRequests, 1)
		logger.Warn.Printf("⚠️  SLOW API CALL: Quote(%s) via %s took %v", symbol, i.next.Name(), duration)
	}
	return q, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "error"
}

// Stats returns a human-readable summary of the calls made so far.
func (i *Instrumented) Stats() string {
	total := atomic.LoadInt64(&i.totalRequests)
	nanos := atomic.LoadInt64(&i.totalNanos)
	slow := atomic.LoadInt64(&i.slowRequests)
	failed := atomic.LoadInt64(&i.failures)

	avg := time.Duration(0)
	if total > 0 {
		avg = time.Duration(nanos / total)
	}
	return fmt.Sprintf("%s quotes: %d requests, %d failed, avg %v, %d slow (>%v)",
		i.next.Name(), total, failed, avg, slow, i.slow)
}

// Close logs the final report.
func (i *Instrumented) Close() {
	if atomic.LoadInt64(&i.totalRequests) > 0 {
		logger.Info.Printf("📊 %s", i.Stats())
	}
}
