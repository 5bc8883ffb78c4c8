// Package cleanup cancels orders that were created but never paid, so
// abandoned carts do not pile up in CREATED forever.
package cleanup

import (
	"context"
	"time"

	"github.com/servex-app/servex-backend/pkg/logger"
	"github.com/servex-app/servex-backend/pkg/metrics"
)

const jobName = "stale_order_cleanup"

// OrderCanceller is the repository slice the worker needs.
type OrderCanceller interface {
	CancelStaleCreated(ctx context.Context, cutoff time.Time) (int64, error)
}

// Worker periodically cancels stale CREATED orders.
type Worker struct {
	orders     OrderCanceller
	interval   time.Duration
	staleAfter time.Duration
	metrics    *metrics.JobMetrics
	log        *logger.Logger
}

func NewWorker(orders OrderCanceller, interval, staleAfter time.Duration, jobMetrics *metrics.JobMetrics, log *logger.Logger) *Worker {
	return &Worker{
		orders:     orders,
		interval:   interval,
		staleAfter: staleAfter,
		metrics:    jobMetrics,
		log:        log,
	}
}

// Run executes the sweep on every tick until ctx is cancelled. The
// first sweep happens immediately.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// Sweep runs a single pass, used by Run and by the one-shot CLI mode.
func (w *Worker) Sweep(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-w.staleAfter)
	return w.orders.CancelStaleCreated(ctx, cutoff)
}

func (w *Worker) sweep(ctx context.Context) {
	start := time.Now()
	cancelled, err := w.Sweep(ctx)
	w.metrics.ObserveDuration(jobName, time.Since(start))
	if err != nil {
		w.metrics.IncFailure(jobName)
		w.log.Error(ctx, "stale order sweep failed", err)
		return
	}
	w.metrics.IncSuccess(jobName)
	if cancelled > 0 {
		sweepCtx := w.log.WithField(ctx, "cancelled", cancelled)
		w.log.Info(sweepCtx, "cancelled stale orders")
	}
}
