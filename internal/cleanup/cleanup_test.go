package cleanup

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servex-app/servex-backend/pkg/logger"
	"github.com/servex-app/servex-backend/pkg/metrics"
)

type fakeCanceller struct {
	cutoffs   []time.Time
	cancelled int64
	err       error
}

func (f *fakeCanceller) CancelStaleCreated(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.cancelled, f.err
}

func newTestWorker(canceller *fakeCanceller) *Worker {
	log := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	return NewWorker(canceller, time.Minute, 30*time.Minute, metrics.NewJobMetrics(prometheus.NewRegistry()), log)
}

func TestSweepUsesStaleAfterCutoff(t *testing.T) {
	canceller := &fakeCanceller{cancelled: 3}
	worker := newTestWorker(canceller)

	count, err := worker.Sweep(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	require.Len(t, canceller.cutoffs, 1)
	expected := time.Now().UTC().Add(-30 * time.Minute)
	assert.WithinDuration(t, expected, canceller.cutoffs[0], 5*time.Second)
}

func TestRunSweepsImmediatelyAndStopsOnCancel(t *testing.T) {
	canceller := &fakeCanceller{}
	worker := newTestWorker(canceller)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	require.Eventually(t, func() bool { return len(canceller.cutoffs) >= 1 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestSweepErrorDoesNotPanic(t *testing.T) {
	canceller := &fakeCanceller{err: assert.AnError}
	worker := newTestWorker(canceller)
	worker.sweep(context.Background())
	require.Len(t, canceller.cutoffs, 1)
}
