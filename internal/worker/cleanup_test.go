package worker

import (
    "context"
    "errors"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/arenadev/ticket-reservation/internal/clock"
    "github.com/arenadev/ticket-reservation/internal/model"
)

type fakeLister struct {
	mu            sync.Mutex
	records       []model.Reservation
	lastCutoff    time.Time
	purgeCutoff   time.Time
	purged        int64
	listErr       error
}

func (f *fakeLister) FindActiveExpiredBefore(_ context.Context, cutoff time.Time) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCutoff = cutoff
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Reservation
	for _, r := range f.records {
		if r.Active && r.ExpiresAt.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeLister) DeleteInactiveExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purgeCutoff = cutoff
	return f.purged, nil
}

type fakeCanceller struct {
	mu        sync.Mutex
	cancelled []string
	failOn    map[string]error
}

func (f *fakeCanceller) CancelReservation(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failOn[id]; ok {
		return err
	}
	f.cancelled = append(f.cancelled, id)
	return nil
}

func TestSweepHonorsGraceWindow(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)
	lister := &fakeLister{records: []model.Reservation{
		{ID: "old", Active: true, ExpiresAt: now.Add(-90 * time.Second)},
		{ID: "fresh", Active: true, ExpiresAt: now.Add(-30 * time.Second)},
		{ID: "inactive", Active: false, ExpiresAt: now.Add(-2 * time.Hour)},
	}}
	canceller := &fakeCanceller{}

	w := NewCleanupWorker(lister, canceller, clk, time.Minute, 24*time.Hour)
	released := w.Sweep(context.Background())

	// "fresh" expired less than one interval ago and must survive this pass
	assert.Equal(t, 1, released)
	assert.Equal(t, []string{"old"}, canceller.cancelled)
	assert.Equal(t, now.Add(-time.Minute), lister.lastCutoff)
}

func TestSweepContinuesPastFailures(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)
	lister := &fakeLister{records: []model.Reservation{
		{ID: "a", Active: true, ExpiresAt: now.Add(-10 * time.Minute)},
		{ID: "b", Active: true, ExpiresAt: now.Add(-10 * time.Minute)},
		{ID: "c", Active: true, ExpiresAt: now.Add(-10 * time.Minute)},
	}}
	canceller := &fakeCanceller{failOn: map[string]error{"b": errors.New("boom")}}

	w := NewCleanupWorker(lister, canceller, clk, time.Minute, 24*time.Hour)
	released := w.Sweep(context.Background())

	assert.Equal(t, 2, released)
	assert.Equal(t, []string{"a", "c"}, canceller.cancelled)
}

func TestSweepPurgesOldInactiveRecords(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)
	lister := &fakeLister{purged: 3}

	w := NewCleanupWorker(lister, &fakeCanceller{}, clk, time.Minute, 24*time.Hour)
	w.Sweep(context.Background())

	assert.Equal(t, now.Add(-24*time.Hour), lister.purgeCutoff)
}

func TestSweepListErrorReleasesNothing(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	lister := &fakeLister{listErr: errors.New("db down")}
	canceller := &fakeCanceller{}

	w := NewCleanupWorker(lister, canceller, clock.NewFixed(now), time.Minute, 24*time.Hour)
	released := w.Sweep(context.Background())

	assert.Equal(t, 0, released)
	assert.Empty(t, canceller.cancelled)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	lister := &fakeLister{}
	w := NewCleanupWorker(lister, &fakeCanceller{}, clock.NewSystem(), 10*time.Millisecond, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}

	lister.mu.Lock()
	defer lister.mu.Unlock()
	require.False(t, lister.lastCutoff.IsZero(), "worker never swept")
}
