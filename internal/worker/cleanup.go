// Package worker contains the background task that releases expired
// reservations back into the inventory pool.
package worker

import (
    "context"
    "log"
    "time"

    "github.com/arenadev/ticket-reservation/internal/clock"
    "github.com/arenadev/ticket-reservation/internal/model"
)

// Canceller releases a single reservation.  The cleanup worker uses
// the same release path as an explicit cancellation, so a record
// cancelled concurrently is a harmless no-op.
type Canceller interface {
    CancelReservation(ctx context.Context, reservationID string) error
}

// ExpiredLister finds the reservations a sweep should release and
// purges long-inactive records.
type ExpiredLister interface {
    FindActiveExpiredBefore(ctx context.Context, cutoff time.Time) ([]model.Reservation, error)
    DeleteInactiveExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

const (
    defaultSweepInterval = time.Minute
    defaultRetention     = 24 * time.Hour
)

// CleanupWorker periodically scans for active reservations whose
// expiry has passed and releases them.  A reservation gets one full
// sweep interval of grace: only records that expired more than one
// interval ago are released, so a sweep never races a cancellation
// happening at the same instant.
type CleanupWorker struct {
    reservations ExpiredLister
    canceller    Canceller
    clk          clock.Clock
    interval     time.Duration
    retention    time.Duration
}

// NewCleanupWorker builds a worker with the given sweep interval.
// Non-positive values fall back to the defaults (60s sweep, 24h
// retention of inactive records).
func NewCleanupWorker(reservations ExpiredLister, canceller Canceller, clk clock.Clock, interval, retention time.Duration) *CleanupWorker {
    if interval <= 0 {
        interval = defaultSweepInterval
    }
    if retention <= 0 {
        retention = defaultRetention
    }
    return &CleanupWorker{
        reservations: reservations,
        canceller:    canceller,
        clk:          clk,
        interval:     interval,
        retention:    retention,
    }
}

// Run ticks until the context is cancelled.
func (w *CleanupWorker) Run(ctx context.Context) {
    log.Printf("cleanup: sweeping every %s", w.interval)
    ticker := time.NewTicker(w.interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            log.Printf("cleanup: shutting down")
            return
        case <-ticker.C:
            w.Sweep(ctx)
        }
    }
}

// Sweep performs one pass: release everything that expired more than
// one interval ago, then purge inactive records past retention.  A
// failure on one record is logged and never aborts the pass.
func (w *CleanupWorker) Sweep(ctx context.Context) int {
    now := w.clk.Now()
    cutoff := now.Add(-w.interval)
    expired, err := w.reservations.FindActiveExpiredBefore(ctx, cutoff)
    if err != nil {
        log.Printf("cleanup: listing expired reservations: %v", err)
        return 0
    }
    released := 0
    for _, res := range expired {
        if ctx.Err() != nil {
            return released
        }
        if err := w.canceller.CancelReservation(ctx, res.ID); err != nil {
            log.Printf("cleanup: releasing reservation %s: %v", res.ID, err)
            continue
        }
        released++
    }
    if released > 0 {
        log.Printf("cleanup: released %d expired reservations", released)
    }
    if purged, err := w.reservations.DeleteInactiveExpiredBefore(ctx, now.Add(-w.retention)); err != nil {
        log.Printf("cleanup: purging inactive reservations: %v", err)
    } else if purged > 0 {
        log.Printf("cleanup: purged %d inactive reservations", purged)
    }
    return released
}
