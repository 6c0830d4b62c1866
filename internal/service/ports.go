package service

import (
    "context"
    "time"

    "github.com/arenadev/ticket-reservation/internal/model"
)

// The reservation service consumes its collaborators through small
// interfaces so the core can be exercised against in-memory fakes.
// The production implementations live in internal/repository.

// EventDirectory resolves events.
type EventDirectory interface {
    FindByID(ctx context.Context, id string) (*model.Event, error)
}

// InventoryStore owns the per-ticket-type availability counter.
// Reserve must be atomic with respect to the read-then-write of the
// counter and return repository.ErrInsufficientInventory when fewer
// units are available than requested.
type InventoryStore interface {
    FindByID(ctx context.Context, id string) (*model.TicketType, error)
    FindByIDAndEvent(ctx context.Context, id, eventID string) (*model.TicketType, error)
    Reserve(ctx context.Context, id string, quantity int) error
    Release(ctx context.Context, id string, quantity int) error
}

// SeatLedger tracks per-seat availability for ticket types that sell
// specific seats.
type SeatLedger interface {
    FindByIDs(ctx context.Context, ids []string) ([]model.Seat, error)
    FindAvailable(ctx context.Context, ticketTypeID string) ([]model.Seat, error)
    MarkUnavailable(ctx context.Context, ids []string) error
    MarkAvailable(ctx context.Context, ids []string) error
}

// ReservationStore persists reservation records.
type ReservationStore interface {
    Create(ctx context.Context, res *model.Reservation) error
    FindByID(ctx context.Context, id string) (*model.Reservation, error)
    Deactivate(ctx context.Context, id string) error
    FindActiveExpiredBefore(ctx context.Context, cutoff time.Time) ([]model.Reservation, error)
    FindActiveExpiringAfter(ctx context.Context, t time.Time) ([]model.Reservation, error)
    ListAll(ctx context.Context) ([]model.Reservation, error)
    DeleteInactiveExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TxRunner groups several store calls into one atomic unit.
type TxRunner interface {
    WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
