package service

import (
    "context"
    "errors"
    "time"

    "github.com/google/uuid"

    "github.com/arenadev/ticket-reservation/internal/clock"
    "github.com/arenadev/ticket-reservation/internal/model"
    "github.com/arenadev/ticket-reservation/internal/repository"
)

// Validation and state errors surfaced by the reservation service.
// Handlers map them onto 400 (invalid argument) and 409 (conflict).
var (
    ErrInvalidQuantity     = errors.New("invalid quantity")
    ErrSeatCountMismatch   = errors.New("seat count does not match quantity")
    ErrSeatUnavailable     = errors.New("one or more seats are unavailable")
    ErrEventNotAvailable   = errors.New("event is not available for reservations")
    ErrEventAlreadyStarted = errors.New("event has already started")
)

const (
    defaultReservationTTL = 5 * time.Minute
    discountThreshold     = 5
    discountFactor        = 0.9
)

// ReservationDetail is the wire representation of a reservation,
// created or listed.
type ReservationDetail struct {
    ReservationID   string    `json:"reservationId"`
    TicketTypeID    string    `json:"ticketTypeId"`
    TicketTypeName  string    `json:"ticketTypeName"`
    VenueZone       string    `json:"venueZone"`
    Quantity        int       `json:"quantity"`
    PricePerTicket  float64   `json:"pricePerTicket"`
    TotalPrice      float64   `json:"totalPrice"`
    DiscountApplied bool      `json:"discountApplied"`
    ExpiresAt       time.Time `json:"expiresAt"`
    Active          bool      `json:"active"`
    SeatIDs         []string  `json:"seatIds,omitempty"`
}

// SeatAvailability is one available seat in the read path.
type SeatAvailability struct {
    ID     string  `json:"id"`
    Row    string  `json:"row"`
    Number string  `json:"number"`
    Zone   string  `json:"zone"`
    Price  float64 `json:"price"`
}

// ReservationService is the transactional boundary around the
// inventory counter, the seat ledger and the reservation store.  The
// read-check-decrement sequence for one ticket type runs under that
// type's mutex, so concurrent attempts against the same type are
// linearized while different types never block each other.
// Cancellation and the expiry sweep take the same mutex before
// returning units to the pool.
type ReservationService struct {
    events       EventDirectory
    inventory    InventoryStore
    seats        SeatLedger
    reservations ReservationStore
    tx           TxRunner
    locks        *lockTable
    clk          clock.Clock
    ttl          time.Duration
}

// Option tweaks a ReservationService.
type Option func(*ReservationService)

// WithReservationTTL overrides the default five-minute hold window.
func WithReservationTTL(d time.Duration) Option {
    return func(s *ReservationService) {
        if d > 0 {
            s.ttl = d
        }
    }
}

// NewReservationService wires the service to its collaborators.
func NewReservationService(
    events EventDirectory,
    inventory InventoryStore,
    seats SeatLedger,
    reservations ReservationStore,
    tx TxRunner,
    clk clock.Clock,
    opts ...Option,
) *ReservationService {
    s := &ReservationService{
        events:       events,
        inventory:    inventory,
        seats:        seats,
        reservations: reservations,
        tx:           tx,
        locks:        newLockTable(),
        clk:          clk,
        ttl:          defaultReservationTTL,
    }
    for _, opt := range opts {
        opt(s)
    }
    return s
}

// CreateReservation places a time-boxed hold of quantity units on a
// ticket type, optionally bound to specific seats.  Seat and counter
// mutations and the reservation insert commit together.
func (s *ReservationService) CreateReservation(ctx context.Context, eventID, ticketTypeID string, quantity int, seatIDs []string) (*ReservationDetail, error) {
    now := s.clk.Now()
    ev, err := s.events.FindByID(ctx, eventID)
    if err != nil {
        return nil, err
    }
    if !ev.Active || ev.Status != model.EventStatusPublished || ev.StartsAt.IsZero() {
        return nil, ErrEventNotAvailable
    }
    if ev.HasStarted(now) {
        return nil, ErrEventAlreadyStarted
    }
    if _, err := s.inventory.FindByIDAndEvent(ctx, ticketTypeID, eventID); err != nil {
        return nil, err
    }
    if quantity < 1 || quantity > ev.QuantityCap() {
        return nil, ErrInvalidQuantity
    }
    seatIDs = dedupe(seatIDs)

    lock := s.locks.acquire(ticketTypeID)
    defer lock.Unlock()

    var detail *ReservationDetail
    err = s.tx.WithTx(ctx, func(ctx context.Context) error {
        // Re-read inside the lock: the counter is stable here because
        // every mutator holds the same per-type mutex.
        tt, err := s.inventory.FindByIDAndEvent(ctx, ticketTypeID, eventID)
        if err != nil {
            return err
        }
        if quantity > tt.AvailableQuantity {
            return repository.ErrInsufficientInventory
        }
        if len(seatIDs) > 0 {
            if len(seatIDs) != quantity {
                return ErrSeatCountMismatch
            }
            found, err := s.seats.FindByIDs(ctx, seatIDs)
            if err != nil {
                return err
            }
            for _, seat := range found {
                if !seat.Available || seat.TicketTypeID != tt.ID {
                    return ErrSeatUnavailable
                }
            }
            if err := s.seats.MarkUnavailable(ctx, seatIDs); err != nil {
                return err
            }
        }
        total := tt.Price * float64(quantity)
        discounted := quantity > discountThreshold
        if discounted {
            total *= discountFactor
        }
        if err := s.inventory.Reserve(ctx, tt.ID, quantity); err != nil {
            return err
        }
        res := &model.Reservation{
            ID:           uuid.NewString(),
            TicketTypeID: tt.ID,
            Quantity:     quantity,
            TotalPrice:   total,
            Active:       true,
            SeatIDs:      seatIDs,
            CreatedAt:    now,
            ExpiresAt:    now.Add(s.ttl),
        }
        if err := s.reservations.Create(ctx, res); err != nil {
            return err
        }
        detail = detailFrom(res, tt)
        return nil
    })
    if err != nil {
        return nil, err
    }
    return detail, nil
}

// CancelReservation returns a reservation's quantity to the pool and
// frees its seats, exactly once.  Cancelling an already-inactive
// reservation is a no-op; an unknown id is an error.
func (s *ReservationService) CancelReservation(ctx context.Context, reservationID string) error {
    res, err := s.reservations.FindByID(ctx, reservationID)
    if err != nil {
        return err
    }
    if !res.Active {
        return nil
    }

    lock := s.locks.acquire(res.TicketTypeID)
    defer lock.Unlock()

    return s.tx.WithTx(ctx, func(ctx context.Context) error {
        // Re-read inside the lock: a concurrent cancel or sweep may
        // have already released this reservation.
        cur, err := s.reservations.FindByID(ctx, reservationID)
        if err != nil {
            return err
        }
        if !cur.Active {
            return nil
        }
        if err := s.inventory.Release(ctx, cur.TicketTypeID, cur.Quantity); err != nil {
            return err
        }
        if len(cur.SeatIDs) > 0 {
            if err := s.seats.MarkAvailable(ctx, cur.SeatIDs); err != nil {
                return err
            }
        }
        return s.reservations.Deactivate(ctx, reservationID)
    })
}

// GetAvailableSeats lists the currently-available seats of a ticket
// type, after the same event and ticket-type validation as creation.
func (s *ReservationService) GetAvailableSeats(ctx context.Context, eventID, ticketTypeID string) ([]SeatAvailability, error) {
    now := s.clk.Now()
    ev, err := s.events.FindByID(ctx, eventID)
    if err != nil {
        return nil, err
    }
    if !ev.Active || ev.Status != model.EventStatusPublished || ev.StartsAt.IsZero() {
        return nil, ErrEventNotAvailable
    }
    if ev.HasStarted(now) {
        return nil, ErrEventAlreadyStarted
    }
    tt, err := s.inventory.FindByIDAndEvent(ctx, ticketTypeID, eventID)
    if err != nil {
        return nil, err
    }
    seats, err := s.seats.FindAvailable(ctx, tt.ID)
    if err != nil {
        return nil, err
    }
    out := make([]SeatAvailability, 0, len(seats))
    for _, seat := range seats {
        out = append(out, SeatAvailability{
            ID:     seat.ID,
            Row:    seat.Row,
            Number: seat.Number,
            Zone:   seat.Zone,
            Price:  tt.Price,
        })
    }
    return out, nil
}

// ListReservations returns every reservation, active or not.
func (s *ReservationService) ListReservations(ctx context.Context) ([]ReservationDetail, error) {
    reservations, err := s.reservations.ListAll(ctx)
    if err != nil {
        return nil, err
    }
    return s.toDetails(ctx, reservations)
}

// ListActiveReservations returns reservations that are active and
// not yet expired.
func (s *ReservationService) ListActiveReservations(ctx context.Context) ([]ReservationDetail, error) {
    reservations, err := s.reservations.FindActiveExpiringAfter(ctx, s.clk.Now())
    if err != nil {
        return nil, err
    }
    return s.toDetails(ctx, reservations)
}

func (s *ReservationService) toDetails(ctx context.Context, reservations []model.Reservation) ([]ReservationDetail, error) {
    types := make(map[string]*model.TicketType)
    details := make([]ReservationDetail, 0, len(reservations))
    for i := range reservations {
        res := &reservations[i]
        tt, ok := types[res.TicketTypeID]
        if !ok {
            var err error
            tt, err = s.inventory.FindByID(ctx, res.TicketTypeID)
            if err != nil {
                return nil, err
            }
            types[res.TicketTypeID] = tt
        }
        details = append(details, *detailFrom(res, tt))
    }
    return details, nil
}

func detailFrom(res *model.Reservation, tt *model.TicketType) *ReservationDetail {
    return &ReservationDetail{
        ReservationID:   res.ID,
        TicketTypeID:    tt.ID,
        TicketTypeName:  tt.Name,
        VenueZone:       tt.VenueZone,
        Quantity:        res.Quantity,
        PricePerTicket:  tt.Price,
        TotalPrice:      res.TotalPrice,
        DiscountApplied: res.Discounted(),
        ExpiresAt:       res.ExpiresAt,
        Active:          res.Active,
        SeatIDs:         res.SeatIDs,
    }
}

func dedupe(ids []string) []string {
    if len(ids) == 0 {
        return nil
    }
    seen := make(map[string]struct{}, len(ids))
    out := make([]string, 0, len(ids))
    for _, id := range ids {
        if id == "" {
            continue
        }
        if _, ok := seen[id]; ok {
            continue
        }
        seen[id] = struct{}{}
        out = append(out, id)
    }
    return out
}
