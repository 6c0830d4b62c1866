package service

import (
    "context"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/arenadev/ticket-reservation/internal/clock"
    "github.com/arenadev/ticket-reservation/internal/model"
    "github.com/arenadev/ticket-reservation/internal/repository"
)

// ----- in-memory fakes -----

type fakeEvents struct {
	mu     sync.Mutex
	events map[string]model.Event
}

func (f *fakeEvents) FindByID(_ context.Context, id string) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	return &ev, nil
}

type fakeInventory struct {
	mu    sync.Mutex
	types map[string]*model.TicketType
}

func (f *fakeInventory) FindByID(_ context.Context, id string) (*model.TicketType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tt, ok := f.types[id]
	if !ok {
		return nil, repository.ErrTicketTypeNotFound
	}
	cp := *tt
	return &cp, nil
}

func (f *fakeInventory) FindByIDAndEvent(_ context.Context, id, eventID string) (*model.TicketType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tt, ok := f.types[id]
	if !ok || tt.EventID != eventID {
		return nil, repository.ErrTicketTypeNotFound
	}
	cp := *tt
	return &cp, nil
}

func (f *fakeInventory) Reserve(_ context.Context, id string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tt, ok := f.types[id]
	if !ok {
		return repository.ErrTicketTypeNotFound
	}
	if tt.AvailableQuantity < quantity {
		return repository.ErrInsufficientInventory
	}
	tt.AvailableQuantity -= quantity
	return nil
}

func (f *fakeInventory) Release(_ context.Context, id string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tt, ok := f.types[id]
	if !ok {
		return repository.ErrTicketTypeNotFound
	}
	tt.AvailableQuantity += quantity
	if tt.AvailableQuantity > tt.Quantity {
		tt.AvailableQuantity = tt.Quantity
	}
	return nil
}

func (f *fakeInventory) available(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.types[id].AvailableQuantity
}

type fakeSeats struct {
	mu    sync.Mutex
	seats map[string]*model.Seat
}

func (f *fakeSeats) FindByIDs(_ context.Context, ids []string) ([]model.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Seat, 0, len(ids))
	for _, id := range ids {
		s, ok := f.seats[id]
		if !ok {
			return nil, repository.ErrSeatNotFound
		}
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSeats) FindAvailable(_ context.Context, ticketTypeID string) ([]model.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Seat
	for _, s := range f.seats {
		if s.TicketTypeID == ticketTypeID && s.Available {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSeats) MarkUnavailable(_ context.Context, ids []string) error {
	return f.set(ids, false)
}

func (f *fakeSeats) MarkAvailable(_ context.Context, ids []string) error {
	return f.set(ids, true)
}

func (f *fakeSeats) set(ids []string, available bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		s, ok := f.seats[id]
		if !ok {
			return repository.ErrSeatNotFound
		}
		s.Available = available
	}
	return nil
}

type fakeReservations struct {
	mu    sync.Mutex
	order []string
	byID  map[string]*model.Reservation
}

func newFakeReservations() *fakeReservations {
	return &fakeReservations{byID: make(map[string]*model.Reservation)}
}

func (f *fakeReservations) Create(_ context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *res
	f.byID[res.ID] = &cp
	f.order = append(f.order, res.ID)
	return nil
}

func (f *fakeReservations) FindByID(_ context.Context, id string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	cp := *res
	return &cp, nil
}

func (f *fakeReservations) Deactivate(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.byID[id]
	if !ok {
		return repository.ErrReservationNotFound
	}
	res.Active = false
	return nil
}

func (f *fakeReservations) FindActiveExpiredBefore(_ context.Context, cutoff time.Time) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reservation
	for _, id := range f.order {
		res := f.byID[id]
		if res.Active && res.ExpiresAt.Before(cutoff) {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (f *fakeReservations) FindActiveExpiringAfter(_ context.Context, t time.Time) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reservation
	for _, id := range f.order {
		res := f.byID[id]
		if res.Active && res.ExpiresAt.After(t) {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (f *fakeReservations) ListAll(_ context.Context) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Reservation, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, *f.byID[id])
	}
	return out, nil
}

func (f *fakeReservations) DeleteInactiveExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var purged int64
	kept := f.order[:0]
	for _, id := range f.order {
		res := f.byID[id]
		if !res.Active && res.ExpiresAt.Before(cutoff) {
			delete(f.byID, id)
			purged++
			continue
		}
		kept = append(kept, id)
	}
	f.order = kept
	return purged, nil
}

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ----- fixture -----

type fixture struct {
	events       *fakeEvents
	inventory    *fakeInventory
	seats        *fakeSeats
	reservations *fakeReservations
	clk          *clock.Fixed
	svc          *ReservationService
}

const (
	eventID      = "ev-1"
	ticketTypeID = "tt-1"
)

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)
	f := &fixture{
		events: &fakeEvents{events: map[string]model.Event{
			eventID: {
				ID:                    eventID,
				Name:                  "Arena Concert",
				StartsAt:              now.Add(48 * time.Hour),
				MaxTicketsPerPurchase: 10,
				Status:                model.EventStatusPublished,
				Active:                true,
			},
		}},
		inventory: &fakeInventory{types: map[string]*model.TicketType{
			ticketTypeID: {
				ID:                ticketTypeID,
				EventID:           eventID,
				Name:              "General",
				Price:             200.0,
				Quantity:          50,
				AvailableQuantity: 50,
				VenueZone:         "MAIN",
			},
		}},
		seats:        &fakeSeats{seats: make(map[string]*model.Seat)},
		reservations: newFakeReservations(),
		clk:          clk,
	}
	f.svc = NewReservationService(f.events, f.inventory, f.seats, f.reservations, fakeTx{}, clk, opts...)
	return f
}

func (f *fixture) addSeats(ids ...string) {
	for _, id := range ids {
		f.seats.seats[id] = &model.Seat{
			ID:           id,
			TicketTypeID: ticketTypeID,
			Row:          "A",
			Number:       id,
			Zone:         "MAIN",
			Available:    true,
		}
	}
}

func (f *fixture) setEvent(mutate func(*model.Event)) {
	ev := f.events.events[eventID]
	mutate(&ev)
	f.events.events[eventID] = ev
}

// ----- tests -----

func TestCreateReservationDecrementsAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d1, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 48, f.inventory.available(ticketTypeID))
	assert.Equal(t, 400.0, d1.TotalPrice)
	assert.False(t, d1.DiscountApplied)

	d2, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 6, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, f.inventory.available(ticketTypeID))
	assert.Equal(t, 200.0*6*0.9, d2.TotalPrice)
	assert.True(t, d2.DiscountApplied)

	_, err = f.svc.CreateReservation(ctx, eventID, ticketTypeID, 11, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, 42, f.inventory.available(ticketTypeID))
}

func TestCreateReservationDiscountBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	five, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, five.TotalPrice)
	assert.False(t, five.DiscountApplied)

	six, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 6, nil)
	require.NoError(t, err)
	assert.Equal(t, 1080.0, six.TotalPrice)
	assert.True(t, six.DiscountApplied)
}

func TestCreateReservationInsufficientInventory(t *testing.T) {
	f := newFixture(t)
	f.inventory.types[ticketTypeID].AvailableQuantity = 3
	ctx := context.Background()

	_, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 4, nil)
	assert.ErrorIs(t, err, repository.ErrInsufficientInventory)
	assert.Equal(t, 3, f.inventory.available(ticketTypeID))

	f.inventory.types[ticketTypeID].AvailableQuantity = 0
	_, err = f.svc.CreateReservation(ctx, eventID, ticketTypeID, 1, nil)
	assert.ErrorIs(t, err, repository.ErrInsufficientInventory)
}

func TestCreateReservationValidatesQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, q := range []int{0, -1, 11} {
		_, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, q, nil)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "quantity %d", q)
	}
}

func TestCreateReservationHonorsEventCap(t *testing.T) {
	f := newFixture(t)
	f.setEvent(func(ev *model.Event) { ev.MaxTicketsPerPurchase = 4 })
	ctx := context.Background()

	_, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 5, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = f.svc.CreateReservation(ctx, eventID, ticketTypeID, 4, nil)
	assert.NoError(t, err)
}

func TestCreateReservationEventValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown event", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CreateReservation(ctx, "nope", ticketTypeID, 1, nil)
		assert.ErrorIs(t, err, repository.ErrEventNotFound)
	})

	t.Run("inactive flag", func(t *testing.T) {
		f := newFixture(t)
		f.setEvent(func(ev *model.Event) { ev.Active = false })
		_, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 1, nil)
		assert.ErrorIs(t, err, ErrEventNotAvailable)
	})

	t.Run("draft status", func(t *testing.T) {
		f := newFixture(t)
		f.setEvent(func(ev *model.Event) { ev.Status = model.EventStatusDraft })
		_, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 1, nil)
		assert.ErrorIs(t, err, ErrEventNotAvailable)
	})

	t.Run("already started", func(t *testing.T) {
		f := newFixture(t)
		f.clk.Advance(49 * time.Hour)
		_, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 1, nil)
		assert.ErrorIs(t, err, ErrEventAlreadyStarted)
	})

	t.Run("unknown ticket type", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CreateReservation(ctx, eventID, "nope", 1, nil)
		assert.ErrorIs(t, err, repository.ErrTicketTypeNotFound)
	})
}

func TestCreateReservationWithSeats(t *testing.T) {
	f := newFixture(t)
	f.addSeats("s1", "s2")
	ctx := context.Background()

	detail, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 2, []string{"s1", "s2"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, detail.SeatIDs)
	assert.False(t, f.seats.seats["s1"].Available)
	assert.False(t, f.seats.seats["s2"].Available)
	assert.Equal(t, 48, f.inventory.available(ticketTypeID))
}

func TestCreateReservationSeatCountMismatch(t *testing.T) {
	f := newFixture(t)
	f.addSeats("s1", "s2")
	ctx := context.Background()

	_, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 3, []string{"s1", "s2"})
	assert.ErrorIs(t, err, ErrSeatCountMismatch)
	assert.Equal(t, 50, f.inventory.available(ticketTypeID))

	// duplicates collapse, so two copies of one seat cannot cover quantity 2
	_, err = f.svc.CreateReservation(ctx, eventID, ticketTypeID, 2, []string{"s1", "s1"})
	assert.ErrorIs(t, err, ErrSeatCountMismatch)
}

func TestCreateReservationSeatAllOrNothing(t *testing.T) {
	f := newFixture(t)
	f.addSeats("s1", "s2", "s3")
	f.seats.seats["s2"].Available = false
	ctx := context.Background()

	_, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 2, []string{"s1", "s2"})
	assert.ErrorIs(t, err, ErrSeatUnavailable)
	// nothing was taken: counter intact, s1 untouched
	assert.Equal(t, 50, f.inventory.available(ticketTypeID))
	assert.True(t, f.seats.seats["s1"].Available)
}

func TestCreateReservationSeatWrongTicketType(t *testing.T) {
	f := newFixture(t)
	f.addSeats("s1")
	f.seats.seats["other"] = &model.Seat{ID: "other", TicketTypeID: "tt-2", Available: true}
	ctx := context.Background()

	_, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 2, []string{"s1", "other"})
	assert.ErrorIs(t, err, ErrSeatUnavailable)
}

func TestCreateReservationUnknownSeat(t *testing.T) {
	f := newFixture(t)
	f.addSeats("s1")
	ctx := context.Background()

	_, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 2, []string{"s1", "ghost"})
	assert.ErrorIs(t, err, repository.ErrSeatNotFound)
}

func TestCreateReservationExpiryStamp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	detail, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, f.clk.Now().Add(5*time.Minute), detail.ExpiresAt)
}

func TestCreateReservationCustomTTL(t *testing.T) {
	f := newFixture(t, WithReservationTTL(10*time.Minute))
	ctx := context.Background()

	detail, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, f.clk.Now().Add(10*time.Minute), detail.ExpiresAt)
}

func TestCancelReservationRestoresState(t *testing.T) {
	f := newFixture(t)
	f.addSeats("s1", "s2")
	ctx := context.Background()

	detail, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 2, []string{"s1", "s2"})
	require.NoError(t, err)
	require.Equal(t, 48, f.inventory.available(ticketTypeID))

	require.NoError(t, f.svc.CancelReservation(ctx, detail.ReservationID))
	assert.Equal(t, 50, f.inventory.available(ticketTypeID))
	assert.True(t, f.seats.seats["s1"].Available)
	assert.True(t, f.seats.seats["s2"].Available)

	stored, err := f.reservations.FindByID(ctx, detail.ReservationID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestCancelReservationIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	detail, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 3, nil)
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelReservation(ctx, detail.ReservationID))
	require.NoError(t, f.svc.CancelReservation(ctx, detail.ReservationID))
	// the second cancel must not release units a second time
	assert.Equal(t, 50, f.inventory.available(ticketTypeID))
}

func TestCancelReservationUnknown(t *testing.T) {
	f := newFixture(t)
	err := f.svc.CancelReservation(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrReservationNotFound)
}

func TestListActiveExcludesExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 1, nil)
	require.NoError(t, err)

	active, err := f.svc.ListActiveReservations(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	f.clk.Advance(6 * time.Minute)

	active, err = f.svc.ListActiveReservations(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := f.svc.ListReservations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetAvailableSeats(t *testing.T) {
	f := newFixture(t)
	f.addSeats("s1", "s2", "s3")
	f.seats.seats["s2"].Available = false
	ctx := context.Background()

	seats, err := f.svc.GetAvailableSeats(ctx, eventID, ticketTypeID)
	require.NoError(t, err)
	assert.Len(t, seats, 2)
	for _, s := range seats {
		assert.NotEqual(t, "s2", s.ID)
		assert.Equal(t, 200.0, s.Price)
	}
}

func TestGetAvailableSeatsValidatesEvent(t *testing.T) {
	f := newFixture(t)
	f.setEvent(func(ev *model.Event) { ev.Active = false })

	_, err := f.svc.GetAvailableSeats(context.Background(), eventID, ticketTypeID)
	assert.ErrorIs(t, err, ErrEventNotAvailable)
}

func TestConcurrentCreateNeverOversells(t *testing.T) {
	f := newFixture(t)
	f.inventory.types[ticketTypeID].AvailableQuantity = 10
	ctx := context.Background()

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateReservation(ctx, eventID, ticketTypeID, 1, nil)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, repository.ErrInsufficientInventory)
		}
	}
	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 0, f.inventory.available(ticketTypeID))
}
