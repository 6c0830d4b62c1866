package main

import (
    "context"
    "log"
    "time"

    "github.com/google/uuid"

    "github.com/arenadev/ticket-reservation/internal/clock"
    "github.com/arenadev/ticket-reservation/internal/model"
    "github.com/arenadev/ticket-reservation/internal/repository"
)

// seed inserts a sample published event with VIP and General ticket
// types for local development.  It is a no-op when any event already
// exists.
func seed(ctx context.Context, events *repository.EventRepo, ticketTypes *repository.TicketTypeRepo, clk clock.Clock) error {
	existing, err := events.FindAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := clk.Now()
	ev := &model.Event{
		ID:                    uuid.NewString(),
		Name:                  "Summer Music Festival",
		Description:           "An open-air festival with headline acts",
		Venue:                 "Riverside Arena",
		Category:              "MUSIC",
		StartsAt:              now.AddDate(0, 0, 30),
		EndsAt:                now.AddDate(0, 0, 30).Add(6 * time.Hour),
		MaxTicketsPerPurchase: 10,
		Status:                model.EventStatusPublished,
		Active:                true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := events.Create(ctx, ev); err != nil {
		return err
	}

	types := []model.TicketType{
		{
			ID:                uuid.NewString(),
			EventID:           ev.ID,
			Name:              "VIP",
			Description:       "Front section with lounge access",
			Price:             1000.0,
			Quantity:          100,
			AvailableQuantity: 100,
			MaxPerPerson:      10,
			SaleStartsAt:      now,
			SaleEndsAt:        ev.StartsAt,
			VenueZone:         "FRONT",
		},
		{
			ID:                uuid.NewString(),
			EventID:           ev.ID,
			Name:              "General",
			Description:       "Standard admission",
			Price:             200.0,
			Quantity:          500,
			AvailableQuantity: 500,
			MaxPerPerson:      8,
			SaleStartsAt:      now,
			SaleEndsAt:        ev.StartsAt,
			VenueZone:         "MAIN",
		},
	}
	for i := range types {
		if err := ticketTypes.Create(ctx, &types[i]); err != nil {
			return err
		}
	}
	log.Printf("seed: created event %s with %d ticket types", ev.ID, len(types))
	return nil
}
