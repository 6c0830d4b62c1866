package model

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestReservationExpired(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, (&Reservation{ExpiresAt: now.Add(time.Minute)}).Expired(now))
	assert.False(t, (&Reservation{ExpiresAt: now}).Expired(now))
	assert.True(t, (&Reservation{ExpiresAt: now.Add(-time.Second)}).Expired(now))
}

func TestReservationDiscounted(t *testing.T) {
	assert.False(t, (&Reservation{Quantity: 5}).Discounted())
	assert.True(t, (&Reservation{Quantity: 6}).Discounted())
}

func TestTicketTypePromotion(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	promo := 80.0
	tt := TicketType{
		Price:            100.0,
		PromotionalPrice: &promo,
		SaleStartsAt:     now.Add(-time.Hour),
		SaleEndsAt:       now.Add(time.Hour),
	}

	assert.True(t, tt.HasPromotion())
	assert.True(t, tt.WithinSaleWindow(now))
	assert.False(t, tt.WithinSaleWindow(now.Add(2*time.Hour)))

	tt.PromotionalPrice = nil
	assert.False(t, tt.HasPromotion())

	samePrice := 100.0
	tt.PromotionalPrice = &samePrice
	assert.False(t, tt.HasPromotion())
}
