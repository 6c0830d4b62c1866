package model

import "time"

// Reservation is a time-boxed, provisional hold on a quantity of a
// ticket type.  It is created active and transitions to inactive
// exactly once, either by explicit cancellation or by the expiry
// sweep; once inactive it is terminal and its quantity has been
// returned to the pool.
//
// Fields:
//  ID           – primary key identifier.
//  TicketTypeID – ticket type the quantity is held against.
//  Quantity     – number of units held (positive).
//  TotalPrice   – price after any volume discount.
//  Active       – false once cancelled or expired.
//  SeatIDs      – seats bound to this reservation, if any.
//  CreatedAt    – creation timestamp.
//  ExpiresAt    – instant after which the sweep may release it.
type Reservation struct {
    ID           string    // ticket_reservations.id
    TicketTypeID string    // ticket_reservations.ticket_type_id
    Quantity     int       // ticket_reservations.quantity
    TotalPrice   float64   // ticket_reservations.total_price
    Active       bool      // ticket_reservations.active
    SeatIDs      []string  // reservation_seats.seat_id
    CreatedAt    time.Time // ticket_reservations.created_at
    ExpiresAt    time.Time // ticket_reservations.expires_at
}

// Expired reports whether the reservation's hold window has passed.
func (r *Reservation) Expired(now time.Time) bool {
    return r.ExpiresAt.Before(now)
}

// Discounted reports whether the volume discount applied to this
// reservation.  The discount is a step function on the quantity.
func (r *Reservation) Discounted() bool {
    return r.Quantity > 5
}
