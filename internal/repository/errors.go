// Package repository defines the persistence layer and the sentinel
// errors shared across repositories. Handlers and the reservation
// service compare against these values with errors.Is to decide
// which HTTP status to surface: absence maps to 404, exhausted
// inventory maps to 409.
package repository

import "errors"

// ErrEventNotFound is returned when no event exists for the given id.
var ErrEventNotFound = errors.New("event not found")

// ErrTicketTypeNotFound is returned when a ticket type does not exist
// or does not belong to the given event.
var ErrTicketTypeNotFound = errors.New("ticket type not found")

// ErrSeatNotFound is returned when one or more requested seat ids do
// not exist.
var ErrSeatNotFound = errors.New("seat not found")

// ErrReservationNotFound is returned when no reservation exists for
// the given id.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrInsufficientInventory is returned by the conditional decrement
// when fewer units are available than requested. The counter is left
// untouched in that case.
var ErrInsufficientInventory = errors.New("insufficient inventory")
