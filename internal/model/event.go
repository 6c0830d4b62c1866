package model

import "time"

// EventStatus enumerates the lifecycle states of an event.  Only
// PUBLISHED events accept reservations.
type EventStatus string

const (
    EventStatusDraft     EventStatus = "DRAFT"
    EventStatusPublished EventStatus = "PUBLISHED"
    EventStatusCancelled EventStatus = "CANCELLED"
    EventStatusCompleted EventStatus = "COMPLETED"
)

// Event represents a scheduled event that sells tickets through one
// or more ticket types.  Activation is derived, never stored: an
// event is open for reservations only while its explicit flag, its
// lifecycle status and its start time all agree.
//
// Fields:
//  ID                     – primary key identifier.
//  Name                   – display name of the event.
//  Description            – free-form description.
//  Venue                  – venue name.
//  Category               – category label used by search.
//  StartsAt               – when the event begins.
//  EndsAt                 – when the event ends.
//  MaxTicketsPerPurchase  – per-request quantity cap (default 10).
//  Status                 – lifecycle state (DRAFT, PUBLISHED, ...).
//  Active                 – explicit on/off switch.
//  CreatedAt / UpdatedAt  – bookkeeping timestamps.
type Event struct {
    ID                    string      // events.id
    Name                  string      // events.name
    Description           string      // events.description
    Venue                 string      // events.venue
    Category              string      // events.category
    StartsAt              time.Time   // events.start_date
    EndsAt                time.Time   // events.end_date
    MaxTicketsPerPurchase int         // events.max_tickets_per_purchase
    Status                EventStatus // events.status
    Active                bool        // events.active
    CreatedAt             time.Time   // events.created_at
    UpdatedAt             time.Time   // events.updated_at
}

// IsActive reports whether the event accepts reservations at the
// given instant.  The flag, the PUBLISHED status, a set start time
// and a start time still in the future must all hold.
func (e *Event) IsActive(now time.Time) bool {
    if !e.Active {
        return false
    }
    if e.Status != EventStatusPublished {
        return false
    }
    if e.StartsAt.IsZero() {
        return false
    }
    return e.StartsAt.After(now)
}

// HasStarted reports whether the event's start time has passed.  An
// event with no start time set has not started.
func (e *Event) HasStarted(now time.Time) bool {
    return !e.StartsAt.IsZero() && !e.StartsAt.After(now)
}

// QuantityCap returns the per-reservation quantity limit: the
// event-level cap bounded above by the global limit of 10.
func (e *Event) QuantityCap() int {
    if e.MaxTicketsPerPurchase <= 0 || e.MaxTicketsPerPurchase > 10 {
        return 10
    }
    return e.MaxTicketsPerPurchase
}
