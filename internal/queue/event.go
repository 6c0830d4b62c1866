// Package queue defines the audit events exchanged over the message
// broker and the background consumer that records them.
package queue

// ReservationEvent is published when a reservation is created or
// released.  It carries enough information for downstream consumers
// to log or aggregate without querying the primary database.
type ReservationEvent struct {
    ReservationID  string   `json:"reservation_id"`
    TicketTypeID   string   `json:"ticket_type_id"`
    TicketTypeName string   `json:"ticket_type_name"`
    VenueZone      string   `json:"venue_zone"`
    Quantity       int      `json:"quantity"`
    TotalPrice     float64  `json:"total_price"`
    SeatIDs        []string `json:"seat_ids,omitempty"`
    // Action is "created", "cancelled" or "expired".
    Action     string `json:"action"`
    OccurredAt string `json:"occurred_at"`
}
