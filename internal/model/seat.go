package model

// Seat is a physical seat bound to a ticket type.  Its availability
// flag must never diverge from whether an active reservation holds
// it; the flag is flipped only inside the reservation service's
// critical section.
//
// Fields:
//  ID           – primary key identifier.
//  TicketTypeID – owning ticket type.
//  Row          – row label within the zone.
//  Number       – seat number within the row.
//  Zone         – venue zone label.
//  Available    – whether the seat can currently be reserved.
type Seat struct {
    ID           string // seats.id
    TicketTypeID string // seats.ticket_type_id
    Row          string // seats.seat_row
    Number       string // seats.seat_number
    Zone         string // seats.zone
    Available    bool   // seats.available
}
