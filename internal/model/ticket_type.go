package model

import "time"

// TicketType is a category of sellable unit within an event (e.g.
// "VIP"), carrying its own price and inventory counters.  The
// available counter is mutated only through the ticket type
// repository's Reserve/Release operations so that the invariant
// 0 <= available <= total always holds.
//
// Fields:
//  ID                – primary key identifier.
//  EventID           – owning event.
//  Name              – display name ("VIP", "General").
//  Description       – free-form description.
//  Price             – unit price.
//  PromotionalPrice  – optional discounted price shown by promotions.
//  Quantity          – total units that exist.
//  AvailableQuantity – units not currently reserved or sold.
//  MaxPerPerson      – per-person purchase limit.
//  SaleStartsAt      – when the sale window opens.
//  SaleEndsAt        – when the sale window closes.
//  VenueZone         – zone of the venue this type grants access to.
type TicketType struct {
    ID                string    // ticket_types.id
    EventID           string    // ticket_types.event_id
    Name              string    // ticket_types.name
    Description       string    // ticket_types.description
    Price             float64   // ticket_types.price
    PromotionalPrice  *float64  // ticket_types.promotional_price (nullable)
    Quantity          int       // ticket_types.quantity
    AvailableQuantity int       // ticket_types.available_quantity
    MaxPerPerson      int       // ticket_types.max_per_person
    SaleStartsAt      time.Time // ticket_types.sale_start_date
    SaleEndsAt        time.Time // ticket_types.sale_end_date
    VenueZone         string    // ticket_types.venue_zone
}

// WithinSaleWindow reports whether the sale window is open at the
// given instant.
func (t *TicketType) WithinSaleWindow(now time.Time) bool {
    return now.After(t.SaleStartsAt) && now.Before(t.SaleEndsAt)
}

// HasPromotion reports whether a promotional price is set and
// actually undercuts the base price.
func (t *TicketType) HasPromotion() bool {
    return t.PromotionalPrice != nil && *t.PromotionalPrice < t.Price
}
