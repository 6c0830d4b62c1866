package handler

import (
    "context"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/arenadev/ticket-reservation/internal/model"
    "github.com/arenadev/ticket-reservation/internal/repository"
)

// EventHandler serves the event directory: creation, browsing, search
// and promotion listing.  These endpoints read and write through the
// repositories directly; only the reservation path needs the service
// core's locking.
type EventHandler struct {
	Events       *repository.EventRepo
	TicketTypes  *repository.TicketTypeRepo
	Reservations *repository.ReservationRepo
}

func NewEventHandler(events *repository.EventRepo, ticketTypes *repository.TicketTypeRepo, reservations *repository.ReservationRepo) *EventHandler {
	return &EventHandler{Events: events, TicketTypes: ticketTypes, Reservations: reservations}
}

// ----- DTOs -----

type ticketTypeReq struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Price            float64  `json:"price"`
	PromotionalPrice *float64 `json:"promotionalPrice"`
	Quantity         int      `json:"quantity"`
	MaxPerPerson     int      `json:"maxPerPerson"`
	SaleStartsAt     string   `json:"saleStartsAt"`
	SaleEndsAt       string   `json:"saleEndsAt"`
	VenueZone        string   `json:"venueZone"`
}

type createEventReq struct {
	Name                  string          `json:"name"`
	Description           string          `json:"description"`
	Venue                 string          `json:"venue"`
	Category              string          `json:"category"`
	StartsAt              string          `json:"startsAt"`
	EndsAt                string          `json:"endsAt"`
	MaxTicketsPerPurchase int             `json:"maxTicketsPerPurchase"`
	TicketTypes           []ticketTypeReq `json:"ticketTypes"`
}

type ticketTypeResp struct {
	ID                string   `json:"id"`
	EventID           string   `json:"eventId"`
	Name              string   `json:"name"`
	Description       string   `json:"description,omitempty"`
	Price             float64  `json:"price"`
	PromotionalPrice  *float64 `json:"promotionalPrice,omitempty"`
	Quantity          int      `json:"quantity"`
	AvailableQuantity int      `json:"availableQuantity"`
	MaxPerPerson      int      `json:"maxPerPerson"`
	SaleStartsAt      string   `json:"saleStartsAt,omitempty"`
	SaleEndsAt        string   `json:"saleEndsAt,omitempty"`
	VenueZone         string   `json:"venueZone,omitempty"`
}

type eventResp struct {
	ID                    string           `json:"id"`
	Name                  string           `json:"name"`
	Description           string           `json:"description,omitempty"`
	Venue                 string           `json:"venue,omitempty"`
	Category              string           `json:"category,omitempty"`
	StartsAt              string           `json:"startsAt,omitempty"`
	EndsAt                string           `json:"endsAt,omitempty"`
	MaxTicketsPerPurchase int              `json:"maxTicketsPerPurchase"`
	Status                string           `json:"status"`
	Active                bool             `json:"active"`
	TicketTypes           []ticketTypeResp `json:"ticketTypes,omitempty"`
}

// Create handles POST /api/events: an event plus its ticket types in
// one request.  New events start as PUBLISHED and active with every
// ticket type at full availability.
func (h *EventHandler) Create(c echo.Context) error {
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	startsAt, err := parseTime(req.StartsAt)
	if err != nil || startsAt.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "startsAt must be RFC 3339"})
	}
	endsAt, err := parseTime(req.EndsAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "endsAt must be RFC 3339"})
	}
	for _, tt := range req.TicketTypes {
		if strings.TrimSpace(tt.Name) == "" || tt.Price < 0 || tt.Quantity < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket types need a name, a non-negative price and a positive quantity"})
		}
	}

	now := time.Now().UTC()
	ev := &model.Event{
		ID:                    uuid.NewString(),
		Name:                  req.Name,
		Description:           req.Description,
		Venue:                 req.Venue,
		Category:              req.Category,
		StartsAt:              startsAt,
		EndsAt:                endsAt,
		MaxTicketsPerPurchase: req.MaxTicketsPerPurchase,
		Status:                model.EventStatusPublished,
		Active:                true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.Create(ctx, ev); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}

	types := make([]model.TicketType, 0, len(req.TicketTypes))
	for _, tr := range req.TicketTypes {
		saleStart, _ := parseTime(tr.SaleStartsAt)
		saleEnd, _ := parseTime(tr.SaleEndsAt)
		tt := model.TicketType{
			ID:                uuid.NewString(),
			EventID:           ev.ID,
			Name:              strings.TrimSpace(tr.Name),
			Description:       tr.Description,
			Price:             tr.Price,
			PromotionalPrice:  tr.PromotionalPrice,
			Quantity:          tr.Quantity,
			AvailableQuantity: tr.Quantity,
			MaxPerPerson:      tr.MaxPerPerson,
			SaleStartsAt:      saleStart,
			SaleEndsAt:        saleEnd,
			VenueZone:         tr.VenueZone,
		}
		if err := h.TicketTypes.Create(ctx, &tt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create ticket type failed"})
		}
		types = append(types, tt)
	}

	return c.JSON(http.StatusCreated, eventToResp(ev, types))
}

// Get handles GET /api/events/:id with the event's ticket types.
func (h *EventHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Events.FindByID(ctx, c.Param("id"))
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	types, err := h.TicketTypes.FindByEvent(ctx, ev.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, eventToResp(ev, types))
}

// List handles GET /api/events.
func (h *EventHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.FindAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]eventResp, 0, len(events))
	for i := range events {
		out = append(out, *eventToResp(&events[i], nil))
	}
	return c.JSON(http.StatusOK, out)
}

// Search handles GET /api/events/search.  Name and category filter in
// SQL; price bounds and availability need the ticket types, so they
// filter here.
func (h *EventHandler) Search(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.Search(ctx, c.QueryParam("name"), c.QueryParam("category"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	minPrice, hasMin := queryFloat(c, "minPrice")
	maxPrice, hasMax := queryFloat(c, "maxPrice")
	wantAvail := strings.EqualFold(c.QueryParam("hasAvailability"), "true")

	out := make([]eventResp, 0, len(events))
	for i := range events {
		ev := &events[i]
		if !hasMin && !hasMax && !wantAvail {
			out = append(out, *eventToResp(ev, nil))
			continue
		}
		types, err := h.TicketTypes.FindByEvent(ctx, ev.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		matches := false
		for j := range types {
			tt := &types[j]
			if hasMin && tt.Price < minPrice {
				continue
			}
			if hasMax && tt.Price > maxPrice {
				continue
			}
			if wantAvail && tt.AvailableQuantity < 1 {
				continue
			}
			matches = true
			break
		}
		if matches {
			out = append(out, *eventToResp(ev, types))
		}
	}
	return c.JSON(http.StatusOK, out)
}

// Summary handles GET /api/events/:id/summary: per-type inventory
// counters plus the total number of reservations taken against each
// type.
func (h *EventHandler) Summary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Events.FindByID(ctx, c.Param("id"))
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	types, err := h.TicketTypes.FindByEvent(ctx, ev.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	type typeSummary struct {
		ID                string  `json:"id"`
		Name              string  `json:"name"`
		Price             float64 `json:"price"`
		Quantity          int     `json:"quantity"`
		AvailableQuantity int     `json:"availableQuantity"`
		Reservations      int     `json:"reservations"`
	}
	summaries := make([]typeSummary, 0, len(types))
	totalCapacity, totalAvailable, totalReservations := 0, 0, 0
	for i := range types {
		tt := &types[i]
		count, err := h.Reservations.CountByTicketType(ctx, tt.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		summaries = append(summaries, typeSummary{
			ID:                tt.ID,
			Name:              tt.Name,
			Price:             tt.Price,
			Quantity:          tt.Quantity,
			AvailableQuantity: tt.AvailableQuantity,
			Reservations:      count,
		})
		totalCapacity += tt.Quantity
		totalAvailable += tt.AvailableQuantity
		totalReservations += count
	}

	return c.JSON(http.StatusOK, echo.Map{
		"eventId":           ev.ID,
		"name":              ev.Name,
		"status":            string(ev.Status),
		"active":            ev.IsActive(time.Now().UTC()),
		"totalCapacity":     totalCapacity,
		"totalAvailable":    totalAvailable,
		"totalReservations": totalReservations,
		"ticketTypes":       summaries,
	})
}

// Promotions handles GET /api/events/promotions: ticket types of
// upcoming events whose promotional price undercuts the base price
// while their sale window is open.
func (h *EventHandler) Promotions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	events, err := h.Events.FindStartingAfter(ctx, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	type promotion struct {
		EventID          string  `json:"eventId"`
		EventName        string  `json:"eventName"`
		TicketTypeID     string  `json:"ticketTypeId"`
		TicketTypeName   string  `json:"ticketTypeName"`
		Price            float64 `json:"price"`
		PromotionalPrice float64 `json:"promotionalPrice"`
	}
	out := make([]promotion, 0)
	for i := range events {
		ev := &events[i]
		if !ev.IsActive(now) {
			continue
		}
		types, err := h.TicketTypes.FindByEvent(ctx, ev.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		for j := range types {
			tt := &types[j]
			if tt.HasPromotion() && tt.WithinSaleWindow(now) {
				out = append(out, promotion{
					EventID:          ev.ID,
					EventName:        ev.Name,
					TicketTypeID:     tt.ID,
					TicketTypeName:   tt.Name,
					Price:            tt.Price,
					PromotionalPrice: *tt.PromotionalPrice,
				})
			}
		}
	}
	return c.JSON(http.StatusOK, out)
}

// ----- helpers -----

func eventToResp(ev *model.Event, types []model.TicketType) *eventResp {
	resp := &eventResp{
		ID:                    ev.ID,
		Name:                  ev.Name,
		Description:           ev.Description,
		Venue:                 ev.Venue,
		Category:              ev.Category,
		StartsAt:              formatTime(ev.StartsAt),
		EndsAt:                formatTime(ev.EndsAt),
		MaxTicketsPerPurchase: ev.QuantityCap(),
		Status:                string(ev.Status),
		Active:                ev.Active,
	}
	for i := range types {
		resp.TicketTypes = append(resp.TicketTypes, ticketTypeToResp(&types[i]))
	}
	return resp
}

func ticketTypeToResp(tt *model.TicketType) ticketTypeResp {
	return ticketTypeResp{
		ID:                tt.ID,
		EventID:           tt.EventID,
		Name:              tt.Name,
		Description:       tt.Description,
		Price:             tt.Price,
		PromotionalPrice:  tt.PromotionalPrice,
		Quantity:          tt.Quantity,
		AvailableQuantity: tt.AvailableQuantity,
		MaxPerPerson:      tt.MaxPerPerson,
		SaleStartsAt:      formatTime(tt.SaleStartsAt),
		SaleEndsAt:        formatTime(tt.SaleEndsAt),
		VenueZone:         tt.VenueZone,
	}
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func queryFloat(c echo.Context, name string) (float64, bool) {
	s := c.QueryParam(name)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
