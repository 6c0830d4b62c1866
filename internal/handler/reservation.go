package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/arenadev/ticket-reservation/internal/queue"
    "github.com/arenadev/ticket-reservation/internal/repository"
    "github.com/arenadev/ticket-reservation/internal/service"
)

// ReservationHandler exposes the reservation lifecycle over HTTP.  It
// translates service and repository errors onto status codes and
// publishes audit events to the broker after state changes commit.
type ReservationHandler struct {
	Svc *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Svc: svc}
}

type createReservationReq struct {
	EventID      string   `json:"eventId"`
	TicketTypeID string   `json:"ticketTypeId"`
	Quantity     int      `json:"quantity"`
	SeatIDs      []string `json:"seatIds"`
}

// Create handles POST /api/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.EventID == "" || req.TicketTypeID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "eventId and ticketTypeId are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	detail, err := h.Svc.CreateReservation(ctx, req.EventID, req.TicketTypeID, req.Quantity, req.SeatIDs)
	if err != nil {
		return reservationError(c, err)
	}

	publish(detail, "created")
	return c.JSON(http.StatusCreated, detail)
}

// Cancel handles DELETE /api/reservations/:id.  Cancelling an
// already-inactive reservation succeeds without side effects.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.CancelReservation(ctx, id); err != nil {
		return reservationError(c, err)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue.PublishReservationEvent(ctx, queue.ReservationEvent{
			ReservationID: id,
			Action:        "cancelled",
			OccurredAt:    time.Now().UTC().Format(time.RFC3339),
		})
	}()
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation cancelled"})
}

// List handles GET /api/reservations.
func (h *ReservationHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	details, err := h.Svc.ListReservations(ctx)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, details)
}

// ListActive handles GET /api/reservations/active.
func (h *ReservationHandler) ListActive(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	details, err := h.Svc.ListActiveReservations(ctx)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, details)
}

// AvailableSeats handles GET /api/reservations/events/:eventId/seats/:ticketTypeId.
func (h *ReservationHandler) AvailableSeats(c echo.Context) error {
	eventID := c.Param("eventId")
	ticketTypeID := c.Param("ticketTypeId")
	if eventID == "" || ticketTypeID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid path parameters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	seats, err := h.Svc.GetAvailableSeats(ctx, eventID, ticketTypeID)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, seats)
}

// publish fires a broker event for a committed reservation without
// blocking the response.
func publish(detail *service.ReservationDetail, action string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue.PublishReservationEvent(ctx, queue.ReservationEvent{
			ReservationID:  detail.ReservationID,
			TicketTypeID:   detail.TicketTypeID,
			TicketTypeName: detail.TicketTypeName,
			VenueZone:      detail.VenueZone,
			Quantity:       detail.Quantity,
			TotalPrice:     detail.TotalPrice,
			SeatIDs:        detail.SeatIDs,
			Action:         action,
			OccurredAt:     time.Now().UTC().Format(time.RFC3339),
		})
	}()
}

// reservationError maps service and repository errors onto HTTP
// status codes: missing entities are 404, invalid input is 400, and
// state conflicts (sold out, seat taken, event closed) are 409.
func reservationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrEventNotFound),
		errors.Is(err, repository.ErrTicketTypeNotFound),
		errors.Is(err, repository.ErrSeatNotFound),
		errors.Is(err, repository.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrSeatCountMismatch):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrInsufficientInventory),
		errors.Is(err, service.ErrSeatUnavailable),
		errors.Is(err, service.ErrEventNotAvailable),
		errors.Is(err, service.ErrEventAlreadyStarted):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
