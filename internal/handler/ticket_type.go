package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/arenadev/ticket-reservation/internal/repository"
)

// TicketTypeHandler serves read access to ticket types.
type TicketTypeHandler struct {
	TicketTypes *repository.TicketTypeRepo
}

func NewTicketTypeHandler(ticketTypes *repository.TicketTypeRepo) *TicketTypeHandler {
	return &TicketTypeHandler{TicketTypes: ticketTypes}
}

// Get handles GET /api/ticket-types/:id.
func (h *TicketTypeHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tt, err := h.TicketTypes.FindByID(ctx, c.Param("id"))
	if err != nil {
		if err == repository.ErrTicketTypeNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, ticketTypeToResp(tt))
}

// ListByEvent handles GET /api/events/:id/ticket-types.
func (h *TicketTypeHandler) ListByEvent(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	types, err := h.TicketTypes.FindByEvent(ctx, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]ticketTypeResp, 0, len(types))
	for i := range types {
		out = append(out, ticketTypeToResp(&types[i]))
	}
	return c.JSON(http.StatusOK, out)
}
