package handler

import (
    "context"
    "fmt"
    "net/http"
    "strconv"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/arenadev/ticket-reservation/internal/model"
    "github.com/arenadev/ticket-reservation/internal/repository"
)

// SeatHandler creates seat layouts for ticket types.
type SeatHandler struct {
	TicketTypes *repository.TicketTypeRepo
	Seats       *repository.SeatRepo
}

func NewSeatHandler(ticketTypes *repository.TicketTypeRepo, seats *repository.SeatRepo) *SeatHandler {
	return &SeatHandler{TicketTypes: ticketTypes, Seats: seats}
}

type createSeatsReq struct {
	Rows        int    `json:"rows"`
	SeatsPerRow int    `json:"seatsPerRow"`
	Zone        string `json:"zone"`
}

// CreateBulk handles POST /api/ticket-types/:id/seats.  It lays out a
// rows-by-seatsPerRow grid with lettered rows (A, B, ..., Z, AA, ...)
// and numbered seats, all initially available.  The grid must not
// exceed the ticket type's total quantity.
func (h *SeatHandler) CreateBulk(c echo.Context) error {
	var req createSeatsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Rows < 1 || req.SeatsPerRow < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rows and seatsPerRow must be positive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tt, err := h.TicketTypes.FindByID(ctx, c.Param("id"))
	if err != nil {
		if err == repository.ErrTicketTypeNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if req.Rows*req.SeatsPerRow > tt.Quantity {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": fmt.Sprintf("grid of %d seats exceeds ticket type quantity %d", req.Rows*req.SeatsPerRow, tt.Quantity),
		})
	}
	zone := req.Zone
	if zone == "" {
		zone = tt.VenueZone
	}

	seats := make([]model.Seat, 0, req.Rows*req.SeatsPerRow)
	for r := 0; r < req.Rows; r++ {
		label := rowLabel(r)
		for n := 1; n <= req.SeatsPerRow; n++ {
			seats = append(seats, model.Seat{
				ID:           uuid.NewString(),
				TicketTypeID: tt.ID,
				Row:          label,
				Number:       strconv.Itoa(n),
				Zone:         zone,
				Available:    true,
			})
		}
	}
	if err := h.Seats.CreateBulk(ctx, seats); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create seats failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"ticketTypeId": tt.ID,
		"created":      len(seats),
		"rows":         req.Rows,
		"seatsPerRow":  req.SeatsPerRow,
	})
}

// rowLabel converts a zero-based row index to a spreadsheet-style
// label: 0 -> A, 25 -> Z, 26 -> AA.
func rowLabel(i int) string {
	label := ""
	for i >= 0 {
		label = string(rune('A'+i%26)) + label
		i = i/26 - 1
	}
	return label
}
