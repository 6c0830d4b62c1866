package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/arenadev/ticket-reservation/internal/model"
)

// SeatRepo provides access to the seats table.  Availability flags
// are flipped only from inside the reservation service's critical
// section so they stay consistent with the inventory counter.
type SeatRepo struct {
    db *sql.DB
}

// NewSeatRepo returns a SeatRepo bound to the given database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// CreateBulk inserts multiple seats in a single statement.  Passing
// an empty slice has no effect and returns nil.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
    if len(seats) == 0 {
        return nil
    }
    q := `INSERT INTO seats (id, ticket_type_id, seat_row, seat_number, zone, available) VALUES `
    args := make([]any, 0, len(seats)*6)
    for i, s := range seats {
        if i > 0 {
            q += ","
        }
        q += "(?, ?, ?, ?, ?, ?)"
        args = append(args, s.ID, s.TicketTypeID, s.Row, s.Number, s.Zone, s.Available)
    }
    _, err := executorFrom(ctx, r.db).ExecContext(ctx, q, args...)
    return err
}

// FindByIDs returns the seats with the given ids.  When at least one
// id has no row, ErrSeatNotFound is returned.
func (r *SeatRepo) FindByIDs(ctx context.Context, ids []string) ([]model.Seat, error) {
    if len(ids) == 0 {
        return []model.Seat{}, nil
    }
    placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
    q := `SELECT id, ticket_type_id, seat_row, seat_number, zone, available
          FROM seats WHERE id IN (` + placeholders + `)`
    args := make([]any, len(ids))
    for i, id := range ids {
        args[i] = id
    }
    rows, err := executorFrom(ctx, r.db).QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    seats, err := scanSeats(rows)
    if err != nil {
        return nil, err
    }
    if len(seats) != len(ids) {
        return nil, ErrSeatNotFound
    }
    return seats, nil
}

// FindAvailable returns every currently-available seat of a ticket
// type, ordered by row and number for deterministic output.
func (r *SeatRepo) FindAvailable(ctx context.Context, ticketTypeID string) ([]model.Seat, error) {
    const q = `SELECT id, ticket_type_id, seat_row, seat_number, zone, available
               FROM seats WHERE ticket_type_id = ? AND available = 1
               ORDER BY seat_row, seat_number`
    rows, err := executorFrom(ctx, r.db).QueryContext(ctx, q, ticketTypeID)
    if err != nil {
        return nil, err
    }
    return scanSeats(rows)
}

// MarkUnavailable flips the given seats to unavailable.
func (r *SeatRepo) MarkUnavailable(ctx context.Context, ids []string) error {
    return r.setAvailability(ctx, ids, false)
}

// MarkAvailable flips the given seats back to available.
func (r *SeatRepo) MarkAvailable(ctx context.Context, ids []string) error {
    return r.setAvailability(ctx, ids, true)
}

func (r *SeatRepo) setAvailability(ctx context.Context, ids []string, available bool) error {
    if len(ids) == 0 {
        return nil
    }
    placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
    q := `UPDATE seats SET available = ? WHERE id IN (` + placeholders + `)`
    args := make([]any, 0, len(ids)+1)
    args = append(args, available)
    for _, id := range ids {
        args = append(args, id)
    }
    _, err := executorFrom(ctx, r.db).ExecContext(ctx, q, args...)
    return err
}

func scanSeats(rows *sql.Rows) ([]model.Seat, error) {
    defer rows.Close()
    seats := make([]model.Seat, 0)
    for rows.Next() {
        var s model.Seat
        if err := rows.Scan(&s.ID, &s.TicketTypeID, &s.Row, &s.Number, &s.Zone, &s.Available); err != nil {
            return nil, err
        }
        seats = append(seats, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return seats, nil
}
