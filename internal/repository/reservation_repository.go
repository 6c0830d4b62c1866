package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/arenadev/ticket-reservation/internal/model"
)

// ReservationRepo owns the ticket_reservations table and the
// reservation_seats join table.  A reservation row is never updated
// except for the single active→inactive transition performed by
// Deactivate.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// Create inserts the reservation and its seat bindings.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
    ex := executorFrom(ctx, r.db)
    const q = `INSERT INTO ticket_reservations
               (id, ticket_type_id, quantity, total_price, active, created_at, expires_at)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
    if _, err := ex.ExecContext(ctx, q,
        res.ID, res.TicketTypeID, res.Quantity, res.TotalPrice,
        res.Active, res.CreatedAt.UTC(), res.ExpiresAt.UTC(),
    ); err != nil {
        return err
    }
    if len(res.SeatIDs) == 0 {
        return nil
    }
    sq := `INSERT INTO reservation_seats (reservation_id, seat_id) VALUES `
    args := make([]any, 0, len(res.SeatIDs)*2)
    for i, sid := range res.SeatIDs {
        if i > 0 {
            sq += ","
        }
        sq += "(?, ?)"
        args = append(args, res.ID, sid)
    }
    _, err := ex.ExecContext(ctx, sq, args...)
    return err
}

// FindByID returns the reservation with its bound seat ids, or
// ErrReservationNotFound.
func (r *ReservationRepo) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
    ex := executorFrom(ctx, r.db)
    const q = `SELECT id, ticket_type_id, quantity, total_price, active, created_at, expires_at
               FROM ticket_reservations WHERE id = ?`
    var res model.Reservation
    err := ex.QueryRowContext(ctx, q, id).Scan(
        &res.ID, &res.TicketTypeID, &res.Quantity, &res.TotalPrice,
        &res.Active, &res.CreatedAt, &res.ExpiresAt,
    )
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrReservationNotFound
    }
    if err != nil {
        return nil, err
    }
    seatIDs, err := r.seatIDsFor(ctx, ex, res.ID)
    if err != nil {
        return nil, err
    }
    res.SeatIDs = seatIDs
    return &res, nil
}

// Deactivate marks the reservation inactive.  The transition is
// terminal; calling it on an already-inactive row is harmless.
func (r *ReservationRepo) Deactivate(ctx context.Context, id string) error {
    const q = `UPDATE ticket_reservations SET active = 0 WHERE id = ?`
    _, err := executorFrom(ctx, r.db).ExecContext(ctx, q, id)
    return err
}

// FindActiveExpiredBefore returns active reservations whose expiry
// is at or before the cutoff.  The sweeper passes now minus its
// interval here so freshly-expired records get one grace period.
func (r *ReservationRepo) FindActiveExpiredBefore(ctx context.Context, cutoff time.Time) ([]model.Reservation, error) {
    const q = `SELECT id, ticket_type_id, quantity, total_price, active, created_at, expires_at
               FROM ticket_reservations WHERE active = 1 AND expires_at <= ?
               ORDER BY expires_at ASC`
    return r.list(ctx, q, cutoff.UTC())
}

// FindActiveExpiringAfter returns active reservations that have not
// yet reached the given instant.
func (r *ReservationRepo) FindActiveExpiringAfter(ctx context.Context, t time.Time) ([]model.Reservation, error) {
    const q = `SELECT id, ticket_type_id, quantity, total_price, active, created_at, expires_at
               FROM ticket_reservations WHERE active = 1 AND expires_at > ?
               ORDER BY expires_at ASC`
    return r.list(ctx, q, t.UTC())
}

// ListAll returns every reservation, newest first.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]model.Reservation, error) {
    const q = `SELECT id, ticket_type_id, quantity, total_price, active, created_at, expires_at
               FROM ticket_reservations ORDER BY created_at DESC`
    return r.list(ctx, q)
}

// CountByTicketType returns the number of reservations ever made
// against a ticket type, active or not.
func (r *ReservationRepo) CountByTicketType(ctx context.Context, ticketTypeID string) (int, error) {
    const q = `SELECT COUNT(*) FROM ticket_reservations WHERE ticket_type_id = ?`
    var n int
    err := executorFrom(ctx, r.db).QueryRowContext(ctx, q, ticketTypeID).Scan(&n)
    return n, err
}

// DeleteInactiveExpiredBefore removes inactive reservations whose
// expiry is older than the cutoff, along with their seat bindings.
// It returns the number of reservations removed.
func (r *ReservationRepo) DeleteInactiveExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
    ex := executorFrom(ctx, r.db)
    const seatQ = `DELETE rs FROM reservation_seats rs
                   JOIN ticket_reservations t ON t.id = rs.reservation_id
                   WHERE t.active = 0 AND t.expires_at < ?`
    if _, err := ex.ExecContext(ctx, seatQ, cutoff.UTC()); err != nil {
        return 0, err
    }
    const q = `DELETE FROM ticket_reservations WHERE active = 0 AND expires_at < ?`
    res, err := ex.ExecContext(ctx, q, cutoff.UTC())
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

func (r *ReservationRepo) list(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
    ex := executorFrom(ctx, r.db)
    rows, err := ex.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    reservations := make([]model.Reservation, 0)
    index := make(map[string]int)
    for rows.Next() {
        var res model.Reservation
        if err := rows.Scan(
            &res.ID, &res.TicketTypeID, &res.Quantity, &res.TotalPrice,
            &res.Active, &res.CreatedAt, &res.ExpiresAt,
        ); err != nil {
            rows.Close()
            return nil, err
        }
        index[res.ID] = len(reservations)
        reservations = append(reservations, res)
    }
    if err := rows.Close(); err != nil {
        return nil, err
    }
    if len(reservations) == 0 {
        return reservations, nil
    }
    // Attach seat bindings for the whole batch in one query.
    ids := make([]any, 0, len(reservations))
    placeholders := make([]string, 0, len(reservations))
    for _, res := range reservations {
        ids = append(ids, res.ID)
        placeholders = append(placeholders, "?")
    }
    seatQ := `SELECT reservation_id, seat_id FROM reservation_seats
              WHERE reservation_id IN (` + strings.Join(placeholders, ",") + `)`
    srows, err := ex.QueryContext(ctx, seatQ, ids...)
    if err != nil {
        return nil, err
    }
    defer srows.Close()
    for srows.Next() {
        var rid, sid string
        if err := srows.Scan(&rid, &sid); err != nil {
            return nil, err
        }
        if i, ok := index[rid]; ok {
            reservations[i].SeatIDs = append(reservations[i].SeatIDs, sid)
        }
    }
    if err := srows.Err(); err != nil {
        return nil, err
    }
    return reservations, nil
}

func (r *ReservationRepo) seatIDsFor(ctx context.Context, ex executor, reservationID string) ([]string, error) {
    const q = `SELECT seat_id FROM reservation_seats WHERE reservation_id = ?`
    rows, err := ex.QueryContext(ctx, q, reservationID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var seatIDs []string
    for rows.Next() {
        var sid string
        if err := rows.Scan(&sid); err != nil {
            return nil, err
        }
        seatIDs = append(seatIDs, sid)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return seatIDs, nil
}
