package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/arenadev/ticket-reservation/internal/model"
)

// TicketTypeRepo owns the ticket_types table and in particular the
// available_quantity counter.  Reserve and Release are the only two
// operations that touch the counter; both are single conditional
// UPDATE statements so the read-check-write cannot interleave with a
// concurrent caller even outside the service's per-type lock.
type TicketTypeRepo struct {
    db *sql.DB
}

// NewTicketTypeRepo returns a TicketTypeRepo bound to the given database.
func NewTicketTypeRepo(db *sql.DB) *TicketTypeRepo { return &TicketTypeRepo{db: db} }

const ticketTypeColumns = `id, event_id, name, description, price, promotional_price,
               quantity, available_quantity, max_per_person,
               sale_start_date, sale_end_date, venue_zone`

// Create inserts a new ticket type.  Available quantity starts equal
// to the total quantity.
func (r *TicketTypeRepo) Create(ctx context.Context, tt *model.TicketType) error {
    const q = `INSERT INTO ticket_types
               (id, event_id, name, description, price, promotional_price,
                quantity, available_quantity, max_per_person,
                sale_start_date, sale_end_date, venue_zone)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    _, err := executorFrom(ctx, r.db).ExecContext(ctx, q,
        tt.ID, tt.EventID, tt.Name, tt.Description, tt.Price, tt.PromotionalPrice,
        tt.Quantity, tt.AvailableQuantity, tt.MaxPerPerson,
        tt.SaleStartsAt.UTC(), tt.SaleEndsAt.UTC(), tt.VenueZone,
    )
    return err
}

// FindByID returns the ticket type with the given id, or
// ErrTicketTypeNotFound.
func (r *TicketTypeRepo) FindByID(ctx context.Context, id string) (*model.TicketType, error) {
    const q = `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE id = ?`
    return r.scanOne(executorFrom(ctx, r.db).QueryRowContext(ctx, q, id))
}

// FindByIDAndEvent returns the ticket type only when it belongs to
// the given event, or ErrTicketTypeNotFound.
func (r *TicketTypeRepo) FindByIDAndEvent(ctx context.Context, id, eventID string) (*model.TicketType, error) {
    const q = `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE id = ? AND event_id = ?`
    return r.scanOne(executorFrom(ctx, r.db).QueryRowContext(ctx, q, id, eventID))
}

// FindByEvent returns all ticket types of an event.
func (r *TicketTypeRepo) FindByEvent(ctx context.Context, eventID string) ([]model.TicketType, error) {
    const q = `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE event_id = ? ORDER BY name`
    rows, err := executorFrom(ctx, r.db).QueryContext(ctx, q, eventID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    types := make([]model.TicketType, 0)
    for rows.Next() {
        tt, err := scanTicketType(rows)
        if err != nil {
            return nil, err
        }
        types = append(types, *tt)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return types, nil
}

// Reserve atomically decrements the available counter by quantity.
// The WHERE clause guards the decrement: when fewer units are
// available than requested, no row is updated and
// ErrInsufficientInventory is returned with the counter untouched.
func (r *TicketTypeRepo) Reserve(ctx context.Context, id string, quantity int) error {
    const q = `UPDATE ticket_types
               SET available_quantity = available_quantity - ?
               WHERE id = ? AND available_quantity >= ?`
    res, err := executorFrom(ctx, r.db).ExecContext(ctx, q, quantity, id, quantity)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrInsufficientInventory
    }
    return nil
}

// Release returns quantity units to the pool.  It always succeeds;
// releasing more than was reserved is a caller bug, capped only by
// the total quantity so the counter invariant cannot be violated.
func (r *TicketTypeRepo) Release(ctx context.Context, id string, quantity int) error {
    const q = `UPDATE ticket_types
               SET available_quantity = LEAST(available_quantity + ?, quantity)
               WHERE id = ?`
    _, err := executorFrom(ctx, r.db).ExecContext(ctx, q, quantity, id)
    return err
}

func (r *TicketTypeRepo) scanOne(row *sql.Row) (*model.TicketType, error) {
    tt, err := scanTicketType(row)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrTicketTypeNotFound
    }
    if err != nil {
        return nil, err
    }
    return tt, nil
}

type rowScanner interface {
    Scan(dest ...any) error
}

func scanTicketType(s rowScanner) (*model.TicketType, error) {
    var tt model.TicketType
    var promo sql.NullFloat64
    err := s.Scan(
        &tt.ID, &tt.EventID, &tt.Name, &tt.Description, &tt.Price, &promo,
        &tt.Quantity, &tt.AvailableQuantity, &tt.MaxPerPerson,
        &tt.SaleStartsAt, &tt.SaleEndsAt, &tt.VenueZone,
    )
    if err != nil {
        return nil, err
    }
    if promo.Valid {
        p := promo.Float64
        tt.PromotionalPrice = &p
    }
    return &tt, nil
}
