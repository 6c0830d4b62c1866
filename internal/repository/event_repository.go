package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/arenadev/ticket-reservation/internal/model"
)

// EventRepo provides CRUD access to the events table.  All
// timestamps are stored and compared in UTC; the DSN's parseTime
// option maps DATETIME columns onto time.Time directly.
type EventRepo struct {
    db *sql.DB
}

// NewEventRepo returns an EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, name, description, venue, category, start_date, end_date,
               max_tickets_per_purchase, status, active, created_at, updated_at`

// Create inserts a new event row.  The caller assigns the id and the
// bookkeeping timestamps before calling.
func (r *EventRepo) Create(ctx context.Context, ev *model.Event) error {
    const q = `INSERT INTO events
               (id, name, description, venue, category, start_date, end_date,
                max_tickets_per_purchase, status, active, created_at, updated_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    _, err := executorFrom(ctx, r.db).ExecContext(ctx, q,
        ev.ID, ev.Name, ev.Description, ev.Venue, ev.Category,
        ev.StartsAt.UTC(), ev.EndsAt.UTC(),
        ev.MaxTicketsPerPurchase, string(ev.Status), ev.Active,
        ev.CreatedAt.UTC(), ev.UpdatedAt.UTC(),
    )
    return err
}

// FindByID returns the event with the given id, or ErrEventNotFound.
func (r *EventRepo) FindByID(ctx context.Context, id string) (*model.Event, error) {
    const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
    return r.scanOne(executorFrom(ctx, r.db).QueryRowContext(ctx, q, id))
}

// FindAll returns every event ordered by start time ascending.
func (r *EventRepo) FindAll(ctx context.Context) ([]model.Event, error) {
    const q = `SELECT ` + eventColumns + ` FROM events ORDER BY start_date ASC`
    rows, err := executorFrom(ctx, r.db).QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    return r.scanMany(rows)
}

// Search returns events matching an optional case-insensitive name
// substring and an optional exact category.  Price and availability
// filters operate on ticket types and are applied by the caller.
func (r *EventRepo) Search(ctx context.Context, name, category string) ([]model.Event, error) {
    q := `SELECT ` + eventColumns + ` FROM events`
    var conds []string
    var args []any
    if name != "" {
        conds = append(conds, "LOWER(name) LIKE ?")
        args = append(args, "%"+strings.ToLower(name)+"%")
    }
    if category != "" {
        conds = append(conds, "category = ?")
        args = append(args, category)
    }
    if len(conds) > 0 {
        q += " WHERE " + strings.Join(conds, " AND ")
    }
    q += " ORDER BY start_date ASC"
    rows, err := executorFrom(ctx, r.db).QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    return r.scanMany(rows)
}

// FindStartingAfter returns events whose start time is strictly
// after t.  Used by the promotions listing.
func (r *EventRepo) FindStartingAfter(ctx context.Context, t time.Time) ([]model.Event, error) {
    const q = `SELECT ` + eventColumns + ` FROM events WHERE start_date > ? ORDER BY start_date ASC`
    rows, err := executorFrom(ctx, r.db).QueryContext(ctx, q, t.UTC())
    if err != nil {
        return nil, err
    }
    return r.scanMany(rows)
}

func (r *EventRepo) scanOne(row *sql.Row) (*model.Event, error) {
    var ev model.Event
    var status string
    err := row.Scan(
        &ev.ID, &ev.Name, &ev.Description, &ev.Venue, &ev.Category,
        &ev.StartsAt, &ev.EndsAt, &ev.MaxTicketsPerPurchase,
        &status, &ev.Active, &ev.CreatedAt, &ev.UpdatedAt,
    )
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrEventNotFound
    }
    if err != nil {
        return nil, err
    }
    ev.Status = model.EventStatus(status)
    return &ev, nil
}

func (r *EventRepo) scanMany(rows *sql.Rows) ([]model.Event, error) {
    defer rows.Close()
    events := make([]model.Event, 0)
    for rows.Next() {
        var ev model.Event
        var status string
        if err := rows.Scan(
            &ev.ID, &ev.Name, &ev.Description, &ev.Venue, &ev.Category,
            &ev.StartsAt, &ev.EndsAt, &ev.MaxTicketsPerPurchase,
            &status, &ev.Active, &ev.CreatedAt, &ev.UpdatedAt,
        ); err != nil {
            return nil, err
        }
        ev.Status = model.EventStatus(status)
        events = append(events, ev)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return events, nil
}
