package syncx

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const TypeGradeCalculated = "GradeCalculated"

type Event struct {
	Seq       int64
	ID        string
	SiteID    string
	Type      string
	Key       string
	DataJSON  string
	CreatedAt int64
}

// EventRepo is an append-only log over the event_log table.
type EventRepo struct {
	db     *sql.DB
	siteID string
}

func NewEventRepo(db *sql.DB, siteID string) *EventRepo {
	if siteID == "" {
		siteID = "local"
	}
	return &EventRepo{db: db, siteID: siteID}
}

// Append stores e and returns it with ID, SiteID and CreatedAt filled in.
func (r *EventRepo) Append(ctx context.Context, e Event) (Event, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.SiteID == "" {
		e.SiteID = r.siteID
	}
	e.CreatedAt = time.Now().Unix()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (event_id, site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.SiteID, e.Type, e.Key, e.DataJSON, e.CreatedAt)
	if err != nil {
		return Event{}, fmt.Errorf("append %s event: %w", e.Type, err)
	}
	return e, nil
}

// ListByKey returns up to limit events of one type for key, newest first.
func (r *EventRepo) ListByKey(ctx context.Context, typ, key string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, event_id, site_id, typ, key, data, created_at
		 FROM event_log WHERE typ=$1 AND key=$2
		 ORDER BY seq DESC LIMIT $3`, typ, key, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s events: %w", typ, err)
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.ID, &e.SiteID, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
