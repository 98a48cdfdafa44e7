// Package postgres persists activity events to an append-only table.
//
// Expected schema:
//
//	CREATE TABLE activity_events (
//	    id           UUID PRIMARY KEY,
//	    version      TEXT NOT NULL,
//	    event_type   TEXT NOT NULL,
//	    event_access TEXT NOT NULL,
//	    event_scope  TEXT NOT NULL,
//	    message      TEXT NOT NULL,
//	    status       TEXT NOT NULL,
//	    origin       JSONB NOT NULL,
//	    data         JSONB NOT NULL,
//	    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vigil/internal/activity"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event activity.StreamEvent) error {
	origin, err := json.Marshal(event.Origin)
	if err != nil {
		return fmt.Errorf("encode origin: %w", err)
	}
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("encode data: %w", err)
	}

	const query = `
		INSERT INTO activity_events
			(id, version, event_type, event_access, event_scope, message, status, origin, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = s.db.ExecContext(ctx, query,
		uuid.New(),
		event.Version,
		string(event.Type),
		string(event.EventAccess),
		string(event.EventScope),
		event.Message,
		string(event.Status),
		origin,
		data,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("append activity event: %w", err)
	}
	return nil
}
