// Package sqlite stores the event stream in a local SQLite file.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/AaronLay10/WishEngine/internal/events"
	"github.com/AaronLay10/WishEngine/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS wish_events (
	seq       INTEGER PRIMARY KEY AUTOINCREMENT,
	event_id  TEXT NOT NULL,
	ts        TEXT NOT NULL,
	level     TEXT NOT NULL,
	event     TEXT NOT NULL,
	msg       TEXT,
	fields    TEXT
);

CREATE INDEX IF NOT EXISTS idx_wish_events_event ON wish_events(event);
`

// Journal is a SQLite-backed event journal.
type Journal struct {
	db *sql.DB
}

// Open opens the database at path and runs migrations.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Name() string {
	return "sqlite"
}

// Append inserts an event.
func (j *Journal) Append(e events.Event) error {
	var fieldsJSON sql.NullString
	if e.Fields != nil {
		b, err := json.Marshal(e.Fields)
		if err != nil {
			return fmt.Errorf("marshal fields: %w", err)
		}
		fieldsJSON = sql.NullString{String: string(b), Valid: true}
	}

	var msg sql.NullString
	if e.Message != "" {
		msg = sql.NullString{String: e.Message, Valid: true}
	}

	_, err := j.db.Exec(
		`INSERT INTO wish_events (event_id, ts, level, event, msg, fields) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp, e.Level, e.Name, msg, fieldsJSON,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Query returns the last limit events, newest first.
func (j *Journal) Query(limit int) ([]events.Event, error) {
	rows, err := j.db.Query(
		`SELECT event_id, ts, level, event, msg, fields FROM wish_events ORDER BY seq DESC LIMIT ?`,
		storage.ClampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var e events.Event
		var msg, fieldsJSON sql.NullString
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Level, &e.Name, &msg, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Message = msg.String
		if fieldsJSON.Valid && fieldsJSON.String != "" {
			if err := json.Unmarshal([]byte(fieldsJSON.String), &e.Fields); err != nil {
				return nil, fmt.Errorf("unmarshal fields: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

var _ storage.Journal = (*Journal)(nil)
