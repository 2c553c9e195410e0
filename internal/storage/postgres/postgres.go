package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/AaronLay10/WishEngine/internal/config"
	"github.com/AaronLay10/WishEngine/internal/events"
	"github.com/AaronLay10/WishEngine/internal/storage"
)

// Options configures the journal connection. An empty DSN is built from the
// PG* environment variables, with PGPASSWORD resolved via the _FILE
// convention.
type Options struct {
	DSN     string
	Service string
}

// Journal stores the event stream in Postgres.
type Journal struct {
	db      *sql.DB
	service string
}

// New connects, pings and creates the wish_events table if needed.
func New(ctx context.Context, opts Options) (*Journal, error) {
	dsn := opts.DSN
	if dsn == "" {
		var err error
		dsn, err = dsnFromEnv()
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	j := &Journal{db: db, service: opts.Service}
	if j.service == "" {
		j.service = "wish-engine"
	}

	if err := j.createTable(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create wish_events table: %w", err)
	}

	return j, nil
}

func dsnFromEnv() (string, error) {
	host := getEnv("PGHOST", "127.0.0.1")
	port := getEnv("PGPORT", "5432")
	user := getEnv("PGUSER", "wish")
	dbname := getEnv("PGDATABASE", "wish")
	sslmode := getEnv("PGSSLMODE", "disable")

	password, err := config.ResolveSecret("PGPASSWORD")
	if err != nil {
		return "", err
	}

	if password != "" {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode), nil
	}
	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		host, port, user, dbname, sslmode), nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func (j *Journal) createTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS wish_events (
			seq      BIGSERIAL PRIMARY KEY,
			event_id TEXT NOT NULL,
			ts       TIMESTAMPTZ NOT NULL,
			level    TEXT NOT NULL,
			event    TEXT NOT NULL,
			msg      TEXT,
			fields   JSONB,
			service  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_wish_events_ts ON wish_events(ts DESC);
		CREATE INDEX IF NOT EXISTS idx_wish_events_service ON wish_events(service);
	`
	_, err := j.db.ExecContext(ctx, query)
	return err
}

// Name identifies the journal as an events sink.
func (j *Journal) Name() string {
	return "postgres"
}

// Append inserts an event.
func (j *Journal) Append(e events.Event) error {
	fieldsJSON, err := marshalFields(e.Fields)
	if err != nil {
		return err
	}

	var msgPtr *string
	if e.Message != "" {
		msgPtr = &e.Message
	}

	ts := e.Time()
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	query := `
		INSERT INTO wish_events (event_id, ts, level, event, msg, fields, service)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = j.db.Exec(query, e.ID, ts, e.Level, e.Name, msgPtr, fieldsJSON, j.service)
	return err
}

// Query returns the last limit events for this service, newest first.
func (j *Journal) Query(limit int) ([]events.Event, error) {
	query := `
		SELECT event_id, ts, level, event, msg, fields
		FROM wish_events
		WHERE service = $1
		ORDER BY ts DESC, seq DESC
		LIMIT $2
	`
	rows, err := j.db.Query(query, j.service, storage.ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var e events.Event
		var ts time.Time
		var msg sql.NullString
		var fieldsJSON []byte

		if err := rows.Scan(&e.ID, &ts, &e.Level, &e.Name, &msg, &fieldsJSON); err != nil {
			return nil, err
		}

		e.Timestamp = ts.UTC().Format(time.RFC3339Nano)
		e.Message = msg.String
		if len(fieldsJSON) > 0 {
			if err := json.Unmarshal(fieldsJSON, &e.Fields); err != nil {
				return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
			}
		}

		out = append(out, e)
	}

	return out, rows.Err()
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

func marshalFields(fields map[string]interface{}) ([]byte, error) {
	if fields == nil {
		return nil, nil
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fields: %w", err)
	}
	return b, nil
}

var _ storage.Journal = (*Journal)(nil)
