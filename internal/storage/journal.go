// Package storage defines the contract shared by the event journals.
package storage

import "github.com/AaronLay10/WishEngine/internal/events"

const (
	DefaultQueryLimit = 200
	MaxQueryLimit     = 10000
)

// Journal persists the event stream and answers history queries.
type Journal interface {
	events.Sink
	// Query returns up to limit events, newest first.
	Query(limit int) ([]events.Event, error)
	Close() error
}

// ClampLimit maps a requested history size onto 1..MaxQueryLimit.
// Non-positive values select DefaultQueryLimit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultQueryLimit
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}
