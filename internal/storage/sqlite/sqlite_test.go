package sqlite

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/AaronLay10/WishEngine/internal/events"
)

func tempJournal(t *testing.T) *Journal {
	t.Helper()
	dir := t.TempDir()
	j, err := Open(filepath.Join(dir, "events.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestAppendAndQuery(t *testing.T) {
	j := tempJournal(t)

	if j.Name() != "sqlite" {
		t.Errorf("unexpected name %q", j.Name())
	}

	first := events.Event{
		ID:        "a",
		Timestamp: "2026-01-02T03:04:05Z",
		Level:     "info",
		Name:      events.SystemStartup,
		Message:   "starting",
	}
	second := events.Event{
		ID:        "b",
		Timestamp: "2026-01-02T03:04:06Z",
		Level:     "info",
		Name:      events.DrawCompleted,
		Fields:    map[string]interface{}{"machine": "land-craft", "elapsed_ms": 3},
	}
	for _, e := range []events.Event{first, second} {
		if err := j.Append(e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rows, err := j.Query(0)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ID != "b" || rows[1].ID != "a" {
		t.Errorf("expected newest first, got %s, %s", rows[0].ID, rows[1].ID)
	}
	if rows[0].Fields["machine"] != "land-craft" {
		t.Errorf("unexpected fields %v", rows[0].Fields)
	}
	// JSON numbers come back as float64.
	if rows[0].Fields["elapsed_ms"] != float64(3) {
		t.Errorf("unexpected elapsed_ms %v", rows[0].Fields["elapsed_ms"])
	}
	if rows[1].Message != "starting" || rows[1].Fields != nil {
		t.Errorf("unexpected first row %+v", rows[1])
	}
	if rows[1].Time().IsZero() {
		t.Error("expected timestamp to round-trip")
	}
}

func TestQueryLimit(t *testing.T) {
	j := tempJournal(t)

	for i := 0; i < 5; i++ {
		e := events.Event{ID: fmt.Sprintf("e%d", i), Timestamp: "2026-01-02T03:04:05Z", Level: "info", Name: events.DrawRequested}
		if err := j.Append(e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rows, err := j.Query(2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ID != "e4" || rows[1].ID != "e3" {
		t.Errorf("unexpected rows %s, %s", rows[0].ID, rows[1].ID)
	}
}

func TestReopenKeepsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := j.Append(events.Event{ID: "x", Timestamp: "2026-01-02T03:04:05Z", Level: "info", Name: events.CatalogLoaded}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	j.Close()

	j, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j.Close()

	rows, err := j.Query(10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != events.CatalogLoaded {
		t.Errorf("unexpected rows after reopen: %+v", rows)
	}
}

func TestJournalAsHubSink(t *testing.T) {
	j := tempJournal(t)
	h := events.NewHub(8)
	h.AddSink(j)

	if _, err := h.Emit("info", events.DrawRejected, "", map[string]interface{}{"kind": "empty_message"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	rows, err := j.Query(10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows) != 1 || rows[0].Fields["kind"] != "empty_message" {
		t.Errorf("unexpected rows %+v", rows)
	}
	if !h.SinkHealthy("sqlite") {
		t.Error("expected sink healthy")
	}
}
