package maintenance

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tackle-labs/tacklebox"
	"github.com/tackle-labs/tacklebox/collection"
)

// newTestCollection creates a throwaway collection with the host schema
// and returns it alongside a raw handle for seeding and inspecting rows.
func newTestCollection(t *testing.T) (*collection.Collection, *sql.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "collection.anki2")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	schema := []string{
		`CREATE TABLE notes (
			id INTEGER PRIMARY KEY,
			mid INTEGER NOT NULL,
			flds TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '',
			mod INTEGER NOT NULL DEFAULT 0,
			usn INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE cards (
			id INTEGER PRIMARY KEY,
			nid INTEGER NOT NULL
		)`,
		`CREATE TABLE notetypes (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE fields (
			ntid INTEGER NOT NULL,
			ord INTEGER NOT NULL,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE templates (
			ntid INTEGER NOT NULL,
			ord INTEGER NOT NULL,
			name TEXT NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	col, err := collection.Open(path)
	if err != nil {
		t.Fatalf("collection.Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = col.Close()
	})
	return col, db
}

func insertNotetype(t *testing.T, db *sql.DB, id int64, name string, fields ...string) {
	t.Helper()
	if _, err := db.Exec(`INSERT INTO notetypes (id, name) VALUES (?, ?)`, id, name); err != nil {
		t.Fatalf("insert notetype %q: %v", name, err)
	}
	for ord, field := range fields {
		if _, err := db.Exec(`INSERT INTO fields (ntid, ord, name) VALUES (?, ?, ?)`, id, ord, field); err != nil {
			t.Fatalf("insert field %q: %v", field, err)
		}
	}
}

func insertNote(t *testing.T, db *sql.DB, id, mid int64, fields []string, tags string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO notes (id, mid, flds, tags) VALUES (?, ?, ?, ?)`,
		id, mid, collection.JoinFields(fields), tags)
	if err != nil {
		t.Fatalf("insert note %d: %v", id, err)
	}
}

func insertCard(t *testing.T, db *sql.DB, id, nid int64) {
	t.Helper()
	if _, err := db.Exec(`INSERT INTO cards (id, nid) VALUES (?, ?)`, id, nid); err != nil {
		t.Fatalf("insert card %d: %v", id, err)
	}
}

func TestRunEmitsLifecycleEvents(t *testing.T) {
	var events []tacklebox.Event
	r := &Runner{Events: func(e tacklebox.Event) { events = append(events, e) }}

	err := r.run(context.Background(), "demo", func(context.Context) (map[string]any, error) {
		return map[string]any{"count": 3}, nil
	})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Kind != tacklebox.EventScanStarted {
		t.Errorf("events[0].Kind = %q, want %q", events[0].Kind, tacklebox.EventScanStarted)
	}
	if events[0].Ref != "demo" {
		t.Errorf("events[0].Ref = %q, want demo", events[0].Ref)
	}
	if events[0].RunID == "" {
		t.Error("events[0].RunID is empty")
	}
	if events[1].Kind != tacklebox.EventScanFinished {
		t.Errorf("events[1].Kind = %q, want %q", events[1].Kind, tacklebox.EventScanFinished)
	}
	if events[1].RunID != events[0].RunID {
		t.Errorf("RunID changed across the run: %q vs %q", events[0].RunID, events[1].RunID)
	}
	if got := events[1].Payload["count"]; got != 3 {
		t.Errorf("finished payload count = %v, want 3", got)
	}
}

func TestRunEmitsFailure(t *testing.T) {
	var events []tacklebox.Event
	r := &Runner{Events: func(e tacklebox.Event) { events = append(events, e) }}

	wantErr := errors.New("collection locked")
	err := r.run(context.Background(), "demo", func(context.Context) (map[string]any, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("run() error = %v, want %v", err, wantErr)
	}

	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[1].Kind != tacklebox.EventScanFailed {
		t.Errorf("events[1].Kind = %q, want %q", events[1].Kind, tacklebox.EventScanFailed)
	}
	if got := events[1].Payload["error"]; got != "collection locked" {
		t.Errorf("failed payload error = %v, want collection locked", got)
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var events []tacklebox.Event
	r := &Runner{Events: func(e tacklebox.Event) { events = append(events, e) }}

	err := r.run(ctx, "demo", func(context.Context) (map[string]any, error) {
		t.Fatal("scan body ran despite canceled context")
		return nil, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("run() error = %v, want context.Canceled", err)
	}
	if len(events) != 0 {
		t.Fatalf("len(events) = %d, want 0", len(events))
	}
}
