// Package collection provides read and maintenance access to the host
// application's SQLite collection: notes, cards, note types, and the
// media directory. The schema belongs to the host; this package only
// reads it and applies the narrow edits the maintenance scans need.
package collection

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// FieldSeparator joins note fields in the notes.flds column.
const FieldSeparator = "\x1f"

// Note is one row of the notes table with its fields and tags split out.
type Note struct {
	ID         int64
	NotetypeID int64
	Fields     []string
	Tags       []string
}

// HasTag reports whether the note carries exactly this tag.
func (n Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// JoinFields packs fields back into the on-disk flds representation.
func JoinFields(fields []string) string {
	return strings.Join(fields, FieldSeparator)
}

// SplitFields unpacks the on-disk flds representation.
func SplitFields(flds string) []string {
	return strings.Split(flds, FieldSeparator)
}

// Collection is an open SQLite collection.
type Collection struct {
	db *sql.DB
}

// Open opens the collection database and enables WAL mode for
// concurrent read access alongside the host application.
func Open(path string) (*Collection, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("collection: open: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("collection: set WAL mode: %w", err)
	}
	return &Collection{db: db}, nil
}

// Close closes the database connection.
func (c *Collection) Close() error {
	return c.db.Close()
}

// EachNote calls fn for every note in id order. A non-nil error from fn
// stops the walk and is returned unchanged.
func (c *Collection) EachNote(ctx context.Context, fn func(Note) error) error {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, mid, flds, tags FROM notes ORDER BY id`)
	if err != nil {
		return fmt.Errorf("collection: list notes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return err
		}
		if err := fn(note); err != nil {
			return err
		}
	}
	return rows.Err()
}

// NotesWithTag returns the notes carrying exactly this tag, in id order.
// The SQL LIKE narrows candidates; the exact match happens on the split
// tag list because tags is a single space-joined column.
func (c *Collection) NotesWithTag(ctx context.Context, tag string) ([]Note, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, mid, flds, tags FROM notes WHERE tags LIKE ? ORDER BY id`,
		"%"+tag+"%")
	if err != nil {
		return nil, fmt.Errorf("collection: notes with tag %q: %w", tag, err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		if note.HasTag(tag) {
			notes = append(notes, note)
		}
	}
	return notes, rows.Err()
}

// UpdateNoteFields writes the note's fields back, bumps the modification
// time, and marks the note pending sync (usn -1), matching how the host
// flags local edits.
func (c *Collection) UpdateNoteFields(ctx context.Context, id int64, fields []string) error {
	if len(fields) == 0 {
		return fmt.Errorf("collection: update note %d: no fields", id)
	}
	_, err := c.db.ExecContext(ctx,
		`UPDATE notes SET flds = ?, mod = ?, usn = -1 WHERE id = ?`,
		JoinFields(fields), time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("collection: update note %d: %w", id, err)
	}
	return nil
}

func scanNote(rows *sql.Rows) (Note, error) {
	var (
		note Note
		flds string
		tags string
	)
	if err := rows.Scan(&note.ID, &note.NotetypeID, &flds, &tags); err != nil {
		return Note{}, fmt.Errorf("collection: scan note: %w", err)
	}
	note.Fields = SplitFields(flds)
	note.Tags = strings.Fields(tags)
	return note, nil
}
