package collection

import (
	"context"
	"fmt"
)

// Notetype is one row of the notetypes table.
type Notetype struct {
	ID   int64
	Name string
}

// Notetypes returns every note type in name order.
func (c *Collection) Notetypes(ctx context.Context) ([]Notetype, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, name FROM notetypes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("collection: list notetypes: %w", err)
	}
	defer rows.Close()

	var types []Notetype
	for rows.Next() {
		var nt Notetype
		if err := rows.Scan(&nt.ID, &nt.Name); err != nil {
			return nil, fmt.Errorf("collection: scan notetype: %w", err)
		}
		types = append(types, nt)
	}
	return types, rows.Err()
}

// FieldNames returns the note type's field names in ordinal order.
func (c *Collection) FieldNames(ctx context.Context, notetypeID int64) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name FROM fields WHERE ntid = ? ORDER BY ord`, notetypeID)
	if err != nil {
		return nil, fmt.Errorf("collection: fields of notetype %d: %w", notetypeID, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("collection: scan field name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CardCount counts the cards generated from the note type's notes.
func (c *Collection) CardCount(ctx context.Context, notetypeID int64) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cards WHERE nid IN (SELECT id FROM notes WHERE mid = ?)`,
		notetypeID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("collection: card count of notetype %d: %w", notetypeID, err)
	}
	return count, nil
}

// DeleteNotetype removes the note type together with its notes, cards,
// field definitions, and templates, in one transaction.
func (c *Collection) DeleteNotetype(ctx context.Context, notetypeID int64) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("collection: delete notetype %d: %w", notetypeID, err)
	}
	defer tx.Rollback() //nolint:errcheck

	statements := []string{
		`DELETE FROM cards WHERE nid IN (SELECT id FROM notes WHERE mid = ?)`,
		`DELETE FROM notes WHERE mid = ?`,
		`DELETE FROM fields WHERE ntid = ?`,
		`DELETE FROM templates WHERE ntid = ?`,
		`DELETE FROM notetypes WHERE id = ?`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, notetypeID); err != nil {
			return fmt.Errorf("collection: delete notetype %d: %w", notetypeID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("collection: delete notetype %d: %w", notetypeID, err)
	}
	return nil
}
