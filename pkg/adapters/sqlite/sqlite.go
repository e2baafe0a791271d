// Package sqlite stores action descriptors and session snapshots in a SQLite file.
//
// The driver is the pure-Go glebarez/go-sqlite, so no cgo toolchain is needed.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/dewakar-s/procflow/internal/compiler"
	"github.com/dewakar-s/procflow/pkg/domain"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS actions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action_set_id TEXT NOT NULL,
		name TEXT NOT NULL,
		doc TEXT NOT NULL,
		UNIQUE(action_set_id, name)
	);`,
	`CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		state TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);`,
}

// DB wraps a SQLite database holding both tables.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the tables exist.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time; SQLite serialises writes anyway.
	db.SetMaxOpenConns(1)

	for _, q := range schema {
		if _, err := db.Exec(q); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// PutAction inserts or replaces a descriptor in an action set.
func (d *DB) PutAction(ctx context.Context, actionSetID string, desc domain.ActionDescriptor) error {
	if err := desc.Validate(); err != nil {
		return err
	}
	doc, err := json.Marshal(desc)
	if err != nil {
		return fmt.Errorf("failed to marshal action: %w", err)
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO actions (action_set_id, name, doc) VALUES (?, ?, ?)
		 ON CONFLICT(action_set_id, name) DO UPDATE SET doc = excluded.doc`,
		actionSetID, desc.Name, string(doc))
	return err
}

// ListActions implements ports.ActionSource.
// Rows are decoded through the same generic path as action files.
func (d *DB) ListActions(ctx context.Context, actionSetID string) ([]domain.ActionDescriptor, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT name, doc FROM actions WHERE action_set_id = ? ORDER BY id`, actionSetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ActionDescriptor
	for rows.Next() {
		var name, doc string
		if err := rows.Scan(&name, &doc); err != nil {
			return nil, err
		}
		var raw map[string]any
		if err := json.Unmarshal([]byte(doc), &raw); err != nil {
			return nil, fmt.Errorf("action %s: %w", name, err)
		}
		desc, err := compiler.DecodeDescriptor(raw)
		if err != nil {
			return nil, fmt.Errorf("action %s: %w", name, err)
		}
		out = append(out, desc)
	}
	return out, rows.Err()
}

// Save implements ports.StateStore.
func (d *DB) Save(ctx context.Context, sessionID string, state *domain.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, status, state, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET status = excluded.status, state = excluded.state, updated_at = excluded.updated_at`,
		sessionID, string(state.Status), string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load implements ports.StateStore.
func (d *DB) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	var data string
	err := d.db.QueryRowContext(ctx, `SELECT state FROM sessions WHERE session_id = ?`, sessionID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var state domain.State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	return &state, nil
}

// Delete implements ports.StateStore.
func (d *DB) Delete(ctx context.Context, sessionID string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
	return err
}

// List implements ports.StateStore.
func (d *DB) List(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT session_id FROM sessions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, rows.Err()
}
