// Package audit records operator actions (fault injections, resets) and
// session lifecycle events in SQLite. Telemetry packets themselves are
// never persisted.
package audit

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the audit database at path. Use ":memory:"
// for tests.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS actions (
			actor             TEXT,
			action            TEXT,
			detail            TEXT,
			timestamp         TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

// Entry is one recorded operator action or session event.
type Entry struct {
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordAction appends an entry. Actor is the remote address (or
// "system" for internally generated events).
func (db *DB) RecordAction(actor, action, detail string) error {
	_, err := db.Exec(
		`INSERT INTO actions (actor, action, detail) VALUES (?, ?, ?)`,
		actor, action, detail,
	)
	return err
}

// RecentActions returns up to limit entries, newest first.
func (db *DB) RecentActions(limit int) ([]Entry, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := db.Query(
		`SELECT actor, action, detail, timestamp FROM actions ORDER BY timestamp DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Actor, &e.Action, &e.Detail, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
