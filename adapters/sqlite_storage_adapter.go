package adapters

import (
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS pending_events (
	seq     INTEGER PRIMARY KEY,
	payload TEXT NOT NULL
)`

// SQLiteStorageAdapter keeps pending events in a SQLite database, one
// row per event in queue order.
type SQLiteStorageAdapter struct {
	db *sql.DB
}

// Ensure SQLiteStorageAdapter implements StorageAdapter interface
var _ StorageAdapter = (*SQLiteStorageAdapter)(nil)

// NewSQLiteStorageAdapter opens (creating if needed) the database at path.
func NewSQLiteStorageAdapter(path string) (*SQLiteStorageAdapter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite database %s", path)
	}
	// sqlite only supports a single writer
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create pending_events table")
	}
	return &SQLiteStorageAdapter{db: db}, nil
}

// Save replaces the stored rows with events inside a transaction.
func (s *SQLiteStorageAdapter) Save(events []Event) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM pending_events`); err != nil {
		return errors.Wrap(err, "delete pending events")
	}
	stmt, err := tx.Prepare(`INSERT INTO pending_events (seq, payload) VALUES (?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	for i, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return errors.Wrapf(err, "marshal event %q", event.Name)
		}
		if _, err := stmt.Exec(i, string(payload)); err != nil {
			return errors.Wrap(err, "insert pending event")
		}
	}
	return tx.Commit()
}

// Load returns the stored events ordered by their position in the queue.
func (s *SQLiteStorageAdapter) Load() ([]Event, error) {
	rows, err := s.db.Query(`SELECT payload FROM pending_events ORDER BY seq`)
	if err != nil {
		return nil, errors.Wrap(err, "query pending events")
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.Wrap(err, "scan pending event")
		}
		var event Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			return nil, errors.Wrap(err, "decode pending event")
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// Clear deletes every stored event.
func (s *SQLiteStorageAdapter) Clear() error {
	_, err := s.db.Exec(`DELETE FROM pending_events`)
	return errors.Wrap(err, "clear pending events")
}

// Close closes the database.
func (s *SQLiteStorageAdapter) Close() error {
	return s.db.Close()
}
