// Package store keeps the history of accepted sensor frames in a sqlite database.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"dhtl/pkg/datalogger"
)

const schema = `
CREATE TABLE IF NOT EXISTS readings (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	ts          INTEGER NOT NULL,
	sensor      TEXT    NOT NULL,
	humidity    REAL    NOT NULL,
	temperature REAL    NOT NULL,
	changed     INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS readings_ts ON readings (ts);`

// Store is the handler of the history database.
type Store struct {
	db *sql.DB
}

// Open opens (and creates) the database file.
// ":memory:" opens a database which is discarded on Close.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// sqlite allows one writer, an in-memory database exists per connection
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err = db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("can't set journal mode: %w", err)
	}
	if _, err = db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("can't create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Add appends a frame to the history.
func (s *Store) Add(f datalogger.Frame) error {
	_, err := s.db.Exec(`INSERT INTO readings (ts, sensor, humidity, temperature, changed) VALUES (?, ?, ?, ?, ?)`,
		f.TimeStamp.UnixNano(), f.Sensor, f.Humidity, f.Temperature, f.Changed)
	return err
}

// Last returns the latest n frames, newest first.
func (s *Store) Last(n int) ([]datalogger.Frame, error) {
	rows, err := s.db.Query(`SELECT ts, sensor, humidity, temperature, changed FROM readings ORDER BY ts DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	frames := []datalogger.Frame{}
	for rows.Next() {
		var f datalogger.Frame
		var ts int64
		if err = rows.Scan(&ts, &f.Sensor, &f.Humidity, &f.Temperature, &f.Changed); err != nil {
			return nil, err
		}
		f.TimeStamp = time.Unix(0, ts)
		frames = append(frames, f)
	}

	return frames, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
