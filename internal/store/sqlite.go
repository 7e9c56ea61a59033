package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("store: closed")

// Store is the learning database. It is safe for concurrent use.
type Store struct {
	mu  sync.RWMutex
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database at the given path and runs migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := migrateDB(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := validateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("database %s: %w", path, err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection. Closing twice is harmless.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// conn returns the open database, or ErrClosed. The caller holds s.mu.
func (s *Store) conn() (*sql.DB, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	return s.db, nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Version returns the schema version of the database.
func (s *Store) Version() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	return schemaVersion(db)
}

// Reset forgets everything learned by rolling back every migration and
// applying them again.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.conn()
	if err != nil {
		return err
	}
	for {
		v, err := schemaVersion(db)
		if err != nil {
			return err
		}
		if v == 0 {
			break
		}
		if err := rollbackMigration(db); err != nil {
			return err
		}
	}
	if err := migrateDB(db); err != nil {
		return err
	}
	return validateSchema(db)
}

// RecordSelection notes that word was chosen for reading.
func (s *Store) RecordSelection(reading, word string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO selections (reading, word, count, last_used)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (reading, word) DO UPDATE SET
			count = count + 1,
			last_used = excluded.last_used`,
		reading, word, s.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record selection: %w", err)
	}
	return nil
}

// Ranked returns the learned candidates for reading, most used first.
func (s *Store) Ranked(reading string) ([]Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT reading, word, count, last_used FROM selections
		WHERE reading = ?
		ORDER BY count DESC, last_used DESC`, reading)
	if err != nil {
		return nil, fmt.Errorf("query selections: %w", err)
	}
	defer rows.Close()

	var out []Selection
	for rows.Next() {
		var sel Selection
		var used int64
		if err := rows.Scan(&sel.Reading, &sel.Word, &sel.Count, &used); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		sel.LastUsed = time.Unix(0, used)
		out = append(out, sel)
	}
	return out, rows.Err()
}

// RecordPhrase notes a committed phrase and its reading.
func (s *Store) RecordPhrase(reading, text string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO phrases (reading, text, count, last_used)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (reading, text) DO UPDATE SET
			count = count + 1,
			last_used = excluded.last_used`,
		reading, text, s.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record phrase: %w", err)
	}
	return nil
}

// Predict returns up to limit phrases whose reading starts with prefix.
// A non-positive limit returns all of them.
func (s *Store) Predict(prefix string, limit int) ([]Phrase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.Query(`
		SELECT reading, text, count, last_used FROM phrases
		WHERE substr(reading, 1, length(?)) = ?
		ORDER BY count DESC, last_used DESC
		LIMIT ?`, prefix, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("query phrases: %w", err)
	}
	defer rows.Close()

	var out []Phrase
	for rows.Next() {
		var p Phrase
		var used int64
		if err := rows.Scan(&p.Reading, &p.Text, &p.Count, &used); err != nil {
			return nil, fmt.Errorf("scan phrase: %w", err)
		}
		p.LastUsed = time.Unix(0, used)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Forget removes everything learned for reading.
func (s *Store) Forget(reading string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM selections WHERE reading = ?", reading); err != nil {
		return fmt.Errorf("forget selections: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM phrases WHERE reading = ?", reading); err != nil {
		return fmt.Errorf("forget phrases: %w", err)
	}
	return tx.Commit()
}
