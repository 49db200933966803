package kvstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// SQLiteBackend stores data in a single-file SQLite database using the
// pure-Go modernc.org/sqlite driver. Records live in one `kv` table
// with a BLOB primary key; Scan iterates in key order.
type SQLiteBackend struct{}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (k BLOB PRIMARY KEY, v BLOB NOT NULL) WITHOUT ROWID`

// Create creates a new SQLite database file at path, failing if path
// already exists.
func (SQLiteBackend) Create(path string) (Store, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("kvstore: sqlite database %q already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("kvstore: stat %q: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("kvstore: create sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("kvstore: create kv table: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

// Open opens an existing SQLite database at path.
func (SQLiteBackend) Open(path string, readOnly bool) (Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("kvstore: open sqlite %q: %w", path, err)
	}

	dsn := path
	if readOnly {
		dsn = "file:" + path + "?mode=ro"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("kvstore: open sqlite: %w", err)
	}

	// Reject files that are not hmsearch stores.
	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='kv'`).Scan(&name)
	if err != nil {
		db.Close()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("kvstore: %q is not a valid store (no kv table)", path)
		}
		return nil, fmt.Errorf("kvstore: open sqlite: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

type sqliteStore struct {
	db *sql.DB
}

func (s *sqliteStore) Get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT v FROM kv WHERE k = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (s *sqliteStore) Put(key, value []byte) error {
	_, err := s.db.Exec(`INSERT INTO kv (k, v) VALUES (?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v`, key, value)
	return err
}

// Append uses SQLite's native blob concatenation, avoiding the
// read-modify-write round trip.
func (s *sqliteStore) Append(key, suffix []byte) error {
	_, err := s.db.Exec(`INSERT INTO kv (k, v) VALUES (?, ?)
		ON CONFLICT(k) DO UPDATE SET v = v || excluded.v`, key, suffix)
	return err
}

// AppendBatch implements BatchWriter inside one transaction.
func (s *sqliteStore) AppendBatch(ops []AppendOp) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, op := range ops {
		if _, err := tx.Exec(`INSERT INTO kv (k, v) VALUES (?, ?)
			ON CONFLICT(k) DO UPDATE SET v = v || excluded.v`, op.Key, op.Suffix); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) Scan(fn func(key, value []byte) error) error {
	rows, err := s.db.Query(`SELECT k, v FROM kv ORDER BY k`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
