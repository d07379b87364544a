package db

import (
	"database/sql"
	_ "embed"
	"errors"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/goerr/v2"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// DB wraps the database connection
type DB struct {
	*sqlx.DB
}

// Open opens the database at path, creating the file and schema if needed
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create data directory", goerr.V("path", path))
	}

	db, err := sqlx.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", path))
	}
	// One writer at a time; every statement commits before the next starts
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "failed to initialize schema", goerr.V("path", path))
	}

	return &DB{db}, nil
}

// DefaultPath returns the path to the database file under the XDG data directory
func DefaultPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "taskbox", "taskbox.db"), nil
}

// GetSetting retrieves a setting value by key, empty if unset
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.Get(&value, "SELECT value FROM settings WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", goerr.Wrap(err, "failed to read setting", goerr.V(SettingKey, key))
	}
	return value, nil
}

// SetSetting sets a setting value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return goerr.Wrap(err, "failed to write setting", goerr.V(SettingKey, key))
	}
	return nil
}

// deleteByID removes one row and reports ErrNotFound when nothing matched
func (db *DB) deleteByID(table, what string, id int64) error {
	result, err := db.Exec("DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return goerr.Wrap(err, "failed to delete "+what, goerr.V(IDKey, id))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to delete "+what, goerr.V(IDKey, id))
	}
	if n == 0 {
		return goerr.Wrap(ErrNotFound, what+" not found", goerr.V(IDKey, id))
	}
	return nil
}

// notFound maps sql.ErrNoRows to ErrNotFound and wraps anything else
func notFound(err error, what string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return goerr.Wrap(ErrNotFound, what+" not found", goerr.V(IDKey, id))
	}
	return goerr.Wrap(err, "failed to load "+what, goerr.V(IDKey, id))
}
