// Package store writes definition tables to SQLite.
//
// Every entity kind gets its own table, created the first time an instance
// of that kind is written. Nested entities are rows of their own kind linked
// through <attr>_kind and <attr>_id columns; references to named definitions
// fill <attr>_kind and <attr>_name instead. Member and enumerator lists live
// in <kind>_<attr> child tables ordered by position.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"
)

var log = commonlog.GetLogger("cdump.store")

type DB struct {
	db *sql.DB

	mu     sync.Mutex
	tables map[string]bool
}

// Open opens or creates the database at path. ":memory:" opens a private
// in-memory database.
func Open(ctx context.Context, path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each pooled connection to ":memory:" would see its own database.
	db.SetMaxOpenConns(1)

	s := &DB{db: db, tables: make(map[string]bool)}
	if err := s.configure(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}
	if err := s.loadTables(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("opened database", "path", path, "tables", len(s.tables))
	return s, nil
}

func (s *DB) configure(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	return nil
}

// loadTables fills the table cache from an existing database file.
func (s *DB) loadTables(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		s.mu.Lock()
		s.tables[name] = true
		s.mu.Unlock()
	}
	return rows.Err()
}

// reloadTables drops tables created by a rolled back transaction from the
// cache.
func (s *DB) reloadTables(ctx context.Context) {
	s.mu.Lock()
	s.tables = make(map[string]bool)
	s.mu.Unlock()
	if err := s.loadTables(ctx); err != nil {
		log.Warning("failed to reload table cache", "error", err.Error())
	}
}

func (s *DB) DB() *sql.DB {
	return s.db
}

func (s *DB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Tables reports the entity tables created so far.
func (s *DB) Tables() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for name := range s.tables {
		out = append(out, name)
	}
	return out
}

func (s *DB) hasTable(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables[name]
}
