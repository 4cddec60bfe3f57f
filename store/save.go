package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/camgunz/cdump/cdef"
)

type column struct {
	name string
	typ  string
}

// Save writes every definition of table in one transaction. A definition
// whose kind and name are already stored is skipped, so saving the same
// table twice leaves one copy.
func (s *DB) Save(ctx context.Context, table *cdef.Table) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
			s.reloadTables(ctx)
		}
	}()

	saved := 0
	for _, def := range table.Definitions() {
		_, found, err := s.lookup(ctx, tx, def.Kind(), def.DefinitionName())
		if err != nil {
			return 0, err
		}
		if found {
			log.Debug("definition already stored", "key", cdef.Key(def))
			continue
		}
		if _, err := s.insert(ctx, tx, def); err != nil {
			return 0, fmt.Errorf("failed to save %s: %w", cdef.Key(def), err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	committed = true
	log.Info("saved definitions", "saved", saved, "total", table.Len())
	return saved, nil
}

// Lookup returns the row id of the named definition of kind.
func (s *DB) Lookup(ctx context.Context, kind cdef.Kind, name string) (int64, bool, error) {
	return s.lookup(ctx, s.db, kind, name)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *DB) lookup(ctx context.Context, q queryer, kind cdef.Kind, name string) (int64, bool, error) {
	if !s.hasTable(kind.String()) {
		return 0, false, nil
	}
	var id int64
	query := fmt.Sprintf(`SELECT id FROM %s WHERE name = ? ORDER BY id LIMIT 1`, quote(kind.String()))
	err := q.QueryRowContext(ctx, query, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up %s %s: %w", kind, name, err)
	}
	return id, true, nil
}

// insert writes t as a row of its kind's table and returns the row id.
func (s *DB) insert(ctx context.Context, tx *sql.Tx, t cdef.Type) (int64, error) {
	var cols []column
	var vals []any
	var lists []cdef.Attr

	for _, a := range t.Attrs() {
		switch a.Kind {
		case cdef.AttrString:
			cols = append(cols, column{a.Name, "TEXT"})
			vals = append(vals, a.Value)
		case cdef.AttrInt:
			cols = append(cols, column{a.Name, "INTEGER"})
			vals = append(vals, a.Value)
		case cdef.AttrBool:
			cols = append(cols, column{a.Name, "INTEGER"})
			vals = append(vals, boolInt(a.Value))
		case cdef.AttrType:
			kind, id, name, err := s.link(ctx, tx, a.Value)
			if err != nil {
				return 0, fmt.Errorf("%s: %w", a.Name, err)
			}
			cols = append(cols,
				column{a.Name + "_kind", "TEXT"},
				column{a.Name + "_id", "INTEGER"},
				column{a.Name + "_name", "TEXT"},
			)
			vals = append(vals, kind, id, name)
		case cdef.AttrMembers, cdef.AttrEnumerators:
			lists = append(lists, a)
		}
	}

	table := t.Kind().String()
	if err := s.ensureTable(ctx, tx, table, cols); err != nil {
		return 0, err
	}

	var query string
	if len(cols) == 0 {
		query = fmt.Sprintf(`INSERT INTO %s DEFAULT VALUES`, quote(table))
	} else {
		names := make([]string, len(cols))
		for i, c := range cols {
			names[i] = quote(c.name)
		}
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
			quote(table), strings.Join(names, ", "), placeholders(len(cols)))
	}
	res, err := tx.ExecContext(ctx, query, vals...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, a := range lists {
		if err := s.insertList(ctx, tx, table, id, a); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// link stores a nested type and returns the kind, id and name columns that
// point at it. References keep the target kind and name; inline entities
// become rows of their own.
func (s *DB) link(ctx context.Context, tx *sql.Tx, v any) (kind, id, name any, err error) {
	t, _ := v.(cdef.Type)
	switch ref := t.(type) {
	case nil:
		return nil, nil, nil, nil
	case cdef.Reference:
		return ref.Target.String(), nil, ref.Name, nil
	case cdef.SelfReference:
		return ref.Kind().String(), nil, nil, nil
	}
	rowID, err := s.insert(ctx, tx, t)
	if err != nil {
		return nil, nil, nil, err
	}
	return t.Kind().String(), rowID, nil, nil
}

func (s *DB) insertList(ctx context.Context, tx *sql.Tx, owner string, ownerID int64, a cdef.Attr) error {
	table := owner + "_" + a.Name
	base := []column{{"owner_id", "INTEGER NOT NULL"}, {"position", "INTEGER NOT NULL"}, {"name", "TEXT"}}

	switch items := a.Value.(type) {
	case []cdef.Member:
		cols := append(base, column{"type_kind", "TEXT"}, column{"type_id", "INTEGER"}, column{"type_name", "TEXT"})
		if err := s.ensureTable(ctx, tx, table, cols); err != nil {
			return err
		}
		query := fmt.Sprintf(`INSERT INTO %s (owner_id, position, name, type_kind, type_id, type_name) VALUES (?, ?, ?, ?, ?, ?)`, quote(table))
		for i, m := range items {
			kind, id, name, err := s.link(ctx, tx, m.Type)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", table, m.Name, err)
			}
			if _, err := tx.ExecContext(ctx, query, ownerID, i, m.Name, kind, id, name); err != nil {
				return fmt.Errorf("failed to insert into %s: %w", table, err)
			}
		}
	case []cdef.Enumerator:
		cols := append(base, column{"value", "INTEGER NOT NULL"})
		if err := s.ensureTable(ctx, tx, table, cols); err != nil {
			return err
		}
		query := fmt.Sprintf(`INSERT INTO %s (owner_id, position, name, value) VALUES (?, ?, ?, ?)`, quote(table))
		for i, e := range items {
			if _, err := tx.ExecContext(ctx, query, ownerID, i, e.Name, e.Value); err != nil {
				return fmt.Errorf("failed to insert into %s: %w", table, err)
			}
		}
	}
	return nil
}

// ensureTable creates table on first use and remembers it.
func (s *DB) ensureTable(ctx context.Context, tx *sql.Tx, table string, cols []column) error {
	if s.hasTable(table) {
		return nil
	}

	defs := []string{"id INTEGER PRIMARY KEY"}
	for _, c := range cols {
		defs = append(defs, quote(c.name)+" "+c.typ)
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(table), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	s.mu.Lock()
	s.tables[table] = true
	s.mu.Unlock()
	log.Debug("created table", "table", table)
	return nil
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func boolInt(v any) int {
	if b, ok := v.(bool); ok && b {
		return 1
	}
	return 0
}
