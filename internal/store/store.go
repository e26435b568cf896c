// Package store provides generic, injection-safe access to the named
// tables of the single-file SQLite database. Values are always bound as
// query parameters; table and column names, which cannot be bound in
// SQL, are checked against compile-time allow-lists and additionally
// stripped by SanitizeIdentifier before any statement is built.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// Table enumerates the tables this store may touch. Using a dedicated
// type keeps arbitrary strings out of statement building.
type Table string

const (
	TableEntries    Table = "Entries"
	TableCategories Table = "Categories"
)

// tableColumns is the per-table column allow-list. Column names are
// interpolated into statements and must never come from user input.
var tableColumns = map[Table]map[string]bool{
	TableEntries: {
		"id":          true,
		"cat_id":      true,
		"dt":          true,
		"description": true,
		"value":       true,
	},
	TableCategories: {
		"id":   true,
		"name": true,
	},
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database file at path, enables
// foreign keys, and brings the schema up to date.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(path); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("Database ready", "path", path)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the underlying handle for tests and migrations helpers.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Insert builds a parameterized INSERT binding every column by name and
// returns the id of the new row.
func (s *Store) Insert(ctx context.Context, table Table, cols map[string]any) (int64, error) {
	if err := checkIdentifiers(table, keysOf(cols)); err != nil {
		return 0, err
	}

	names := keysOf(cols)
	sort.Strings(names)

	placeholders := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		placeholders[i] = "?"
		args[i] = cols[name]
	}

	query := fmt.Sprintf("INSERT INTO %s(%s) VALUES(%s)",
		table, strings.Join(names, ", "), strings.Join(placeholders, ", "))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, wrapStorageError("insert", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrapStorageError("insert", table, err)
	}
	return id, nil
}

// Update builds a parameterized UPDATE with an AND-joined WHERE clause.
// It does not report how many rows were affected.
func (s *Store) Update(ctx context.Context, table Table, cols, where map[string]any) error {
	if err := checkIdentifiers(table, append(keysOf(cols), keysOf(where)...)); err != nil {
		return err
	}

	setNames := keysOf(cols)
	sort.Strings(setNames)
	whereNames := keysOf(where)
	sort.Strings(whereNames)

	sets := make([]string, len(setNames))
	conds := make([]string, len(whereNames))
	args := make([]any, 0, len(setNames)+len(whereNames))
	for i, name := range setNames {
		sets[i] = name + " = ?"
		args = append(args, cols[name])
	}
	for i, name := range whereNames {
		conds[i] = name + " = ?"
		args = append(args, where[name])
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		table, strings.Join(sets, ", "), strings.Join(conds, " AND "))

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return wrapStorageError("update", table, err)
	}
	return nil
}

// Select builds a SELECT over the named columns with an optional raw
// trailing clause (WHERE / ORDER BY / LIMIT). The extra clause is NOT
// parameter-bound: any caller-controlled value spliced into it must be
// run through SanitizeTimestamp first.
func (s *Store) Select(ctx context.Context, table Table, cols []string, extra string) (*sql.Rows, error) {
	if err := checkIdentifiers(table, cols); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), table)
	if extra != "" {
		query += " " + extra
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapStorageError("select", table, err)
	}
	return rows, nil
}

// Delete builds a parameterized DELETE with an AND-joined WHERE clause
// and reports how many rows were removed.
func (s *Store) Delete(ctx context.Context, table Table, where map[string]any) (int64, error) {
	if err := checkIdentifiers(table, keysOf(where)); err != nil {
		return 0, err
	}

	names := keysOf(where)
	sort.Strings(names)

	conds := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		conds[i] = name + " = ?"
		args[i] = where[name]
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s", table, strings.Join(conds, " AND "))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, wrapStorageError("delete", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapStorageError("delete", table, err)
	}
	return n, nil
}

// SanitizeIdentifier strips every rune outside [A-Za-z0-9_]. It defends
// table and column names, which cannot be bound as query parameters.
func SanitizeIdentifier(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return -1
	}, s)
}

// SanitizeTimestamp strips every rune outside [A-Za-z0-9 \-:+.], the
// minimum charset of an ISO-8601 timestamp. It must be applied to any
// user-supplied string destined for a raw Select clause. This is a
// narrow allow-list, not general escaping.
func SanitizeTimestamp(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == ':', r == '+', r == '.':
			return r
		}
		return -1
	}, s)
}

// checkIdentifiers rejects unknown tables and columns. An identifier
// that changes under SanitizeIdentifier is hostile by definition and is
// rejected before the allow-list lookup.
func checkIdentifiers(table Table, cols []string) error {
	if SanitizeIdentifier(string(table)) != string(table) {
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	allowed, ok := tableColumns[table]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	for _, col := range cols {
		if col == "*" {
			continue
		}
		if SanitizeIdentifier(col) != col || !allowed[col] {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, col)
		}
	}
	return nil
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
