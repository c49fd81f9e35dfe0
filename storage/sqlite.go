// SQLite-backed outline history.
//
// Information Hiding:
// - SQLite connection management hidden behind interface
// - Schema and migration details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SqliteHistory implements HistoryStore using SQLite.
type SqliteHistory struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteHistory, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	return newSqliteHistory(db)
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteHistory, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	return newSqliteHistory(db)
}

func newSqliteHistory(db *sql.DB) (*SqliteHistory, error) {
	h := &SqliteHistory{db: db}
	if err := h.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return h, nil
}

// Close closes the database connection.
func (s *SqliteHistory) Close() error {
	return s.db.Close()
}

func (s *SqliteHistory) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS outlines (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			input TEXT NOT NULL,
			provider TEXT,
			model TEXT,
			title TEXT NOT NULL,
			is_error INTEGER NOT NULL DEFAULT 0,
			outline TEXT NOT NULL,
			raw TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_outlines_created
		ON outlines(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Save stores a record, replacing any record with the same id.
func (s *SqliteHistory) Save(ctx context.Context, rec Record) (Record, error) {
	rec = stamp(rec)

	payload, err := json.Marshal(rec.Outline)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode outline: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO outlines
		(id, created_at, input, provider, model, title, is_error, outline, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.CreatedAt.UnixNano(),
		rec.Input,
		nullable(rec.Provider),
		nullable(rec.Model),
		rec.Outline.Title,
		rec.Outline.IsError(),
		string(payload),
		nullable(rec.Raw),
	)
	if err != nil {
		return Record{}, fmt.Errorf("failed to store outline: %w", err)
	}
	return rec, nil
}

// Get returns a record by id.
func (s *SqliteHistory) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, input, provider, model, outline, raw
		FROM outlines WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// List returns records newest first.
func (s *SqliteHistory) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, input, provider, model, outline, raw
		FROM outlines
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outlines: %w", err)
	}
	defer rows.Close()

	records := []Record{} // Start with empty slice, not nil
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outlines: %w", err)
	}
	return records, nil
}

// Resolve expands an id prefix.
func (s *SqliteHistory) Resolve(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM outlines
		WHERE substr(id, 1, ?) = ?
		ORDER BY id
		LIMIT 2`, len(prefix), prefix)
	if err != nil {
		return "", fmt.Errorf("failed to query outline ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("failed to scan outline id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating outline ids: %w", err)
	}
	return pickMatch(prefix, ids)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var created int64
	var provider, model, raw sql.NullString
	var payload string

	err := row.Scan(&rec.ID, &created, &rec.Input, &provider, &model, &payload, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, err
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to scan outline: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &rec.Outline); err != nil {
		return Record{}, fmt.Errorf("invalid outline %s in database: %w", rec.ID, err)
	}
	rec.CreatedAt = time.Unix(0, created).UTC()
	rec.Provider = provider.String
	rec.Model = model.String
	rec.Raw = raw.String
	return rec, nil
}

// nullable converts empty strings to NULL for optional columns.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// Verify SqliteHistory implements HistoryStore
var _ HistoryStore = (*SqliteHistory)(nil)
