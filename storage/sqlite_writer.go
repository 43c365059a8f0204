package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"leadfinder/models"
)

// SQLiteWriter persists leads and generated queries to a local SQLite file.
type SQLiteWriter struct {
	db *sql.DB
}

// NewSQLiteWriter opens (or creates) the database at path and runs schema
// migrations. ":memory:" opens a private in-memory database.
func NewSQLiteWriter(ctx context.Context, path string) (*SQLiteWriter, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One connection: each new connection to ":memory:" is a fresh database.
	db.SetMaxOpenConns(1)

	sw := &SQLiteWriter{db: db}
	if err := sw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return sw, nil
}

func (sw *SQLiteWriter) migrate(ctx context.Context) error {
	_, err := sw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS leads (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			source        TEXT    NOT NULL DEFAULT '',
			business_type TEXT    NOT NULL DEFAULT '',
			sub_category  TEXT    NOT NULL DEFAULT '',
			name          TEXT    NOT NULL DEFAULT '',
			website       TEXT    NOT NULL DEFAULT '',
			reviews       INTEGER NOT NULL DEFAULT 0,
			rating        TEXT    NOT NULL DEFAULT '',
			latest_review TEXT    NOT NULL DEFAULT '',
			address       TEXT    NOT NULL DEFAULT '',
			phone_number  TEXT    UNIQUE NOT NULL,
			notes         TEXT    NOT NULL DEFAULT '',
			email         TEXT    NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_leads_business_type ON leads(business_type);
		CREATE INDEX IF NOT EXISTS idx_leads_source        ON leads(source);

		CREATE TABLE IF NOT EXISTS search_queries (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			category   TEXT NOT NULL,
			location   TEXT NOT NULL,
			query      TEXT UNIQUE NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

// SaveLeads upserts leads by phone number.
func (sw *SQLiteWriter) SaveLeads(ctx context.Context, leads []*models.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	if err := upsertLeads(ctx, sw.db, questionPlaceholder, leads); err != nil {
		return fmt.Errorf("sqlite: save leads: %w", err)
	}
	return nil
}

// SaveQueries records the generated follow-up queries.
func (sw *SQLiteWriter) SaveQueries(ctx context.Context, queries []models.QueryRequest) error {
	if err := insertQueries(ctx, sw.db, questionPlaceholder, queries); err != nil {
		return fmt.Errorf("sqlite: save queries: %w", err)
	}
	return nil
}

// CountQueries returns the number of distinct stored queries.
func (sw *SQLiteWriter) CountQueries(ctx context.Context) (int, error) {
	n, err := countQueries(ctx, sw.db)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count queries: %w", err)
	}
	return n, nil
}

// FetchAll retrieves all stored leads in insertion order.
func (sw *SQLiteWriter) FetchAll(ctx context.Context) ([]*models.Lead, error) {
	leads, err := fetchLeads(ctx, sw.db)
	if err != nil {
		return nil, fmt.Errorf("sqlite: fetch all: %w", err)
	}
	return leads, nil
}

func (sw *SQLiteWriter) Close() error {
	return sw.db.Close()
}
