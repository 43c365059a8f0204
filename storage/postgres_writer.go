package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"leadfinder/models"
	"leadfinder/utils"
)

// PostgresWriter persists leads and generated queries to PostgreSQL.
type PostgresWriter struct {
	db    *sql.DB
	retry utils.RetryConfig
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string, retry utils.RetryConfig) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	pw := &PostgresWriter{db: db, retry: retry}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS leads (
			id            SERIAL PRIMARY KEY,
			source        TEXT        NOT NULL DEFAULT '',
			business_type TEXT        NOT NULL DEFAULT '',
			sub_category  TEXT        NOT NULL DEFAULT '',
			name          TEXT        NOT NULL DEFAULT '',
			website       TEXT        NOT NULL DEFAULT '',
			reviews       INTEGER     NOT NULL DEFAULT 0,
			rating        TEXT        NOT NULL DEFAULT '',
			latest_review TEXT        NOT NULL DEFAULT '',
			address       TEXT        NOT NULL DEFAULT '',
			phone_number  TEXT        UNIQUE NOT NULL,
			notes         TEXT        NOT NULL DEFAULT '',
			email         TEXT        NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_leads_business_type ON leads(business_type);
		CREATE INDEX IF NOT EXISTS idx_leads_source        ON leads(source);

		CREATE TABLE IF NOT EXISTS search_queries (
			id         SERIAL PRIMARY KEY,
			category   TEXT        NOT NULL,
			location   TEXT        NOT NULL,
			query      TEXT        UNIQUE NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

// SaveLeads upserts leads by phone number.
func (pw *PostgresWriter) SaveLeads(ctx context.Context, leads []*models.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	err := pw.retry.Do(ctx, "postgres save leads", func() error {
		return upsertLeads(ctx, pw.db, dollarPlaceholder, leads)
	})
	if err != nil {
		return fmt.Errorf("postgres: save leads: %w", err)
	}
	return nil
}

// SaveQueries records the generated follow-up queries.
func (pw *PostgresWriter) SaveQueries(ctx context.Context, queries []models.QueryRequest) error {
	if len(queries) == 0 {
		return nil
	}
	err := pw.retry.Do(ctx, "postgres save queries", func() error {
		return insertQueries(ctx, pw.db, dollarPlaceholder, queries)
	})
	if err != nil {
		return fmt.Errorf("postgres: save queries: %w", err)
	}
	return nil
}

// CountQueries returns the number of distinct stored queries.
func (pw *PostgresWriter) CountQueries(ctx context.Context) (int, error) {
	n, err := countQueries(ctx, pw.db)
	if err != nil {
		return 0, fmt.Errorf("postgres: count queries: %w", err)
	}
	return n, nil
}

// FetchAll retrieves all stored leads in insertion order.
func (pw *PostgresWriter) FetchAll(ctx context.Context) ([]*models.Lead, error) {
	leads, err := fetchLeads(ctx, pw.db)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	return leads, nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
