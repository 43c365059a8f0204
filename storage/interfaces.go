package storage

import (
	"context"

	"leadfinder/models"
)

// LeadWriter is the interface any file output must satisfy.
type LeadWriter interface {
	Write(leads []*models.Lead) error
	Close() error
}

// LeadStore is the interface for database backends keeping leads across
// runs. Leads are keyed by phone number.
type LeadStore interface {
	SaveLeads(ctx context.Context, leads []*models.Lead) error
	SaveQueries(ctx context.Context, queries []models.QueryRequest) error
	CountQueries(ctx context.Context) (int, error)
	FetchAll(ctx context.Context) ([]*models.Lead, error)
	Close() error
}
