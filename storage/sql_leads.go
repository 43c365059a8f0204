package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"leadfinder/models"
)

const leadInsertColumns = "source, business_type, sub_category, name, website, reviews, rating, latest_review, address, phone_number, notes, email"

// leadUpdateSet refreshes every column of an existing phone number.
const leadUpdateSet = `
	source        = excluded.source,
	business_type = excluded.business_type,
	sub_category  = excluded.sub_category,
	name          = excluded.name,
	website       = excluded.website,
	reviews       = excluded.reviews,
	rating        = excluded.rating,
	latest_review = excluded.latest_review,
	address       = excluded.address,
	notes         = excluded.notes,
	email         = excluded.email,
	updated_at    = CURRENT_TIMESTAMP`

const batchSize = 50

// placeholderFunc renders the n-th (1-based) bind parameter of a dialect.
type placeholderFunc func(n int) string

func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func questionPlaceholder(int) string { return "?" }

// upsertLeads inserts leads in batches, updating rows whose phone number
// already exists.
func upsertLeads(ctx context.Context, db *sql.DB, ph placeholderFunc, leads []*models.Lead) error {
	for i := 0; i < len(leads); i += batchSize {
		end := min(i+batchSize, len(leads))
		if err := upsertBatch(ctx, db, ph, leads[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func upsertBatch(ctx context.Context, db *sql.DB, ph placeholderFunc, batch []*models.Lead) error {
	const cols = 12
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*cols)

	for idx, l := range batch {
		holders := make([]string, cols)
		for c := range holders {
			holders[c] = ph(idx*cols + c + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(holders, ",")+")")
		valueArgs = append(valueArgs,
			l.Source, l.BusinessType, l.SubCategory, l.Name, l.Website, l.Reviews,
			l.Rating, l.LatestReview, l.Address, l.Phone, l.Notes, l.Email)
	}

	query := fmt.Sprintf(`
		INSERT INTO leads (%s)
		VALUES %s
		ON CONFLICT (phone_number) DO UPDATE SET %s
	`, leadInsertColumns, strings.Join(valueStrings, ","), leadUpdateSet)

	_, err := db.ExecContext(ctx, query, valueArgs...)
	return err
}

// insertQueries records generated queries, ignoring ones already stored.
func insertQueries(ctx context.Context, db *sql.DB, ph placeholderFunc, queries []models.QueryRequest) error {
	for i := 0; i < len(queries); i += batchSize {
		end := min(i+batchSize, len(queries))
		valueStrings := make([]string, 0, end-i)
		valueArgs := make([]any, 0, (end-i)*3)
		for idx, q := range queries[i:end] {
			base := idx * 3
			valueStrings = append(valueStrings, fmt.Sprintf("(%s,%s,%s)", ph(base+1), ph(base+2), ph(base+3)))
			valueArgs = append(valueArgs, q.Category, q.Location, q.Text())
		}

		query := fmt.Sprintf(`
			INSERT INTO search_queries (category, location, query)
			VALUES %s
			ON CONFLICT (query) DO NOTHING
		`, strings.Join(valueStrings, ","))
		if _, err := db.ExecContext(ctx, query, valueArgs...); err != nil {
			return err
		}
	}
	return nil
}

func countQueries(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM search_queries").Scan(&n)
	return n, err
}

func fetchLeads(ctx context.Context, db *sql.DB) ([]*models.Lead, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+leadInsertColumns+`
		FROM leads
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		l := &models.Lead{}
		if err := rows.Scan(
			&l.Source, &l.BusinessType, &l.SubCategory, &l.Name, &l.Website, &l.Reviews,
			&l.Rating, &l.LatestReview, &l.Address, &l.Phone, &l.Notes, &l.Email,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}
