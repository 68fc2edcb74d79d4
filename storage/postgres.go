package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mw_harvester/models"
)

// PostgresStore mirrors every export into a warehouse table.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	s := &PostgresStore{pool: pool, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS export_batches (
			id UUID PRIMARY KEY,
			exported_at TIMESTAMPTZ NOT NULL,
			records INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS listings (
			fingerprint TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			title TEXT,
			property_type TEXT,
			transaction_type TEXT,
			location TEXT,
			price TEXT,
			area_sqm TEXT,
			bedrooms TEXT,
			bathrooms TEXT,
			date_posted TEXT,
			description TEXT,
			url TEXT,
			batch_id UUID REFERENCES export_batches(id),
			first_seen_at TIMESTAMPTZ NOT NULL,
			last_seen_at TIMESTAMPTZ NOT NULL,
			times_seen INTEGER NOT NULL DEFAULT 1
		);`

	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const upsertListingSQL = `
	INSERT INTO listings (
		fingerprint, source, title, property_type, transaction_type, location,
		price, area_sqm, bedrooms, bathrooms, date_posted, description, url,
		batch_id, first_seen_at, last_seen_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
	ON CONFLICT (fingerprint) DO UPDATE SET
		url = EXCLUDED.url,
		description = COALESCE(NULLIF(EXCLUDED.description, ''), listings.description),
		batch_id = EXCLUDED.batch_id,
		last_seen_at = EXCLUDED.last_seen_at,
		times_seen = listings.times_seen + 1`

func listingArgs(l fingerprinted, batchID uuid.UUID, at time.Time) []any {
	r := l.Record
	return []any{
		l.Fingerprint, r.Source, r.Title, string(r.PropertyType), string(r.TransactionType), r.Location,
		r.Price, r.AreaSqm, r.Bedrooms, r.Bathrooms, r.DatePosted, r.Description, r.URL,
		batchID, at,
	}
}

// Write records one export batch and upserts its listings in a single
// round trip.
func (s *PostgresStore) Write(ctx context.Context, records []models.PropertyRecord) error {
	if len(records) == 0 {
		return ErrNothingToWrite
	}

	batchID := uuid.New()
	now := s.now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	listings := uniqueListings(records)
	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO export_batches (id, exported_at, records) VALUES ($1, $2, $3)`, batchID, now, len(listings))
	for _, l := range listings {
		batch.Queue(upsertListingSQL, listingArgs(l, batchID, now)...)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("export batch %s: %w", batchID, err)
	}
	return tx.Commit(ctx)
}
