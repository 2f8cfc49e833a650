package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink/internal/shortener"
)

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed link store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Insert relies on the row lock taken by ON CONFLICT, so concurrent inserts of one code
// serialize and only the first sees an expired (or missing) holder.
func (p *PostgresStore) Insert(ctx context.Context, entry *shortener.Entry, now time.Time) error {
	query := `
		INSERT INTO short_links (code, url, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE
		SET url = EXCLUDED.url,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at
		WHERE short_links.expires_at IS NOT NULL AND short_links.expires_at < $5
	`

	tag, err := p.pool.Exec(ctx, query,
		string(entry.Code),
		entry.URL,
		entry.CreatedAt,
		entry.ExpiresAt,
		now,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrShortcodeInUse
	}

	return nil
}

func (p *PostgresStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Entry, error) {
	query := `
		SELECT code, url, created_at, expires_at
		FROM short_links
		WHERE code = $1
	`

	var entry shortener.Entry

	err := p.pool.QueryRow(ctx, query, string(code)).Scan(
		&entry.Code,
		&entry.URL,
		&entry.CreatedAt,
		&entry.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return &entry, nil
}

func (p *PostgresStore) EvictExpired(ctx context.Context, code shortener.Code, now time.Time) error {
	query := `
		DELETE FROM short_links
		WHERE code = $1 AND expires_at IS NOT NULL AND expires_at < $2
	`

	_, err := p.pool.Exec(ctx, query, string(code), now)

	return err
}

func (p *PostgresStore) Sweep(ctx context.Context, now time.Time) ([]shortener.Code, error) {
	query := `
		DELETE FROM short_links
		WHERE expires_at IS NOT NULL AND expires_at < $1
		RETURNING code
	`

	rows, err := p.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[shortener.Code])
}

func (p *PostgresStore) Stats(ctx context.Context, now time.Time) (shortener.Stats, error) {
	query := `
		SELECT count(*),
		       count(*) FILTER (WHERE expires_at IS NULL OR expires_at >= $1)
		FROM short_links
	`

	var stats shortener.Stats

	err := p.pool.QueryRow(ctx, query, now).Scan(&stats.Total, &stats.Active)

	return stats, err
}

// Compile-time check.
var _ shortener.Repository = (*PostgresStore)(nil)
