package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS documents (
		seq        BIGSERIAL,
		collection TEXT        NOT NULL,
		id         TEXT        NOT NULL,
		body       JSONB       NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (collection, id)
	)
`

// PostgresStore keeps documents in a JSONB table
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL and creates the documents table
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Put inserts or replaces a document
func (r *PostgresStore) Put(ctx context.Context, collection, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	query := `
		INSERT INTO documents (collection, id, body)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id)
		DO UPDATE SET body = EXCLUDED.body, updated_at = now()
	`
	if _, err := r.db.Exec(ctx, query, collection, id, body); err != nil {
		return fmt.Errorf("failed to store %s/%s: %w", collection, id, err)
	}
	return nil
}

// List retrieves every document of a collection in first-write order
func (r *PostgresStore) List(ctx context.Context, collection string) ([][]byte, error) {
	query := `SELECT body FROM documents WHERE collection = $1 ORDER BY seq`
	rows, err := r.db.Query(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan %s document: %w", collection, err)
		}
		docs = append(docs, body)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", collection, err)
	}

	return docs, nil
}

// Close releases the pool
func (r *PostgresStore) Close(context.Context) error {
	r.db.Close()
	return nil
}
