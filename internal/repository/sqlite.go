package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS documents (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		collection TEXT NOT NULL,
		id         TEXT NOT NULL,
		body       TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (collection, id)
	)
`

// SQLiteStore keeps documents in an embedded SQLite file
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens the database file and creates the documents table
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// a single connection keeps in-memory databases shared across calls
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Put inserts or replaces a document, keeping its first-write sequence
func (r *SQLiteStore) Put(ctx context.Context, collection, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	query := `
		INSERT INTO documents (collection, id, body)
		VALUES (?, ?, ?)
		ON CONFLICT (collection, id)
		DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.ExecContext(ctx, query, collection, id, string(body)); err != nil {
		return fmt.Errorf("storing %s/%s: %w", collection, id, err)
	}
	return nil
}

// List retrieves every document of a collection in first-write order
func (r *SQLiteStore) List(ctx context.Context, collection string) ([][]byte, error) {
	var bodies []string
	err := r.db.SelectContext(ctx, &bodies, `SELECT body FROM documents WHERE collection = ? ORDER BY seq`, collection)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}

	docs := make([][]byte, 0, len(bodies))
	for _, body := range bodies {
		docs = append(docs, []byte(body))
	}
	return docs, nil
}

// Close closes the database
func (r *SQLiteStore) Close(context.Context) error {
	return r.db.Close()
}
