package repository

import (
	"context"
	"fmt"

	"neighbor-aid-backend/internal/config"
)

// Collections persisted by the service
const (
	CollectionUsers         = "users"
	CollectionRequests      = "requests"
	CollectionMessages      = "messages"
	CollectionEvents        = "events"
	CollectionNotifications = "notifications"
)

// DocumentStore persists community documents grouped by collection.
// List returns the raw JSON documents of a collection in first-write order.
type DocumentStore interface {
	Put(ctx context.Context, collection, id string, doc any) error
	List(ctx context.Context, collection string) ([][]byte, error)
	Close(ctx context.Context) error
}

// Open connects the document store selected by the configuration.
// The memory driver has no backing store and returns nil.
func Open(ctx context.Context, cfg config.DatabaseConfig) (DocumentStore, error) {
	switch cfg.Driver {
	case "memory", "":
		return nil, nil
	case "postgres":
		store, err := NewPostgresStore(ctx, cfg.DSN())
		if err != nil {
			return nil, err
		}
		return store, nil
	case "mongo":
		store, err := NewMongoStore(ctx, cfg.URI)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "sqlite":
		store, err := NewSQLiteStore(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
