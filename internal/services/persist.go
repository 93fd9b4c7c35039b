package services

import (
	"context"

	"neighbor-aid-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// writeThrough saves a document to the backing store. The in-memory ledgers
// stay authoritative, so a failed write is logged and otherwise ignored.
func writeThrough(ctx context.Context, docs repository.DocumentStore, collection, id string, doc any) {
	if docs == nil {
		return
	}

	if err := docs.Put(context.WithoutCancel(ctx), collection, id, doc); err != nil {
		log.Error().
			Err(err).
			Str("collection", collection).
			Str("id", id).
			Msg("Failed to persist document")
	}
}
