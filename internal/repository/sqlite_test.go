package repository

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"neighbor-aid-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func decodeNotes(t *testing.T, raw [][]byte) []note {
	t.Helper()
	out := make([]note, 0, len(raw))
	for _, body := range raw {
		var n note
		require.NoError(t, json.Unmarshal(body, &n))
		out = append(out, n)
	}
	return out
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()

	store, err := NewSQLiteStore(ctx, ":memory:")
	require.NoError(t, err)
	defer store.Close(ctx)

	require.NoError(t, store.Put(ctx, CollectionNotifications, "n1", note{ID: "n1", Text: "primeira"}))
	require.NoError(t, store.Put(ctx, CollectionNotifications, "n2", note{ID: "n2", Text: "segunda"}))
	require.NoError(t, store.Put(ctx, CollectionEvents, "n1", note{ID: "n1", Text: "outra coleção"}))

	// updating keeps the first-write position
	require.NoError(t, store.Put(ctx, CollectionNotifications, "n1", note{ID: "n1", Text: "lida"}))

	raw, err := store.List(ctx, CollectionNotifications)
	require.NoError(t, err)
	assert.Equal(t, []note{{ID: "n1", Text: "lida"}, {ID: "n2", Text: "segunda"}}, decodeNotes(t, raw))

	raw, err = store.List(ctx, CollectionUsers)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "neighbors.db")

	docs, err := Open(ctx, config.DatabaseConfig{Driver: "sqlite", Path: path})
	require.NoError(t, err)
	require.NoError(t, docs.Put(ctx, CollectionRequests, "req-1", note{ID: "req-1", Text: "furadeira"}))
	require.NoError(t, docs.Close(ctx))

	docs, err = Open(ctx, config.DatabaseConfig{Driver: "sqlite", Path: path})
	require.NoError(t, err)
	defer docs.Close(ctx)

	raw, err := docs.List(ctx, CollectionRequests)
	require.NoError(t, err)
	assert.Equal(t, []note{{ID: "req-1", Text: "furadeira"}}, decodeNotes(t, raw))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	docs, err := Open(ctx, config.DatabaseConfig{Driver: "memory"})
	assert.NoError(t, err)
	assert.Nil(t, docs)

	_, err = Open(ctx, config.DatabaseConfig{Driver: "cassandra"})
	assert.Error(t, err)
}

func TestMongoDBName(t *testing.T) {
	tests := map[string]string{
		"mongodb://localhost:27017/vizinhos":          "vizinhos",
		"mongodb://localhost:27017":                   "neighbors",
		"mongodb://localhost:27017/":                  "neighbors",
		"mongodb://user:pw@db.local/bairro?ssl=false": "bairro",
	}
	for uri, want := range tests {
		assert.Equal(t, want, mongoDBName(uri), uri)
	}
}
