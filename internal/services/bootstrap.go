package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"neighbor-aid-backend/internal/models"
	"neighbor-aid-backend/internal/repository"
	"neighbor-aid-backend/internal/seed"
	"neighbor-aid-backend/internal/store"

	"github.com/rs/zerolog/log"
)

// Bootstrap fills the community from the document store. When nothing was stored
// yet and seedDemo is set, the demo neighborhood is loaded and persisted.
func Bootstrap(ctx context.Context, community *store.Community, docs repository.DocumentStore, seedDemo bool) error {
	data, err := loadSnapshot(ctx, docs)
	if err != nil {
		return err
	}

	if isEmpty(data) && seedDemo {
		data = seed.Demo()
		if err := persistSnapshot(ctx, docs, data); err != nil {
			return err
		}
		log.Info().Msg("Demo community seeded")
	}

	for _, user := range data.Users {
		community.Users.Put(user)
	}
	community.Requests.Replace(data.Requests)
	community.Messages.Replace(data.Messages)
	community.Events.Replace(data.Events)
	community.Notifications.Replace(data.Notifications)

	log.Info().
		Int("users", len(data.Users)).
		Int("requests", len(data.Requests)).
		Int("messages", len(data.Messages)).
		Int("events", len(data.Events)).
		Int("notifications", len(data.Notifications)).
		Msg("Community loaded")

	return nil
}

func isEmpty(data seed.Data) bool {
	return len(data.Users) == 0 &&
		len(data.Requests) == 0 &&
		len(data.Messages) == 0 &&
		len(data.Events) == 0 &&
		len(data.Notifications) == 0
}

// loadSnapshot reads every collection. Newest-first lists are stored oldest first
// and reversed here.
func loadSnapshot(ctx context.Context, docs repository.DocumentStore) (seed.Data, error) {
	var data seed.Data
	if docs == nil {
		return data, nil
	}

	var err error
	if data.Users, err = loadCollection[models.User](ctx, docs, repository.CollectionUsers); err != nil {
		return data, err
	}
	if data.Requests, err = loadCollection[models.ItemRequest](ctx, docs, repository.CollectionRequests); err != nil {
		return data, err
	}
	if data.Messages, err = loadCollection[models.ChatMessage](ctx, docs, repository.CollectionMessages); err != nil {
		return data, err
	}
	if data.Events, err = loadCollection[models.CommunityEvent](ctx, docs, repository.CollectionEvents); err != nil {
		return data, err
	}
	if data.Notifications, err = loadCollection[models.Notification](ctx, docs, repository.CollectionNotifications); err != nil {
		return data, err
	}

	slices.Reverse(data.Requests)
	slices.Reverse(data.Events)
	slices.Reverse(data.Notifications)
	return data, nil
}

func loadCollection[T any](ctx context.Context, docs repository.DocumentStore, collection string) ([]T, error) {
	raw, err := docs.List(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", collection, err)
	}

	items := make([]T, 0, len(raw))
	for _, body := range raw {
		var item T
		if err := json.Unmarshal(body, &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", collection, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// persistSnapshot writes the snapshot in the order loadSnapshot expects
func persistSnapshot(ctx context.Context, docs repository.DocumentStore, data seed.Data) error {
	if docs == nil {
		return nil
	}

	for _, user := range data.Users {
		if err := docs.Put(ctx, repository.CollectionUsers, user.ID, user); err != nil {
			return err
		}
	}
	for i := len(data.Requests) - 1; i >= 0; i-- {
		r := data.Requests[i]
		if err := docs.Put(ctx, repository.CollectionRequests, r.ID, r); err != nil {
			return err
		}
	}
	for _, m := range data.Messages {
		if err := docs.Put(ctx, repository.CollectionMessages, m.ID, m); err != nil {
			return err
		}
	}
	for i := len(data.Events) - 1; i >= 0; i-- {
		e := data.Events[i]
		if err := docs.Put(ctx, repository.CollectionEvents, e.ID, e); err != nil {
			return err
		}
	}
	for i := len(data.Notifications) - 1; i >= 0; i-- {
		n := data.Notifications[i]
		if err := docs.Put(ctx, repository.CollectionNotifications, n.ID, n); err != nil {
			return err
		}
	}
	return nil
}
