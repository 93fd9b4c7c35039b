package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"neighbor-aid-backend/internal/models"
	"neighbor-aid-backend/internal/repository"
	"neighbor-aid-backend/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	notificationCreatedAt = "agora"
	pushTitle             = "Meu Vizinho"
	pushTimeout           = 10 * time.Second
)

// NotificationService owns the per-user notification feed
type NotificationService struct {
	ledger *store.Ledger[models.Notification]
	users  *store.Users
	docs   repository.DocumentStore
	hub    *WSHub
	pusher Pusher
	wg     sync.WaitGroup
}

// NewNotificationService creates a notification service. pusher may be nil.
func NewNotificationService(
	ledger *store.Ledger[models.Notification],
	users *store.Users,
	docs repository.DocumentStore,
	hub *WSHub,
	pusher Pusher,
) *NotificationService {
	return &NotificationService{
		ledger: ledger,
		users:  users,
		docs:   docs,
		hub:    hub,
		pusher: pusher,
	}
}

// NotificationFeed is a user's notifications, newest first
type NotificationFeed struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

// newNotification builds an unread notice for the user
func newNotification(userID string, kind models.NotificationType, text string) models.Notification {
	return models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      kind,
		Text:      text,
		CreatedAt: notificationCreatedAt,
	}
}

// Notify emits a single notification
func (s *NotificationService) Notify(ctx context.Context, userID string, kind models.NotificationType, text string) models.Notification {
	notification := newNotification(userID, kind, text)
	s.NotifyAll(ctx, notification)
	return notification
}

// NotifyAll puts the notifications on top of the feed in the given order and delivers them
func (s *NotificationService) NotifyAll(ctx context.Context, notifications ...models.Notification) {
	if len(notifications) == 0 {
		return
	}

	s.ledger.Prepend(notifications...)

	// persisted oldest first so a reload rebuilds the same order
	for i := len(notifications) - 1; i >= 0; i-- {
		n := notifications[i]
		writeThrough(ctx, s.docs, repository.CollectionNotifications, n.ID, n)
	}

	for _, n := range notifications {
		s.deliver(n)
	}
}

// deliver pushes the notice over the live connection, or to the device when the user is offline
func (s *NotificationService) deliver(n models.Notification) {
	if s.hub != nil && s.hub.IsOnline(n.UserID) {
		msg := WSMessage{Type: WSTypeNotification, Data: n}
		if err := s.hub.SendToUser(n.UserID, msg); err == nil {
			return
		}
	}

	if s.pusher == nil {
		return
	}
	user, ok := s.users.Get(n.UserID)
	if !ok || user.PushToken == nil {
		return
	}

	deviceToken := *user.PushToken
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()

		if err := s.pusher.Push(ctx, deviceToken, pushTitle, n.Text); err != nil {
			log.Warn().
				Err(err).
				Str("user_id", n.UserID).
				Str("notification_id", n.ID).
				Msg("Failed to push notification")
		}
	}()
}

// Wait blocks until in-flight pushes finish
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

// List returns the user's notifications with the unread count
func (s *NotificationService) List(userID string) NotificationFeed {
	notifications := s.ledger.Filter(func(n models.Notification) bool {
		return n.UserID == userID
	})

	unread := 0
	for _, n := range notifications {
		if !n.IsRead {
			unread++
		}
	}

	return NotificationFeed{Notifications: notifications, UnreadCount: unread}
}

// MarkRead marks one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) (models.Notification, error) {
	updated, err := s.ledger.Update(notificationID, func(n *models.Notification) error {
		if n.UserID != userID {
			return models.ErrNotificationNotFound
		}
		n.IsRead = true
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return models.Notification{}, models.ErrNotificationNotFound
	}
	if err != nil {
		return models.Notification{}, err
	}

	writeThrough(ctx, s.docs, repository.CollectionNotifications, updated.ID, updated)
	return updated, nil
}

// MarkAllRead marks every unread notification of the user as read and returns how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) int {
	changed := s.ledger.UpdateWhere(
		func(n models.Notification) bool { return n.UserID == userID && !n.IsRead },
		func(n *models.Notification) bool {
			n.IsRead = true
			return true
		},
	)

	for _, n := range changed {
		writeThrough(ctx, s.docs, repository.CollectionNotifications, n.ID, n)
	}
	return len(changed)
}
