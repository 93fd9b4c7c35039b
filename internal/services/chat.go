package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"neighbor-aid-backend/internal/models"
	"neighbor-aid-backend/internal/repository"
	"neighbor-aid-backend/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const chatTimeLayout = "15:04"

// ChatService owns the message log
type ChatService struct {
	community     *store.Community
	docs          repository.DocumentStore
	notifications *NotificationService
	hub           *WSHub
	now           func() time.Time
}

// NewChatService creates a chat service
func NewChatService(
	community *store.Community,
	docs repository.DocumentStore,
	notifications *NotificationService,
	hub *WSHub,
) *ChatService {
	return &ChatService{
		community:     community,
		docs:          docs,
		notifications: notifications,
		hub:           hub,
		now:           time.Now,
	}
}

// SendMessage appends a message to the conversation about a request and notifies the partner
func (s *ChatService) SendMessage(ctx context.Context, senderID, partnerID, requestID, text string) (models.ChatMessage, error) {
	if senderID == "" {
		return models.ChatMessage{}, models.ErrNoActiveUser
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, models.ErrEmptyMessage
	}

	sender, ok := s.community.Users.Get(senderID)
	if !ok {
		return models.ChatMessage{}, models.ErrUserNotFound
	}
	if _, ok := s.community.Users.Get(partnerID); !ok {
		return models.ChatMessage{}, models.ErrUserNotFound
	}
	request, ok := s.community.Requests.Get(requestID)
	if !ok {
		return models.ChatMessage{}, models.ErrRequestNotFound
	}

	now := s.now()
	message := models.ChatMessage{
		ID:          uuid.New().String(),
		UserID:      senderID,
		RecipientID: partnerID,
		RequestID:   requestID,
		Text:        text,
		Timestamp:   now.Format(chatTimeLayout),
		SentAt:      now,
	}

	s.community.Messages.Append(message)
	writeThrough(ctx, s.docs, repository.CollectionMessages, message.ID, message)

	if s.hub != nil && s.hub.IsOnline(partnerID) {
		if err := s.hub.SendToUser(partnerID, WSMessage{Type: WSTypeChatMessage, Data: message}); err != nil {
			log.Debug().Err(err).Str("user_id", partnerID).Msg("Failed to deliver chat message")
		}
	}

	s.notifications.Notify(ctx, partnerID, models.NotificationNewMessage,
		fmt.Sprintf("%s te enviou uma mensagem sobre '%s'.", sender.Name, request.ItemName))

	return message, nil
}

// Thread lists the messages exchanged by two users about a request, oldest first
func (s *ChatService) Thread(viewerID, partnerID, requestID string) []models.ChatMessage {
	return s.community.Messages.Filter(func(m models.ChatMessage) bool {
		return m.Between(viewerID, partnerID, requestID)
	})
}
