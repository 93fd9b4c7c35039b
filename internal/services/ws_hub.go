package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocket message types
const (
	WSTypeAuth         = "auth"
	WSTypeSignOut      = "sign_out"
	WSTypeSession      = "session"
	WSTypeNotification = "notification"
	WSTypeChatMessage  = "chat_message"
	WSTypeError        = "error"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp,omitempty"`
	Token     string      `json:"token,omitempty"`
	UserID    string      `json:"user_id,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// WSClient serializes writes to a single connection
type WSClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewWSClient wraps an upgraded connection
func NewWSClient(conn *websocket.Conn) *WSClient {
	return &WSClient{conn: conn}
}

// Send writes a message to the connection
func (c *WSClient) Send(message WSMessage) error {
	if message.Timestamp == 0 {
		message.Timestamp = time.Now().UnixMilli()
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Close closes the underlying connection
func (c *WSClient) Close() error {
	return c.conn.Close()
}

// WSHub manages WebSocket connections
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*WSClient
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*WSClient),
	}
}

// Register registers a connection for a user, closing the user's previous one
func (h *WSHub) Register(userID string, client *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, exists := h.connections[userID]; exists && existing != client {
		existing.Close()
	}

	h.connections[userID] = client

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes the user's connection if it is still the registered one
func (h *WSHub) Unregister(userID string, client *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, exists := h.connections[userID]; exists && current == client {
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	client, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	if err := client.Send(message); err != nil {
		h.Unregister(userID, client)
		client.Close()
		return err
	}

	return nil
}

// IsOnline checks if a user is online
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[userID]
	return exists
}

// Close closes every registered connection
func (h *WSHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, client := range h.connections {
		client.Close()
		delete(h.connections, userID)
	}
}
