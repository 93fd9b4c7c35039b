package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"neighbor-aid-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // mobile web client is served from other origins
	},
}

// WebSocketHandler streams notifications and chat messages to connected residents
type WebSocketHandler struct {
	hub      *services.WSHub
	resolver *services.SessionResolver
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub, resolver *services.SessionResolver) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		resolver: resolver,
	}
}

// HandleWebSocket handles GET /ws?token=
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// identity is resolved before the upgrade so rejected callers get a plain 401
	token := r.URL.Query().Get("token")
	if _, err := h.resolver.Identify(r.Context(), token); err != nil {
		respondError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	client := services.NewWSClient(conn)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := h.resolver.NewSession(ctx, token, func(previous, current string) {
		if previous != "" {
			h.hub.Unregister(previous, client)
		}
		// signed out with no fallback identity: stay connected but receive nothing
		if current != "" {
			h.hub.Register(current, client)
		}
		h.send(client, services.WSMessage{Type: services.WSTypeSession, UserID: current})
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to start WebSocket session")
		return
	}
	defer func() {
		if userID := session.UserID(); userID != "" {
			h.hub.Unregister(userID, client)
		}
	}()

	authChanges := make(chan string)
	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Subscribe(ctx, authChanges)
	}()
	defer func() {
		close(authChanges)
		<-done
	}()

	log.Info().Str("user_id", session.UserID()).Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", session.UserID()).Msg("WebSocket error")
			}
			break
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Error().Err(err).Str("user_id", session.UserID()).Msg("Failed to parse WebSocket message")
			h.sendError(client, "Invalid message format")
			continue
		}

		switch msg.Type {
		case services.WSTypeAuth:
			if msg.Token == "" {
				h.sendError(client, "token required")
				continue
			}
			authChanges <- msg.Token
		case services.WSTypeSignOut:
			authChanges <- ""
		default:
			h.sendError(client, "Unknown message type")
		}
	}
}

func (h *WebSocketHandler) send(client *services.WSClient, msg services.WSMessage) {
	if err := client.Send(msg); err != nil {
		log.Debug().Err(err).Str("type", msg.Type).Msg("Failed to write WebSocket message")
	}
}

// sendError sends an error message to the WebSocket connection
func (h *WebSocketHandler) sendError(client *services.WSClient, message string) {
	h.send(client, services.WSMessage{
		Type:    services.WSTypeError,
		Message: message,
	})
}
