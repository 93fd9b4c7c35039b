package handlers

import (
	"net/http"

	"neighbor-aid-backend/internal/middleware"
	"neighbor-aid-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// ChatHandler handles handoff conversations
type ChatHandler struct {
	chatService *services.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// SendMessageRequest represents the request body for a chat message
type SendMessageRequest struct {
	Text string `json:"text"`
}

// Thread handles GET /api/v1/chats/{partnerId}?request=
func (h *ChatHandler) Thread(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	requestID := r.URL.Query().Get("request")
	if requestID == "" {
		respondError(w, "request is required", http.StatusBadRequest)
		return
	}

	messages := h.chatService.Thread(userID, chi.URLParam(r, "partnerId"), requestID)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
	})
}

// Send handles POST /api/v1/chats/{partnerId}?request=
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	requestID := r.URL.Query().Get("request")
	if requestID == "" {
		respondError(w, "request is required", http.StatusBadRequest)
		return
	}

	var req SendMessageRequest
	if !decodeAndValidate(w, r, messageSchema, &req) {
		return
	}

	message, err := h.chatService.SendMessage(ctx, userID, chi.URLParam(r, "partnerId"), requestID, req.Text)
	if err != nil {
		respondServiceError(w, r, err, "Failed to send message")
		return
	}

	respondJSON(w, http.StatusCreated, message)
}
