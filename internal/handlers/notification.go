package handlers

import (
	"net/http"

	"neighbor-aid-backend/internal/middleware"
	"neighbor-aid-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// NotificationHandler handles the notification feed
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	respondJSON(w, http.StatusOK, h.notificationService.List(userID))
}

// MarkRead handles POST /api/v1/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	notification, err := h.notificationService.MarkRead(ctx, userID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to mark notification as read")
		return
	}

	respondJSON(w, http.StatusOK, notification)
}

// MarkAllRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	updated := h.notificationService.MarkAllRead(ctx, userID)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"updated": updated,
	})
}
