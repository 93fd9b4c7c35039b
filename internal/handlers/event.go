package handlers

import (
	"net/http"

	"neighbor-aid-backend/internal/middleware"
	"neighbor-aid-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// EventHandler handles community events
type EventHandler struct {
	eventService *services.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// List handles GET /api/v1/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"events": h.eventService.List(userID),
	})
}

// Create handles POST /api/v1/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.CreateEventInput
	if !decodeAndValidate(w, r, createEventSchema, &req) {
		return
	}

	event, err := h.eventService.Create(ctx, userID, req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create event")
		return
	}

	respondJSON(w, http.StatusCreated, event)
}

// ToggleInterest handles POST /api/v1/events/{id}/interest
func (h *EventHandler) ToggleInterest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	view, err := h.eventService.ToggleInterest(ctx, userID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to toggle interest")
		return
	}

	respondJSON(w, http.StatusOK, view)
}
