package handlers

import (
	"net/http"
	"strconv"

	"neighbor-aid-backend/internal/middleware"
	"neighbor-aid-backend/internal/models"
	"neighbor-aid-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// RequestHandler handles the request ledger endpoints
type RequestHandler struct {
	requestService *services.RequestService
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
	}
}

// StatusRequest represents the request body for a status update
type StatusRequest struct {
	Status models.RequestStatus `json:"status"`
}

// Feed handles GET /api/v1/requests
func (h *RequestHandler) Feed(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	query := r.URL.Query()

	filter := services.FeedFilter{
		Category: query.Get("category"),
		Distance: query.Get("distance"),
	}
	if verified := query.Get("verified"); verified != "" {
		onlyVerified, err := strconv.ParseBool(verified)
		if err != nil {
			respondError(w, "verified must be true or false", http.StatusBadRequest)
			return
		}
		filter.OnlyVerified = onlyVerified
	}

	entries, err := h.requestService.Feed(userID, filter)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get feed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"requests": entries,
		"total":    len(entries),
	})
}

// Create handles POST /api/v1/requests
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.CreateRequestInput
	if !decodeAndValidate(w, r, createRequestSchema, &req) {
		return
	}

	request, err := h.requestService.Create(ctx, userID, req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create request")
		return
	}

	respondJSON(w, http.StatusCreated, request)
}

// Mine handles GET /api/v1/requests/mine
func (h *RequestHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	partitions, err := h.requestService.Partitions(userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get requests")
		return
	}

	respondJSON(w, http.StatusOK, partitions)
}

// OfferHelp handles POST /api/v1/requests/{id}/offers
func (h *RequestHandler) OfferHelp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	chat, err := h.requestService.OfferHelp(ctx, userID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to offer help")
		return
	}

	respondJSON(w, http.StatusOK, chat)
}

// UpdateStatus handles PUT /api/v1/requests/{id}/status
func (h *RequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req StatusRequest
	if !decodeAndValidate(w, r, statusSchema, &req) {
		return
	}

	change, err := h.requestService.UpdateStatus(ctx, userID, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update request status")
		return
	}

	respondJSON(w, http.StatusOK, change)
}

// ReportNonReturn handles POST /api/v1/requests/{id}/report-non-return
func (h *RequestHandler) ReportNonReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	message, err := h.requestService.ReportNonReturn(ctx, userID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to report non-return")
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: message})
}

// Denounce handles POST /api/v1/requests/{id}/denounce
func (h *RequestHandler) Denounce(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	message, err := h.requestService.Denounce(userID, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to denounce request")
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: message})
}

// Dismiss handles POST /api/v1/requests/{id}/dismiss
func (h *RequestHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.requestService.Dismiss(userID, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err, "Failed to dismiss request")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
