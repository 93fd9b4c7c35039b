package handlers

import (
	"net/http"

	"neighbor-aid-backend/internal/middleware"
	"neighbor-aid-backend/internal/models"
	"neighbor-aid-backend/internal/services"
)

// ReviewHandler handles lender reviews
type ReviewHandler struct {
	reputationService *services.ReputationService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reputationService *services.ReputationService) *ReviewHandler {
	return &ReviewHandler{
		reputationService: reputationService,
	}
}

// Pending handles GET /api/v1/reviews/pending
func (h *ReviewHandler) Pending(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": h.reputationService.PendingReviews(userID),
	})
}

// Submit handles POST /api/v1/reviews
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req models.Review
	if !decodeAndValidate(w, r, reviewSchema, &req) {
		return
	}

	result, err := h.reputationService.SubmitReview(ctx, userID, req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to submit review")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
