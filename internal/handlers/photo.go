package handlers

import (
	"context"
	"net/http"

	"neighbor-aid-backend/internal/middleware"
	"neighbor-aid-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// Presigner hands out upload URLs
type Presigner interface {
	GetPreSignedURL(ctx context.Context, userID, kind, filename, contentType string) (*services.UploadResponse, error)
}

// PhotoHandler handles photo upload URLs
type PhotoHandler struct {
	photoService Presigner
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService Presigner) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

// UploadPhoto handles POST /api/v1/uploads
func (h *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.UploadRequest
	if !decodeAndValidate(w, r, uploadSchema, &req) {
		return
	}

	if req.ContentType == "" {
		req.ContentType = "image/jpeg" // Default
	}

	response, err := h.photoService.GetPreSignedURL(ctx, userID, req.Kind, req.Filename, req.ContentType)
	if err != nil {
		respondServiceError(w, r, err, "Failed to generate pre-signed URL")
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("kind", req.Kind).
		Str("filename", req.Filename).
		Msg("Pre-signed URL generated")

	respondJSON(w, http.StatusOK, response)
}
