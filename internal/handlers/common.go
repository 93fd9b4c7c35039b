package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"neighbor-aid-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse carries a confirmation shown to the resident
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON body with the given status
func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

var errorStatus = []struct {
	err    error
	status int
}{
	{models.ErrNoActiveUser, http.StatusUnauthorized},
	{models.ErrInvalidToken, http.StatusUnauthorized},
	{models.ErrInvalidCredentials, http.StatusUnauthorized},
	{models.ErrNotRequestOwner, http.StatusForbidden},
	{models.ErrUserNotFound, http.StatusNotFound},
	{models.ErrRequestNotFound, http.StatusNotFound},
	{models.ErrEventNotFound, http.StatusNotFound},
	{models.ErrNotificationNotFound, http.StatusNotFound},
	{models.ErrNoPendingReview, http.StatusNotFound},
	{models.ErrEmailTaken, http.StatusConflict},
	{models.ErrRequestClosed, http.StatusConflict},
	{models.ErrRequestLimitReached, http.StatusConflict},
	{models.ErrOwnRequest, http.StatusConflict},
	{models.ErrInviteCodeNotFound, http.StatusBadRequest},
	{models.ErrNameRequired, http.StatusBadRequest},
	{models.ErrInvalidStatus, http.StatusBadRequest},
	{models.ErrUnknownCategory, http.StatusBadRequest},
	{models.ErrInvalidUrgency, http.StatusBadRequest},
	{models.ErrInvalidDistance, http.StatusBadRequest},
	{models.ErrInvalidEventDate, http.StatusBadRequest},
	{models.ErrInvalidPhotoKind, http.StatusBadRequest},
	{models.ErrInvalidRating, http.StatusBadRequest},
	{models.ErrEmptyMessage, http.StatusBadRequest},
}

// respondServiceError maps a service error to its HTTP status. Unknown errors are
// logged and reported without detail.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			log.Debug().
				Err(err).
				Str("path", r.URL.Path).
				Msg(action)
			respondError(w, e.err.Error(), e.status)
			return
		}
	}

	log.Error().
		Err(err).
		Str("path", r.URL.Path).
		Msg(action)
	respondError(w, action, http.StatusInternalServerError)
}
