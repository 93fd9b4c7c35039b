package handlers

import (
	"net/http"

	"neighbor-aid-backend/internal/middleware"
	"neighbor-aid-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles accounts, sessions and profiles
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// SignInRequest represents the request body for signing in
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CompleteProfileRequest represents the onboarding form
type CompleteProfileRequest struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// PushTokenRequest carries an APNs device token
type PushTokenRequest struct {
	Token string `json:"token"`
}

// Register handles POST /api/v1/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if !decodeAndValidate(w, r, registerSchema, &req) {
		return
	}

	resp, err := h.userService.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create user")
		return
	}

	log.Info().
		Str("user_id", resp.User.ID).
		Str("invite_code", resp.User.InviteCode).
		Msg("User created")

	respondJSON(w, http.StatusCreated, resp)
}

// SignIn handles POST /api/v1/sessions
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if !decodeAndValidate(w, r, signInSchema, &req) {
		return
	}

	resp, err := h.userService.SignIn(req.Email, req.Password)
	if err != nil {
		respondServiceError(w, r, err, "Failed to sign in")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Me handles GET /api/v1/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.userService.GetUser(userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get profile")
		return
	}

	respondJSON(w, http.StatusOK, user.Public())
}

// UpdateMe handles PUT /api/v1/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req services.ProfileUpdate
	if !decodeAndValidate(w, r, profileSchema, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(ctx, userID, req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update profile")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// CompleteProfile handles POST /api/v1/me/complete
func (h *UserHandler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CompleteProfileRequest
	if !decodeAndValidate(w, r, completeProfileSchema, &req) {
		return
	}

	user, err := h.userService.CompleteProfile(ctx, userID, req.Name, req.AvatarURL)
	if err != nil {
		respondServiceError(w, r, err, "Failed to complete profile")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// UpdatePushToken handles PUT /api/v1/me/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req PushTokenRequest
	if !decodeAndValidate(w, r, pushTokenSchema, &req) {
		return
	}

	if err := h.userService.UpdatePushToken(ctx, userID, req.Token); err != nil {
		respondServiceError(w, r, err, "Failed to update push token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Invites handles GET /api/v1/me/invites
func (h *UserHandler) Invites(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	view, err := h.userService.Invites(userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get invites")
		return
	}

	respondJSON(w, http.StatusOK, view)
}
