package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"neighbor-aid-backend/internal/config"
	"neighbor-aid-backend/internal/middleware"
	"neighbor-aid-backend/internal/models"
	"neighbor-aid-backend/internal/services"
	"neighbor-aid-backend/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	router        chi.Router
	users         *services.UserService
	resolver      *services.SessionResolver
	hub           *services.WSHub
	notifications *services.NotificationService
	reputation    *services.ReputationService
}

type fakePresigner struct{}

func (fakePresigner) GetPreSignedURL(_ context.Context, userID, kind, filename, contentType string) (*services.UploadResponse, error) {
	return &services.UploadResponse{
		UploadURL: "https://bucket.example.com/upload?" + contentType,
		PhotoURL:  "https://bucket.example.com/" + kind + "s/" + userID + "/" + filename,
		ExpiresIn: 300,
	}, nil
}

func newTestApp(t *testing.T, policy string) *testApp {
	t.Helper()

	cfg := config.Default()
	cfg.JWT.Secret = "test-secret"
	cfg.Community.NoSessionPolicy = policy

	community := store.NewCommunity()
	require.NoError(t, services.Bootstrap(context.Background(), community, nil, true))

	app := &testApp{hub: services.NewWSHub()}
	app.users = services.NewUserService(community.Users, nil, cfg.JWT)
	app.resolver = services.NewSessionResolver(app.users, cfg.Community)
	app.notifications = services.NewNotificationService(community.Notifications, community.Users, nil, app.hub, nil)
	app.reputation = services.NewReputationService(community.Users, community.Prompts, nil, app.notifications, services.DefaultBadgeRules, cfg.Community.PenaltyAmount)
	requests := services.NewRequestService(community, nil, app.notifications, app.reputation, cfg.Community)
	chat := services.NewChatService(community, nil, app.notifications, app.hub)
	events := services.NewEventService(community, nil, cfg.Community.DefaultEventPhoto)

	userHandler := NewUserHandler(app.users)
	requestHandler := NewRequestHandler(requests)
	reviewHandler := NewReviewHandler(app.reputation)
	chatHandler := NewChatHandler(chat)
	notificationHandler := NewNotificationHandler(app.notifications)
	eventHandler := NewEventHandler(events)
	photoHandler := NewPhotoHandler(fakePresigner{})
	wsHandler := NewWebSocketHandler(app.hub, app.resolver)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", userHandler.Register)
		r.Post("/sessions", userHandler.SignIn)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(app.resolver))

			r.Get("/me", userHandler.Me)
			r.Put("/me", userHandler.UpdateMe)
			r.Post("/me/complete", userHandler.CompleteProfile)
			r.Put("/me/push-token", userHandler.UpdatePushToken)
			r.Get("/me/invites", userHandler.Invites)

			r.Get("/requests", requestHandler.Feed)
			r.Post("/requests", requestHandler.Create)
			r.Get("/requests/mine", requestHandler.Mine)
			r.Post("/requests/{id}/offers", requestHandler.OfferHelp)
			r.Put("/requests/{id}/status", requestHandler.UpdateStatus)
			r.Post("/requests/{id}/report-non-return", requestHandler.ReportNonReturn)
			r.Post("/requests/{id}/denounce", requestHandler.Denounce)
			r.Post("/requests/{id}/dismiss", requestHandler.Dismiss)

			r.Get("/reviews/pending", reviewHandler.Pending)
			r.Post("/reviews", reviewHandler.Submit)

			r.Get("/chats/{partnerId}", chatHandler.Thread)
			r.Post("/chats/{partnerId}", chatHandler.Send)

			r.Get("/notifications", notificationHandler.List)
			r.Post("/notifications/read-all", notificationHandler.MarkAllRead)
			r.Post("/notifications/{id}/read", notificationHandler.MarkRead)

			r.Get("/events", eventHandler.List)
			r.Post("/events", eventHandler.Create)
			r.Post("/events/{id}/interest", eventHandler.ToggleInterest)

			r.Post("/uploads", photoHandler.UploadPhoto)
		})
	})
	r.Get("/ws", wsHandler.HandleWebSocket)
	app.router = r

	return app
}

func (a *testApp) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := a.users.GenerateJWT(userID)
	require.NoError(t, err)
	return token
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestUserEndpoints(t *testing.T) {
	app := newTestApp(t, services.PolicyDemo)

	rec := app.do(t, http.MethodPost, "/api/v1/users", "", map[string]string{
		"name":        "Beatriz",
		"email":       "bia@demo.com",
		"password":    "segredo123",
		"invite_code": "ANA-3141",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	registered := decode[services.AuthResponse](t, rec)
	assert.Equal(t, "user-5-uid", registered.User.InvitedBy)
	assert.NotEmpty(t, registered.Token)

	rec = app.do(t, http.MethodPost, "/api/v1/users", "", map[string]string{
		"name": "Outra", "email": "bia@demo.com", "password": "segredo123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/v1/users", "", map[string]string{
		"name": "Outra", "email": "sem-arroba", "password": "segredo123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/v1/sessions", "", map[string]string{
		"email": "bia@demo.com", "password": "errada",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/v1/sessions", "", map[string]string{
		"email": "bia@demo.com", "password": "segredo123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	signedIn := decode[services.AuthResponse](t, rec)

	rec = app.do(t, http.MethodGet, "/api/v1/me", signedIn.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[models.User](t, rec)
	assert.Equal(t, "Beatriz", me.Name)
	assert.Empty(t, me.PasswordHash)

	rec = app.do(t, http.MethodPost, "/api/v1/me/complete", signedIn.Token, map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/v1/me/complete", signedIn.Token, map[string]string{"name": "Bia"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.User](t, rec).IsProfileComplete)

	rec = app.do(t, http.MethodPut, "/api/v1/me/push-token", signedIn.Token, map[string]string{"token": "device-1"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/v1/me/invites", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	invites := decode[services.InviteView](t, rec)
	assert.Equal(t, "MARCUS-4825", invites.InviteCode)
	assert.Len(t, invites.Invitees, 1)

	rec = app.do(t, http.MethodGet, "/api/v1/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRejectPolicy(t *testing.T) {
	app := newTestApp(t, services.PolicyReject)

	rec := app.do(t, http.MethodGet, "/api/v1/requests", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/v1/requests", app.token(t, "user-2-uid"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestEndpoints(t *testing.T) {
	app := newTestApp(t, services.PolicyDemo)
	jose := app.token(t, "user-2-uid")

	type feedResponse struct {
		Requests []services.FeedEntry `json:"requests"`
		Total    int                  `json:"total"`
	}

	t.Run("feed", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/v1/requests", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 2, decode[feedResponse](t, rec).Total)

		rec = app.do(t, http.MethodGet, "/api/v1/requests?category=Cozinha&distance=1km", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		feed := decode[feedResponse](t, rec)
		require.Len(t, feed.Requests, 1)
		assert.Equal(t, "req-4", feed.Requests[0].ID)
		assert.Equal(t, "Fernando", feed.Requests[0].Owner.Name)

		rec = app.do(t, http.MethodGet, "/api/v1/requests?verified=talvez", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = app.do(t, http.MethodGet, "/api/v1/requests?distance=10km", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/api/v1/requests", jose, map[string]string{
			"item_name": "Serrote", "description": "Poda", "category": "Jardim", "urgency": "urgent",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		created := decode[models.ItemRequest](t, rec)
		assert.Equal(t, "user-2-uid", created.UserID)
		assert.Equal(t, models.UrgencyUrgent, created.Urgency)

		rec = app.do(t, http.MethodPost, "/api/v1/requests", jose, map[string]string{
			"item_name": "Serrote", "description": "Poda",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = app.do(t, http.MethodPost, "/api/v1/requests", jose, map[string]string{
			"item_name": "Serrote", "description": "Poda", "category": "Brinquedos",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, models.ErrUnknownCategory.Error(), decode[ErrorResponse](t, rec).Error)

		rec = app.do(t, http.MethodPost, "/api/v1/requests", jose, "{not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("offer and close", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/api/v1/requests/req-3/offers", jose, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-5-uid", decode[models.ChatContext](t, rec).PartnerID)

		rec = app.do(t, http.MethodPost, "/api/v1/requests/req-1/offers", "", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = app.do(t, http.MethodPut, "/api/v1/requests/req-1/status", jose, map[string]string{"status": "completed"})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = app.do(t, http.MethodPut, "/api/v1/requests/req-1/status", "", map[string]string{"status": "open"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = app.do(t, http.MethodPut, "/api/v1/requests/req-1/status", "", map[string]string{"status": "completed"})
		require.Equal(t, http.StatusOK, rec.Code)
		change := decode[services.StatusChange](t, rec)
		require.NotNil(t, change.ReviewPrompt)
		assert.Equal(t, "user-2-uid", change.ReviewPrompt.LenderID)

		rec = app.do(t, http.MethodPut, "/api/v1/requests/req-1/status", "", map[string]string{"status": "cancelled"})
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = app.do(t, http.MethodPut, "/api/v1/requests/missing/status", "", map[string]string{"status": "cancelled"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("review", func(t *testing.T) {
		type pendingResponse struct {
			Reviews []models.ReviewPrompt `json:"reviews"`
		}
		rec := app.do(t, http.MethodGet, "/api/v1/reviews/pending", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[pendingResponse](t, rec).Reviews, 1)

		rec = app.do(t, http.MethodPost, "/api/v1/reviews", "", map[string]any{"rating": 7, "request_id": "req-1"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = app.do(t, http.MethodPost, "/api/v1/reviews", "", map[string]any{"rating": 5, "request_id": "req-1", "comment": "Ótimo"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		result := decode[services.ReviewResult](t, rec)
		assert.Equal(t, 11, result.User.LoansMade)

		rec = app.do(t, http.MethodPost, "/api/v1/reviews", "", map[string]any{"rating": 5, "request_id": "req-1"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("mine", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/v1/requests/mine", jose, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		partitions := decode[services.Partitions](t, rec)
		assert.Equal(t, 1, partitions.ActiveCount)
		assert.Len(t, partitions.History, 1)
	})

	t.Run("report, denounce and dismiss", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/api/v1/requests/req-4/report-non-return", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, services.DenounceConfirmation, decode[MessageResponse](t, rec).Message)

		rec = app.do(t, http.MethodPost, "/api/v1/requests/req-3/denounce", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = app.do(t, http.MethodPost, "/api/v1/requests/req-4/dismiss", "", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = app.do(t, http.MethodPost, "/api/v1/requests/missing/dismiss", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = app.do(t, http.MethodGet, "/api/v1/requests", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		for _, entry := range decode[feedResponse](t, rec).Requests {
			assert.NotContains(t, []string{"req-3", "req-4"}, entry.ID)
		}
	})
}

func TestChatEndpoints(t *testing.T) {
	app := newTestApp(t, services.PolicyDemo)
	camila := app.token(t, "user-3-uid")

	rec := app.do(t, http.MethodPost, "/api/v1/chats/user-3-uid", "", map[string]string{"text": "Oi"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/v1/chats/user-3-uid?request=req-1", "", map[string]string{"text": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/v1/chats/user-3-uid?request=req-1", "", map[string]string{"text": "Chego às 15h"})
	require.Equal(t, http.StatusCreated, rec.Code)

	type threadResponse struct {
		Messages []models.ChatMessage `json:"messages"`
	}
	rec = app.do(t, http.MethodGet, "/api/v1/chats/user-1-uid?request=req-1", camila, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	thread := decode[threadResponse](t, rec)
	require.Len(t, thread.Messages, 6)
	assert.Equal(t, "Chego às 15h", thread.Messages[5].Text)

	rec = app.do(t, http.MethodGet, "/api/v1/notifications", camila, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	feed := decode[services.NotificationFeed](t, rec)
	require.Len(t, feed.Notifications, 1)
	assert.Equal(t, models.NotificationNewMessage, feed.Notifications[0].Type)

	rec = app.do(t, http.MethodPost, "/api/v1/notifications/"+feed.Notifications[0].ID+"/read", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/v1/notifications/"+feed.Notifications[0].ID+"/read", camila, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.Notification](t, rec).IsRead)

	rec = app.do(t, http.MethodPost, "/api/v1/notifications/read-all", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]int{"updated": 2}, decode[map[string]int](t, rec))
}

func TestEventEndpoints(t *testing.T) {
	app := newTestApp(t, services.PolicyDemo)

	rec := app.do(t, http.MethodPost, "/api/v1/events", "", map[string]string{
		"title":       "Mutirão",
		"description": "Limpeza da praça",
		"category":    "Reunião",
		"event_date":  "2024-07-13T09:00:00Z",
		"location":    "Praça",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.CommunityEvent](t, rec)

	rec = app.do(t, http.MethodPost, "/api/v1/events", "", map[string]string{"title": "Sem data"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/v1/events/"+created.ID+"/interest", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[services.EventView](t, rec)
	assert.True(t, view.IsInterested)
	assert.Equal(t, 1, view.InterestedCount)

	rec = app.do(t, http.MethodPost, "/api/v1/events/missing/interest", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	type listResponse struct {
		Events []services.EventView `json:"events"`
	}
	rec = app.do(t, http.MethodGet, "/api/v1/events", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[listResponse](t, rec).Events
	require.Len(t, events, 3)
	assert.Equal(t, created.ID, events[0].ID)
}

func TestUploadEndpoint(t *testing.T) {
	app := newTestApp(t, services.PolicyDemo)

	rec := app.do(t, http.MethodPost, "/api/v1/uploads", "", map[string]string{"kind": "avatar", "filename": "me.png"})
	require.Equal(t, http.StatusOK, rec.Code)
	upload := decode[services.UploadResponse](t, rec)
	assert.Equal(t, "https://bucket.example.com/upload?image/jpeg", upload.UploadURL)
	assert.Equal(t, "https://bucket.example.com/avatars/user-1-uid/me.png", upload.PhotoURL)

	rec = app.do(t, http.MethodPost, "/api/v1/uploads", "", map[string]string{"kind": "selfie", "filename": "me.png"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
