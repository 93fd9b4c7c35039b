package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"neighbor-aid-backend/internal/config"
	"neighbor-aid-backend/internal/models"
	"neighbor-aid-backend/internal/repository"
	"neighbor-aid-backend/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	createdAtLayout = "Jan 2"

	// DenounceConfirmation is shown to the resident after a denounce or a non-return report
	DenounceConfirmation = "Ação registrada. Agradecemos sua colaboração!"
)

// Distance filter values
const (
	DistanceAll = "all"
	Distance1km = "1km"
	Distance3km = "3km"
)

// RequestService owns the request ledger
type RequestService struct {
	community     *store.Community
	docs          repository.DocumentStore
	notifications *NotificationService
	reputation    *ReputationService
	rules         config.CommunityConfig
	now           func() time.Time
}

// NewRequestService creates a request service
func NewRequestService(
	community *store.Community,
	docs repository.DocumentStore,
	notifications *NotificationService,
	reputation *ReputationService,
	rules config.CommunityConfig,
) *RequestService {
	return &RequestService{
		community:     community,
		docs:          docs,
		notifications: notifications,
		reputation:    reputation,
		rules:         rules,
		now:           time.Now,
	}
}

// CreateRequestInput holds the fields of a new request
type CreateRequestInput struct {
	ItemName    string         `json:"item_name"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Urgency     models.Urgency `json:"urgency"`
	PhotoURL    string         `json:"photo_url,omitempty"`
}

// FeedFilter narrows the visible feed
type FeedFilter struct {
	Category     string
	OnlyVerified bool
	Distance     string
}

// FeedEntry is a visible request with its owner's card
type FeedEntry struct {
	models.ItemRequest
	Owner models.UserSummary `json:"owner"`
}

// Partitions groups the requests a resident takes part in
type Partitions struct {
	Requests     []models.ItemRequest `json:"requests"`
	Loans        []models.ItemRequest `json:"loans"`
	History      []models.ItemRequest `json:"history"`
	ActiveCount  int                  `json:"active_count"`
	RequestLimit int                  `json:"request_limit"`
}

// StatusChange is the outcome of a status update
type StatusChange struct {
	Request      models.ItemRequest   `json:"request"`
	ReviewPrompt *models.ReviewPrompt `json:"review_prompt,omitempty"`
}

// Create posts a new open request for the user
func (s *RequestService) Create(ctx context.Context, userID string, in CreateRequestInput) (models.ItemRequest, error) {
	if userID == "" {
		return models.ItemRequest{}, models.ErrNoActiveUser
	}
	if !models.IsRequestCategory(in.Category) {
		return models.ItemRequest{}, models.ErrUnknownCategory
	}
	if in.Urgency == "" {
		in.Urgency = models.UrgencyNormal
	}
	if in.Urgency != models.UrgencyNormal && in.Urgency != models.UrgencyUrgent {
		return models.ItemRequest{}, models.ErrInvalidUrgency
	}

	owner, ok := s.community.Users.Get(userID)
	if !ok {
		return models.ItemRequest{}, models.ErrUserNotFound
	}
	if s.activeCount(userID) >= s.requestLimit(owner) {
		return models.ItemRequest{}, models.ErrRequestLimitReached
	}

	now := s.now()
	request := models.ItemRequest{
		ID:          uuid.New().String(),
		UserID:      userID,
		ItemName:    strings.TrimSpace(in.ItemName),
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
		Urgency:     in.Urgency,
		CreatedAt:   now.Format(createdAtLayout),
		Distance:    s.rules.DefaultDistance,
		Status:      models.StatusOpen,
		Offers:      []models.Offer{},
		PhotoURL:    in.PhotoURL,
		PostedAt:    now,
	}

	s.community.Requests.Prepend(request)
	writeThrough(ctx, s.docs, repository.CollectionRequests, request.ID, request)

	if user, err := s.community.Users.Update(userID, func(u *models.User) error {
		u.RequestsMade++
		return nil
	}); err == nil {
		writeThrough(ctx, s.docs, repository.CollectionUsers, user.ID, user)
	}

	log.Info().
		Str("user_id", userID).
		Str("request_id", request.ID).
		Str("item", request.ItemName).
		Msg("Request created")

	return request, nil
}

// OfferHelp records the user's offer once and opens the chat with the owner
func (s *RequestService) OfferHelp(ctx context.Context, userID, requestID string) (*models.ChatContext, error) {
	if userID == "" {
		return nil, models.ErrNoActiveUser
	}
	helper, ok := s.community.Users.Get(userID)
	if !ok {
		return nil, models.ErrUserNotFound
	}

	created := false
	request, err := s.community.Requests.Update(requestID, func(r *models.ItemRequest) error {
		if r.UserID == userID {
			return models.ErrOwnRequest
		}
		if _, exists := r.OfferBy(userID); exists {
			return nil
		}
		r.Offers = append(r.Offers, models.Offer{
			ID:      uuid.New().String(),
			UserID:  userID,
			Message: fmt.Sprintf("Olá! Eu posso te ajudar com %s.", strings.ToLower(r.ItemName)),
		})
		created = true
		return nil
	})
	if err != nil {
		return nil, requestError(err)
	}

	if created {
		writeThrough(ctx, s.docs, repository.CollectionRequests, request.ID, request)
	}

	s.notifications.Notify(ctx, request.UserID, models.NotificationNewOffer,
		fmt.Sprintf("%s ofereceu ajuda para o seu pedido de %s.", helper.Name, request.ItemName))

	return &models.ChatContext{
		PartnerID:   request.UserID,
		RequestName: request.ItemName,
		RequestID:   request.ID,
	}, nil
}

// UpdateStatus closes an open request. Completing a request with offers asks
// the owner to review the first helper.
func (s *RequestService) UpdateStatus(ctx context.Context, userID, requestID string, status models.RequestStatus) (*StatusChange, error) {
	if !status.IsTerminal() {
		return nil, models.ErrInvalidStatus
	}

	request, err := s.community.Requests.Update(requestID, func(r *models.ItemRequest) error {
		if r.UserID != userID {
			return models.ErrNotRequestOwner
		}
		if r.Status != models.StatusOpen {
			return models.ErrRequestClosed
		}
		r.Status = status
		return nil
	})
	if err != nil {
		return nil, requestError(err)
	}
	writeThrough(ctx, s.docs, repository.CollectionRequests, request.ID, request)

	change := &StatusChange{Request: request}
	if status == models.StatusCompleted && len(request.Offers) > 0 {
		lenderID := request.Offers[0].UserID
		if _, ok := s.community.Users.Get(lenderID); ok {
			prompt := models.ReviewPrompt{
				RequestID:  request.ID,
				ItemName:   request.ItemName,
				ReviewerID: request.UserID,
				LenderID:   lenderID,
			}
			s.community.Prompts.Put(prompt)
			change.ReviewPrompt = &prompt
		}
	}

	log.Info().
		Str("user_id", userID).
		Str("request_id", request.ID).
		Str("status", string(status)).
		Msg("Request status updated")

	return change, nil
}

// ReportNonReturn penalizes the borrower of a request that was never returned and cancels it
func (s *RequestService) ReportNonReturn(ctx context.Context, reporterID, requestID string) (string, error) {
	if reporterID == "" {
		return "", models.ErrNoActiveUser
	}
	request, ok := s.community.Requests.Get(requestID)
	if !ok {
		return "", models.ErrRequestNotFound
	}
	if request.UserID == reporterID {
		return "", models.ErrOwnRequest
	}
	if _, ok := s.community.Users.Get(reporterID); !ok {
		return "", models.ErrUserNotFound
	}

	borrower, err := s.reputation.ApplyPenalty(ctx, request.UserID)
	if err != nil {
		return "", err
	}

	cancelled, err := s.community.Requests.Update(requestID, func(r *models.ItemRequest) error {
		r.Status = models.StatusCancelled
		return nil
	})
	if err != nil {
		return "", requestError(err)
	}
	writeThrough(ctx, s.docs, repository.CollectionRequests, cancelled.ID, cancelled)

	s.notifications.NotifyAll(ctx,
		newNotification(borrower.ID, models.NotificationPenalty,
			fmt.Sprintf("Uma penalidade foi aplicada à sua reputação por não devolver o item: %s.", request.ItemName)),
		newNotification(reporterID, models.NotificationPenalty,
			fmt.Sprintf("Registramos sua denúncia sobre o item %s não ter sido devolvido por %s.", request.ItemName, borrower.Name)),
	)

	log.Info().
		Str("reporter_id", reporterID).
		Str("borrower_id", borrower.ID).
		Str("request_id", requestID).
		Float64("reputation", borrower.Reputation).
		Msg("Non-return reported")

	return DenounceConfirmation, nil
}

// Denounce hides the request from the viewer's feed for moderation
func (s *RequestService) Denounce(viewerID, requestID string) (string, error) {
	if _, ok := s.community.Requests.Get(requestID); !ok {
		return "", models.ErrRequestNotFound
	}
	s.community.Denounced.Add(viewerID, requestID)

	log.Info().Str("user_id", viewerID).Str("request_id", requestID).Msg("Request denounced")
	return DenounceConfirmation, nil
}

// Dismiss hides the request from the viewer's feed
func (s *RequestService) Dismiss(viewerID, requestID string) error {
	if _, ok := s.community.Requests.Get(requestID); !ok {
		return models.ErrRequestNotFound
	}
	s.community.Dismissed.Add(viewerID, requestID)
	return nil
}

// Get retrieves a request
func (s *RequestService) Get(requestID string) (models.ItemRequest, error) {
	request, ok := s.community.Requests.Get(requestID)
	if !ok {
		return models.ItemRequest{}, models.ErrRequestNotFound
	}
	return request, nil
}

// Feed lists the requests of other residents visible to the viewer
func (s *RequestService) Feed(viewerID string, filter FeedFilter) ([]FeedEntry, error) {
	maxDistance, err := distanceLimit(filter.Distance)
	if err != nil {
		return nil, err
	}

	visible := s.community.Requests.Filter(func(r models.ItemRequest) bool {
		return r.UserID != viewerID &&
			!s.community.Denounced.Has(viewerID, r.ID) &&
			!s.community.Dismissed.Has(viewerID, r.ID)
	})

	entries := []FeedEntry{}
	for _, request := range visible {
		owner, ok := s.community.Users.Get(request.UserID)
		if !ok {
			continue
		}
		if filter.Category != "" && filter.Category != models.AllCategories && request.Category != filter.Category {
			continue
		}
		if filter.OnlyVerified && !owner.IsVerified {
			continue
		}
		if maxDistance > 0 {
			meters, ok := parseDistance(request.Distance)
			if !ok || meters > maxDistance {
				continue
			}
		}
		entries = append(entries, FeedEntry{ItemRequest: request, Owner: owner.Summary()})
	}

	return entries, nil
}

// Partitions splits the requests the user owns or offered on into the tabs of "my requests"
func (s *RequestService) Partitions(userID string) (*Partitions, error) {
	user, ok := s.community.Users.Get(userID)
	if !ok {
		return nil, models.ErrUserNotFound
	}

	p := &Partitions{
		Requests:     []models.ItemRequest{},
		Loans:        []models.ItemRequest{},
		History:      []models.ItemRequest{},
		RequestLimit: s.requestLimit(user),
	}

	for _, request := range s.community.Requests.List() {
		owned := request.UserID == userID
		_, offered := request.OfferBy(userID)

		switch {
		case request.Status == models.StatusOpen && owned:
			p.Requests = append(p.Requests, request)
		case request.Status == models.StatusOpen && offered:
			p.Loans = append(p.Loans, request)
		case request.Status != models.StatusOpen && (owned || offered):
			p.History = append(p.History, request)
		}
	}

	sort.SliceStable(p.History, func(i, j int) bool {
		return p.History[i].PostedAt.After(p.History[j].PostedAt)
	})
	p.ActiveCount = len(p.Requests)

	return p, nil
}

func (s *RequestService) activeCount(userID string) int {
	return len(s.community.Requests.Filter(func(r models.ItemRequest) bool {
		return r.UserID == userID && r.Status == models.StatusOpen
	}))
}

func (s *RequestService) requestLimit(user models.User) int {
	if user.IsVerified {
		return s.rules.VerifiedRequestLimit
	}
	return s.rules.UnverifiedRequestLimit
}

// distanceLimit converts a distance filter into meters; zero means unlimited
func distanceLimit(filter string) (int, error) {
	switch filter {
	case "", DistanceAll:
		return 0, nil
	case Distance1km:
		return 1000, nil
	case Distance3km:
		return 3000, nil
	default:
		return 0, models.ErrInvalidDistance
	}
}

// parseDistance reads display distances such as "350m" or "1.2km" as meters
func parseDistance(distance string) (int, bool) {
	d := strings.TrimSpace(strings.ToLower(distance))
	multiplier := 1.0
	switch {
	case strings.HasSuffix(d, "km"):
		d = strings.TrimSuffix(d, "km")
		multiplier = 1000
	case strings.HasSuffix(d, "m"):
		d = strings.TrimSuffix(d, "m")
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(d, ",", "."), 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return int(value * multiplier), true
}

// requestError maps ledger lookups to the request sentinel
func requestError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return models.ErrRequestNotFound
	}
	return err
}
