package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"neighbor-aid-backend/internal/models"
	"neighbor-aid-backend/internal/repository"
	"neighbor-aid-backend/internal/store"

	"github.com/rs/zerolog/log"
)

const minReputation = 1.0

// BadgeRule grants a badge once a lender reaches a number of loans
type BadgeRule struct {
	Loans   int
	Badge   models.BadgeType
	Message string
}

// DefaultBadgeRules is evaluated in order after every review
var DefaultBadgeRules = []BadgeRule{
	{
		Loans:   10,
		Badge:   models.BadgeGoodNeighbor,
		Message: `Parabéns! Você ganhou o selo "Bom Vizinho" por realizar 10 empréstimos.`,
	},
}

// ReputationService updates running averages, penalties and badges
type ReputationService struct {
	users         *store.Users
	prompts       *store.ReviewPrompts
	docs          repository.DocumentStore
	notifications *NotificationService
	rules         []BadgeRule
	penalty       float64
}

// NewReputationService creates a reputation service
func NewReputationService(
	users *store.Users,
	prompts *store.ReviewPrompts,
	docs repository.DocumentStore,
	notifications *NotificationService,
	rules []BadgeRule,
	penalty float64,
) *ReputationService {
	return &ReputationService{
		users:         users,
		prompts:       prompts,
		docs:          docs,
		notifications: notifications,
		rules:         rules,
		penalty:       penalty,
	}
}

// ReviewResult is the lender's profile after a review and the badges it earned
type ReviewResult struct {
	User          models.User        `json:"user"`
	GrantedBadges []models.BadgeType `json:"granted_badges"`
}

// PendingReviews lists the review prompts waiting for the user
func (s *ReputationService) PendingReviews(reviewerID string) []models.ReviewPrompt {
	prompts := s.prompts.ForReviewer(reviewerID)
	if prompts == nil {
		return []models.ReviewPrompt{}
	}
	return prompts
}

// SubmitReview rates the lender of a completed request
func (s *ReputationService) SubmitReview(ctx context.Context, reviewerID string, review models.Review) (*ReviewResult, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return nil, models.ErrInvalidRating
	}

	// claimed up front so concurrent submissions for one prompt count once
	prompt, ok := s.prompts.Take(reviewerID, review.RequestID)
	if !ok {
		return nil, models.ErrNoPendingReview
	}
	if review.ReviewedUserID != "" && review.ReviewedUserID != prompt.LenderID {
		s.prompts.Put(prompt)
		return nil, models.ErrNoPendingReview
	}

	reviewer, ok := s.users.Get(reviewerID)
	if !ok {
		s.prompts.Put(prompt)
		return nil, models.ErrUserNotFound
	}

	var granted []models.BadgeType
	lender, err := s.users.Update(prompt.LenderID, func(u *models.User) error {
		loans := u.LoansMade
		u.Reputation = roundTenth((u.Reputation*float64(loans) + float64(review.Rating)) / float64(loans+1))
		u.LoansMade = loans + 1
		granted = s.applyBadgeRules(u)
		return nil
	})
	if err != nil {
		s.prompts.Put(prompt)
		if errors.Is(err, store.ErrNotFound) {
			return nil, models.ErrUserNotFound
		}
		return nil, err
	}

	writeThrough(ctx, s.docs, repository.CollectionUsers, lender.ID, lender)

	notifications := []models.Notification{
		newNotification(lender.ID, models.NotificationNewReview,
			fmt.Sprintf("%s te avaliou com %d estrelas pelo empréstimo do item %s.", reviewer.Name, review.Rating, prompt.ItemName)),
	}
	for _, badge := range granted {
		notifications = append(notifications, newNotification(lender.ID, models.NotificationAchievement, s.ruleMessage(badge)))
	}
	s.notifications.NotifyAll(ctx, notifications...)

	log.Info().
		Str("reviewer_id", reviewerID).
		Str("lender_id", lender.ID).
		Int("rating", review.Rating).
		Float64("reputation", lender.Reputation).
		Msg("Review submitted")

	if granted == nil {
		granted = []models.BadgeType{}
	}
	return &ReviewResult{User: lender.Public(), GrantedBadges: granted}, nil
}

// applyBadgeRules grants every badge whose threshold was reached and that the user does not hold yet
func (s *ReputationService) applyBadgeRules(u *models.User) []models.BadgeType {
	var granted []models.BadgeType
	for _, rule := range s.rules {
		if u.LoansMade >= rule.Loans && !u.HasBadge(rule.Badge) {
			u.Badges = append(u.Badges, rule.Badge)
			granted = append(granted, rule.Badge)
		}
	}
	return granted
}

func (s *ReputationService) ruleMessage(badge models.BadgeType) string {
	for _, rule := range s.rules {
		if rule.Badge == badge {
			return rule.Message
		}
	}
	return ""
}

// ApplyPenalty lowers the user's reputation by the configured amount, never below 1.0
func (s *ReputationService) ApplyPenalty(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.Update(userID, func(u *models.User) error {
		u.Reputation = math.Max(minReputation, roundTenth(u.Reputation-s.penalty))
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}

	writeThrough(ctx, s.docs, repository.CollectionUsers, user.ID, user)
	return user, nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
