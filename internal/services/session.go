package services

import (
	"context"
	"errors"
	"sync"

	"neighbor-aid-backend/internal/config"
	"neighbor-aid-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// No-session policies
const (
	PolicyDemo   = "demo"
	PolicyReject = "reject"
)

// SessionResolver maps an identity token to the active user's profile
type SessionResolver struct {
	userService *UserService
	policy      string
	demoUserID  string
}

// NewSessionResolver creates a resolver following the configured no-session policy
func NewSessionResolver(userService *UserService, cfg config.CommunityConfig) *SessionResolver {
	return &SessionResolver{
		userService: userService,
		policy:      cfg.NoSessionPolicy,
		demoUserID:  cfg.DemoUserID,
	}
}

// Identify resolves the active user for a token. An empty token falls back to the
// demo identity unless the policy rejects anonymous callers.
func (r *SessionResolver) Identify(ctx context.Context, token string) (string, error) {
	userID, err := r.identity(token)
	if err != nil {
		return "", err
	}

	if _, err := r.userService.EnsureProfile(ctx, userID); err != nil {
		return "", err
	}
	return userID, nil
}

func (r *SessionResolver) identity(token string) (string, error) {
	if token != "" {
		return r.userService.ValidateJWT(token)
	}
	if r.policy == PolicyDemo && r.demoUserID != "" {
		return r.demoUserID, nil
	}
	return "", models.ErrNoActiveUser
}

// Session tracks the single live identity of a long-lived connection
type Session struct {
	resolver *SessionResolver

	mu       sync.Mutex
	userID   string
	onChange func(previous, current string)
}

// NewSession creates a session and resolves its initial identity from token
func (r *SessionResolver) NewSession(ctx context.Context, token string, onChange func(previous, current string)) (*Session, error) {
	s := &Session{resolver: r, onChange: onChange}
	if err := s.Apply(ctx, token); err != nil {
		return nil, err
	}
	if s.UserID() == "" {
		return nil, models.ErrNoActiveUser
	}
	return s, nil
}

// Apply handles an authentication state change. An empty token means the user signed out:
// the demo identity takes over, or under the reject policy the session is left without one.
// A failed sign in keeps the previous identity active.
func (s *Session) Apply(ctx context.Context, token string) error {
	userID, err := s.resolver.Identify(ctx, token)
	if token == "" && errors.Is(err, models.ErrNoActiveUser) {
		userID, err = "", nil
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	previous := s.userID
	s.userID = userID
	s.mu.Unlock()

	if previous != userID {
		log.Debug().
			Str("previous_user_id", previous).
			Str("user_id", userID).
			Msg("Session identity changed")
		if s.onChange != nil {
			s.onChange(previous, userID)
		}
	}
	return nil
}

// Subscribe applies every token received on changes until the channel closes or ctx is done
func (s *Session) Subscribe(ctx context.Context, changes <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case token, ok := <-changes:
			if !ok {
				return
			}
			if err := s.Apply(ctx, token); err != nil {
				log.Warn().Err(err).Str("user_id", s.UserID()).Msg("Ignoring authentication change")
			}
		}
	}
}

// UserID returns the active identity
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}
