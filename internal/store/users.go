package store

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"neighbor-aid-backend/internal/models"
)

// Uniqueness violations reported by Insert
var (
	ErrIDTaken         = errors.New("id already in use")
	ErrEmailTaken      = errors.New("email already in use")
	ErrInviteCodeTaken = errors.New("invite code already in use")
)

// Users is the directory of resident profiles
type Users struct {
	mu   sync.RWMutex
	byID map[string]models.User
}

// NewUsers creates an empty directory
func NewUsers() *Users {
	return &Users{byID: make(map[string]models.User)}
}

// Put inserts or replaces a profile
func (s *Users) Put(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[user.ID] = user.Clone()
}

// Insert adds a profile unless its id, email or invite code is already in use
func (s *Users) Insert(user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[user.ID]; exists {
		return ErrIDTaken
	}
	for _, existing := range s.byID {
		if user.Email != "" && strings.EqualFold(existing.Email, user.Email) {
			return ErrEmailTaken
		}
		if user.InviteCode != "" && existing.InviteCode == user.InviteCode {
			return ErrInviteCodeTaken
		}
	}
	s.byID[user.ID] = user.Clone()
	return nil
}

// Get retrieves a profile by id
func (s *Users) Get(id string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return models.User{}, false
	}
	return user.Clone(), true
}

// GetByEmail retrieves a profile by email, ignoring case
func (s *Users) GetByEmail(email string) (models.User, bool) {
	return s.find(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

// GetByInviteCode retrieves the profile owning an invite code
func (s *Users) GetByInviteCode(code string) (models.User, bool) {
	return s.find(func(u models.User) bool { return u.InviteCode != "" && u.InviteCode == code })
}

// InvitedBy lists the profiles that registered with the inviter's code
func (s *Users) InvitedBy(inviterID string) []models.User {
	return s.filter(func(u models.User) bool { return u.InvitedBy == inviterID })
}

// All lists every profile ordered by id
func (s *Users) All() []models.User {
	return s.filter(func(models.User) bool { return true })
}

// Update applies fn to a copy of the profile and commits it when fn returns nil
func (s *Users) Update(id string, fn func(user *models.User) error) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return models.User{}, ErrNotFound
	}

	draft := user.Clone()
	if err := fn(&draft); err != nil {
		return models.User{}, err
	}
	s.byID[id] = draft
	return draft.Clone(), nil
}

func (s *Users) find(match func(models.User) bool) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.byID {
		if match(user) {
			return user.Clone(), true
		}
	}
	return models.User{}, false
}

func (s *Users) filter(match func(models.User) bool) []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.User
	for _, user := range s.byID {
		if match(user) {
			out = append(out, user.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
