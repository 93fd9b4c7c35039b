package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"neighbor-aid-backend/internal/config"
	"neighbor-aid-backend/internal/models"
	"neighbor-aid-backend/internal/repository"
	"neighbor-aid-backend/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	codeLength        = 6
	codeChars         = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codePrefixLength  = 6
	defaultName       = "Usuário"
	defaultReputation = 5.0
)

// UserService handles profiles, credentials and tokens
type UserService struct {
	users     *store.Users
	docs      repository.DocumentStore
	jwtSecret string
	jwtExpiry int
	hashCost  int
	now       func() time.Time
}

// NewUserService creates a new user service
func NewUserService(users *store.Users, docs repository.DocumentStore, jwtCfg config.JWTConfig) *UserService {
	return &UserService{
		users:     users,
		docs:      docs,
		jwtSecret: jwtCfg.Secret,
		jwtExpiry: jwtCfg.ExpiryDays,
		hashCost:  bcrypt.DefaultCost,
		now:       time.Now,
	}
}

// RegisterInput holds the fields of a new account
type RegisterInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	InviteCode string `json:"invite_code,omitempty"`
}

// AuthResponse is returned after registration or sign in
type AuthResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// InviteView lists who a user invited and who invited them
type InviteView struct {
	InviteCode string               `json:"invite_code"`
	Invitees   []models.UserSummary `json:"invitees"`
	InvitedBy  *models.UserSummary  `json:"invited_by,omitempty"`
}

// GenerateUniqueCode generates an invite code not used by any other profile
func (s *UserService) GenerateUniqueCode(name string) (string, error) {
	prefix := codePrefix(name)
	maxAttempts := 10
	for i := 0; i < maxAttempts; i++ {
		code := prefix + "-" + generateCode()
		if _, exists := s.users.GetByInviteCode(code); !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique code after %d attempts", maxAttempts)
}

// generateCode generates a random 6-character code
func generateCode() string {
	code := make([]byte, codeLength)
	for i := range code {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(codeChars))))
		code[i] = codeChars[n.Int64()]
	}
	return string(code)
}

// codePrefix takes the leading letters of the first name, e.g. "MARCUS"
func codePrefix(name string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(name), " ")
	var b strings.Builder
	for _, r := range strings.ToUpper(first) {
		if b.Len() >= codePrefixLength {
			break
		}
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "VIZINHO"
	}
	return b.String()
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.AddDate(0, 0, s.jwtExpiry).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", models.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", models.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("%w: user_id not found in token", models.ErrInvalidToken)
	}

	return userID, nil
}

// Register creates an account with a default profile and returns its token
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResponse, error) {
	email := strings.TrimSpace(in.Email)
	if _, taken := s.users.GetByEmail(email); taken {
		return nil, models.ErrEmailTaken
	}

	var inviter models.User
	if in.InviteCode != "" {
		found, ok := s.users.GetByInviteCode(strings.ToUpper(strings.TrimSpace(in.InviteCode)))
		if !ok {
			return nil, models.ErrInviteCodeNotFound
		}
		inviter = found
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	name := strings.TrimSpace(in.Name)
	user := s.defaultProfile(uuid.New().String(), name, email)
	user.PasswordHash = string(hash)
	user.InvitedBy = inviter.ID

	// the lookup above is only a fast path, the insert decides
	if err := s.insertWithCode(&user, name); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, models.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	writeThrough(ctx, s.docs, repository.CollectionUsers, user.ID, user)

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResponse{User: user.Public(), Token: token}, nil
}

// SignIn checks the credentials and returns a fresh token
func (s *UserService) SignIn(email, password string) (*AuthResponse, error) {
	user, ok := s.users.GetByEmail(strings.TrimSpace(email))
	if !ok || user.PasswordHash == "" {
		return nil, models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResponse{User: user.Public(), Token: token}, nil
}

// EnsureProfile returns the profile of the identity, creating a default one on first sight
func (s *UserService) EnsureProfile(ctx context.Context, userID string) (models.User, error) {
	if userID == "" {
		return models.User{}, models.ErrNoActiveUser
	}
	if user, ok := s.users.Get(userID); ok {
		return user, nil
	}

	user := s.defaultProfile(userID, "", "")
	err := s.insertWithCode(&user, "")
	if errors.Is(err, store.ErrIDTaken) {
		// created concurrently
		existing, _ := s.users.Get(userID)
		return existing, nil
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create profile: %w", err)
	}

	writeThrough(ctx, s.docs, repository.CollectionUsers, user.ID, user)
	return user, nil
}

// insertWithCode stores the profile under a fresh invite code, drawing again when
// another profile claimed the code first
func (s *UserService) insertWithCode(user *models.User, name string) error {
	maxAttempts := 10
	for i := 0; i < maxAttempts; i++ {
		code, err := s.GenerateUniqueCode(name)
		if err != nil {
			return err
		}
		user.InviteCode = code

		err = s.users.Insert(*user)
		if !errors.Is(err, store.ErrInviteCodeTaken) {
			return err
		}
	}
	return fmt.Errorf("failed to claim an invite code after %d attempts", maxAttempts)
}

func (s *UserService) defaultProfile(id, name, email string) models.User {
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	if name == "" {
		name = defaultName
	}
	return models.User{
		ID:         id,
		Name:       name,
		Email:      email,
		Reputation: defaultReputation,
		Badges:     []models.BadgeType{},
		CreatedAt:  s.now(),
	}
}

// GetUser retrieves a profile
func (s *UserService) GetUser(userID string) (models.User, error) {
	user, ok := s.users.Get(userID)
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return user, nil
}

// ProfileUpdate holds the editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// UpdateProfile edits the name and avatar of a profile
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (models.User, error) {
	return s.update(ctx, userID, func(u *models.User) error {
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return models.ErrNameRequired
			}
			u.Name = name
		}
		if in.AvatarURL != nil {
			u.AvatarURL = strings.TrimSpace(*in.AvatarURL)
		}
		return nil
	})
}

// CompleteProfile sets the name and avatar chosen during onboarding and marks the profile complete
func (s *UserService) CompleteProfile(ctx context.Context, userID, name, avatarURL string) (models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.User{}, models.ErrNameRequired
	}

	return s.update(ctx, userID, func(u *models.User) error {
		u.Name = name
		if avatarURL = strings.TrimSpace(avatarURL); avatarURL != "" {
			u.AvatarURL = avatarURL
		}
		u.IsProfileComplete = true
		return nil
	})
}

// UpdatePushToken stores the APNs device token. An empty token disables push.
func (s *UserService) UpdatePushToken(ctx context.Context, userID, token string) error {
	_, err := s.update(ctx, userID, func(u *models.User) error {
		if token == "" {
			u.PushToken = nil
			return nil
		}
		u.PushToken = &token
		return nil
	})
	return err
}

// Invites returns the user's invite code, the residents who used it and who invited the user
func (s *UserService) Invites(userID string) (*InviteView, error) {
	user, ok := s.users.Get(userID)
	if !ok {
		return nil, models.ErrUserNotFound
	}

	view := &InviteView{
		InviteCode: user.InviteCode,
		Invitees:   []models.UserSummary{},
	}
	for _, invitee := range s.users.InvitedBy(userID) {
		view.Invitees = append(view.Invitees, invitee.Summary())
	}
	if user.InvitedBy != "" {
		if inviter, ok := s.users.Get(user.InvitedBy); ok {
			summary := inviter.Summary()
			view.InvitedBy = &summary
		}
	}

	return view, nil
}

func (s *UserService) update(ctx context.Context, userID string, fn func(u *models.User) error) (models.User, error) {
	user, err := s.users.Update(userID, fn)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}

	writeThrough(ctx, s.docs, repository.CollectionUsers, user.ID, user)
	return user.Public(), nil
}
