package services

import (
	"context"
	"regexp"
	"testing"

	"neighbor-aid-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentify(t *testing.T) {
	ctx := context.Background()

	t.Run("demo fallback", func(t *testing.T) {
		env := newTestEnv(t)

		userID, err := env.resolver.Identify(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "user-1-uid", userID)
	})

	t.Run("reject policy", func(t *testing.T) {
		env := newTestEnv(t)
		cfg := env.cfg.Community
		cfg.NoSessionPolicy = PolicyReject
		resolver := NewSessionResolver(env.users, cfg)

		_, err := resolver.Identify(ctx, "")
		assert.ErrorIs(t, err, models.ErrNoActiveUser)
	})

	t.Run("new identity gets a default profile", func(t *testing.T) {
		assert := assert.New(t)
		env := newTestEnv(t)
		token, err := env.users.GenerateJWT("external-uid-9")
		require.NoError(t, err)

		userID, err := env.resolver.Identify(ctx, token)
		require.NoError(t, err)
		assert.Equal("external-uid-9", userID)

		profile := env.user(t, "external-uid-9")
		assert.Equal("Usuário", profile.Name)
		assert.Equal(5.0, profile.Reputation)
		assert.Zero(profile.LoansMade)
		assert.Zero(profile.RequestsMade)
		assert.NotNil(profile.Badges)
		assert.Empty(profile.Badges)
		assert.Regexp(regexp.MustCompile(`^VIZINHO-[A-Z0-9]{6}$`), profile.InviteCode)

		invites, err := env.users.Invites("external-uid-9")
		require.NoError(t, err)
		assert.Equal(profile.InviteCode, invites.InviteCode)

		_, persisted := env.docs.get("users", "external-uid-9")
		assert.True(persisted)

		// a second sight keeps the stored profile
		_, err = env.users.UpdateProfile(ctx, "external-uid-9", ProfileUpdate{Name: strPtr("Rita")})
		require.NoError(t, err)
		_, err = env.resolver.Identify(ctx, token)
		require.NoError(t, err)
		assert.Equal("Rita", env.user(t, "external-uid-9").Name)
	})

	t.Run("bad token", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.resolver.Identify(ctx, "not-a-token")
		assert.ErrorIs(t, err, models.ErrInvalidToken)
	})
}

func TestSession(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)
	env := newTestEnv(t)

	type change struct{ previous, current string }
	var changes []change
	session, err := env.resolver.NewSession(ctx, "", func(previous, current string) {
		changes = append(changes, change{previous, current})
	})
	require.NoError(t, err)
	assert.Equal("user-1-uid", session.UserID())

	token, err := env.users.GenerateJWT("user-2-uid")
	require.NoError(t, err)
	require.NoError(t, session.Apply(ctx, token))
	assert.Equal("user-2-uid", session.UserID())

	// same identity again is not a change
	require.NoError(t, session.Apply(ctx, token))

	// failed sign in keeps the current identity
	assert.Error(session.Apply(ctx, "garbage"))
	assert.Equal("user-2-uid", session.UserID())

	updates := make(chan string)
	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Subscribe(ctx, updates)
	}()
	updates <- ""
	close(updates)
	<-done

	assert.Equal("user-1-uid", session.UserID())
	assert.Equal([]change{
		{"", "user-1-uid"},
		{"user-1-uid", "user-2-uid"},
		{"user-2-uid", "user-1-uid"},
	}, changes)
}

func TestSessionSignOutWithoutFallback(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)
	env := newTestEnv(t)
	cfg := env.cfg.Community
	cfg.NoSessionPolicy = PolicyReject
	resolver := NewSessionResolver(env.users, cfg)

	_, err := resolver.NewSession(ctx, "", nil)
	assert.ErrorIs(err, models.ErrNoActiveUser)

	type change struct{ previous, current string }
	var changes []change
	token, err := env.users.GenerateJWT("user-2-uid")
	require.NoError(t, err)
	session, err := resolver.NewSession(ctx, token, func(previous, current string) {
		changes = append(changes, change{previous, current})
	})
	require.NoError(t, err)

	require.NoError(t, session.Apply(ctx, ""))
	assert.Empty(session.UserID())

	// signing out twice is not a change
	require.NoError(t, session.Apply(ctx, ""))

	require.NoError(t, session.Apply(ctx, token))
	assert.Equal("user-2-uid", session.UserID())
	assert.Equal([]change{
		{"", "user-2-uid"},
		{"user-2-uid", ""},
		{"", "user-2-uid"},
	}, changes)
}

func TestSessionStopsWithContext(t *testing.T) {
	env := newTestEnv(t)
	session, err := env.resolver.NewSession(context.Background(), "", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Subscribe(ctx, make(chan string))
	}()
	cancel()
	<-done
}

func strPtr(s string) *string { return &s }
