package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/voucher-flow/internal/domain/entity"
)

func TestAuthService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.auth.Seed(ctx, DefaultSeedUsers()))

	t.Run("login by pin or username", func(t *testing.T) {
		token, user, err := f.auth.Login(ctx, "1001", "1001", "")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "মোঃ রহিম উদ্দিন", user.Name)

		_, user, err = f.auth.Login(ctx, " nasrin ", "2001", entity.RoleMentor)
		require.NoError(t, err)
		assert.Equal(t, entity.RoleMentor, user.Role)
	})

	t.Run("wrong secret and unknown user", func(t *testing.T) {
		_, _, err := f.auth.Login(ctx, "1001", "wrong", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.True(t, IsAuthError(err))

		_, _, err = f.auth.Login(ctx, "9999", "9999", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("required role", func(t *testing.T) {
		_, _, err := f.auth.Login(ctx, "1001", "1001", entity.RolePayment)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.False(t, IsAuthError(err))
	})

	t.Run("token round trip", func(t *testing.T) {
		token, _, err := f.auth.Login(ctx, "3001", "3001", "")
		require.NoError(t, err)

		user, err := f.auth.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "3001", user.PIN)
		assert.NotEmpty(t, user.PasswordHash)
	})

	t.Run("tampered and foreign tokens", func(t *testing.T) {
		token, _, err := f.auth.Login(ctx, "1001", "1001", "")
		require.NoError(t, err)

		_, err = f.auth.Authenticate(ctx, token+"x")
		assert.ErrorIs(t, err, ErrUnauthenticated)

		other := NewAuthService(f.users, AuthConfig{Secret: "other-secret", Issuer: "voucher-flow"}, nopLogger{})
		_, err = other.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)

		wrongIssuer := NewAuthService(f.users, AuthConfig{Secret: "test-secret", Issuer: "someone-else"}, nopLogger{})
		_, err = wrongIssuer.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("expired token", func(t *testing.T) {
		impl := NewAuthService(f.users, AuthConfig{Secret: "test-secret", TokenTTL: time.Minute}, nopLogger{}).(*authServiceImpl)
		impl.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, _, err := impl.Login(ctx, "1001", "1001", "")
		require.NoError(t, err)

		impl.now = time.Now
		_, err = impl.Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("seed rejects unknown roles", func(t *testing.T) {
		err := f.auth.Seed(ctx, []SeedUser{{User: entity.User{PIN: "5001", Role: "admin"}, Password: "x"}})
		assert.Error(t, err)
	})
}

func TestCurrentUser(t *testing.T) {
	_, err := CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)

	u := &entity.User{PIN: "1001"}
	got, err := CurrentUser(WithCurrentUser(context.Background(), u))
	require.NoError(t, err)
	assert.Same(t, u, got)
}
