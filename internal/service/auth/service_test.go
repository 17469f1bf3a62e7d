package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/N1etZsch3/Novi-sub000/internal/config"
	"github.com/N1etZsch3/Novi-sub000/internal/domain"
	"github.com/N1etZsch3/Novi-sub000/internal/store"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:         "0123456789abcdef0123456789abcdef",
		TokenLifetimeMins: 60,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserStore hashes passwords with the minimum bcrypt cost so login
// tests can verify them.
type fakeUserStore struct {
	byEmail map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]*domain.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	if _, exists := f.byEmail[user.Email]; exists {
		return store.ErrEmailExists
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	user.HashedPassword = string(hashed)
	user.Password = ""
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range f.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func newTestService(t *testing.T) (*Service, *fakeUserStore) {
	t.Helper()
	tokens, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)
	users := newFakeUserStore()
	svc, err := NewService(users, NewBcryptVerifier(), tokens, testLogger())
	require.NoError(t, err)
	return svc, users
}

func TestJWTServiceRoundTrip(t *testing.T) {
	t.Parallel()

	tokens, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	userID := uuid.New()
	signed, err := tokens.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := tokens.ValidateToken(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTServiceRejectsBadTokens(t *testing.T) {
	t.Parallel()

	tokens, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	t.Run("empty token", func(t *testing.T) {
		_, err := tokens.ValidateToken(context.Background(), "")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := tokens.ValidateToken(context.Background(), "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		otherCfg := testAuthConfig()
		otherCfg.JWTSecret = "ffffffffffffffffffffffffffffffff"
		other, err := NewJWTService(otherCfg)
		require.NoError(t, err)

		signed, err := other.GenerateToken(context.Background(), uuid.New())
		require.NoError(t, err)

		_, err = tokens.ValidateToken(context.Background(), signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		svc := &hmacJWTService{
			signingKey:    []byte(testAuthConfig().JWTSecret),
			tokenLifetime: time.Minute,
			timeFunc:      time.Now,
		}

		// Issue a token far in the past, beyond any clock skew.
		svc.timeFunc = func() time.Time { return time.Now().Add(-24 * time.Hour) }
		signed, err := svc.GenerateToken(context.Background(), uuid.New())
		require.NoError(t, err)

		svc.timeFunc = time.Now
		_, err = svc.ValidateToken(context.Background(), signed)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestJWTServiceRequiresStrongSecret(t *testing.T) {
	t.Parallel()

	cfg := testAuthConfig()
	cfg.JWTSecret = "short"
	_, err := NewJWTService(cfg)
	assert.Error(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "student@example.com", "a-long-enough-password")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEmpty(t, token)
	assert.Empty(t, user.Password, "plaintext must not survive registration")

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, _, err := svc.Register(ctx, "student@example.com", "another-long-password")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("login with correct credentials", func(t *testing.T) {
		loggedIn, token, err := svc.Login(ctx, "student@example.com", "a-long-enough-password")
		require.NoError(t, err)
		assert.Equal(t, user.ID, loggedIn.ID)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "student@example.com", "wrong-password-entirely")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@example.com", "a-long-enough-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRegisterValidatesPassword(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, _, err := svc.Register(context.Background(), "student@example.com", "short")
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
}
