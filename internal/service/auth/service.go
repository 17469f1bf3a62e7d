package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/N1etZsch3/Novi-sub000/internal/domain"
	"github.com/N1etZsch3/Novi-sub000/internal/platform/logger"
	"github.com/N1etZsch3/Novi-sub000/internal/store"
)

// Service handles user registration and login.
type Service struct {
	users     store.UserStore
	passwords PasswordVerifier
	tokens    JWTService
	logger    *slog.Logger
}

// NewService creates the authentication service.
func NewService(users store.UserStore, passwords PasswordVerifier, tokens JWTService, log *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, errors.New("user store cannot be nil")
	}
	if passwords == nil {
		return nil, errors.New("password verifier cannot be nil")
	}
	if tokens == nil {
		return nil, errors.New("jwt service cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    log.With(slog.String("component", "auth_service")),
	}, nil
}

// Register creates a new user account and returns the user with a signed
// access token. Returns ErrEmailTaken when the email is already in use;
// domain validation errors pass through unchanged.
func (s *Service) Register(ctx context.Context, email, password string) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, password)
	if err != nil {
		return nil, "", err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	log.Info("user registered",
		slog.String("user_id", user.ID.String()))
	return user, token, nil
}

// Login verifies the credentials and returns the user with a signed
// access token. An unknown email and a wrong password are both reported
// as ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := s.passwords.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login failed: password mismatch",
			slog.String("user_id", user.ID.String()))
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	log.Info("user logged in",
		slog.String("user_id", user.ID.String()))
	return user, token, nil
}
