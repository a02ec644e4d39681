package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mingle/app/auth"
	"mingle/app/models"
	"mingle/app/repositories"

	"github.com/google/uuid"
)

// UserService registers users, logs them in and authenticates their tokens.
type UserService struct {
	users  repositories.UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenIssuer
	logger *slog.Logger
	now    func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(users repositories.UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenIssuer, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// Register stores a new user with a hashed password.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        models.NormalizeEmail(req.Email),
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, persistenceError("create user", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login checks the credentials and returns a signed token.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", persistenceError("find user", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	token, err := s.tokens.Issue(user.AuthContext())
	if err != nil {
		return "", err
	}
	s.logger.Debug("user logged in", "user_id", user.ID)
	return token, nil
}

// Authenticate resolves a token to the identity it was issued for.
func (s *UserService) Authenticate(ctx context.Context, token string) (models.AuthContext, error) {
	identity, err := s.tokens.Verify(token)
	if err != nil {
		return models.AuthContext{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return identity, nil
}
