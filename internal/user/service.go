package user

import (
	"context"
	"errors"
	"time"

	"item_catalog/internal/apperror"
	"item_catalog/internal/auth"
	"item_catalog/internal/observability"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceInterface interface {
	Register(ctx context.Context, username, password string) (*User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type TokenIssuer interface {
	Issue(userID, username string) (string, error)
}

type UserService struct {
	repo    Repository
	tokens  TokenIssuer
	metrics *observability.Metrics
}

func NewUserService(repo Repository, tokens TokenIssuer, metrics *observability.Metrics) UserServiceInterface {
	return &UserService{
		repo:    repo,
		tokens:  tokens,
		metrics: metrics,
	}
}

// Register hashes the password and stores a new user.
func (s *UserService) Register(ctx context.Context, username, password string) (*User, error) {
	hashedPassword, err := auth.GeneratePasswordHash(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperror.BadRequest("Password too long", err)
		}
		return nil, apperror.Store("Error saving user", err)
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}

	start := time.Now()
	err = s.repo.Create(ctx, user)
	s.metrics.ObserveStore("users.create", time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, apperror.Conflict("Username already exists", err)
		}
		return nil, apperror.Store("Error saving user", err)
	}

	s.metrics.IncUserRegistered()
	return user, nil
}

// Login checks the credentials and issues a token. Unknown usernames and
// wrong passwords produce the same error.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	start := time.Now()
	user, err := s.repo.GetByUsername(ctx, username)
	s.metrics.ObserveStore("users.get", time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.metrics.IncLogin("invalid_credentials")
			return "", apperror.InvalidCredentials()
		}
		s.metrics.IncLogin("error")
		return "", apperror.Store("Error finding user", err)
	}

	if err := auth.ComparePasswordHash([]byte(user.PasswordHash), password); err != nil {
		logrus.WithField("username", username).Debug("Password mismatch")
		s.metrics.IncLogin("invalid_credentials")
		return "", apperror.InvalidCredentials()
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		s.metrics.IncLogin("error")
		return "", apperror.Store("Error issuing token", err)
	}

	s.metrics.IncLogin("success")
	return token, nil
}
