package service

import (
	"context"
	"errors"
	"fmt"

	pkg_hash "github.com/isys3001/todo-backend/internal/hash"
	"github.com/isys3001/todo-backend/internal/logging"
	"github.com/isys3001/todo-backend/internal/models"
	"github.com/isys3001/todo-backend/internal/repo"
	"github.com/isys3001/todo-backend/internal/tokens"
)

// dummyHash is a bcrypt digest of a throwaway string. Login compares
// against it when the email is unknown, so both failure causes cost one
// bcrypt comparison and respond with the same error.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.TokenService
}

func (h *AuthService) Register(ctx context.Context, email, password string) error {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if email == "" || password == "" {
		return fmt.Errorf("email and password are required: %w", ErrValidation)
	}

	pwHash, err := pkg_hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return err
	}

	user := models.User{
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}

	if err := h.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 409, "reason", "email already registered")
			return fmt.Errorf("email already registered: %w", ErrConflict)
		}
		l.Error("register_error", "status", 500, "error", err)
		return err
	}

	l.Info("register_success")
	return nil
}

func (h *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := h.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			pkg_hash.CheckPassword(dummyHash, password)
			l.Warn("login_failed", "status", 401)
			return "", ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return "", err
	}

	if !pkg_hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401)
		return "", ErrInvalidCredentials
	}

	token, err := h.Tokens.Issue(user.Email)
	if err != nil {
		l.Error("login_failed", "status", 500, "error", err)
		return "", err
	}

	l.Info("login_success")
	return token, nil
}

// Authenticate resolves a bearer token to its principal. A user deleted
// between issuance and use is unauthenticated, not a server error.
func (h *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	subject, err := h.Tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", ErrInvalidCredentials)
	}

	user, err := h.Repo.FindUserByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, fmt.Errorf("subject no longer exists: %w", ErrInvalidCredentials)
		}
		return nil, err
	}

	return user, nil
}
