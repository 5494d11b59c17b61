// Package services holds the application services the UI glue calls:
// validation in front, gateway access behind, one failure returned to
// the caller with no retries.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budget/internal/core"
	"budget/internal/session"
	"budget/internal/storage"
)

var (
	ErrEmailTaken         = errors.New("this email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrNotFound           = errors.New("not found")
)

// AuthService handles registration, login and account removal, and
// keeps the session file in step with the store.
type AuthService struct {
	store   *storage.Store
	session *session.Manager
}

func NewAuthService(store *storage.Store, session *session.Manager) *AuthService {
	return &AuthService{store: store, session: session}
}

// Register validates and creates a new user, then opens a session for
// it. The email pre-check is advisory; the store's unique index is
// what finally rejects a duplicate.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*core.User, error) {
	u := core.User{Name: name, Email: email, Password: password}
	if err := u.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.store.IsEmailTaken(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	id, err := s.store.InsertUser(ctx, u)
	if errors.Is(err, storage.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	u.ID = id

	if err := s.session.Create(u); err != nil {
		return nil, fmt.Errorf("register: open session: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "user_id", id, "email", email)
	return &u, nil
}

// Login matches email and password against the store (plain text, as
// the legacy schema does) and opens a session on success.
func (s *AuthService) Login(ctx context.Context, email, password string) (*core.User, error) {
	u, err := s.store.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.session.Create(*u); err != nil {
		return nil, fmt.Errorf("login: open session: %w", err)
	}

	slog.InfoContext(ctx, "User logged in", "user_id", u.ID, "email", u.Email)
	return u, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.session.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	slog.InfoContext(ctx, "User logged out")
	return nil
}

// CurrentUser resolves the session file back to a stored user.
func (s *AuthService) CurrentUser(ctx context.Context) (*core.User, error) {
	sess, err := s.session.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	if !sess.LoggedIn {
		return nil, ErrNotLoggedIn
	}
	u, err := s.store.GetUserByID(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	if u == nil {
		// Stale session pointing at a removed user.
		if err := s.session.Clear(); err != nil {
			return nil, fmt.Errorf("current user: clear stale session: %w", err)
		}
		return nil, ErrNotLoggedIn
	}
	return u, nil
}

// DeleteAccount removes a user and everything they own. The store does
// not cascade, so dependents go first: expenses, budgets, then the
// user row, then the session if it belongs to the removed account.
func (s *AuthService) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.store.DeleteAllExpensesByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if err := s.store.DeleteAllBudgetsByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	if sess, err := s.session.Current(); err == nil && sess.UserID == userID {
		if err := s.session.Clear(); err != nil {
			return fmt.Errorf("delete account: clear session: %w", err)
		}
	}

	slog.InfoContext(ctx, "Account deleted", "user_id", userID)
	return nil
}
