package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"budget/internal/core"
)

// InsertUser persists a new user and returns its assigned id.
// A taken email comes back as ErrDuplicate.
func (s *Store) InsertUser(ctx context.Context, u core.User) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password) VALUES (?, ?, ?)`,
		u.Name, u.Email, u.Password)
	if err != nil {
		return 0, storeErr("insert user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert user: last insert id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", id, "email", u.Email)
	return id, nil
}

func (s *Store) UpdateUser(ctx context.Context, u core.User) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, password = ? WHERE user_id = ?`,
		u.Name, u.Email, u.Password, u.ID)
	return storeErr("update user", err)
}

// DeleteUser removes the user row only. Expenses and budgets are not
// cascaded; callers delete those first via DeleteAllExpensesByUser and
// DeleteAllBudgetsByUser, otherwise the delete fails with ErrForeignKey.
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, userID)
	return storeErr("delete user", err)
}

func (s *Store) GetUserByID(ctx context.Context, userID int64) (*core.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT user_id, name, email, password FROM users WHERE user_id = ? LIMIT 1`,
		userID))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT user_id, name, email, password FROM users WHERE email = ? LIMIT 1`,
		email))
}

// Login returns the user matching both email and password, or nil when
// the credentials do not match any row. The comparison is plain text,
// as in the legacy schema.
func (s *Store) Login(ctx context.Context, email, password string) (*core.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT user_id, name, email, password FROM users WHERE email = ? AND password = ? LIMIT 1`,
		email, password))
}

// IsEmailTaken is an advisory existence check; the unique index on
// email is what actually rejects a concurrent duplicate insert.
func (s *Store) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check email taken: %w", err)
	}
	return taken, nil
}

func (s *Store) scanUser(row *sql.Row) (*core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
