package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"budget/internal/core"
)

// SetBudget inserts the budget for (user, month-year), overwriting the
// thresholds when one already exists. The unique index makes the
// one-budget-per-month rule a schema fact rather than an ad hoc check.
// Returns the row id of the stored budget.
func (s *Store) SetBudget(ctx context.Context, b core.Budget) (int64, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, month_year, min_spending, max_spending)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, month_year)
		 DO UPDATE SET min_spending = excluded.min_spending,
		               max_spending = excluded.max_spending`,
		b.UserID, b.MonthYear, b.MinSpending, b.MaxSpending)
	if err != nil {
		return 0, storeErr("set budget", err)
	}

	// LastInsertId is unreliable across the upsert's update arm, so
	// read the id back by key.
	var id int64
	err = s.db.QueryRowContext(ctx,
		`SELECT budget_id FROM budgets WHERE user_id = ? AND month_year = ?`,
		b.UserID, b.MonthYear).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("set budget: read back id: %w", err)
	}

	slog.InfoContext(ctx, "Budget set",
		"budget_id", id,
		"user_id", b.UserID,
		"month_year", b.MonthYear,
		"min_spending", b.MinSpending,
		"max_spending", b.MaxSpending)
	return id, nil
}

func (s *Store) DeleteBudget(ctx context.Context, budgetID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE budget_id = ?`, budgetID)
	return storeErr("delete budget", err)
}

// DeleteAllBudgetsByUser bulk-deletes a user's budgets, e.g. before
// removing the account.
func (s *Store) DeleteAllBudgetsByUser(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE user_id = ?`, userID)
	return storeErr("delete budgets by user", err)
}

func (s *Store) GetBudgetByID(ctx context.Context, budgetID int64) (*core.Budget, error) {
	return s.scanBudget(s.db.QueryRowContext(ctx,
		selectBudget+` WHERE budget_id = ? LIMIT 1`, budgetID))
}

// GetBudgetForMonth returns the budget for the exact month-year key,
// or nil when none has been set.
func (s *Store) GetBudgetForMonth(ctx context.Context, userID int64, monthYear string) (*core.Budget, error) {
	return s.scanBudget(s.db.QueryRowContext(ctx,
		selectBudget+` WHERE user_id = ? AND month_year = ? LIMIT 1`,
		userID, monthYear))
}

func (s *Store) HasBudgetForMonth(ctx context.Context, userID int64, monthYear string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM budgets WHERE user_id = ? AND month_year = ?)`,
		userID, monthYear).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check budget exists: %w", err)
	}
	return exists, nil
}

func (s *Store) GetAllBudgetsByUser(ctx context.Context, userID int64) ([]core.Budget, error) {
	return s.queryBudgets(ctx,
		selectBudget+` WHERE user_id = ? ORDER BY month_year DESC`, userID)
}

// GetBudgetsByYear keys on the 4-digit year prefix of month_year.
func (s *Store) GetBudgetsByYear(ctx context.Context, userID int64, year int) ([]core.Budget, error) {
	return s.queryBudgets(ctx,
		selectBudget+` WHERE user_id = ? AND CAST(SUBSTR(month_year, 1, 4) AS INTEGER) = ?
		 ORDER BY month_year`,
		userID, year)
}

// AverageBudget is the mean of (min+max)/2 over all of the user's
// budgets. A user with no budgets averages to zero, never a fault.
func (s *Store) AverageBudget(ctx context.Context, userID int64) (float64, error) {
	var avg float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG((min_spending + max_spending) / 2), 0)
		 FROM budgets WHERE user_id = ?`,
		userID).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("average budget: %w", err)
	}
	return avg, nil
}

const selectBudget = `SELECT budget_id, user_id, month_year, min_spending, max_spending FROM budgets`

func (s *Store) scanBudget(row *sql.Row) (*core.Budget, error) {
	var b core.Budget
	err := row.Scan(&b.ID, &b.UserID, &b.MonthYear, &b.MinSpending, &b.MaxSpending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan budget: %w", err)
	}
	return &b, nil
}

func (s *Store) queryBudgets(ctx context.Context, query string, args ...any) ([]core.Budget, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.MonthYear, &b.MinSpending, &b.MaxSpending); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return budgets, nil
}
