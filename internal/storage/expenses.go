package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"budget/internal/core"
)

// InsertExpense persists a new expense and returns its assigned id.
// Referencing a missing user or category fails at the foreign keys.
func (s *Store) InsertExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, category_id, date, time, description, amount, photo_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.CategoryID, dayString(e.Date), e.Time, e.Description, e.Amount,
		nullString(e.PhotoPath))
	if err != nil {
		return 0, storeErr("insert expense", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert expense: last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", id,
		"user_id", e.UserID,
		"category_id", e.CategoryID,
		"amount", e.Amount,
		"date", dayString(e.Date))
	return id, nil
}

func (s *Store) UpdateExpense(ctx context.Context, e core.Expense) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE expenses SET user_id = ?, category_id = ?, date = ?, time = ?,
		        description = ?, amount = ?, photo_path = ?
		 WHERE expense_id = ?`,
		e.UserID, e.CategoryID, dayString(e.Date), e.Time, e.Description, e.Amount,
		nullString(e.PhotoPath), e.ID)
	return storeErr("update expense", err)
}

func (s *Store) DeleteExpense(ctx context.Context, expenseID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE expense_id = ?`, expenseID)
	return storeErr("delete expense", err)
}

// DeleteAllExpensesByUser bulk-deletes a user's expenses, e.g. before
// removing the account.
func (s *Store) DeleteAllExpensesByUser(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE user_id = ?`, userID)
	if err != nil {
		return storeErr("delete expenses by user", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		slog.InfoContext(ctx, "Expenses deleted", "user_id", userID, "count", n)
	}
	return nil
}

func (s *Store) GetExpenseByID(ctx context.Context, expenseID int64) (*core.Expense, error) {
	rows, err := s.queryExpenses(ctx,
		selectExpense+` WHERE expense_id = ? LIMIT 1`, expenseID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *Store) GetAllExpensesByUser(ctx context.Context, userID int64) ([]core.Expense, error) {
	return s.queryExpenses(ctx,
		selectExpense+` WHERE user_id = ? ORDER BY date DESC, expense_id DESC`, userID)
}

// GetExpensesByDateRange lists a user's expenses with a date inside
// [start, end], both ends inclusive.
func (s *Store) GetExpensesByDateRange(ctx context.Context, userID int64, start, end time.Time) ([]core.Expense, error) {
	return s.queryExpenses(ctx,
		selectExpense+` WHERE user_id = ? AND date BETWEEN ? AND ?
		 ORDER BY date DESC, expense_id DESC`,
		userID, dayString(start), dayString(end))
}

func (s *Store) GetExpensesByCategory(ctx context.Context, userID, categoryID int64) ([]core.Expense, error) {
	return s.queryExpenses(ctx,
		selectExpense+` WHERE user_id = ? AND category_id = ?
		 ORDER BY date DESC, expense_id DESC`,
		userID, categoryID)
}

// TotalExpenses sums amounts over [start, end] inclusive. No matching
// rows is zero, never an absent result.
func (s *Store) TotalExpenses(ctx context.Context, userID int64, start, end time.Time) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses
		 WHERE user_id = ? AND date BETWEEN ? AND ?`,
		userID, dayString(start), dayString(end)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total expenses: %w", err)
	}
	return total, nil
}

// ExpenseSumByCategory groups the same window by category. Categories
// with no expenses in range are absent from the map, not zero-valued.
func (s *Store) ExpenseSumByCategory(ctx context.Context, userID int64, start, end time.Time) (map[int64]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category_id, SUM(amount) FROM expenses
		 WHERE user_id = ? AND date BETWEEN ? AND ?
		 GROUP BY category_id`,
		userID, dayString(start), dayString(end))
	if err != nil {
		return nil, fmt.Errorf("expense sum by category: %w", err)
	}
	defer rows.Close()

	sums := make(map[int64]float64)
	for rows.Next() {
		var categoryID int64
		var total float64
		if err := rows.Scan(&categoryID, &total); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		sums[categoryID] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category sums: %w", err)
	}
	return sums, nil
}

const selectExpense = `SELECT expense_id, user_id, category_id, date, time, description, amount, photo_path FROM expenses`

func (s *Store) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e     core.Expense
			day   string
			photo sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.CategoryID, &day, &e.Time,
			&e.Description, &e.Amount, &photo); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if e.Date, err = parseDay(day); err != nil {
			return nil, err
		}
		e.PhotoPath = photo.String
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
