package services

import (
	"context"
	"fmt"
	"log/slog"

	"budget/internal/core"
	"budget/internal/storage"
)

// BudgetService sets monthly spending corridors and reports how the
// month is tracking against them.
type BudgetService struct {
	store *storage.Store
}

func NewBudgetService(store *storage.Store) *BudgetService {
	return &BudgetService{store: store}
}

// Set validates and stores the budget for its month-year key. Setting
// a month that already has a budget overwrites the thresholds.
func (s *BudgetService) Set(ctx context.Context, b core.Budget) (int64, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	id, err := s.store.SetBudget(ctx, b)
	if err != nil {
		return 0, fmt.Errorf("set budget: %w", err)
	}
	return id, nil
}

func (s *BudgetService) Remove(ctx context.Context, budgetID int64) error {
	if err := s.store.DeleteBudget(ctx, budgetID); err != nil {
		return fmt.Errorf("remove budget: %w", err)
	}
	return nil
}

// Status compares the month's spending against its budget. A month
// without a budget reports a nil Budget and level ok; callers must not
// assume a budget exists for every month.
func (s *BudgetService) Status(ctx context.Context, userID int64, monthYear string) (core.BudgetStatus, error) {
	start, end, err := core.MonthRange(monthYear)
	if err != nil {
		return core.BudgetStatus{}, fmt.Errorf("budget status: %w", err)
	}

	spent, err := s.store.TotalExpenses(ctx, userID, start, end)
	if err != nil {
		return core.BudgetStatus{}, fmt.Errorf("budget status: %w", err)
	}

	b, err := s.store.GetBudgetForMonth(ctx, userID, monthYear)
	if err != nil {
		return core.BudgetStatus{}, fmt.Errorf("budget status: %w", err)
	}

	status := core.BudgetStatus{MonthYear: monthYear, Spent: spent, Budget: b}
	if b != nil {
		status.Level = core.ClassifySpending(spent, b.MaxSpending)
		if status.Level >= core.BudgetWarning {
			slog.InfoContext(ctx, "Budget threshold reached",
				"user_id", userID,
				"month_year", monthYear,
				"spent", spent,
				"max_spending", b.MaxSpending,
				"level", status.Level.String())
		}
	}
	return status, nil
}

func (s *BudgetService) ForMonth(ctx context.Context, userID int64, monthYear string) (*core.Budget, error) {
	return s.store.GetBudgetForMonth(ctx, userID, monthYear)
}

func (s *BudgetService) ForYear(ctx context.Context, userID int64, year int) ([]core.Budget, error) {
	return s.store.GetBudgetsByYear(ctx, userID, year)
}

// Average is the mean of (min+max)/2 over all the user's budgets,
// zero when none exist.
func (s *BudgetService) Average(ctx context.Context, userID int64) (float64, error) {
	return s.store.AverageBudget(ctx, userID)
}
