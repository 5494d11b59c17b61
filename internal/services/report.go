package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"budget/internal/core"
	"budget/internal/storage"
)

// ReportService computes read-only summaries for dashboards. Nothing
// here mutates state; every call recomputes from the store.
type ReportService struct {
	store *storage.Store
}

func NewReportService(store *storage.Store) *ReportService {
	return &ReportService{store: store}
}

// MonthOverview totals a month and breaks it down by category, joining
// category names in. Categories with no spending in the month do not
// appear at all.
func (s *ReportService) MonthOverview(ctx context.Context, userID int64, monthYear string) (core.MonthOverview, error) {
	start, end, err := core.MonthRange(monthYear)
	if err != nil {
		return core.MonthOverview{}, fmt.Errorf("month overview: %w", err)
	}
	return s.rangeOverview(ctx, userID, monthYear, start, end)
}

// RangeOverview is the same breakdown over an arbitrary inclusive
// date range.
func (s *ReportService) RangeOverview(ctx context.Context, userID int64, start, end time.Time) (core.MonthOverview, error) {
	label := start.Format(core.DateFormat) + ".." + end.Format(core.DateFormat)
	return s.rangeOverview(ctx, userID, label, start, end)
}

func (s *ReportService) rangeOverview(ctx context.Context, userID int64, label string, start, end time.Time) (core.MonthOverview, error) {
	overview := core.MonthOverview{MonthYear: label}

	total, err := s.store.TotalExpenses(ctx, userID, start, end)
	if err != nil {
		return overview, fmt.Errorf("total expenses: %w", err)
	}
	overview.Total = total

	sums, err := s.store.ExpenseSumByCategory(ctx, userID, start, end)
	if err != nil {
		return overview, fmt.Errorf("category sums: %w", err)
	}
	if len(sums) == 0 {
		return overview, nil
	}

	categories, err := s.store.GetAllCategories(ctx)
	if err != nil {
		return overview, fmt.Errorf("load categories: %w", err)
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	for id, sum := range sums {
		overview.ByCategory = append(overview.ByCategory, core.CategorySum{
			CategoryID: id,
			Name:       names[id],
			Total:      sum,
		})
	}
	sort.Slice(overview.ByCategory, func(i, j int) bool {
		return overview.ByCategory[i].Total > overview.ByCategory[j].Total
	})
	return overview, nil
}

// RangeTotal sums spending over [start, end] inclusive; zero when no
// expenses match.
func (s *ReportService) RangeTotal(ctx context.Context, userID int64, start, end time.Time) (float64, error) {
	return s.store.TotalExpenses(ctx, userID, start, end)
}
