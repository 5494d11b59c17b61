// budget-seed fills the store with demo data: one user, a set of
// categories, a few months of expenses and budgets. Useful for trying
// the CLI against something other than an empty database.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"budget/internal/cli"
	"budget/internal/config"
	"budget/internal/core"
	"budget/internal/storage"
)

var demoCategories = []string{
	"Food", "Transport", "Housing", "Health", "Entertainment", "Clothing", "Travel",
}

func main() {
	months := flag.Int("months", 3, "number of past months to fill")
	perMonth := flag.Int("per-month", 12, "expenses per month")
	email := flag.String("email", "demo@example.com", "email of the seeded user")
	password := flag.String("password", "demo123", "password of the seeded user")
	flag.Parse()

	cli.LoadEnvFile()
	cfg := config.Load()
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := cli.SetupLogger(level)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store := cli.OpenStore(logger, cfg.DBPath)
	defer store.Close()

	ctx := context.Background()
	if err := seed(ctx, store, *email, *password, *months, *perMonth); err != nil {
		logger.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("seeded %d months of data for %s (password %q)\n", *months, *email, *password)
}

func seed(ctx context.Context, store *storage.Store, email, password string, months, perMonth int) error {
	userID, err := seedUser(ctx, store, email, password)
	if err != nil {
		return err
	}

	categoryIDs, err := seedCategories(ctx, store)
	if err != nil {
		return err
	}

	now := time.Now()
	for m := 0; m < months; m++ {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local).AddDate(0, -m, 0)
		if err := seedMonth(ctx, store, userID, categoryIDs, monthStart, perMonth); err != nil {
			return err
		}
	}
	return nil
}

func seedUser(ctx context.Context, store *storage.Store, email, password string) (int64, error) {
	if existing, err := store.GetUserByEmail(ctx, email); err != nil {
		return 0, err
	} else if existing != nil {
		return existing.ID, nil
	}
	return store.InsertUser(ctx, core.User{
		Name:     gofakeit.Name(),
		Email:    email,
		Password: password,
	})
}

func seedCategories(ctx context.Context, store *storage.Store) ([]int64, error) {
	ids := make([]int64, 0, len(demoCategories))
	for _, name := range demoCategories {
		id, err := store.InsertCategory(ctx, core.Category{Name: name})
		if err != nil {
			// Already seeded on a previous run.
			existing, lookErr := store.SearchCategories(ctx, name)
			if lookErr != nil || len(existing) == 0 {
				return nil, err
			}
			id = existing[0].ID
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func seedMonth(ctx context.Context, store *storage.Store, userID int64, categoryIDs []int64, monthStart time.Time, perMonth int) error {
	daysInMonth := monthStart.AddDate(0, 1, -1).Day()

	for i := 0; i < perMonth; i++ {
		day := monthStart.AddDate(0, 0, rand.Intn(daysInMonth))
		e := core.Expense{
			UserID:      userID,
			CategoryID:  categoryIDs[rand.Intn(len(categoryIDs))],
			Date:        day,
			Time:        fmt.Sprintf("%02d:%02d", rand.Intn(24), rand.Intn(60)),
			Description: gofakeit.ProductName(),
			Amount:      gofakeit.Price(1, 250),
		}
		if _, err := store.InsertExpense(ctx, e); err != nil {
			return err
		}
	}

	min := gofakeit.Price(200, 500)
	_, err := store.SetBudget(ctx, core.Budget{
		UserID:      userID,
		MonthYear:   core.MonthKeyOf(monthStart),
		MinSpending: min,
		MaxSpending: min + gofakeit.Price(100, 1500),
	})
	return err
}
