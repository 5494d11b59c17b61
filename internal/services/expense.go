package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budget/internal/core"
	"budget/internal/storage"
)

var ErrUnknownCategory = errors.New("unknown category")

const receiptPrefix = "EXPENSE_"

// ExpenseService records and removes expenses and shepherds their
// receipt photos. The store only ever sees the photo path; file
// contents are opaque.
type ExpenseService struct {
	store       *storage.Store
	receiptsDir string
}

func NewExpenseService(store *storage.Store, receiptsDir string) *ExpenseService {
	return &ExpenseService{store: store, receiptsDir: receiptsDir}
}

// Add validates and persists an expense. When receiptSrc names a file,
// it is copied into the receipts directory first and the stored row
// points at the copy. A failed insert cleans the copy up.
func (s *ExpenseService) Add(ctx context.Context, e core.Expense, receiptSrc string) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	cat, err := s.store.GetCategoryByID(ctx, e.CategoryID)
	if err != nil {
		return 0, fmt.Errorf("add expense: %w", err)
	}
	if cat == nil {
		return 0, ErrUnknownCategory
	}

	if receiptSrc != "" {
		path, err := s.copyReceipt(receiptSrc)
		if err != nil {
			return 0, fmt.Errorf("add expense: %w", err)
		}
		e.PhotoPath = path
	}

	id, err := s.store.InsertExpense(ctx, e)
	if err != nil {
		if e.PhotoPath != "" {
			if rmErr := os.Remove(e.PhotoPath); rmErr != nil {
				slog.WarnContext(ctx, "Failed to remove receipt after insert failure",
					"path", e.PhotoPath, "error", rmErr)
			}
		}
		return 0, fmt.Errorf("add expense: %w", err)
	}
	return id, nil
}

// Remove deletes the expense row, then best-effort deletes its receipt
// file. A missing file is not a failure.
func (s *ExpenseService) Remove(ctx context.Context, expenseID int64) error {
	e, err := s.store.GetExpenseByID(ctx, expenseID)
	if err != nil {
		return fmt.Errorf("remove expense: %w", err)
	}
	if e == nil {
		return ErrNotFound
	}

	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return fmt.Errorf("remove expense: %w", err)
	}

	if e.PhotoPath != "" {
		if err := os.Remove(e.PhotoPath); err != nil && !os.IsNotExist(err) {
			slog.WarnContext(ctx, "Failed to remove receipt photo",
				"expense_id", expenseID, "path", e.PhotoPath, "error", err)
		}
	}

	slog.InfoContext(ctx, "Expense removed", "expense_id", expenseID)
	return nil
}

func (s *ExpenseService) ListByRange(ctx context.Context, userID int64, start, end time.Time) ([]core.Expense, error) {
	return s.store.GetExpensesByDateRange(ctx, userID, start, end)
}

func (s *ExpenseService) ListByCategory(ctx context.Context, userID, categoryID int64) ([]core.Expense, error) {
	return s.store.GetExpensesByCategory(ctx, userID, categoryID)
}

func (s *ExpenseService) ListAll(ctx context.Context, userID int64) ([]core.Expense, error) {
	return s.store.GetAllExpensesByUser(ctx, userID)
}

// copyReceipt places a copy of src in the receipts directory under a
// collision-free EXPENSE_<nanos> name, keeping the source extension.
func (s *ExpenseService) copyReceipt(src string) (string, error) {
	if err := os.MkdirAll(s.receiptsDir, 0755); err != nil {
		return "", fmt.Errorf("create receipts directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open receipt source: %w", err)
	}
	defer in.Close()

	ext := filepath.Ext(src)
	if ext == "" {
		ext = ".jpg"
	}
	dst := filepath.Join(s.receiptsDir,
		fmt.Sprintf("%s%d%s", receiptPrefix, time.Now().UnixNano(), ext))

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create receipt copy: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("copy receipt: %w", err)
	}
	return dst, nil
}
