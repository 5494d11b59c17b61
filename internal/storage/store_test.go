package storage

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"budget/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "budget.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustInsertUser(t *testing.T, s *Store, email string) int64 {
	t.Helper()
	id, err := s.InsertUser(context.Background(), core.User{
		Name: "Test User", Email: email, Password: "secret1",
	})
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

func mustInsertCategory(t *testing.T, s *Store, name string) int64 {
	t.Helper()
	id, err := s.InsertCategory(context.Background(), core.Category{Name: name})
	if err != nil {
		t.Fatalf("insert category %q: %v", name, err)
	}
	return id
}

func mustInsertExpense(t *testing.T, s *Store, e core.Expense) int64 {
	t.Helper()
	id, err := s.InsertExpense(context.Background(), e)
	if err != nil {
		t.Fatalf("insert expense: %v", err)
	}
	return id
}

func TestInsertUserAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := mustInsertUser(t, s, "ann@x.com")
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	u, err := s.GetUserByID(ctx, id)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u == nil || u.Name != "Test User" || u.Email != "ann@x.com" || u.Password != "secret1" {
		t.Fatalf("unexpected user %+v", u)
	}

	byEmail, err := s.GetUserByEmail(ctx, "ann@x.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail == nil || byEmail.ID != id {
		t.Fatalf("unexpected user by email %+v", byEmail)
	}

	missing, err := s.GetUserByID(ctx, 9999)
	if err != nil {
		t.Fatalf("lookup of missing user should not error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing user, got %+v", missing)
	}
}

func TestEmailUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustInsertUser(t, s, "ann@x.com")

	taken, err := s.IsEmailTaken(ctx, "ann@x.com")
	if err != nil || !taken {
		t.Fatalf("expected email taken, got %v %v", taken, err)
	}
	if taken, _ := s.IsEmailTaken(ctx, "bob@x.com"); taken {
		t.Fatalf("unused email reported taken")
	}

	// Bypassing the advisory check must still fail at the index.
	_, err = s.InsertUser(ctx, core.User{Name: "Imposter", Email: "ann@x.com", Password: "hunter2"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := mustInsertUser(t, s, "ann@x.com")

	u, err := s.Login(ctx, "ann@x.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u == nil || u.ID != id {
		t.Fatalf("expected user %d, got %+v", id, u)
	}

	wrong, err := s.Login(ctx, "ann@x.com", "wrong")
	if err != nil {
		t.Fatalf("bad credentials should not error: %v", err)
	}
	if wrong != nil {
		t.Fatalf("expected nil for wrong password, got %+v", wrong)
	}
}

func TestCategoryUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustInsertCategory(t, s, "Food")

	// Two inserts with the same name simulate the check-then-insert
	// race; the unique index commits at most one.
	_, err := s.InsertCategory(ctx, core.Category{Name: "Food"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	exists, err := s.IsCategoryExists(ctx, "Food")
	if err != nil || !exists {
		t.Fatalf("expected category exists, got %v %v", exists, err)
	}

	all, err := s.GetAllCategories(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one Food row, got %d", len(all))
	}
}

func TestSearchCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Food", "Fast Food", "Transport"} {
		mustInsertCategory(t, s, name)
	}

	got, err := s.SearchCategories(ctx, "Food")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
}

func TestCategoryDeleteRestricted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := mustInsertUser(t, s, "ann@x.com")
	catID := mustInsertCategory(t, s, "Food")
	expID := mustInsertExpense(t, s, core.Expense{
		UserID: userID, CategoryID: catID,
		Date: core.NewDate(2024, 3, 15), Time: "12:30",
		Description: "Lunch", Amount: 12.50,
	})

	if err := s.DeleteCategory(ctx, catID); !errors.Is(err, ErrForeignKey) {
		t.Fatalf("expected ErrForeignKey while referenced, got %v", err)
	}

	if err := s.DeleteExpense(ctx, expID); err != nil {
		t.Fatalf("delete expense: %v", err)
	}
	if err := s.DeleteCategory(ctx, catID); err != nil {
		t.Fatalf("delete after dereference: %v", err)
	}
}

func TestExpenseRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := mustInsertUser(t, s, "ann@x.com")
	catID := mustInsertCategory(t, s, "Food")

	in := core.Expense{
		UserID:      userID,
		CategoryID:  catID,
		Date:        core.NewDate(2024, 3, 15),
		Time:        "12:30",
		Description: "Lunch",
		Amount:      12.50,
		PhotoPath:   "/photos/EXPENSE_1.jpg",
	}
	id := mustInsertExpense(t, s, in)
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	out, err := s.GetExpenseByID(ctx, id)
	if err != nil {
		t.Fatalf("get expense: %v", err)
	}
	if out == nil {
		t.Fatalf("expected expense, got nil")
	}
	if out.ID != id || out.UserID != in.UserID || out.CategoryID != in.CategoryID ||
		!out.Date.Equal(in.Date) || out.Time != in.Time ||
		out.Description != in.Description || out.Amount != in.Amount ||
		out.PhotoPath != in.PhotoPath {
		t.Fatalf("round trip mismatch: in %+v out %+v", in, out)
	}

	// Absent photo stays empty, not a scan failure.
	noPhoto := in
	noPhoto.PhotoPath = ""
	id2 := mustInsertExpense(t, s, noPhoto)
	out2, err := s.GetExpenseByID(ctx, id2)
	if err != nil || out2 == nil {
		t.Fatalf("get expense without photo: %v", err)
	}
	if out2.PhotoPath != "" {
		t.Fatalf("expected empty photo path, got %q", out2.PhotoPath)
	}
}

func TestExpenseInsertUnknownParents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.InsertExpense(ctx, core.Expense{
		UserID: 42, CategoryID: 7,
		Date: core.NewDate(2024, 3, 15), Description: "orphan", Amount: 1,
	})
	if !errors.Is(err, ErrForeignKey) {
		t.Fatalf("expected ErrForeignKey, got %v", err)
	}
}

func TestTotalExpensesInclusiveRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := mustInsertUser(t, s, "ann@x.com")
	catID := mustInsertCategory(t, s, "Food")

	add := func(day int, amount float64) {
		mustInsertExpense(t, s, core.Expense{
			UserID: userID, CategoryID: catID,
			Date: core.NewDate(2024, 3, day), Description: "x", Amount: amount,
		})
	}
	add(1, 10)  // range start boundary
	add(15, 20) // inside
	add(31, 30) // range end boundary
	mustInsertExpense(t, s, core.Expense{ // outside
		UserID: userID, CategoryID: catID,
		Date: core.NewDate(2024, 4, 1), Description: "x", Amount: 99,
	})

	start, end, err := core.MonthRange("2024-03")
	if err != nil {
		t.Fatalf("month range: %v", err)
	}
	total, err := s.TotalExpenses(ctx, userID, start, end)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 60 {
		t.Fatalf("expected inclusive total 60, got %v", total)
	}

	// No matching rows is zero, not absent.
	empty, err := s.TotalExpenses(ctx, userID, core.NewDate(2020, 1, 1), core.NewDate(2020, 1, 31))
	if err != nil {
		t.Fatalf("empty range: %v", err)
	}
	if empty != 0 {
		t.Fatalf("expected 0 for empty range, got %v", empty)
	}
}

func TestExpenseSumByCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := mustInsertUser(t, s, "ann@x.com")
	food := mustInsertCategory(t, s, "Food")
	transport := mustInsertCategory(t, s, "Transport")
	unused := mustInsertCategory(t, s, "Travel")

	for _, e := range []struct {
		cat    int64
		amount float64
	}{{food, 12.5}, {food, 7.5}, {transport, 30}} {
		mustInsertExpense(t, s, core.Expense{
			UserID: userID, CategoryID: e.cat,
			Date: core.NewDate(2024, 3, 10), Description: "x", Amount: e.amount,
		})
	}

	start, end, _ := core.MonthRange("2024-03")
	sums, err := s.ExpenseSumByCategory(ctx, userID, start, end)
	if err != nil {
		t.Fatalf("sums: %v", err)
	}

	if _, ok := sums[unused]; ok {
		t.Fatalf("category with no expenses must be absent, not zero")
	}
	if sums[food] != 20 || sums[transport] != 30 {
		t.Fatalf("unexpected sums %+v", sums)
	}

	total, err := s.TotalExpenses(ctx, userID, start, end)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	var sumOfSums float64
	for _, v := range sums {
		sumOfSums += v
	}
	if math.Abs(sumOfSums-total) > 1e-9 {
		t.Fatalf("sum of category sums %v != total %v", sumOfSums, total)
	}
}

func TestBudgetForMonthAbsent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := mustInsertUser(t, s, "ann@x.com")
	b, err := s.GetBudgetForMonth(ctx, userID, "2024-03")
	if err != nil {
		t.Fatalf("absent budget should not error: %v", err)
	}
	if b != nil {
		t.Fatalf("expected nil, got %+v", b)
	}

	has, err := s.HasBudgetForMonth(ctx, userID, "2024-03")
	if err != nil || has {
		t.Fatalf("expected no budget, got %v %v", has, err)
	}
}

func TestBudgetUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := mustInsertUser(t, s, "ann@x.com")

	first, err := s.SetBudget(ctx, core.Budget{
		UserID: userID, MonthYear: "2024-03", MinSpending: 100, MaxSpending: 500,
	})
	if err != nil {
		t.Fatalf("set budget: %v", err)
	}
	if first <= 0 {
		t.Fatalf("expected positive id, got %d", first)
	}

	// Second set for the same month overwrites, never duplicates.
	second, err := s.SetBudget(ctx, core.Budget{
		UserID: userID, MonthYear: "2024-03", MinSpending: 200, MaxSpending: 800,
	})
	if err != nil {
		t.Fatalf("overwrite budget: %v", err)
	}
	if second != first {
		t.Fatalf("overwrite changed id: %d -> %d", first, second)
	}

	all, err := s.GetAllBudgetsByUser(ctx, userID)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one row per (user, month), got %d", len(all))
	}
	if all[0].MinSpending != 200 || all[0].MaxSpending != 800 {
		t.Fatalf("thresholds not overwritten: %+v", all[0])
	}

	// Same month for a different user is its own row.
	otherID := mustInsertUser(t, s, "bob@x.com")
	if _, err := s.SetBudget(ctx, core.Budget{
		UserID: otherID, MonthYear: "2024-03", MinSpending: 1, MaxSpending: 2,
	}); err != nil {
		t.Fatalf("other user's budget: %v", err)
	}
}

func TestAverageBudget(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := mustInsertUser(t, s, "ann@x.com")

	avg, err := s.AverageBudget(ctx, userID)
	if err != nil {
		t.Fatalf("average with no budgets should not fault: %v", err)
	}
	if avg != 0 {
		t.Fatalf("expected 0 with no budgets, got %v", avg)
	}

	// (100+500)/2 = 300, (200+800)/2 = 500 -> mean 400.
	for _, b := range []core.Budget{
		{UserID: userID, MonthYear: "2024-03", MinSpending: 100, MaxSpending: 500},
		{UserID: userID, MonthYear: "2024-04", MinSpending: 200, MaxSpending: 800},
	} {
		if _, err := s.SetBudget(ctx, b); err != nil {
			t.Fatalf("set budget: %v", err)
		}
	}

	avg, err = s.AverageBudget(ctx, userID)
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if avg != 400 {
		t.Fatalf("expected 400, got %v", avg)
	}
}

func TestBudgetsByYear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := mustInsertUser(t, s, "ann@x.com")
	for _, key := range []string{"2023-12", "2024-01", "2024-07"} {
		if _, err := s.SetBudget(ctx, core.Budget{
			UserID: userID, MonthYear: key, MinSpending: 1, MaxSpending: 2,
		}); err != nil {
			t.Fatalf("set budget %s: %v", key, err)
		}
	}

	got, err := s.GetBudgetsByYear(ctx, userID, 2024)
	if err != nil {
		t.Fatalf("budgets by year: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 budgets in 2024, got %d", len(got))
	}
	if got[0].MonthYear != "2024-01" || got[1].MonthYear != "2024-07" {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestDeleteUserRequiresExplicitBulkDeletes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := mustInsertUser(t, s, "ann@x.com")
	catID := mustInsertCategory(t, s, "Food")
	mustInsertExpense(t, s, core.Expense{
		UserID: userID, CategoryID: catID,
		Date: core.NewDate(2024, 3, 1), Description: "x", Amount: 5,
	})
	if _, err := s.SetBudget(ctx, core.Budget{
		UserID: userID, MonthYear: "2024-03", MinSpending: 0, MaxSpending: 100,
	}); err != nil {
		t.Fatalf("set budget: %v", err)
	}

	// Nothing cascades: the user row is pinned by its dependents.
	if err := s.DeleteUser(ctx, userID); !errors.Is(err, ErrForeignKey) {
		t.Fatalf("expected ErrForeignKey, got %v", err)
	}

	if err := s.DeleteAllExpensesByUser(ctx, userID); err != nil {
		t.Fatalf("bulk delete expenses: %v", err)
	}
	if err := s.DeleteAllBudgetsByUser(ctx, userID); err != nil {
		t.Fatalf("bulk delete budgets: %v", err)
	}
	if err := s.DeleteUser(ctx, userID); err != nil {
		t.Fatalf("delete user after cleanup: %v", err)
	}

	u, err := s.GetUserByID(ctx, userID)
	if err != nil || u != nil {
		t.Fatalf("expected user gone, got %+v %v", u, err)
	}
}

func TestListingOrders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := mustInsertUser(t, s, "ann@x.com")
	catID := mustInsertCategory(t, s, "Food")
	for _, day := range []int{5, 20, 10} {
		mustInsertExpense(t, s, core.Expense{
			UserID: userID, CategoryID: catID,
			Date: core.NewDate(2024, 3, day), Description: "x", Amount: 1,
		})
	}

	all, err := s.GetAllExpensesByUser(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 expenses, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Date.After(all[i-1].Date) {
			t.Fatalf("expected date DESC order, got %v before %v", all[i-1].Date, all[i].Date)
		}
	}

	byCat, err := s.GetExpensesByCategory(ctx, userID, catID)
	if err != nil || len(byCat) != 3 {
		t.Fatalf("by category: %v, n=%d", err, len(byCat))
	}
}

// End-to-end scenario from the product brief: register Ann, record a
// lunch, and the March total is exactly that lunch.
func TestMarchLunchScenario(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID, err := s.InsertUser(ctx, core.User{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("insert Ann: %v", err)
	}
	catID := mustInsertCategory(t, s, "Food")
	mustInsertExpense(t, s, core.Expense{
		UserID: userID, CategoryID: catID,
		Date: core.NewDate(2024, 3, 15), Time: "12:30",
		Description: "Lunch", Amount: 12.50,
	})

	total, err := s.TotalExpenses(ctx, userID, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31))
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 12.50 {
		t.Fatalf("expected 12.50, got %v", total)
	}
}

func TestUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := mustInsertUser(t, s, "ann@x.com")
	catID := mustInsertCategory(t, s, "Food")
	otherCat := mustInsertCategory(t, s, "Transport")

	if err := s.UpdateUser(ctx, core.User{
		ID: userID, Name: "Ann Renamed", Email: "ann2@x.com", Password: "newpass1",
	}); err != nil {
		t.Fatalf("update user: %v", err)
	}
	u, err := s.GetUserByID(ctx, userID)
	if err != nil || u == nil {
		t.Fatalf("get user: %v", err)
	}
	if u.Name != "Ann Renamed" || u.Email != "ann2@x.com" {
		t.Fatalf("user not updated: %+v", u)
	}

	if err := s.UpdateCategory(ctx, core.Category{ID: catID, Name: "Groceries"}); err != nil {
		t.Fatalf("update category: %v", err)
	}
	c, err := s.GetCategoryByID(ctx, catID)
	if err != nil || c == nil || c.Name != "Groceries" {
		t.Fatalf("category not updated: %+v %v", c, err)
	}

	expID := mustInsertExpense(t, s, core.Expense{
		UserID: userID, CategoryID: catID,
		Date: core.NewDate(2024, 3, 10), Time: "09:15",
		Description: "Bread", Amount: 3.5,
	})
	if err := s.UpdateExpense(ctx, core.Expense{
		ID: expID, UserID: userID, CategoryID: otherCat,
		Date: core.NewDate(2024, 3, 11), Time: "10:00",
		Description: "Bus pass", Amount: 30,
	}); err != nil {
		t.Fatalf("update expense: %v", err)
	}
	e, err := s.GetExpenseByID(ctx, expID)
	if err != nil || e == nil {
		t.Fatalf("get expense: %v", err)
	}
	if e.CategoryID != otherCat || e.Description != "Bus pass" || e.Amount != 30 {
		t.Fatalf("expense not updated: %+v", e)
	}
	if e.Date.Format(core.DateFormat) != "2024-03-11" {
		t.Fatalf("expense date not updated: %v", e.Date)
	}
}

func TestBudgetLookupAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := mustInsertUser(t, s, "ann@x.com")
	id, err := s.SetBudget(ctx, core.Budget{
		UserID: userID, MonthYear: "2024-03", MinSpending: 100, MaxSpending: 400,
	})
	if err != nil {
		t.Fatalf("set budget: %v", err)
	}

	b, err := s.GetBudgetByID(ctx, id)
	if err != nil || b == nil {
		t.Fatalf("get budget by id: %v", err)
	}
	if b.MonthYear != "2024-03" || b.MaxSpending != 400 {
		t.Fatalf("unexpected budget %+v", b)
	}

	if err := s.DeleteBudget(ctx, id); err != nil {
		t.Fatalf("delete budget: %v", err)
	}
	b, err = s.GetBudgetByID(ctx, id)
	if err != nil || b != nil {
		t.Fatalf("expected budget gone, got %+v %v", b, err)
	}
	has, err := s.HasBudgetForMonth(ctx, userID, "2024-03")
	if err != nil || has {
		t.Fatalf("expected no budget for month, got %v %v", has, err)
	}
}

func TestGetExpensesByDateRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := mustInsertUser(t, s, "ann@x.com")
	catID := mustInsertCategory(t, s, "Food")
	for _, day := range []int{5, 15, 25} {
		mustInsertExpense(t, s, core.Expense{
			UserID: userID, CategoryID: catID,
			Date: core.NewDate(2024, 3, day), Description: "x", Amount: 10,
		})
	}

	got, err := s.GetExpensesByDateRange(ctx, userID, core.NewDate(2024, 3, 5), core.NewDate(2024, 3, 15))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 expenses in range, got %d", len(got))
	}
	for _, e := range got {
		if e.Date.Day() == 25 {
			t.Fatalf("expense outside range returned: %+v", e)
		}
	}
}
