package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// User is an account holder. Passwords are stored and compared as
	// plain text, matching the legacy schema this store migrates from.
	User struct {
		ID       int64
		Name     string
		Email    string
		Password string
	}

	// Category groups expenses. Names are unique across the store.
	Category struct {
		ID   int64
		Name string
	}

	// Expense is a single recorded spending. Date carries the calendar
	// day; Time is a display string ("HH:mm") and is not validated as a
	// clock value. PhotoPath optionally points at a receipt image on
	// disk; the store never interprets its contents.
	Expense struct {
		ID          int64
		UserID      int64
		CategoryID  int64
		Date        time.Time
		Time        string
		Description string
		Amount      float64
		PhotoPath   string
	}

	// Budget is the per-month spending corridor for a user. MonthYear is
	// a "yyyy-MM" key; at most one budget exists per (user, month).
	Budget struct {
		ID          int64
		UserID      int64
		MonthYear   string
		MinSpending float64
		MaxSpending float64
	}
)

var (
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidMonthYear = errors.New("invalid month-year key")
	ErrMinAboveMax      = errors.New("minimum spending cannot be greater than maximum")
	ErrMissingUser      = errors.New("missing user id")
	ErrMissingCategory  = errors.New("missing category id")
)

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	if !validEmail(u.Email) {
		return ErrInvalidEmail
	}
	if len(u.Password) < 6 {
		return ErrPasswordTooShort
	}
	return nil
}

// validEmail checks the minimal shape local@domain.tld. The form layer
// does the user-facing validation; this is the last line before insert.
func validEmail(s string) bool {
	at := strings.Index(s, "@")
	if at < 1 || at != strings.LastIndex(s, "@") {
		return false
	}
	domain := s[at+1:]
	dot := strings.LastIndex(domain, ".")
	if dot < 1 || dot == len(domain)-1 {
		return false
	}
	return !strings.ContainsAny(s, " \t\n")
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("category name too long (max 100 characters)")
	}
	return nil
}

func (e Expense) Validate() error {
	if e.UserID <= 0 {
		return ErrMissingUser
	}
	if e.CategoryID <= 0 {
		return ErrMissingCategory
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if e.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (b Budget) Validate() error {
	if b.UserID <= 0 {
		return ErrMissingUser
	}
	if _, _, err := ParseMonthKey(b.MonthYear); err != nil {
		return ErrInvalidMonthYear
	}
	if b.MinSpending < 0 || b.MaxSpending < 0 {
		return ErrInvalidAmount
	}
	if b.MinSpending > b.MaxSpending {
		return ErrMinAboveMax
	}
	return nil
}

// Day truncates t to its calendar day in local time. Expense dates are
// stored at day resolution so range queries line up with month bounds.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// NewDate builds a local calendar day.
func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
}
