package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"budget/internal/core"
)

// InsertCategory persists a new category and returns its assigned id.
// A name that already exists comes back as ErrDuplicate.
func (s *Store) InsertCategory(ctx context.Context, c core.Category) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (category_name) VALUES (?)`, c.Name)
	if err != nil {
		return 0, storeErr("insert category", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert category: last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Category created", "category_id", id, "name", c.Name)
	return id, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c core.Category) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE categories SET category_name = ? WHERE category_id = ?`,
		c.Name, c.ID)
	return storeErr("update category", err)
}

// DeleteCategory removes a category. The expenses foreign key is
// RESTRICT, so a category still referenced by expenses fails with
// ErrForeignKey instead of orphaning rows.
func (s *Store) DeleteCategory(ctx context.Context, categoryID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM categories WHERE category_id = ?`, categoryID)
	return storeErr("delete category", err)
}

func (s *Store) GetCategoryByID(ctx context.Context, categoryID int64) (*core.Category, error) {
	var c core.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT category_id, category_name FROM categories WHERE category_id = ? LIMIT 1`,
		categoryID).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category by id: %w", err)
	}
	return &c, nil
}

func (s *Store) GetAllCategories(ctx context.Context) ([]core.Category, error) {
	return s.queryCategories(ctx,
		`SELECT category_id, category_name FROM categories ORDER BY category_name`)
}

// SearchCategories returns categories whose name contains the search
// term, case-insensitively per SQLite LIKE semantics.
func (s *Store) SearchCategories(ctx context.Context, search string) ([]core.Category, error) {
	return s.queryCategories(ctx,
		`SELECT category_id, category_name FROM categories
		 WHERE category_name LIKE '%' || ? || '%' ORDER BY category_name`, search)
}

// IsCategoryExists is advisory; the unique index on category_name is
// what rejects a concurrent duplicate insert.
func (s *Store) IsCategoryExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE category_name = ?)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category exists: %w", err)
	}
	return exists, nil
}

func (s *Store) queryCategories(ctx context.Context, query string, args ...any) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}
