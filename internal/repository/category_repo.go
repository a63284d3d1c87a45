package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-expense-tracker/internal/model"
)

const categoryColumns = `id, user_id, type, name, parent_id, sort_order, is_active, created_at, updated_at`

type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func scanCategory(row pgx.Row) (model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Type, &c.Name, &c.ParentID,
		&c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListActive returns the user's active categories ordered for display.
// typ narrows to one side of the ledger when non-empty.
func (r *CategoryRepository) ListActive(ctx context.Context, userID string, typ string) ([]model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = $1 AND is_active`
	args := []any{userID}
	if typ != "" {
		query += ` AND type = $2`
		args = append(args, typ)
	}
	query += ` ORDER BY sort_order ASC, name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepository) FindByID(ctx context.Context, userID string, id string) (model.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND user_id = $2`, id, userID))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Category{}, model.ErrCategoryNotFound
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

// SiblingExists reports whether a sibling with the same name (case-insensitive)
// already exists under (owner, type, parent). excludeID skips the category
// being renamed.
func (r *CategoryRepository) SiblingExists(ctx context.Context, userID string, typ string, parentID *string, name string, excludeID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM categories
			WHERE user_id = $1 AND type = $2
			  AND parent_id IS NOT DISTINCT FROM $3
			  AND lower(name) = lower($4)
			  AND ($5 = '' OR id <> $5::uuid)
		)`, userID, typ, parentID, strings.TrimSpace(name), excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check sibling name: %w", err)
	}
	return exists, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c model.Category) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO categories (id, user_id, type, name, parent_id, sort_order, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.UserID, c.Type, c.Name, c.ParentID, c.SortOrder, c.IsActive, c.CreatedAt, c.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrSiblingNameTaken
	}
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, c model.Category) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories
		 SET type = $3, name = $4, parent_id = $5, sort_order = $6, is_active = $7, updated_at = $8
		 WHERE id = $1 AND user_id = $2`,
		c.ID, c.UserID, c.Type, c.Name, c.ParentID, c.SortOrder, c.IsActive, time.Now().UTC())
	if isUniqueViolation(err) {
		return model.ErrSiblingNameTaken
	}
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, userID string, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) CountChildren(ctx context.Context, userID string, id string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM categories WHERE user_id = $1 AND parent_id = $2`,
		userID, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}
	return count, nil
}

// CountEventsUsing counts expense events carrying this category's label.
// Events reference categories by name, not id, so usage is a label match.
func (r *CategoryRepository) CountEventsUsing(ctx context.Context, userID string, name string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM expense_events WHERE user_id = $1 AND category = $2`,
		userID, name).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events using category: %w", err)
	}
	return count, nil
}

func (r *CategoryRepository) HasAny(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user has categories: %w", err)
	}
	return exists, nil
}

func (r *CategoryRepository) FindRootByName(ctx context.Context, userID string, typ string, name string) (model.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE user_id = $1 AND type = $2 AND parent_id IS NULL AND name = $3`,
		userID, typ, name))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Category{}, model.ErrCategoryNotFound
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("find root category by name: %w", err)
	}
	return c, nil
}
