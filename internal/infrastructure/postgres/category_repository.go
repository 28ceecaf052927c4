package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"tally/internal/domain/category"
)

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

type CategoryRepository struct {
	db *DB
}

func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, userID int64, params category.CreateCategoryParams) (*category.Category, error) {
	query := `
		INSERT INTO categories (id, user_id, name, color, icon, budget)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, name, color, icon, budget, created_at, updated_at
	`

	var c category.Category
	err := r.db.QueryRowContext(
		ctx, query,
		uuid.New().String(), userID, params.Name, params.Color, params.Icon, params.Budget,
	).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Color, &c.Icon, &c.Budget,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, category.ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return &c, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*category.Category, error) {
	query := `
		SELECT id, user_id, name, color, icon, budget, created_at, updated_at
		FROM categories
		WHERE id = $1
	`

	var c category.Category
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Color, &c.Icon, &c.Budget,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &c, nil
}

func (r *CategoryRepository) ListByUserID(ctx context.Context, userID int64) ([]*category.Category, error) {
	query := `
		SELECT id, user_id, name, color, icon, budget, created_at, updated_at
		FROM categories
		WHERE user_id = $1
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*category.Category
	for rows.Next() {
		var c category.Category
		err := rows.Scan(
			&c.ID, &c.UserID, &c.Name, &c.Color, &c.Icon, &c.Budget,
			&c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id string, params category.UpdateCategoryParams) (*category.Category, error) {
	query := `
		UPDATE categories
		SET name = COALESCE($1, name),
		    color = COALESCE($2, color),
		    icon = COALESCE($3, icon),
		    budget = COALESCE($4, budget),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
		RETURNING id, user_id, name, color, icon, budget, created_at, updated_at
	`

	var c category.Category
	err := r.db.QueryRowContext(
		ctx, query,
		params.Name, params.Color, params.Icon, params.Budget, id,
	).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Color, &c.Icon, &c.Budget,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, category.ErrCategoryNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, category.ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return &c, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return category.ErrCategoryNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
