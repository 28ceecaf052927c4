package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"tally/internal/domain/expense"
)

type ExpenseRepository struct {
	db *DB
}

func NewExpenseRepository(db *DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

const expenseColumns = "id, user_id, category_id, amount, description, date, receipt_url, created_at, updated_at"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes pattern metacharacters so a search string matches as a
// literal substring under ILIKE.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanExpense(scanner interface{ Scan(...any) error }) (*expense.Expense, error) {
	var e expense.Expense
	err := scanner.Scan(
		&e.ID, &e.UserID, &e.CategoryID, &e.Amount, &e.Description, &e.Date,
		&e.ReceiptURL, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ExpenseRepository) Create(ctx context.Context, userID int64, params expense.CreateExpenseParams) (*expense.Expense, error) {
	query := `
		INSERT INTO expenses (id, user_id, category_id, amount, description, date, receipt_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + expenseColumns

	e, err := scanExpense(r.db.QueryRowContext(
		ctx, query,
		params.ID, userID, params.CategoryID, params.Amount, params.Description,
		params.Date, params.ReceiptURL,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	return e, nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*expense.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`

	e, err := scanExpense(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return e, nil
}

// List returns one page of a user's expenses plus the total count matching
// the filter.
func (r *ExpenseRepository) List(ctx context.Context, userID int64, filter expense.ListFilter) ([]*expense.Expense, int, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}

	addArg := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filter.CategoryID != nil {
		addArg("category_id = $%d", *filter.CategoryID)
	}
	if filter.From != nil {
		addArg("date >= $%d", *filter.From)
	}
	if filter.To != nil {
		addArg("date <= $%d", *filter.To)
	}
	if filter.Search != "" {
		addArg("description ILIKE '%%' || $%d || '%%'", escapeLike(filter.Search))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM expenses WHERE ` + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	// Sort column is restricted to a fixed set; never interpolate user input.
	orderColumn := "date"
	switch filter.SortBy {
	case expense.SortByAmount:
		orderColumn = "amount"
	case expense.SortByDescription:
		orderColumn = "description"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(
		`SELECT %s FROM expenses WHERE %s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d`,
		expenseColumns, whereClause, orderColumn, direction, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*expense.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating expenses: %w", err)
	}

	return expenses, total, nil
}

// ListWithCategory returns a user's expenses in [from, to] joined with their
// category display metadata, ordered by date ascending.
func (r *ExpenseRepository) ListWithCategory(ctx context.Context, userID int64, from, to time.Time) ([]*expense.WithCategory, error) {
	query := `
		SELECT e.id, e.user_id, e.category_id, e.amount, e.description, e.date,
		       e.receipt_url, e.created_at, e.updated_at,
		       c.name, c.color, c.icon
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = $1 AND e.date >= $2 AND e.date <= $3
		ORDER BY e.date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses with categories: %w", err)
	}
	defer rows.Close()

	var result []*expense.WithCategory
	for rows.Next() {
		var e expense.WithCategory
		err := rows.Scan(
			&e.ID, &e.UserID, &e.CategoryID, &e.Amount, &e.Description, &e.Date,
			&e.ReceiptURL, &e.CreatedAt, &e.UpdatedAt,
			&e.CategoryName, &e.CategoryColor, &e.CategoryIcon,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	return result, nil
}

func (r *ExpenseRepository) Update(ctx context.Context, id string, params expense.UpdateExpenseParams) (*expense.Expense, error) {
	query := `
		UPDATE expenses
		SET category_id = COALESCE($1, category_id),
		    amount = COALESCE($2, amount),
		    description = COALESCE($3, description),
		    date = COALESCE($4, date),
		    receipt_url = COALESCE($5, receipt_url),
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $6
		RETURNING ` + expenseColumns

	e, err := scanExpense(r.db.QueryRowContext(
		ctx, query,
		params.CategoryID, params.Amount, params.Description, params.Date,
		params.ReceiptURL, id,
	))
	if err == sql.ErrNoRows {
		return nil, expense.ErrExpenseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	return e, nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return expense.ErrExpenseNotFound
	}

	return nil
}

// BulkDelete removes all listed expenses owned by the user in one statement.
func (r *ExpenseRepository) BulkDelete(ctx context.Context, userID int64, ids []string) (int64, error) {
	query := `DELETE FROM expenses WHERE user_id = $1 AND id = ANY($2)`

	result, err := r.db.ExecContext(ctx, query, userID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to bulk delete expenses: %w", err)
	}

	return result.RowsAffected()
}

// BulkUpdateCategory moves all listed expenses owned by the user to another
// category in one statement.
func (r *ExpenseRepository) BulkUpdateCategory(ctx context.Context, userID int64, ids []string, categoryID string) (int64, error) {
	query := `
		UPDATE expenses
		SET category_id = $1, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $2 AND id = ANY($3)
	`

	result, err := r.db.ExecContext(ctx, query, categoryID, userID, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update expense category: %w", err)
	}

	return result.RowsAffected()
}

func (r *ExpenseRepository) CountByCategoryID(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses WHERE category_id = $1`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return count, nil
}

func (r *ExpenseRepository) SumByCategoryID(ctx context.Context, categoryID string) (float64, error) {
	var sum float64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE category_id = $1`, categoryID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return sum, nil
}

func (r *ExpenseRepository) SumByCategoryIDRange(ctx context.Context, categoryID string, from, to time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE category_id = $1 AND date >= $2 AND date <= $3
	`

	var sum float64
	if err := r.db.QueryRowContext(ctx, query, categoryID, from, to).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return sum, nil
}
