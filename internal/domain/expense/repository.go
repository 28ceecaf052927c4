package expense

import (
	"context"
	"time"
)

// Repository defines the interface for expense data access. GetByID returns
// (nil, nil) when no row matches. Bulk operations are single set-based
// statements scoped by user id and return the affected row count.
type Repository interface {
	Create(ctx context.Context, userID int64, params CreateExpenseParams) (*Expense, error)
	GetByID(ctx context.Context, id string) (*Expense, error)
	List(ctx context.Context, userID int64, filter ListFilter) ([]*Expense, int, error)
	ListWithCategory(ctx context.Context, userID int64, from, to time.Time) ([]*WithCategory, error)
	Update(ctx context.Context, id string, params UpdateExpenseParams) (*Expense, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, userID int64, ids []string) (int64, error)
	BulkUpdateCategory(ctx context.Context, userID int64, ids []string, categoryID string) (int64, error)
	CountByCategoryID(ctx context.Context, categoryID string) (int64, error)
	SumByCategoryID(ctx context.Context, categoryID string) (float64, error)
	SumByCategoryIDRange(ctx context.Context, categoryID string, from, to time.Time) (float64, error)
}
