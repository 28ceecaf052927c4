package category

import "context"

// Repository defines the interface for category data access. GetByID returns
// (nil, nil) when no row matches. Create and Update return ErrDuplicateName
// when the (user, name) uniqueness constraint is violated.
type Repository interface {
	Create(ctx context.Context, userID int64, params CreateCategoryParams) (*Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Category, error)
	Update(ctx context.Context, id string, params UpdateCategoryParams) (*Category, error)
	Delete(ctx context.Context, id string) error
}
