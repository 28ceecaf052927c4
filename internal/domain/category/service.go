package category

import (
	"context"
	"time"
)

// ExpenseReader is the slice of expense data access the category service
// needs. Implemented by the expense repository.
type ExpenseReader interface {
	CountByCategoryID(ctx context.Context, categoryID string) (int64, error)
	SumByCategoryID(ctx context.Context, categoryID string) (float64, error)
	SumByCategoryIDRange(ctx context.Context, categoryID string, from, to time.Time) (float64, error)
}

// Service contains the business logic for category operations. A category is
// only ever visible to its owner: lookups by another user report not-found
// rather than forbidden, so existence never leaks across tenants.
type Service struct {
	repo     Repository
	expenses ExpenseReader
}

func NewService(repo Repository, expenses ExpenseReader) *Service {
	return &Service{repo: repo, expenses: expenses}
}

func (s *Service) CreateCategory(ctx context.Context, userID int64, params CreateCategoryParams) (*Category, error) {
	if params.Color == "" {
		params.Color = DefaultColor
	}
	return s.repo.Create(ctx, userID, params)
}

// GetCategory retrieves a category by ID, scoped to the owning user.
func (s *Service) GetCategory(ctx context.Context, id string, userID int64) (*Category, error) {
	cat, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil || cat.UserID != userID {
		return nil, ErrCategoryNotFound
	}
	return cat, nil
}

func (s *Service) ListCategories(ctx context.Context, userID int64) ([]*Category, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *Service) UpdateCategory(ctx context.Context, id string, userID int64, params UpdateCategoryParams) (*Category, error) {
	if _, err := s.GetCategory(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, params)
}

// DeleteCategory removes a category after verifying ownership and that no
// expenses reference it. The expense count check happens here rather than via
// a database constraint so the caller gets a descriptive conflict.
func (s *Service) DeleteCategory(ctx context.Context, id string, userID int64) error {
	if _, err := s.GetCategory(ctx, id, userID); err != nil {
		return err
	}

	count, err := s.expenses.CountByCategoryID(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &InUseError{Count: count}
	}

	return s.repo.Delete(ctx, id)
}

// CategoryStats computes lifetime and current-calendar-month spend plus
// budget figures for one category.
func (s *Service) CategoryStats(ctx context.Context, id string, userID int64, now time.Time) (*Stats, error) {
	cat, err := s.GetCategory(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return s.statsFor(ctx, cat, now)
}

// ListCategoriesWithStats returns a user's categories, each paired with its
// spend and budget figures.
func (s *Service) ListCategoriesWithStats(ctx context.Context, userID int64, now time.Time) ([]*WithStats, error) {
	cats, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]*WithStats, 0, len(cats))
	for _, cat := range cats {
		stats, err := s.statsFor(ctx, cat, now)
		if err != nil {
			return nil, err
		}
		result = append(result, &WithStats{Category: cat, Stats: stats})
	}
	return result, nil
}

func (s *Service) statsFor(ctx context.Context, cat *Category, now time.Time) (*Stats, error) {
	total, err := s.expenses.SumByCategoryID(ctx, cat.ID)
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthTotal, err := s.expenses.SumByCategoryIDRange(ctx, cat.ID, monthStart, now)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Total: total, MonthTotal: monthTotal}
	if cat.Budget != nil {
		remaining := *cat.Budget - monthTotal
		utilization := monthTotal / *cat.Budget * 100
		stats.BudgetRemaining = &remaining
		stats.BudgetUtilization = &utilization
	}

	return stats, nil
}
