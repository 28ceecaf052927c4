package category

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tally/internal/shared/validate"
)

// DefaultColor is applied when a category is created without a color.
const DefaultColor = "#3B82F6"

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrDuplicateName    = errors.New("a category with this name already exists")
)

// InUseError blocks deletion of a category that still owns expenses.
type InUseError struct {
	Count int64
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("category still has %d expense(s) assigned to it", e.Count)
}

type Category struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"-"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      *string   `json:"icon,omitempty"`
	Budget    *float64  `json:"budget,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stats summarizes spending against a category. BudgetRemaining and
// BudgetUtilization are nil when the category has no budget configured.
type Stats struct {
	Total             float64  `json:"total"`
	MonthTotal        float64  `json:"monthTotal"`
	BudgetRemaining   *float64 `json:"budgetRemaining"`
	BudgetUtilization *float64 `json:"budgetUtilization"`
}

// WithStats pairs a category with its spend figures for list responses.
type WithStats struct {
	*Category
	Stats *Stats `json:"stats"`
}

type CreateCategoryParams struct {
	Name   string
	Color  string
	Icon   *string
	Budget *float64
}

func (p *CreateCategoryParams) Validate() validate.Errors {
	errs := validate.Errors{}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		errs.Add("name", "Name is required")
	} else if len(name) < 2 || len(name) > 50 {
		errs.Add("name", "Name must be between 2 and 50 characters")
	}

	if p.Color != "" && !validate.HexColor(p.Color) {
		errs.Add("color", "Color must be a hex value like #3B82F6")
	}

	if p.Icon != nil && len(*p.Icon) > 10 {
		errs.Add("icon", "Icon must be 10 characters or less")
	}

	if p.Budget != nil && !validate.Amount(*p.Budget) {
		errs.Add("budget", "Budget must be a positive amount with at most 2 decimal places")
	}

	return errs
}

type UpdateCategoryParams struct {
	Name   *string
	Color  *string
	Icon   *string
	Budget *float64
}

func (p *UpdateCategoryParams) Validate() validate.Errors {
	errs := validate.Errors{}

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if len(name) < 2 || len(name) > 50 {
			errs.Add("name", "Name must be between 2 and 50 characters")
		}
	}

	if p.Color != nil && !validate.HexColor(*p.Color) {
		errs.Add("color", "Color must be a hex value like #3B82F6")
	}

	if p.Icon != nil && len(*p.Icon) > 10 {
		errs.Add("icon", "Icon must be 10 characters or less")
	}

	if p.Budget != nil && !validate.Amount(*p.Budget) {
		errs.Add("budget", "Budget must be a positive amount with at most 2 decimal places")
	}

	return errs
}
