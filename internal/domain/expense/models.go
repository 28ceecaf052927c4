package expense

import (
	"errors"
	"strings"
	"time"

	"tally/internal/shared/validate"
)

var ErrExpenseNotFound = errors.New("expense not found")

// Sort fields accepted by List.
const (
	SortByDate        = "date"
	SortByAmount      = "amount"
	SortByDescription = "description"
)

type Expense struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"-"`
	CategoryID  string    `json:"categoryId"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	ReceiptURL  *string   `json:"receiptUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// WithCategory joins an expense with the display metadata of its category,
// used by the stats aggregations.
type WithCategory struct {
	Expense
	CategoryName  string  `json:"categoryName"`
	CategoryColor string  `json:"categoryColor"`
	CategoryIcon  *string `json:"categoryIcon,omitempty"`
}

type CreateExpenseParams struct {
	ID          string
	CategoryID  string
	Amount      float64
	Description string
	Date        time.Time
	ReceiptURL  *string
}

func (p *CreateExpenseParams) Validate(now time.Time) validate.Errors {
	errs := validate.Errors{}

	if !validate.Amount(p.Amount) {
		errs.Add("amount", "Amount must be a positive value with at most 2 decimal places")
	}

	desc := strings.TrimSpace(p.Description)
	if desc == "" {
		errs.Add("description", "Description is required")
	} else if len(desc) > 255 {
		errs.Add("description", "Description must be 255 characters or less")
	}

	if p.Date.IsZero() {
		errs.Add("date", "Date is required")
	} else if !validate.NotFuture(p.Date, now) {
		errs.Add("date", "Date cannot be in the future")
	}

	if p.CategoryID == "" {
		errs.Add("categoryId", "Category is required")
	} else if !validate.UUID(p.CategoryID) {
		errs.Add("categoryId", "Category ID format is invalid")
	}

	return errs
}

type UpdateExpenseParams struct {
	CategoryID  *string
	Amount      *float64
	Description *string
	Date        *time.Time
	ReceiptURL  *string
}

func (p *UpdateExpenseParams) Validate(now time.Time) validate.Errors {
	errs := validate.Errors{}

	if p.Amount != nil && !validate.Amount(*p.Amount) {
		errs.Add("amount", "Amount must be a positive value with at most 2 decimal places")
	}

	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		if desc == "" {
			errs.Add("description", "Description cannot be empty")
		} else if len(desc) > 255 {
			errs.Add("description", "Description must be 255 characters or less")
		}
	}

	if p.Date != nil && !validate.NotFuture(*p.Date, now) {
		errs.Add("date", "Date cannot be in the future")
	}

	if p.CategoryID != nil && !validate.UUID(*p.CategoryID) {
		errs.Add("categoryId", "Category ID format is invalid")
	}

	return errs
}

// ListFilter selects, orders, and pages a user's expenses.
type ListFilter struct {
	CategoryID *string
	From       *time.Time
	To         *time.Time
	Search     string
	SortBy     string
	SortDesc   bool
	Limit      int
	Offset     int
}

// ListResult carries one page of expenses plus the total match count.
type ListResult struct {
	Expenses []*Expense `json:"expenses"`
	Total    int        `json:"total"`
	HasMore  bool       `json:"hasMore"`
}
