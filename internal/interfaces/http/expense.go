package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"tally/internal/cache"
	"tally/internal/domain/category"
	"tally/internal/domain/expense"
	"tally/internal/shared/validate"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

type ExpenseHandler struct {
	repo       expense.Repository
	categories *category.Service
	views      *cache.Views
}

func NewExpenseHandler(repo expense.Repository, categories *category.Service, views *cache.Views) *ExpenseHandler {
	return &ExpenseHandler{repo: repo, categories: categories, views: views}
}

type CreateExpenseRequest struct {
	CategoryID  string  `json:"categoryId"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	ReceiptURL  *string `json:"receiptUrl,omitempty"`
}

type UpdateExpenseRequest struct {
	CategoryID  *string  `json:"categoryId,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Description *string  `json:"description,omitempty"`
	Date        *string  `json:"date,omitempty"`
	ReceiptURL  *string  `json:"receiptUrl,omitempty"`
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

type BulkCategoryRequest struct {
	IDs        []string `json:"ids"`
	CategoryID string   `json:"categoryId"`
}

// parseDate accepts RFC 3339 timestamps or bare ISO dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// HandleExpenses routes collection requests by method.
func (h *ExpenseHandler) HandleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListExpenses(w, r)
	case http.MethodPost:
		h.handleCreateExpense(w, r)
	default:
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleExpenseByID routes requests for a specific expense.
func (h *ExpenseHandler) HandleExpenseByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGetExpense(w, r)
	case http.MethodPut:
		h.handleUpdateExpense(w, r)
	case http.MethodDelete:
		h.handleDeleteExpense(w, r)
	default:
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// getOwned loads an expense and reports not-found when it is missing or owned
// by a different user, so existence never leaks across tenants.
func (h *ExpenseHandler) getOwned(r *http.Request, id string, userID int64) (*expense.Expense, error) {
	e, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if e == nil || e.UserID != userID {
		return nil, nil
	}
	return e, nil
}

func (h *ExpenseHandler) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	q := r.URL.Query()
	filter := expense.ListFilter{
		Search:   q.Get("q"),
		SortBy:   expense.SortByDate,
		SortDesc: true,
		Limit:    defaultPageSize,
	}

	if v := q.Get("categoryId"); v != "" {
		filter.CategoryID = &v
	}
	if v := q.Get("from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid from date")
			return
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid to date")
			return
		}
		filter.To = &t
	}
	switch v := q.Get("sortBy"); v {
	case "", expense.SortByDate:
	case expense.SortByAmount, expense.SortByDescription:
		filter.SortBy = v
	default:
		respondError(w, http.StatusBadRequest, "Invalid sort field")
		return
	}
	if v := q.Get("order"); v != "" {
		filter.SortDesc = v == "desc"
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "Invalid offset")
			return
		}
		filter.Offset = n
	}

	if body, ok := h.views.Get(userID, cache.ViewExpenses, r.URL.RawQuery); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
		return
	}

	expenses, total, err := h.repo.List(r.Context(), userID, filter)
	if err != nil {
		log.Printf("Error listing expenses for user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to list expenses")
		return
	}
	if expenses == nil {
		expenses = []*expense.Expense{}
	}

	result := expense.ListResult{
		Expenses: expenses,
		Total:    total,
		HasMore:  filter.Offset+len(expenses) < total,
	}

	body, err := json.Marshal(result)
	if err != nil {
		log.Printf("Error encoding expenses for user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to list expenses")
		return
	}
	h.views.Set(userID, cache.ViewExpenses, r.URL.RawQuery, body)

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// HandleRecentExpenses returns the user's latest expenses, newest first.
func (h *ExpenseHandler) HandleRecentExpenses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		if n > defaultPageSize {
			n = defaultPageSize
		}
		limit = n
	}

	expenses, _, err := h.repo.List(r.Context(), userID, expense.ListFilter{
		SortBy:   expense.SortByDate,
		SortDesc: true,
		Limit:    limit,
	})
	if err != nil {
		log.Printf("Error listing recent expenses for user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to list expenses")
		return
	}
	if expenses == nil {
		expenses = []*expense.Expense{}
	}

	respondJSON(w, http.StatusOK, expenses)
}

// HandleSearchExpenses matches expense descriptions case-insensitively
// against the q parameter, newest first.
func (h *ExpenseHandler) HandleSearchExpenses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	q := r.URL.Query().Get("q")
	if q == "" {
		respondFieldErrors(w, map[string][]string{
			"q": {"Search query is required"},
		})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		if n > defaultPageSize {
			n = defaultPageSize
		}
		limit = n
	}

	expenses, _, err := h.repo.List(r.Context(), userID, expense.ListFilter{
		Search:   q,
		SortBy:   expense.SortByDate,
		SortDesc: true,
		Limit:    limit,
	})
	if err != nil {
		log.Printf("Error searching expenses for user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to search expenses")
		return
	}
	if expenses == nil {
		expenses = []*expense.Expense{}
	}

	respondJSON(w, http.StatusOK, expenses)
}

// checkCategory verifies the category exists and belongs to the user,
// reporting the failure as a field error on categoryId.
func (h *ExpenseHandler) checkCategory(r *http.Request, categoryID string, userID int64) (bool, error) {
	_, err := h.categories.GetCategory(r.Context(), categoryID, userID)
	if errors.Is(err, category.ErrCategoryNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (h *ExpenseHandler) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	params := expense.CreateExpenseParams{
		ID:          uuid.New().String(),
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Description: req.Description,
		ReceiptURL:  req.ReceiptURL,
	}
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			respondFieldErrors(w, map[string][]string{"date": {"Date format is invalid"}})
			return
		}
		params.Date = date
	}

	if errs := params.Validate(time.Now()); errs.HasErrors() {
		respondFieldErrors(w, errs)
		return
	}

	owned, err := h.checkCategory(r, params.CategoryID, userID)
	if err != nil {
		log.Printf("Error checking category %s for user %d: %v", params.CategoryID, userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to create expense")
		return
	}
	if !owned {
		respondFieldErrors(w, map[string][]string{"categoryId": {"Invalid category"}})
		return
	}

	e, err := h.repo.Create(r.Context(), userID, params)
	if err != nil {
		log.Printf("Error creating expense for user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to create expense")
		return
	}

	h.views.Invalidate(userID, cache.ViewExpenses, cache.ViewDashboard)
	respondData(w, http.StatusCreated, e)
}

func (h *ExpenseHandler) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	e, err := h.getOwned(r, r.PathValue("id"), userID)
	if err != nil {
		log.Printf("Error getting expense %s: %v", r.PathValue("id"), err)
		respondError(w, http.StatusInternalServerError, "Failed to get expense")
		return
	}
	if e == nil {
		respondError(w, http.StatusNotFound, "Expense not found")
		return
	}

	respondJSON(w, http.StatusOK, e)
}

func (h *ExpenseHandler) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	params := expense.UpdateExpenseParams{
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Description: req.Description,
		ReceiptURL:  req.ReceiptURL,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			respondFieldErrors(w, map[string][]string{"date": {"Date format is invalid"}})
			return
		}
		params.Date = &date
	}

	if errs := params.Validate(time.Now()); errs.HasErrors() {
		respondFieldErrors(w, errs)
		return
	}

	existing, err := h.getOwned(r, r.PathValue("id"), userID)
	if err != nil {
		log.Printf("Error getting expense %s: %v", r.PathValue("id"), err)
		respondError(w, http.StatusInternalServerError, "Failed to update expense")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "Expense not found")
		return
	}

	if params.CategoryID != nil && *params.CategoryID != existing.CategoryID {
		owned, err := h.checkCategory(r, *params.CategoryID, userID)
		if err != nil {
			log.Printf("Error checking category %s for user %d: %v", *params.CategoryID, userID, err)
			respondError(w, http.StatusInternalServerError, "Failed to update expense")
			return
		}
		if !owned {
			respondFieldErrors(w, map[string][]string{"categoryId": {"Invalid category"}})
			return
		}
	}

	e, err := h.repo.Update(r.Context(), existing.ID, params)
	if err != nil {
		if errors.Is(err, expense.ErrExpenseNotFound) {
			respondError(w, http.StatusNotFound, "Expense not found")
			return
		}
		log.Printf("Error updating expense %s for user %d: %v", existing.ID, userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to update expense")
		return
	}

	h.views.Invalidate(userID, cache.ViewExpenses, cache.ViewDashboard)
	respondData(w, http.StatusOK, e)
}

func (h *ExpenseHandler) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	existing, err := h.getOwned(r, r.PathValue("id"), userID)
	if err != nil {
		log.Printf("Error getting expense %s for deletion: %v", r.PathValue("id"), err)
		respondError(w, http.StatusInternalServerError, "Failed to delete expense")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "Expense not found")
		return
	}

	if err := h.repo.Delete(r.Context(), existing.ID); err != nil {
		if errors.Is(err, expense.ErrExpenseNotFound) {
			respondError(w, http.StatusNotFound, "Expense not found")
			return
		}
		log.Printf("Error deleting expense %s for user %d: %v", existing.ID, userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to delete expense")
		return
	}

	h.views.Invalidate(userID, cache.ViewExpenses, cache.ViewDashboard)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDuplicateExpense creates a copy of an expense dated now, with
// " (copy)" appended to the description.
func (h *ExpenseHandler) HandleDuplicateExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	existing, err := h.getOwned(r, r.PathValue("id"), userID)
	if err != nil {
		log.Printf("Error getting expense %s for duplication: %v", r.PathValue("id"), err)
		respondError(w, http.StatusInternalServerError, "Failed to duplicate expense")
		return
	}
	if existing == nil {
		respondError(w, http.StatusNotFound, "Expense not found")
		return
	}

	// Keep the copied description within the 255-char limit.
	const copySuffix = " (copy)"
	description := existing.Description
	if len(description)+len(copySuffix) > 255 {
		description = description[:255-len(copySuffix)]
	}

	copyParams := expense.CreateExpenseParams{
		ID:          uuid.New().String(),
		CategoryID:  existing.CategoryID,
		Amount:      existing.Amount,
		Description: description + copySuffix,
		Date:        time.Now(),
		ReceiptURL:  existing.ReceiptURL,
	}

	e, err := h.repo.Create(r.Context(), userID, copyParams)
	if err != nil {
		log.Printf("Error duplicating expense %s for user %d: %v", existing.ID, userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to duplicate expense")
		return
	}

	h.views.Invalidate(userID, cache.ViewExpenses, cache.ViewDashboard)
	respondData(w, http.StatusCreated, e)
}

// HandleBulkDelete removes a set of the user's expenses in one statement and
// reports how many rows were actually deleted.
func (h *ExpenseHandler) HandleBulkDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		respondFieldErrors(w, map[string][]string{"ids": {"At least one expense ID is required"}})
		return
	}

	count, err := h.repo.BulkDelete(r.Context(), userID, req.IDs)
	if err != nil {
		log.Printf("Error bulk deleting expenses for user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to delete expenses")
		return
	}

	h.views.Invalidate(userID, cache.ViewExpenses, cache.ViewDashboard)
	respondCount(w, count)
}

// HandleBulkCategory moves a set of the user's expenses to another category.
func (h *ExpenseHandler) HandleBulkCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req BulkCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		respondFieldErrors(w, map[string][]string{"ids": {"At least one expense ID is required"}})
		return
	}
	if !validate.UUID(req.CategoryID) {
		respondFieldErrors(w, map[string][]string{"categoryId": {"Category ID format is invalid"}})
		return
	}

	owned, err := h.checkCategory(r, req.CategoryID, userID)
	if err != nil {
		log.Printf("Error checking category %s for user %d: %v", req.CategoryID, userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to update expenses")
		return
	}
	if !owned {
		respondFieldErrors(w, map[string][]string{"categoryId": {"Invalid category"}})
		return
	}

	count, err := h.repo.BulkUpdateCategory(r.Context(), userID, req.IDs, req.CategoryID)
	if err != nil {
		log.Printf("Error bulk updating expense category for user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to update expenses")
		return
	}

	h.views.Invalidate(userID, cache.ViewExpenses, cache.ViewDashboard)
	respondCount(w, count)
}
