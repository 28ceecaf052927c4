package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tally/internal/cache"
	"tally/internal/domain/category"
	"tally/internal/domain/expense"
	"tally/internal/shared/middleware"
)

const testCategoryID = "7e6f3f64-9f2e-4f5b-9d3a-1c2b3a4d5e6f"

// MockExpenseRepo implements expense.Repository for testing
type MockExpenseRepo struct {
	CreateFunc             func(ctx context.Context, userID int64, params expense.CreateExpenseParams) (*expense.Expense, error)
	GetByIDFunc            func(ctx context.Context, id string) (*expense.Expense, error)
	ListFunc               func(ctx context.Context, userID int64, filter expense.ListFilter) ([]*expense.Expense, int, error)
	ListWithCategoryFunc   func(ctx context.Context, userID int64, from, to time.Time) ([]*expense.WithCategory, error)
	UpdateFunc             func(ctx context.Context, id string, params expense.UpdateExpenseParams) (*expense.Expense, error)
	DeleteFunc             func(ctx context.Context, id string) error
	BulkDeleteFunc         func(ctx context.Context, userID int64, ids []string) (int64, error)
	BulkUpdateCategoryFunc func(ctx context.Context, userID int64, ids []string, categoryID string) (int64, error)
}

func (m *MockExpenseRepo) Create(ctx context.Context, userID int64, params expense.CreateExpenseParams) (*expense.Expense, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, params)
	}
	return nil, nil
}

func (m *MockExpenseRepo) GetByID(ctx context.Context, id string) (*expense.Expense, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockExpenseRepo) List(ctx context.Context, userID int64, filter expense.ListFilter) ([]*expense.Expense, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, filter)
	}
	return nil, 0, nil
}

func (m *MockExpenseRepo) ListWithCategory(ctx context.Context, userID int64, from, to time.Time) ([]*expense.WithCategory, error) {
	if m.ListWithCategoryFunc != nil {
		return m.ListWithCategoryFunc(ctx, userID, from, to)
	}
	return nil, nil
}

func (m *MockExpenseRepo) Update(ctx context.Context, id string, params expense.UpdateExpenseParams) (*expense.Expense, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return nil, nil
}

func (m *MockExpenseRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockExpenseRepo) BulkDelete(ctx context.Context, userID int64, ids []string) (int64, error) {
	if m.BulkDeleteFunc != nil {
		return m.BulkDeleteFunc(ctx, userID, ids)
	}
	return 0, nil
}

func (m *MockExpenseRepo) BulkUpdateCategory(ctx context.Context, userID int64, ids []string, categoryID string) (int64, error) {
	if m.BulkUpdateCategoryFunc != nil {
		return m.BulkUpdateCategoryFunc(ctx, userID, ids, categoryID)
	}
	return 0, nil
}

func (m *MockExpenseRepo) CountByCategoryID(ctx context.Context, categoryID string) (int64, error) {
	return 0, nil
}

func (m *MockExpenseRepo) SumByCategoryID(ctx context.Context, categoryID string) (float64, error) {
	return 0, nil
}

func (m *MockExpenseRepo) SumByCategoryIDRange(ctx context.Context, categoryID string, from, to time.Time) (float64, error) {
	return 0, nil
}

// ownedCategoryRepo returns a category repo where every lookup resolves to a
// category owned by user 1.
func ownedCategoryRepo() *MockCategoryRepo {
	return &MockCategoryRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*category.Category, error) {
			return &category.Category{ID: id, UserID: 1, Name: "Groceries"}, nil
		},
	}
}

func newExpenseHandler(repo *MockExpenseRepo, catRepo *MockCategoryRepo) *ExpenseHandler {
	if catRepo == nil {
		catRepo = ownedCategoryRepo()
	}
	service := category.NewService(catRepo, &MockCategoryExpenses{})
	return NewExpenseHandler(repo, service, cache.NewViews(16, time.Minute))
}

func TestHandleExpenses_List(t *testing.T) {
	tests := []struct {
		name            string
		target          string
		total           int
		returned        int
		expectedStatus  int
		expectedHasMore bool
	}{
		{
			name:            "First Page Has More",
			target:          "/api/expenses?limit=2",
			total:           5,
			returned:        2,
			expectedStatus:  http.StatusOK,
			expectedHasMore: true,
		},
		{
			name:            "Last Page",
			target:          "/api/expenses?limit=2&offset=3",
			total:           5,
			returned:        2,
			expectedStatus:  http.StatusOK,
			expectedHasMore: false,
		},
		{
			name:           "Invalid Sort Field",
			target:         "/api/expenses?sortBy=color",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid Limit",
			target:         "/api/expenses?limit=zero",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid From Date",
			target:         "/api/expenses?from=yesterday",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockExpenseRepo{
				ListFunc: func(ctx context.Context, userID int64, filter expense.ListFilter) ([]*expense.Expense, int, error) {
					rows := make([]*expense.Expense, tt.returned)
					for i := range rows {
						rows[i] = &expense.Expense{ID: "e", UserID: userID, Amount: 10}
					}
					return rows, tt.total, nil
				},
			}
			handler := newExpenseHandler(repo, nil)

			req := authedRequest(http.MethodGet, tt.target, nil)
			rr := httptest.NewRecorder()
			handler.HandleExpenses(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.expectedStatus)
			}

			if tt.expectedStatus == http.StatusOK {
				var result expense.ListResult
				json.NewDecoder(rr.Body).Decode(&result)
				if result.Total != tt.total {
					t.Errorf("Total = %d, want %d", result.Total, tt.total)
				}
				if result.HasMore != tt.expectedHasMore {
					t.Errorf("HasMore = %v, want %v", result.HasMore, tt.expectedHasMore)
				}
			}
		})
	}
}

func TestHandleExpenses_ListPassesFilter(t *testing.T) {
	var got expense.ListFilter
	repo := &MockExpenseRepo{
		ListFunc: func(ctx context.Context, userID int64, filter expense.ListFilter) ([]*expense.Expense, int, error) {
			got = filter
			return nil, 0, nil
		},
	}
	handler := newExpenseHandler(repo, nil)

	target := "/api/expenses?categoryId=" + testCategoryID + "&q=coffee&sortBy=amount&order=asc&limit=20&offset=40&from=2026-01-01&to=2026-01-31"
	rr := httptest.NewRecorder()
	handler.HandleExpenses(rr, authedRequest(http.MethodGet, target, nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got.CategoryID == nil || *got.CategoryID != testCategoryID {
		t.Errorf("CategoryID = %v, want %s", got.CategoryID, testCategoryID)
	}
	if got.Search != "coffee" {
		t.Errorf("Search = %q, want coffee", got.Search)
	}
	if got.SortBy != expense.SortByAmount || got.SortDesc {
		t.Errorf("sort = %s desc=%v, want amount asc", got.SortBy, got.SortDesc)
	}
	if got.Limit != 20 || got.Offset != 40 {
		t.Errorf("page = limit %d offset %d, want 20/40", got.Limit, got.Offset)
	}
	if got.From == nil || got.To == nil {
		t.Errorf("date range not parsed: from %v to %v", got.From, got.To)
	}
}

func TestHandleExpenses_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]interface{}
		catRepo        *MockCategoryRepo
		expectedStatus int
		expectedField  string
	}{
		{
			name: "Success",
			body: map[string]interface{}{
				"categoryId":  testCategoryID,
				"amount":      12.50,
				"description": "Lunch",
				"date":        "2026-01-15",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Negative Amount",
			body: map[string]interface{}{
				"categoryId":  testCategoryID,
				"amount":      -5,
				"description": "Lunch",
				"date":        "2026-01-15",
			},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "amount",
		},
		{
			name: "Future Date",
			body: map[string]interface{}{
				"categoryId":  testCategoryID,
				"amount":      12.50,
				"description": "Lunch",
				"date":        "2099-01-01",
			},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "date",
		},
		{
			name: "Missing Description",
			body: map[string]interface{}{
				"categoryId": testCategoryID,
				"amount":     12.50,
				"date":       "2026-01-15",
			},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "description",
		},
		{
			name: "Category Not Owned",
			body: map[string]interface{}{
				"categoryId":  testCategoryID,
				"amount":      12.50,
				"description": "Lunch",
				"date":        "2026-01-15",
			},
			catRepo: &MockCategoryRepo{
				GetByIDFunc: func(ctx context.Context, id string) (*category.Category, error) {
					return &category.Category{ID: id, UserID: 2}, nil
				},
			},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "categoryId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockExpenseRepo{
				CreateFunc: func(ctx context.Context, userID int64, params expense.CreateExpenseParams) (*expense.Expense, error) {
					return &expense.Expense{
						ID:          params.ID,
						UserID:      userID,
						CategoryID:  params.CategoryID,
						Amount:      params.Amount,
						Description: params.Description,
						Date:        params.Date,
					}, nil
				},
			}
			handler := newExpenseHandler(repo, tt.catRepo)

			bodyBytes, _ := json.Marshal(tt.body)
			req := authedRequest(http.MethodPost, "/api/expenses", bodyBytes)
			rr := httptest.NewRecorder()
			handler.HandleExpenses(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.expectedStatus)
			}

			if tt.expectedField != "" {
				var resp struct {
					Error map[string][]string `json:"error"`
				}
				json.NewDecoder(rr.Body).Decode(&resp)
				if len(resp.Error[tt.expectedField]) == 0 {
					t.Errorf("expected error on field %q, got %v", tt.expectedField, resp.Error)
				}
			}
		})
	}
}

func TestHandleExpenseByID_Get(t *testing.T) {
	tests := []struct {
		name           string
		mockRepo       func() *MockExpenseRepo
		expectedStatus int
	}{
		{
			name: "Success",
			mockRepo: func() *MockExpenseRepo {
				return &MockExpenseRepo{
					GetByIDFunc: func(ctx context.Context, id string) (*expense.Expense, error) {
						return &expense.Expense{ID: id, UserID: 1, Amount: 10}, nil
					},
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Not Found",
			mockRepo: func() *MockExpenseRepo {
				return &MockExpenseRepo{}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Owned By Another User",
			mockRepo: func() *MockExpenseRepo {
				return &MockExpenseRepo{
					GetByIDFunc: func(ctx context.Context, id string) (*expense.Expense, error) {
						return &expense.Expense{ID: id, UserID: 2, Amount: 10}, nil
					},
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newExpenseHandler(tt.mockRepo(), nil)

			mux := http.NewServeMux()
			mux.HandleFunc("GET /api/expenses/{id}", handler.HandleExpenseByID)

			req := authedRequest(http.MethodGet, "/api/expenses/exp-1", nil)
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.expectedStatus)
			}
		})
	}
}

func TestHandleDuplicateExpense(t *testing.T) {
	receipt := "https://example.com/receipt.png"
	original := &expense.Expense{
		ID:          "exp-1",
		UserID:      1,
		CategoryID:  testCategoryID,
		Amount:      45.50,
		Description: "Team dinner",
		Date:        time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		ReceiptURL:  &receipt,
	}

	var created expense.CreateExpenseParams
	repo := &MockExpenseRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*expense.Expense, error) {
			return original, nil
		},
		CreateFunc: func(ctx context.Context, userID int64, params expense.CreateExpenseParams) (*expense.Expense, error) {
			created = params
			return &expense.Expense{
				ID:          params.ID,
				UserID:      userID,
				CategoryID:  params.CategoryID,
				Amount:      params.Amount,
				Description: params.Description,
				Date:        params.Date,
				ReceiptURL:  params.ReceiptURL,
			}, nil
		},
	}
	handler := newExpenseHandler(repo, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/expenses/{id}/duplicate", handler.HandleDuplicateExpense)

	before := time.Now()
	req := authedRequest(http.MethodPost, "/api/expenses/exp-1/duplicate", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusCreated)
	}
	if created.Description != "Team dinner (copy)" {
		t.Errorf("Description = %q, want %q", created.Description, "Team dinner (copy)")
	}
	if created.ID == original.ID || created.ID == "" {
		t.Errorf("copy ID = %q, want a fresh identifier", created.ID)
	}
	if created.Amount != original.Amount || created.CategoryID != original.CategoryID {
		t.Errorf("copy fields diverge: %+v", created)
	}
	if created.ReceiptURL == nil || *created.ReceiptURL != receipt {
		t.Errorf("ReceiptURL = %v, want %q", created.ReceiptURL, receipt)
	}
	if created.Date.Before(before) {
		t.Errorf("copy Date = %v, want now", created.Date)
	}
}

func TestHandleDuplicateExpense_LongDescription(t *testing.T) {
	original := &expense.Expense{
		ID:          "exp-1",
		UserID:      1,
		CategoryID:  testCategoryID,
		Amount:      12,
		Description: strings.Repeat("x", 255),
		Date:        time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
	}

	var created expense.CreateExpenseParams
	repo := &MockExpenseRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*expense.Expense, error) {
			return original, nil
		},
		CreateFunc: func(ctx context.Context, userID int64, params expense.CreateExpenseParams) (*expense.Expense, error) {
			created = params
			return &expense.Expense{ID: params.ID}, nil
		},
	}
	handler := newExpenseHandler(repo, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/expenses/{id}/duplicate", handler.HandleDuplicateExpense)

	req := authedRequest(http.MethodPost, "/api/expenses/exp-1/duplicate", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusCreated)
	}
	if len(created.Description) > 255 {
		t.Errorf("copy description is %d chars, want at most 255", len(created.Description))
	}
	if !strings.HasSuffix(created.Description, " (copy)") {
		t.Errorf("copy description = %q, want a (copy) suffix", created.Description)
	}
}

func TestHandleBulkDelete(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedCount  int64
	}{
		{
			name:           "Success",
			body:           `{"ids":["a","b","c"]}`,
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:           "Empty IDs",
			body:           `{"ids":[]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid JSON",
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockExpenseRepo{
				BulkDeleteFunc: func(ctx context.Context, userID int64, ids []string) (int64, error) {
					// only two of the three ids belong to the user
					return 2, nil
				},
			}
			handler := newExpenseHandler(repo, nil)

			req := authedRequest(http.MethodPost, "/api/expenses/bulk-delete", []byte(tt.body))
			rr := httptest.NewRecorder()
			handler.HandleBulkDelete(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.expectedStatus)
			}

			if tt.expectedStatus == http.StatusOK {
				var resp struct {
					Success bool  `json:"success"`
					Count   int64 `json:"count"`
				}
				json.NewDecoder(rr.Body).Decode(&resp)
				if !resp.Success || resp.Count != tt.expectedCount {
					t.Errorf("response = %+v, want success with count %d", resp, tt.expectedCount)
				}
			}
		})
	}
}

func TestHandleBulkCategory(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		catRepo        *MockCategoryRepo
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           `{"ids":["a","b"],"categoryId":"` + testCategoryID + `"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Malformed Category ID",
			body:           `{"ids":["a"],"categoryId":"nope"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Category Not Owned",
			body: `{"ids":["a"],"categoryId":"` + testCategoryID + `"}`,
			catRepo: &MockCategoryRepo{
				GetByIDFunc: func(ctx context.Context, id string) (*category.Category, error) {
					return nil, nil
				},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Empty IDs",
			body:           `{"ids":[],"categoryId":"` + testCategoryID + `"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockExpenseRepo{
				BulkUpdateCategoryFunc: func(ctx context.Context, userID int64, ids []string, categoryID string) (int64, error) {
					return int64(len(ids)), nil
				},
			}
			handler := newExpenseHandler(repo, tt.catRepo)

			req := authedRequest(http.MethodPost, "/api/expenses/bulk-category", []byte(tt.body))
			rr := httptest.NewRecorder()
			handler.HandleBulkCategory(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.expectedStatus)
			}
		})
	}
}

func TestHandleRecentExpenses(t *testing.T) {
	var got expense.ListFilter
	repo := &MockExpenseRepo{
		ListFunc: func(ctx context.Context, userID int64, filter expense.ListFilter) ([]*expense.Expense, int, error) {
			got = filter
			return []*expense.Expense{{ID: "e1"}, {ID: "e2"}}, 2, nil
		},
	}
	handler := newExpenseHandler(repo, nil)

	req := authedRequest(http.MethodGet, "/api/expenses/recent?limit=5", nil)
	rr := httptest.NewRecorder()
	handler.HandleRecentExpenses(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got.Limit != 5 || got.SortBy != expense.SortByDate || !got.SortDesc {
		t.Errorf("filter = %+v, want 5 newest by date", got)
	}

	var expenses []*expense.Expense
	json.NewDecoder(rr.Body).Decode(&expenses)
	if len(expenses) != 2 {
		t.Errorf("response length = %d, want 2", len(expenses))
	}
}

func TestHandleSearchExpenses(t *testing.T) {
	var got expense.ListFilter
	repo := &MockExpenseRepo{
		ListFunc: func(ctx context.Context, userID int64, filter expense.ListFilter) ([]*expense.Expense, int, error) {
			got = filter
			return []*expense.Expense{{ID: "e1", Description: "Coffee beans"}}, 1, nil
		},
	}
	handler := newExpenseHandler(repo, nil)

	req := authedRequest(http.MethodGet, "/api/expenses/search?q=coffee&limit=5", nil)
	rr := httptest.NewRecorder()
	handler.HandleSearchExpenses(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got.Search != "coffee" || got.Limit != 5 || got.SortBy != expense.SortByDate || !got.SortDesc {
		t.Errorf("filter = %+v, want coffee search newest first", got)
	}

	var expenses []*expense.Expense
	json.NewDecoder(rr.Body).Decode(&expenses)
	if len(expenses) != 1 {
		t.Errorf("response length = %d, want 1", len(expenses))
	}
}

func TestHandleSearchExpenses_MissingQuery(t *testing.T) {
	handler := newExpenseHandler(&MockExpenseRepo{}, nil)

	req := authedRequest(http.MethodGet, "/api/expenses/search", nil)
	rr := httptest.NewRecorder()
	handler.HandleSearchExpenses(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	var resp struct {
		Error map[string][]string `json:"error"`
	}
	json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Error["q"]) == 0 {
		t.Errorf("expected field error on q, got %v", resp.Error)
	}
}

func TestHandleExpenses_SearchIsPartOfCacheKey(t *testing.T) {
	calls := 0
	repo := &MockExpenseRepo{
		ListFunc: func(ctx context.Context, userID int64, filter expense.ListFilter) ([]*expense.Expense, int, error) {
			calls++
			return nil, 0, nil
		},
	}
	handler := newExpenseHandler(repo, nil)

	for _, target := range []string{"/api/expenses?q=coffee", "/api/expenses?q=rent", "/api/expenses?q=coffee"} {
		rr := httptest.NewRecorder()
		handler.HandleExpenses(rr, authedRequest(http.MethodGet, target, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d for %s", rr.Code, target)
		}
	}

	if calls != 2 {
		t.Errorf("repository calls = %d, want 2 (third request served from cache)", calls)
	}
}

func TestHandleExpenses_MethodNotAllowed(t *testing.T) {
	handler := newExpenseHandler(&MockExpenseRepo{}, nil)

	req := authedRequest(http.MethodPatch, "/api/expenses", nil)
	rr := httptest.NewRecorder()
	handler.HandleExpenses(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandleExpenseByID_UpdateValidatesBeforeLookup(t *testing.T) {
	lookups := 0
	repo := &MockExpenseRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*expense.Expense, error) {
			lookups++
			return nil, nil
		},
	}
	handler := newExpenseHandler(repo, nil)

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/expenses/{id}", handler.HandleExpenseByID)

	body := strings.NewReader(`{"amount":-5}`)
	req, _ := http.NewRequest(http.MethodPut, "/api/expenses/not-mine", body)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, int64(1)))

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	var resp struct {
		Error map[string][]string `json:"error"`
	}
	json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Error["amount"]) == 0 {
		t.Errorf("expected field error on amount, got %v", resp.Error)
	}
	if lookups != 0 {
		t.Errorf("expense fetched %d times before validation, want 0", lookups)
	}
}

func TestHandleExpenseByID_UpdateCategoryOwnershipChecked(t *testing.T) {
	existing := &expense.Expense{ID: "exp-1", UserID: 1, CategoryID: testCategoryID, Amount: 10, Description: "Lunch"}
	otherCategory := "b2c9a1d4-3e5f-4a6b-8c7d-9e0f1a2b3c4d"

	repo := &MockExpenseRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*expense.Expense, error) {
			return existing, nil
		},
	}
	catRepo := &MockCategoryRepo{
		GetByIDFunc: func(ctx context.Context, id string) (*category.Category, error) {
			return nil, nil
		},
	}
	handler := newExpenseHandler(repo, catRepo)

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/expenses/{id}", handler.HandleExpenseByID)

	body := strings.NewReader(`{"categoryId":"` + otherCategory + `"}`)
	req, _ := http.NewRequest(http.MethodPut, "/api/expenses/exp-1", body)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, int64(1)))

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	var resp struct {
		Error map[string][]string `json:"error"`
	}
	json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Error["categoryId"]) == 0 {
		t.Errorf("expected categoryId field error, got %v", resp.Error)
	}
}
