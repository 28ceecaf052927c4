package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"tally/internal/cache"
	"tally/internal/domain/category"
)

type CategoryHandler struct {
	service *category.Service
	views   *cache.Views
}

func NewCategoryHandler(service *category.Service, views *cache.Views) *CategoryHandler {
	return &CategoryHandler{service: service, views: views}
}

type CreateCategoryRequest struct {
	Name   string   `json:"name"`
	Color  string   `json:"color"`
	Icon   *string  `json:"icon,omitempty"`
	Budget *float64 `json:"budget,omitempty"`
}

type UpdateCategoryRequest struct {
	Name   *string  `json:"name,omitempty"`
	Color  *string  `json:"color,omitempty"`
	Icon   *string  `json:"icon,omitempty"`
	Budget *float64 `json:"budget,omitempty"`
}

// HandleCategories routes collection requests by method.
func (h *CategoryHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListCategories(w, r)
	case http.MethodPost:
		h.handleCreateCategory(w, r)
	default:
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleCategoryByID routes requests for a specific category.
func (h *CategoryHandler) HandleCategoryByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGetCategory(w, r)
	case http.MethodPut:
		h.handleUpdateCategory(w, r)
	case http.MethodDelete:
		h.handleDeleteCategory(w, r)
	default:
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *CategoryHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	includeStats := r.URL.Query().Get("includeStats") == "true"
	suffix := "list"
	if includeStats {
		suffix = "list:stats"
	}

	if body, ok := h.views.Get(userID, cache.ViewCategories, suffix); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
		return
	}

	var payload any
	if includeStats {
		categories, err := h.service.ListCategoriesWithStats(r.Context(), userID, time.Now())
		if err != nil {
			log.Printf("Error listing categories with stats for user %d: %v", userID, err)
			respondError(w, http.StatusInternalServerError, "Failed to list categories")
			return
		}
		if categories == nil {
			categories = []*category.WithStats{}
		}
		payload = categories
	} else {
		categories, err := h.service.ListCategories(r.Context(), userID)
		if err != nil {
			log.Printf("Error listing categories for user %d: %v", userID, err)
			respondError(w, http.StatusInternalServerError, "Failed to list categories")
			return
		}
		if categories == nil {
			categories = []*category.Category{}
		}
		payload = categories
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error encoding categories for user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}
	h.views.Set(userID, cache.ViewCategories, suffix, body)

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (h *CategoryHandler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	params := category.CreateCategoryParams{
		Name:   req.Name,
		Color:  req.Color,
		Icon:   req.Icon,
		Budget: req.Budget,
	}
	if errs := params.Validate(); errs.HasErrors() {
		respondFieldErrors(w, errs)
		return
	}

	cat, err := h.service.CreateCategory(r.Context(), userID, params)
	if err != nil {
		if errors.Is(err, category.ErrDuplicateName) {
			respondJSON(w, http.StatusConflict, errorResponse{Error: map[string][]string{
				"name": {"A category with this name already exists"},
			}})
			return
		}
		log.Printf("Error creating category for user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	h.views.Invalidate(userID, cache.ViewCategories, cache.ViewDashboard)
	respondData(w, http.StatusCreated, cat)
}

func (h *CategoryHandler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	cat, err := h.service.GetCategory(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		if errors.Is(err, category.ErrCategoryNotFound) {
			respondError(w, http.StatusNotFound, "Category not found")
			return
		}
		log.Printf("Error getting category %s: %v", r.PathValue("id"), err)
		respondError(w, http.StatusInternalServerError, "Failed to get category")
		return
	}

	respondJSON(w, http.StatusOK, cat)
}

func (h *CategoryHandler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	params := category.UpdateCategoryParams{
		Name:   req.Name,
		Color:  req.Color,
		Icon:   req.Icon,
		Budget: req.Budget,
	}
	if errs := params.Validate(); errs.HasErrors() {
		respondFieldErrors(w, errs)
		return
	}

	cat, err := h.service.UpdateCategory(r.Context(), r.PathValue("id"), userID, params)
	if err != nil {
		switch {
		case errors.Is(err, category.ErrCategoryNotFound):
			respondError(w, http.StatusNotFound, "Category not found")
		case errors.Is(err, category.ErrDuplicateName):
			respondJSON(w, http.StatusConflict, errorResponse{Error: map[string][]string{
				"name": {"A category with this name already exists"},
			}})
		default:
			log.Printf("Error updating category %s for user %d: %v", r.PathValue("id"), userID, err)
			respondError(w, http.StatusInternalServerError, "Failed to update category")
		}
		return
	}

	h.views.Invalidate(userID, cache.ViewCategories, cache.ViewExpenses, cache.ViewDashboard)
	respondData(w, http.StatusOK, cat)
}

func (h *CategoryHandler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.service.DeleteCategory(r.Context(), r.PathValue("id"), userID); err != nil {
		var inUse *category.InUseError
		switch {
		case errors.Is(err, category.ErrCategoryNotFound):
			respondError(w, http.StatusNotFound, "Category not found")
		case errors.As(err, &inUse):
			respondError(w, http.StatusConflict, inUse.Error())
		default:
			log.Printf("Error deleting category %s for user %d: %v", r.PathValue("id"), userID, err)
			respondError(w, http.StatusInternalServerError, "Failed to delete category")
		}
		return
	}

	h.views.Invalidate(userID, cache.ViewCategories, cache.ViewDashboard)
	w.WriteHeader(http.StatusNoContent)
}

// HandleCategoryStats returns spend and budget figures for one category.
func (h *CategoryHandler) HandleCategoryStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	stats, err := h.service.CategoryStats(r.Context(), r.PathValue("id"), userID, time.Now())
	if err != nil {
		if errors.Is(err, category.ErrCategoryNotFound) {
			respondError(w, http.StatusNotFound, "Category not found")
			return
		}
		log.Printf("Error computing stats for category %s: %v", r.PathValue("id"), err)
		respondError(w, http.StatusInternalServerError, "Failed to compute category stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
