package http

import (
	"encoding/json"
	"net/http"

	"tally/internal/shared/middleware"
	"tally/internal/shared/validate"
)

// mutationResponse is the envelope for successful writes.
type mutationResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int64 `json:"count,omitempty"`
}

type errorResponse struct {
	Error any `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondData wraps a successful mutation result.
func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, mutationResponse{Success: true, Data: data})
}

// respondCount reports how many rows a bulk mutation touched.
func respondCount(w http.ResponseWriter, count int64) {
	respondJSON(w, http.StatusOK, mutationResponse{Success: true, Count: &count})
}

// respondFieldErrors reports validation failures keyed by field.
func respondFieldErrors(w http.ResponseWriter, errs validate.Errors) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: errs})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// userIDFrom extracts the authenticated user from the request context.
func userIDFrom(r *http.Request) (int64, bool) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(int64)
	return userID, ok
}
