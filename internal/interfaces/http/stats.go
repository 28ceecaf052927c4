package http

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tally/internal/cache"
	"tally/internal/domain/expense"
)

type StatsHandler struct {
	stats *expense.StatsService
	views *cache.Views
}

func NewStatsHandler(stats *expense.StatsService, views *cache.Views) *StatsHandler {
	return &StatsHandler{stats: stats, views: views}
}

// HandlePeriodStats summarizes the user's spending for a reporting period
// (week, month, or year).
func (h *StatsHandler) HandlePeriodStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = expense.PeriodMonth
	}
	switch period {
	case expense.PeriodWeek, expense.PeriodMonth, expense.PeriodYear:
	default:
		respondError(w, http.StatusBadRequest, "Invalid period")
		return
	}

	if body, ok := h.views.Get(userID, cache.ViewDashboard, period); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
		return
	}

	stats, err := h.stats.PeriodStats(r.Context(), userID, period, time.Now())
	if err != nil {
		log.Printf("Error computing %s stats for user %d: %v", period, userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	body, err := json.Marshal(stats)
	if err != nil {
		log.Printf("Error encoding stats for user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	h.views.Set(userID, cache.ViewDashboard, period, body)

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// HandleDailyStats buckets the user's expenses by calendar day over a date
// range, defaulting to the last 30 days.
func (h *StatsHandler) HandleDailyStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid from date")
			return
		}
		from = t
	}
	if v := q.Get("to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid to date")
			return
		}
		to = t
	}
	if to.Before(from) {
		respondError(w, http.StatusBadRequest, "Date range is invalid")
		return
	}

	suffix := "daily:" + r.URL.RawQuery
	if body, ok := h.views.Get(userID, cache.ViewDashboard, suffix); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
		return
	}

	buckets, err := h.stats.GroupByDay(r.Context(), userID, from, to)
	if err != nil {
		log.Printf("Error grouping expenses by day for user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	if buckets == nil {
		buckets = []expense.DayBucket{}
	}

	body, err := json.Marshal(buckets)
	if err != nil {
		log.Printf("Error encoding daily stats for user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	h.views.Set(userID, cache.ViewDashboard, suffix, body)

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}
