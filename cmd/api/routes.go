package main

import (
	"log"
	"net/http"

	"tally/internal/shared/config"
	"tally/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", deps.HealthHandler.HandleHealth)

	// Public auth routes
	mux.HandleFunc("/api/auth/register", deps.AuthHandler.HandleRegister)
	mux.HandleFunc("/api/auth/login", deps.AuthHandler.HandleLogin)
	mux.HandleFunc("/api/auth/logout", deps.AuthHandler.HandleLogout)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)
	protected := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	mux.Handle("/api/auth/me", protected(deps.AuthHandler.HandleMe))

	mux.Handle("/api/categories", protected(deps.CategoryHandler.HandleCategories))
	mux.Handle("/api/categories/{id}", protected(deps.CategoryHandler.HandleCategoryByID))
	mux.Handle("/api/categories/{id}/stats", protected(deps.CategoryHandler.HandleCategoryStats))

	mux.Handle("/api/expenses", protected(deps.ExpenseHandler.HandleExpenses))
	mux.Handle("/api/expenses/recent", protected(deps.ExpenseHandler.HandleRecentExpenses))
	mux.Handle("/api/expenses/search", protected(deps.ExpenseHandler.HandleSearchExpenses))
	mux.Handle("/api/expenses/bulk-delete", protected(deps.ExpenseHandler.HandleBulkDelete))
	mux.Handle("/api/expenses/bulk-category", protected(deps.ExpenseHandler.HandleBulkCategory))
	mux.Handle("/api/expenses/{id}", protected(deps.ExpenseHandler.HandleExpenseByID))
	mux.Handle("/api/expenses/{id}/duplicate", protected(deps.ExpenseHandler.HandleDuplicateExpense))

	mux.Handle("/api/stats", protected(deps.StatsHandler.HandlePeriodStats))
	mux.Handle("/api/stats/daily", protected(deps.StatsHandler.HandleDailyStats))

	// Apply global middleware
	handler := middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(mux))

	// Wrap with request tracing when telemetry is on
	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(handler)
	}

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Println("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
