package main

import (
	"log"

	"tally/internal/cache"
	"tally/internal/domain/category"
	"tally/internal/domain/expense"
	"tally/internal/infrastructure/postgres"
	httphandlers "tally/internal/interfaces/http"
	"tally/internal/shared/auth"
	"tally/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB *postgres.DB

	// Handlers
	AuthHandler     *httphandlers.AuthHandler
	CategoryHandler *httphandlers.CategoryHandler
	ExpenseHandler  *httphandlers.ExpenseHandler
	StatsHandler    *httphandlers.StatsHandler
	HealthHandler   *httphandlers.HealthHandler

	// Auth
	JWT *auth.JWT

	// View cache shared by list and stats handlers
	Views *cache.Views
}

// NewDependencies initializes all application dependencies.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Println("Connected to database")

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	expenseRepo := postgres.NewExpenseRepository(db)

	// Domain services
	categoryService := category.NewService(categoryRepo, expenseRepo)
	statsService := expense.NewStatsService(expenseRepo)

	jwt := auth.NewJWT(cfg.JWT.Secret)
	views := cache.NewViews(cfg.Cache.MaxEntries, cfg.Cache.TTL)

	return &Dependencies{
		DB:              db,
		AuthHandler:     httphandlers.NewAuthHandler(userRepo, jwt),
		CategoryHandler: httphandlers.NewCategoryHandler(categoryService, views),
		ExpenseHandler:  httphandlers.NewExpenseHandler(expenseRepo, categoryService, views),
		StatsHandler:    httphandlers.NewStatsHandler(statsService, views),
		HealthHandler:   httphandlers.NewHealthHandler(db),
		JWT:             jwt,
		Views:           views,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
