package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"expensetracker/internal/auth"
	"expensetracker/internal/category"
	"expensetracker/internal/config"
	database "expensetracker/internal/db"
	"expensetracker/internal/expense"
	"expensetracker/internal/user"
)

type Response struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"message": message,
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type Server struct {
	router          *http.ServeMux
	dbService       *database.DBService
	userHandler     *user.Handler
	authHandler     *auth.Handler
	authService     auth.Service
	categoryHandler *category.Handler
	expenseHandler  *expense.Handler
}

func NewServer(
	dbService *database.DBService,
	userHandler *user.Handler,
	authHandler *auth.Handler,
	authService auth.Service,
	categoryHandler *category.Handler,
	expenseHandler *expense.Handler,
) *Server {
	return &Server{
		router:          http.NewServeMux(),
		dbService:       dbService,
		userHandler:     userHandler,
		authHandler:     authHandler,
		authService:     authService,
		categoryHandler: categoryHandler,
		expenseHandler:  expenseHandler,
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.dbService.Health())
}

func (s *Server) RegisterRoutes() {
	router := http.NewServeMux()

	// Public routes
	router.Handle("POST /api/auth/register", http.HandlerFunc(s.userHandler.HandleRegister))
	router.Handle("POST /api/auth/login", http.HandlerFunc(s.authHandler.HandleLogin))
	router.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))

	// Protected routes: the middleware authenticates the bearer token once
	// and hands the verified user ID to the handler.
	router.Handle("POST /api/categories/{$}", s.authService.RequireUser(s.categoryHandler.HandleCreateCategory))
	router.Handle("GET /api/categories/{$}", s.authService.RequireUser(s.categoryHandler.HandleListCategories))
	router.Handle("PUT /api/categories/{id}", s.authService.RequireUser(s.categoryHandler.HandleUpdateCategory))
	router.Handle("DELETE /api/categories/{id}", s.authService.RequireUser(s.categoryHandler.HandleDeleteCategory))

	router.Handle("POST /api/expenses/{$}", s.authService.RequireUser(s.expenseHandler.HandleCreateExpense))
	router.Handle("GET /api/expenses/{$}", s.authService.RequireUser(s.expenseHandler.HandleListExpenses))
	router.Handle("GET /api/expenses/{id}", s.authService.RequireUser(s.expenseHandler.HandleGetExpense))
	router.Handle("PUT /api/expenses/{id}", s.authService.RequireUser(s.expenseHandler.HandleUpdateExpense))
	router.Handle("DELETE /api/expenses/{id}", s.authService.RequireUser(s.expenseHandler.HandleDeleteExpense))

	router.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = router
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Missing configuration, update to start server: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Could not initialize logger: %v", err)
	}
	defer logger.Sync()

	dbService, err := database.NewDBService(cfg.DatabaseDSN, logger)
	if err != nil {
		logger.Fatal("could not initialize database", zap.Error(err))
	}
	defer dbService.Close()

	if err := dbService.Migrate(cfg.MigrationsPath, cfg.DatabaseDSN); err != nil {
		logger.Fatal("could not run migrations", zap.Error(err))
	}

	userRepo := user.NewUserRepository(dbService.DB)
	userService := user.NewUserService(userRepo, logger)
	userHandler := user.NewHandler(userService)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret)
	authService := auth.NewAuthService(userService, jwtManager, logger)
	authHandler := auth.NewHandler(authService)

	categoryRepo := category.NewCategoryRepository(dbService.DB)
	categoryService := category.NewCategoryService(categoryRepo, logger)
	categoryHandler := category.NewCategoryHandler(categoryService, respondJSON, respondError)

	expenseRepo := expense.NewExpenseRepository(dbService.DB)
	expenseService := expense.NewExpenseService(expenseRepo, categoryService, logger)
	expenseHandler := expense.NewExpenseHandler(expenseService, respondJSON, respondError)

	server := NewServer(dbService, userHandler, authHandler, authService, categoryHandler, expenseHandler)
	server.RegisterRoutes()

	handler := loggingMiddleware(logger, server.router)
	logger.Info("server starting", zap.String("port", cfg.HTTPPort))
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler); err != nil {
		logger.Fatal("server failed to start", zap.Error(err))
	}
}
