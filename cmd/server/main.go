package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"scavenger/internal/config"
	"scavenger/internal/database"
	"scavenger/internal/handlers"
	"scavenger/internal/metrics"
	"scavenger/internal/repository"
	"scavenger/internal/security"
	"scavenger/internal/service"
	"scavenger/migrations"
	"syscall"
	"time"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.SessionsEnabled && cfg.SessionSecret == "change-me" {
		log.Println("Warning: SESSION_SECRET is not set, visitor cookies use the default key")
	}
	if cfg.AdminPasswordHash == "" && cfg.AdminPassword != "" {
		hash, err := security.HashPassword(cfg.AdminPassword)
		if err != nil {
			log.Fatalf("Failed to hash ADMIN_PASSWORD: %v", err)
		}
		cfg.AdminPasswordHash = hash
		log.Println("Warning: using plain ADMIN_PASSWORD, prefer ADMIN_PASSWORD_HASH")
	}
	if cfg.AdminPasswordHash == "" {
		log.Println("Warning: ADMIN_PASSWORD_HASH is not set, admin routes are locked")
	}

	startup := handlers.NewStartupStatus()

	// Initialize database with config (supports sqlite, postgres, mysql)
	startup.SetCurrentStep(handlers.StepDatabase)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.CompleteStep(handlers.StepDatabase)

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	startup.SetCurrentStep(handlers.StepMigrations)
	if err := db.RunMigrations(migrations.Source(cfg.MigrationsPath)); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	startup.CompleteStep(handlers.StepMigrations)

	log.Println("Migrations completed successfully")

	// Initialize repositories
	startup.SetCurrentStep(handlers.StepServices)
	puzzleRepo := repository.NewPuzzleRepository(db)
	visitorRepo := repository.NewVisitorRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	stateRepo := repository.NewStateRepository(db)

	// Initialize services
	m := metrics.New()
	puzzleService := service.NewPuzzleService(puzzleRepo, visitorRepo, responseRepo, m, cfg.SessionsEnabled)
	visitorService := service.NewVisitorService(visitorRepo, puzzleRepo, responseRepo, m, cfg.SuccessThreshold)
	stateService := service.NewStateService(puzzleRepo, visitorRepo, stateRepo, service.NewSharedState())
	fourByFourService := service.NewFourByFourService(puzzleService, stateService, m)
	anagramService := service.NewAnagramService(stateService)
	backupService := service.NewBackupService(db)

	// Initialize handlers
	fourByFourHandler := handlers.NewFourByFourHandler(fourByFourService)
	anagramHandler := handlers.NewAnagramHandler(anagramService)
	limiter := security.NewRateLimiter(cfg.RegistrationRate, cfg.RegistrationWindow)

	srv := &handlers.Server{
		Middleware: handlers.NewMiddleware(cfg, visitorService, puzzleService, limiter),
		Game:       handlers.NewGameHandler(cfg, visitorService, puzzleService),
		Puzzles:    handlers.NewPuzzleRouter(fourByFourHandler, cfg.FourByFourPuzzles, anagramHandler, cfg.AnagramPuzzles),
		FourByFour: fourByFourHandler,
		Admin:      handlers.NewAdminHandler(puzzleService, visitorService, backupService),
		Metrics:    m.Handler(),
		Startup:    startup,
	}
	startup.CompleteStep(handlers.StepServices)

	logConfiguredPuzzles(puzzleService, cfg)

	// Wrap with logging middleware
	handler := startup.RequireReady(handlers.Logging(srv.Routes()))

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.BaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()
	startup.MarkReady()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// logConfiguredPuzzles warns about game puzzles missing from the database
func logConfiguredPuzzles(puzzles *service.PuzzleService, cfg *config.Config) {
	names := append(append([]string{}, cfg.FourByFourPuzzles...), cfg.AnagramPuzzles...)
	for _, name := range names {
		if _, err := puzzles.GetByName(name); err != nil {
			log.Printf("Warning: puzzle %s is configured but not available: %v", name, err)
		}
	}

	count, err := puzzles.Count(true)
	if err != nil {
		log.Printf("Warning: failed to count puzzles: %v", err)
		return
	}
	log.Printf("%d active puzzles", count)
}
