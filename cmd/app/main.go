package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/citymark-api/internal/api"
	"github.com/alexivanou/citymark-api/internal/config"
	"github.com/alexivanou/citymark-api/internal/database"
	"github.com/alexivanou/citymark-api/internal/form"
	"github.com/alexivanou/citymark-api/internal/geocoding"
	"github.com/alexivanou/citymark-api/internal/repository"
	"github.com/alexivanou/citymark-api/internal/seeder"
	"github.com/alexivanou/citymark-api/internal/stats"
	"github.com/alexivanou/citymark-api/internal/store"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(context.Background(), cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	if err := runMigrations(db, cfg); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)

	ctx := context.Background()
	isEmpty, err := repository.IsDatabaseEmpty(ctx, db)
	if err != nil {
		logger.Warn("Failed to check if database is empty", zap.Error(err))
	} else if isEmpty {
		if _, statErr := os.Stat(cfg.Seeder.ExportPath); statErr == nil {
			logger.Info("Database is empty, importing cities export...",
				zap.String("path", cfg.Seeder.ExportPath))
			if err := importExport(ctx, repos, cfg); err != nil {
				logger.Fatal("Failed to import cities export", zap.Error(err))
			}
			logger.Info("Cities export imported successfully")
		}
	}

	cityStore := store.New(repos.City)
	if err := cityStore.LoadAll(ctx); err != nil {
		logger.Warn("Initial city load failed", zap.Error(err))
	}

	geocoder := geocoding.NewClient(cfg.Geocoder)
	controller := form.NewController(geocoder, cityStore)
	statsCollector := stats.NewCollector(db, cfg.DB)
	router := api.NewRouter(cityStore, controller, statsCollector)

	// The consumer is a browser app served from another origin
	corsOptions := cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Content-Type"},
	}
	handler := cors.New(corsOptions).Handler(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func runMigrations(db *sqlx.DB, cfg *config.Config) error {
	var m *migrate.Migrate
	var err error

	// Choose migration source based on DB type
	sourcePath := "file://migrations/postgres"

	if cfg.DB.IsMemory() {
		sourcePath = "file://migrations/sqlite"
		// Use driver instance directly to avoid DSN parsing issues with in-memory SQLite
		driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
		if err != nil {
			return fmt.Errorf("could not create sqlite driver: %w", err)
		}
		m, err = migrate.NewWithDatabaseInstance(
			sourcePath,
			"sqlite3",
			driver,
		)
		if err != nil {
			return fmt.Errorf("could not create migrate instance: %w", err)
		}
	} else {
		// For Postgres, standard connection string works fine
		m, err = migrate.New(sourcePath, cfg.DB.DSN())
		if err != nil {
			return err
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func importExport(ctx context.Context, repos *repository.Container, cfg *config.Config) error {
	parser := seeder.NewParser(cfg.Seeder)

	cities, err := parser.ParseCities()
	if err != nil {
		return fmt.Errorf("failed to parse cities export: %w", err)
	}
	if len(cities) == 0 {
		return nil
	}

	if err := repos.City.BulkInsertCities(ctx, cities); err != nil {
		return fmt.Errorf("failed to insert cities: %w", err)
	}
	return nil
}
