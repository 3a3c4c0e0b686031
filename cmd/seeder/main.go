package main

import (
	"context"
	"log"

	"github.com/alexivanou/citymark-api/internal/config"
	"github.com/alexivanou/citymark-api/internal/database"
	"github.com/alexivanou/citymark-api/internal/repository"
	"github.com/alexivanou/citymark-api/internal/seeder"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := database.Connect(context.Background(), cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))
	logger.Info("Starting import...", zap.String("export", cfg.Seeder.ExportPath))

	// Auto-migrate if using memory DB to ensure schema exists
	if cfg.DB.IsMemory() {
		m, err := migrate.New("file://migrations/sqlite", "sqlite3://"+cfg.DB.DSN())
		if err != nil {
			logger.Fatal("Failed to init migration", zap.Error(err))
		}
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			logger.Fatal("Failed to run migration", zap.Error(err))
		}
	}

	parser := seeder.NewParser(cfg.Seeder)
	cities, err := parser.ParseCities()
	if err != nil {
		logger.Fatal("Failed to parse cities export", zap.Error(err))
	}

	ctx := context.Background()
	repos := repository.NewRepositories(db, cfg.DB.Type)

	// Clear existing data for a repeatable import
	if cfg.DB.IsMemory() {
		_, _ = db.Exec("DELETE FROM cities")
	}

	logger.Info("Inserting cities...")
	if err := repos.City.BulkInsertCities(ctx, cities); err != nil {
		logger.Fatal("Failed to insert cities", zap.Error(err))
	}

	logger.Info("Import completed successfully!", zap.Int("cities", len(cities)))
}
