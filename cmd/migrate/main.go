package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pageza/recipe-remix/backend/config"
	"github.com/pageza/recipe-remix/backend/internal/database"
	"github.com/pageza/recipe-remix/backend/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.LoadDatabaseConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.Environment.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := database.New(cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if err := database.RunMigrations(db.DB); err != nil {
		zlog.Fatal("Migration failed", zap.Error(err))
	}
	zlog.Info("All migrations applied successfully", zap.String("driver", cfg.DBDriver))
}
