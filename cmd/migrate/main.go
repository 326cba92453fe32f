package main

import (
	"flag"
	"log"

	"survey-grader/internal/config"
	"survey-grader/internal/database"
	"survey-grader/internal/logger"

	"go.uber.org/zap"
)

func main() {
	dir := flag.String("dir", "database/migrations", "directory holding migration files")
	down := flag.Bool("down", false, "roll back the most recent migration instead of applying")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer l.Sync()

	db, err := database.OpenMigrationDB(cfg.DB)
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if *down {
		if _, err := database.RollbackLastMigration(db, *dir); err != nil {
			l.Fatal("Failed to rollback migration", zap.Error(err))
		}
		return
	}

	if _, err := database.RunMigrations(db, *dir); err != nil {
		l.Fatal("Failed to run migrations", zap.Error(err))
	}
}
