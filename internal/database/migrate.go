package database

import (
	"database/sql"
	"fmt"

	"survey-grader/internal/config"
	"survey-grader/internal/logger"

	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"
)

// Migrations run through godror rather than go-ora so the sql-migrate
// dialect and the driver agree on bind placeholders.
const migrationDialect = "godror"

// OpenMigrationDB opens a plain database/sql connection for running
// migrations.
func OpenMigrationDB(cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open(migrationDialect, DSN(cfg, migrationDialect))
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not ping database: %w", err)
	}

	return db, nil
}

// RunMigrations applies all pending migrations from dir. Applied
// migrations are recorded in gorp_migrations, so reruns only apply what
// is new.
func RunMigrations(db *sql.DB, dir string) (int, error) {
	source := &migrate.FileMigrationSource{Dir: dir}

	applied, err := migrate.Exec(db, migrationDialect, source, migrate.Up)
	if err != nil {
		return applied, fmt.Errorf("could not apply migrations: %w", err)
	}

	logger.Get().Info("Migrations completed", zap.Int("applied", applied))
	return applied, nil
}

// RollbackLastMigration reverts the most recently applied migration.
func RollbackLastMigration(db *sql.DB, dir string) (int, error) {
	source := &migrate.FileMigrationSource{Dir: dir}

	reverted, err := migrate.ExecMax(db, migrationDialect, source, migrate.Down, 1)
	if err != nil {
		return reverted, fmt.Errorf("could not rollback migration: %w", err)
	}

	logger.Get().Info("Rollback completed", zap.Int("reverted", reverted))
	return reverted, nil
}
