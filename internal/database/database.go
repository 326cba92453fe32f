package database

import (
	"fmt"

	"survey-grader/internal/config"
	"survey-grader/internal/logger"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/godror/godror"   // Oracle driver (Oracle Instant Client)
	_ "github.com/sijms/go-ora/v2" // Oracle driver (pure Go)
)

func init() {
	// go-ora registers itself as "oracle", which sqlx does not know about.
	// Without a registered bind type, named queries would be rewritten to
	// ? placeholders that the driver rejects.
	sqlx.BindDriver("oracle", sqlx.NAMED)
}

// DSN builds the connection string for the given driver. go-ora expects a
// URL, godror expects the logfmt-style parameter list.
func DSN(cfg config.DBConfig, driver string) string {
	if driver == "godror" {
		connectString := fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
		return fmt.Sprintf("user=%q password=%q connectString=%q", cfg.User, cfg.Password, connectString)
	}
	return fmt.Sprintf("oracle://%s:%s@%s:%d/%s", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)
}

// NewSQLXOracleDB connects to the Oracle database with the configured
// driver and verifies the connection. sqlx.Connect pings before returning.
func NewSQLXOracleDB(cfg config.DBConfig) (*sqlx.DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "oracle"
	}

	db, err := sqlx.Connect(driver, DSN(cfg, driver))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Oracle database: %w", err)
	}

	logger.Get().Info("Connected to Oracle database",
		zap.String("driver", driver),
		zap.String("host", cfg.Host),
		zap.String("service", cfg.DBName))
	return db, nil
}
