package database

import (
	"database/sql"
	"fmt"
	"time"

	"resumekit/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// Connect opens the Postgres pool with the named driver ("postgres" for lib/pq,
// "pgx" for pgx) and pings it, retrying a few times in case of temporary
// DNS/network blips.
func Connect(driver, dsn string, attempts int, wait time.Duration) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if err = db.Ping(); err == nil {
			logger.Sugar.Info("Successfully connected to the database")
			return db, nil
		}
		if i < attempts-1 {
			logger.Sugar.Infof("Database connection failed, retrying in %s... (%v)", wait, err)
			time.Sleep(wait)
		}
	}
	db.Close()
	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", attempts, err)
}
