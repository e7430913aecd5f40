package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"resumekit/pkg/logger"
)

// PostgresStore keeps every key in a single two-column key/value table.
type PostgresStore struct {
	DB    *sql.DB
	Table string
}

func NewPostgresStore(db *sql.DB, table string) *PostgresStore {
	return &PostgresStore{DB: db, Table: table}
}

// EnsureSchema creates the table if it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY, value TEXT NOT NULL)`, s.Table))
	if err != nil {
		logger.Sugar.Errorf("Failed to create kv table %s: %v", s.Table, err)
	}
	return err
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, s.Table), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get key %s: %v", key, err)
		return "", err
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	_, err := s.DB.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, s.Table), key, value)
	if err != nil {
		logger.Sugar.Errorf("Failed to set key %s: %v", key, err)
	}
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.DB.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, s.Table), key)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete key %s: %v", key, err)
	}
	return err
}

func (s *PostgresStore) Close() error {
	return s.DB.Close()
}
