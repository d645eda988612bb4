package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/autocommit/autocommit/internal/api"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and runs the schema migration. It is
// selected with AUTOCOMMIT_DB_TYPE=postgres, for operators who want several
// machines to share one registry of record.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS schedules (
		seq BIGINT GENERATED ALWAYS AS IDENTITY,
		id TEXT NOT NULL,
		repository_path TEXT PRIMARY KEY,
		frequency_minutes INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	`
	_, err := s.pool.Exec(ctx, query)
	return err
}

func (s *PostgresStore) CreateEntry(ctx context.Context, entry *api.ScheduleEntry) error {
	query := `
	INSERT INTO schedules (id, repository_path, frequency_minutes, created_at)
	VALUES ($1, $2, $3, $4)
	`
	_, err := s.pool.Exec(ctx, query, entry.ID, entry.RepositoryPath, entry.FrequencyMinutes, entry.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (s *PostgresStore) GetEntry(ctx context.Context, repositoryPath string) (*api.ScheduleEntry, error) {
	query := `SELECT id, repository_path, frequency_minutes, created_at FROM schedules WHERE repository_path = $1`
	row := s.pool.QueryRow(ctx, query, repositoryPath)

	var entry api.ScheduleEntry
	err := row.Scan(&entry.ID, &entry.RepositoryPath, &entry.FrequencyMinutes, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ListEntries returns all schedule entries in insertion order.
func (s *PostgresStore) ListEntries(ctx context.Context) ([]*api.ScheduleEntry, error) {
	query := `SELECT id, repository_path, frequency_minutes, created_at FROM schedules ORDER BY seq`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*api.ScheduleEntry
	for rows.Next() {
		var entry api.ScheduleEntry
		if err := rows.Scan(&entry.ID, &entry.RepositoryPath, &entry.FrequencyMinutes, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) DeleteEntry(ctx context.Context, repositoryPath string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM schedules WHERE repository_path = $1`, repositoryPath)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}
