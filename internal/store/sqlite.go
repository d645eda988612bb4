package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/autocommit/autocommit/internal/api"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore initializes the SQLite database and creates necessary tables.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	query := `
	CREATE TABLE IF NOT EXISTS schedules (
		id TEXT NOT NULL,
		repository_path TEXT PRIMARY KEY,
		frequency_minutes INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create schedules table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) CreateEntry(ctx context.Context, entry *api.ScheduleEntry) error {
	query := `
	INSERT INTO schedules (id, repository_path, frequency_minutes, created_at)
	VALUES (?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.RepositoryPath,
		entry.FrequencyMinutes,
		entry.CreatedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") ||
			strings.Contains(strings.ToLower(err.Error()), "constraint") {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (s *SQLiteStore) GetEntry(ctx context.Context, repositoryPath string) (*api.ScheduleEntry, error) {
	query := `SELECT id, repository_path, frequency_minutes, created_at FROM schedules WHERE repository_path = ?`
	row := s.db.QueryRowContext(ctx, query, repositoryPath)

	var entry api.ScheduleEntry
	err := row.Scan(&entry.ID, &entry.RepositoryPath, &entry.FrequencyMinutes, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ListEntries returns all schedule entries in insertion order.
func (s *SQLiteStore) ListEntries(ctx context.Context) ([]*api.ScheduleEntry, error) {
	query := `SELECT id, repository_path, frequency_minutes, created_at FROM schedules ORDER BY rowid`
	rows, err := s.db.QueryContext(ctx, query)
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

func (s *SQLiteStore) DeleteEntry(ctx context.Context, repositoryPath string) error {
	query := `DELETE FROM schedules WHERE repository_path = ?`
	result, err := s.db.ExecContext(ctx, query, repositoryPath)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() {
	s.db.Close()
}
