package store

import (
	"context"
	"errors"

	"github.com/autocommit/autocommit/internal/api"
)

var (
	// ErrNotFound indicates no schedule entry exists for the given path.
	ErrNotFound = errors.New("schedule entry not found")

	// ErrAlreadyExists indicates a schedule entry already exists for the path.
	ErrAlreadyExists = errors.New("schedule entry already exists for path")
)

// Store defines the interface for schedule persistence.
type Store interface {
	CreateEntry(ctx context.Context, entry *api.ScheduleEntry) error
	GetEntry(ctx context.Context, repositoryPath string) (*api.ScheduleEntry, error)
	ListEntries(ctx context.Context) ([]*api.ScheduleEntry, error)
	DeleteEntry(ctx context.Context, repositoryPath string) error
	Close()
}
