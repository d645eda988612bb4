package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Options selects and configures a store backend.
type Options struct {
	// Type is "sqlite" (default) or "postgres".
	Type string
	// DataDir holds the SQLite database file. Created if missing.
	DataDir string
	// ConnString is the Postgres DSN, required when Type is "postgres".
	ConnString string
}

// Open returns the store backend described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Type {
	case "postgres":
		if opts.ConnString == "" {
			return nil, fmt.Errorf("a connection string is required for the postgres store")
		}
		return NewPostgresStore(ctx, opts.ConnString)
	case "", "sqlite":
		if err := os.MkdirAll(opts.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		return NewSQLiteStore(filepath.Join(opts.DataDir, "autocommit.db"))
	default:
		return nil, fmt.Errorf("unknown store type %q", opts.Type)
	}
}
