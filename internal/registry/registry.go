package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/autocommit/autocommit/internal/api"
	"github.com/autocommit/autocommit/internal/gitrepo"
	"github.com/autocommit/autocommit/internal/store"
	"github.com/autocommit/autocommit/internal/trigger"
	"github.com/google/uuid"
)

// ErrValidation indicates a bad path or frequency. It is distinct from the
// registry-state errors (store.ErrAlreadyExists, store.ErrNotFound) so
// callers can tell bad input from lookup conflicts.
var ErrValidation = errors.New("invalid schedule")

// Registry owns the persisted schedule entries and keeps the installed
// triggers consistent with them: every stored entry has exactly one active
// trigger and vice versa.
type Registry struct {
	store         store.Store
	installer     trigger.Installer
	logger        *slog.Logger
	isWorkingTree func(string) bool
	now           func() time.Time
}

// New creates a Registry over the given store and trigger installer.
func New(s store.Store, installer trigger.Installer, logger *slog.Logger) *Registry {
	return &Registry{
		store:         s,
		installer:     installer,
		logger:        logger,
		isWorkingTree: gitrepo.IsWorkingTree,
		now:           time.Now,
	}
}

// Create validates path and frequency, persists a schedule entry, and
// installs its periodic trigger. A path that is already registered is
// rejected with store.ErrAlreadyExists; the existing entry wins.
func (r *Registry) Create(ctx context.Context, path string, frequencyMinutes int) (*api.ScheduleEntry, error) {
	if frequencyMinutes <= 0 {
		return nil, fmt.Errorf("%w: frequency must be a positive number of minutes, got %d", ErrValidation, frequencyMinutes)
	}

	canonical, err := gitrepo.CanonicalPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !r.isWorkingTree(canonical) {
		return nil, fmt.Errorf("%w: %s is not a git working tree", ErrValidation, canonical)
	}

	if _, err := r.store.GetEntry(ctx, canonical); err == nil {
		return nil, fmt.Errorf("%w: %s", store.ErrAlreadyExists, canonical)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing entry: %w", err)
	}

	entry := &api.ScheduleEntry{
		ID:               uuid.NewString(),
		RepositoryPath:   canonical,
		FrequencyMinutes: frequencyMinutes,
		CreatedAt:        r.now(),
	}

	if err := r.store.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to persist entry: %w", err)
	}

	if err := r.installer.Install(entry); err != nil {
		// Roll the persisted entry back rather than leave it without a trigger.
		if delErr := r.store.DeleteEntry(ctx, canonical); delErr != nil {
			r.logger.Error("failed to roll back entry after trigger install failure",
				"path", canonical, "error", delErr)
		}
		return nil, fmt.Errorf("failed to install trigger: %w", err)
	}

	r.logger.Info("schedule created", "path", canonical, "frequency_minutes", frequencyMinutes, "id", entry.ID)
	return entry, nil
}

// List returns all schedule entries in insertion order.
func (r *Registry) List(ctx context.Context) ([]*api.ScheduleEntry, error) {
	return r.store.ListEntries(ctx)
}

// Delete removes the schedule entry for path and uninstalls its trigger.
// The trigger goes first: if uninstalling fails the entry is kept so a
// retry can finish the job, and a trigger that is already gone counts as
// repaired drift rather than failure.
func (r *Registry) Delete(ctx context.Context, path string) error {
	canonical, err := gitrepo.CanonicalPath(path)
	if err != nil {
		// The directory may be gone while its registration lives on; fall
		// back to the raw path so the entry can still be removed.
		canonical = path
	}

	entry, err := r.store.GetEntry(ctx, canonical)
	if err != nil {
		return err
	}

	if err := r.installer.Uninstall(entry.ID); err != nil {
		if errors.Is(err, trigger.ErrNotInstalled) {
			r.logger.Warn("trigger was already absent, repairing", "path", canonical, "id", entry.ID)
		} else {
			return fmt.Errorf("failed to uninstall trigger: %w", err)
		}
	}

	if err := r.store.DeleteEntry(ctx, canonical); err != nil {
		return fmt.Errorf("partial delete: trigger removed but entry remains: %w", err)
	}

	r.logger.Info("schedule deleted", "path", canonical, "id", entry.ID)
	return nil
}

// Drift describes a store/trigger inconsistency found by Verify.
type Drift struct {
	// MissingTriggers are persisted entries with no installed trigger.
	MissingTriggers []*api.ScheduleEntry
	// OrphanedTriggers are installed trigger IDs with no persisted entry.
	OrphanedTriggers []string
}

// Empty reports whether the registry and installed triggers are consistent.
func (d Drift) Empty() bool {
	return len(d.MissingTriggers) == 0 && len(d.OrphanedTriggers) == 0
}

// Verify compares the persisted entries against the installed triggers and
// reports any drift, e.g. from a crash between persist and install.
func (r *Registry) Verify(ctx context.Context) (Drift, error) {
	var drift Drift

	entries, err := r.store.ListEntries(ctx)
	if err != nil {
		return drift, err
	}
	ids, err := r.installer.Installed()
	if err != nil {
		return drift, err
	}

	installed := make(map[string]bool, len(ids))
	for _, id := range ids {
		installed[id] = true
	}

	known := make(map[string]bool, len(entries))
	for _, entry := range entries {
		known[entry.ID] = true
		if !installed[entry.ID] {
			drift.MissingTriggers = append(drift.MissingTriggers, entry)
		}
	}
	for _, id := range ids {
		if !known[id] {
			drift.OrphanedTriggers = append(drift.OrphanedTriggers, id)
		}
	}

	return drift, nil
}

// Repair reinstalls triggers for entries that lost theirs and uninstalls
// triggers that lost their entries.
func (r *Registry) Repair(ctx context.Context, drift Drift) error {
	for _, entry := range drift.MissingTriggers {
		if err := r.installer.Install(entry); err != nil {
			return fmt.Errorf("failed to reinstall trigger for %s: %w", entry.RepositoryPath, err)
		}
		r.logger.Info("reinstalled missing trigger", "path", entry.RepositoryPath, "id", entry.ID)
	}
	for _, id := range drift.OrphanedTriggers {
		if err := r.installer.Uninstall(id); err != nil && !errors.Is(err, trigger.ErrNotInstalled) {
			return fmt.Errorf("failed to remove orphaned trigger %s: %w", id, err)
		}
		r.logger.Info("removed orphaned trigger", "id", id)
	}
	return nil
}
