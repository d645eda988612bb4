package trigger

import (
	"errors"

	"github.com/autocommit/autocommit/internal/api"
)

// ErrNotInstalled indicates no trigger exists for the given schedule entry.
var ErrNotInstalled = errors.New("trigger not installed")

// Installer manages the periodic triggers that invoke the single-cycle run
// entry point. The schedule registry owns when triggers come and go; the
// installer only talks to the OS scheduler.
type Installer interface {
	Install(entry *api.ScheduleEntry) error
	Uninstall(id string) error
	// Installed returns the IDs of all triggers this system manages.
	Installed() ([]string, error)
}
