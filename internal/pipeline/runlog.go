package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/autocommit/autocommit/internal/api"
)

// RunLogName is the per-repository run log file. Operators should keep it
// out of the repository's tracked content, or the log itself becomes a
// change that triggers further commits.
const RunLogName = ".autocommit_log"

// appendRecord writes rec as one line to the repository's run log. The file
// is opened in append mode and the line lands in a single write, so
// concurrent appenders for different repositories cannot interleave.
func appendRecord(repoPath string, rec api.RunRecord) error {
	f, err := os.OpenFile(filepath.Join(repoPath, RunLogName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatRecord(rec)); err != nil {
		return fmt.Errorf("failed to write run log: %w", err)
	}
	return nil
}

func formatRecord(rec api.RunRecord) string {
	line := fmt.Sprintf("%s outcome=%s", rec.Timestamp.Format(time.RFC3339), rec.Outcome)
	switch rec.Outcome {
	case api.OutcomeCommitted:
		line += fmt.Sprintf(" truncated=%t message=%q", rec.Truncated, rec.Message)
		if rec.Fallback != "" {
			line += fmt.Sprintf(" fallback=%q", rec.Fallback)
		}
	case api.OutcomeFailed:
		line += fmt.Sprintf(" error=%q", rec.Error)
	}
	return line + "\n"
}
