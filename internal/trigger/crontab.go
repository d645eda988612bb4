package trigger

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/autocommit/autocommit/internal/api"
)

// lineTag marks crontab lines owned by this system. The trailing ID ties a
// line to its schedule entry, so foreign cron jobs are never touched.
const lineTag = "# autocommit:"

// Crontab installs triggers as lines in the invoking user's crontab via the
// crontab binary. Untagged lines are preserved verbatim on every rewrite.
type Crontab struct {
	command string
	apiKey  string
	run     func(stdin string, args ...string) (string, error)
}

// NewCrontab returns a Crontab whose triggers invoke the currently running
// executable. The current OPENAI_API_KEY is baked into each installed line,
// since cron runs jobs with a minimal environment.
func NewCrontab() (*Crontab, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("cannot resolve own executable: %w", err)
	}
	return &Crontab{command: exe, apiKey: os.Getenv("OPENAI_API_KEY"), run: runCrontab}, nil
}

func (c *Crontab) Install(entry *api.ScheduleEntry) error {
	lines, err := c.read()
	if err != nil {
		return err
	}

	// Reinstalling an entry replaces its line instead of duplicating it.
	kept := lines[:0]
	for _, line := range lines {
		if !taggedWith(line, entry.ID) {
			kept = append(kept, line)
		}
	}
	kept = append(kept, c.cronLine(entry))

	return c.write(kept)
}

func (c *Crontab) Uninstall(id string) error {
	lines, err := c.read()
	if err != nil {
		return err
	}

	kept := lines[:0]
	removed := false
	for _, line := range lines {
		if taggedWith(line, id) {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if !removed {
		return ErrNotInstalled
	}

	return c.write(kept)
}

func (c *Crontab) Installed() ([]string, error) {
	lines, err := c.read()
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, line := range lines {
		if idx := strings.LastIndex(line, lineTag); idx >= 0 {
			ids = append(ids, strings.TrimSpace(line[idx+len(lineTag):]))
		}
	}
	return ids, nil
}

func (c *Crontab) cronLine(entry *api.ScheduleEntry) string {
	env := ""
	if c.apiKey != "" {
		env = fmt.Sprintf("OPENAI_API_KEY=%q ", c.apiKey)
	}
	return fmt.Sprintf("*/%d * * * * %s%s run --path %q %s%s",
		entry.FrequencyMinutes, env, c.command, entry.RepositoryPath, lineTag, entry.ID)
}

func taggedWith(line, id string) bool {
	return strings.HasSuffix(strings.TrimSpace(line), lineTag+id)
}

func (c *Crontab) read() ([]string, error) {
	out, err := c.run("", "-l")
	if err != nil {
		// A user with no crontab yet is not an error.
		if strings.Contains(err.Error(), "no crontab") {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read crontab: %w", err)
	}

	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (c *Crontab) write(lines []string) error {
	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	if _, err := c.run(content, "-"); err != nil {
		return fmt.Errorf("failed to write crontab: %w", err)
	}
	return nil
}

func runCrontab(stdin string, args ...string) (string, error) {
	cmd := exec.Command("crontab", args...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.String(), fmt.Errorf("crontab %s: %v: %s",
			strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
