package trigger

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/autocommit/autocommit/internal/api"
	"github.com/stretchr/testify/require"
)

// fakeCrontab emulates the crontab binary against an in-memory tab.
type fakeCrontab struct {
	content  string
	hasTab   bool
	failWith error
}

func (f *fakeCrontab) run(stdin string, args ...string) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	switch args[0] {
	case "-l":
		if !f.hasTab {
			return "", fmt.Errorf("crontab -l: exit status 1: no crontab for user")
		}
		return f.content, nil
	case "-":
		f.content = stdin
		f.hasTab = true
		return "", nil
	}
	return "", fmt.Errorf("unexpected args: %v", args)
}

func newTestCrontab(fake *fakeCrontab) *Crontab {
	return &Crontab{command: "/usr/local/bin/autocommit", run: fake.run}
}

func entryFor(id, path string, freq int) *api.ScheduleEntry {
	return &api.ScheduleEntry{ID: id, RepositoryPath: path, FrequencyMinutes: freq}
}

func TestCrontabInstall(t *testing.T) {
	fake := &fakeCrontab{}
	c := newTestCrontab(fake)

	err := c.Install(entryFor("abc", "/repo/a", 10))
	require.NoError(t, err)

	require.Contains(t, fake.content, `*/10 * * * * /usr/local/bin/autocommit run --path "/repo/a" # autocommit:abc`)

	ids, err := c.Installed()
	require.NoError(t, err)
	require.Equal(t, []string{"abc"}, ids)
}

func TestCrontabInstallCarriesAPIKey(t *testing.T) {
	fake := &fakeCrontab{}
	c := newTestCrontab(fake)
	c.apiKey = "sk-test"

	require.NoError(t, c.Install(entryFor("abc", "/repo/a", 10)))

	// Cron jobs run with a minimal environment, so the key rides on the line.
	require.Contains(t, fake.content, `*/10 * * * * OPENAI_API_KEY="sk-test" /usr/local/bin/autocommit run --path "/repo/a" # autocommit:abc`)

	ids, err := c.Installed()
	require.NoError(t, err)
	require.Equal(t, []string{"abc"}, ids)
}

func TestCrontabInstallPreservesForeignLines(t *testing.T) {
	fake := &fakeCrontab{
		content: "0 * * * * /usr/bin/backup.sh\n",
		hasTab:  true,
	}
	c := newTestCrontab(fake)

	require.NoError(t, c.Install(entryFor("abc", "/repo/a", 5)))
	require.Contains(t, fake.content, "0 * * * * /usr/bin/backup.sh")

	require.NoError(t, c.Uninstall("abc"))
	require.Contains(t, fake.content, "0 * * * * /usr/bin/backup.sh")
	require.NotContains(t, fake.content, "autocommit:abc")
}

func TestCrontabInstallReplacesExistingLine(t *testing.T) {
	fake := &fakeCrontab{}
	c := newTestCrontab(fake)

	require.NoError(t, c.Install(entryFor("abc", "/repo/a", 10)))
	require.NoError(t, c.Install(entryFor("abc", "/repo/a", 5)))

	require.Equal(t, 1, strings.Count(fake.content, "autocommit:abc"))
	require.Contains(t, fake.content, "*/5 * * * *")
	require.NotContains(t, fake.content, "*/10 * * * *")
}

func TestCrontabUninstallNotInstalled(t *testing.T) {
	fake := &fakeCrontab{}
	c := newTestCrontab(fake)

	err := c.Uninstall("missing")
	require.ErrorIs(t, err, ErrNotInstalled)
}

func TestCrontabNoCrontabYet(t *testing.T) {
	fake := &fakeCrontab{}
	c := newTestCrontab(fake)

	ids, err := c.Installed()
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestCrontabReadFailure(t *testing.T) {
	fake := &fakeCrontab{failWith: errors.New("crontab: permission denied")}
	c := newTestCrontab(fake)

	err := c.Install(entryFor("abc", "/repo/a", 10))
	require.Error(t, err)
}

func TestCrontabMultipleEntries(t *testing.T) {
	fake := &fakeCrontab{}
	c := newTestCrontab(fake)

	require.NoError(t, c.Install(entryFor("one", "/repo/a", 10)))
	require.NoError(t, c.Install(entryFor("two", "/repo/b", 20)))

	ids, err := c.Installed()
	require.NoError(t, err)
	require.Equal(t, []string{"one", "two"}, ids)

	require.NoError(t, c.Uninstall("one"))

	ids, err = c.Installed()
	require.NoError(t, err)
	require.Equal(t, []string{"two"}, ids)
}
