package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/autocommit/autocommit/internal/registry"
	"github.com/autocommit/autocommit/internal/store"
	"github.com/autocommit/autocommit/internal/trigger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "autocommit",
	Short: "Periodic automatic commits for git repositories",
	Long: `Autocommit keeps registered repositories committed on a schedule.

A cron trigger invokes "autocommit run" for each registered repository at
its configured cadence. Each run commits any uncommitted changes, with a
commit message summarized from the diff when OPENAI_API_KEY is set and a
timestamp otherwise.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

// initConfig reads in ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("AUTOCOMMIT")
	viper.AutomaticEnv() // read in environment variables that match
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if viper.GetBool("debug") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func dataDir() string {
	if dir := viper.GetString("data_dir"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".autocommit"
	}
	return filepath.Join(home, ".autocommit")
}

func openStore(ctx context.Context) (store.Store, error) {
	s, err := store.Open(ctx, store.Options{
		Type:       viper.GetString("db_type"),
		DataDir:    dataDir(),
		ConnString: viper.GetString("db_connection_string"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open schedule store: %w", err)
	}
	return s, nil
}

// newRegistry wires the registry against the configured store backend and
// the user's crontab. The caller owns closing the returned store.
func newRegistry(ctx context.Context, logger *slog.Logger) (*registry.Registry, store.Store, error) {
	s, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	installer, err := trigger.NewCrontab()
	if err != nil {
		s.Close()
		return nil, nil, err
	}

	return registry.New(s, installer, logger), s, nil
}
