package cmd

import (
	"fmt"
	"os"

	"github.com/autocommit/autocommit/internal/api"
	"github.com/autocommit/autocommit/internal/generator"
	"github.com/autocommit/autocommit/internal/gitrepo"
	"github.com/autocommit/autocommit/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runPath string

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one commit cycle for a repository",
	Long: `Execute one commit cycle for the repository at --path.

A clean working tree is a successful no-op. Otherwise the diff is captured,
a commit message is produced (summarized via OPENAI_API_KEY when set, a
timestamp otherwise), and all changes are committed. Every run appends one
line to <path>/` + pipeline.RunLogName + `.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		path, err := gitrepo.CanonicalPath(runPath)
		if err != nil {
			return err
		}
		logger.Info("running", "path", path)

		gen := generator.New(generator.Config{
			APIKey:   os.Getenv("OPENAI_API_KEY"),
			Model:    viper.GetString("model"),
			Endpoint: viper.GetString("openai_url"),
		})

		runner := pipeline.NewDefault(gen, logger)
		result, err := runner.Run(cmd.Context(), path)
		if err != nil {
			return err
		}

		switch result.Outcome {
		case api.OutcomeNoOp:
			fmt.Println("No changes detected.")
		case api.OutcomeCommitted:
			fmt.Printf("Committed %s: %s\n", result.CommitHash[:8], result.Message.Text)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runPath, "path", "", "Path to the git repository")
	runCmd.MarkFlagRequired("path")
	rootCmd.AddCommand(runCmd)
}
