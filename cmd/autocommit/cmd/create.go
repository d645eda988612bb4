package cmd

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	createPath      string
	createFrequency int
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a repository for automatic commits",
	Long: `Register a repository for automatic commits.

Installs a cron trigger that runs one commit cycle for the repository every
--frequency minutes. Missing flags are prompted for interactively.

Examples:
  # Non-interactive
  autocommit create --frequency 10 --path ~/notes

  # Interactive mode (just run create)
  autocommit create`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if createPath == "" {
			prompt := promptui.Prompt{
				Label: "Repository path",
				Validate: func(input string) error {
					if len(input) == 0 {
						return fmt.Errorf("repository path is required")
					}
					return nil
				},
			}
			result, err := prompt.Run()
			if err != nil {
				return err
			}
			createPath = result
		}

		if createFrequency == 0 {
			prompt := promptui.Prompt{
				Label:   "Frequency (minutes)",
				Default: "15",
				Validate: func(input string) error {
					n, err := strconv.Atoi(input)
					if err != nil || n <= 0 {
						return fmt.Errorf("frequency must be a positive number of minutes")
					}
					return nil
				},
			}
			result, err := prompt.Run()
			if err != nil {
				return err
			}
			createFrequency, _ = strconv.Atoi(result)
		}

		logger := newLogger()
		reg, s, err := newRegistry(cmd.Context(), logger)
		if err != nil {
			return err
		}
		defer s.Close()

		entry, err := reg.Create(cmd.Context(), createPath, createFrequency)
		if err != nil {
			return err
		}

		fmt.Printf("Schedule created: %s every %d minutes.\n", entry.RepositoryPath, entry.FrequencyMinutes)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&createPath, "path", "p", "", "Path to the git repository")
	createCmd.Flags().IntVarP(&createFrequency, "frequency", "f", 0, "Minutes between commit cycles")
	rootCmd.AddCommand(createCmd)
}
