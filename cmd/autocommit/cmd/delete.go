package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deletePath string

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Unregister a repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		reg, s, err := newRegistry(cmd.Context(), logger)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := reg.Delete(cmd.Context(), deletePath); err != nil {
			return err
		}

		fmt.Printf("Schedule deleted: %s\n", deletePath)
		return nil
	},
}

func init() {
	deleteCmd.Flags().StringVarP(&deletePath, "path", "p", "", "Path of the registered repository")
	deleteCmd.MarkFlagRequired("path")
	rootCmd.AddCommand(deleteCmd)
}
