package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	listVerify bool
	listRepair bool
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered repositories",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		reg, s, err := newRegistry(cmd.Context(), logger)
		if err != nil {
			return err
		}
		defer s.Close()

		entries, err := reg.List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "PATH\tFREQUENCY\tCREATED")
		for _, entry := range entries {
			fmt.Fprintf(w, "%s\tevery %dm\t%s\n",
				entry.RepositoryPath, entry.FrequencyMinutes, entry.CreatedAt.Format(time.RFC3339))
		}
		w.Flush()

		if !listVerify && !listRepair {
			return nil
		}

		drift, err := reg.Verify(cmd.Context())
		if err != nil {
			return err
		}
		if drift.Empty() {
			fmt.Println("Triggers are consistent with the registry.")
			return nil
		}

		for _, entry := range drift.MissingTriggers {
			fmt.Printf("Warning: no trigger installed for %s\n", entry.RepositoryPath)
		}
		for _, id := range drift.OrphanedTriggers {
			fmt.Printf("Warning: orphaned trigger %s has no registry entry\n", id)
		}

		if listRepair {
			if err := reg.Repair(cmd.Context(), drift); err != nil {
				return err
			}
			fmt.Println("Drift repaired.")
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listVerify, "verify", false, "Check triggers against the registry")
	listCmd.Flags().BoolVar(&listRepair, "repair", false, "Verify and repair trigger drift")
	rootCmd.AddCommand(listCmd)
}
