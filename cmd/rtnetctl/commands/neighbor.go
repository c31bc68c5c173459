package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func neighborCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neighbor",
		Short: "Inspect the neighbor cache",
	}
	cmd.AddCommand(neighborListCmd())
	return cmd
}

func neighborListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every valid neighbor cache entry",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			var entries []neighborView
			if err := fetchJSON("/debug/neighbors", &entries); err != nil {
				return fmt.Errorf("fetch neighbors: %w", err)
			}

			out, err := formatNeighbors(entries, outputFormat)
			if err != nil {
				return fmt.Errorf("format neighbors: %w", err)
			}

			fmt.Print(out)
			return nil
		},
	}
}
