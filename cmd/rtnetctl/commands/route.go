package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func routeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Inspect the routing table",
	}
	cmd.AddCommand(routeListCmd())
	return cmd
}

func routeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every installed route",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			var routes []routeView
			if err := fetchJSON("/debug/routes", &routes); err != nil {
				return fmt.Errorf("fetch routes: %w", err)
			}

			out, err := formatRoutes(routes, outputFormat)
			if err != nil {
				return fmt.Errorf("format routes: %w", err)
			}

			fmt.Print(out)
			return nil
		},
	}
}
