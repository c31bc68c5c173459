package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func tcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tcp",
		Short: "Inspect TCP-Lite connections",
	}
	cmd.AddCommand(tcpListCmd())
	return cmd
}

func tcpListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every in-use TCP-Lite connection",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			var conns []tcpConnView
			if err := fetchJSON("/debug/tcp", &conns); err != nil {
				return fmt.Errorf("fetch tcp connections: %w", err)
			}

			out, err := formatTCPConns(conns, outputFormat)
			if err != nil {
				return fmt.Errorf("format tcp connections: %w", err)
			}

			fmt.Print(out)
			return nil
		},
	}
}
