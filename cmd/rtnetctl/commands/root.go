// Package commands implements the rtnetctl CLI commands.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverAddr   string
	outputFormat string
)

// rootCmd is the rtnetctl entrypoint. rtnetstack carries no RPC control
// plane (spec.md's scope is the data-plane core only), so rtnetctl talks
// to a running rtnetd over the same HTTP server that exposes /metrics,
// reading the JSON snapshots it publishes under /debug/ — the in-process
// analogue of the teacher's ConnectRPC session-inspection surface.
var rootCmd = &cobra.Command{
	Use:           "rtnetctl",
	Short:         "CLI client for the rtnetd daemon",
	Long:          "rtnetctl reads the routing, neighbor, TCP-Lite, and statistics state of a running rtnetd daemon over its debug HTTP endpoints.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "addr", "localhost:9100", "rtnetd metrics/debug address (host:port)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "output format: table, json")

	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(routeCmd())
	rootCmd.AddCommand(neighborCmd())
	rootCmd.AddCommand(tcpCmd())
}

// Execute runs the root command, printing any error to stderr and exiting
// non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
