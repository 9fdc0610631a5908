// Package commands implements the netsim CLI commands.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath is the path to an optional YAML configuration file.
	configPath string

	// outputFormat controls the output format for all commands: table
	// or json.
	outputFormat string
)

// rootCmd is the top-level cobra command for netsim.
var rootCmd = &cobra.Command{
	Use:   "netsim",
	Short: "Discrete-event network routing simulator",
	Long: "netsim replays a synthetic network topology and packet workload " +
		"against a chosen routing protocol and reports packet loss, latency, " +
		"and throughput, so competing protocols can be compared under " +
		"identical conditions.",
	// Silence cobra's built-in usage/error printing so we control it.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", formatTable, "output format: table, json")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(versionCmd())
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
