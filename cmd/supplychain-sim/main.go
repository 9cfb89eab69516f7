// Package main is the entry point for the supply chain resilience simulator.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "supplychain-sim",
		Short: "Supply chain resilience simulator",
		Long: `supplychain-sim runs Monte Carlo simulations of a multi-region supply chain
under disruption scenarios and reports resilience metrics.

Scenarios come from presets or a YAML/JSON config file. Results can be
compared against the baseline, exported, stored in SQLite, served over
HTTP or exposed to AI agents as MCP tools.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().Bool("yaml", false, "Output as YAML")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (env SUPPLYSIM_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database for run history (env SUPPLYSIM_DB)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newPresetsCmd(),
		newRunCmd(),
		newCompareCmd(),
		newRunsCmd(),
		newServeCmd(),
		newMCPCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if structuredOutput(cmd) {
				return writeData(cmd, cmd.OutOrStdout(), map[string]string{"version": version})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "supplychain-sim version %s\n", version)
			return nil
		},
	}
}

// structuredOutput は --json または --yaml が指定されたかを返す
func structuredOutput(cmd *cobra.Command) bool {
	j, _ := cmd.Flags().GetBool("json")
	y, _ := cmd.Flags().GetBool("yaml")
	return j || y
}

// writeData は --yaml 指定時は YAML、それ以外は JSON で v を書き出す
func writeData(cmd *cobra.Command, w io.Writer, v any) error {
	if y, _ := cmd.Flags().GetBool("yaml"); y {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
