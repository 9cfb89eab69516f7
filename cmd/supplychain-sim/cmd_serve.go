package main

import (
	"github.com/spf13/cobra"

	"supplychain-sim/internal/api"
	"supplychain-sim/internal/mcp"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and WebSocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workers, _ := cmd.Flags().GetInt("workers")
			sess, err := newSession(cmd, sessionOptions{workers: workers, withBus: true})
			if err != nil {
				return err
			}
			defer sess.Close()

			addr := sess.settings.Addr
			if v := stringFlag(cmd, "addr"); v != "" {
				addr = v
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			return api.NewServer(addr, sess.svc, sess.bus).Start(ctx)
		},
	}
	cmd.Flags().String("addr", "", "Listen address, e.g. :8080 (env SUPPLYSIM_ADDR)")
	cmd.Flags().Int("workers", 0, "Worker count for independent mode (env SUPPLYSIM_WORKERS)")
	cmd.Flags().String("decision-log", "", "Directory for agent decision logs (env SUPPLYSIM_DECISION_LOG_DIR)")
	return cmd
}

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run as an MCP server over stdio",
		Long: `Run as a Model Context Protocol server over stdio, exposing the
supplychain_presets, supplychain_run and supplychain_compare tools.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd, sessionOptions{})
			if err != nil {
				return err
			}
			defer sess.Close()

			server := mcp.NewServer(&mcp.Config{Name: "supplychain-sim", Version: version}, sess.svc)
			return server.Run(cmd.Context())
		},
	}
}
