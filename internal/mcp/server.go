// Package mcp provides an MCP (Model Context Protocol) server exposing the
// supply chain simulator as tools.
package mcp

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"supplychain-sim/internal/simulation"
)

// Server wraps the MCP SDK server and the simulation service.
type Server struct {
	server *sdk.Server
	svc    *simulation.Service
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name
	Version string // Server version
}

// NewServer creates a new MCP server with simulator tools.
func NewServer(cfg *Config, svc *simulation.Service) *Server {
	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{})

	s := &Server{
		server: mcpServer,
		svc:    svc,
	}
	s.registerTools()
	return s
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return s.server.Run(ctx, &sdk.StdioTransport{})
}
