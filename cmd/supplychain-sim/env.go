package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"supplychain-sim/internal/config"
	"supplychain-sim/internal/events"
	"supplychain-sim/internal/logger"
	"supplychain-sim/internal/simulation"
	"supplychain-sim/internal/store"
)

var errNoDatabase = errors.New("no database configured (use --db or SUPPLYSIM_DB)")

// session はコマンド1回分の依存関係をまとめる
type session struct {
	settings  config.Settings
	store     *store.Store
	decisions *logger.DecisionLogger
	bus       *events.Bus
	svc       *simulation.Service
}

// sessionOptions はコマンドごとに必要な依存関係を指定する
type sessionOptions struct {
	workers  int
	withBus  bool
	needsDB  bool
	noLogDir bool
}

// newSession は環境変数とフラグから設定を組み立て、依存関係を初期化する
// フラグは環境変数より優先される
func newSession(cmd *cobra.Command, opts sessionOptions) (*session, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	if v := stringFlag(cmd, "log-level"); v != "" {
		settings.LogLevel = v
	}
	if v := stringFlag(cmd, "db"); v != "" {
		settings.DB = v
	}
	if v := stringFlag(cmd, "decision-log"); v != "" {
		settings.DecisionLogDir = v
	}
	if opts.workers > 0 {
		settings.Workers = opts.workers
	}
	logger.Default.SetLevel(logger.ParseLevel(settings.LogLevel))

	s := &session{settings: settings}
	if settings.DB != "" {
		st, err := store.Open(settings.DB)
		if err != nil {
			return nil, err
		}
		s.store = st
	} else if opts.needsDB {
		return nil, errNoDatabase
	}

	if !opts.noLogDir {
		dl, err := logger.NewDecisionLogger(settings.DecisionLogDir)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("open decision log: %w", err)
		}
		s.decisions = dl
	}
	if opts.withBus {
		s.bus = events.NewBus()
	}

	s.svc = simulation.New(simulation.Options{
		Store:     s.store,
		Bus:       s.bus,
		Decisions: s.decisions,
		Workers:   settings.Workers,
	})
	return s, nil
}

// Close は開いたリソースを解放する
func (s *session) Close() {
	s.bus.Close()
	if err := s.decisions.Close(); err != nil {
		logger.Warn("", "close decision log: %v", err)
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			logger.Warn("", "close store: %v", err)
		}
	}
}

// signalContext は SIGINT / SIGTERM でキャンセルされるコンテキストを返す
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Warn("", "interrupt received, stopping")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// stringFlag は定義されていないフラグを空文字として扱う
func stringFlag(cmd *cobra.Command, name string) string {
	f := cmd.Flags().Lookup(name)
	if f == nil {
		return ""
	}
	return f.Value.String()
}
