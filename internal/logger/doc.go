// Package logger provides a simple, thread-safe logging facility.
//
// The logger supports four levels: Debug, Info, Warn, and Error, and writes
// through a log/slog text handler. Each entry carries a timestamp, level,
// message, and an optional scope (region, scenario, or agent name).
//
// # Basic Usage
//
// Using the default logger:
//
//	logger.Info("", "Monte Carlo run started")
//	logger.Info("East_Asia", "Disruption severity %.2f", sev)
//	logger.Error("baseline", "Iteration failed: %v", err)
//
// Creating a custom logger:
//
//	l := logger.New(os.Stderr, logger.ParseLevel("debug"))
//	l.Debug("Europe", "Debug message")
//
// # Decision Log
//
// DecisionLogger appends agent decisions as JSONL records. A nil
// DecisionLogger is valid and discards everything, so callers never need to
// check whether telemetry is enabled.
//
//	dl, err := logger.NewDecisionLogger(".supplysim")
//	defer dl.Close()
//	dl.Log(map[string]any{"role": "coo", "week": 3})
//
// # Thread Safety
//
// All logging operations are safe for concurrent use.
package logger
