package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"supplychain-sim/internal/analysis"
	"supplychain-sim/internal/config"
	"supplychain-sim/internal/export"
	"supplychain-sim/internal/montecarlo"
	"supplychain-sim/internal/scenario"
	"supplychain-sim/internal/simulation"
)

// addScenarioFlags は run / compare 共通のフラグを定義する
func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Scenario config file (YAML/JSON)")
	cmd.Flags().Int("iterations", 0, "Monte Carlo iterations per scenario")
	cmd.Flags().Int("weeks", 0, "Weeks simulated per iteration")
	cmd.Flags().Int64("seed", 0, "Random seed")
	cmd.Flags().String("mode", "", "Random stream mode: shared or independent")
	cmd.Flags().Int("workers", 0, "Worker count for independent mode (env SUPPLYSIM_WORKERS)")
	cmd.Flags().String("decision-log", "", "Directory for agent decision logs (env SUPPLYSIM_DECISION_LOG_DIR)")
}

// batch はコマンドラインから組み立てた実行対象
type batch struct {
	scenarios []config.Labeled
	mode      montecarlo.Mode
	workers   int
}

// loadBatch は設定ファイルまたはプリセット名から実行対象を組み立てる
// シミュレーション設定のフラグはすべてのシナリオに適用される
func loadBatch(cmd *cobra.Command, presets []string) (batch, error) {
	var doc *config.FileConfig
	if path := stringFlag(cmd, "config"); path != "" {
		if len(presets) > 0 {
			return batch{}, fmt.Errorf("preset arguments cannot be combined with --config")
		}
		var err error
		doc, err = config.LoadFile(path)
		if err != nil {
			return batch{}, err
		}
	} else {
		doc = &config.FileConfig{}
		for _, name := range presets {
			doc.Scenarios = append(doc.Scenarios, config.ScenarioSpec{Preset: name})
		}
	}

	flags := cmd.Flags()
	for i := range doc.Scenarios {
		sim := &doc.Scenarios[i].Overrides.Simulation
		if flags.Changed("iterations") {
			n, _ := flags.GetInt("iterations")
			sim.Iterations = &n
		}
		if flags.Changed("weeks") {
			n, _ := flags.GetInt("weeks")
			sim.HorizonWeeks = &n
		}
		if flags.Changed("seed") {
			seed, _ := flags.GetInt64("seed")
			sim.Seed = &seed
		}
	}
	if doc.Config != nil {
		if flags.Changed("iterations") {
			doc.Config.Simulation.Iterations, _ = flags.GetInt("iterations")
		}
		if flags.Changed("weeks") {
			doc.Config.Simulation.HorizonWeeks, _ = flags.GetInt("weeks")
		}
		if flags.Changed("seed") {
			doc.Config.Simulation.Seed, _ = flags.GetInt64("seed")
		}
	}
	if flags.Changed("mode") {
		doc.Mode, _ = flags.GetString("mode")
	}
	if flags.Changed("workers") {
		doc.Workers, _ = flags.GetInt("workers")
	}

	scs, err := doc.Scenarios()
	if err != nil {
		return batch{}, err
	}
	mode, err := montecarlo.ParseMode(doc.Mode)
	if err != nil {
		return batch{}, err
	}
	return batch{scenarios: scs, mode: mode, workers: doc.Workers}, nil
}

// progressPrinter は進捗を1行で上書き表示する
func progressPrinter(w io.Writer) func(label string, current, total int) {
	return func(label string, current, total int) {
		fmt.Fprintf(w, "\r%s: %d/%d", label, current, total)
		if current == total {
			fmt.Fprintln(w)
		}
	}
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "Run a Monte Carlo simulation of one scenario",
		Long: `Run simulates a preset (baseline by default) or every scenario in a
config file and prints aggregated metrics.

Examples:
  supplychain-sim run supplier_disruption --iterations 500
  supplychain-sim run --config scenarios.yaml --mode independent --workers 8
  supplychain-sim run baseline --export csv --out iterations.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRun,
	}
	addScenarioFlags(cmd)
	cmd.Flags().String("export", "", "Export per-iteration summaries: csv or jsonl")
	cmd.Flags().String("out", "", "Export destination file (default stdout)")
	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	presets := args
	if len(presets) == 0 && stringFlag(cmd, "config") == "" {
		presets = []string{analysis.BaselineScenario}
	}
	b, err := loadBatch(cmd, presets)
	if err != nil {
		return err
	}

	var format export.Format
	if v := stringFlag(cmd, "export"); v != "" {
		if format, err = export.ParseFormat(v); err != nil {
			return err
		}
	}

	sess, err := newSession(cmd, sessionOptions{workers: b.workers})
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	report := cmd.OutOrStdout()
	outPath := stringFlag(cmd, "out")
	if format != "" && outPath == "" {
		report = cmd.ErrOrStderr()
	}

	ro := simulation.RunOptions{Mode: b.mode}
	if !structuredOutput(cmd) {
		ro.Progress = progressPrinter(cmd.ErrOrStderr())
	}

	outcomes := make([]simulation.Outcome, 0, len(b.scenarios))
	for _, sc := range b.scenarios {
		out, err := sess.svc.Run(ctx, sc, ro)
		if err != nil {
			return err
		}
		outcomes = append(outcomes, out)
	}

	if format != "" {
		if err := exportOutcomes(cmd.OutOrStdout(), outPath, format, outcomes); err != nil {
			return err
		}
	}

	if structuredOutput(cmd) {
		return writeData(cmd, report, outcomes)
	}
	for _, out := range outcomes {
		printOutcome(report, out)
	}
	return nil
}

func exportOutcomes(stdout io.Writer, path string, format export.Format, outcomes []simulation.Outcome) error {
	var summaries []montecarlo.IterationSummary
	for _, out := range outcomes {
		summaries = append(summaries, out.Summaries...)
	}

	if path == "" {
		return export.Write(stdout, format, summaries)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := export.Write(f, format, summaries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printOutcome(w io.Writer, out simulation.Outcome) {
	fmt.Fprintf(w, "Scenario: %s (mode %s)\n", out.Scenario, out.Mode)
	fmt.Fprintf(w, "Iterations: %d completed, %d failed\n", out.Completed, out.Failed)
	if out.RunID != "" {
		fmt.Fprintf(w, "Run ID: %s\n", out.RunID)
	}
	if out.Stats == nil {
		fmt.Fprintln(w, "No completed iterations.")
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, analysis.Report(analysis.Table{out.Scenario: out.Stats.Values()}, nil))
}

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [preset...]",
		Short: "Run several scenarios and compare them against the baseline",
		Long: `Compare runs each scenario and reports metric values with the percentage
change versus the scenario labeled baseline. Without arguments every
preset is compared.

Examples:
  supplychain-sim compare
  supplychain-sim compare baseline supplier_disruption --iterations 200
  supplychain-sim compare --config scenarios.yaml --csv comparison.csv`,
		RunE: runCompare,
	}
	addScenarioFlags(cmd)
	cmd.Flags().String("csv", "", "Also write the comparison table as CSV to this file")
	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	presets := args
	if len(presets) == 0 && stringFlag(cmd, "config") == "" {
		presets = scenario.ListPresets()
	}
	b, err := loadBatch(cmd, presets)
	if err != nil {
		return err
	}

	sess, err := newSession(cmd, sessionOptions{workers: b.workers})
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	ro := simulation.RunOptions{Mode: b.mode}
	if !structuredOutput(cmd) {
		ro.Progress = progressPrinter(cmd.ErrOrStderr())
	}

	cmp, err := sess.svc.Compare(ctx, b.scenarios, ro)
	if err != nil {
		return err
	}

	if path := stringFlag(cmd, "csv"); path != "" {
		if err := writeTableFile(path, cmp); err != nil {
			return err
		}
	}

	if structuredOutput(cmd) {
		return writeData(cmd, cmd.OutOrStdout(), simulation.Comparison{
			Runs:    cmp.Runs,
			Values:  analysis.RoundTable(cmp.Values),
			Pct:     analysis.RoundTable(cmp.Pct),
			Missing: cmp.Missing,
		})
	}
	fmt.Fprint(cmd.OutOrStdout(), analysis.Report(cmp.Values, cmp.Pct))
	if len(cmp.Missing) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\n(no completed iterations, omitted: %s)\n", strings.Join(cmp.Missing, ", "))
	}
	return nil
}

func writeTableFile(path string, cmp simulation.Comparison) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	if err := export.WriteTableCSV(f, cmp.Values, cmp.Pct); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
