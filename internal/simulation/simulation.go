package simulation

import (
	"context"
	"errors"
	"fmt"

	"supplychain-sim/internal/analysis"
	"supplychain-sim/internal/config"
	"supplychain-sim/internal/events"
	"supplychain-sim/internal/logger"
	"supplychain-sim/internal/montecarlo"
	"supplychain-sim/internal/store"
)

// Options は Service の依存関係
// Store / Bus / Decisions は省略可能
type Options struct {
	Store     *store.Store
	Bus       *events.Bus
	Decisions *logger.DecisionLogger
	Workers   int
	Log       *logger.Logger
}

// RunOptions は1回の実行ごとの設定
type RunOptions struct {
	Mode     montecarlo.Mode
	Progress func(label string, current, total int)
}

// Outcome はシナリオ1件の実行・集計・保存の結果
type Outcome struct {
	RunID     string                        `json:"run_id,omitempty"`
	Scenario  string                        `json:"scenario"`
	Mode      montecarlo.Mode               `json:"mode"`
	Completed int                           `json:"completed"`
	Failed    int                           `json:"failed"`
	Stats     *analysis.Stats               `json:"stats,omitempty"`
	Summaries []montecarlo.IterationSummary `json:"-"`
}

// Comparison は複数シナリオの比較結果
// Missing は完了イテレーションがなく表から除外されたシナリオ名
type Comparison struct {
	Runs    []Outcome      `json:"runs"`
	Values  analysis.Table `json:"values"`
	Pct     analysis.Table `json:"pct_change"`
	Missing []string       `json:"missing,omitempty"`
}

// Service はシナリオの実行、集計、保存をまとめる
// CLI / HTTP API / MCP サーバーから共通で使用する
type Service struct {
	runner *montecarlo.Runner
	opts   Options
	log    *logger.Logger
}

// New は新しい Service を作成する
func New(opts Options) *Service {
	log := opts.Log
	if log == nil {
		log = logger.Default
	}
	return &Service{
		runner: montecarlo.NewRunner(log),
		opts:   opts,
		log:    log,
	}
}

// Store は保存先を返す（未設定なら nil）
func (s *Service) Store() *store.Store {
	return s.opts.Store
}

// Active は実行中のシナリオ数を返す
func (s *Service) Active() int {
	return s.runner.Active()
}

// Run はシナリオを実行し、集計して保存する
// 完了イテレーションが1件もない場合 Stats は nil になる
func (s *Service) Run(ctx context.Context, sc config.Labeled, ro RunOptions) (Outcome, error) {
	mcOpts := montecarlo.Options{
		Mode:      ro.Mode,
		Workers:   s.opts.Workers,
		Bus:       s.opts.Bus,
		Decisions: s.opts.Decisions,
	}
	if ro.Progress != nil {
		mcOpts.Progress = func(current, total int) { ro.Progress(sc.Label, current, total) }
	}

	res, err := s.runner.Run(ctx, sc.Config, sc.Label, mcOpts)
	if err != nil {
		return Outcome{}, fmt.Errorf("scenario %s: %w", sc.Label, err)
	}

	out := Outcome{
		Scenario:  res.Scenario,
		Mode:      res.Mode,
		Completed: res.Completed,
		Failed:    res.Failed,
		Summaries: res.Summaries,
	}

	var flat map[string]float64
	st, err := analysis.Analyze(res.Summaries)
	switch {
	case err == nil:
		out.Stats = &st
		flat = st.Flat()
	case errors.Is(err, analysis.ErrNoIterations):
		s.log.Warn(sc.Label, "all %d iterations failed", res.Failed)
	default:
		return out, fmt.Errorf("scenario %s: %w", sc.Label, err)
	}

	if s.opts.Store != nil {
		run, err := s.opts.Store.SaveRun(ctx, res, flat)
		if err != nil {
			return out, fmt.Errorf("scenario %s: %w", sc.Label, err)
		}
		out.RunID = run.ID
		s.log.Debug(sc.Label, "saved run %s", run.ID)
	}
	return out, nil
}

// Compare は複数シナリオを順に実行し、baseline との比較表を作る
// 全シナリオで完了イテレーションがない場合は analysis.ErrNoIterations を返す
func (s *Service) Compare(ctx context.Context, scenarios []config.Labeled, ro RunOptions) (Comparison, error) {
	cmp := Comparison{Runs: make([]Outcome, 0, len(scenarios))}
	stats := make(map[string]analysis.Stats, len(scenarios))

	for _, sc := range scenarios {
		out, err := s.Run(ctx, sc, ro)
		if err != nil {
			return cmp, err
		}
		cmp.Runs = append(cmp.Runs, out)
		if out.Stats == nil {
			cmp.Missing = append(cmp.Missing, sc.Label)
			continue
		}
		stats[sc.Label] = *out.Stats
	}
	if len(stats) == 0 {
		return cmp, analysis.ErrNoIterations
	}

	cmp.Values, cmp.Pct = analysis.Compare(stats)
	return cmp, nil
}
