package montecarlo

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"supplychain-sim/internal/agent"
	"supplychain-sim/internal/events"
	"supplychain-sim/internal/logger"
	"supplychain-sim/internal/scenario"
	"supplychain-sim/internal/worker"
	"supplychain-sim/internal/world"
)

// エージェント用乱数ストリームをワールドのストリームから分離するための値
const agentSeedSalt int64 = 0x5eed_a6e7

// Mode は乱数ストリームの割り当て方式
type Mode int

const (
	// SharedStream は1つの乱数ストリームを全イテレーションで順に消費する
	SharedStream Mode = iota
	// IndependentStreams はイテレーションごとに独立したストリームを割り当てる
	IndependentStreams
)

func (m Mode) String() string {
	switch m {
	case SharedStream:
		return "shared"
	case IndependentStreams:
		return "independent"
	default:
		return "unknown"
	}
}

// ParseMode は文字列から Mode を解釈する
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "shared":
		return SharedStream, nil
	case "independent":
		return IndependentStreams, nil
	default:
		return SharedStream, fmt.Errorf("unknown stream mode %q", s)
	}
}

// MarshalText は Mode を名前で直列化する
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText は名前から Mode を復元する
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ProgressFunc は完了したイテレーション数と総数を受け取る
type ProgressFunc func(current, total int)

// Options は Run の実行オプション
type Options struct {
	Progress      ProgressFunc
	Mode          Mode
	Workers       int // IndependentStreams でのワーカー数（0でCPU数）
	Bus           *events.Bus
	Decisions     *logger.DecisionLogger
	DisableAgents bool
}

// IterationSummary は1イテレーションの結果
// Failed が true の場合 Metrics は nil で、Error に理由が入る
type IterationSummary struct {
	Scenario    string             `json:"scenario"`
	Iteration   int                `json:"iteration"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	Disruptions map[string]uint64  `json:"disruptions,omitempty"`
	Failed      bool               `json:"failed"`
	Error       string             `json:"error,omitempty"`
}

// Result はシナリオ1件分の実行結果
type Result struct {
	Scenario  string             `json:"scenario"`
	Config    scenario.Config    `json:"config"`
	Mode      Mode               `json:"mode"`
	Summaries []IterationSummary `json:"summaries"`
	Completed int                `json:"completed"`
	Failed    int                `json:"failed"`
	Duration  time.Duration      `json:"duration"`
}

// DisruptionsByType は全イテレーションの障害件数を種類別に合計する
func (r Result) DisruptionsByType() map[string]uint64 {
	out := make(map[string]uint64)
	for _, s := range r.Summaries {
		for t, n := range s.Disruptions {
			out[t] += n
		}
	}
	return out
}

// Runner はモンテカルロ実行を行う
type Runner struct {
	log    *logger.Logger
	active atomic.Int32
}

// NewRunner は新しい Runner を作成する
// log が nil の場合はデフォルトロガーを使用
func NewRunner(log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Default
	}
	return &Runner{log: log}
}

// Active は実行中の Run の数を返す
func (r *Runner) Active() int {
	return int(r.active.Load())
}

// Run は cfg を label として iterations 回シミュレーションする
//
// 設定エラーはイテレーション開始前に返す。個々のイテレーションの失敗は
// Failed マーカーとして結果に残る。ctx がキャンセルされた場合は
// 完了済みのイテレーションと ctx.Err() を返す。
func (r *Runner) Run(ctx context.Context, cfg scenario.Config, label string, opts Options) (Result, error) {
	if err := scenario.Validate(cfg); err != nil {
		return Result{}, err
	}

	r.active.Add(1)
	defer r.active.Add(-1)

	total := cfg.Simulation.Iterations
	res := Result{Scenario: label, Config: cfg, Mode: opts.Mode}
	start := time.Now()

	r.log.Info(label, "starting %d iterations (%d weeks, seed %d, %s streams)",
		total, cfg.Simulation.HorizonWeeks, cfg.Simulation.Seed, opts.Mode)
	opts.Bus.Publish(events.NewRunStartedEvent(label, total))

	var err error
	switch opts.Mode {
	case IndependentStreams:
		res.Summaries, err = r.runIndependent(ctx, cfg, label, opts)
	default:
		res.Summaries, err = r.runShared(ctx, cfg, label, opts)
	}

	for _, s := range res.Summaries {
		if s.Failed {
			res.Failed++
		} else {
			res.Completed++
		}
	}
	res.Duration = time.Since(start)

	if err != nil {
		r.log.Warn(label, "run interrupted after %d of %d iterations: %v", len(res.Summaries), total, err)
		return res, err
	}
	r.log.Info(label, "completed %d iterations (%d failed) in %s", res.Completed, res.Failed, res.Duration.Round(time.Millisecond))
	opts.Bus.Publish(events.NewRunCompleteEvent(label, total, res.Completed))
	return res, nil
}

// runShared は1つのストリームを順に消費する
// イテレーション i の乱数列はイテレーション i-1 の続きになる
func (r *Runner) runShared(ctx context.Context, cfg scenario.Config, label string, opts Options) ([]IterationSummary, error) {
	total := cfg.Simulation.Iterations
	rng := rand.New(rand.NewSource(cfg.Simulation.Seed))
	agentRNG := rand.New(rand.NewSource(cfg.Simulation.Seed ^ agentSeedSalt))

	summaries := make([]IterationSummary, 0, total)
	for i := range total {
		if err := ctx.Err(); err != nil {
			return summaries, err
		}
		s, err := r.iterate(ctx, cfg, label, i, rng, agentRNG, opts)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, s)
		if opts.Progress != nil {
			opts.Progress(i+1, total)
		}
	}
	return summaries, nil
}

// runIndependent はイテレーションごとのシードを先に導出し、ワーカープールで実行する
// 結果はワーカー数に依存しない
func (r *Runner) runIndependent(ctx context.Context, cfg scenario.Config, label string, opts Options) ([]IterationSummary, error) {
	total := cfg.Simulation.Iterations
	master := rand.New(rand.NewSource(cfg.Simulation.Seed))
	type seedPair struct{ world, agents int64 }
	seeds := make([]seedPair, total)
	for i := range seeds {
		seeds[i] = seedPair{world: master.Int63(), agents: master.Int63()}
	}

	results := make([]IterationSummary, total)
	done := make([]bool, total)
	var (
		mu        sync.Mutex
		completed int
	)

	pool := worker.NewPool(opts.Workers)
	pool.Start(ctx)
	defer pool.Stop()

	for i := range total {
		submitted := pool.Submit(func(ctx context.Context) {
			rng := rand.New(rand.NewSource(seeds[i].world))
			agentRNG := rand.New(rand.NewSource(seeds[i].agents))
			s, err := r.iterate(ctx, cfg, label, i, rng, agentRNG, opts)
			if err != nil {
				return
			}

			mu.Lock()
			defer mu.Unlock()
			results[i] = s
			done[i] = true
			completed++
			if opts.Progress != nil {
				opts.Progress(completed, total)
			}
		})
		if !submitted {
			break
		}
	}
	pool.Wait()

	mu.Lock()
	defer mu.Unlock()
	if completed < total {
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		partial := make([]IterationSummary, 0, completed)
		for i, ok := range done {
			if ok {
				partial = append(partial, results[i])
			}
		}
		return partial, err
	}
	return results, nil
}

// iterate は新しい World とエージェントで1イテレーションを実行する
// 返すエラーはコンテキストのキャンセルのみで、それ以外の失敗は Failed マーカーになる
func (r *Runner) iterate(ctx context.Context, cfg scenario.Config, label string, idx int, rng, agentRNG *rand.Rand, opts Options) (s IterationSummary, err error) {
	s = IterationSummary{Scenario: label, Iteration: idx}

	defer func() {
		if rec := recover(); rec != nil {
			s = r.failed(label, idx, fmt.Errorf("panic: %v", rec), opts.Bus)
			err = nil
		}
	}()

	w, err := world.New(cfg, rng)
	if err != nil {
		return r.failed(label, idx, err, opts.Bus), nil
	}

	var roster *agent.Roster
	if !opts.DisableAgents {
		roster = agent.NewRoster(cfg, agentRNG)
	}

	for !w.Done() {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		state, _, _, err := w.Step()
		if err != nil {
			return r.failed(label, idx, err, opts.Bus), nil
		}

		for _, ev := range state.Disruptions {
			opts.Bus.Publish(events.NewDisruptionEvent(label, idx, ev.Week, ev.Region, ev.Type.String(), ev.Severity))
		}
		if roster != nil {
			r.observe(roster, cfg, label, idx, state, opts)
		}
	}

	s.Metrics = w.Summary()
	s.Disruptions = w.DisruptionStats().ByType
	opts.Bus.Publish(events.NewIterationCompleteEvent(label, idx, s.Metrics))
	r.log.Debug(label, "iteration %d complete", idx)
	return s, nil
}

// observe はエージェントに週次の状態を観測させ、意思決定を記録する
// 意思決定は World に反映しない
func (r *Runner) observe(roster *agent.Roster, cfg scenario.Config, label string, idx int, state world.State, opts Options) {
	decisions := roster.Decide(agent.Perception{
		Week:        state.Week,
		Disruptions: state.Disruptions,
		Regions:     cfg.Regions,
	})
	for _, d := range decisions {
		opts.Decisions.Log(map[string]any{
			"scenario":  label,
			"iteration": idx,
			"week":      d.Week,
			"agent":     d.Agent,
			"role":      d.Role.String(),
			"region":    d.Region,
			"values":    d.Values,
		})
		opts.Bus.Publish(events.NewDecisionEvent(label, idx, d.Week, d.Agent, d.Region, d.Values))
	}
}

func (r *Runner) failed(label string, idx int, err error, bus *events.Bus) IterationSummary {
	r.log.Warn(label, "iteration %d failed: %v", idx, err)
	bus.Publish(events.NewIterationFailedEvent(label, idx, err))
	return IterationSummary{
		Scenario:  label,
		Iteration: idx,
		Failed:    true,
		Error:     err.Error(),
	}
}
