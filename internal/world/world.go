package world

import (
	"errors"
	"fmt"
	"math/rand"

	"supplychain-sim/internal/disruption"
	"supplychain-sim/internal/market"
	"supplychain-sim/internal/metrics"
	"supplychain-sim/internal/recovery"
	"supplychain-sim/internal/scenario"
)

var (
	// ErrTerminal は終了済みの World を進めようとしたときに返される
	ErrTerminal = errors.New("world is terminal")
	// ErrNonFinite はメトリクスが NaN または無限大になったときに返される
	ErrNonFinite = errors.New("non-finite metric")
)

// State は World の週次状態
type State struct {
	Week        int                          `json:"week"`
	Disruptions []disruption.Event           `json:"disruptions"`
	Metrics     Metrics                      `json:"metrics"`
	Indicators  map[string]market.Indicators `json:"indicators"`
	Recovering  []string                     `json:"recovering"`
}

// World は1イテレーション分のサプライチェーン状態を進める
// World は単一のゴルーチンから使用する
type World struct {
	cfg     scenario.Config
	regions []string
	horizon int
	week    int

	market   *market.Model
	injector *disruption.Injector
	ledger   *disruption.Ledger
	recovery *recovery.Manager
	recorder *metrics.Recorder

	strategyCost float64
	transportRes float64
	prev         *Previous
}

// New は新しい World を作成する
// rng はイテレーションの乱数ストリームで、World が消費する
func New(cfg scenario.Config, rng *rand.Rand) (*World, error) {
	if err := scenario.Validate(cfg); err != nil {
		return nil, err
	}
	types, err := disruption.ParseTypes(cfg.Simulation.DisruptionTypes)
	if err != nil {
		return nil, &scenario.ConfigError{Field: "simulation.disruption_types", Reason: err.Error()}
	}

	regions := cfg.RegionNames()
	return &World{
		cfg:          cfg,
		regions:      regions,
		horizon:      cfg.Simulation.HorizonWeeks,
		market:       market.New(cfg.Market, regions, rng),
		injector:     disruption.NewInjector(types, rng),
		ledger:       disruption.NewLedger(),
		recovery:     recovery.New(cfg.Weights.Resilience),
		recorder:     metrics.New(),
		strategyCost: cfg.WeightedStrategyCost(),
		transportRes: cfg.Strategies[scenario.StrategyTransport].ResilienceImpact,
	}, nil
}

// Step は World を1週間進める
// 戻り値は新しい状態、報酬、終了したかどうか
func (w *World) Step() (State, float64, bool, error) {
	if w.Done() {
		return State{}, 0, true, ErrTerminal
	}
	w.week++

	w.market.Update(w.week)

	events := w.injector.Inject(w.week, w.regions, w.cfg.Regions)
	w.ledger.Append(events...)
	w.recovery.Observe(w.week, events)

	inputs := Inputs{
		Regions:               make([]RegionInput, 0, len(w.regions)),
		Disruptions:           events,
		Prev:                  w.prev,
		StrategyCost:          w.strategyCost,
		RecoveryEffectiveness: w.recovery.Effectiveness(),
		TransportFlexibility:  w.transportRes,
	}
	for _, name := range w.regions {
		inputs.Regions = append(inputs.Regions, RegionInput{
			Name:       name,
			Profile:    w.cfg.Regions[name],
			Indicators: w.market.Indicators(name),
		})
	}

	m := Compute(inputs)
	if key, ok := metrics.Finite(flatten(m)); !ok {
		return State{}, 0, w.Done(), fmt.Errorf("%w: %s at week %d", ErrNonFinite, key, w.week)
	}

	w.record(m)
	w.prev = &Previous{ServiceLevel: m.ServiceLevel, InventoryHealth: m.InventoryHealth}

	state := State{
		Week:        w.week,
		Disruptions: events,
		Metrics:     m,
		Indicators:  w.market.Snapshot(),
		Recovering:  w.recovery.Disrupted(),
	}
	return state, m.Reward, w.Done(), nil
}

func (w *World) record(m Metrics) {
	r := w.recorder
	r.Record(metrics.RiskExposure, m.RiskExposure)
	r.Record(metrics.RecoveryTime, m.RecoveryTime)
	for _, name := range w.regions {
		r.RecordRegion(metrics.SupplierPerformance, name, m.SupplierPerformance[name])
		r.RecordRegion(metrics.RegionalPerformance, name, m.RegionalPerformance[name])
	}
	r.Record(metrics.TransportationEfficiency, m.TransportationEfficiency)
	r.Record(metrics.CostImpact, m.CostImpact)
	r.Record(metrics.ResilienceScore, m.ResilienceScore)
	r.Record(metrics.InventoryHealth, m.InventoryHealth)
	r.Record(metrics.ServiceLevel, m.ServiceLevel)
	r.Record(metrics.ROI, m.ROI)
	r.Record(metrics.Reward, m.Reward)
}

// flatten はメトリクスを有限性チェック用の map に変換する
func flatten(m Metrics) map[string]float64 {
	out := map[string]float64{
		metrics.RiskExposure:             m.RiskExposure,
		metrics.RecoveryTime:             m.RecoveryTime,
		metrics.TransportationEfficiency: m.TransportationEfficiency,
		metrics.CostImpact:               m.CostImpact,
		metrics.ResilienceScore:          m.ResilienceScore,
		metrics.InventoryHealth:          m.InventoryHealth,
		metrics.ServiceLevel:             m.ServiceLevel,
		metrics.ROI:                      m.ROI,
		metrics.Reward:                   m.Reward,
	}
	for r, v := range m.SupplierPerformance {
		out[metrics.SupplierPerformance+"_"+r] = v
	}
	for r, v := range m.RegionalPerformance {
		out[metrics.RegionalPerformance+"_"+r] = v
	}
	return out
}

// Done は horizon に達したかどうかを返す
func (w *World) Done() bool {
	return w.week >= w.horizon
}

// Week は現在の週を返す
func (w *World) Week() int {
	return w.week
}

// Regions は地域名を昇順で返す
func (w *World) Regions() []string {
	out := make([]string, len(w.regions))
	copy(out, w.regions)
	return out
}

// Profile は地域プロファイルを返す
func (w *World) Profile(region string) (scenario.RegionProfile, bool) {
	p, ok := w.cfg.Regions[region]
	return p, ok
}

// Ledger は障害履歴を返す
func (w *World) Ledger() *disruption.Ledger {
	return w.ledger
}

// Recorder はメトリクス系列を返す
func (w *World) Recorder() *metrics.Recorder {
	return w.recorder
}

// DisruptionStats は障害統計を返す
func (w *World) DisruptionStats() disruption.Stats {
	return w.injector.Stats()
}

// RecoveryStats は復旧統計を返す
func (w *World) RecoveryStats() recovery.Stats {
	return w.recovery.Stats()
}

// CompetitorActions は競合他社の行動履歴を返す
func (w *World) CompetitorActions() []market.Action {
	return w.market.Actions()
}

// Summary はイテレーションのメトリクスサマリーを返す
func (w *World) Summary() map[string]float64 {
	s := w.recorder.Summary()
	s[metrics.DisruptionCount] = float64(w.ledger.Len())
	return s
}
