package market

import (
	"fmt"
	"math"
	"math/rand"

	"supplychain-sim/internal/scenario"
)

// 経済指標の初期値と上下限
const (
	InitialGDPGrowth    = 0.02
	InitialInflation    = 0.02
	InitialExchangeRate = 1.0

	minGDPGrowth    = -0.05
	maxGDPGrowth    = 0.10
	minInflation    = 0.0
	maxInflation    = 0.15
	minExchangeRate = 0.5
	maxExchangeRate = 2.0

	minActionMagnitude = 0.1
	maxActionMagnitude = 0.5
)

// ActionKind は競合他社の行動の種類
type ActionKind int

const (
	ActionPriceCut ActionKind = iota
	ActionCapacityIncrease
	ActionNewSupplier
)

var actionKinds = []ActionKind{ActionPriceCut, ActionCapacityIncrease, ActionNewSupplier}

func (a ActionKind) String() string {
	switch a {
	case ActionPriceCut:
		return "price_cut"
	case ActionCapacityIncrease:
		return "capacity_increase"
	case ActionNewSupplier:
		return "new_supplier"
	default:
		return "unknown"
	}
}

// MarshalText は ActionKind を名前で直列化する
func (a ActionKind) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText は名前から ActionKind を復元する
func (a *ActionKind) UnmarshalText(text []byte) error {
	for _, k := range actionKinds {
		if k.String() == string(text) {
			*a = k
			return nil
		}
	}
	return fmt.Errorf("unknown competitor action: %s", text)
}

// Action は競合他社の戦略的な動き
type Action struct {
	Week      int        `json:"week"`
	Region    string     `json:"region"`
	Kind      ActionKind `json:"kind"`
	Magnitude float64    `json:"magnitude"`
}

// Indicators は地域の経済指標
type Indicators struct {
	GDPGrowth    float64 `json:"gdp_growth"`
	Inflation    float64 `json:"inflation_rate"`
	ExchangeRate float64 `json:"exchange_rate"`
}

// EconomicImpact は GDP 成長率からインフレ率を引いた値
func (i Indicators) EconomicImpact() float64 {
	return i.GDPGrowth - i.Inflation
}

// Model は地域ごとの市場状態を保持する
// Model は1イテレーション内でのみ使用し、共有しない
type Model struct {
	cfg     scenario.Market
	regions []string
	rng     *rand.Rand

	prices     map[string]float64
	indicators map[string]Indicators
	actions    []Action
}

// New は新しい市場モデルを作成する
// regions は乱数消費順序を決めるため昇順で渡すこと
func New(cfg scenario.Market, regions []string, rng *rand.Rand) *Model {
	m := &Model{
		cfg:        cfg,
		regions:    regions,
		rng:        rng,
		prices:     make(map[string]float64, len(regions)),
		indicators: make(map[string]Indicators, len(regions)),
	}
	for _, r := range regions {
		m.prices[r] = 1.0
		m.indicators[r] = Indicators{
			GDPGrowth:    InitialGDPGrowth,
			Inflation:    InitialInflation,
			ExchangeRate: InitialExchangeRate,
		}
	}
	return m
}

// Update は1週間分の市場・経済指標を進める
func (m *Model) Update(week int) {
	for _, r := range m.regions {
		m.prices[r] = 1.0 + m.rng.NormFloat64()*m.cfg.DemandVolatility

		if m.rng.Float64() < m.cfg.CompetitorActionProbability {
			kind := actionKinds[m.rng.Intn(len(actionKinds))]
			mag := minActionMagnitude + m.rng.Float64()*(maxActionMagnitude-minActionMagnitude)
			m.actions = append(m.actions, Action{Week: week, Region: r, Kind: kind, Magnitude: mag})
		}
	}

	for _, r := range m.regions {
		ind := m.indicators[r]
		ind.GDPGrowth = clamp(ind.GDPGrowth+m.rng.NormFloat64()*m.cfg.GDPVolatility, minGDPGrowth, maxGDPGrowth)
		ind.Inflation = clamp(ind.Inflation+m.rng.NormFloat64()*m.cfg.InflationVolatility, minInflation, maxInflation)
		ind.ExchangeRate = clamp(ind.ExchangeRate*math.Exp(m.rng.NormFloat64()*m.cfg.ExchangeRateVolatility), minExchangeRate, maxExchangeRate)
		m.indicators[r] = ind
	}
}

// PriceTrend は地域の価格トレンドを返す
func (m *Model) PriceTrend(region string) float64 {
	return m.prices[region]
}

// Indicators は地域の経済指標を返す
func (m *Model) Indicators(region string) Indicators {
	return m.indicators[region]
}

// Snapshot は全地域の経済指標のコピーを返す
func (m *Model) Snapshot() map[string]Indicators {
	out := make(map[string]Indicators, len(m.indicators))
	for r, ind := range m.indicators {
		out[r] = ind
	}
	return out
}

// Actions は競合他社の行動履歴を返す
func (m *Model) Actions() []Action {
	out := make([]Action, len(m.actions))
	copy(out, m.actions)
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
