package scenario

import (
	"maps"
	"slices"
	"sort"
)

// 戦略名
const (
	StrategyDiversification = "supplier_diversification"
	StrategyInventory       = "inventory_management"
	StrategyTransport       = "transportation_flexibility"
)

// Strategies は必須の耐性戦略名を返す
func Strategies() []string {
	return []string{StrategyDiversification, StrategyInventory, StrategyTransport}
}

// 障害タイプ名
const (
	DisruptionNatural        = "natural"
	DisruptionPolitical      = "political"
	DisruptionInfrastructure = "infrastructure"
)

// KnownDisruptionTypes は設定で指定可能な障害タイプ名を返す
func KnownDisruptionTypes() []string {
	return []string{DisruptionNatural, DisruptionPolitical, DisruptionInfrastructure}
}

// Simulation はモンテカルロ実行の設定
type Simulation struct {
	Iterations      int      `yaml:"iterations" json:"iterations"`
	Seed            int64    `yaml:"seed" json:"seed"`
	HorizonWeeks    int      `yaml:"horizon_weeks" json:"horizon_weeks"`
	DisruptionTypes []string `yaml:"disruption_types" json:"disruption_types"`
}

// Market は市場・経済指標のボラティリティ設定
type Market struct {
	DemandVolatility            float64 `yaml:"demand_volatility" json:"demand_volatility"`
	CompetitorActionProbability float64 `yaml:"competitor_action_probability" json:"competitor_action_probability"`
	GDPVolatility               float64 `yaml:"gdp_volatility" json:"gdp_volatility"`
	InflationVolatility         float64 `yaml:"inflation_volatility" json:"inflation_volatility"`
	ExchangeRateVolatility      float64 `yaml:"exchange_rate_volatility" json:"exchange_rate_volatility"`
}

// Strategy は耐性戦略のパラメータ
type Strategy struct {
	CostImpact         float64 `yaml:"cost_impact" json:"cost_impact"`
	ResilienceImpact   float64 `yaml:"resilience_impact" json:"resilience_impact"`
	ImplementationTime int     `yaml:"implementation_time" json:"implementation_time"` // 週
}

// MetricWeights はメトリクス計算の重み
type MetricWeights struct {
	Resilience         map[string]float64 `yaml:"resilience_weights" json:"resilience_weights"`
	Cost               map[string]float64 `yaml:"cost_weights" json:"cost_weights"`
	ServiceLevelTarget float64            `yaml:"service_level_target" json:"service_level_target"`
}

// Agents は役割ごとの能力値
type Agents struct {
	COO             map[string]float64 `yaml:"coo" json:"coo"`
	RegionalManager map[string]float64 `yaml:"regional_manager" json:"regional_manager"`
	Supplier        map[string]float64 `yaml:"supplier" json:"supplier"`
}

// Config はシナリオの設定
//
// Config は値として扱う。派生（Clone、プリセット、Compose）は常に新しいインスタンスを返す。
type Config struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`

	Simulation Simulation               `yaml:"simulation" json:"simulation"`
	Market     Market                   `yaml:"market" json:"market"`
	Regions    map[string]RegionProfile `yaml:"regions" json:"regions"`
	Strategies map[string]Strategy      `yaml:"resilience_strategies" json:"resilience_strategies"`
	Weights    MetricWeights            `yaml:"metric_weights" json:"metric_weights"`
	Agents     Agents                   `yaml:"agents" json:"agents"`
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		Name:        "baseline",
		Description: "Baseline network with default regional risk profiles",
		Simulation: Simulation{
			Iterations:      100,
			Seed:            42,
			HorizonWeeks:    52,
			DisruptionTypes: KnownDisruptionTypes(),
		},
		Market: Market{
			DemandVolatility:            0.2,
			CompetitorActionProbability: 0.1,
			GDPVolatility:               0.01,
			InflationVolatility:         0.005,
			ExchangeRateVolatility:      0.02,
		},
		Regions: map[string]RegionProfile{
			"North_America": {
				PoliticalStability:    0.8,
				DisasterProbability:   0.1,
				LaborCost:             1.0,
				InfrastructureQuality: 0.9,
				MarketSize:            0.8,
			},
			"Europe": {
				PoliticalStability:    0.7,
				DisasterProbability:   0.08,
				LaborCost:             1.1,
				InfrastructureQuality: 0.95,
				MarketSize:            0.7,
			},
			"East_Asia": {
				PoliticalStability:    0.6,
				DisasterProbability:   0.15,
				LaborCost:             0.7,
				InfrastructureQuality: 0.85,
				MarketSize:            0.9,
			},
		},
		Strategies: map[string]Strategy{
			StrategyDiversification: {CostImpact: 0.4, ResilienceImpact: 0.6, ImplementationTime: 12},
			StrategyInventory:       {CostImpact: 0.3, ResilienceImpact: 0.4, ImplementationTime: 8},
			StrategyTransport:       {CostImpact: 0.2, ResilienceImpact: 0.3, ImplementationTime: 6},
		},
		Weights: MetricWeights{
			Resilience: map[string]float64{
				StrategyDiversification: 0.4,
				StrategyInventory:       0.3,
				StrategyTransport:       0.3,
			},
			Cost: map[string]float64{
				StrategyDiversification: 0.5,
				StrategyInventory:       0.3,
				StrategyTransport:       0.2,
			},
			ServiceLevelTarget: 0.95,
		},
		Agents: Agents{
			COO: map[string]float64{
				"decision_making_speed":    0.8,
				"risk_tolerance":           0.6,
				"strategic_vision":         0.9,
				"leadership_effectiveness": 0.85,
				"communication_clarity":    0.8,
			},
			RegionalManager: map[string]float64{
				"local_market_knowledge": 0.85,
				"operational_efficiency": 0.75,
				"team_management":        0.8,
				"risk_assessment":        0.7,
				"supplier_relationship":  0.8,
			},
			Supplier: map[string]float64{
				"production_capacity":   0.7,
				"quality_consistency":   0.8,
				"delivery_reliability":  0.75,
				"cost_efficiency":       0.7,
				"innovation_capability": 0.6,
			},
		},
	}
}

// Clone は設定のディープコピーを返す
func (c Config) Clone() Config {
	out := c
	out.Simulation.DisruptionTypes = slices.Clone(c.Simulation.DisruptionTypes)
	if c.Regions != nil {
		out.Regions = make(map[string]RegionProfile, len(c.Regions))
		for name, p := range c.Regions {
			out.Regions[name] = p.Clone()
		}
	}
	out.Strategies = maps.Clone(c.Strategies)
	out.Weights.Resilience = maps.Clone(c.Weights.Resilience)
	out.Weights.Cost = maps.Clone(c.Weights.Cost)
	out.Agents.COO = maps.Clone(c.Agents.COO)
	out.Agents.RegionalManager = maps.Clone(c.Agents.RegionalManager)
	out.Agents.Supplier = maps.Clone(c.Agents.Supplier)
	return out
}

// RegionNames は地域名を昇順で返す
// 乱数の消費順序を決定的にするため、地域の走査は常にこの順序で行う
func (c Config) RegionNames() []string {
	names := make([]string, 0, len(c.Regions))
	for name := range c.Regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WeightedStrategyCost は戦略コストの加重和を返す
func (c Config) WeightedStrategyCost() float64 {
	var total float64
	for _, name := range Strategies() {
		total += c.Weights.Cost[name] * c.Strategies[name].CostImpact
	}
	return total
}
