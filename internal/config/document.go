package config

import (
	"encoding/json"
	"maps"

	"supplychain-sim/internal/scenario"

	"gopkg.in/yaml.v3"
)

// fileDocument はデコード直後の設定ファイル
// config セクションは記述されたフィールドだけを持つ
type fileDocument struct {
	Scenarios []ScenarioSpec  `yaml:"scenarios" json:"scenarios"`
	Config    *configDocument `yaml:"config" json:"config"`
	Mode      string          `yaml:"mode" json:"mode"`
	Workers   int             `yaml:"workers" json:"workers"`
}

type configDocument struct {
	Name        string                            `yaml:"name" json:"name"`
	Description string                            `yaml:"description" json:"description"`
	Simulation  *simulationDocument               `yaml:"simulation" json:"simulation"`
	Market      *marketDocument                   `yaml:"market" json:"market"`
	Regions     map[string]scenario.RegionProfile `yaml:"regions" json:"regions"`
	Strategies  map[string]scenario.Strategy      `yaml:"resilience_strategies" json:"resilience_strategies"`
	Weights     *weightsDocument                  `yaml:"metric_weights" json:"metric_weights"`
	Agents      *agentsDocument                   `yaml:"agents" json:"agents"`
}

type simulationDocument struct {
	Iterations      *int     `yaml:"iterations" json:"iterations"`
	Seed            *int64   `yaml:"seed" json:"seed"`
	HorizonWeeks    *int     `yaml:"horizon_weeks" json:"horizon_weeks"`
	DisruptionTypes []string `yaml:"disruption_types" json:"disruption_types"`
}

type marketDocument struct {
	DemandVolatility            *float64 `yaml:"demand_volatility" json:"demand_volatility"`
	CompetitorActionProbability *float64 `yaml:"competitor_action_probability" json:"competitor_action_probability"`
	GDPVolatility               *float64 `yaml:"gdp_volatility" json:"gdp_volatility"`
	InflationVolatility         *float64 `yaml:"inflation_volatility" json:"inflation_volatility"`
	ExchangeRateVolatility      *float64 `yaml:"exchange_rate_volatility" json:"exchange_rate_volatility"`
}

type weightsDocument struct {
	Resilience         map[string]float64 `yaml:"resilience_weights" json:"resilience_weights"`
	Cost               map[string]float64 `yaml:"cost_weights" json:"cost_weights"`
	ServiceLevelTarget *float64           `yaml:"service_level_target" json:"service_level_target"`
}

type agentsDocument struct {
	COO             map[string]float64 `yaml:"coo" json:"coo"`
	RegionalManager map[string]float64 `yaml:"regional_manager" json:"regional_manager"`
	Supplier        map[string]float64 `yaml:"supplier" json:"supplier"`
}

// UnmarshalJSON は config セクションを DefaultConfig に重ねてデコードする
func (f *FileConfig) UnmarshalJSON(data []byte) error {
	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*f = doc.fileConfig()
	return nil
}

// UnmarshalYAML は config セクションを DefaultConfig に重ねてデコードする
func (f *FileConfig) UnmarshalYAML(value *yaml.Node) error {
	var doc fileDocument
	if err := value.Decode(&doc); err != nil {
		return err
	}
	*f = doc.fileConfig()
	return nil
}

func (d fileDocument) fileConfig() FileConfig {
	f := FileConfig{Scenarios: d.Scenarios, Mode: d.Mode, Workers: d.Workers}
	if d.Config != nil {
		cfg := d.Config.overlay()
		f.Config = &cfg
	}
	return f
}

// overlay は DefaultConfig を起点に、記述されたフィールドだけを上書きした設定を返す
// regions / resilience_strategies / 重みのマップは記述があれば丸ごと置き換え、
// エージェント能力値はキーごとにマージする
func (d configDocument) overlay() scenario.Config {
	cfg := scenario.DefaultConfig()
	cfg.Name = d.Name
	cfg.Description = d.Description

	if s := d.Simulation; s != nil {
		setIf(&cfg.Simulation.Iterations, s.Iterations)
		setIf(&cfg.Simulation.Seed, s.Seed)
		setIf(&cfg.Simulation.HorizonWeeks, s.HorizonWeeks)
		if s.DisruptionTypes != nil {
			cfg.Simulation.DisruptionTypes = s.DisruptionTypes
		}
	}

	if m := d.Market; m != nil {
		setIf(&cfg.Market.DemandVolatility, m.DemandVolatility)
		setIf(&cfg.Market.CompetitorActionProbability, m.CompetitorActionProbability)
		setIf(&cfg.Market.GDPVolatility, m.GDPVolatility)
		setIf(&cfg.Market.InflationVolatility, m.InflationVolatility)
		setIf(&cfg.Market.ExchangeRateVolatility, m.ExchangeRateVolatility)
	}

	if d.Regions != nil {
		cfg.Regions = d.Regions
	}
	if d.Strategies != nil {
		cfg.Strategies = d.Strategies
	}

	if w := d.Weights; w != nil {
		if w.Resilience != nil {
			cfg.Weights.Resilience = w.Resilience
		}
		if w.Cost != nil {
			cfg.Weights.Cost = w.Cost
		}
		setIf(&cfg.Weights.ServiceLevelTarget, w.ServiceLevelTarget)
	}

	if a := d.Agents; a != nil {
		maps.Copy(cfg.Agents.COO, a.COO)
		maps.Copy(cfg.Agents.RegionalManager, a.RegionalManager)
		maps.Copy(cfg.Agents.Supplier, a.Supplier)
	}
	return cfg
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
