package scenario

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ConfigError は設定の不備を表す
// ConfigError はイテレーション開始前に検出され、実行全体を中止する
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "config error: " + e.Reason
	}
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Reason)
}

// IsConfigError は err が ConfigError を含むかどうかを返す
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Validate は設定の構造を検証する
func Validate(c Config) error {
	if c.Simulation.Iterations <= 0 {
		return &ConfigError{Field: "simulation.iterations", Reason: "must be positive"}
	}
	if c.Simulation.HorizonWeeks <= 0 {
		return &ConfigError{Field: "simulation.horizon_weeks", Reason: "must be positive"}
	}
	if len(c.Simulation.DisruptionTypes) == 0 {
		return &ConfigError{Field: "simulation.disruption_types", Reason: "at least one type is required"}
	}
	for _, t := range c.Simulation.DisruptionTypes {
		if !slices.Contains(KnownDisruptionTypes(), t) {
			return &ConfigError{Field: "simulation.disruption_types", Reason: fmt.Sprintf("unknown type %q", t)}
		}
	}
	if len(c.Regions) == 0 {
		return &ConfigError{Field: "regions", Reason: "section is missing"}
	}
	for _, name := range Strategies() {
		if _, ok := c.Strategies[name]; !ok {
			return &ConfigError{Field: "resilience_strategies." + name, Reason: "section is missing"}
		}
		if _, ok := c.Weights.Resilience[name]; !ok {
			return &ConfigError{Field: "metric_weights.resilience_weights." + name, Reason: "weight is missing"}
		}
		if _, ok := c.Weights.Cost[name]; !ok {
			return &ConfigError{Field: "metric_weights.cost_weights." + name, Reason: "weight is missing"}
		}
	}
	return nil
}

// ValidateRanges は数値の範囲を検証する
// ユーザーが記述した設定ドキュメントの読み込み時に使用する
func ValidateRanges(c Config) error {
	if err := Validate(c); err != nil {
		return err
	}
	for _, region := range c.RegionNames() {
		p := c.Regions[region]
		for _, field := range regionFields {
			v, ok := p.Field(field)
			if !ok {
				continue
			}
			path := fmt.Sprintf("regions.%s.%s", region, field)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &ConfigError{Field: path, Reason: "must be finite"}
			}
			if v < 0 {
				return &ConfigError{Field: path, Reason: "must be non-negative"}
			}
			if IsFractionalField(field) && v > 1 {
				return &ConfigError{Field: path, Reason: "must be between 0 and 1"}
			}
		}
	}
	m := c.Market
	for name, v := range map[string]float64{
		"market.demand_volatility":             m.DemandVolatility,
		"market.gdp_volatility":                m.GDPVolatility,
		"market.inflation_volatility":          m.InflationVolatility,
		"market.exchange_rate_volatility":      m.ExchangeRateVolatility,
		"market.competitor_action_probability": m.CompetitorActionProbability,
	} {
		if v < 0 || math.IsNaN(v) {
			return &ConfigError{Field: name, Reason: "must be non-negative"}
		}
	}
	if m.CompetitorActionProbability > 1 {
		return &ConfigError{Field: "market.competitor_action_probability", Reason: "must be between 0 and 1"}
	}
	return nil
}
