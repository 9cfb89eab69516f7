package scenario

import "fmt"

// BaselineScenario はデフォルトのネットワークをそのまま返す
func BaselineScenario() Config {
	return DefaultConfig().Clone()
}

// SupplierDisruptionScenario は全地域の災害確率を2倍にする
func SupplierDisruptionScenario() Config {
	c := DefaultConfig().Clone()
	c.Name = "supplier_disruption"
	c.Description = "Doubled disaster probability across all supplier regions"
	scaleRegions(&c, FieldDisasterProbability, 2.0, 1.0)
	return c
}

// TransportationDisruptionScenario はインフラ品質を30%低下させる
func TransportationDisruptionScenario() Config {
	c := DefaultConfig().Clone()
	c.Name = "transportation_disruption"
	c.Description = "Infrastructure quality degraded by 30% in all regions"
	scaleRegions(&c, FieldInfrastructureQuality, 0.7, 1.0)
	return c
}

// ProductionDisruptionScenario は生産能力を60%に落とし、災害確率を1.5倍にする
func ProductionDisruptionScenario() Config {
	c := DefaultConfig().Clone()
	c.Name = "production_disruption"
	c.Description = "Production capacity cut to 60% with elevated disaster probability"
	scaleRegions(&c, FieldProductionCapacity, 0.6, 1.0)
	scaleRegions(&c, FieldDisasterProbability, 1.5, 1.0)
	return c
}

// MultiFactorDisruptionScenario は複数要因の同時悪化
func MultiFactorDisruptionScenario() Config {
	c := DefaultConfig().Clone()
	c.Name = "multi_factor_disruption"
	c.Description = "Combined disaster, infrastructure and production stress"
	scaleRegions(&c, FieldDisasterProbability, 1.8, 1.0)
	scaleRegions(&c, FieldInfrastructureQuality, 0.8, 1.0)
	scaleRegions(&c, FieldProductionCapacity, 0.7, 1.0)
	return c
}

// GlobalTariffDisruptionScenario は関税ショック
// East_Asia が最も強く影響を受け、戦略コストも上昇する
func GlobalTariffDisruptionScenario() Config {
	c := DefaultConfig().Clone()
	c.Name = "global_tariff_disruption"
	c.Description = "Tariff shock hitting East_Asia hardest and raising strategy costs"
	for name, p := range c.Regions {
		if name == "East_Asia" {
			p = p.scaled(FieldPoliticalStability, 0.8, 1.0)
			p = p.scaled(FieldLaborCost, 1.3, 1.0)
			p = p.scaled(FieldInfrastructureQuality, 0.9, 1.0)
			p = p.scaled(FieldDisasterProbability, 1.4, 1.0)
		} else {
			p = p.scaled(FieldLaborCost, 1.1, 1.0)
			p = p.scaled(FieldDisasterProbability, 1.2, 1.0)
			p = p.scaled(FieldInfrastructureQuality, 0.95, 1.0)
		}
		c.Regions[name] = p
	}
	scaleStrategyCost(&c, StrategyDiversification, 1.2)
	scaleStrategyCost(&c, StrategyTransport, 1.15)
	return c
}

func scaleRegions(c *Config, field string, k, ifAbsent float64) {
	for name, p := range c.Regions {
		c.Regions[name] = p.scaled(field, k, ifAbsent)
	}
}

func scaleStrategyCost(c *Config, name string, k float64) {
	s, ok := c.Strategies[name]
	if !ok {
		return
	}
	s.CostImpact *= k
	c.Strategies[name] = s
}

var presets = map[string]func() Config{
	"baseline":                  BaselineScenario,
	"supplier_disruption":       SupplierDisruptionScenario,
	"transportation_disruption": TransportationDisruptionScenario,
	"production_disruption":     ProductionDisruptionScenario,
	"multi_factor_disruption":   MultiFactorDisruptionScenario,
	"global_tariff_disruption":  GlobalTariffDisruptionScenario,
}

// GetPreset は名前からプリセットシナリオを取得する
func GetPreset(name string) (Config, error) {
	fn, ok := presets[name]
	if !ok {
		return Config{}, &ConfigError{
			Field:  "preset",
			Reason: fmt.Sprintf("unknown preset %q (available: %v)", name, ListPresets()),
		}
	}
	return fn(), nil
}

// ListPresets は利用可能なプリセット名を返す
func ListPresets() []string {
	return []string{
		"baseline",
		"supplier_disruption",
		"transportation_disruption",
		"production_disruption",
		"multi_factor_disruption",
		"global_tariff_disruption",
	}
}

// Describe はプリセットの説明を返す
func Describe(name string) string {
	c, err := GetPreset(name)
	if err != nil {
		return ""
	}
	return c.Description
}
