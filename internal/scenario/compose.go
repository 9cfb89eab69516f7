package scenario

import (
	"maps"
	"sort"

	"supplychain-sim/internal/logger"
)

// SimulationOverrides はシミュレーション設定の部分上書き
type SimulationOverrides struct {
	Iterations   *int   `yaml:"iterations,omitempty" json:"iterations,omitempty"`
	Seed         *int64 `yaml:"seed,omitempty" json:"seed,omitempty"`
	HorizonWeeks *int   `yaml:"horizon_weeks,omitempty" json:"horizon_weeks,omitempty"`
}

// Overrides はプリセットに重ねるユーザー指定値
type Overrides struct {
	Simulation SimulationOverrides           `yaml:"simulation,omitempty" json:"simulation,omitempty"`
	Regions    map[string]map[string]float64 `yaml:"regions,omitempty" json:"regions,omitempty"`
	Agent      map[string]float64            `yaml:"agent,omitempty" json:"agent,omitempty"`
}

// IsZero は上書きが空かどうかを返す
func (o Overrides) IsZero() bool {
	s := o.Simulation
	return s.Iterations == nil && s.Seed == nil && s.HorizonWeeks == nil &&
		len(o.Regions) == 0 && len(o.Agent) == 0
}

// Compose はプリセットにユーザー上書きを合成する
//
// ベースが baseline 以外の場合、プリセットがデフォルトに掛けた倍率を保持し、
// 上書き値にも同じ倍率を適用する。デフォルトに存在しないフィールドはそのまま代入する。
// 存在しない地域への上書きは無視される。
func Compose(base string, o Overrides) (Config, error) {
	cfg, err := GetPreset(base)
	if err != nil {
		return Config{}, err
	}
	if o.IsZero() {
		return cfg, nil
	}

	multipliers := map[string]map[string]float64{}
	if base != "baseline" {
		multipliers = retainedMultipliers(cfg, DefaultConfig())
	}

	regions := make([]string, 0, len(o.Regions))
	for name := range o.Regions {
		regions = append(regions, name)
	}
	sort.Strings(regions)

	for _, region := range regions {
		profile, ok := cfg.Regions[region]
		if !ok {
			logger.Warn(region, "override for unknown region ignored")
			continue
		}
		fields := o.Regions[region]
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, field := range names {
			v := fields[field]
			if m, ok := multipliers[region][field]; ok {
				v *= m
			}
			profile, err = profile.WithField(field, v)
			if err != nil {
				return Config{}, &ConfigError{
					Field:  "regions." + region + "." + field,
					Reason: "unknown region field",
				}
			}
		}
		cfg.Regions[region] = profile
	}

	if v := o.Simulation.Iterations; v != nil {
		cfg.Simulation.Iterations = *v
	}
	if v := o.Simulation.Seed; v != nil {
		cfg.Simulation.Seed = *v
	}
	if v := o.Simulation.HorizonWeeks; v != nil {
		cfg.Simulation.HorizonWeeks = *v
	}

	if len(o.Agent) > 0 {
		cfg.Agents.COO = mergeCapabilities(cfg.Agents.COO, o.Agent)
		cfg.Agents.RegionalManager = mergeCapabilities(cfg.Agents.RegionalManager, o.Agent)
		cfg.Agents.Supplier = mergeCapabilities(cfg.Agents.Supplier, o.Agent)
	}

	return cfg, nil
}

// retainedMultipliers は preset/default の比を地域・フィールドごとに返す
func retainedMultipliers(preset, def Config) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(preset.Regions))
	for region, p := range preset.Regions {
		d, ok := def.Regions[region]
		if !ok {
			continue
		}
		for _, field := range regionFields {
			pv, ok := p.Field(field)
			if !ok {
				continue
			}
			dv, ok := d.Field(field)
			if !ok || dv == 0 {
				continue
			}
			if out[region] == nil {
				out[region] = map[string]float64{}
			}
			out[region][field] = pv / dv
		}
	}
	return out
}

func mergeCapabilities(dst, src map[string]float64) map[string]float64 {
	out := maps.Clone(dst)
	if out == nil {
		out = make(map[string]float64, len(src))
	}
	maps.Copy(out, src)
	return out
}
