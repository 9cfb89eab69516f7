package scenario

// Parameter は外部から編集可能なパラメータのメタデータ
type Parameter struct {
	Path    string  `json:"path" yaml:"path"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Default float64 `json:"default" yaml:"default"`
}

// EditableParameters は上書き可能なパラメータ一覧を返す
// 地域パラメータの既定値はプリセットの値
func EditableParameters(preset string) ([]Parameter, error) {
	cfg, err := GetPreset(preset)
	if err != nil {
		return nil, err
	}
	def := DefaultConfig()

	params := []Parameter{
		{Path: "simulation.iterations", Min: 10, Max: 10000, Default: float64(def.Simulation.Iterations)},
		{Path: "simulation.horizon_weeks", Min: 1, Max: 520, Default: float64(def.Simulation.HorizonWeeks)},
		{Path: "simulation.seed", Min: 0, Max: 999999, Default: float64(def.Simulation.Seed)},
	}
	for _, region := range cfg.RegionNames() {
		p := cfg.Regions[region]
		for _, field := range []string{FieldDisasterProbability, FieldInfrastructureQuality, FieldProductionCapacity} {
			v, ok := p.Field(field)
			if !ok {
				v = 1.0
			}
			params = append(params, Parameter{
				Path:    "regions." + region + "." + field,
				Min:     0,
				Max:     1,
				Default: v,
			})
		}
	}
	params = append(params,
		Parameter{Path: "agent.decision_making_speed", Min: 0, Max: 1, Default: def.Agents.COO["decision_making_speed"]},
		Parameter{Path: "agent.risk_tolerance", Min: 0, Max: 1, Default: def.Agents.COO["risk_tolerance"]},
	)
	return params, nil
}
