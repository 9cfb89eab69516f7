package scenario

import (
	"fmt"
	"math"
)

// 地域プロファイルのフィールド名
const (
	FieldPoliticalStability    = "political_stability"
	FieldDisasterProbability   = "disaster_probability"
	FieldLaborCost             = "labor_cost"
	FieldInfrastructureQuality = "infrastructure_quality"
	FieldMarketSize            = "market_size"
	FieldProductionCapacity    = "production_capacity"
)

var regionFields = []string{
	FieldPoliticalStability,
	FieldDisasterProbability,
	FieldLaborCost,
	FieldInfrastructureQuality,
	FieldMarketSize,
	FieldProductionCapacity,
}

// RegionFields は地域プロファイルのフィールド名を返す
func RegionFields() []string {
	out := make([]string, len(regionFields))
	copy(out, regionFields)
	return out
}

// RegionProfile は地域のリスク・経済特性
//
// labor_cost 以外のフィールドは [0,1] の比率。
// production_capacity は任意で、生産系プリセットで追加される。
type RegionProfile struct {
	PoliticalStability    float64  `yaml:"political_stability" json:"political_stability"`
	DisasterProbability   float64  `yaml:"disaster_probability" json:"disaster_probability"`
	LaborCost             float64  `yaml:"labor_cost" json:"labor_cost"`
	InfrastructureQuality float64  `yaml:"infrastructure_quality" json:"infrastructure_quality"`
	MarketSize            float64  `yaml:"market_size" json:"market_size"`
	ProductionCapacity    *float64 `yaml:"production_capacity,omitempty" json:"production_capacity,omitempty"`
}

// Clone はプロファイルのコピーを返す
func (p RegionProfile) Clone() RegionProfile {
	out := p
	if p.ProductionCapacity != nil {
		v := *p.ProductionCapacity
		out.ProductionCapacity = &v
	}
	return out
}

// Field は名前でフィールド値を返す
// 値が存在しない（未知の名前、または未設定の production_capacity）場合は false
func (p RegionProfile) Field(name string) (float64, bool) {
	switch name {
	case FieldPoliticalStability:
		return p.PoliticalStability, true
	case FieldDisasterProbability:
		return p.DisasterProbability, true
	case FieldLaborCost:
		return p.LaborCost, true
	case FieldInfrastructureQuality:
		return p.InfrastructureQuality, true
	case FieldMarketSize:
		return p.MarketSize, true
	case FieldProductionCapacity:
		if p.ProductionCapacity == nil {
			return 0, false
		}
		return *p.ProductionCapacity, true
	default:
		return 0, false
	}
}

// WithField はフィールドを置き換えたコピーを返す
// 比率フィールドは [0,1] にクランプされる
func (p RegionProfile) WithField(name string, v float64) (RegionProfile, error) {
	out := p.Clone()
	if IsFractionalField(name) {
		v = Clamp01(v)
	}
	switch name {
	case FieldPoliticalStability:
		out.PoliticalStability = v
	case FieldDisasterProbability:
		out.DisasterProbability = v
	case FieldLaborCost:
		out.LaborCost = math.Max(0, v)
	case FieldInfrastructureQuality:
		out.InfrastructureQuality = v
	case FieldMarketSize:
		out.MarketSize = v
	case FieldProductionCapacity:
		out.ProductionCapacity = &v
	default:
		return p, &ConfigError{Field: name, Reason: "unknown region field"}
	}
	return out, nil
}

// scaled はフィールドを k 倍したコピーを返す
// 未設定のフィールドは ifAbsent を基準値とする
func (p RegionProfile) scaled(name string, k, ifAbsent float64) RegionProfile {
	v, ok := p.Field(name)
	if !ok {
		v = ifAbsent
	}
	out, err := p.WithField(name, v*k)
	if err != nil {
		// プリセットは既知のフィールドのみを扱う
		panic(fmt.Sprintf("scenario: %v", err))
	}
	return out
}

// IsFractionalField は [0,1] に制約されるフィールドかどうかを返す
func IsFractionalField(name string) bool {
	return name != FieldLaborCost
}

// Clamp01 は v を [0,1] に制限する
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
