package world

import (
	"math"

	"supplychain-sim/internal/disruption"
	"supplychain-sim/internal/market"
	"supplychain-sim/internal/recovery"
	"supplychain-sim/internal/scenario"
)

// 前週の値がない初週に使う既定値
const (
	neutralStability  = 1.0
	neutralStockScore = 0.9
)

// RegionInput は1地域分の入力
type RegionInput struct {
	Name       string
	Profile    scenario.RegionProfile
	Indicators market.Indicators
}

// Previous は前週のメトリクス
type Previous struct {
	ServiceLevel    float64
	InventoryHealth float64
}

// Inputs はメトリクス計算の入力
type Inputs struct {
	Regions     []RegionInput
	Disruptions []disruption.Event
	Prev        *Previous // 初週は nil

	StrategyCost          float64 // 戦略コストの加重和
	RecoveryEffectiveness float64
	TransportFlexibility  float64 // transportation_flexibility の resilience_impact
}

// Metrics は1週間分のメトリクス
type Metrics struct {
	RiskExposure             float64            `json:"risk_exposure"`
	RecoveryTime             float64            `json:"recovery_time"`
	SupplierPerformance      map[string]float64 `json:"supplier_performance"`
	RegionalPerformance      map[string]float64 `json:"regional_performance"`
	TransportationEfficiency float64            `json:"transportation_efficiency"`
	CostImpact               float64            `json:"cost_impact"`
	ResilienceScore          float64            `json:"resilience_score"`
	InventoryHealth          float64            `json:"inventory_health"`
	ServiceLevel             float64            `json:"service_level"`
	ROI                      float64            `json:"roi"`
	Reward                   float64            `json:"reward"`
}

// Compute は1週間分のメトリクスを計算する
//
// 計算順序は固定: リスク、復旧時間、地域別性能、輸送効率、コスト、耐性スコア
// （ここまでは前週の service_level / inventory_health を使用）、
// 在庫健全性、サービスレベル（今週の在庫健全性を使用）、ROI、報酬。
func Compute(in Inputs) Metrics {
	n := float64(len(in.Regions))
	totalSeverity := disruption.TotalSeverity(in.Disruptions)
	regionSeverity := disruption.RegionSeverity(in.Disruptions)

	var baseRisk, economicRisk, meanInfrastructure float64
	for _, r := range in.Regions {
		baseRisk += r.Profile.DisasterProbability * (1 - r.Profile.InfrastructureQuality)
		economicRisk += math.Abs(r.Indicators.GDPGrowth)
		meanInfrastructure += r.Profile.InfrastructureQuality
	}
	baseRisk /= n
	economicRisk /= n
	meanInfrastructure /= n

	m := Metrics{
		SupplierPerformance: make(map[string]float64, len(in.Regions)),
		RegionalPerformance: make(map[string]float64, len(in.Regions)),
	}

	m.RiskExposure = clip01(baseRisk + totalSeverity/10 + economicRisk)
	m.RecoveryTime = recovery.Estimate(in.Disruptions, in.RecoveryEffectiveness)

	var meanRegional float64
	for _, r := range in.Regions {
		p := r.Profile
		sp := clip01(p.InfrastructureQuality - regionSeverity[r.Name]/2 + r.Indicators.EconomicImpact())
		rp := clip01(0.4*sp + 0.3*p.InfrastructureQuality + 0.3*p.PoliticalStability)
		m.SupplierPerformance[r.Name] = sp
		m.RegionalPerformance[r.Name] = rp
		meanRegional += rp
	}
	meanRegional /= n

	m.TransportationEfficiency = clip01(meanInfrastructure - (totalSeverity/n)*(1-in.TransportFlexibility))
	m.CostImpact = in.StrategyCost + totalSeverity*0.5

	prevService, prevInventory := neutralStability, neutralStability
	stockScore := neutralStockScore
	if in.Prev != nil {
		prevService = in.Prev.ServiceLevel
		prevInventory = in.Prev.InventoryHealth
		stockScore = in.Prev.ServiceLevel
	}

	recoveryScore := 1 - m.RecoveryTime/(10*n)
	stability := (prevService + m.TransportationEfficiency + prevInventory) / 3
	m.ResilienceScore = clip01(0.4*recoveryScore + 0.3*(1-m.RiskExposure) + 0.3*stability)

	holdingCost := 1 - math.Min(1, m.CostImpact)
	matching := 0.6*m.ResilienceScore + 0.4*(1-m.RiskExposure)
	m.InventoryHealth = clip01(0.4*stockScore + 0.3*holdingCost + 0.3*matching)

	m.ServiceLevel = clip01(0.98 * (1 - totalSeverity/20) * meanRegional * m.InventoryHealth)

	if in.StrategyCost > 0 {
		var benefit float64
		if len(in.Disruptions) > 0 {
			benefit = totalSeverity * (1 - m.ResilienceScore)
		}
		m.ROI = (benefit - in.StrategyCost) / in.StrategyCost
	}

	m.Reward = m.ServiceLevel - 0.5*m.CostImpact

	return m
}

func clip01(v float64) float64 {
	return scenario.Clamp01(v)
}
