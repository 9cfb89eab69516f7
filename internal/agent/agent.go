package agent

import (
	"math/rand"

	"supplychain-sim/internal/disruption"
	"supplychain-sim/internal/scenario"
)

// 能力値が未設定のときの既定値
const (
	defaultDecisionSpeed = 0.8
	defaultRiskTolerance = 0.6

	neutralScore       = 0.5
	defaultProbability = 0.5
)

// Role はエージェントの役割
type Role int

const (
	RoleCOO Role = iota
	RoleRegionalManager
	RoleSupplier
)

func (r Role) String() string {
	switch r {
	case RoleCOO:
		return "coo"
	case RoleRegionalManager:
		return "regional_manager"
	case RoleSupplier:
		return "supplier"
	default:
		return "unknown"
	}
}

// MarshalText は Role を名前で直列化する
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Perception はエージェントが観測する週次の環境
type Perception struct {
	Week        int
	Disruptions []disruption.Event
	Regions     map[string]scenario.RegionProfile
}

// Decision はエージェントの意思決定
// Decision はテレメトリとしてのみ扱い、World の状態には反映しない
type Decision struct {
	Agent  string             `json:"agent"`
	Role   Role               `json:"role"`
	Region string             `json:"region,omitempty"`
	Week   int                `json:"week"`
	Values map[string]float64 `json:"values"`
}

// DecisionMaker は意思決定を行う主体
type DecisionMaker interface {
	Name() string
	Role() Role
	Region() string
	Decide(p Perception) Decision
}

// Agent は役割ごとの意思決定ロジックを持つ標準の DecisionMaker
type Agent struct {
	name         string
	role         Role
	region       string
	capabilities map[string]float64
	rng          *rand.Rand
	memory       []Decision
}

var _ DecisionMaker = (*Agent)(nil)

// New は新しいエージェントを作成する
// rng は World とは別の乱数ストリームを渡すこと
func New(name string, role Role, region string, capabilities map[string]float64, rng *rand.Rand) *Agent {
	return &Agent{
		name:         name,
		role:         role,
		region:       region,
		capabilities: capabilities,
		rng:          rng,
	}
}

// Name はエージェント名を返す
func (a *Agent) Name() string { return a.name }

// Role は役割を返す
func (a *Agent) Role() Role { return a.role }

// Region は担当地域を返す（COO は空）
func (a *Agent) Region() string { return a.region }

// Memory はこれまでの意思決定履歴を返す
func (a *Agent) Memory() []Decision {
	out := make([]Decision, len(a.memory))
	copy(out, a.memory)
	return out
}

// Decide は役割に応じた意思決定を行い、履歴に記録する
func (a *Agent) Decide(p Perception) Decision {
	var values map[string]float64
	switch a.role {
	case RoleCOO:
		values = a.decideCOO(p)
	case RoleRegionalManager:
		values = a.decideRegionalManager(p)
	case RoleSupplier:
		values = a.decideSupplier(p)
	default:
		values = map[string]float64{}
	}

	d := Decision{
		Agent:  a.name,
		Role:   a.role,
		Region: a.region,
		Week:   p.Week,
		Values: values,
	}
	a.memory = append(a.memory, d)
	return d
}

func (a *Agent) decideCOO(p Perception) map[string]float64 {
	risk := a.assessRisk(p.Disruptions)
	strategic := a.plan()
	return map[string]float64{
		"supplier_diversification":  a.decide(risk) * 0.8,
		"inventory_adjustment":      a.decide(strategic) * 0.6,
		"transportation_mode_shift": a.decide(risk+strategic) * 0.7,
	}
}

func (a *Agent) decideRegionalManager(p Perception) map[string]float64 {
	if a.region == "" {
		return map[string]float64{}
	}
	risk := a.assessRisk(localDisruptions(p.Disruptions, a.region))
	contingency := 0.0
	if risk > 0.7 {
		contingency = 1.0
	}
	return map[string]float64{
		"local_inventory_level":  a.decide(risk) * 0.7,
		"supplier_coordination":  a.decide(p.Regions[a.region].InfrastructureQuality) * 0.8,
		"contingency_activation": contingency,
	}
}

func (a *Agent) decideSupplier(p Perception) map[string]float64 {
	if a.region == "" {
		return map[string]float64{}
	}
	return map[string]float64{
		"production_rate":   a.decide(p.Regions[a.region].InfrastructureQuality) * 0.9,
		"quality_control":   0.8,
		"delivery_schedule": a.decideOnEvents(localDisruptions(p.Disruptions, a.region)) * 0.7,
	}
}

// decide は基準スコアを意思決定速度とリスク許容度で補正する
func (a *Agent) decide(base float64) float64 {
	speed := a.capability("decision_making_speed", defaultDecisionSpeed)
	tolerance := a.capability("risk_tolerance", defaultRiskTolerance)
	score := base * (1 + (speed-0.5)*0.4)
	score *= 1 + (tolerance-0.5)*0.3
	return scenario.Clamp01(score)
}

// decideOnEvents は障害の平均深刻度を基準スコアとする（なければ 0.5）
func (a *Agent) decideOnEvents(events []disruption.Event) float64 {
	base := neutralScore
	if len(events) > 0 {
		base = disruption.TotalSeverity(events) / float64(len(events))
	}
	return a.decide(base)
}

// assessRisk は障害リストのリスクをリスク許容度で補正する
func (a *Agent) assessRisk(events []disruption.Event) float64 {
	base := neutralScore
	if len(events) > 0 {
		var sum float64
		for _, ev := range events {
			sum += ev.Severity * defaultProbability
		}
		base = sum / float64(len(events))
	}
	tolerance := a.capability("risk_tolerance", defaultRiskTolerance)
	return scenario.Clamp01(base * (1.5 - tolerance))
}

// plan は戦略的重要度を抽選する
func (a *Agent) plan() float64 {
	return a.rng.Float64()
}

func (a *Agent) capability(name string, def float64) float64 {
	if v, ok := a.capabilities[name]; ok {
		return v
	}
	return def
}

func localDisruptions(events []disruption.Event, region string) []disruption.Event {
	var out []disruption.Event
	for _, ev := range events {
		if ev.Region == region {
			out = append(out, ev)
		}
	}
	return out
}
