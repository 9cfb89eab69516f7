package recovery

import (
	"math"
	"sort"

	"supplychain-sim/internal/disruption"
	"supplychain-sim/internal/scenario"
)

// 戦略ごとの復旧効果係数
const (
	diversificationFactor = 0.3
	inventoryFactor       = 0.4
	transportFactor       = 0.3

	// 最大深刻度 1.0 の障害に対する無対策時の復旧週数
	baseRecoveryWeeks = 10.0
	minRecoveryWeeks  = 1.0
)

// Effectiveness は耐性戦略の重みから復旧効果を計算する
func Effectiveness(weights map[string]float64) float64 {
	return diversificationFactor*weights[scenario.StrategyDiversification] +
		inventoryFactor*weights[scenario.StrategyInventory] +
		transportFactor*weights[scenario.StrategyTransport]
}

// Estimate は今週の障害からの復旧時間（週）を見積もる
// 障害がなければ 0
func Estimate(events []disruption.Event, effectiveness float64) float64 {
	if len(events) == 0 {
		return 0
	}
	t := baseRecoveryWeeks * disruption.MaxSeverityOf(events) * (1 - effectiveness)
	return math.Max(minRecoveryWeeks, t)
}

// RegionState は地域の復旧状態の追跡
type RegionState struct {
	DisruptedAt  int     `json:"disrupted_at"`
	RecoverBy    int     `json:"recover_by"`
	LastSeverity float64 `json:"last_severity"`
	Hits         int     `json:"hits"`
}

// Stats は復旧統計
type Stats struct {
	DisruptedWeeks     int     `json:"disrupted_weeks"`
	TotalRecoveryWeeks float64 `json:"total_recovery_weeks"`
	Recoveries         int     `json:"recoveries"`
	CurrentlyDisrupted int     `json:"currently_disrupted"`
}

// Manager は障害からの復旧を追跡する
// Manager は1イテレーション内でのみ使用する
type Manager struct {
	effectiveness float64
	regions       map[string]*RegionState
	stats         Stats
}

// New は新しい Manager を作成する
func New(weights map[string]float64) *Manager {
	return &Manager{
		effectiveness: Effectiveness(weights),
		regions:       make(map[string]*RegionState),
	}
}

// Effectiveness は戦略の復旧効果を返す
func (m *Manager) Effectiveness() float64 {
	return m.effectiveness
}

// Observe は今週の障害を記録し、復旧時間の見積もりを返す
func (m *Manager) Observe(week int, events []disruption.Event) float64 {
	// 復旧期限を過ぎた地域を復旧済みにする
	for name, st := range m.regions {
		if week > st.RecoverBy {
			m.stats.Recoveries++
			delete(m.regions, name)
		}
	}

	estimate := Estimate(events, m.effectiveness)
	if len(events) > 0 {
		m.stats.DisruptedWeeks++
		m.stats.TotalRecoveryWeeks += estimate
	}

	for _, ev := range events {
		regionWeeks := Estimate([]disruption.Event{ev}, m.effectiveness)
		recoverBy := week + int(math.Ceil(regionWeeks))
		st, ok := m.regions[ev.Region]
		if !ok {
			st = &RegionState{DisruptedAt: week}
			m.regions[ev.Region] = st
		}
		st.Hits++
		st.LastSeverity = ev.Severity
		if recoverBy > st.RecoverBy {
			st.RecoverBy = recoverBy
		}
	}
	m.stats.CurrentlyDisrupted = len(m.regions)

	return estimate
}

// Disrupted は復旧中の地域名を昇順で返す
func (m *Manager) Disrupted() []string {
	names := make([]string, 0, len(m.regions))
	for name := range m.regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// State は地域の復旧状態を返す
func (m *Manager) State(region string) (RegionState, bool) {
	st, ok := m.regions[region]
	if !ok {
		return RegionState{}, false
	}
	return *st, true
}

// Stats は復旧統計を返す
func (m *Manager) Stats() Stats {
	return m.stats
}
