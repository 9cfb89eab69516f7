package disruption

import (
	"fmt"
	"math/rand"

	"supplychain-sim/internal/scenario"
)

// 深刻度の下限と上限
const (
	MinSeverity = 0.1
	MaxSeverity = 1.0
)

// Type は障害の種類を表す
type Type int

const (
	TypeNatural Type = iota
	TypePolitical
	TypeInfrastructure
)

func (t Type) String() string {
	switch t {
	case TypeNatural:
		return scenario.DisruptionNatural
	case TypePolitical:
		return scenario.DisruptionPolitical
	case TypeInfrastructure:
		return scenario.DisruptionInfrastructure
	default:
		return "unknown"
	}
}

// MarshalText は Type を名前で直列化する
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseType は名前から障害タイプを解釈する
func ParseType(s string) (Type, error) {
	switch s {
	case scenario.DisruptionNatural:
		return TypeNatural, nil
	case scenario.DisruptionPolitical:
		return TypePolitical, nil
	case scenario.DisruptionInfrastructure:
		return TypeInfrastructure, nil
	default:
		return 0, fmt.Errorf("unknown disruption type: %s", s)
	}
}

// ParseTypes は名前のリストを障害タイプに変換する
func ParseTypes(names []string) ([]Type, error) {
	types := make([]Type, 0, len(names))
	for _, n := range names {
		t, err := ParseType(n)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

// Event は発生した障害
// Event は生成後に変更されない
type Event struct {
	Week     int     `json:"week"`
	Region   string  `json:"region"`
	Type     Type    `json:"type"`
	Severity float64 `json:"severity"`
}

// Severity は障害タイプと地域特性から深刻度を計算する
// draw は Uniform(0.1, 1.0) の抽選値
func Severity(t Type, draw float64, p scenario.RegionProfile) float64 {
	var vulnerability float64
	switch t {
	case TypePolitical:
		vulnerability = 1 - p.PoliticalStability
	default:
		vulnerability = 1 - p.InfrastructureQuality
	}
	sev := draw * vulnerability
	if sev < MinSeverity {
		return MinSeverity
	}
	if sev > MaxSeverity {
		return MaxSeverity
	}
	return sev
}

// Injector は地域ごとに障害を抽選する
type Injector struct {
	types []Type
	rng   *rand.Rand
	stats Stats
}

// Stats は障害の統計情報
type Stats struct {
	TotalDisruptions uint64            `json:"total_disruptions"`
	ByType           map[string]uint64 `json:"disruptions_by_type"`
	ByRegion         map[string]uint64 `json:"disruptions_by_region"`
}

// NewInjector は新しい Injector を作成する
func NewInjector(types []Type, rng *rand.Rand) *Injector {
	return &Injector{
		types: types,
		rng:   rng,
		stats: Stats{
			ByType:   make(map[string]uint64),
			ByRegion: make(map[string]uint64),
		},
	}
}

// Inject は1週間分の障害を生成する
// 地域は names の順に走査し、各地域で Bernoulli(disaster_probability)、
// タイプ、深刻度の順に乱数を消費する
func (in *Injector) Inject(week int, names []string, regions map[string]scenario.RegionProfile) []Event {
	var events []Event
	for _, name := range names {
		p := regions[name]
		if in.rng.Float64() >= p.DisasterProbability {
			continue
		}
		t := in.selectType()
		draw := MinSeverity + in.rng.Float64()*(MaxSeverity-MinSeverity)
		ev := Event{
			Week:     week,
			Region:   name,
			Type:     t,
			Severity: Severity(t, draw, p),
		}
		events = append(events, ev)

		in.stats.TotalDisruptions++
		in.stats.ByType[t.String()]++
		in.stats.ByRegion[name]++
	}
	return events
}

// selectType は障害タイプをランダムに選択する
func (in *Injector) selectType() Type {
	if len(in.types) == 0 {
		return TypeNatural
	}
	return in.types[in.rng.Intn(len(in.types))]
}

// Stats は障害統計のコピーを返す
func (in *Injector) Stats() Stats {
	out := Stats{
		TotalDisruptions: in.stats.TotalDisruptions,
		ByType:           make(map[string]uint64, len(in.stats.ByType)),
		ByRegion:         make(map[string]uint64, len(in.stats.ByRegion)),
	}
	for k, v := range in.stats.ByType {
		out.ByType[k] = v
	}
	for k, v := range in.stats.ByRegion {
		out.ByRegion[k] = v
	}
	return out
}
