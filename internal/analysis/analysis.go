package analysis

import (
	"errors"
	"maps"
	"math"
	"slices"
	"sort"
	"strings"

	"supplychain-sim/internal/metrics"
	"supplychain-sim/internal/montecarlo"
)

// BaselineScenario は変化率の基準となるシナリオ名
const BaselineScenario = "baseline"

const stdPrefix = "std_"

// ErrNoIterations は完了したイテレーションが1件もないときに返される
var ErrNoIterations = errors.New("no completed iterations to analyze")

// Stats はシナリオ1件分の集計結果
type Stats struct {
	Scenario   string             `json:"scenario"`
	Iterations int                `json:"iterations"`
	Failed     int                `json:"failed"`
	Mean       map[string]float64 `json:"mean"`
	Std        map[string]float64 `json:"std"`

	// イテレーションごとの極値をさらに全体で縮約した値
	MinServiceLevel float64 `json:"min_service_level"`
	MaxCostImpact   float64 `json:"max_cost_impact"`
}

// Analyze は失敗していないイテレーションのメトリクスを集計する
//
// 平均と標本標準偏差（n-1）を計算する。イテレーションが1件だけの場合、
// 標準偏差は 0 とする。min_service_level は最小値の最小値、
// max_cost_impact は最大値の最大値として再縮約する。
func Analyze(summaries []montecarlo.IterationSummary) (Stats, error) {
	var st Stats
	values := make(map[string][]float64)
	for _, s := range summaries {
		if st.Scenario == "" {
			st.Scenario = s.Scenario
		}
		if s.Failed {
			st.Failed++
			continue
		}
		st.Iterations++
		for k, v := range s.Metrics {
			values[k] = append(values[k], v)
		}
	}
	if st.Iterations == 0 {
		return st, ErrNoIterations
	}

	st.Mean = make(map[string]float64, len(values))
	st.Std = make(map[string]float64, len(values))
	for k, vs := range values {
		mean, std := meanStd(vs)
		st.Mean[k] = mean
		st.Std[k] = std
	}

	st.MinServiceLevel = math.Inf(1)
	st.MaxCostImpact = math.Inf(-1)
	for _, v := range values[metrics.MinServiceLevel] {
		st.MinServiceLevel = math.Min(st.MinServiceLevel, v)
	}
	for _, v := range values[metrics.MaxCostImpact] {
		st.MaxCostImpact = math.Max(st.MaxCostImpact, v)
	}
	if len(values[metrics.MinServiceLevel]) == 0 {
		st.MinServiceLevel = 0
	}
	if len(values[metrics.MaxCostImpact]) == 0 {
		st.MaxCostImpact = 0
	}
	return st, nil
}

func meanStd(vs []float64) (float64, float64) {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	mean := sum / float64(len(vs))
	if len(vs) < 2 {
		return mean, 0
	}
	var sq float64
	for _, v := range vs {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(vs)-1))
}

// Values は平均値と再縮約した極値を1つの map にまとめる
func (s Stats) Values() map[string]float64 {
	out := make(map[string]float64, len(s.Mean))
	for k, v := range s.Mean {
		out[k] = v
	}
	if _, ok := s.Mean[metrics.MinServiceLevel]; ok {
		out[metrics.MinServiceLevel] = s.MinServiceLevel
	}
	if _, ok := s.Mean[metrics.MaxCostImpact]; ok {
		out[metrics.MaxCostImpact] = s.MaxCostImpact
	}
	return out
}

// Flat は Values に std_<metric> キーの標準偏差を加えた map を返す
func (s Stats) Flat() map[string]float64 {
	out := s.Values()
	for k, v := range s.Std {
		out[stdPrefix+k] = v
	}
	return out
}

// Table はシナリオ名 → メトリクス名 → 値 の表
type Table map[string]map[string]float64

// Scenarios はシナリオ名を baseline を先頭に、残りを昇順で返す
func (t Table) Scenarios() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == BaselineScenario || names[j] == BaselineScenario {
			return names[i] == BaselineScenario
		}
		return names[i] < names[j]
	})
	return names
}

// Metrics は表に現れるメトリクス名を昇順で返す
func (t Table) Metrics() []string {
	seen := make(map[string]struct{})
	for _, row := range t {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Compare は値の表と baseline に対する変化率（%）の表を返す
//
// "baseline" という名前のシナリオがない場合、変化率の表は空になる。
// baseline の値が 0 のメトリクスは変化率を計算しない。
func Compare(all map[string]Stats) (Table, Table) {
	values := make(Table, len(all))
	for name, st := range all {
		values[name] = st.Values()
	}

	pct := make(Table)
	base, ok := values[BaselineScenario]
	if !ok {
		return values, pct
	}
	for name, row := range values {
		changes := make(map[string]float64, len(row))
		for k, v := range row {
			b, ok := base[k]
			if !ok || b == 0 {
				continue
			}
			changes[k] = (v - b) / b * 100
		}
		pct[name] = changes
	}
	return values, pct
}

// IsStdKey は Flat の標準偏差キーかどうかを返す
func IsStdKey(key string) bool {
	return strings.HasPrefix(key, stdPrefix)
}
