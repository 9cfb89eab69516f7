package metrics

import (
	"math"
	"slices"
	"sort"
)

// メトリクス名
const (
	ResilienceScore          = "resilience_score"
	CostImpact               = "cost_impact"
	ServiceLevel             = "service_level"
	ROI                      = "roi"
	RecoveryTime             = "recovery_time"
	RiskExposure             = "risk_exposure"
	TransportationEfficiency = "transportation_efficiency"
	InventoryHealth          = "inventory_health"
	Reward                   = "reward"
	SupplierPerformance      = "supplier_performance"
	RegionalPerformance      = "regional_performance"
)

// Names は週次メトリクス名を返す
func Names() []string {
	return []string{
		ResilienceScore, CostImpact, ServiceLevel, ROI, RecoveryTime,
		RiskExposure, TransportationEfficiency, InventoryHealth, Reward,
	}
}

// サマリーのキー
const (
	AvgResilience   = "avg_resilience"
	AvgCostImpact   = "avg_cost_impact"
	AvgServiceLevel = "avg_service_level"
	MinServiceLevel = "min_service_level"
	MaxCostImpact   = "max_cost_impact"
	AvgROI          = "avg_roi"
	AvgRecoveryTime = "avg_recovery_time"
	AvgRiskExposure = "avg_risk_exposure"
	AvgReward       = "avg_reward"
	DisruptionCount = "disruption_count"
)

// Series は追記専用の数値系列
type Series struct {
	values []float64
}

// Append は値を追記する
func (s *Series) Append(v float64) {
	s.values = append(s.values, v)
}

// Len は要素数を返す
func (s *Series) Len() int {
	return len(s.values)
}

// Last は最後の値を返す（空なら false）
func (s *Series) Last() (float64, bool) {
	if len(s.values) == 0 {
		return 0, false
	}
	return s.values[len(s.values)-1], true
}

// Values は値のコピーを返す
func (s *Series) Values() []float64 {
	return slices.Clone(s.values)
}

// Mean は平均を返す（空なら 0）
func (s *Series) Mean() float64 {
	if len(s.values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s.values {
		sum += v
	}
	return sum / float64(len(s.values))
}

// Min は最小値を返す（空なら 0）
func (s *Series) Min() float64 {
	if len(s.values) == 0 {
		return 0
	}
	return slices.Min(s.values)
}

// Max は最大値を返す（空なら 0）
func (s *Series) Max() float64 {
	if len(s.values) == 0 {
		return 0
	}
	return slices.Max(s.values)
}

// Recorder は1イテレーション分のメトリクス系列を保持する
type Recorder struct {
	series   map[string]*Series
	supplier map[string]*Series
	regional map[string]*Series
}

// New は新しい Recorder を作成する
func New() *Recorder {
	r := &Recorder{
		series:   make(map[string]*Series),
		supplier: make(map[string]*Series),
		regional: make(map[string]*Series),
	}
	for _, name := range Names() {
		r.series[name] = &Series{}
	}
	return r
}

// Record は週次メトリクスを追記する
func (r *Recorder) Record(name string, v float64) {
	s, ok := r.series[name]
	if !ok {
		s = &Series{}
		r.series[name] = s
	}
	s.Append(v)
}

// RecordRegion は地域別メトリクスを追記する
func (r *Recorder) RecordRegion(name, region string, v float64) {
	var m map[string]*Series
	switch name {
	case SupplierPerformance:
		m = r.supplier
	case RegionalPerformance:
		m = r.regional
	default:
		r.Record(name+"_"+region, v)
		return
	}
	s, ok := m[region]
	if !ok {
		s = &Series{}
		m[region] = s
	}
	s.Append(v)
}

// Series は名前で系列を返す（存在しなければ空の系列）
func (r *Recorder) Series(name string) *Series {
	if s, ok := r.series[name]; ok {
		return s
	}
	return &Series{}
}

// RegionSeries は地域別系列を返す
func (r *Recorder) RegionSeries(name, region string) *Series {
	var m map[string]*Series
	switch name {
	case SupplierPerformance:
		m = r.supplier
	case RegionalPerformance:
		m = r.regional
	}
	if s, ok := m[region]; ok {
		return s
	}
	return &Series{}
}

// Last は各週次メトリクスの最新値を返す
func (r *Recorder) Last() map[string]float64 {
	out := make(map[string]float64, len(r.series))
	for name, s := range r.series {
		if v, ok := s.Last(); ok {
			out[name] = v
		}
	}
	return out
}

// Summary は系列をイテレーションサマリーに集約する
func (r *Recorder) Summary() map[string]float64 {
	out := map[string]float64{
		AvgResilience:            r.Series(ResilienceScore).Mean(),
		AvgCostImpact:            r.Series(CostImpact).Mean(),
		AvgServiceLevel:          r.Series(ServiceLevel).Mean(),
		MinServiceLevel:          r.Series(ServiceLevel).Min(),
		MaxCostImpact:            r.Series(CostImpact).Max(),
		AvgROI:                   r.Series(ROI).Mean(),
		AvgRecoveryTime:          r.Series(RecoveryTime).Mean(),
		AvgRiskExposure:          r.Series(RiskExposure).Mean(),
		AvgReward:                r.Series(Reward).Mean(),
		TransportationEfficiency: r.Series(TransportationEfficiency).Mean(),
		InventoryHealth:          r.Series(InventoryHealth).Mean(),
	}
	for region, s := range r.supplier {
		out[SupplierPerformance+"_"+region] = s.Mean()
	}
	for region, s := range r.regional {
		out[RegionalPerformance+"_"+region] = s.Mean()
	}
	return out
}

// Finite は m のすべての値が有限かどうかを返す
// 非有限の値があればそのキーを返す
func Finite(m map[string]float64) (string, bool) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := m[k]; math.IsNaN(v) || math.IsInf(v, 0) {
			return k, false
		}
	}
	return "", true
}

// SortedKeys は m のキーを昇順で返す
func SortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
