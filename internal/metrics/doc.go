// Package metrics provides append-only metric series for one simulation
// iteration and their reduction into an iteration summary.
//
// A Recorder owns one Series per weekly metric (resilience_score,
// cost_impact, service_level, roi, recovery_time, risk_exposure,
// transportation_efficiency, inventory_health, reward) plus per-region
// supplier_performance and regional_performance series.
//
// # Basic Usage
//
//	r := metrics.New()
//	r.Record(metrics.ServiceLevel, 0.91)
//	r.RecordRegion(metrics.SupplierPerformance, "Europe", 0.93)
//
//	summary := r.Summary()
//	fmt.Println(summary[metrics.AvgServiceLevel], summary[metrics.MinServiceLevel])
//
// # Summary Keys
//
// Means are prefixed with avg_ except transportation_efficiency and
// inventory_health, which keep their metric names. min_service_level and
// max_cost_impact are extrema. Regional means are keyed
// supplier_performance_<region> and regional_performance_<region>.
//
// # Thread Safety
//
// A Recorder belongs to a single iteration and is not safe for concurrent use.
package metrics
