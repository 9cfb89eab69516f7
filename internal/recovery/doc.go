// Package recovery は障害からの復旧時間の見積もりと追跡を提供する。
//
// 復旧効果は耐性戦略の重みから求める。
//
//	effectiveness = 0.3*w_diversification + 0.4*w_inventory + 0.3*w_transport
//
// その週の障害の最大深刻度 s に対し、復旧時間は max(1, 10*s*(1-effectiveness)) 週。
// 障害がない週は 0。
//
// Manager は地域ごとの復旧期限を追跡し、復旧済み件数などの統計を集計する。
// 追跡結果はメトリクス計算には影響しない。
//
// # 使用例
//
//	manager := recovery.New(cfg.Weights.Resilience)
//	weeks := manager.Observe(week, events)
//	stats := manager.Stats()
package recovery
