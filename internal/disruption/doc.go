// Package disruption は地域ごとの障害の発生と履歴を提供する。
//
// Injector は各週、地域の災害確率に従って障害を抽選し、
// 障害タイプに応じた脆弱性（インフラ品質または政治的安定性）から深刻度を決める。
//
// # 障害タイプ
//
// - natural: 自然災害（インフラ品質に依存）
// - political: 政治的混乱（政治的安定性に依存）
// - infrastructure: インフラ障害（インフラ品質に依存）
//
// # 使用例
//
//	types, _ := disruption.ParseTypes(cfg.Simulation.DisruptionTypes)
//	injector := disruption.NewInjector(types, rng)
//	ledger := disruption.NewLedger()
//
//	events := injector.Inject(week, cfg.RegionNames(), cfg.Regions)
//	ledger.Append(events...)
package disruption
