// Package agent はサプライチェーンの意思決定者を表すエージェントを提供する。
//
// 役割は COO、地域マネージャー、サプライヤーの3種類で、すべて DecisionMaker を実装する。
// 各エージェントは意思決定・リスク評価・戦略立案の3つの能力で週次の判断を行う。
//
// エージェントの判断はテレメトリとして記録されるだけで、World の状態遷移には影響しない。
// 戦略立案は World とは別の乱数ストリームを使うため、エージェントの有無で
// シミュレーション結果は変わらない。
//
// # 使用例
//
//	roster := agent.NewRoster(cfg, rand.New(rand.NewSource(seed)))
//	decisions := roster.Decide(agent.Perception{
//	    Week:        week,
//	    Disruptions: state.Disruptions,
//	    Regions:     cfg.Regions,
//	})
package agent
