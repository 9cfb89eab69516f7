// Package scenario はサプライチェーンシナリオの設定とプリセットを提供する。
//
// シナリオ設定（Config）は地域のリスクプロファイル、耐性戦略、
// メトリクスの重み、エージェント能力値、シミュレーション設定をまとめた値型で、
// すべての派生は新しいインスタンスを返す。
//
// # プリセットシナリオ
//
// - baseline: デフォルト設定そのまま
// - supplier_disruption: 災害確率 2倍
// - transportation_disruption: インフラ品質 0.7倍
// - production_disruption: 生産能力 0.6倍、災害確率 1.5倍
// - multi_factor_disruption: 災害確率 1.8倍、インフラ品質 0.8倍、生産能力 0.7倍
// - global_tariff_disruption: East_Asia 中心の関税ショック
//
// # 合成
//
// Compose はプリセットにユーザー上書きを重ねる。プリセットが掛けた倍率は
// 上書き値にも適用されるため、シナリオの相対的な強度が保たれる。
//
// # 使用例
//
//	cfg, err := scenario.Compose("supplier_disruption", scenario.Overrides{
//	    Regions: map[string]map[string]float64{
//	        "East_Asia": {"disaster_probability": 0.2},
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// East_Asia の災害確率は 0.2 * 2 = 0.4
package scenario
