// Package world はサプライチェーンの週次シミュレーションを提供する。
//
// World は1イテレーション分の状態（市場、障害履歴、復旧追跡、メトリクス系列）を所有し、
// Step ごとに以下を行う。
//
//  1. 週を進める
//  2. 市場・経済指標を更新する
//  3. 地域ごとに障害を抽選する
//  4. メトリクスを固定の順序で計算し、系列に追記する
//
// メトリクスの計算は純粋関数 Compute として公開している。
// 比率メトリクスは常に [0,1] にクランプされる。
//
// # 使用例
//
//	rng := rand.New(rand.NewSource(cfg.Simulation.Seed))
//	w, err := world.New(cfg, rng)
//	if err != nil {
//	    return err
//	}
//	for !w.Done() {
//	    if _, _, _, err := w.Step(); err != nil {
//	        return err
//	    }
//	}
//	summary := w.Summary()
package world
