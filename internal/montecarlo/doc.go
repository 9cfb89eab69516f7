// Package montecarlo はシナリオを複数イテレーション実行するオーケストレーターを提供する。
//
// 既定の SharedStream モードでは、実行開始前に一度だけシードした乱数ストリームを
// 全イテレーションが順番に消費する。イテレーション i の乱数列は i-1 の続きなので、
// 結果の再現には同じイテレーション数と順序が必要になる。
//
// IndependentStreams モードではマスター乱数からイテレーションごとのシードを
// 先に導出し、ワーカープールで並列に実行する。結果はワーカー数に依存しないが、
// SharedStream とは異なる値になる。
//
// エージェントは World とは別の乱数ストリームを使い、意思決定は
// テレメトリとしてのみ記録される。
//
// # 使用例
//
//	runner := montecarlo.NewRunner(nil)
//	res, err := runner.Run(ctx, cfg, "baseline", montecarlo.Options{
//	    Progress: func(cur, total int) { fmt.Printf("%d/%d\n", cur, total) },
//	})
package montecarlo
