// Package analysis はモンテカルロ結果の集計とシナリオ比較を提供する。
//
// Analyze はイテレーションサマリーからメトリクスごとの平均と標準偏差を求め、
// Compare は "baseline" シナリオに対する変化率の表を作る。
package analysis
