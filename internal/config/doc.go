// Package config は設定ファイルと環境変数の読み込みを提供する。
//
// 設定ファイル（YAML / JSON）はプリセットと上書きの組のリスト、または
// 完全なシナリオ設定を記述する:
//
//	mode: shared
//	scenarios:
//	  - label: baseline
//	    preset: baseline
//	  - label: fragile_asia
//	    preset: supplier_disruption
//	    overrides:
//	      simulation:
//	        iterations: 200
//	      regions:
//	        East_Asia:
//	          disaster_probability: 0.2
//
// プロセス全体の設定は SUPPLYSIM_ で始まる環境変数から読み込む。
package config
