package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Settings はプロセス全体の実行設定
// 環境変数から読み込み、CLI フラグで上書きする
type Settings struct {
	LogLevel       string `env:"SUPPLYSIM_LOG_LEVEL" envDefault:"info"`
	DB             string `env:"SUPPLYSIM_DB"`
	Addr           string `env:"SUPPLYSIM_ADDR" envDefault:":8080"`
	Workers        int    `env:"SUPPLYSIM_WORKERS" envDefault:"0"`
	DecisionLogDir string `env:"SUPPLYSIM_DECISION_LOG_DIR"`
}

// LoadSettings は環境変数から Settings を読み込む
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return s, fmt.Errorf("parse env: %w", err)
	}
	if s.Workers < 0 {
		return s, fmt.Errorf("parse env: SUPPLYSIM_WORKERS must be non-negative")
	}
	return s, nil
}
