package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"supplychain-sim/internal/scenario"

	"gopkg.in/yaml.v3"
)

// FileConfig は設定ファイルの構造
// scenarios（プリセット + 上書き）と config（完全な設定）のどちらか、または両方を持つ
// config セクションは DefaultConfig に重ねて解釈され、省略したセクションは既定値になる
type FileConfig struct {
	Scenarios []ScenarioSpec   `yaml:"scenarios" json:"scenarios"`
	Config    *scenario.Config `yaml:"config,omitempty" json:"config,omitempty"`
	Mode      string           `yaml:"mode,omitempty" json:"mode,omitempty"`
	Workers   int              `yaml:"workers,omitempty" json:"workers,omitempty"`
}

// ScenarioSpec はプリセットとユーザー上書きの組
type ScenarioSpec struct {
	Label     string             `yaml:"label" json:"label"`
	Preset    string             `yaml:"preset" json:"preset"`
	Overrides scenario.Overrides `yaml:"overrides" json:"overrides"`
}

// Labeled はラベル付きの実行可能なシナリオ設定
type Labeled struct {
	Label  string
	Config scenario.Config
}

// LoadFile は設定ファイルを読み込む
// 形式は拡張子（.yaml / .yml / .json）で判定する
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, strings.ToLower(filepath.Ext(path)))
}

// Parse は ext で指定された形式のドキュメントを解釈する
func Parse(data []byte, ext string) (*FileConfig, error) {
	var config FileConfig
	switch ext {
	case ".yaml", ".yml", "yaml", "yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json", "json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	return &config, nil
}

// Validate は設定の構造を検証する
func (f *FileConfig) Validate() error {
	if len(f.Scenarios) == 0 && f.Config == nil {
		return &scenario.ConfigError{Field: "scenarios", Reason: "section is missing"}
	}
	if f.Workers < 0 {
		return fmt.Errorf("workers must be non-negative")
	}
	switch f.Mode {
	case "", "shared", "independent":
	default:
		return fmt.Errorf("mode must be shared or independent, got %q", f.Mode)
	}

	seen := make(map[string]bool)
	for i, s := range f.Scenarios {
		if s.Preset == "" {
			return &scenario.ConfigError{Field: fmt.Sprintf("scenarios[%d].preset", i), Reason: "is required"}
		}
		label := s.label()
		if seen[label] {
			return &scenario.ConfigError{Field: fmt.Sprintf("scenarios[%d].label", i), Reason: fmt.Sprintf("duplicate label %q", label)}
		}
		seen[label] = true
	}
	if f.Config != nil && seen[configLabel(*f.Config)] {
		return &scenario.ConfigError{Field: "config.name", Reason: fmt.Sprintf("duplicate label %q", configLabel(*f.Config))}
	}
	return nil
}

// Scenarios は実行可能なシナリオ設定をファイルの記述順で返す
// 完全な設定ドキュメントは最後に追加される
func (f *FileConfig) Scenarios() ([]Labeled, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	out := make([]Labeled, 0, len(f.Scenarios)+1)
	for _, s := range f.Scenarios {
		cfg, err := scenario.Compose(s.Preset, s.Overrides)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.label(), err)
		}
		if err := scenario.ValidateRanges(cfg); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s.label(), err)
		}
		out = append(out, Labeled{Label: s.label(), Config: cfg})
	}

	if f.Config != nil {
		cfg := f.Config.Clone()
		if err := scenario.ValidateRanges(cfg); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", configLabel(cfg), err)
		}
		out = append(out, Labeled{Label: configLabel(cfg), Config: cfg})
	}
	return out, nil
}

func (s ScenarioSpec) label() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Preset
}

func configLabel(c scenario.Config) string {
	if c.Name != "" {
		return c.Name
	}
	return "custom"
}
