package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"supplychain-sim/internal/analysis"
	"supplychain-sim/internal/montecarlo"
)

// Format は出力形式
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// ParseFormat は文字列から Format を解釈する
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSONL:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want csv or jsonl)", s)
	}
}

// Write は summaries を指定形式で書き出す
func Write(w io.Writer, format Format, summaries []montecarlo.IterationSummary) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, summaries)
	case FormatJSONL:
		return WriteJSONL(w, summaries)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteCSV はイテレーションごとに1行の CSV を書き出す
// 列は scenario, iteration, failed, error と、全サマリーに現れるメトリクス名（昇順）
func WriteCSV(w io.Writer, summaries []montecarlo.IterationSummary) error {
	keys := metricKeys(summaries)

	cw := csv.NewWriter(w)
	header := append([]string{"scenario", "iteration", "failed", "error"}, keys...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, s := range summaries {
		row := make([]string, 0, len(header))
		row = append(row, s.Scenario, strconv.Itoa(s.Iteration), strconv.FormatBool(s.Failed), s.Error)
		for _, k := range keys {
			v, ok := s.Metrics[k]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", s.Iteration, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// record は JSONL の1行
// メトリクスはトップレベルに展開する
type record map[string]any

func toRecord(s montecarlo.IterationSummary) record {
	r := make(record, len(s.Metrics)+4)
	for k, v := range s.Metrics {
		r[k] = v
	}
	r["scenario"] = s.Scenario
	r["iteration"] = s.Iteration
	r["failed"] = s.Failed
	if s.Error != "" {
		r["error"] = s.Error
	}
	return r
}

// WriteJSONL はイテレーションごとに1行の JSON を書き出す
func WriteJSONL(w io.Writer, summaries []montecarlo.IterationSummary) error {
	bw := bufio.NewWriterSize(w, 64<<10)
	enc := json.NewEncoder(bw)
	for _, s := range summaries {
		if err := enc.Encode(toRecord(s)); err != nil {
			return fmt.Errorf("failed to encode iteration %d: %w", s.Iteration, err)
		}
	}
	return bw.Flush()
}

// WriteTableCSV は比較表を scenario, metric, value, pct_change の縦持ち CSV で書き出す
func WriteTableCSV(w io.Writer, values, pct analysis.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"scenario", "metric", "value", "pct_change"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, name := range values.Scenarios() {
		for _, metric := range slices.Sorted(maps.Keys(values[name])) {
			change := ""
			if c, ok := pct[name][metric]; ok {
				change = strconv.FormatFloat(c, 'g', -1, 64)
			}
			row := []string{name, metric, strconv.FormatFloat(values[name][metric], 'g', -1, 64), change}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func metricKeys(summaries []montecarlo.IterationSummary) []string {
	seen := make(map[string]struct{})
	for _, s := range summaries {
		for k := range s.Metrics {
			seen[k] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}
