package analysis

import (
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Round3 は値を小数点以下3桁に丸める
// NaN と無限大はそのまま返す
func Round3(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(3).Float64()
	return f
}

// RoundTable は表のすべての値を3桁に丸めた新しい表を返す
func RoundTable(t Table) Table {
	out := make(Table, len(t))
	for name, row := range t {
		r := make(map[string]float64, len(row))
		for k, v := range row {
			r[k] = Round3(v)
		}
		out[name] = r
	}
	return out
}

// Report は比較結果を整形したテキストで返す
// 数値は英語ロケールの桁区切りで表示する
func Report(values, pct Table) string {
	p := message.NewPrinter(language.English)
	var sb strings.Builder

	scenarios := values.Scenarios()
	title := "Supply chain resilience comparison"
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("=", len(title)) + "\n\n")

	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "metric\t%s\n", strings.Join(scenarios, "\t"))
	for _, metric := range values.Metrics() {
		cells := make([]string, 0, len(scenarios))
		for _, name := range scenarios {
			v, ok := values[name][metric]
			if !ok {
				cells = append(cells, "-")
				continue
			}
			cell := p.Sprintf("%.3f", Round3(v))
			if change, ok := pct[name][metric]; ok && name != BaselineScenario {
				cell += p.Sprintf(" (%+.1f%%)", change)
			}
			cells = append(cells, cell)
		}
		fmt.Fprintf(tw, "%s\t%s\n", metric, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()

	if len(pct) == 0 && len(scenarios) > 1 {
		sb.WriteString("\n(no baseline scenario: percentage changes omitted)\n")
	}
	return sb.String()
}
