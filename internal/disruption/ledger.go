package disruption

// Ledger はイテレーション内の障害履歴
// 追記のみで、記録済みのイベントは変更されない
type Ledger struct {
	events []Event
	byWeek map[int][]int
}

// NewLedger は空の Ledger を作成する
func NewLedger() *Ledger {
	return &Ledger{byWeek: make(map[int][]int)}
}

// Append はイベントを追記する
func (l *Ledger) Append(events ...Event) {
	for _, ev := range events {
		l.byWeek[ev.Week] = append(l.byWeek[ev.Week], len(l.events))
		l.events = append(l.events, ev)
	}
}

// ForWeek は指定週のイベントを返す（なければ nil）
func (l *Ledger) ForWeek(week int) []Event {
	idx := l.byWeek[week]
	if len(idx) == 0 {
		return nil
	}
	out := make([]Event, len(idx))
	for i, j := range idx {
		out[i] = l.events[j]
	}
	return out
}

// All はすべてのイベントのコピーを返す
func (l *Ledger) All() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len は記録済みイベント数を返す
func (l *Ledger) Len() int {
	return len(l.events)
}

// TotalSeverity は events の深刻度の合計を返す
func TotalSeverity(events []Event) float64 {
	var total float64
	for _, ev := range events {
		total += ev.Severity
	}
	return total
}

// MaxSeverityOf は events の深刻度の最大値を返す（空なら 0）
func MaxSeverityOf(events []Event) float64 {
	var m float64
	for _, ev := range events {
		if ev.Severity > m {
			m = ev.Severity
		}
	}
	return m
}

// RegionSeverity は地域ごとの深刻度合計を返す
func RegionSeverity(events []Event) map[string]float64 {
	out := make(map[string]float64)
	for _, ev := range events {
		out[ev.Region] += ev.Severity
	}
	return out
}
