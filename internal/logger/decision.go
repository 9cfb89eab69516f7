package logger

import (
	"encoding/json"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DecisionLogger はエージェントの意思決定を JSONL で記録する
// nil の DecisionLogger は安全に使用でき、すべてのメソッドは何もしない
type DecisionLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewDecisionLogger は dir/decisions.jsonl に追記するロガーを作成する
// dir が空の場合は nil を返す
func NewDecisionLogger(dir string) (*DecisionLogger, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "decisions.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &DecisionLogger{file: f}, nil
}

// Log はイベントを1行の JSON として書き込む
// time フィールドを自動付与する。呼び出し元の map は変更しない
func (dl *DecisionLogger) Log(event map[string]any) {
	if dl == nil || dl.file == nil {
		return
	}

	entry := make(map[string]any, len(event)+1)
	maps.Copy(entry, event)
	entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	dl.mu.Lock()
	defer dl.mu.Unlock()
	_, _ = dl.file.Write(data)
}

// Close はファイルを閉じる
func (dl *DecisionLogger) Close() error {
	if dl == nil || dl.file == nil {
		return nil
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	return dl.file.Close()
}
