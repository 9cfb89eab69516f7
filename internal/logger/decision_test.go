package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDecisionLoggerNil(t *testing.T) {
	dl, err := NewDecisionLogger("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dl != nil {
		t.Fatal("expected nil logger for empty dir")
	}

	// nil でも安全
	dl.Log(map[string]any{"role": "coo"})
	if err := dl.Close(); err != nil {
		t.Errorf("Close on nil returned %v", err)
	}
}

func TestDecisionLoggerWrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "telemetry")
	dl, err := NewDecisionLogger(dir)
	if err != nil {
		t.Fatalf("failed to create decision logger: %v", err)
	}

	event := map[string]any{"role": "coo", "week": 3}
	dl.Log(event)
	dl.Log(map[string]any{"role": "supplier", "week": 4})
	if err := dl.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	if _, ok := event["time"]; ok {
		t.Error("caller map must not be mutated")
	}

	f, err := os.Open(filepath.Join(dir, "decisions.jsonl"))
	if err != nil {
		t.Fatalf("failed to open log: %v", err)
	}
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var m map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &m); err != nil {
			t.Fatalf("invalid JSON line: %v", err)
		}
		lines = append(lines, m)
	}

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0]["role"] != "coo" {
		t.Errorf("expected role coo, got %v", lines[0]["role"])
	}
	if _, ok := lines[1]["time"]; !ok {
		t.Error("expected time field")
	}
}
