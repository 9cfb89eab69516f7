package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"supplychain-sim/internal/montecarlo"
	"supplychain-sim/internal/scenario"
)

const memoryPath = ":memory:"

// created_at は文字列順で並ぶよう固定幅で保存する
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound は指定した実行が存在しないときに返される
var ErrNotFound = errors.New("run not found")

// Run は保存済みのシナリオ実行
type Run struct {
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Mode       string             `json:"mode"`
	Iterations int                `json:"iterations"`
	Completed  int                `json:"completed"`
	Failed     int                `json:"failed"`
	Duration   time.Duration      `json:"duration"`
	Config     scenario.Config    `json:"config"`
	Stats      map[string]float64 `json:"stats,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Store は実行結果を SQLite に保存する
type Store struct {
	db *sql.DB
}

// Open は path の SQLite データベースを開き、スキーマを初期化する
// ":memory:" を指定するとインメモリデータベースになる
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn += "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// インメモリ DB は接続ごとに別のデータベースになるため、接続は1本に限る
	db.SetMaxOpenConns(1)

	if path == memoryPath {
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close はデータベースを閉じる
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun は実行結果とイテレーションごとのサマリーを保存する
// stats は集計結果（完了イテレーションがない場合は nil）
func (s *Store) SaveRun(ctx context.Context, res montecarlo.Result, stats map[string]float64) (Run, error) {
	cfgJSON, err := json.Marshal(res.Config)
	if err != nil {
		return Run{}, fmt.Errorf("failed to encode config: %w", err)
	}
	var statsJSON sql.NullString
	if stats != nil {
		b, err := json.Marshal(stats)
		if err != nil {
			return Run{}, fmt.Errorf("failed to encode stats: %w", err)
		}
		statsJSON = sql.NullString{String: string(b), Valid: true}
	}

	run := Run{
		ID:         uuid.NewString(),
		Scenario:   res.Scenario,
		Mode:       res.Mode.String(),
		Iterations: len(res.Summaries),
		Completed:  res.Completed,
		Failed:     res.Failed,
		Duration:   res.Duration,
		Config:     res.Config,
		Stats:      stats,
		CreatedAt:  time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, scenario, mode, iterations, completed, failed, duration_ms, config, stats, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Scenario, run.Mode, run.Iterations, run.Completed, run.Failed,
		run.Duration.Milliseconds(), string(cfgJSON), statsJSON, run.CreatedAt.Format(timeLayout),
	); err != nil {
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO iterations (run_id, iteration, failed, error, metrics) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("failed to prepare iteration insert: %w", err)
	}
	defer stmt.Close()

	for _, it := range res.Summaries {
		var metricsJSON sql.NullString
		if it.Metrics != nil {
			b, err := json.Marshal(it.Metrics)
			if err != nil {
				return Run{}, fmt.Errorf("failed to encode iteration %d: %w", it.Iteration, err)
			}
			metricsJSON = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, run.ID, it.Iteration, boolToInt(it.Failed), nullString(it.Error), metricsJSON); err != nil {
			return Run{}, fmt.Errorf("failed to insert iteration %d: %w", it.Iteration, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("failed to commit run: %w", err)
	}
	run.Duration = time.Duration(run.Duration.Milliseconds()) * time.Millisecond
	return run, nil
}

// GetRun は ID から実行を取得する
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, scenario, mode, iterations, completed, failed, duration_ms, config, stats, created_at
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// ListRuns は新しい順に実行を返す
// limit が 0 以下の場合はすべて返す
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, scenario, mode, iterations, completed, failed, duration_ms, config, stats, created_at
		 FROM runs ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Summaries は実行のイテレーションサマリーを順番に返す
func (s *Store) Summaries(ctx context.Context, id string) ([]montecarlo.IterationSummary, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT iteration, failed, error, metrics FROM iterations WHERE run_id = ? ORDER BY iteration`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query iterations: %w", err)
	}
	defer rows.Close()

	var out []montecarlo.IterationSummary
	for rows.Next() {
		var (
			it          montecarlo.IterationSummary
			failed      int
			errText     sql.NullString
			metricsJSON sql.NullString
		)
		if err := rows.Scan(&it.Iteration, &failed, &errText, &metricsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan iteration: %w", err)
		}
		it.Scenario = run.Scenario
		it.Failed = failed != 0
		it.Error = errText.String
		if metricsJSON.Valid {
			if err := json.Unmarshal([]byte(metricsJSON.String), &it.Metrics); err != nil {
				return nil, fmt.Errorf("failed to decode iteration %d: %w", it.Iteration, err)
			}
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// DeleteRun は実行とそのイテレーションを削除する
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run        Run
		durationMS int64
		cfgJSON    string
		statsJSON  sql.NullString
		createdAt  string
	)
	if err := row.Scan(&run.ID, &run.Scenario, &run.Mode, &run.Iterations, &run.Completed, &run.Failed,
		&durationMS, &cfgJSON, &statsJSON, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	if err := json.Unmarshal([]byte(cfgJSON), &run.Config); err != nil {
		return Run{}, fmt.Errorf("failed to decode config for run %s: %w", run.ID, err)
	}
	if statsJSON.Valid {
		if err := json.Unmarshal([]byte(statsJSON.String), &run.Stats); err != nil {
			return Run{}, fmt.Errorf("failed to decode stats for run %s: %w", run.ID, err)
		}
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("failed to parse created_at for run %s: %w", run.ID, err)
	}
	run.CreatedAt = t
	return run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
