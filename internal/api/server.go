package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"supplychain-sim/internal/config"
	"supplychain-sim/internal/events"
	"supplychain-sim/internal/logger"
	"supplychain-sim/internal/montecarlo"
	"supplychain-sim/internal/scenario"
	"supplychain-sim/internal/simulation"
	"supplychain-sim/internal/store"

	"golang.org/x/net/websocket"
)

// Server はAPIサーバー
type Server struct {
	addr string
	svc  *simulation.Service
	bus  *events.Bus

	mu        sync.RWMutex
	running   bool
	current   []string // 実行中のシナリオ名
	cancel    context.CancelFunc
	lastRunID string
	wsClients map[*websocket.Conn]bool

	baseCtx context.Context
	server  *http.Server
}

// NewServer は新しいAPIサーバーを作成する
// bus は svc に渡したものと同じバスを渡すこと（nil なら WebSocket 配信なし）
func NewServer(addr string, svc *simulation.Service, bus *events.Bus) *Server {
	return &Server{
		addr:      addr,
		svc:       svc,
		bus:       bus,
		wsClients: make(map[*websocket.Conn]bool),
		baseCtx:   context.Background(),
	}
}

// Handler はルーティング済みの http.Handler を返す
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/presets", s.handlePresets)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/runs/{id}", s.handleRun)
	mux.HandleFunc("/api/compare", s.handleCompare)
	mux.HandleFunc("/api/stop", s.handleStop)

	mux.Handle("/ws", websocket.Handler(s.handleWebSocket))
	return mux
}

// Start はサーバーを開始する
// ctx がキャンセルされるとサーバーを停止し、実行中のシナリオもキャンセルする
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.bus != nil {
		go s.broadcastLoop(ctx)
	}

	logger.Info("", "API Server starting on http://%s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// StatusResponse はステータスレスポンス
type StatusResponse struct {
	Running     bool     `json:"running"`
	Scenarios   []string `json:"scenarios,omitempty"`
	ActiveRuns  int      `json:"active_runs"`
	Subscribers int      `json:"subscribers"`
	Persistent  bool     `json:"persistent"`
	LastRunID   string   `json:"last_run_id,omitempty"`
}

func (s *Server) status() StatusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StatusResponse{
		Running:     s.running,
		Scenarios:   append([]string(nil), s.current...),
		ActiveRuns:  s.svc.Active(),
		Subscribers: s.bus.SubscriberCount(),
		Persistent:  s.svc.Store() != nil,
		LastRunID:   s.lastRunID,
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, s.status())
}

// PresetInfo はプリセット情報
type PresetInfo struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Parameters  []scenario.Parameter `json:"parameters"`
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var presets []PresetInfo
	for _, name := range scenario.ListPresets() {
		params, err := scenario.EditableParameters(name)
		if err != nil {
			s.writeError(w, err)
			return
		}
		presets = append(presets, PresetInfo{
			Name:        name,
			Description: scenario.Describe(name),
			Parameters:  params,
		})
	}
	s.writeJSON(w, http.StatusOK, presets)
}

// RunRequest はシナリオ実行リクエスト
type RunRequest struct {
	config.ScenarioSpec
	Mode string `json:"mode,omitempty"`
	Wait bool   `json:"wait,omitempty"` // true なら完了まで待って結果を返す
}

// CompareRequest は複数シナリオ比較リクエスト
type CompareRequest struct {
	Scenarios []config.ScenarioSpec `json:"scenarios"`
	Mode      string                `json:"mode,omitempty"`
	Wait      bool                  `json:"wait,omitempty"`
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listRuns(w, r)
	case http.MethodPost:
		s.startRun(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) startRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Preset == "" {
		req.Preset = "baseline"
	}
	doc := config.FileConfig{Scenarios: []config.ScenarioSpec{req.ScenarioSpec}, Mode: req.Mode}
	s.execute(w, doc, req.Wait, func(ctx context.Context, scs []config.Labeled, ro simulation.RunOptions) (any, error) {
		return s.svc.Run(ctx, scs[0], ro)
	})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	doc := config.FileConfig{Scenarios: req.Scenarios, Mode: req.Mode}
	s.execute(w, doc, req.Wait, func(ctx context.Context, scs []config.Labeled, ro simulation.RunOptions) (any, error) {
		return s.svc.Compare(ctx, scs, ro)
	})
}

type batchFunc func(ctx context.Context, scs []config.Labeled, ro simulation.RunOptions) (any, error)

// execute は一度に1バッチだけ実行する
// wait が false の場合はバックグラウンドで実行し、結果は WebSocket で通知する
func (s *Server) execute(w http.ResponseWriter, doc config.FileConfig, wait bool, fn batchFunc) {
	scs, err := doc.Scenarios()
	if err != nil {
		s.writeError(w, err)
		return
	}
	mode, err := montecarlo.ParseMode(doc.Mode)
	if err != nil {
		s.writeError(w, err)
		return
	}

	labels := make([]string, len(scs))
	for i, sc := range scs {
		labels[i] = sc.Label
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		http.Error(w, "Scenario already running", http.StatusConflict)
		return
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.running = true
	s.current = labels
	s.cancel = cancel
	s.mu.Unlock()

	run := func() (any, error) {
		defer cancel()
		result, err := fn(ctx, scs, simulation.RunOptions{Mode: mode})
		s.finish(result)
		return result, err
	}

	if wait {
		result, err := run()
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, result)
		return
	}

	go func() {
		result, err := run()
		msg := map[string]any{"type": "scenario_complete", "scenarios": labels}
		if err != nil {
			logger.Error("", "Scenario batch failed: %v", err)
			msg["error"] = err.Error()
		} else {
			msg["result"] = result
		}
		s.broadcast(msg)
	}()

	s.writeJSON(w, http.StatusAccepted, map[string]any{"status": "started", "scenarios": labels})
}

func (s *Server) finish(result any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.current = nil
	s.cancel = nil
	switch r := result.(type) {
	case simulation.Outcome:
		if r.RunID != "" {
			s.lastRunID = r.RunID
		}
	case simulation.Comparison:
		for _, o := range r.Runs {
			if o.RunID != "" {
				s.lastRunID = o.RunID
			}
		}
	}
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	if !s.running || s.cancel == nil {
		s.mu.Unlock()
		http.Error(w, "No scenario running", http.StatusBadRequest)
		return
	}
	s.cancel()
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "stop requested"})
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	st := s.svc.Store()
	if st == nil {
		http.Error(w, "Run storage is not configured", http.StatusServiceUnavailable)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	runs, err := st.ListRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

// RunDetail は保存済み実行の詳細
type RunDetail struct {
	Run       store.Run                     `json:"run"`
	Summaries []montecarlo.IterationSummary `json:"summaries"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	st := s.svc.Store()
	if st == nil {
		http.Error(w, "Run storage is not configured", http.StatusServiceUnavailable)
		return
	}

	id := r.PathValue("id")
	run, err := st.GetRun(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	summaries, err := st.Summaries(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, RunDetail{Run: run, Summaries: summaries})
}

// WebSocket handling
func (s *Server) handleWebSocket(ws *websocket.Conn) {
	s.mu.Lock()
	s.wsClients[ws] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.wsClients, ws)
		s.mu.Unlock()
		_ = ws.Close()
	}()

	// Keep connection alive
	for {
		var msg string
		if err := websocket.Message.Receive(ws, &msg); err != nil {
			break
		}
	}
}

func (s *Server) broadcast(data any) {
	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.wsClients))
	for ws := range s.wsClients {
		clients = append(clients, ws)
	}
	s.mu.RUnlock()

	if len(clients) == 0 {
		return
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		logger.Warn("", "Failed to encode broadcast: %v", err)
		return
	}

	for _, ws := range clients {
		_ = websocket.Message.Send(ws, string(jsonData))
	}
}

// broadcastLoop はイベントバスの内容を WebSocket クライアントへ中継する
// 週次の障害と意思決定は件数が多いため、実行・イテレーション単位のイベントのみ配信する
func (s *Server) broadcastLoop(ctx context.Context) {
	ch := s.bus.Subscribe(
		events.EventRunStarted,
		events.EventIterationComplete,
		events.EventIterationFailed,
		events.EventRunComplete,
	)
	defer s.bus.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			s.broadcast(ev)
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("", "Failed to encode JSON: %v", err)
	}
}

// writeError はエラーの種類に応じたステータスコードで応答する
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case scenario.IsConfigError(err):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, context.Canceled):
		status = http.StatusConflict
	}
	s.writeJSON(w, status, map[string]string{"error": fmt.Sprint(err)})
}
