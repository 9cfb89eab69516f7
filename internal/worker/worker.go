package worker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"supplychain-sim/internal/logger"
)

// Job はワーカーが実行するイテレーション単位の処理
// ctx はプールのコンテキストで、停止時にキャンセルされる
type Job func(ctx context.Context)

// PoolConfig はワーカープールの設定
type PoolConfig struct {
	NumWorkers  int // ワーカー数（0でCPU数）
	QueueFactor int // キューサイズ = NumWorkers * QueueFactor
}

// DefaultPoolConfig はデフォルト設定を返す
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		NumWorkers:  0,
		QueueFactor: 4,
	}
}

// Pool は独立したイテレーションを並列に実行するゴルーチンのプール
type Pool struct {
	numWorkers int
	jobs       chan Job
	wg         sync.WaitGroup // ワーカーゴルーチン
	pending    sync.WaitGroup // 投入済みで未完了のジョブ
	ctx        context.Context
	cancel     context.CancelFunc
	started    bool
	stopping   atomic.Bool
	completed  atomic.Int64
	mu         sync.Mutex
}

// NewPool は新しいワーカープールを作成する
// numWorkers が 0 以下の場合は CPU 数を使用
func NewPool(numWorkers int) *Pool {
	config := DefaultPoolConfig()
	config.NumWorkers = numWorkers
	return NewPoolWithConfig(config)
}

// NewPoolWithConfig は設定を指定してワーカープールを作成する
func NewPoolWithConfig(config PoolConfig) *Pool {
	numWorkers := config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	queueFactor := config.QueueFactor
	if queueFactor <= 0 {
		queueFactor = 4
	}
	return &Pool{
		numWorkers: numWorkers,
		jobs:       make(chan Job, numWorkers*queueFactor),
	}
}

// Start はワーカープールを起動する
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.started = true

	for range p.numWorkers {
		p.wg.Add(1)
		go p.worker()
	}

	logger.Debug("", "worker pool started with %d workers", p.numWorkers)
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.run(job)
		}
	}
}

func (p *Pool) run(job Job) {
	defer p.pending.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("", "job panicked: %v", r)
		}
	}()
	job(p.ctx)
	p.completed.Add(1)
}

// Submit はジョブを送信する。キューに空きがなければブロックする
// 停止中またはコンテキストがキャンセル済みなら false を返す
func (p *Pool) Submit(job Job) bool {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started || p.stopping.Load() {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	default:
	}

	p.pending.Add(1)
	select {
	case <-p.ctx.Done():
		p.pending.Done()
		return false
	case p.jobs <- job:
		return true
	}
}

// Wait は投入済みのジョブがすべて完了するか、コンテキストがキャンセルされるまで待つ
// キャンセル時にキューに残ったジョブは実行されない
func (p *Pool) Wait() {
	done := make(chan struct{})
	go func() {
		p.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-p.ctx.Done():
		p.drain()
		<-done
	}
}

// drain はキャンセル後にキューに残ったジョブを捨てる
func (p *Pool) drain() {
	for {
		select {
		case <-p.jobs:
			p.pending.Done()
		default:
			return
		}
	}
}

// Stop はワーカープールを停止する
// 実行中のジョブの完了を待つ。キュー内の未実行ジョブは破棄される
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.stopping.Store(true)
	p.cancel()
	p.wg.Wait()
	p.drain()

	p.mu.Lock()
	p.started = false
	p.stopping.Store(false)
	p.mu.Unlock()

	logger.Debug("", "worker pool stopped after %d jobs", p.completed.Load())
}

// NumWorkers はワーカー数を返す
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Completed は完了したジョブ数を返す
func (p *Pool) Completed() int64 {
	return p.completed.Load()
}

// QueueSize は現在のキューサイズを返す
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}
