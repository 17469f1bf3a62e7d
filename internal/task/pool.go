package task

import (
	"log/slog"
	"sync"
)

// Pool is a bounded worker pool with a caller-runs saturation policy.
//
// Submission order of preference: hand the job to an idle worker via the
// queue; start a transient overflow worker if the total worker count is
// below the maximum; otherwise run the job synchronously on the caller's
// goroutine. Jobs never wait behind a full queue and are never rejected.
// No job ordering is guaranteed.
type Pool struct {
	queue chan func()

	// mu guards workers and stopped
	mu      sync.Mutex
	workers int
	stopped bool

	coreWorkers int
	maxWorkers  int

	// wg tracks all worker goroutines for Stop
	wg sync.WaitGroup

	logger *slog.Logger
}

// PoolConfig holds configuration options for the pool.
type PoolConfig struct {
	// CoreWorkers is the number of long-lived workers started up front.
	// If zero or negative, defaults to 3.
	CoreWorkers int

	// MaxWorkers caps core plus transient overflow workers.
	// If below CoreWorkers, defaults to CoreWorkers.
	MaxWorkers int

	// QueueSize bounds the backlog of jobs waiting for a worker.
	// If zero or negative, defaults to 10.
	QueueSize int
}

// DefaultPoolConfig returns a PoolConfig with the default sizing:
// 3 core workers, 5 maximum, backlog of 10.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		CoreWorkers: 3,
		MaxWorkers:  5,
		QueueSize:   10,
	}
}

// NewPool creates and starts a pool with the specified configuration.
func NewPool(config PoolConfig, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}

	core := config.CoreWorkers
	if core <= 0 {
		core = 3
		logger.Warn("invalid core worker count specified, using default",
			"specified_count", config.CoreWorkers,
			"default_count", core)
	}
	max := config.MaxWorkers
	if max < core {
		max = core
		logger.Warn("max workers below core workers, clamping",
			"specified_max", config.MaxWorkers,
			"effective_max", max)
	}
	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 10
	}

	p := &Pool{
		queue:       make(chan func(), queueSize),
		coreWorkers: core,
		maxWorkers:  max,
		logger:      logger.With(slog.String("component", "worker_pool")),
	}

	p.workers = core
	for i := 0; i < core; i++ {
		p.wg.Add(1)
		go p.coreWorker(i)
	}

	return p
}

// Submit schedules job for execution. It never blocks on a full backlog
// and never drops the job: when the queue is full and the worker budget
// is spent, the job runs on the calling goroutine before Submit returns.
// Submit must not be called after Stop.
func (p *Pool) Submit(job func()) {
	if job == nil {
		return
	}

	// Fast path: backlog has room.
	select {
	case p.queue <- job:
		return
	default:
	}

	// Backlog full: start an overflow worker if the budget allows.
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		// ALLOW-PANIC: Submitting after Stop is a programming error.
		panic("task: Submit called after Stop")
	}
	if p.workers < p.maxWorkers {
		p.workers++
		p.wg.Add(1)
		p.mu.Unlock()
		p.logger.Debug("starting overflow worker")
		go p.overflowWorker(job)
		return
	}
	p.mu.Unlock()

	// Saturated: caller runs the job itself.
	p.logger.Debug("pool saturated, running job on caller")
	job()
}

// coreWorker processes jobs until the queue is closed.
func (p *Pool) coreWorker(id int) {
	defer p.wg.Done()
	p.logger.Debug("core worker started", slog.Int("worker_id", id))

	for job := range p.queue {
		job()
	}

	p.logger.Debug("core worker stopped", slog.Int("worker_id", id))
}

// overflowWorker runs its initial job, then keeps draining the backlog
// while work is immediately available, and exits as soon as the queue is
// empty, returning its slot to the budget.
func (p *Pool) overflowWorker(first func()) {
	defer p.wg.Done()
	defer func() {
		p.mu.Lock()
		p.workers--
		p.mu.Unlock()
	}()

	first()

	for {
		select {
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			job()
		default:
			return
		}
	}
}

// Stop closes the backlog and waits for every queued and running job to
// finish. After Stop returns, no job is running and Submit must not be
// called again.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	close(p.queue)
	p.wg.Wait()
	p.logger.Debug("worker pool stopped")
}
