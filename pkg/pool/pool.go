package pool

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"tinyhttpd/pkg/metrics"
	"tinyhttpd/pkg/state/logger"
)

var (
	ErrInvalidSize = errors.New("pool size must be greater than zero")
	ErrPoolClosed  = errors.New("pool closed")
)

// Job is one unit of work. A job is owned by the single worker that
// dequeues it.
type Job func()

type messageKind uint8

const (
	msgJob messageKind = iota
	msgTerminate
)

type message struct {
	kind messageKind
	job  Job
}

// WorkerPool runs jobs on a fixed set of workers fed from one unbounded FIFO
// queue. Terminate messages share the queue with jobs, so every job queued
// before Dispose runs before the workers stop.
type WorkerPool struct {
	size int

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []message
	pending int
	closed  bool

	busy        atomic.Int64
	disposeOnce sync.Once
	wg          sync.WaitGroup
}

// New starts n workers.
func New(n int) (*WorkerPool, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, n)
	}
	p := &WorkerPool{size: n}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(n)
	for id := 0; id < n; id++ {
		go p.worker(id)
	}
	logger.Info("pool_started", "workers", n)
	return p, nil
}

// MustNew is New for callers that treat a bad size as a programming error.
func MustNew(n int) *WorkerPool {
	p, err := New(n)
	if err != nil {
		panic(err)
	}
	return p
}

// Execute queues job for the next free worker. It never blocks on workers
// and never rejects work while the pool is open.
func (p *WorkerPool) Execute(job Job) error {
	if job == nil {
		return nil
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.queue = append(p.queue, message{kind: msgJob, job: job})
	p.pending++
	metrics.QueueDepth.Set(float64(p.pending))
	p.mu.Unlock()
	p.cond.Signal()
	return nil
}

// Dispose queues one terminate message per worker behind any pending jobs
// and blocks until every worker has returned. Later calls wait for the
// same completion.
func (p *WorkerPool) Dispose() {
	p.disposeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		for i := 0; i < p.size; i++ {
			p.queue = append(p.queue, message{kind: msgTerminate})
		}
		p.mu.Unlock()
		p.cond.Broadcast()

		logger.Info("pool_disposing", "workers", p.size, "pending", p.Pending())
		p.wg.Wait()
		logger.Info("pool_disposed")
	})
}

func (p *WorkerPool) Size() int { return p.size }

// Pending returns the number of queued jobs not yet picked up.
func (p *WorkerPool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

// Busy returns the number of workers currently running a job.
func (p *WorkerPool) Busy() int { return int(p.busy.Load()) }

func (p *WorkerPool) next() message {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 {
		p.cond.Wait()
	}
	m := p.queue[0]
	p.queue[0] = message{}
	p.queue = p.queue[1:]
	if m.kind == msgJob {
		p.pending--
		metrics.QueueDepth.Set(float64(p.pending))
	}
	return m
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for {
		m := p.next()
		switch m.kind {
		case msgJob:
			logger.Debug("worker_got_job", "worker", id)
			p.run(id, m.job)
		case msgTerminate:
			logger.Info("worker_terminating", "worker", id)
			return
		}
	}
}

// run executes job behind a recover boundary so a panicking job does not
// take its worker down.
func (p *WorkerPool) run(id int, job Job) {
	metrics.BusyWorkers.Set(float64(p.busy.Add(1)))
	defer func() {
		metrics.BusyWorkers.Set(float64(p.busy.Add(-1)))
		if r := recover(); r != nil {
			metrics.JobPanics.Inc()
			logger.Error("job_panicked", "worker", id, "panic", r, "stack", string(debug.Stack()))
			return
		}
		metrics.JobsExecuted.Inc()
	}()
	job()
}
