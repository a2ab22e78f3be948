package worker

import (
	"context"
	"sync"
	"time"

	"github.com/luwen/lingoflash/internal/logger"
)

// Job is a unit of background work carried off the caller's path.
type Job interface {
	Run(context.Context) error
	Name() string
}

// Func adapts a closure to a Job.
type Func struct {
	Label string
	Fn    func(context.Context) error
}

func (f Func) Run(ctx context.Context) error { return f.Fn(ctx) }
func (f Func) Name() string                  { return f.Label }

// Pool runs fire-and-forget jobs on a bounded queue. Enqueueing never
// blocks the caller: when the queue is full the job is dropped and logged,
// since the submit path deliberately carries no backpressure.
type Pool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	workers int
	cancel  context.CancelFunc
	log     *logger.Logger

	mu      sync.Mutex
	dropped int
	closed  bool
}

// stopGrace bounds how long Stop waits for the backlog to drain before
// cancelling the jobs still running.
const stopGrace = 10 * time.Second

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Pool{
		jobs:    make(chan Job, queueSize),
		workers: workers,
		log:     logger.Default().WithPrefix("worker-pool"),
	}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.log.Info("starting %d submit workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i+1)
	}
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	log := p.log.WithField("worker_id", id)
	log.Debug("worker started")

	for {
		select {
		case <-ctx.Done():
			log.Debug("worker shutting down (context cancelled)")
			return
		case job, ok := <-p.jobs:
			if !ok {
				log.Debug("worker shutting down (queue closed)")
				return
			}
			start := time.Now()
			jobLog := log.WithField("job", job.Name())
			jobCtx := logger.NewContext(ctx, jobLog)
			if err := job.Run(jobCtx); err != nil {
				jobLog.Error("job failed after %v: %v", time.Since(start), err)
			} else {
				jobLog.Debug("job completed in %v", time.Since(start))
			}
		}
	}
}

// TryDispatch enqueues a job without blocking. Returns false if the job
// was dropped because the queue is full or the pool has been stopped.
func (p *Pool) TryDispatch(job Job) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.log.Warn("pool stopped, dropping job: %s", job.Name())
		return false
	}
	select {
	case p.jobs <- job:
		p.mu.Unlock()
		return true
	default:
		p.dropped++
		p.mu.Unlock()
		p.log.Warn("submit queue full, dropping job: %s", job.Name())
		return false
	}
}

// Dropped returns the number of jobs dropped so far.
func (p *Pool) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Pending returns the current number of queued jobs.
func (p *Pool) Pending() int {
	return len(p.jobs)
}

// Stop closes the queue and lets the workers finish the backlog with a
// live context, so jobs enqueued just before shutdown still complete.
// Jobs still running after the grace period are cancelled.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.log.Info("stopping submit workers")
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(stopGrace):
		p.log.Warn("drain took longer than %v, cancelling remaining jobs", stopGrace)
		if p.cancel != nil {
			p.cancel()
		}
		<-done
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.log.Info("submit workers stopped")
}
