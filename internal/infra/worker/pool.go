// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// A very small worker pool for bounded-concurrency background tasks,
// used by the expiration sweeper to fan out per-record updates.

type Task func(ctx context.Context) error

var (
	ErrPoolClosed = errors.New("worker pool closed")
	ErrQueueFull  = errors.New("worker queue full")
)

// Pool guarantees that every task Submit accepts is eventually run:
// workers drain the queue to empty before exiting, and once shutdown
// begins Submit rejects instead of enqueueing. Callers pairing Submit
// with a WaitGroup therefore never wait on an abandoned task.
type Pool struct {
	wg   sync.WaitGroup
	jobs chan Task
	n    int
	log  *zerolog.Logger

	mu      sync.Mutex
	stopped bool
	stop    sync.Once
}

func NewPool(workers int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	l := logger.With().Str("component", "WorkerPool").Logger()
	return &Pool{jobs: make(chan Task, workers*4), n: workers, log: &l}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			// Tasks accepted before shutdown still run, with whatever
			// ctx state they find; a cancelled ctx makes them fail fast.
			for task := range p.jobs {
				if task == nil {
					continue
				}
				if err := task(ctx); err != nil {
					p.log.Error().Err(err).Int("worker", id).Msg("task error")
				}
			}
		}(i)
	}
	go func() {
		<-ctx.Done()
		p.close()
	}()
}

// close flips the pool to rejecting before the channel is closed, so a
// concurrent Submit can never send on a closed channel.
func (p *Pool) close() {
	p.stop.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()
		close(p.jobs)
	})
}

// Stop shuts the queue and blocks until the workers have drained it.
func (p *Pool) Stop() {
	p.close()
	p.wg.Wait()
}

// Submit enqueues a task. ErrQueueFull on saturation, ErrPoolClosed
// after shutdown; callers decide whether to run inline or drop.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- task:
		return nil
	default:
		return ErrQueueFull
	}
}
