package dispatch

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/scttfrdmn/awsmp/pkg/matrix"
)

// ErrPoolClosed is the error of a task submitted after Shutdown.
var ErrPoolClosed = errors.New("dispatch: pool is shut down")

// DefaultWorkers returns the worker count used when none is configured:
// min(32, NumCPU+4) for in-process workers, NumCPU for process workers.
func DefaultWorkers(useProcesses bool) int {
	if useProcesses {
		return runtime.NumCPU()
	}
	return min(32, runtime.NumCPU()+4)
}

// Pool runs submitted functions with at most Workers of them in flight.
type Pool struct {
	workers int
	sem     *semaphore.Weighted

	mu     sync.Mutex
	closed bool
}

// NewPool creates a pool. workers <= 0 selects DefaultWorkers(false).
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers(false)
	}
	return &Pool{
		workers: workers,
		sem:     semaphore.NewWeighted(int64(workers)),
	}
}

// Workers returns the concurrency limit.
func (p *Pool) Workers() int { return p.workers }

// Submit queues fn for p and returns its handle without waiting. A task
// submitted after Shutdown is not run; its future resolves to ErrPoolClosed.
func (p *Pool) Submit(ctx context.Context, fn Func, params matrix.Params) *Future {
	f := newFuture(params)

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		f.resolve(nil, ErrPoolClosed)
		return f
	}

	go func() {
		// Queued work is never abandoned, so the wait ignores ctx.
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)
		f.resolve(fn(ctx, params))
	}()

	return f
}

// Shutdown stops the pool from accepting new work. It does not wait for, or
// cancel, work already submitted.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
