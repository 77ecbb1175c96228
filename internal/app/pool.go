package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/gzizouseif24/tarot-reader/internal/platform/metrics"
)

// DefaultPoolSize is used when NewWorkerPool is given a non-positive size.
const DefaultPoolSize = 8

// WorkerPool bounds how many upstream calls run at once.
type WorkerPool struct {
	sem  *semaphore.Weighted
	size int64
}

// NewWorkerPool creates a pool with size slots.
func NewWorkerPool(size int) *WorkerPool {
	if size <= 0 {
		size = DefaultPoolSize
	}

	return &WorkerPool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: int64(size),
	}
}

// Size returns the number of slots.
func (p *WorkerPool) Size() int {
	return int(p.size)
}

type poolResult[T any] struct {
	value T
	err   error
}

// Submit runs fn on its own goroutine once a slot is free and waits for it.
//
// The caller returns early with ctx.Err() if ctx ends while waiting for a
// slot or for fn. fn itself runs detached from ctx cancellation, so an
// abandoned call still finishes, releases its slot and has its result
// discarded. Deadlines for fn come from the client it calls.
func Submit[T any](ctx context.Context, p *WorkerPool, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	waitStart := time.Now()

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}

	if err := ctx.Err(); err != nil {
		p.sem.Release(1)
		return zero, err
	}

	metrics.CompletionWaitDuration.Observe(time.Since(waitStart).Seconds())
	metrics.CompletionsInFlight.Inc()

	done := make(chan poolResult[T], 1)
	detached := context.WithoutCancel(ctx)

	go func() {
		defer p.sem.Release(1)
		defer metrics.CompletionsInFlight.Dec()

		var r poolResult[T]

		defer func() {
			if rec := recover(); rec != nil {
				r = poolResult[T]{err: fmt.Errorf("worker panicked: %v", rec)}
			}
			done <- r
		}()

		r.value, r.err = fn(detached)
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
