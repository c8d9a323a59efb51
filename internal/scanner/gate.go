package scanner

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Gate bounds how many analyses are in their fetch phase at once.
type Gate interface {
	Acquire(ctx context.Context) error
	Release()
}

type semGate struct {
	sem *semaphore.Weighted
}

// NewGate returns a Gate admitting at most n holders.
func NewGate(n int) Gate {
	if n < 1 {
		n = 1
	}
	return &semGate{sem: semaphore.NewWeighted(int64(n))}
}

func (g *semGate) Acquire(ctx context.Context) error { return g.sem.Acquire(ctx, 1) }
func (g *semGate) Release()                          { g.sem.Release(1) }

// Pool bounds CPU-bound work (indicators, detection, scoring) to a fixed
// number of concurrent runs.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool creates a pool of size n, or runtime.NumCPU() when n <= 0.
func NewPool(n int) *Pool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return &Pool{sem: semaphore.NewWeighted(int64(n))}
}

// Do runs fn once a worker slot is free.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	fn()
	return nil
}
