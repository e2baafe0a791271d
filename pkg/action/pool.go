package action

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of action requests in flight across all sessions.
type Pool struct {
	sem *semaphore.Weighted
	max int64
}

// NewPool creates a pool admitting at most max concurrent requests.
// A max of zero or less yields an unbounded pool.
func NewPool(max int) *Pool {
	if max <= 0 {
		return &Pool{}
	}
	return &Pool{sem: semaphore.NewWeighted(int64(max)), max: int64(max)}
}

// Acquire blocks until a slot is free or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (release func(), err error) {
	if p == nil || p.sem == nil {
		return func() {}, nil
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { p.sem.Release(1) }, nil
}

// Size returns the configured bound, or 0 when unbounded.
func (p *Pool) Size() int {
	if p == nil {
		return 0
	}
	return int(p.max)
}
