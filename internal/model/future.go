package model

import (
	"context"
	"sync"
)

// Future is the eventual outcome of one resolution.
type Future struct {
	done chan struct{}
	res  Resolved
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) settle(res Resolved, err error) {
	f.res, f.err = res, err
	close(f.done)
}

// Done is closed once the future has settled.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the future settles or ctx is done.
func (f *Future) Wait(ctx context.Context) (Resolved, error) {
	select {
	case <-f.done:
		return f.res, f.err
	case <-ctx.Done():
		return Resolved{}, ctx.Err()
	}
}

// Pending tracks outstanding futures of a session.
type Pending struct {
	mu      sync.Mutex
	futures []*Future
}

// Add registers a future.
func (p *Pending) Add(f *Future) {
	p.mu.Lock()
	p.futures = append(p.futures, f)
	p.mu.Unlock()
}

// Len returns the number of registered futures.
func (p *Pending) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.futures)
}

// Settle waits for every registered future, including futures added while it
// waits, and returns the successful results in registration order.
func (p *Pending) Settle(ctx context.Context) ([]Resolved, error) {
	var results []Resolved
	seen := 0
	for {
		p.mu.Lock()
		batch := p.futures[seen:]
		p.mu.Unlock()
		if len(batch) == 0 {
			return results, nil
		}
		for _, f := range batch {
			res, err := f.Wait(ctx)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return results, ctxErr
			}
			if err == nil {
				results = append(results, res)
			}
		}
		seen += len(batch)
	}
}
