// Package stats holds the counters the balancer emits on the selection
// path. Counters are plain atomics so the hot path never locks.
package stats

import "sync/atomic"

// Balancer counts notable selection events.
type Balancer struct {
	panicSelections atomic.Uint64
}

// New creates an empty counter set.
func New() *Balancer {
	return &Balancer{}
}

// IncPanic records one selection that resolved to a panicked priority level.
func (b *Balancer) IncPanic() {
	b.panicSelections.Add(1)
}

// PanicCount returns the number of panic-mode selections so far.
func (b *Balancer) PanicCount() uint64 {
	return b.panicSelections.Load()
}
