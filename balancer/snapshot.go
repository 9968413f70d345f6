package balancer

import (
	"sync"

	"snaplb/selector"
	"snaplb/topology"
)

// PerPriorityState is one priority level's routing state: the panic flag
// that was in force when the snapshot was built, and the selector built for
// the level. Never mutated after construction.
type PerPriorityState struct {
	Panic    bool
	Selector selector.HostSelector
}

// Snapshot is one complete generation of routing state: the load table and
// one PerPriorityState per level, all built from the same topology
// generation. A snapshot is immutable; replacing routing state means
// building a whole new snapshot and publishing it.
type Snapshot struct {
	Loads  topology.PriorityLoads
	States []*PerPriorityState
}

// Publisher holds the current snapshot behind a reader/writer lock. The
// reference swap is the only write, so readers either see the old complete
// snapshot or the new complete one, never a mix. All expensive work happens
// before Publish is called, which keeps both lock holds down to the time of
// a pointer copy.
type Publisher struct {
	mu      sync.RWMutex
	current *Snapshot
}

// NewPublisher creates a publisher with no snapshot yet.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish atomically replaces the current snapshot.
func (p *Publisher) Publish(s *Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = s
}

// Acquire returns the current snapshot, or nil before the first Publish.
// The caller may keep using the returned snapshot after it has been
// superseded; it stays valid until the last reference drops.
func (p *Publisher) Acquire() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}
