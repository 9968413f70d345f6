// Package topology tracks which backend hosts exist, how healthy they are,
// and how traffic weight is spread across priority levels.
//
// A PrioritySet is the in-process view of the host topology. External
// sources (the etcd watcher, tests, or any other discovery mechanism) push
// full per-level replacements into it; consumers subscribe a callback and
// re-read the whole thing whenever it fires. Reads hand out copies, so a
// consumer can build derived state from one consistent generation without
// holding any lock.
package topology

import (
	"fmt"
	"sync"
)

// PrioritySet holds one HostSet per priority level plus the current traffic
// load table. The number of levels is fixed at construction.
type PrioritySet struct {
	mu    sync.RWMutex
	sets  []HostSet
	loads PriorityLoads

	cbMu sync.Mutex
	cbs  []func()
}

// NewPrioritySet creates a set with n empty priority levels. The initial
// load table sends all traffic to priority 0, so a balancer built before the
// first topology sync behaves sensibly.
func NewPrioritySet(n int) *PrioritySet {
	p := &PrioritySet{
		sets: make([]HostSet, n),
		loads: PriorityLoads{
			Healthy:  make([]uint32, n),
			Degraded: make([]uint32, n),
		},
	}
	for i := range p.sets {
		p.sets[i] = HostSet{Priority: i}
	}
	if n > 0 {
		p.loads.Healthy[0] = 100
	}
	return p
}

// Len returns the number of priority levels.
func (p *PrioritySet) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sets)
}

// Update replaces one priority level's membership and panic flag, then
// notifies subscribers. The hosts slice is owned by the PrioritySet after
// the call.
func (p *PrioritySet) Update(priority int, hosts []Host, panicMode bool) error {
	p.mu.Lock()
	if priority < 0 || priority >= len(p.sets) {
		p.mu.Unlock()
		return fmt.Errorf("priority %d out of range [0,%d)", priority, len(p.sets))
	}
	p.sets[priority] = HostSet{Priority: priority, Hosts: hosts, Panic: panicMode}
	p.mu.Unlock()

	p.notify()
	return nil
}

// SetLoads replaces the traffic load table and notifies subscribers.
func (p *PrioritySet) SetLoads(loads PriorityLoads) {
	p.mu.Lock()
	p.loads = loads.Copy()
	p.mu.Unlock()

	p.notify()
}

// HostSets returns a copy of all levels, one consistent generation.
// The per-level host slices are shared with the PrioritySet but are never
// mutated in place (Update swaps whole levels), so the copy is safe to read.
func (p *PrioritySet) HostSets() []HostSet {
	p.mu.RLock()
	defer p.mu.RUnlock()
	sets := make([]HostSet, len(p.sets))
	copy(sets, p.sets)
	return sets
}

// Loads returns a copy of the current load table.
func (p *PrioritySet) Loads() PriorityLoads {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loads.Copy()
}

// AddMemberUpdateCb subscribes a callback fired after every Update/SetLoads.
// Callbacks run synchronously on the updating goroutine and may read the
// PrioritySet freely.
func (p *PrioritySet) AddMemberUpdateCb(cb func()) {
	p.cbMu.Lock()
	defer p.cbMu.Unlock()
	p.cbs = append(p.cbs, cb)
}

func (p *PrioritySet) notify() {
	p.cbMu.Lock()
	cbs := make([]func(), len(p.cbs))
	copy(cbs, p.cbs)
	p.cbMu.Unlock()

	for _, cb := range cbs {
		cb()
	}
}
