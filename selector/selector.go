// Package selector provides the pluggable host-selection strategies that a
// routing snapshot is built from.
//
// Three strategies are implemented:
//   - Ring:     Stateful services requiring cache affinity (consistent hash)
//   - Random:   Stateless services, equal-capacity hosts
//   - Weighted: Heterogeneous hosts (different CPU/memory)
//
// Unlike a per-call picker, a strategy here is split into two phases: an
// expensive Build that runs once per topology change on the control path,
// and a cheap Select that runs on every request. A built HostSelector is
// immutable, so Select needs no locking.
package selector

import (
	"fmt"

	"snaplb/topology"
)

// HostSelector maps a hash value to a concrete host within one priority
// level. Implementations are immutable after Build.
type HostSelector interface {
	// Select returns the host for the given hash, or nil if the level has
	// no eligible hosts. Called on every request — must be goroutine-safe
	// and allocation-free.
	Select(hash uint64) *topology.Host
}

// Factory builds a HostSelector for one priority level. Called on the
// control path whenever the topology changes.
type Factory interface {
	// Build constructs a selector over the level's eligible hosts: all
	// hosts when panicMode is set, only the healthy subset otherwise.
	Build(set topology.HostSet, panicMode bool) (HostSelector, error)

	// Name returns the strategy name (for logging/config).
	Name() string
}

// Strategy names accepted by NewFactory.
const (
	RingStrategy     = "ring"
	RandomStrategy   = "random"
	WeightedStrategy = "weighted"
)

var factories = map[string]func() Factory{
	RingStrategy:     func() Factory { return NewRingFactory() },
	RandomStrategy:   func() Factory { return &RandomFactory{} },
	WeightedStrategy: func() Factory { return &WeightedFactory{} },
}

// NewFactory returns the factory for the named strategy.
func NewFactory(name string) (Factory, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown selector strategy: %q", name)
	}
	return f(), nil
}

// eligibleHosts returns the host list a strategy should build over.
// Under panic the health filter is bypassed and all hosts are used.
func eligibleHosts(set topology.HostSet, panicMode bool) []topology.Host {
	if panicMode {
		return set.Hosts
	}
	return set.HealthyHosts()
}
