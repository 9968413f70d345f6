// Package balancer implements a thread-aware load balancer: an infrequent
// control path rebuilds the full routing state whenever the host topology
// changes, and per-worker selectors answer host-selection queries against an
// immutable snapshot of that state with no locking.
//
// The split matters because selection runs on every request across every
// worker goroutine, while rebuilds happen only on membership or health
// changes. All expensive work (filtering hosts, building hash rings) is done
// once on the control path; the hot path is a table scan and a delegated
// Select.
package balancer

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"snaplb/selector"
	"snaplb/stats"
	"snaplb/topology"
)

// Context optionally supplies a hash key for one selection, e.g. derived
// from a request header for session affinity. ComputeHashKey may be
// expensive; it is called at most once per selection.
type Context interface {
	ComputeHashKey() (uint64, bool)
}

// ThreadAwareBalancer owns the rebuild path. It subscribes to a
// PrioritySet, rebuilds a Snapshot on every topology change, and hands out
// ThreadSelectors to workers.
type ThreadAwareBalancer struct {
	priSet  *topology.PrioritySet
	factory selector.Factory
	pub     *Publisher
	stats   *stats.Balancer
}

// New creates a balancer over the given topology and strategy. st may be
// nil, in which case a private counter set is used.
func New(priSet *topology.PrioritySet, factory selector.Factory, st *stats.Balancer) *ThreadAwareBalancer {
	if st == nil {
		st = stats.New()
	}
	return &ThreadAwareBalancer{
		priSet:  priSet,
		factory: factory,
		pub:     NewPublisher(),
		stats:   st,
	}
}

// Initialize subscribes to topology updates and performs the first rebuild.
// The first rebuild's error is returned; rebuild errors on later updates
// are logged and leave the previous snapshot authoritative.
func (b *ThreadAwareBalancer) Initialize() error {
	b.priSet.AddMemberUpdateCb(func() {
		if err := b.rebuild(); err != nil {
			logrus.WithError(err).Error("routing snapshot rebuild failed, keeping previous snapshot")
		}
	})

	return b.rebuild()
}

// rebuild constructs a complete new snapshot from the current topology and
// publishes it. Runs synchronously on the calling goroutine; the only lock
// taken is the publisher's write lock, held for a pointer swap. An error
// from any level's selector build aborts the whole rebuild — partial
// snapshots are never published.
func (b *ThreadAwareBalancer) rebuild() error {
	sets := b.priSet.HostSets()
	loads := b.priSet.Loads()

	states := make([]*PerPriorityState, len(sets))
	for i, set := range sets {
		sel, err := b.factory.Build(set, set.Panic)
		if err != nil {
			return fmt.Errorf("build %s selector for priority %d: %w", b.factory.Name(), i, err)
		}
		states[i] = &PerPriorityState{Panic: set.Panic, Selector: sel}
	}

	b.pub.Publish(&Snapshot{Loads: loads, States: states})
	logrus.Debugf("published routing snapshot: %d priority levels", len(states))
	return nil
}

// NewSelector captures the current snapshot for one worker's use. Safe to
// call before Initialize: the resulting selector answers "no host" until a
// snapshot exists and a new selector is created.
func (b *ThreadAwareBalancer) NewSelector() *ThreadSelector {
	return &ThreadSelector{
		snap:  b.pub.Acquire(),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		stats: b.stats,
	}
}

// ThreadSelector answers host-selection queries against one captured
// snapshot. It takes no locks and sees no updates: workers are expected to
// create a fresh selector per request-processing cycle, picking up whatever
// snapshot is current at that point.
type ThreadSelector struct {
	snap  *Snapshot
	rng   *rand.Rand
	stats *stats.Balancer
}

// ChooseHost selects a host for one request. Returns nil when no host is
// available: before the first snapshot, for an empty priority level, or for
// an empty topology. Given a context hash, the result is a pure function of
// (snapshot, hash).
func (s *ThreadSelector) ChooseHost(ctx Context) *topology.Host {
	if s.snap == nil || len(s.snap.States) == 0 {
		return nil
	}

	// Without a context hash fall back to a random value — selection then
	// behaves like a random balancer instead of failing.
	hash := uint64(0)
	ok := false
	if ctx != nil {
		hash, ok = ctx.ComputeHashKey()
	}
	if !ok {
		hash = s.rng.Uint64()
	}

	priority, _ := ChoosePriority(hash, s.snap.Loads)
	if priority < 0 || priority >= len(s.snap.States) {
		priority = len(s.snap.States) - 1
	}

	state := s.snap.States[priority]
	if state.Panic {
		s.stats.IncPanic()
	}
	return state.Selector.Select(hash)
}
