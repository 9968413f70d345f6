package selector

import (
	"fmt"
	"hash/crc32"
	"sort"

	"snaplb/topology"
)

// RingFactory builds consistent-hash ring selectors. The same hash always
// maps to the same host (until the ring is rebuilt), providing cache
// affinity — useful for stateful services or local caches.
//
// Virtual nodes: each real host is mapped to N virtual nodes on the ring.
// Without virtual nodes, 3 hosts might cluster together on the ring,
// causing uneven load distribution. 100 virtual nodes per host ensures
// statistical uniformity.
type RingFactory struct {
	replicas int // Virtual nodes per real host
}

// NewRingFactory creates a factory producing rings with 100 virtual nodes
// per host.
func NewRingFactory() *RingFactory {
	return &RingFactory{replicas: 100}
}

// Build places every eligible host onto the ring with N virtual nodes.
// Each virtual node is hashed from "{addr}#{i}" to spread evenly across
// the ring.
func (f *RingFactory) Build(set topology.HostSet, panicMode bool) (HostSelector, error) {
	hosts := eligibleHosts(set, panicMode)
	s := &ringSelector{
		ring:  make([]uint32, 0, len(hosts)*f.replicas),
		nodes: make(map[uint32]*topology.Host, len(hosts)*f.replicas),
	}
	for i := range hosts {
		host := &hosts[i]
		for v := 0; v < f.replicas; v++ {
			key := fmt.Sprintf("%s#%d", host.Addr, v)
			hash := crc32.ChecksumIEEE([]byte(key))
			s.ring = append(s.ring, hash)
			s.nodes[hash] = host
		}
	}
	// Keep the ring sorted for binary search in Select()
	sort.Slice(s.ring, func(i, j int) bool {
		return s.ring[i] < s.ring[j]
	})
	return s, nil
}

func (f *RingFactory) Name() string {
	return RingStrategy
}

type ringSelector struct {
	ring  []uint32                  // Sorted hash values on the ring
	nodes map[uint32]*topology.Host // Hash value → host mapping
}

// Select finds the host responsible for the given hash. It binary-searches
// for the first node >= hash on the ring; if the hash is larger than all
// nodes, it wraps around to the first node (ring property).
func (s *ringSelector) Select(hash uint64) *topology.Host {
	if len(s.ring) == 0 {
		return nil
	}

	point := uint32(hash)
	idx := sort.Search(len(s.ring), func(i int) bool {
		return s.ring[i] >= point
	})

	// Wrap around: if the hash > all nodes, go to the first node
	if idx == len(s.ring) {
		idx = 0
	}

	return s.nodes[s.ring[idx]]
}
