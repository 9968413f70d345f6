package topology

// Host is one backend endpoint. Hosts are grouped into priority levels:
// lower-numbered levels receive traffic first while they have enough
// healthy capacity.
type Host struct {
	Addr     string `json:"addr"`
	Weight   int    `json:"weight"`
	Priority int    `json:"priority"`
	Healthy  bool   `json:"healthy"`
}

// HostSet is the membership of a single priority level, frozen at the moment
// it is read out of a PrioritySet. Panic is computed by the topology source
// (too few healthy hosts remain); selection strategies use it to decide
// whether to build over all hosts or only the healthy subset.
type HostSet struct {
	Priority int
	Hosts    []Host
	Panic    bool
}

// HealthyHosts returns the healthy subset of the level.
func (s HostSet) HealthyHosts() []Host {
	healthy := make([]Host, 0, len(s.Hosts))
	for _, h := range s.Hosts {
		if h.Healthy {
			healthy = append(healthy, h)
		}
	}
	return healthy
}

// PriorityLoads is the traffic-weight table across priority levels.
// Healthy and Degraded are indexed by priority, have equal length, and each
// sums to at most 100. A level's healthy weight is the share of traffic it
// takes under normal conditions; degraded weights only come into play when
// the healthy weights no longer cover the full 0-100 range.
type PriorityLoads struct {
	Healthy  []uint32
	Degraded []uint32
}

// Copy returns an independent copy, so a routing snapshot can freeze the
// table while the topology source keeps mutating its own.
func (l PriorityLoads) Copy() PriorityLoads {
	c := PriorityLoads{
		Healthy:  make([]uint32, len(l.Healthy)),
		Degraded: make([]uint32, len(l.Degraded)),
	}
	copy(c.Healthy, l.Healthy)
	copy(c.Degraded, l.Degraded)
	return c
}
