package selector

import (
	"fmt"

	"snaplb/topology"
)

// WeightedFactory builds selectors honoring per-host weights: a host with
// weight 10 receives twice the traffic of a host with weight 5. The hash is
// mapped onto the cumulative weight range, so selection stays deterministic
// for a fixed hash.
type WeightedFactory struct{}

// Build precomputes the cumulative weight table. Fails if hosts are present
// but carry no positive weight — that is a configuration error, and a build
// failure aborts the whole snapshot rebuild rather than publishing a level
// that can never select.
func (f *WeightedFactory) Build(set topology.HostSet, panicMode bool) (HostSelector, error) {
	hosts := eligibleHosts(set, panicMode)

	total := uint64(0)
	cum := make([]uint64, len(hosts))
	for i, h := range hosts {
		if h.Weight > 0 {
			total += uint64(h.Weight)
		}
		cum[i] = total
	}
	if len(hosts) > 0 && total == 0 {
		return nil, fmt.Errorf("priority %d: no host has a positive weight", set.Priority)
	}

	return &weightedSelector{hosts: hosts, cum: cum, total: total}, nil
}

func (f *WeightedFactory) Name() string {
	return WeightedStrategy
}

type weightedSelector struct {
	hosts []topology.Host
	cum   []uint64 // cum[i] = sum of weights of hosts[0..i]
	total uint64
}

// Select maps the hash to a point in [0, totalWeight) and walks the
// cumulative table to the first host covering it.
func (s *weightedSelector) Select(hash uint64) *topology.Host {
	if s.total == 0 {
		return nil
	}
	point := hash % s.total
	for i, c := range s.cum {
		if point < c {
			return &s.hosts[i]
		}
	}
	return nil
}
