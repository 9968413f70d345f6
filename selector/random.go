package selector

import "snaplb/topology"

// RandomFactory builds selectors that spread hashes uniformly across hosts.
// Callers that have no natural hash key feed a random value, which makes
// this effectively a random balancer; callers with a hash key get a stable
// (but affinity-free) mapping.
//
// Best for: stateless services where all hosts have similar capacity.
type RandomFactory struct{}

func (f *RandomFactory) Build(set topology.HostSet, panicMode bool) (HostSelector, error) {
	return &uniformSelector{hosts: eligibleHosts(set, panicMode)}, nil
}

func (f *RandomFactory) Name() string {
	return RandomStrategy
}

type uniformSelector struct {
	hosts []topology.Host
}

func (s *uniformSelector) Select(hash uint64) *topology.Host {
	if len(s.hosts) == 0 {
		return nil
	}
	return &s.hosts[hash%uint64(len(s.hosts))]
}
