package balancer

import "snaplb/topology"

// ChoosePriority maps a hash to a priority level according to the load
// table. The hash modulo 100 is a point in [0,100); the healthy weights are
// scanned first, accumulating, and the first level whose cumulative weight
// exceeds the point wins. If the healthy weights do not cover the point the
// scan continues through the degraded weights, stacked on top of the
// healthy total. If the combined weights still fall short of 100 (possible
// under panic), the last priority takes the remainder rather than failing.
//
// The returned bool reports whether the level was chosen via the degraded
// pass. The scan is deterministic for a fixed hash and table, which the
// hashing-based strategies rely on.
func ChoosePriority(hash uint64, loads topology.PriorityLoads) (int, bool) {
	point := uint32(hash % 100)

	aggregate := uint32(0)
	for i, w := range loads.Healthy {
		aggregate += w
		if point < aggregate {
			return i, false
		}
	}
	for i, w := range loads.Degraded {
		aggregate += w
		if point < aggregate {
			return i, true
		}
	}
	return len(loads.Healthy) - 1, true
}
