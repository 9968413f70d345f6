package balancer

import (
	"testing"

	"snaplb/topology"
)

func TestChoosePriorityHealthy(t *testing.T) {
	loads := topology.PriorityLoads{
		Healthy:  []uint32{30, 70},
		Degraded: []uint32{0, 0},
	}

	// Points 0..29 land on priority 0, 30..99 on priority 1.
	cases := []struct {
		hash     uint64
		priority int
	}{
		{0, 0},
		{29, 0},
		{30, 1},
		{99, 1},
		{129, 0},  // 129 % 100 = 29
		{1030, 1}, // 1030 % 100 = 30
	}
	for _, c := range cases {
		priority, degraded := ChoosePriority(c.hash, loads)
		if priority != c.priority {
			t.Errorf("hash %d: priority = %d, want %d", c.hash, priority, c.priority)
		}
		if degraded {
			t.Errorf("hash %d: chosen via degraded pass, want healthy", c.hash)
		}
	}
}

func TestChoosePriorityDistribution(t *testing.T) {
	loads := topology.PriorityLoads{
		Healthy:  []uint32{30, 70},
		Degraded: []uint32{0, 0},
	}

	counts := [2]int{}
	for hash := uint64(0); hash < 100; hash++ {
		priority, _ := ChoosePriority(hash, loads)
		counts[priority]++
	}

	if counts[0] != 30 || counts[1] != 70 {
		t.Fatalf("split = %d/%d, want 30/70", counts[0], counts[1])
	}
}

func TestChoosePriorityDegradedPass(t *testing.T) {
	loads := topology.PriorityLoads{
		Healthy:  []uint32{0, 0},
		Degraded: []uint32{100, 0},
	}

	for hash := uint64(0); hash < 100; hash++ {
		priority, degraded := ChoosePriority(hash, loads)
		if priority != 0 {
			t.Fatalf("hash %d: priority = %d, want 0", hash, priority)
		}
		if !degraded {
			t.Fatalf("hash %d: expected degraded pass", hash)
		}
	}
}

func TestChoosePriorityDegradedStacksAboveHealthy(t *testing.T) {
	loads := topology.PriorityLoads{
		Healthy:  []uint32{60, 0},
		Degraded: []uint32{0, 40},
	}

	// [0,60) healthy priority 0, [60,100) degraded priority 1.
	if priority, degraded := ChoosePriority(59, loads); priority != 0 || degraded {
		t.Fatalf("hash 59: got (%d, %t), want (0, false)", priority, degraded)
	}
	if priority, degraded := ChoosePriority(60, loads); priority != 1 || !degraded {
		t.Fatalf("hash 60: got (%d, %t), want (1, true)", priority, degraded)
	}
}

func TestChoosePriorityShortfallFallsBackToLast(t *testing.T) {
	// Total weight only covers [0,40); the rest must resolve to the last
	// (here: only) priority instead of failing.
	loads := topology.PriorityLoads{
		Healthy:  []uint32{25},
		Degraded: []uint32{15},
	}

	for hash := uint64(40); hash < 100; hash++ {
		priority, _ := ChoosePriority(hash, loads)
		if priority != 0 {
			t.Fatalf("hash %d: priority = %d, want 0", hash, priority)
		}
	}
}
