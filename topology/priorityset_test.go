package topology

import "testing"

var testHosts = []Host{
	{Addr: ":8001", Weight: 10, Priority: 0, Healthy: true},
	{Addr: ":8002", Weight: 5, Priority: 0, Healthy: false},
	{Addr: ":8003", Weight: 10, Priority: 0, Healthy: true},
}

func TestHealthyHosts(t *testing.T) {
	set := HostSet{Priority: 0, Hosts: testHosts}
	healthy := set.HealthyHosts()
	if len(healthy) != 2 {
		t.Fatalf("expect 2 healthy hosts, got %d", len(healthy))
	}
	for _, h := range healthy {
		if !h.Healthy {
			t.Fatalf("unhealthy host %s in healthy subset", h.Addr)
		}
	}
}

func TestPrioritySetDefaults(t *testing.T) {
	ps := NewPrioritySet(3)
	if ps.Len() != 3 {
		t.Fatalf("expect 3 levels, got %d", ps.Len())
	}

	// All traffic goes to priority 0 until a load table is set.
	loads := ps.Loads()
	if loads.Healthy[0] != 100 || loads.Healthy[1] != 0 || loads.Healthy[2] != 0 {
		t.Fatalf("unexpected default loads: %v", loads.Healthy)
	}
}

func TestPrioritySetUpdate(t *testing.T) {
	ps := NewPrioritySet(2)

	fired := 0
	ps.AddMemberUpdateCb(func() { fired++ })

	if err := ps.Update(1, testHosts, true); err != nil {
		t.Fatal(err)
	}
	if fired != 1 {
		t.Fatalf("expect 1 callback, got %d", fired)
	}

	sets := ps.HostSets()
	if len(sets[1].Hosts) != 3 || !sets[1].Panic {
		t.Fatalf("level 1 not updated: %+v", sets[1])
	}
	if len(sets[0].Hosts) != 0 {
		t.Fatal("level 0 should be untouched")
	}

	if err := ps.Update(2, testHosts, false); err == nil {
		t.Fatal("expect error for out-of-range priority")
	}
	if fired != 1 {
		t.Fatal("failed update must not fire callbacks")
	}
}

func TestPrioritySetLoadsCopied(t *testing.T) {
	ps := NewPrioritySet(2)
	in := PriorityLoads{Healthy: []uint32{30, 70}, Degraded: []uint32{0, 0}}
	ps.SetLoads(in)

	// Mutating either the input or an output copy must not leak into the set.
	in.Healthy[0] = 99
	out := ps.Loads()
	out.Healthy[1] = 99

	loads := ps.Loads()
	if loads.Healthy[0] != 30 || loads.Healthy[1] != 70 {
		t.Fatalf("loads not isolated: %v", loads.Healthy)
	}
}

func TestPrioritySetCallbackReadsConsistentState(t *testing.T) {
	ps := NewPrioritySet(1)

	var seen int
	ps.AddMemberUpdateCb(func() {
		// Callbacks run after the write lock is released and may read back.
		seen = len(ps.HostSets()[0].Hosts)
	})

	if err := ps.Update(0, testHosts, false); err != nil {
		t.Fatal(err)
	}
	if seen != 3 {
		t.Fatalf("callback saw %d hosts, want 3", seen)
	}
}
