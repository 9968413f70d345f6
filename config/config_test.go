package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snaplb/topology"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snaplb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
strategy: weighted
etcd:
  endpoints: ["localhost:2379"]
  service: web
  lease_ttl: 15
priorities:
  - healthy: 30
    degraded: 0
  - healthy: 70
    degraded: 0
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "weighted", cfg.Strategy)
	assert.Equal(t, "web", cfg.Etcd.Service)
	assert.Equal(t, int64(15), cfg.Etcd.LeaseTTL)
	assert.Equal(t, topology.PriorityLoads{
		Healthy:  []uint32{30, 70},
		Degraded: []uint32{0, 0},
	}, cfg.Loads())
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
etcd:
  endpoints: ["localhost:2379"]
  service: web
priorities:
  - healthy: 100
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ring", cfg.Strategy)
	assert.Equal(t, int64(10), cfg.Etcd.LeaseTTL)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"unknown strategy", Config{
			Strategy:   "least-loaded",
			Priorities: []PriorityWeights{{Healthy: 100}},
		}},
		{"no priorities", Config{
			Strategy: "ring",
		}},
		{"healthy overflow", Config{
			Strategy:   "ring",
			Priorities: []PriorityWeights{{Healthy: 60}, {Healthy: 60}},
		}},
		{"degraded overflow", Config{
			Strategy:   "ring",
			Priorities: []PriorityWeights{{Degraded: 101}},
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Error(t, c.cfg.Validate())
		})
	}

	ok := Config{
		Strategy:   "random",
		Priorities: []PriorityWeights{{Healthy: 40, Degraded: 60}},
	}
	assert.NoError(t, ok.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
