// Package config loads the balancer configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"snaplb/selector"
	"snaplb/topology"
)

// Config is the full balancer configuration.
type Config struct {
	Strategy   string            `yaml:"strategy"`
	Etcd       EtcdConfig        `yaml:"etcd"`
	Priorities []PriorityWeights `yaml:"priorities"`
}

// EtcdConfig points at the topology store.
type EtcdConfig struct {
	Endpoints []string `yaml:"endpoints"`
	Service   string   `yaml:"service"`
	LeaseTTL  int64    `yaml:"lease_ttl"`
}

// PriorityWeights is one priority level's traffic shares.
type PriorityWeights struct {
	Healthy  uint32 `yaml:"healthy"`
	Degraded uint32 `yaml:"degraded"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Strategy: selector.RingStrategy,
		Etcd:     EtcdConfig{LeaseTTL: 10},
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the structural invariants the balancer relies on.
func (c *Config) Validate() error {
	if _, err := selector.NewFactory(c.Strategy); err != nil {
		return err
	}
	if len(c.Priorities) == 0 {
		return fmt.Errorf("at least one priority level is required")
	}

	healthySum, degradedSum := uint32(0), uint32(0)
	for _, p := range c.Priorities {
		healthySum += p.Healthy
		degradedSum += p.Degraded
	}
	if healthySum > 100 {
		return fmt.Errorf("healthy weights sum to %d, must be <= 100", healthySum)
	}
	if degradedSum > 100 {
		return fmt.Errorf("degraded weights sum to %d, must be <= 100", degradedSum)
	}
	return nil
}

// Loads converts the configured weights into the topology load table.
func (c *Config) Loads() topology.PriorityLoads {
	loads := topology.PriorityLoads{
		Healthy:  make([]uint32, len(c.Priorities)),
		Degraded: make([]uint32, len(c.Priorities)),
	}
	for i, p := range c.Priorities {
		loads.Healthy[i] = p.Healthy
		loads.Degraded[i] = p.Degraded
	}
	return loads
}
