// etcd-backed topology source.
//
// etcd acts as the distributed membership store for backend hosts:
//
//	Key:   /snaplb/{service}/{addr}
//	Value: JSON-encoded Host
//
// Registration uses TTL-based leases: if a host crashes, the lease expires
// and the entry disappears on its own, so dead hosts never linger in the
// topology. The Watch loop turns etcd change events into full PrioritySet
// replacements, which is what drives routing-snapshot rebuilds downstream.
package topology

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	clientv3 "go.etcd.io/etcd/client/v3"
	"golang.org/x/time/rate"
)

const keyPrefix = "/snaplb/"

// DefaultPanicThreshold is the healthy-host ratio below which a priority
// level is flagged as panicked.
const DefaultPanicThreshold = 0.5

// EtcdTopology discovers hosts from etcd and applies them to a PrioritySet.
type EtcdTopology struct {
	client *clientv3.Client

	// Collapses etcd watch storms: a burst of registration events causes at
	// most one re-discover per limiter token, since every sync reads the
	// full key range anyway.
	limiter *rate.Limiter

	// PanicThreshold is the healthy ratio under which a level panics.
	PanicThreshold float64
}

// NewEtcdTopology connects to the given etcd endpoints.
func NewEtcdTopology(endpoints []string) (*EtcdTopology, error) {
	c, err := clientv3.New(clientv3.Config{
		Endpoints: endpoints,
	})
	if err != nil {
		return nil, err
	}
	return &EtcdTopology{
		client:         c,
		limiter:        rate.NewLimiter(rate.Limit(10), 1),
		PanicThreshold: DefaultPanicThreshold,
	}, nil
}

// Register adds a host to the topology with a TTL lease.
//
// Flow:
//  1. Create a lease with the given TTL (e.g., 10 seconds)
//  2. Put the key-value pair with the lease attached
//  3. Start KeepAlive to automatically renew the lease
func (t *EtcdTopology) Register(ctx context.Context, service string, host Host, ttl int64) error {
	lease, err := t.client.Grant(ctx, ttl)
	if err != nil {
		return err
	}

	val, err := json.Marshal(host)
	if err != nil {
		return err
	}

	_, err = t.client.Put(ctx, keyPrefix+service+"/"+host.Addr, string(val), clientv3.WithLease(lease.ID))
	if err != nil {
		return err
	}

	ch, err := t.client.KeepAlive(ctx, lease.ID)
	if err != nil {
		return err
	}

	// Consume KeepAlive responses to prevent the channel from filling up
	go func() {
		for range ch {
		}
	}()
	return nil
}

// Deregister removes a host from the topology.
func (t *EtcdTopology) Deregister(ctx context.Context, service string, addr string) error {
	_, err := t.client.Delete(ctx, keyPrefix+service+"/"+addr)
	return err
}

// Discover returns all currently registered hosts for a service.
func (t *EtcdTopology) Discover(ctx context.Context, service string) ([]Host, error) {
	resp, err := t.client.Get(ctx, keyPrefix+service+"/", clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}

	hosts := make([]Host, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var h Host
		if err := json.Unmarshal(kv.Value, &h); err != nil {
			continue // Skip malformed entries
		}
		hosts = append(hosts, h)
	}
	return hosts, nil
}

// Sync discovers the current host list and applies it to the PrioritySet,
// grouping hosts by priority and recomputing each level's panic flag.
// Hosts with a priority outside the set's range are dropped with a warning.
func (t *EtcdTopology) Sync(ctx context.Context, service string, ps *PrioritySet) error {
	hosts, err := t.Discover(ctx, service)
	if err != nil {
		return fmt.Errorf("discover %s: %w", service, err)
	}

	n := ps.Len()
	byPriority := make([][]Host, n)
	for _, h := range hosts {
		if h.Priority < 0 || h.Priority >= n {
			logrus.Warnf("host %s has priority %d outside [0,%d), dropping", h.Addr, h.Priority, n)
			continue
		}
		byPriority[h.Priority] = append(byPriority[h.Priority], h)
	}

	for priority, group := range byPriority {
		if err := ps.Update(priority, group, t.panicked(group)); err != nil {
			return err
		}
	}
	return nil
}

// panicked reports whether a level has too few healthy hosts. An empty
// level is panicked by definition.
func (t *EtcdTopology) panicked(hosts []Host) bool {
	if len(hosts) == 0 {
		return true
	}
	healthy := 0
	for _, h := range hosts {
		if h.Healthy {
			healthy++
		}
	}
	return float64(healthy) < t.PanicThreshold*float64(len(hosts))
}

// Watch follows the service prefix in etcd and re-syncs the PrioritySet on
// every change, until ctx is cancelled. Uses etcd's Watch API (server-push),
// which is more efficient than polling; on any event the full host list is
// re-fetched rather than parsing individual events.
func (t *EtcdTopology) Watch(ctx context.Context, service string, ps *PrioritySet) {
	watchChan := t.client.Watch(ctx, keyPrefix+service+"/", clientv3.WithPrefix())
	for range watchChan {
		if err := t.limiter.Wait(ctx); err != nil {
			return
		}
		if err := t.Sync(ctx, service, ps); err != nil {
			logrus.WithError(err).Warnf("topology sync for %s failed", service)
		}
	}
}

// Close releases the etcd client.
func (t *EtcdTopology) Close() error {
	return t.client.Close()
}
