package geocache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

const valkeyOpTimeout = 5 * time.Second

// ValkeyPersistence snapshots the cache into a single Valkey key. It gives
// the in-memory cache durability across restarts and lets several replicas
// warm up from the same snapshot; the in-process map stays the source of
// truth between flushes.
type ValkeyPersistence[V any] struct {
	client valkey.Client
	key    string
}

// NewValkeyPersistence connects to a Valkey (or Redis-compatible) server.
// key namespaces the snapshot, e.g. "rota:cache:coordinates".
func NewValkeyPersistence[V any](addr, key string) (*ValkeyPersistence[V], error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}

	return &ValkeyPersistence[V]{client: client, key: key}, nil
}

func (p *ValkeyPersistence[V]) Load() (map[string]Entry[V], error) {
	ctx, cancel := context.WithTimeout(context.Background(), valkeyOpTimeout)
	defer cancel()

	cmd := p.client.Do(ctx, p.client.B().Get().Key(p.key).Build())
	if err := cmd.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("valkey get %q: %w", p.key, err)
	}

	data, err := cmd.AsBytes()
	if err != nil {
		return nil, fmt.Errorf("valkey read %q: %w", p.key, err)
	}

	var entries map[string]Entry[V]
	if err = json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode cache snapshot %q: %w", p.key, err)
	}

	return entries, nil
}

func (p *ValkeyPersistence[V]) Save(entries map[string]Entry[V]) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode cache snapshot %q: %w", p.key, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), valkeyOpTimeout)
	defer cancel()

	cmd := p.client.Do(ctx, p.client.B().Set().Key(p.key).Value(string(data)).Build())
	if err := cmd.Error(); err != nil {
		return fmt.Errorf("valkey set %q: %w", p.key, err)
	}

	return nil
}

// Close releases the underlying client.
func (p *ValkeyPersistence[V]) Close() {
	p.client.Close()
}
