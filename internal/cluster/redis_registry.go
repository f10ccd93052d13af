package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisClient abstracts the minimal go-redis surface RedisStore needs,
// mirroring the narrow-interface style of the pack's own Redis
// persistence layer: depend on behavior, not the concrete client type.
type RedisClient interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// RedisStore backs the cluster registry with a Redis hash when passed
// to NewRegistry; no extension option selects it. Unlike MemoryStore this
// survives an individual agent restart: rank-0's registry (the fleet's
// aggregation point) can be recovered by any replacement process that
// points at the same Redis key.
type RedisStore struct {
	client RedisClient
	key    string
}

// NewRedisStore returns a store backed by client, all nodes stored under
// one Redis hash key (field = rank, value = JSON-encoded Node).
func NewRedisStore(client RedisClient, key string) *RedisStore {
	if key == "" {
		key = "probing:cluster:nodes"
	}
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) Put(key int, node Node) Node {
	ctx := context.Background()
	field := strconv.Itoa(key)

	existing, ok := r.get(ctx, field)
	if ok && existing.TimestampUs > node.TimestampUs {
		return existing
	}

	data, err := json.Marshal(node)
	if err != nil {
		return existing // best-effort: keep whatever was already stored
	}
	_ = r.client.HSet(ctx, r.key, field, string(data)).Err()
	return node
}

func (r *RedisStore) get(ctx context.Context, field string) (Node, bool) {
	all, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return Node{}, false
	}
	raw, ok := all[field]
	if !ok {
		return Node{}, false
	}
	var n Node
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return Node{}, false
	}
	return n, true
}

func (r *RedisStore) List() []Node {
	ctx := context.Background()
	all, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil
	}
	out := make([]Node, 0, len(all))
	for _, raw := range all {
		var n Node
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// NewRedisRegistry is a convenience constructor mirroring the addr-string
// dial pattern used across the retrieved pack.
func NewRedisRegistry(addr, key string) (*Registry, error) {
	if addr == "" {
		return nil, fmt.Errorf("cluster: redis backend requires an address")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return NewRegistry(NewRedisStore(rdb, key)), nil
}
