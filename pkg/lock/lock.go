// Package lock provides an optional Redis-backed per-device run lock,
// preventing two automation runs from pushing to the same device at
// once. Locking is disabled when no registry address is configured.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/netauto-dev/netauto/pkg/util"
)

// acquireScript atomically acquires a device lock.
// Returns 1 on success, 0 if already locked by another holder.
var acquireScript = redis.NewScript(`
local key = KEYS[1]
if redis.call("EXISTS", key) == 1 then
	return 0
end
redis.call("HSET", key, "holder", ARGV[1], "acquired", ARGV[2], "ttl", ARGV[3])
redis.call("EXPIRE", key, tonumber(ARGV[3]))
return 1
`)

// releaseScript atomically releases a device lock with holder
// verification. Returns 1 on success, 0 on holder mismatch, -1 if the
// lock does not exist.
var releaseScript = redis.NewScript(`
local key = KEYS[1]
if redis.call("EXISTS", key) == 0 then
	return -1
end
local current = redis.call("HGET", key, "holder")
if current ~= ARGV[1] then
	return 0
end
redis.call("DEL", key)
return 1
`)

// Registry is a device lock registry backed by one Redis instance.
type Registry struct {
	client *redis.Client
}

// NewRegistry connects to the lock registry at addr.
func NewRegistry(addr string) (*Registry, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to lock registry at %s: %w", addr, err)
	}
	return &Registry{client: client}, nil
}

// Close releases the registry connection.
func (r *Registry) Close() error {
	return r.client.Close()
}

func lockKey(device string) string {
	return "NETAUTO_LOCK|" + device
}

// Acquire takes the lock for device on behalf of holder, expiring
// after ttl. Returns util.ErrDeviceLocked if another holder has it.
func (r *Registry) Acquire(ctx context.Context, device, holder string, ttl time.Duration) error {
	now := time.Now().UTC().Format(time.RFC3339)
	seconds := int(ttl.Seconds())
	if seconds < 1 {
		seconds = 1
	}

	result, err := acquireScript.Run(ctx, r.client, []string{lockKey(device)},
		holder, now, fmt.Sprintf("%d", seconds)).Int()
	if err != nil {
		return fmt.Errorf("acquiring lock for %s: %w", device, err)
	}
	if result == 0 {
		return util.ErrDeviceLocked
	}
	return nil
}

// Release drops the lock for device. Releasing an expired or absent
// lock is a success; a holder mismatch is an error.
func (r *Registry) Release(ctx context.Context, device, holder string) error {
	result, err := releaseScript.Run(ctx, r.client, []string{lockKey(device)}, holder).Int()
	if err != nil {
		return fmt.Errorf("releasing lock for %s: %w", device, err)
	}
	if result == 0 {
		return fmt.Errorf("lock holder mismatch for %s", device)
	}
	return nil
}

// Holder returns the current lock holder and acquisition time for
// device. Returns ("", zero, nil) if no lock is held.
func (r *Registry) Holder(ctx context.Context, device string) (string, time.Time, error) {
	vals, err := r.client.HGetAll(ctx, lockKey(device)).Result()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("reading lock for %s: %w", device, err)
	}
	if len(vals) == 0 {
		return "", time.Time{}, nil
	}

	acquired := time.Time{}
	if ts, ok := vals["acquired"]; ok {
		acquired, _ = time.Parse(time.RFC3339, ts)
	}
	return vals["holder"], acquired, nil
}
