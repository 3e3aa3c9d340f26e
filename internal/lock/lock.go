// Package lock implements the per-instrument matching mutex as a Redis
// single-instance lease, the Go analogue of arq's redis.lock(key, timeout=5)
// used by the original orders service around each execute_orders pass.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotHeld is returned by Release when the lease has already expired or
// was never acquired by this token.
var ErrNotHeld = errors.New("lock: not held")

const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// Manager hands out instrument-scoped leases backed by a Redis key.
type Manager struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewManager(rdb *redis.Client) *Manager {
	return &Manager{rdb: rdb, ttl: 5 * time.Second}
}

// Lease is a held lock; call Release when the matching pass is done.
type Lease struct {
	key   string
	token string
	mgr   *Manager
}

// AcquireOrders blocks, retrying with a doubling backoff (20ms, then 40ms,
// 80ms, 160ms, 320ms, and 320ms from then on), until it holds
// "lock:orders:<ticker>" or the context is cancelled. The lease is 5s,
// shorter than the RPC caller's 10s deadline so a crashed holder never
// wedges the instrument for longer than one lease.
func (m *Manager) AcquireOrders(ctx context.Context, ticker string) (*Lease, error) {
	return m.acquire(ctx, fmt.Sprintf("lock:orders:%s", ticker))
}

func (m *Manager) acquire(ctx context.Context, key string) (*Lease, error) {
	token := uuid.NewString()
	backoff := 20 * time.Millisecond
	for {
		ok, err := m.rdb.SetNX(ctx, key, token, m.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("lock: acquire %s: %w", key, err)
		}
		if ok {
			return &Lease{key: key, token: token, mgr: m}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 200*time.Millisecond {
			backoff *= 2
		}
	}
}

// Release drops the lease, but only if it is still this holder's — a stale
// caller whose lease already expired and was re-acquired by someone else
// must not delete the new holder's key.
func (l *Lease) Release(ctx context.Context) error {
	res, err := l.mgr.rdb.Eval(ctx, releaseScript, []string{l.key}, l.token).Result()
	if err != nil {
		return fmt.Errorf("lock: release %s: %w", l.key, err)
	}
	if n, _ := res.(int64); n == 0 {
		return ErrNotHeld
	}
	return nil
}
