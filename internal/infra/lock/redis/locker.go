package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"stayhost/internal/app/policies"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a lease lock shared by every replica. A lease expires after TTL so a
// crashed holder cannot block a room forever.
type Locker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	retry  time.Duration
	wait   time.Duration
}

type Option func(*Locker)

func WithPrefix(prefix string) Option { return func(l *Locker) { l.prefix = prefix } }

// WithWait bounds how long Lock polls before giving up with ErrLockNotAcquired.
func WithWait(wait time.Duration) Option { return func(l *Locker) { l.wait = wait } }

func WithRetry(retry time.Duration) Option { return func(l *Locker) { l.retry = retry } }

func New(client redis.UniversalClient, ttl time.Duration, opts ...Option) *Locker {
	l := &Locker{client: client, prefix: "stayhost:lock:", ttl: ttl, retry: 25 * time.Millisecond, wait: 5 * time.Second}
	if l.ttl <= 0 {
		l.ttl = 10 * time.Second
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	full := l.prefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.client.SetNX(ctx, full, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redislock: acquire %s: %w", key, err)
		}
		if ok {
			return l.releaser(full, token), nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", policies.ErrLockNotAcquired, key)
		}
		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Locker) releaser(key, token string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		// on failure the lease simply expires
		_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}
}

// Ping checks the connection for readiness probes.
func (l *Locker) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

var _ policies.Locker = (*Locker)(nil)
