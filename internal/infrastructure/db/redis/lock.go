package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hyceate/moody-sub000/internal/core/domain"
)

const (
	defaultLockTTL = 5 * time.Second
	lockRetry      = 25 * time.Millisecond
)

// releaseScript deletes the lock only while it still carries our token, so an
// expired lock taken over by another holder is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker implements ports.Locker with SET NX PX. The TTL bounds how long a
// crashed holder can block a key.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewLocker(client *redis.Client, ttl time.Duration, log zerolog.Logger) *Locker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Locker{client: client, ttl: ttl, log: log}
}

// Lock retries until the key is acquired, ctx is done, or one TTL has passed.
// Giving up is reported as domain.ErrBusy.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	waitCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	ticker := time.NewTicker(lockRetry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(waitCtx, key, token, l.ttl).Result()
		if err != nil && waitCtx.Err() == nil {
			return nil, domain.WrapStore("acquire lock", err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}
		select {
		case <-waitCtx.Done():
			return nil, fmt.Errorf("%w: lock %s", domain.ErrBusy, key)
		case <-ticker.C:
		}
	}
}

func (l *Locker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("failed to release lock")
	}
}
