package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bluele/gcache"
	"github.com/rs/zerolog"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
)

// UserCache keeps recently resolved users in a local LRU in front of a
// UserRepository. Entries are keyed by id and dropped on every write.
type UserCache struct {
	ports.UserRepository
	lru gcache.Cache
	log zerolog.Logger
}

var _ ports.UserRepository = (*UserCache)(nil)

func NewUserCache(next ports.UserRepository, size int, ttl time.Duration, log zerolog.Logger) *UserCache {
	if size <= 0 {
		size = 1024
	}
	b := gcache.New(size).LRU()
	if ttl > 0 {
		b = b.Expiration(ttl)
	}
	return &UserCache{UserRepository: next, lru: b.Build(), log: log}
}

func key(id string) string { return strings.ToLower(strings.TrimSpace(id)) }

func (c *UserCache) FindByID(ctx context.Context, id string) (*domain.User, error) {
	v, err := c.lru.Get(key(id))
	if err == nil {
		u := *v.(*domain.User)
		return &u, nil
	}
	if !errors.Is(err, gcache.KeyNotFoundError) {
		c.log.Warn().Err(err).Str("user_id", id).Msg("user cache read failed")
	}

	u, err := c.UserRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.put(u)
	return u, nil
}

func (c *UserCache) UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error {
	defer c.invalidate(id)
	return c.UserRepository.UpdatePassword(ctx, id, passwordHash, at)
}

func (c *UserCache) UpdateAvatar(ctx context.Context, id, avatar string, at time.Time) error {
	defer c.invalidate(id)
	return c.UserRepository.UpdateAvatar(ctx, id, avatar, at)
}

func (c *UserCache) Delete(ctx context.Context, id string) error {
	defer c.invalidate(id)
	return c.UserRepository.Delete(ctx, id)
}

// Len reports the number of live entries.
func (c *UserCache) Len() int { return c.lru.Len(true) }

func (c *UserCache) put(u *domain.User) {
	cp := *u
	if err := c.lru.Set(key(u.ID), &cp); err != nil {
		c.log.Warn().Err(err).Str("user_id", u.ID).Msg("user cache write failed")
	}
}

func (c *UserCache) invalidate(id string) {
	c.lru.Remove(key(id))
}
