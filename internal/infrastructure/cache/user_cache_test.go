package cache

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
	"github.com/hyceate/moody-sub000/internal/infrastructure/db/memory"
)

type countingRepo struct {
	ports.UserRepository
	finds int
}

func (r *countingRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	r.finds++
	return r.UserRepository.FindByID(ctx, id)
}

func setup(t *testing.T) (*UserCache, *countingRepo, *domain.User) {
	t.Helper()
	repo := &countingRepo{UserRepository: memory.NewStore().Users()}
	u, err := repo.Create(context.Background(), &domain.User{Username: "alice", Email: "a@example.com", Role: domain.RoleUser})
	require.NoError(t, err)
	return NewUserCache(repo, 8, time.Minute, zerolog.Nop()), repo, u
}

func TestUserCache_HitsAfterFirstRead(t *testing.T) {
	c, repo, u := setup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := c.FindByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
	}
	assert.Equal(t, 1, repo.finds)
	assert.Equal(t, 1, c.Len())
}

func TestUserCache_ReturnsCopies(t *testing.T) {
	c, _, u := setup(t)
	ctx := context.Background()

	got, err := c.FindByID(ctx, u.ID)
	require.NoError(t, err)
	got.Username = "mallory"

	again, err := c.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Username)
}

func TestUserCache_InvalidatesOnWrite(t *testing.T) {
	c, repo, u := setup(t)
	ctx := context.Background()

	_, err := c.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, c.UpdateAvatar(ctx, u.ID, "avatars/x.png", time.Now()))

	got, err := c.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "avatars/x.png", got.Avatar)
	assert.Equal(t, 2, repo.finds)

	require.NoError(t, c.Delete(ctx, u.ID))
	_, err = c.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserCache_DoesNotCacheMisses(t *testing.T) {
	c, repo, _ := setup(t)
	ctx := context.Background()

	_, err := c.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = c.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 2, repo.finds)
}
