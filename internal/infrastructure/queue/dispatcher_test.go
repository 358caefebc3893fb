package queue

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRemover struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (r *recordingRemover) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, key)
	return r.err
}

func (r *recordingRemover) keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.deleted...)
}

func TestDispatcher_DeletesInBackground(t *testing.T) {
	remover := &recordingRemover{}
	d := NewDispatcher(2, remover, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	for _, k := range []string{"pins/a/1.jpg", "pins/a/2.jpg", "pins/b/3.png"} {
		require.NoError(t, d.Delete(context.Background(), k))
	}

	assert.Eventually(t, func() bool { return len(remover.keys()) == 3 }, time.Second, 5*time.Millisecond)
	cancel()
	d.Wait()
	assert.ElementsMatch(t, []string{"pins/a/1.jpg", "pins/a/2.jpg", "pins/b/3.png"}, remover.keys())
}

func TestDispatcher_FailuresAreNotReturned(t *testing.T) {
	remover := &recordingRemover{err: errors.New("gone")}
	d := NewDispatcher(1, remover, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	assert.NoError(t, d.Delete(context.Background(), "pins/a/1.jpg"))
	assert.Eventually(t, func() bool { return len(remover.keys()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	d.Wait()
}

func TestDispatcher_DrainsOnShutdown(t *testing.T) {
	remover := &recordingRemover{}
	d := NewDispatcher(1, remover, zerolog.Nop())
	for i := 0; i < 10; i++ {
		require.NoError(t, d.Delete(context.Background(), "k"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()
	assert.Len(t, remover.keys(), 10)
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingRemover{}, zerolog.Nop())
	first := d.shardIndex("avatars/u/1.png")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.shardIndex("avatars/u/1.png"))
	}
	assert.True(t, first >= 0 && first < 8)
}

type stubStore struct {
	recordingRemover
	saved []string
}

func (s *stubStore) Save(_ context.Context, key string, _ io.Reader, _ string) error {
	s.saved = append(s.saved, key)
	return nil
}

func (s *stubStore) Exists(context.Context, string) (bool, error) { return true, nil }

func (s *stubStore) URL(key string) string { return "/uploads/" + key }

func TestAsyncStore_QueuesDeletes(t *testing.T) {
	store := &stubStore{}
	d := NewDispatcher(1, store, zerolog.Nop())
	async := AsyncStore(store, d)

	require.NoError(t, async.Save(context.Background(), "pins/a/1.jpg", strings.NewReader("x"), "image/jpeg"))
	assert.Equal(t, []string{"pins/a/1.jpg"}, store.saved)
	assert.Equal(t, "/uploads/pins/a/1.jpg", async.URL("pins/a/1.jpg"))

	require.NoError(t, async.Delete(context.Background(), "pins/a/1.jpg"))
	assert.Empty(t, store.keys())

	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)
	assert.Eventually(t, func() bool { return len(store.keys()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	d.Wait()
}
