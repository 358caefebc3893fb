package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/hyceate/moody-sub000/internal/core/domain"
)

// Locker is an in-process ports.Locker with one slot per key.
type Locker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocker() *Locker {
	return &Locker{slots: make(map[string]chan struct{})}
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", domain.ErrBusy, ctx.Err())
	}
	var once sync.Once
	return func() { once.Do(func() { <-slot }) }, nil
}
