package ports

import (
	"context"
	"io"
)

// Transactor runs fn inside a store transaction when the store supports one.
// Implementations without transactions call fn directly.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker serialises multi-step mutations on a key across processes.
type Locker interface {
	// Lock blocks until the key is held or ctx is done. The returned func
	// releases the lock.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// ImageRemover deletes stored images by key.
type ImageRemover interface {
	Delete(ctx context.Context, key string) error
}

// ImageStore stores uploaded images.
type ImageStore interface {
	ImageRemover
	Save(ctx context.Context, key string, r io.Reader, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
	// URL returns the address clients fetch the image from.
	URL(key string) string
}
