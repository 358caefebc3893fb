package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local stores images on the local file system under Dir. Images are served
// by the HTTP layer from PublicURL.
type Local struct {
	Dir       string
	PublicURL string
}

func NewLocal(dir, publicURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Local{Dir: dir, PublicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (l *Local) path(key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	return filepath.Join(l.Dir, filepath.FromSlash(key)), nil
}

func (l *Local) Save(_ context.Context, key string, r io.Reader, _ string) error {
	ref, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(ref), 0o755); err != nil {
		return fmt.Errorf("allocate image storage: %w", err)
	}
	f, err := os.Create(ref)
	if err != nil {
		return fmt.Errorf("allocate image storage: %w", err)
	}
	defer f.Close()

	if _, err := bufio.NewReader(r).WriteTo(f); err != nil {
		_ = os.Remove(ref)
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}

func (l *Local) Exists(_ context.Context, key string) (bool, error) {
	ref, err := l.path(key)
	if err != nil {
		return false, nil
	}
	if _, err := os.Stat(ref); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat image: %w", err)
	}
	return true, nil
}

// Delete is idempotent.
func (l *Local) Delete(_ context.Context, key string) error {
	ref, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(ref); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

func (l *Local) URL(key string) string {
	if key == "" {
		return ""
	}
	return l.PublicURL + "/" + key
}
