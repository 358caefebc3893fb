package storage

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ContentTypes maps accepted upload MIME types to stored file extensions.
var ContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ErrUnsupportedType is returned for uploads outside ContentTypes.
var ErrUnsupportedType = fmt.Errorf("unsupported image type")

// NewKey returns a fresh object key under prefix for an image of contentType.
func NewKey(prefix, contentType string) (string, error) {
	ext, ok := ContentTypes[normalizeType(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	return prefix + uuid.NewString() + ext, nil
}

// ContentTypeOf returns the MIME type implied by key's extension.
func ContentTypeOf(key string) string {
	for ct, ext := range ContentTypes {
		if strings.HasSuffix(strings.ToLower(key), ext) {
			return ct
		}
	}
	return "application/octet-stream"
}

func normalizeType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// validKey rejects keys that could escape the storage root.
func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
