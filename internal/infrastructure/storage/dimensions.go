package storage

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	_ "golang.org/x/image/webp"
)

// Image describes an uploaded image after sniffing its header.
type Image struct {
	ContentType string
	Width       int
	Height      int
}

// Sniff reads the image header from r and returns its type and dimensions.
// The returned reader replays everything consumed, so it can be stored as-is.
func Sniff(r io.Reader) (Image, io.Reader, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(512)
	ct := http.DetectContentType(head)
	if _, ok := ContentTypes[ct]; !ok {
		return Image{}, nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
	}

	// Metadata segments can push the size header arbitrarily far in, so keep
	// whatever DecodeConfig reads and replay it ahead of the rest.
	var header bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(br, &header))
	if err != nil {
		return Image{}, nil, fmt.Errorf("decode image header: %w", err)
	}
	return Image{ContentType: ct, Width: cfg.Width, Height: cfg.Height}, io.MultiReader(&header, br), nil
}
