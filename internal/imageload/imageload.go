// Package imageload fetches page images and decodes them for display.
package imageload

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Fetcher downloads raw image bytes
type Fetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, string, error)
}

// Loader fetches and decodes page images
type Loader struct {
	fetcher Fetcher
}

// New creates a loader backed by fetcher
func New(fetcher Fetcher) *Loader {
	return &Loader{fetcher: fetcher}
}

// Image fetches url and decodes it. The natural size is img.Bounds().
func (l *Loader) Image(ctx context.Context, url string) (image.Image, error) {
	data, _, err := l.fetcher.FetchImage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	img, _, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return img, nil
}

// Decode decodes png, jpeg, gif or webp data and returns the format name
func Decode(data []byte) (image.Image, string, error) {
	return image.Decode(bytes.NewReader(data))
}
