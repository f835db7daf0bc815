package imageload

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/justyntemme/raito-t/internal/api"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestLoaderImage(t *testing.T) {
	data := pngBytes(t, 120, 80)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/img/wide.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(data)
		case "/img/garbage.png":
			w.Write([]byte("not an image"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := New(api.NewClient(srv.URL, ""))
	ctx := context.Background()

	img, err := l.Image(ctx, srv.URL+"/img/wide.png")
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("size = %dx%d, expected 120x80", b.Dx(), b.Dy())
	}

	if _, err := l.Image(ctx, srv.URL+"/img/missing.png"); !errors.Is(err, api.ErrNotFound) {
		t.Errorf("missing image err = %v, expected ErrNotFound", err)
	}
	if _, err := l.Image(ctx, srv.URL+"/img/garbage.png"); !errors.Is(err, image.ErrFormat) {
		t.Errorf("garbage image err = %v, expected image.ErrFormat", err)
	}
}

func TestDecodeFormat(t *testing.T) {
	_, format, err := Decode(pngBytes(t, 2, 2))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q, expected png", format)
	}
}
