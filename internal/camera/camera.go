// Package camera fetches stills from the network camera at the door and
// decodes them into packed RGB frames for motion detection.
package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sweeney/smart-doorbell/internal/logic"
)

// Defaults for the camera link.
const (
	DefaultHost     = "192.168.4.1"
	DefaultTimeout  = time.Second
	DefaultSnapshot = "/tmp/visitor.jpg"
)

// maxImageBytes bounds a single still.
const maxImageBytes = 4 << 20

// Source produces camera frames.
type Source interface {
	Fetch(ctx context.Context) (logic.Frame, error)
}

// HTTPSource fetches JPEG stills over HTTP.
type HTTPSource struct {
	url          string
	client       *http.Client
	snapshotPath string
}

// NewHTTPSource creates a source for the camera at host. Each fetch is
// bounded by timeout. If snapshot is non-empty, the raw JPEG of every
// successful fetch is written there.
func NewHTTPSource(host string, timeout time.Duration, snapshot string) *HTTPSource {
	return &HTTPSource{
		url:          fmt.Sprintf("http://%s/still", host),
		client:       &http.Client{Timeout: timeout},
		snapshotPath: snapshot,
	}
}

// URL returns the still endpoint.
func (s *HTTPSource) URL() string {
	return s.url
}

// Fetch downloads and decodes one still.
func (s *HTTPSource) Fetch(ctx context.Context) (logic.Frame, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return logic.Frame{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return logic.Frame{}, fmt.Errorf("fetch still: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return logic.Frame{}, fmt.Errorf("fetch still: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return logic.Frame{}, fmt.Errorf("read still: %w", err)
	}

	frame, err := Decode(bytes.NewReader(data))
	if err != nil {
		return logic.Frame{}, err
	}

	if s.snapshotPath != "" {
		if err := writeAtomic(s.snapshotPath, data); err != nil {
			log.Printf("camera: snapshot: %v", err)
		}
	}
	return frame, nil
}

// Decode reads a JPEG and converts it to a packed RGB frame.
func Decode(r io.Reader) (logic.Frame, error) {
	img, err := jpeg.Decode(r)
	if err != nil {
		return logic.Frame{}, fmt.Errorf("decode jpeg: %w", err)
	}
	return ToRGB(img), nil
}

// ToRGB packs img into 3 bytes per pixel, row-major. Decoded JPEGs are
// converted through draw.Draw, which has a fast path for *image.YCbCr.
func ToRGB(img image.Image) logic.Frame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	pix := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := rgba.Pix[rgba.PixOffset(rgba.Rect.Min.X, rgba.Rect.Min.Y+y):]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+3]
			pix = append(pix, p[0], p[1], p[2])
		}
	}
	return logic.Frame{Width: w, Height: h, Pix: pix}
}

// writeAtomic replaces path with data so readers never see a partial file.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
