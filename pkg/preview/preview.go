// Package preview renders the latest frame to an image file for a live view.
//
// It stands in for an on-screen overlay: each refresh it takes the newest
// frame, scales it to the window size, applies the window opacity, and writes
// a PNG that any image viewer can watch. When no new frame arrives the file
// is left as is, so an outage shows as a stale picture.
package preview

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/image/draw"

	"github.com/user/vidcam/pkg/ports"
)

// DefaultRefresh is the preview redraw interval.
const DefaultRefresh = 100 * time.Millisecond

// FrameSource provides the newest available frame without blocking.
type FrameSource interface {
	Latest() (ports.Frame, bool)
}

// Options configures a Preview.
type Options struct {
	Path    string  // output PNG path
	Width   int     // window width; 0 keeps the frame width
	Height  int     // window height; 0 keeps the frame height
	Opacity float64 // 0..1, 0 is treated as fully opaque
	Refresh time.Duration
}

// Preview periodically renders frames from a FrameSource.
type Preview struct {
	source   FrameSource
	renderer ports.Renderer
	fs       ports.FileSystem
	logger   ports.Logger
	opts     Options

	ticker func(time.Duration) (<-chan time.Time, func())

	rendered atomic.Uint64
}

// New creates a Preview.
func New(source FrameSource, renderer ports.Renderer, fs ports.FileSystem, logger ports.Logger, opts Options) *Preview {
	if opts.Refresh <= 0 {
		opts.Refresh = DefaultRefresh
	}
	if opts.Opacity <= 0 || opts.Opacity > 1 {
		opts.Opacity = 1
	}
	return &Preview{
		source:   source,
		renderer: renderer,
		fs:       fs,
		logger:   logger.WithComponent("preview"),
		opts:     opts,
		ticker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Run redraws the preview until ctx is cancelled. Render failures are logged
// and never stop the loop.
func (p *Preview) Run(ctx context.Context) error {
	ticks, stop := p.ticker(p.opts.Refresh)
	defer stop()

	p.logger.Info("Writing preview to %s", p.opts.Path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticks:
			frame, ok := p.source.Latest()
			if !ok {
				continue
			}
			if err := p.Render(frame); err != nil {
				p.logger.Warn("Preview render failed: %v", err)
			}
		}
	}
}

// Render draws a single frame to the preview file.
func (p *Preview) Render(frame ports.Frame) error {
	var img image.Image = frame.Image()

	w, h := p.opts.Width, p.opts.Height
	if w <= 0 {
		w = frame.Width
	}
	if h <= 0 {
		h = frame.Height
	}
	if w != frame.Width || h != frame.Height {
		img = p.renderer.ResizeImage(img, w, h)
	}
	if p.opts.Opacity < 1 {
		img = withOpacity(img, p.opts.Opacity)
	}

	data, err := p.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	if err := p.fs.MkdirAll(filepath.Dir(p.opts.Path)); err != nil {
		return fmt.Errorf("create preview dir: %w", err)
	}
	if err := p.fs.WriteFile(p.opts.Path, data); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}

	p.rendered.Add(1)
	return nil
}

// Rendered returns how many previews have been written.
func (p *Preview) Rendered() uint64 {
	return p.rendered.Load()
}

// withOpacity returns a copy of img with every alpha value scaled by opacity.
func withOpacity(img image.Image, opacity float64) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = uint8(float64(out.Pix[i])*opacity + 0.5)
	}
	return out
}
