// Package snapshotsink writes captured frames to disk as timestamped JPEG files.
package snapshotsink

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"sync"
	"time"

	"github.com/user/vidcam/pkg/ports"
)

// DefaultQuality is the JPEG quality used when Options.Quality is zero.
const DefaultQuality = 90

// Options configures a Sink.
type Options struct {
	Quality  int
	Stamp    bool   // draw the capture time in the bottom-right corner
	FontPath string // optional TrueType font for the stamp
}

// Sink implements ports.FrameSink.
type Sink struct {
	fs       ports.FileSystem
	renderer ports.Renderer
	opts     Options
	now      func() time.Time

	// mu serialises name selection so two saves never pick the same path.
	mu sync.Mutex
}

// New creates a Sink.
func New(fs ports.FileSystem, renderer ports.Renderer, opts Options) *Sink {
	if opts.Quality <= 0 {
		opts.Quality = DefaultQuality
	}
	return &Sink{
		fs:       fs,
		renderer: renderer,
		opts:     opts,
		now:      time.Now,
	}
}

// FileName returns the base name for a capture taken at t, e.g.
// 20240131_094512_083.
func FileName(t time.Time) string {
	return fmt.Sprintf("%s_%03d", t.Format("20060102_150405"), t.Nanosecond()/int(time.Millisecond))
}

// Save encodes frame as JPEG into dir and returns the written path.
func (s *Sink) Save(frame ports.Frame, dir string) (string, error) {
	if err := s.fs.MkdirAll(dir); err != nil {
		return "", fmt.Errorf("create capture dir: %w", err)
	}

	captured := s.now()
	var img image.Image = frame.Image()
	if s.opts.Stamp {
		img = s.stamp(img, captured)
	}

	data, err := s.renderer.EncodeImage(img, ports.FormatJPEG, s.opts.Quality)
	if err != nil {
		return "", fmt.Errorf("encode capture: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.uniquePath(dir, FileName(captured))
	if err != nil {
		return "", err
	}
	if err := s.fs.WriteFile(path, data); err != nil {
		return "", fmt.Errorf("write capture: %w", err)
	}
	return path, nil
}

func (s *Sink) uniquePath(dir, base string) (string, error) {
	path := filepath.Join(dir, base+".jpg")
	for n := 1; ; n++ {
		exists, err := s.fs.Exists(path)
		if err != nil {
			return "", fmt.Errorf("check capture path: %w", err)
		}
		if !exists {
			return path, nil
		}
		path = filepath.Join(dir, fmt.Sprintf("%s-%d.jpg", base, n))
	}
}

func (s *Sink) stamp(img image.Image, t time.Time) image.Image {
	b := img.Bounds()
	style := ports.TextStyle{
		FontSize: max(12, float64(b.Dy())/30),
		FontPath: s.opts.FontPath,
		Color:    color.White,
		Align:    ports.AlignRight,
	}
	text := t.Format("2006-01-02 15:04:05")

	canvas := s.renderer.CreateCanvas(img)
	w, h := canvas.MeasureText(text, style)
	pad := int(style.FontSize / 2)
	right := b.Dx() - pad
	bottom := b.Dy() - pad

	boxW, boxH := int(w)+pad, int(h)+pad

	canvas.DrawRoundedRect(right-boxW, bottom-boxH, boxW, boxH, pad/2, color.NRGBA{0, 0, 0, 160})
	canvas.DrawText(text, right-pad/2, bottom-boxH/2, style)
	return canvas.ToImage()
}

var _ ports.FrameSink = (*Sink)(nil)
