// Package timelapse turns a directory of captured stills into an MP4 video.
package timelapse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/user/vidcam/pkg/ports"
)

// ErrNoFrames is returned when the frames directory holds no captures.
var ErrNoFrames = errors.New("timelapse: no frames to compile")

// DefaultFPS is the playback rate of compiled videos.
const DefaultFPS = 30.0

// Options configures a Compiler.
type Options struct {
	FPS     float64
	Quality int // encoder quality, 0 for the encoder default
}

// Result describes a compiled timelapse.
type Result struct {
	Path   string
	Frames int
	Info   VideoInfo
}

// Compiler encodes captured JPEG stills into a timelapse.
type Compiler struct {
	fs       ports.FileSystem
	renderer ports.Renderer
	encoder  ports.VideoEncoder
	logger   ports.Logger
	opts     Options
	now      func() time.Time
}

// New creates a Compiler.
func New(fs ports.FileSystem, renderer ports.Renderer, encoder ports.VideoEncoder, logger ports.Logger, opts Options) *Compiler {
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	return &Compiler{
		fs:       fs,
		renderer: renderer,
		encoder:  encoder,
		logger:   logger.WithComponent("timelapse"),
		opts:     opts,
		now:      time.Now,
	}
}

// OutputName returns the file name of a timelapse compiled at t.
func OutputName(t time.Time) string {
	return "output_" + t.Format("20060102_150405") + ".mp4"
}

// Compile encodes every .jpg in framesDir, in name order, into a new MP4 under
// outputDir. Frames whose size differs from the first are scaled to match.
func (c *Compiler) Compile(ctx context.Context, framesDir, outputDir string) (Result, error) {
	paths, err := c.fs.ListFiles(framesDir, ".jpg")
	if err != nil {
		return Result{}, fmt.Errorf("list frames: %w", err)
	}
	if len(paths) == 0 {
		return Result{}, ErrNoFrames
	}

	first, err := c.load(paths[0])
	if err != nil {
		return Result{}, err
	}
	// H.264 with yuv420p needs even dimensions.
	width := first.Bounds().Dx() &^ 1
	height := first.Bounds().Dy() &^ 1
	if width == 0 || height == 0 {
		return Result{}, fmt.Errorf("frame %s is too small: %v", paths[0], first.Bounds())
	}

	c.logger.Info("Compiling %d frames at %.1f fps", len(paths), c.opts.FPS)

	if err := c.encoder.Begin(width, height, c.opts.FPS, ports.EncoderOptions{Quality: c.opts.Quality}); err != nil {
		return Result{}, fmt.Errorf("begin encoder: %w", err)
	}

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			c.encoder.End()
			return Result{}, err
		}

		img := first
		if i > 0 {
			if img, err = c.load(path); err != nil {
				c.encoder.End()
				return Result{}, err
			}
		}
		if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
			img = c.renderer.ResizeImage(img, width, height)
		}

		ts := int(float64(i) * 1000 / c.opts.FPS)
		if err := c.encoder.EncodeFrame(img, ts); err != nil {
			c.encoder.End()
			return Result{}, fmt.Errorf("encode frame %s: %w", filepath.Base(path), err)
		}
		c.logger.Debug("Encoded frame %d/%d", i+1, len(paths))
	}

	data, err := c.encoder.End()
	if err != nil {
		return Result{}, fmt.Errorf("finish encoder: %w", err)
	}

	if err := c.fs.MkdirAll(outputDir); err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}
	out := filepath.Join(outputDir, OutputName(c.now()))
	if err := c.fs.WriteFile(out, data); err != nil {
		return Result{}, fmt.Errorf("write timelapse: %w", err)
	}

	result := Result{Path: out, Frames: len(paths)}
	if info, err := Inspect(bytes.NewReader(data)); err != nil {
		c.logger.Warn("Could not inspect %s: %v", out, err)
	} else {
		result.Info = info
		c.logger.Info("Timelapse saved to %s (%d samples, %s)", out, info.Samples, info.Duration)
	}
	return result, nil
}

func (c *Compiler) load(path string) (image.Image, error) {
	data, err := c.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	img, err := c.renderer.DecodeImage(data, ports.FormatJPEG)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", filepath.Base(path), err)
	}
	return img, nil
}
