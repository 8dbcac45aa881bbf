// Package framer slices a raw decoder byte stream into fixed-size frames.
//
// The stream is assumed to be a plain concatenation of width*height*bpp
// frames with no padding or metadata between them. There is no
// resynchronisation: if the decoder ever emits anything else, frame
// boundaries drift silently until the session is restarted.
package framer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/user/vidcam/pkg/ports"
)

// ErrShortFrame is returned when the stream ends partway through a frame.
var ErrShortFrame = errors.New("framer: stream ended mid-frame")

// Framer reads exact-size frames from a byte stream.
type Framer struct {
	width     int
	height    int
	format    ports.PixelFormat
	frameSize int
}

// New creates a Framer for frames of the given dimensions and pixel format.
func New(width, height int, format ports.PixelFormat) (*Framer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ports.ErrFrameDimensions, width, height)
	}
	return &Framer{
		width:     width,
		height:    height,
		format:    format,
		frameSize: format.FrameSize(width, height),
	}, nil
}

// FrameSize returns the number of bytes in one frame.
func (f *Framer) FrameSize() int {
	return f.frameSize
}

// Next reads exactly one frame from r, looping over short reads.
// It returns io.EOF when r ends cleanly on a frame boundary and an
// error wrapping ErrShortFrame when r ends inside a frame.
func (f *Framer) Next(r io.Reader) (ports.Frame, error) {
	buf := make([]byte, f.frameSize)

	n, err := io.ReadFull(r, buf)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF) && n == 0:
		return ports.Frame{}, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return ports.Frame{}, fmt.Errorf("%w: got %d of %d bytes", ErrShortFrame, n, f.frameSize)
	default:
		return ports.Frame{}, fmt.Errorf("read frame: %w", err)
	}

	return ports.NewFrame(buf, f.width, f.height, f.format)
}

// Run reads frames from r until it fails, handing each to publish in stream
// order. It returns the number of frames produced and the terminating error,
// which is never nil: io.EOF marks a clean end of stream.
func (f *Framer) Run(ctx context.Context, r io.Reader, publish func(ports.Frame)) (int, error) {
	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		frame, err := f.Next(r)
		if err != nil {
			return count, err
		}

		publish(frame)
		count++
	}
}
