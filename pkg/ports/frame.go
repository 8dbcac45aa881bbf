package ports

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrFrameDimensions is returned when a frame is built with a non-positive width or height.
	ErrFrameDimensions = errors.New("ports: frame dimensions must be positive")

	// ErrFrameSize is returned when the pixel buffer does not match width*height*bpp.
	ErrFrameSize = errors.New("ports: frame data length does not match dimensions")
)

// PixelFormat identifies the packed pixel layout of a frame buffer.
type PixelFormat int

const (
	// PixelRGBA stores pixels as R, G, B, A bytes.
	PixelRGBA PixelFormat = iota
	// PixelBGRA stores pixels as B, G, R, A bytes.
	PixelBGRA
)

// BytesPerPixel returns the number of bytes one pixel occupies.
func (f PixelFormat) BytesPerPixel() int {
	return 4
}

// FFmpegName returns the value ffmpeg expects for -pix_fmt.
func (f PixelFormat) FFmpegName() string {
	switch f {
	case PixelBGRA:
		return "bgra"
	default:
		return "rgba"
	}
}

// String returns the string representation of the pixel format.
func (f PixelFormat) String() string {
	return f.FFmpegName()
}

// FrameSize returns the number of bytes a width x height frame occupies in this format.
func (f PixelFormat) FrameSize(width, height int) int {
	return width * height * f.BytesPerPixel()
}

// Frame is one decoded image: a flat packed pixel buffer plus its dimensions.
//
// Frames are shared by reference between every subscriber and must be treated
// as read-only once constructed.
type Frame struct {
	Data   []byte
	Width  int
	Height int
	Format PixelFormat
}

// NewFrame builds a Frame, enforcing len(data) == width*height*bytesPerPixel.
func NewFrame(data []byte, width, height int, format PixelFormat) (Frame, error) {
	if width <= 0 || height <= 0 {
		return Frame{}, fmt.Errorf("%w: %dx%d", ErrFrameDimensions, width, height)
	}
	if want := format.FrameSize(width, height); len(data) != want {
		return Frame{}, fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(data), want)
	}
	return Frame{Data: data, Width: width, Height: height, Format: format}, nil
}

// Size returns the frame size in bytes.
func (f Frame) Size() int {
	return len(f.Data)
}

// Image copies the frame into a new *image.RGBA, swapping channels for BGRA input.
func (f Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	copy(img.Pix, f.Data)
	if f.Format == PixelBGRA {
		for i := 0; i+3 < len(img.Pix); i += 4 {
			img.Pix[i], img.Pix[i+2] = img.Pix[i+2], img.Pix[i]
		}
	}
	return img
}
