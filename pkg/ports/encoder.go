package ports

import (
	"image"
)

// VideoEncoder turns a sequence of images into a video file.
type VideoEncoder interface {
	// Begin starts an encode of width x height frames at fps.
	Begin(width, height int, fps float64, opts EncoderOptions) error

	// EncodeFrame appends one frame. Frames must be passed in presentation order.
	EncodeFrame(img image.Image, timestampMs int) error

	// End finishes the encode and returns the container bytes. It must be
	// called after a successful Begin, even when encoding failed.
	End() ([]byte, error)
}

// EncoderOptions configures video encoding parameters.
type EncoderOptions struct {
	Bitrate int // Target bitrate in kbps, 0 for quality-based
	Quality int // 0-63, lower is better; 0 selects the encoder default
}
