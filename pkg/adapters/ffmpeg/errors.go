package ffmpeg

import "errors"

var (
	// ErrFFmpegNotFound is returned when no ffmpeg executable can be located.
	ErrFFmpegNotFound = errors.New("ffmpeg: executable not found")

	// ErrNoOutput is returned when the decoder process offers no readable stdout.
	ErrNoOutput = errors.New("ffmpeg: decoder produced no output stream")

	// ErrNotInitialized is returned when encoder methods are called before Begin.
	ErrNotInitialized = errors.New("ffmpeg: encoder not initialized")
)
