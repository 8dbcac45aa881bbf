package ports

import (
	"context"
	"io"
)

// SourceOptions describes the stream a StreamSource should decode.
type SourceOptions struct {
	URL    string      // Network stream address (e.g. rtsp://...)
	Width  int         // Output frame width in pixels
	Height int         // Output frame height in pixels
	Format PixelFormat // Packed pixel layout of the output
}

// StreamSource abstracts the external decoder that turns a network stream
// into raw concatenated pixel frames.
type StreamSource interface {
	// Open starts a decoding session and returns its raw byte stream.
	// Closing the returned reader must terminate and reap the decoder.
	Open(ctx context.Context, opts SourceOptions) (io.ReadCloser, error)
}
