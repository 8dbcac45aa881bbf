package mocks

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/user/vidcam/pkg/ports"
)

// StreamSource is a mock implementation of ports.StreamSource that serves
// in-memory byte streams instead of spawning a decoder.
type StreamSource struct {
	// OpenFunc overrides the default behaviour, which returns an empty stream.
	OpenFunc func(ctx context.Context, opts ports.SourceOptions) (io.ReadCloser, error)

	// Opened receives the attempt number (1-based) after every Open call.
	// Sends are non-blocking, so a nil or full channel never stalls Open.
	Opened chan int

	mu      sync.Mutex
	opens   int
	closes  int
	options []ports.SourceOptions
}

// NewStreamSource creates a mock whose sessions each emit the next payload
// from payloads and then end; once exhausted, sessions are empty.
func NewStreamSource(payloads ...[]byte) *StreamSource {
	m := &StreamSource{Opened: make(chan int, 64)}
	m.OpenFunc = func(ctx context.Context, opts ports.SourceOptions) (io.ReadCloser, error) {
		n := m.Opens() - 1
		var data []byte
		if n < len(payloads) {
			data = payloads[n]
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return m
}

func (m *StreamSource) Open(ctx context.Context, opts ports.SourceOptions) (io.ReadCloser, error) {
	m.mu.Lock()
	m.opens++
	n := m.opens
	m.options = append(m.options, opts)
	m.mu.Unlock()

	var (
		rc  io.ReadCloser
		err error
	)
	if m.OpenFunc != nil {
		rc, err = m.OpenFunc(ctx, opts)
	} else {
		rc = io.NopCloser(bytes.NewReader(nil))
	}

	select {
	case m.Opened <- n:
	default:
	}

	if err != nil {
		return nil, err
	}
	return &trackedReader{ReadCloser: rc, m: m}, nil
}

// Opens returns how many sessions were started.
func (m *StreamSource) Opens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens
}

// Closes returns how many sessions were closed.
func (m *StreamSource) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// Options returns the options passed to every Open call.
func (m *StreamSource) Options() []ports.SourceOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.SourceOptions(nil), m.options...)
}

type trackedReader struct {
	io.ReadCloser
	m    *StreamSource
	once sync.Once
}

func (r *trackedReader) Close() error {
	r.once.Do(func() {
		r.m.mu.Lock()
		r.m.closes++
		r.m.mu.Unlock()
	})
	return r.ReadCloser.Close()
}

var _ ports.StreamSource = (*StreamSource)(nil)
