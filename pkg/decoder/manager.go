// Package decoder keeps an external stream decoder running for the lifetime of
// the pipeline and feeds its output through the framer into a publisher.
package decoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/user/vidcam/pkg/framer"
	"github.com/user/vidcam/pkg/ports"
)

// ErrStreamEnded is returned for a session whose stream closed cleanly.
var ErrStreamEnded = errors.New("decoder: stream ended")

// DefaultReconnectDelay is the fixed pause between decoder sessions.
const DefaultReconnectDelay = time.Second

// Publisher receives completed frames.
type Publisher interface {
	Publish(frame ports.Frame)
}

// Options is the read-only snapshot of stream configuration taken at startup.
type Options struct {
	URL            string
	Width          int
	Height         int
	Format         ports.PixelFormat
	ReconnectDelay time.Duration
}

// SourceOptions returns the subset of Options the StreamSource needs.
func (o Options) SourceOptions() ports.SourceOptions {
	return ports.SourceOptions{
		URL:    o.URL,
		Width:  o.Width,
		Height: o.Height,
		Format: o.Format,
	}
}

// Stats is a snapshot of manager counters.
type Stats struct {
	Attempts uint64 // Sessions started
	Failures uint64 // Sessions that ended
	Frames   uint64 // Frames published across all sessions
}

// Manager supervises decoder sessions. Every failure is retried after the same
// fixed delay, forever; only cancelling the context passed to Run stops it.
type Manager struct {
	source    ports.StreamSource
	publisher Publisher
	opts      Options
	logger    ports.Logger
	framer    *framer.Framer

	// after is time.After, replaceable in tests.
	after func(time.Duration) <-chan time.Time

	attempts atomic.Uint64
	failures atomic.Uint64
	frames   atomic.Uint64
}

// New creates a Manager. It fails only if the frame dimensions are invalid.
func New(source ports.StreamSource, publisher Publisher, opts Options, logger ports.Logger) (*Manager, error) {
	f, err := framer.New(opts.Width, opts.Height, opts.Format)
	if err != nil {
		return nil, err
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}

	return &Manager{
		source:    source,
		publisher: publisher,
		opts:      opts,
		logger:    logger.WithComponent("decoder"),
		framer:    f,
		after:     time.After,
	}, nil
}

// Run supervises decoder sessions until ctx is cancelled, then returns ctx.Err().
func (m *Manager) Run(ctx context.Context) error {
	m.logger.Info("Starting stream %s at %dx%d (%s)", m.opts.URL, m.opts.Width, m.opts.Height, m.opts.Format)

	for {
		err := m.session(ctx)
		if ctx.Err() != nil {
			m.logger.Debug("Stream supervisor stopped")
			return ctx.Err()
		}

		m.failures.Add(1)
		m.logger.Warn("Stream failed: %v; reconnecting in %s", err, m.opts.ReconnectDelay)

		select {
		case <-m.after(m.opts.ReconnectDelay):
		case <-ctx.Done():
			m.logger.Debug("Stream supervisor stopped")
			return ctx.Err()
		}
	}
}

// session runs one decoder process to completion. It always returns a non-nil
// error, since a live stream has no successful end.
func (m *Manager) session(ctx context.Context) error {
	attempt := m.attempts.Add(1)
	m.logger.Debug("Launching decoder (attempt %d)", attempt)

	stream, err := m.source.Open(ctx, m.opts.SourceOptions())
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	first := true
	n, err := m.framer.Run(ctx, stream, func(frame ports.Frame) {
		m.frames.Add(1)
		if first {
			m.logger.Info("Stream connected")
			first = false
		}
		m.publisher.Publish(frame)
	})
	m.logger.Debug("Session %d produced %d frames", attempt, n)

	if errors.Is(err, io.EOF) {
		return ErrStreamEnded
	}
	return err
}

// Stats returns a snapshot of the manager counters.
func (m *Manager) Stats() Stats {
	return Stats{
		Attempts: m.attempts.Load(),
		Failures: m.failures.Load(),
		Frames:   m.frames.Load(),
	}
}
