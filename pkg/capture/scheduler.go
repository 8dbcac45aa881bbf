// Package capture persists the most recent frame on a fixed wall-clock cadence.
package capture

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/user/vidcam/pkg/ports"
)

// ErrCircuitOpen is returned by Run once MaxErrors consecutive saves have failed.
var ErrCircuitOpen = errors.New("capture: too many consecutive save failures")

const (
	DefaultInterval  = time.Second
	DefaultMaxErrors = 5
)

// State reports whether the scheduler has a frame to persist.
type State int32

const (
	NoFrameYet State = iota
	HasFrame
)

func (s State) String() string {
	switch s {
	case NoFrameYet:
		return "no-frame-yet"
	case HasFrame:
		return "has-frame"
	default:
		return "unknown"
	}
}

// FrameSource is the consumer side of a distributor subscription.
type FrameSource interface {
	// C is signalled whenever a new frame is available.
	C() <-chan struct{}
	// Latest returns the newest buffered frame, discarding older ones.
	Latest() (ports.Frame, bool)
}

// Options configures a Scheduler.
type Options struct {
	Interval  time.Duration
	MaxErrors int
}

// Stats is a snapshot of scheduler counters.
type Stats struct {
	Attempts  uint64
	Successes uint64
	Failures  uint64
}

// Scheduler saves the latest frame from a FrameSource once per interval.
type Scheduler struct {
	source FrameSource
	sink   ports.FrameSink
	dir    string
	logger ports.Logger
	opts   Options

	// ticker returns the tick channel and a stop function; replaced in tests.
	ticker func(time.Duration) (<-chan time.Time, func())

	state     atomic.Int32
	attempts  atomic.Uint64
	successes atomic.Uint64
	failures  atomic.Uint64
}

// New creates a Scheduler writing into dir. Zero option values take defaults.
func New(source FrameSource, sink ports.FrameSink, dir string, logger ports.Logger, opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.MaxErrors <= 0 {
		opts.MaxErrors = DefaultMaxErrors
	}
	return &Scheduler{
		source: source,
		sink:   sink,
		dir:    dir,
		logger: logger.WithComponent("capture"),
		opts:   opts,
		ticker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Run samples frames until ctx is cancelled or the circuit opens. A tick with no
// frame held is a no-op; a held frame is saved again on every tick until a newer
// one replaces it.
func (s *Scheduler) Run(ctx context.Context) error {
	ticks, stop := s.ticker(s.opts.Interval)
	defer stop()

	s.logger.Info("Capturing every %s into %s", s.opts.Interval, s.dir)

	var (
		frame       ports.Frame
		consecutive int
	)
	take := func() {
		f, ok := s.source.Latest()
		if !ok {
			return
		}
		frame = f
		if s.state.Swap(int32(HasFrame)) == int32(NoFrameYet) {
			s.logger.Debug("First frame received")
		}
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Capture scheduler stopped")
			return ctx.Err()

		case <-s.source.C():
			take()

		case <-ticks:
			take()
			if s.State() == NoFrameYet {
				continue
			}

			s.attempts.Add(1)
			path, err := s.sink.Save(frame, s.dir)
			if err != nil {
				s.failures.Add(1)
				consecutive++
				s.logger.Warn("Capture failed (%d/%d): %v", consecutive, s.opts.MaxErrors, err)
				if consecutive >= s.opts.MaxErrors {
					s.logger.Error("Capture stopped after %d consecutive failures", consecutive)
					return ErrCircuitOpen
				}
				continue
			}

			s.successes.Add(1)
			consecutive = 0
			s.logger.Debug("Saved %s", path)
		}
	}
}

// State returns the current scheduler state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Stats returns a snapshot of the scheduler counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Attempts:  s.attempts.Load(),
		Successes: s.successes.Load(),
		Failures:  s.failures.Load(),
	}
}
