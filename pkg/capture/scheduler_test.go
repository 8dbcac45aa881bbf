package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/user/vidcam/pkg/adapters/logger"
	"github.com/user/vidcam/pkg/distributor"
	"github.com/user/vidcam/pkg/mocks"
	"github.com/user/vidcam/pkg/ports"
)

// manualTicker delivers ticks only when the test sends them. The channel is
// unbuffered, so a send returns once the scheduler has taken the tick.
type manualTicker struct {
	ch chan time.Time
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (m *manualTicker) ticker(time.Duration) (<-chan time.Time, func()) {
	return m.ch, func() {}
}

func (m *manualTicker) tick(t *testing.T) {
	t.Helper()
	select {
	case m.ch <- time.Now():
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not take the tick")
	}
}

func frameN(n byte) ports.Frame {
	return ports.Frame{Data: []byte{n, 0, 0, 255}, Width: 1, Height: 1, Format: ports.PixelRGBA}
}

func waitSaved(t *testing.T, sink *mocks.FrameSink) ports.Frame {
	t.Helper()
	select {
	case f := <-sink.Saved:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for save")
		return ports.Frame{}
	}
}

type harness struct {
	dist  *distributor.Distributor
	sink  *mocks.FrameSink
	clock *manualTicker
	sched *Scheduler
	done  chan error
	stop  context.CancelFunc
}

func start(t *testing.T, sink *mocks.FrameSink, opts Options) *harness {
	t.Helper()
	d := distributor.New(distributor.DefaultCapacity)
	clock := newManualTicker()
	s := New(d.Subscribe(), sink, "captures", logger.NewNoop(), opts)
	s.ticker = clock.ticker

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	return &harness{dist: d, sink: sink, clock: clock, sched: s, done: done, stop: cancel}
}

func TestNew_Defaults(t *testing.T) {
	s := New(distributor.New(0).Subscribe(), mocks.NewFrameSink(), "x", logger.NewNoop(), Options{})
	require.Equal(t, DefaultInterval, s.opts.Interval)
	require.Equal(t, DefaultMaxErrors, s.opts.MaxErrors)
	require.Equal(t, NoFrameYet, s.State())
}

func TestRun_TickWithoutFrameIsNoop(t *testing.T) {
	h := start(t, mocks.NewFrameSink(), Options{})

	h.clock.tick(t)
	h.clock.tick(t)

	require.Equal(t, 0, h.sink.Calls())
	require.Equal(t, NoFrameYet, h.sched.State())
}

func TestRun_OnePersistPerTick(t *testing.T) {
	h := start(t, mocks.NewFrameSink(), Options{})
	h.dist.Publish(frameN(1))

	for i := 0; i < 5; i++ {
		h.clock.tick(t)
		waitSaved(t, h.sink)
	}

	require.Equal(t, 5, h.sink.Calls())
	require.Equal(t, HasFrame, h.sched.State())
	require.Eventually(t, func() bool {
		return h.sched.Stats() == Stats{Attempts: 5, Successes: 5}
	}, time.Second, 5*time.Millisecond)
}

func TestRun_OnlyLatestFrameIsPersisted(t *testing.T) {
	h := start(t, mocks.NewFrameSink(), Options{})

	h.dist.Publish(frameN(1))
	h.dist.Publish(frameN(2))
	h.dist.Publish(frameN(3))
	h.clock.tick(t)

	require.Equal(t, byte(3), waitSaved(t, h.sink).Data[0])
}

func TestRun_StaleFrameIsPersistedUntilReplaced(t *testing.T) {
	h := start(t, mocks.NewFrameSink(), Options{})

	h.dist.Publish(frameN(7))
	h.clock.tick(t)
	require.Equal(t, byte(7), waitSaved(t, h.sink).Data[0])

	h.clock.tick(t)
	require.Equal(t, byte(7), waitSaved(t, h.sink).Data[0])

	h.dist.Publish(frameN(8))
	h.clock.tick(t)
	require.Equal(t, byte(8), waitSaved(t, h.sink).Data[0])
}

func TestRun_SavesIntoConfiguredDir(t *testing.T) {
	sink := mocks.NewFrameSink()
	dirs := make(chan string, 1)
	sink.SaveFunc = func(frame ports.Frame, dir string) (string, error) {
		dirs <- dir
		return dir + "/a.jpg", nil
	}
	h := start(t, sink, Options{})

	h.dist.Publish(frameN(1))
	h.clock.tick(t)
	require.Equal(t, "captures", <-dirs)
}

func TestRun_CircuitOpensAfterMaxErrors(t *testing.T) {
	sink := mocks.NewFrameSink()
	sink.SaveFunc = func(ports.Frame, string) (string, error) {
		return "", errors.New("permission denied")
	}
	h := start(t, sink, Options{MaxErrors: 5})
	h.dist.Publish(frameN(1))

	for i := 0; i < 5; i++ {
		h.clock.tick(t)
	}

	select {
	case err := <-h.done:
		require.ErrorIs(t, err, ErrCircuitOpen)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	// Nobody is left to take further ticks.
	select {
	case h.clock.ch <- time.Now():
		t.Fatal("scheduler still running after circuit opened")
	case <-time.After(100 * time.Millisecond):
	}

	require.Equal(t, 5, sink.Calls())
	require.Equal(t, Stats{Attempts: 5, Failures: 5}, h.sched.Stats())
}

func TestRun_CircuitWithRealTimer(t *testing.T) {
	sink := mocks.NewFrameSink()
	sink.SaveFunc = func(ports.Frame, string) (string, error) {
		return "", errors.New("disk full")
	}
	d := distributor.New(distributor.DefaultCapacity)
	s := New(d.Subscribe(), sink, "captures", logger.NewNoop(), Options{Interval: 5 * time.Millisecond, MaxErrors: 3})
	d.Publish(frameN(1))

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrCircuitOpen)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 3, sink.Calls())
}

func TestRun_SuccessResetsErrorCount(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	// fail, fail, ok, fail, fail, ok
	sink := mocks.NewFrameSink()
	sink.SaveFunc = func(ports.Frame, string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls%3 == 0 {
			return "ok.jpg", nil
		}
		return "", errors.New("transient")
	}
	h := start(t, sink, Options{MaxErrors: 3})
	h.dist.Publish(frameN(1))

	for i := 0; i < 6; i++ {
		h.clock.tick(t)
	}
	// One more tick proves the sixth iteration finished without tripping.
	h.clock.tick(t)

	select {
	case err := <-h.done:
		t.Fatalf("scheduler stopped unexpectedly: %v", err)
	default:
	}
	require.GreaterOrEqual(t, sink.Calls(), 6)
}

func TestRun_ContextCancel(t *testing.T) {
	h := start(t, mocks.NewFrameSink(), Options{})
	h.stop()

	select {
	case err := <-h.done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestState_String(t *testing.T) {
	require.Equal(t, "no-frame-yet", NoFrameYet.String())
	require.Equal(t, "has-frame", HasFrame.String())
	require.Equal(t, "unknown", State(9).String())
}
