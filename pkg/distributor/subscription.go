package distributor

import (
	"context"
	"errors"
	"sync"

	"github.com/user/vidcam/pkg/ports"
)

// ErrClosed is returned by Recv once the subscription has been closed.
var ErrClosed = errors.New("distributor: subscription closed")

// Subscription is one consumer's view of the frame stream.
type Subscription struct {
	id    string
	owner *Distributor

	mu      sync.Mutex
	ring    []ports.Frame
	head    int
	count   int
	dropped uint64
	closed  bool

	notify    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string {
	return s.id
}

// push appends frame, evicting the oldest buffered frame when full.
func (s *Subscription) push(frame ports.Frame) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	size := len(s.ring)
	if s.count == size {
		s.ring[s.head] = ports.Frame{}
		s.head = (s.head + 1) % size
		s.count--
		s.dropped++
	}
	s.ring[(s.head+s.count)%size] = frame
	s.count++
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// TryRecv pops the oldest buffered frame without blocking.
func (s *Subscription) TryRecv() (ports.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.count == 0 {
		return ports.Frame{}, false
	}

	frame := s.ring[s.head]
	s.ring[s.head] = ports.Frame{}
	s.head = (s.head + 1) % len(s.ring)
	s.count--
	return frame, true
}

// Latest drains the buffer and returns only the newest frame.
func (s *Subscription) Latest() (ports.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.count == 0 {
		return ports.Frame{}, false
	}

	size := len(s.ring)
	frame := s.ring[(s.head+s.count-1)%size]
	for i := range s.ring {
		s.ring[i] = ports.Frame{}
	}
	s.head = 0
	s.count = 0
	return frame, true
}

// Recv blocks until a frame is available, ctx is done or the subscription is closed.
func (s *Subscription) Recv(ctx context.Context) (ports.Frame, error) {
	for {
		if frame, ok := s.TryRecv(); ok {
			return frame, nil
		}

		select {
		case <-s.notify:
		case <-s.done:
			return ports.Frame{}, ErrClosed
		case <-ctx.Done():
			return ports.Frame{}, ctx.Err()
		}
	}
}

// C is signalled after every publish that reaches this subscription. It has a
// buffer of one, so a single receive may stand for several frames.
func (s *Subscription) C() <-chan struct{} {
	return s.notify
}

// Done is closed when the subscription is closed.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Len returns the number of buffered frames.
func (s *Subscription) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Dropped returns how many frames were evicted unread.
func (s *Subscription) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close detaches the subscription from its distributor and discards any
// buffered frames. It is safe to call more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.owner.unsubscribe(s)

		s.mu.Lock()
		s.closed = true
		for i := range s.ring {
			s.ring[i] = ports.Frame{}
		}
		s.count = 0
		s.mu.Unlock()

		close(s.done)
	})
}
