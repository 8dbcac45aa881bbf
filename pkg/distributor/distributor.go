// Package distributor fans frames out from one producer to many consumers.
//
// Every subscription owns a small ring buffer. Publish never blocks: when a
// subscriber's buffer is full its oldest frame is discarded to admit the new
// one, so slow consumers always converge on recent frames instead of stalling
// the decoder. Subscribers only see frames published after they subscribed.
package distributor

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/user/vidcam/pkg/ports"
)

// DefaultCapacity is the per-subscriber buffer size.
const DefaultCapacity = 2

// Distributor is a bounded drop-oldest publish/subscribe channel for frames.
type Distributor struct {
	capacity int

	// mu serialises registration. Publish reads subs without it.
	mu   sync.Mutex
	subs atomic.Pointer[[]*Subscription]

	published atomic.Uint64
}

// New creates a Distributor whose subscriptions buffer capacity frames.
// A capacity below 1 selects DefaultCapacity.
func New(capacity int) *Distributor {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	d := &Distributor{capacity: capacity}
	d.subs.Store(&[]*Subscription{})
	return d
}

// Publish delivers frame to every current subscriber. It never blocks and
// never fails; with no subscribers the frame is simply dropped.
func (d *Distributor) Publish(frame ports.Frame) {
	d.published.Add(1)
	for _, s := range *d.subs.Load() {
		s.push(frame)
	}
}

// Subscribe registers a new consumer. It observes only frames published
// after Subscribe returns.
func (d *Distributor) Subscribe() *Subscription {
	s := &Subscription{
		id:     uuid.NewString(),
		owner:  d,
		ring:   make([]ports.Frame, d.capacity),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	cur := *d.subs.Load()
	next := make([]*Subscription, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, s)
	d.subs.Store(&next)

	return s
}

func (d *Distributor) unsubscribe(s *Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cur := *d.subs.Load()
	next := make([]*Subscription, 0, len(cur))
	for _, other := range cur {
		if other != s {
			next = append(next, other)
		}
	}
	d.subs.Store(&next)
}

// SubscriberCount returns the number of open subscriptions.
func (d *Distributor) SubscriberCount() int {
	return len(*d.subs.Load())
}

// Published returns the number of frames passed to Publish.
func (d *Distributor) Published() uint64 {
	return d.published.Load()
}
