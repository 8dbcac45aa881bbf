package mocks

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/user/vidcam/pkg/ports"
)

// FrameSink is a mock implementation of ports.FrameSink.
type FrameSink struct {
	SaveFunc func(frame ports.Frame, dir string) (string, error)

	// Saved receives every frame passed to Save. Sends are non-blocking.
	Saved chan ports.Frame

	mu     sync.Mutex
	frames []ports.Frame
}

// NewFrameSink creates a mock FrameSink that succeeds.
func NewFrameSink() *FrameSink {
	return &FrameSink{Saved: make(chan ports.Frame, 64)}
}

func (m *FrameSink) Save(frame ports.Frame, dir string) (string, error) {
	m.mu.Lock()
	m.frames = append(m.frames, frame)
	n := len(m.frames)
	m.mu.Unlock()

	select {
	case m.Saved <- frame:
	default:
	}

	if m.SaveFunc != nil {
		return m.SaveFunc(frame, dir)
	}
	return filepath.Join(dir, fmt.Sprintf("frame-%04d.jpg", n)), nil
}

// Calls returns the number of Save invocations.
func (m *FrameSink) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

// Frames returns the frames passed to Save.
func (m *FrameSink) Frames() []ports.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.Frame(nil), m.frames...)
}

var _ ports.FrameSink = (*FrameSink)(nil)
