// Package summarizer writes a report of a capture session.
package summarizer

import "time"

// Summary contains the data collected during one capture session.
type Summary struct {
	GeneratedAt time.Time

	Stream    StreamInfo
	Session   SessionInfo
	Decoder   DecoderInfo
	Capture   CaptureInfo
	Timelapse *TimelapseInfo // nil when no timelapse was compiled
}

// StreamInfo describes the camera stream.
type StreamInfo struct {
	URL    string
	Width  int
	Height int
}

// SessionInfo records when the pipeline ran.
type SessionInfo struct {
	StartedAt time.Time
	EndedAt   time.Time
}

// Duration returns how long the session ran.
func (s SessionInfo) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

// DecoderInfo contains decoder supervision counters.
type DecoderInfo struct {
	Sessions uint64
	Failures uint64
	Frames   uint64
}

// CaptureInfo contains capture scheduler counters.
type CaptureInfo struct {
	Dir      string
	Attempts uint64
	Saved    uint64
	Failures uint64
	Halted   bool // the scheduler stopped after repeated failures
}

// TimelapseInfo describes a compiled timelapse.
type TimelapseInfo struct {
	Path     string
	Frames   int
	Duration time.Duration
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithStream sets stream information.
func (b *Builder) WithStream(url string, width, height int) *Builder {
	b.summary.Stream = StreamInfo{URL: url, Width: width, Height: height}
	return b
}

// WithSession sets the session start and end times.
func (b *Builder) WithSession(started, ended time.Time) *Builder {
	b.summary.Session = SessionInfo{StartedAt: started, EndedAt: ended}
	return b
}

// WithDecoder sets decoder counters.
func (b *Builder) WithDecoder(info DecoderInfo) *Builder {
	b.summary.Decoder = info
	return b
}

// WithCapture sets capture counters.
func (b *Builder) WithCapture(info CaptureInfo) *Builder {
	b.summary.Capture = info
	return b
}

// WithTimelapse sets timelapse output information.
func (b *Builder) WithTimelapse(info TimelapseInfo) *Builder {
	b.summary.Timelapse = &info
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
