package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder

	b.WriteString("# Capture Session Summary\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", s.GeneratedAt.Format(time.RFC3339))

	b.WriteString("## Stream\n\n")
	b.WriteString("| Item | Value |\n|------|-------|\n")
	fmt.Fprintf(&b, "| URL | %s |\n", s.Stream.URL)
	fmt.Fprintf(&b, "| Frame size | %dx%d |\n", s.Stream.Width, s.Stream.Height)
	fmt.Fprintf(&b, "| Started | %s |\n", s.Session.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "| Duration | %s |\n\n", s.Session.Duration().Round(time.Second))

	b.WriteString("## Decoder\n\n")
	b.WriteString("| Item | Value |\n|------|-------|\n")
	fmt.Fprintf(&b, "| Sessions | %d |\n", s.Decoder.Sessions)
	fmt.Fprintf(&b, "| Reconnects | %d |\n", s.Decoder.Failures)
	fmt.Fprintf(&b, "| Frames | %d |\n\n", s.Decoder.Frames)

	b.WriteString("## Captures\n\n")
	b.WriteString("| Item | Value |\n|------|-------|\n")
	fmt.Fprintf(&b, "| Directory | %s |\n", s.Capture.Dir)
	fmt.Fprintf(&b, "| Saved | %d |\n", s.Capture.Saved)
	fmt.Fprintf(&b, "| Failed | %d |\n", s.Capture.Failures)
	if s.Capture.Halted {
		b.WriteString("\n> Capturing stopped after repeated save failures.\n")
	}
	b.WriteString("\n")

	if s.Timelapse != nil {
		b.WriteString("## Timelapse\n\n")
		b.WriteString("| Item | Value |\n|------|-------|\n")
		fmt.Fprintf(&b, "| File | %s |\n", s.Timelapse.Path)
		fmt.Fprintf(&b, "| Frames | %d |\n", s.Timelapse.Frames)
		fmt.Fprintf(&b, "| Length | %s |\n", s.Timelapse.Duration.Round(time.Millisecond))
	}

	return b.String()
}

var _ Formatter = (*MarkdownFormatter)(nil)
