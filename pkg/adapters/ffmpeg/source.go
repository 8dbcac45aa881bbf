package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/user/vidcam/pkg/ports"
)

// waitDelay bounds how long Close waits for the pipe to drain after a kill.
const waitDelay = 2 * time.Second

// Source implements ports.StreamSource by running ffmpeg as a child process
// and exposing its stdout.
type Source struct {
	find func() (string, error)
}

// NewSource creates a Source that locates ffmpeg with FindFFmpeg.
func NewSource() *Source {
	return &Source{find: FindFFmpeg}
}

// Open starts ffmpeg for opts and returns its raw frame stream. The process is
// bound to ctx; closing the returned reader kills and reaps it.
func (s *Source) Open(ctx context.Context, opts ports.SourceOptions) (io.ReadCloser, error) {
	path, err := s.find()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, path, BuildDecodeArgs(opts)...)
	cmd.WaitDelay = waitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoOutput, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	return &session{cmd: cmd, stdout: stdout}, nil
}

// session is one running decoder process.
type session struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser

	once sync.Once
}

func (s *session) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

// Close kills the process if it is still running and waits for it, so no
// zombie survives a reconnect. The exit status is not inspected.
func (s *session) Close() error {
	s.once.Do(func() {
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		_ = s.cmd.Wait()
	})
	return nil
}

// Ensure Source implements ports.StreamSource
var _ ports.StreamSource = (*Source)(nil)
