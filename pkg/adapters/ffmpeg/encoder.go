package ffmpeg

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/user/vidcam/pkg/ports"
)

// Encoder implements ports.VideoEncoder by piping raw RGBA frames into an
// ffmpeg libx264 process. Frames are written at the fixed Begin fps; the
// timestamp passed to EncodeFrame only orders them.
type Encoder struct {
	find func() (string, error)

	mu         sync.Mutex
	width      int
	height     int
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stderr     bytes.Buffer
	tempPath   string
	frameCount int
	closed     bool
}

// NewEncoder creates an ffmpeg-backed H.264 encoder.
func NewEncoder() *Encoder {
	return &Encoder{find: FindFFmpeg}
}

// Begin starts ffmpeg writing into a temporary MP4.
func (e *Encoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ffmpegPath, err := e.find()
	if err != nil {
		return err
	}

	e.width = width
	e.height = height
	e.frameCount = 0
	e.closed = false
	e.stderr.Reset()

	tmpFile, err := os.CreateTemp("", "vidcam_timelapse_*.mp4")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	e.tempPath = tmpFile.Name()
	tmpFile.Close()

	e.cmd = exec.Command(ffmpegPath, BuildEncodeArgs(width, height, fps, opts, e.tempPath)...)
	e.cmd.Stderr = &e.stderr

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		os.Remove(e.tempPath)
		return fmt.Errorf("get stdin pipe: %w", err)
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		os.Remove(e.tempPath)
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	return nil
}

// EncodeFrame writes one frame. img is drawn unscaled onto a canvas of the
// Begin dimensions, anchored at its top-left corner.
func (e *Encoder) EncodeFrame(img image.Image, timestampMs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil || e.closed {
		return ErrNotInitialized
	}

	rgba := image.NewRGBA(image.Rect(0, 0, e.width, e.height))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)

	if _, err := e.stdin.Write(rgba.Pix); err != nil {
		return fmt.Errorf("write frame at %dms: %w", timestampMs, err)
	}

	e.frameCount++
	return nil
}

// End closes ffmpeg's input, waits for it and returns the MP4 bytes.
func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil || e.closed {
		return nil, ErrNotInitialized
	}

	e.stdin.Close()
	e.stdin = nil
	e.closed = true
	defer func() {
		os.Remove(e.tempPath)
		e.tempPath = ""
	}()

	if err := e.cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg encoding failed: %w\nstderr: %s", err, e.stderr.String())
	}

	data, err := os.ReadFile(e.tempPath)
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	return data, nil
}

// FrameCount returns the number of frames written since Begin.
func (e *Encoder) FrameCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameCount
}

// Ensure Encoder implements ports.VideoEncoder
var _ ports.VideoEncoder = (*Encoder)(nil)
