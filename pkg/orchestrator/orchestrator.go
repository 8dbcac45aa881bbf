// Package orchestrator runs the capture pipeline loops for one session.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/user/vidcam/pkg/capture"
	"github.com/user/vidcam/pkg/decoder"
	"github.com/user/vidcam/pkg/pipeline"
	"github.com/user/vidcam/pkg/ports"
	"github.com/user/vidcam/pkg/summarizer"
	"github.com/user/vidcam/pkg/timelapse"
)

// Config contains the session settings the orchestrator itself needs.
type Config struct {
	URL    string
	Width  int
	Height int

	CaptureDir   string
	TimelapseDir string
	AutoCompile  bool

	// SummaryPath is where the session report is written; empty disables it.
	SummaryPath string
}

// DecoderLoop is the stream supervisor.
type DecoderLoop interface {
	pipeline.Loop
	Stats() decoder.Stats
}

// CaptureLoop is the periodic frame saver.
type CaptureLoop interface {
	pipeline.Loop
	Stats() capture.Stats
}

// Components are the workers of a session. Preview, Compile and Summary are
// optional.
type Components struct {
	Decoder DecoderLoop
	Capture CaptureLoop
	Preview pipeline.Loop
	Compile pipeline.Stage[pipeline.CompileInput, timelapse.Result]
	Summary *summarizer.Writer
}

// RunResult describes a finished session.
type RunResult struct {
	StartedAt time.Time
	EndedAt   time.Time

	Decoder decoder.Stats
	Capture capture.Stats

	// CaptureHalted is set when the capture loop gave up after repeated failures.
	CaptureHalted bool

	// Timelapse is set when a timelapse was compiled at shutdown.
	Timelapse *timelapse.Result
}

// Orchestrator coordinates the pipeline loops.
type Orchestrator struct {
	c      Components
	cfg    Config
	logger ports.Logger
	now    func() time.Time
}

// New creates a new Orchestrator.
func New(c Components, cfg Config, logger ports.Logger) *Orchestrator {
	return &Orchestrator{
		c:      c,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Run starts every loop and blocks until ctx is cancelled. It then waits for
// the loops to stop, compiles the timelapse when AutoCompile is set, and
// writes the session summary. A loop that stops early on its own is logged
// and leaves the others running.
func (o *Orchestrator) Run(ctx context.Context) (RunResult, error) {
	result := RunResult{StartedAt: o.now()}

	o.logger.Info("Starting pipeline")

	type namedLoop struct {
		name string
		loop pipeline.Loop
	}
	loops := []namedLoop{
		{"decoder", o.c.Decoder},
		{"capture", o.c.Capture},
	}
	if o.c.Preview != nil {
		loops = append(loops, namedLoop{"preview", o.c.Preview})
	}

	var (
		wg     sync.WaitGroup
		halted bool
		mu     sync.Mutex
	)
	for _, l := range loops {
		wg.Add(1)
		go func(l namedLoop) {
			defer wg.Done()
			err := l.loop.Run(ctx)
			if err == nil || ctx.Err() != nil {
				return
			}
			o.logger.Warn("%s loop exited: %v", l.name, err)
			if errors.Is(err, capture.ErrCircuitOpen) {
				mu.Lock()
				halted = true
				mu.Unlock()
			}
		}(l)
	}

	<-ctx.Done()
	o.logger.Info("Interrupted, shutting down...")
	wg.Wait()

	result.EndedAt = o.now()
	result.Decoder = o.c.Decoder.Stats()
	result.Capture = o.c.Capture.Stats()
	result.CaptureHalted = halted

	var compileErr error
	if o.cfg.AutoCompile && o.c.Compile != nil {
		result.Timelapse, compileErr = o.compile(context.WithoutCancel(ctx))
	}

	if o.c.Summary != nil && o.cfg.SummaryPath != "" {
		if err := o.c.Summary.Write(o.cfg.SummaryPath, o.summary(result)); err != nil {
			o.logger.Warn("Failed to write summary: %v", err)
		} else {
			o.logger.Info("Summary saved to %s", o.cfg.SummaryPath)
		}
	}

	o.logger.Info("Pipeline stopped")
	return result, compileErr
}

func (o *Orchestrator) compile(ctx context.Context) (*timelapse.Result, error) {
	o.logger.Info("Compiling timelapse from %s", o.cfg.CaptureDir)

	res, err := o.c.Compile.Execute(ctx, pipeline.CompileInput{
		FramesDir: o.cfg.CaptureDir,
		OutputDir: o.cfg.TimelapseDir,
	})
	if errors.Is(err, timelapse.ErrNoFrames) {
		o.logger.Info("No captures to compile")
		return nil, nil
	}
	if err != nil {
		o.logger.Error("Failed to compile timelapse: %v", err)
		return nil, fmt.Errorf("compile timelapse: %w", err)
	}

	o.logger.Info("Output saved to %s", res.Path)
	return &res, nil
}

func (o *Orchestrator) summary(r RunResult) *summarizer.Summary {
	b := summarizer.NewBuilder().
		WithStream(o.cfg.URL, o.cfg.Width, o.cfg.Height).
		WithSession(r.StartedAt, r.EndedAt).
		WithDecoder(summarizer.DecoderInfo{
			Sessions: r.Decoder.Attempts,
			Failures: r.Decoder.Failures,
			Frames:   r.Decoder.Frames,
		}).
		WithCapture(summarizer.CaptureInfo{
			Dir:      o.cfg.CaptureDir,
			Attempts: r.Capture.Attempts,
			Saved:    r.Capture.Successes,
			Failures: r.Capture.Failures,
			Halted:   r.CaptureHalted,
		})
	if r.Timelapse != nil {
		b.WithTimelapse(summarizer.TimelapseInfo{
			Path:     r.Timelapse.Path,
			Frames:   r.Timelapse.Frames,
			Duration: r.Timelapse.Info.Duration,
		})
	}
	return b.Build()
}
