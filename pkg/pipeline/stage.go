// Package pipeline defines the units of work the orchestrator runs.
package pipeline

import (
	"context"
)

// Loop is a long-lived worker that runs until its context is cancelled or it
// hits a condition it cannot recover from.
type Loop interface {
	Run(ctx context.Context) error
}

// LoopFunc is a function adapter for the Loop interface.
type LoopFunc func(ctx context.Context) error

// Run implements Loop.
func (f LoopFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Stage is a one-shot step that takes an input and produces an output.
type Stage[In, Out any] interface {
	// Execute runs the stage with the given input and returns the output.
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc is a function adapter for Stage interface.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

// Execute implements Stage interface.
func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}
