// Package pipeline holds the stage abstraction the orchestrator runs and the
// value types passed between them.
package pipeline

import (
	"context"
)

// Stage is one step of a job. The orchestrator owns the files and hands
// streams to stages; stages never open paths themselves.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc adapts a function to Stage.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}
