// Package pipeline holds the side-stage abstraction used by the
// orchestrator and the records passed between them.
package pipeline

import "context"

// Stage is a unit of work run outside the frame loop, such as rendering
// the preview or probing the finished lanes.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc adapts a function to Stage.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}
