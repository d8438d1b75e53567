// Package durablestep defines the Durable Step Runtime contract the
// engine consumes (spec §2 item 4, §5, §9): a named step within a run is
// executed at-most-once on success and its result is memoised across
// retries of the enclosing run. The engine never implements retry or
// checkpoint policy itself — it only calls through this interface.
package durablestep

import "context"

// Runtime is the injected capability every executor uses for suspension
// points: network I/O, LLM calls, and database reads. Executors must
// never perform side effects outside Run.
type Runtime interface {
	// Run executes fn under the named step. If name has already succeeded
	// within runID, its memoised result is returned without calling fn
	// again.
	Run(ctx context.Context, runID, name string, fn func(ctx context.Context) (any, error)) (any, error)
}

// Step is a handle bound to one run, used by an executor so callers don't
// have to thread runID through every call.
type Step struct {
	runtime Runtime
	runID   string
}

// NewStep binds a Runtime to a specific run.
func NewStep(runtime Runtime, runID string) *Step {
	return &Step{runtime: runtime, runID: runID}
}

// Run executes fn under the named step for this step's run.
func (s *Step) Run(ctx context.Context, name string, fn func(ctx context.Context) (any, error)) (any, error) {
	return s.runtime.Run(ctx, s.runID, name, fn)
}

// RunTyped is a small generic convenience over Run for callers that know
// the concrete return type of fn.
func RunTyped[T any](ctx context.Context, s *Step, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	result, err := s.Run(ctx, name, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, nil
	}
	return typed, nil
}
