package common

import "context"

// Executor runs fn on the goroutine that owns the simulation state.
// Handlers go through it so domain objects are never touched concurrently.
type Executor interface {
	Do(ctx context.Context, fn func() error) error
}

// InlineExecutor runs fn on the calling goroutine. Used by one-shot CLI
// commands and tests where no simulation loop is running.
type InlineExecutor struct{}

func (InlineExecutor) Do(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn()
}
