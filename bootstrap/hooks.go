package bootstrap

import (
	"context"
	"fmt"
)

// Hook is a start, ready or stop callback.
type Hook func(ctx context.Context) error

// OnStart registers hooks that run after configuration, in order. Listeners
// are started here.
func (a *App[C]) OnStart(hooks ...Hook) {
	a.start = append(a.start, hooks...)
}

// OnReady registers hooks that run once every start hook succeeded.
func (a *App[C]) OnReady(hooks ...Hook) {
	a.ready = append(a.ready, hooks...)
}

// OnStop registers hooks that run during graceful shutdown. They run in
// reverse registration order, so whatever started last stops first.
func (a *App[C]) OnStop(hooks ...Hook) {
	a.stop = append(a.stop, hooks...)
}

// runHooks stops at the first failing hook.
func runHooks(ctx context.Context, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("hook %d: %w", i, err)
		}
	}
	return nil
}

// runHooksReverse executes every hook in reverse order and returns the
// first error; later hooks still run.
func runHooksReverse(ctx context.Context, hooks []Hook) error {
	var first error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil && first == nil {
			first = fmt.Errorf("stop hook %d: %w", i, err)
		}
	}
	return first
}
