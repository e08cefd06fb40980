package bootstrap

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/chunkscribe/logger"
)

// Run configures, starts and readies the app, blocks until SIGINT, SIGTERM
// or ctx is done, then stops it. Stop hooks also run when startup fails
// part way through.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.boot(ctx); err != nil {
		_ = a.shutdown()
		return err
	}

	sigCtx, release := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	a.Logger.Info("Ready, waiting for shutdown signal")
	<-sigCtx.Done()
	release()
	if ctx.Err() == nil {
		a.Logger.Info("Shutdown signal received")
	}
	return a.shutdown()
}

// Shutdown runs the stop hooks for callers that drive the app themselves.
func (a *App[C]) Shutdown(context.Context) error {
	return a.shutdown()
}

func (a *App[C]) boot(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("Starting", logger.Fields("name", a.Name, "version", a.Version))

	for _, fn := range a.configure {
		if err := fn(ctx, a); err != nil {
			return fmt.Errorf("configure: %w", err)
		}
	}
	if err := runHooks(ctx, a.start); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if err := runHooks(ctx, a.ready); err != nil {
		return fmt.Errorf("ready: %w", err)
	}

	a.Logger.Info("Started", logger.MergeWithDuration(nil, time.Since(began)))
	return nil
}

func (a *App[C]) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.stopTimeout)
	defer cancel()

	a.Logger.Info("Stopping", logger.Fields("timeout", a.stopTimeout.String()))
	if err := runHooksReverse(ctx, a.stop); err != nil {
		a.Logger.Error("Stopped with errors", logger.MergeWithError(nil, err))
		return err
	}
	a.Logger.Info("Stopped")
	return nil
}
