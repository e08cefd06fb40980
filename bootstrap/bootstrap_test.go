package bootstrap

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/chunkscribe/config"
	"github.com/kbukum/chunkscribe/logger"
)

type testConfig struct {
	config.ServiceConfig
}

func newTestConfig(name, version string) *testConfig {
	return &testConfig{
		ServiceConfig: config.ServiceConfig{
			Name:        name,
			Version:     version,
			Environment: "development",
		},
	}
}

func newTestApp(t *testing.T) *App[*testConfig] {
	t.Helper()
	app, err := NewApp(newTestConfig("chunkscribe", "1.0.0"), WithLogger(logger.NewNop()), WithGracefulTimeout(time.Second))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "chunkscribe" || app.Version != "1.0.0" {
		t.Errorf("unexpected identity %q %q", app.Name, app.Version)
	}
	if app.Cfg.Name != "chunkscribe" {
		t.Errorf("expected typed config, got %q", app.Cfg.Name)
	}
	if app.stopTimeout != time.Second {
		t.Errorf("stop timeout = %v", app.stopTimeout)
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	_, err := NewApp(&testConfig{ServiceConfig: config.ServiceConfig{Environment: "production"}}, WithLogger(logger.NewNop()))
	if err == nil || !strings.Contains(err.Error(), "config.name is required") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRun_LifecycleOrder(t *testing.T) {
	app := newTestApp(t)
	var order []string
	app.OnConfigure(func(_ context.Context, a *App[*testConfig]) error {
		order = append(order, "configure:"+a.Cfg.Name)
		return nil
	})
	app.OnStart(func(context.Context) error { order = append(order, "start-1"); return nil })
	app.OnStart(func(context.Context) error { order = append(order, "start-2"); return nil })
	app.OnReady(func(context.Context) error { order = append(order, "ready"); return nil })
	app.OnStop(func(context.Context) error { order = append(order, "stop-1"); return nil })
	app.OnStop(func(context.Context) error { order = append(order, "stop-2"); return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"configure:chunkscribe", "start-1", "start-2", "ready", "stop-2", "stop-1"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestRun_StartFailureStillStops(t *testing.T) {
	app := newTestApp(t)
	stopped := false
	app.OnStop(func(context.Context) error { stopped = true; return nil })
	app.OnStart(func(context.Context) error { return errors.New("port in use") })

	err := app.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "port in use") {
		t.Fatalf("expected start error, got %v", err)
	}
	if !stopped {
		t.Fatal("stop hooks should run after a failed start")
	}
}

func TestStop_RunsAllHooksAndReportsFirstError(t *testing.T) {
	app := newTestApp(t)
	calls := 0
	app.OnStop(func(context.Context) error { calls++; return errors.New("first registered") })
	app.OnStop(func(context.Context) error { calls++; return errors.New("last registered") })

	err := app.Shutdown(context.Background())
	if calls != 2 {
		t.Fatalf("expected both hooks to run, got %d", calls)
	}
	if err == nil || !strings.Contains(err.Error(), "last registered") {
		t.Fatalf("expected the first failing hook in stop order, got %v", err)
	}
}

func TestStop_HookContextHasDeadline(t *testing.T) {
	app := newTestApp(t)
	app.OnStop(func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("no deadline")
		}
		return nil
	})
	if err := app.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestNewApp_DefaultStopTimeout(t *testing.T) {
	app, err := NewApp(newTestConfig("chunkscribe", ""), WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	if app.stopTimeout != defaultStopTimeout {
		t.Errorf("stop timeout = %v, want %v", app.stopTimeout, defaultStopTimeout)
	}
}

func TestRun_ReadyFailureSkipsWait(t *testing.T) {
	app := newTestApp(t)
	app.OnReady(func(context.Context) error { return errors.New("routes") })

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()
	select {
	case err := <-done:
		if err == nil || !strings.HasPrefix(err.Error(), "ready:") {
			t.Fatalf("expected ready error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run blocked after a failed ready hook")
	}
}
