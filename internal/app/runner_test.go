package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cartkeeper/internal/config"
)

type blockingService struct {
	name    string
	stopped atomic.Bool
	release chan struct{}
}

func newBlockingService(name string) *blockingService {
	return &blockingService{name: name, release: make(chan struct{})}
}

func (s *blockingService) Name() string { return s.name }

func (s *blockingService) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
	case <-s.release:
	}
	return nil
}

func (s *blockingService) Stop(ctx context.Context) error {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.release)
	}
	return nil
}

type failingService struct {
	err error
}

func (s failingService) Name() string                    { return "failing" }
func (s failingService) Start(ctx context.Context) error { return s.err }
func (s failingService) Stop(ctx context.Context) error  { return nil }

func TestRunnerStopsOnContextCancel(t *testing.T) {
	svc := newBlockingService("blocking")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewRunner(svc).Run(ctx, time.Second) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancel should return nil, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("runner did not exit after cancel")
	}
	if !svc.stopped.Load() {
		t.Fatalf("service should be stopped")
	}
}

func TestRunnerReturnsFirstServiceError(t *testing.T) {
	boom := errors.New("boom")
	other := newBlockingService("other")
	err := NewRunner(other, failingService{err: boom}).Run(context.Background(), time.Second)
	if !errors.Is(err, boom) {
		t.Fatalf("want boom got %v", err)
	}
	if !other.stopped.Load() {
		t.Fatalf("sibling service should be stopped")
	}
}

func TestRunnerRejectsEmptyAndNil(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second); err == nil {
		t.Fatalf("empty runner should fail")
	}
	if err := NewRunner(nil).Run(context.Background(), time.Second); err == nil {
		t.Fatalf("nil service should fail")
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Config: &config.Config{Server: config.ServerConfig{ShutdownTimeoutSeconds: 3}}}.withDefaults()
	if opts.Mode != ModeAll || opts.ShutdownTimeout != 3*time.Second || opts.Logger == nil {
		t.Fatalf("unexpected defaults %+v", opts)
	}
	if got := (Options{}).withDefaults().ShutdownTimeout; got != defaultShutdownTimeout {
		t.Fatalf("fallback timeout want %v got %v", defaultShutdownTimeout, got)
	}
}

func TestHTTPServiceAddr(t *testing.T) {
	svc := NewHTTPService(config.ServerConfig{Host: "127.0.0.1", Port: "0", ReadHeaderTimeoutSeconds: 5}, nil)
	if svc.Addr() != "127.0.0.1:0" || svc.server.ReadHeaderTimeout != 5*time.Second || svc.server.IdleTimeout != 0 {
		t.Fatalf("unexpected server %+v", svc.server)
	}
}
