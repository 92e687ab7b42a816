// Package server manages the HTTP server lifecycle and graceful shutdown.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/recipestore/recipestore/internal/api"
)

// DefaultShutdownTimeout bounds draining plus closing when none is configured.
const DefaultShutdownTimeout = 30 * time.Second

// ShutdownManager tracks in-flight requests and closes registered resources
// once they have drained.
type ShutdownManager struct {
	timeout time.Duration
	logger  *zap.SugaredLogger

	inFlight     atomic.Int64
	shuttingDown atomic.Bool
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	shutdownErr  error

	closers   []io.Closer
	closersMu sync.Mutex
}

// NewShutdownManager creates a shutdown manager. A zero timeout uses
// DefaultShutdownTimeout.
func NewShutdownManager(timeout time.Duration, logger *zap.SugaredLogger) *ShutdownManager {
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &ShutdownManager{
		timeout:    timeout,
		logger:     logger,
		shutdownCh: make(chan struct{}),
	}
}

// RegisterCloser adds a resource to close during shutdown. Closers run in
// reverse registration order.
func (sm *ShutdownManager) RegisterCloser(closer io.Closer) {
	sm.closersMu.Lock()
	defer sm.closersMu.Unlock()
	sm.closers = append(sm.closers, closer)
}

// ListenForSignals blocks until SIGINT, SIGTERM, ctx cancellation or an
// explicit Shutdown, then shuts down.
func (sm *ShutdownManager) ListenForSignals(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		return sm.Shutdown(context.Background(), fmt.Sprintf("received signal: %v", sig))
	case <-ctx.Done():
		return sm.Shutdown(context.Background(), "context cancelled")
	case <-sm.shutdownCh:
		return sm.shutdownErr
	}
}

// Shutdown stops accepting requests, waits for in-flight ones and closes
// every registered resource. Only the first call does any work.
func (sm *ShutdownManager) Shutdown(ctx context.Context, reason string) error {
	sm.shutdownOnce.Do(func() {
		sm.logger.Infow("Shutting down", "reason", reason, "in_flight", sm.inFlight.Load())
		sm.shuttingDown.Store(true)

		shutdownCtx, cancel := context.WithTimeout(ctx, sm.timeout)
		defer cancel()

		var err error
		if drainErr := sm.drain(shutdownCtx); drainErr != nil {
			err = multierr.Append(err, drainErr)
		}

		sm.closersMu.Lock()
		closers := sm.closers
		sm.closersMu.Unlock()

		for i := len(closers) - 1; i >= 0; i-- {
			if closeErr := closers[i].Close(); closeErr != nil {
				err = multierr.Append(err, fmt.Errorf("close failed: %w", closeErr))
			}
		}

		sm.shutdownErr = err
		if err != nil {
			sm.logger.Warnw("Shutdown finished with errors", "error", err)
		} else {
			sm.logger.Infow("Shutdown complete")
		}
		close(sm.shutdownCh)
	})

	<-sm.shutdownCh
	return sm.shutdownErr
}

func (sm *ShutdownManager) drain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if sm.inFlight.Load() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for %d in-flight requests", sm.inFlight.Load())
		case <-ticker.C:
		}
	}
}

// IsShuttingDown reports whether shutdown has begun.
func (sm *ShutdownManager) IsShuttingDown() bool {
	return sm.shuttingDown.Load()
}

// InFlightCount returns the number of requests being served.
func (sm *ShutdownManager) InFlightCount() int64 {
	return sm.inFlight.Load()
}

// Middleware tracks in-flight requests and answers 503 once shutdown has
// begun.
func (sm *ShutdownManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sm.shuttingDown.Load() {
			w.Header().Set("Connection", "close")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(api.Response{
				StatusCode: http.StatusServiceUnavailable,
				Message:    "service is shutting down",
				Body:       "",
			})
			return
		}

		sm.inFlight.Add(1)
		defer sm.inFlight.Add(-1)
		next.ServeHTTP(w, r)
	})
}

// Serve runs srv until it fails or the manager shuts down. The server is
// registered as a closer so Shutdown stops it gracefully.
func (sm *ShutdownManager) Serve(srv *http.Server) error {
	sm.RegisterCloser(CloserFunc(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), sm.timeout)
		defer cancel()
		return srv.Shutdown(ctx)
	}))

	errCh := make(chan error, 1)
	go func() {
		sm.logger.Infow("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-sm.shutdownCh:
		return nil
	}
}

// CloserFunc is an adapter to allow ordinary functions to be used as io.Closer.
type CloserFunc func() error

// Close calls the underlying function.
func (f CloserFunc) Close() error {
	return f()
}
