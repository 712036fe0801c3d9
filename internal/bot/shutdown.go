package bot

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CloseFunc allows using a plain function as an io.Closer.
type CloseFunc func() error

func (f CloseFunc) Close() error {
	return f()
}

// ShutdownHandler closes registered services in reverse registration order,
// each bounded by the remaining shutdown budget.
type ShutdownHandler struct {
	logger   *zap.Logger
	services []namedService
	mu       sync.Mutex
	timeout  time.Duration
}

type namedService struct {
	name   string
	closer io.Closer
}

func NewShutdownHandler(logger *zap.Logger, timeout time.Duration) *ShutdownHandler {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ShutdownHandler{
		logger:  logger,
		timeout: timeout,
	}
}

// Add registers a service for shutdown.
func (sh *ShutdownHandler) Add(name string, closer io.Closer) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.services = append(sh.services, namedService{name: name, closer: closer})
	sh.logger.Debug("Registered service for shutdown", zap.String("service", name))
}

// AddFunc registers a shutdown function.
func (sh *ShutdownHandler) AddFunc(name string, fn func() error) {
	sh.Add(name, CloseFunc(fn))
}

func (sh *ShutdownHandler) Timeout() time.Duration {
	return sh.timeout
}

// Shutdown closes all registered services LIFO. A closer that outlives ctx is
// abandoned and reported as timed out; the rest still get their turn.
func (sh *ShutdownHandler) Shutdown(ctx context.Context) {
	sh.mu.Lock()
	services := make([]namedService, len(sh.services))
	copy(services, sh.services)
	sh.mu.Unlock()

	sh.logger.Info("Starting graceful shutdown", zap.Int("services", len(services)))

	var shutdownErrors []error
	for i := len(services) - 1; i >= 0; i-- {
		svc := services[i]
		sh.logger.Info("Shutting down service", zap.String("service", svc.name))

		done := make(chan error, 1)
		go func() {
			done <- svc.closer.Close()
		}()

		select {
		case err := <-done:
			if err != nil {
				sh.logger.Error("Failed to shutdown service",
					zap.String("service", svc.name),
					zap.Error(err))
				shutdownErrors = append(shutdownErrors, fmt.Errorf("%s: %w", svc.name, err))
			} else {
				sh.logger.Info("Service shutdown complete", zap.String("service", svc.name))
			}
		case <-ctx.Done():
			sh.logger.Error("Shutdown timeout for service", zap.String("service", svc.name))
			shutdownErrors = append(shutdownErrors, fmt.Errorf("%s: shutdown timeout", svc.name))
		}
	}

	if len(shutdownErrors) > 0 {
		sh.logger.Error("Shutdown completed with errors", zap.Int("errorCount", len(shutdownErrors)))
		for _, err := range shutdownErrors {
			sh.logger.Error("Shutdown error", zap.Error(err))
		}
	} else {
		sh.logger.Info("Graceful shutdown completed successfully")
	}
}
