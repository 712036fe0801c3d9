// internal/bot/worker.go
package bot

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Sender delivers engine replies back to the chat transport.
type Sender interface {
	Send(ctx context.Context, userID int64, reply Reply) error
}

// WorkerPool fans inbound chat events out to a fixed set of dispatch
// workers. Replies produced by one event are sent in order by the worker
// that handled it.
type WorkerPool struct {
	wg     sync.WaitGroup
	ctx    context.Context
	events <-chan Event
	engine *Engine
	sender Sender
	logger *zap.Logger
}

func NewWorkerPool(
	ctx context.Context,
	events <-chan Event,
	engine *Engine,
	sender Sender,
	logger *zap.Logger,
) *WorkerPool {
	return &WorkerPool{
		ctx:    ctx,
		events: events,
		engine: engine,
		sender: sender,
		logger: logger,
	}
}

func (wp *WorkerPool) Start(n int) {
	for i := 0; i < n; i++ {
		wp.wg.Add(1)
		go wp.worker(i + 1)
	}
}

func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	logger := wp.logger.With(zap.Int("worker_id", id))
	logger.Info("Worker started")

	for {
		select {
		case <-wp.ctx.Done():
			logger.Info("Worker shutting down due to context cancellation")
			return
		case ev, ok := <-wp.events:
			if !ok {
				logger.Info("Event channel closed")
				return
			}
			wp.handleEvent(wp.ctx, ev, logger)
		}
	}
}

func (wp *WorkerPool) handleEvent(ctx context.Context, ev Event, logger *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Event handler panic",
				zap.Int64("user_id", ev.GetUserID()),
				zap.Any("panic", r))
		}
	}()

	for _, reply := range wp.engine.Dispatch(ctx, ev) {
		if err := wp.sender.Send(ctx, ev.GetUserID(), reply); err != nil {
			logger.Error("Failed to send reply",
				zap.Int64("user_id", ev.GetUserID()),
				zap.Error(err))
		}
	}
}
