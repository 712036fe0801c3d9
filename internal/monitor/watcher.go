package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gsnode/solana-telegram-trading-bot/internal/dex/screener"
	"github.com/gsnode/solana-telegram-trading-bot/internal/session"
)

// Oracle is the market data surface the watcher polls.
type Oracle interface {
	GetPairInfo(ctx context.Context, pairID string) screener.PairInfo
}

// NotifyFunc delivers one triggered alert to a user.
type NotifyFunc func(ctx context.Context, userID int64, pairID string, price, threshold float64) error

// Watcher periodically scans alert subscriptions and notifies users whose
// pair price reached their threshold. Alerts stay armed after firing, so a
// price that keeps exceeding the threshold notifies again on every cycle.
type Watcher struct {
	store    *session.Store
	oracle   Oracle
	notify   NotifyFunc
	interval time.Duration
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewWatcher(store *session.Store, oracle Oracle, notify NotifyFunc, interval time.Duration, logger *zap.Logger) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		store:    store,
		oracle:   oracle,
		notify:   notify,
		interval: interval,
		logger:   logger.Named("price_watcher"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start runs the scan loop until Stop is called. The first scan runs
// immediately instead of waiting out a full interval.
func (w *Watcher) Start() {
	w.logger.Info("Starting price watcher", zap.Duration("interval", w.interval))

	w.scan(w.ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.scan(w.ctx)
		case <-w.ctx.Done():
			w.logger.Debug("Price watcher stopped")
			return
		}
	}
}

// Stop stops the watcher loop.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
}

// scan walks a snapshot of the current subscriptions. Sessions mutated after
// the snapshot is taken are picked up on the next cycle. A zero or missing
// price never fires.
func (w *Watcher) scan(ctx context.Context) {
	for _, sub := range w.store.AllSubscriptions() {
		info := w.oracle.GetPairInfo(ctx, sub.PairID)
		if !info.HasPrice || info.Price <= 0 {
			continue
		}
		if info.Price < sub.Threshold {
			continue
		}

		if err := w.notify(ctx, sub.UserID, sub.PairID, info.Price, sub.Threshold); err != nil {
			w.logger.Error("Failed to send alert",
				zap.Int64("user_id", sub.UserID),
				zap.Error(err))
			continue
		}

		w.logger.Info("Alert delivered",
			zap.Int64("user_id", sub.UserID),
			zap.String("pair", sub.PairID),
			zap.Float64("price", info.Price),
			zap.Float64("threshold", sub.Threshold))
	}
}
