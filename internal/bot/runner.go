// internal/bot/runner.go
package bot

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gsnode/solana-telegram-trading-bot/internal/blockchain/solana"
	"github.com/gsnode/solana-telegram-trading-bot/internal/config"
	"github.com/gsnode/solana-telegram-trading-bot/internal/dex/screener"
	"github.com/gsnode/solana-telegram-trading-bot/internal/logger"
	"github.com/gsnode/solana-telegram-trading-bot/internal/monitor"
	"github.com/gsnode/solana-telegram-trading-bot/internal/session"
)

// Runner owns the lifecycle of every subsystem: it wires them together at
// startup, runs the dispatch loop and tears everything down on a signal.
type Runner struct {
	logger     *logger.Logger
	config     *config.Config
	store      *session.Store
	ledger     *solana.Client
	oracle     *screener.Client
	engine     *Engine
	transport  *Transport
	watcher    *monitor.Watcher
	shutdown   *ShutdownHandler
	shutdownCh chan os.Signal
}

func NewRunner(cfg *config.Config, log *logger.Logger) *Runner {
	return &Runner{
		logger:     log,
		config:     cfg,
		shutdownCh: make(chan os.Signal, 1),
	}
}

// Initialize wires the subsystems in dependency order. The Telegram transport
// comes up last so a failing backend never leaves a half-connected bot.
func (r *Runner) Initialize(ctx context.Context) error {
	bootLog := r.logger.WithOperation("bootstrap")

	ledger, err := solana.NewClient(r.config.RPCList, r.config.DexWallet, r.logger.WithComponent("blockchain"))
	if err != nil {
		return fmt.Errorf("failed to initialize ledger client: %w", err)
	}
	r.ledger = ledger

	r.store = session.NewStore(r.logger.WithComponent("session"))
	r.oracle = screener.NewClient(r.config.ScreenerURL, r.config.ChainID, r.logger.WithComponent("dex"))

	actions := NewActions(r.store, r.ledger, r.oracle, r.logger.WithComponent("bot"))
	r.engine = NewEngine(r.store, actions, r.logger.WithComponent("bot"))

	transport, err := NewTransport(ctx, r.config.TelegramToken, r.config.PollTimeout, r.config.SendRate, r.logger.WithComponent("telegram"))
	if err != nil {
		return fmt.Errorf("failed to initialize telegram transport: %w", err)
	}
	r.transport = transport

	r.watcher = monitor.NewWatcher(
		r.store,
		r.oracle,
		func(ctx context.Context, userID int64, pairID string, price, threshold float64) error {
			return transport.Send(ctx, userID, Reply{Text: alertText(pairID, price, threshold)})
		},
		time.Duration(r.config.AlertInterval)*time.Second,
		r.logger.WithComponent("monitor"),
	)

	r.shutdown = NewShutdownHandler(r.logger.WithComponent("shutdown"), 30*time.Second)
	r.shutdown.Add("telegram_transport", r.transport)
	r.shutdown.AddFunc("price_watcher", func() error {
		r.watcher.Stop()
		return nil
	})

	bootLog.Info("📋 Subsystems initialized",
		zap.Int("rpc_endpoints", len(r.config.RPCList)),
		zap.Int("alert_interval_sec", r.config.AlertInterval))
	return nil
}

// Run blocks until a termination signal arrives and the dispatch workers
// have drained.
func (r *Runner) Run(ctx context.Context) error {
	signal.Notify(r.shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sig := <-r.shutdownCh
		r.logger.Info("📡 Signal received: " + sig.String())
		cancel()
	}()

	events, err := r.transport.Updates(runCtx)
	if err != nil {
		return fmt.Errorf("failed to start update polling: %w", err)
	}

	numWorkers := r.config.Workers
	if numWorkers <= 0 {
		numWorkers = 1
	}
	r.logger.Info(fmt.Sprintf("🚀 Starting dispatch with %d workers", numWorkers))

	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		r.watcher.Start()
		return nil
	})
	g.Go(func() error {
		// Unblocks the watcher loop once the run context ends.
		<-gCtx.Done()
		r.watcher.Stop()
		return nil
	})
	g.Go(func() error {
		pool := NewWorkerPool(gCtx, events, r.engine, r.transport, r.logger.WithComponent("bot"))
		pool.Start(numWorkers)
		pool.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	r.logger.Info("✅ All workers finished")
	return nil
}

// Shutdown closes registered services and flushes logs and endpoint metrics.
func (r *Runner) Shutdown() {
	r.logger.Info("👋 Bot shutting down gracefully")

	if r.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), r.shutdown.Timeout())
		defer cancel()
		r.shutdown.Shutdown(ctx)
	}

	if r.ledger != nil {
		r.ledger.LogEndpointMetrics()
	}

	if err := r.logger.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to sync logger during shutdown: %v\n", err)
	}
}
