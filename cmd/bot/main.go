// ====================================
// File: cmd/bot/main.go
// ====================================
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gsnode/solana-telegram-trading-bot/internal/bot"
	"github.com/gsnode/solana-telegram-trading-bot/internal/config"
	"github.com/gsnode/solana-telegram-trading-bot/internal/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// .env is optional; variables may come straight from the shell.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging

	zlog, err := logger.New(logCfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	zlog.Info("🚀 Starting Solana trading bot")

	runner := bot.NewRunner(cfg, zlog)
	if err := runner.Initialize(ctx); err != nil {
		zlog.Fatal("Failed to initialize bot", zap.Error(err))
	}

	if err := runner.Run(ctx); err != nil {
		zlog.Error("Bot execution error", zap.Error(err))
	}

	runner.Shutdown()
}
