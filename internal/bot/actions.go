// internal/bot/actions.go
package bot

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gsnode/solana-telegram-trading-bot/internal/blockchain"
	"github.com/gsnode/solana-telegram-trading-bot/internal/dex/screener"
	"github.com/gsnode/solana-telegram-trading-bot/internal/session"
	"github.com/gsnode/solana-telegram-trading-bot/internal/wallet"
)

// Precondition errors reported before any ledger call is attempted.
var (
	ErrNoWallet           = errors.New("wallet not connected")
	ErrNoPair             = errors.New("pair not set")
	ErrNoPrice            = errors.New("price unavailable")
	ErrNoPositions        = errors.New("no open positions")
	ErrNoPositionsForPair = errors.New("no positions for current pair")
	ErrNothingToSell      = errors.New("nothing to sell for current pair")
	ErrInvalidAmount      = errors.New("invalid amount")
)

// Oracle is the market data surface the actions consume.
type Oracle interface {
	GetPairInfo(ctx context.Context, pairID string) screener.PairInfo
}

// Actions executes the user-triggered trading operations against the session
// store, the ledger and the price oracle. Each method reads a session
// snapshot, talks to the backends at most once and commits results through
// the store's serialized mutation path.
type Actions struct {
	store  *session.Store
	ledger blockchain.Client
	oracle Oracle
	logger *zap.Logger
}

func NewActions(store *session.Store, ledger blockchain.Client, oracle Oracle, logger *zap.Logger) *Actions {
	return &Actions{
		store:  store,
		ledger: ledger,
		oracle: oracle,
		logger: logger.Named("actions"),
	}
}

type ConnectResult struct {
	Masked string
}

// ConnectWallet decodes the base58 private key and binds the wallet to the
// session, replacing any previously connected one. The session is left
// untouched when the key does not decode.
func (a *Actions) ConnectWallet(userID int64, secret string) (ConnectResult, error) {
	w, err := wallet.NewWallet(secret)
	if err != nil {
		a.logger.Warn("Wallet connect rejected", zap.Int64("user_id", userID), zap.Error(err))
		return ConnectResult{}, err
	}

	a.store.Mutate(userID, func(s *session.Session) {
		s.Wallet = w
	})

	a.logger.Info("Wallet connected",
		zap.Int64("user_id", userID),
		zap.String("wallet", w.Masked()))
	return ConnectResult{Masked: w.Masked()}, nil
}

// SetPair selects the active trading pair. Existing positions and alert
// thresholds are kept as they are.
func (a *Actions) SetPair(userID int64, pairID string) {
	a.store.Mutate(userID, func(s *session.Session) {
		s.SelectedPair = pairID
	})
	a.logger.Info("Pair selected", zap.Int64("user_id", userID), zap.String("pair", pairID))
}

// SetAlert arms the price alert for the session's current pair.
func (a *Actions) SetAlert(userID int64, threshold float64) {
	a.store.Mutate(userID, func(s *session.Session) {
		s.AlertThreshold = threshold
		s.HasAlert = true
	})
	a.logger.Info("Alert armed", zap.Int64("user_id", userID), zap.Float64("threshold", threshold))
}

type PriceResult struct {
	PairID string
	Price  float64
	Icon   string
}

// Price resolves the current USD price for the session's pair.
func (a *Actions) Price(ctx context.Context, userID int64) (PriceResult, error) {
	snap := a.store.GetOrCreate(userID)
	if snap.SelectedPair == "" {
		return PriceResult{}, ErrNoPair
	}

	info := a.oracle.GetPairInfo(ctx, snap.SelectedPair)
	if !info.HasPrice {
		return PriceResult{}, ErrNoPrice
	}
	return PriceResult{PairID: snap.SelectedPair, Price: info.Price, Icon: info.Icon}, nil
}

type TradeResult struct {
	Amount    float64
	Signature string
	Wallet    string
}

// Buy submits a transfer of amountSOL and records the resulting position
// against the session's current pair. The purchase price is captured before
// the transfer; when the oracle has no price the position records 0.0.
func (a *Actions) Buy(ctx context.Context, userID int64, amountSOL float64) (TradeResult, error) {
	snap := a.store.GetOrCreate(userID)
	if snap.Wallet == nil {
		return TradeResult{}, ErrNoWallet
	}
	if amountSOL <= 0 {
		return TradeResult{}, ErrInvalidAmount
	}

	opLogger := a.logger.With(
		zap.String("operation", "buy"),
		zap.String("correlation_id", uuid.New().String()),
		zap.Int64("user_id", userID),
	)

	price := 0.0
	if snap.SelectedPair != "" {
		if info := a.oracle.GetPairInfo(ctx, snap.SelectedPair); info.HasPrice {
			price = info.Price
		}
	}

	sig, err := a.ledger.SubmitTransfer(ctx, amountSOL, snap.Wallet)
	if err != nil {
		opLogger.Error("Buy failed", zap.Error(err))
		return TradeResult{}, err
	}

	pos := session.Position{
		Amount:        amountSOL,
		PurchasePrice: price,
		PairID:        snap.SelectedPair,
		Signature:     sig.String(),
		Timestamp:     time.Now(),
	}
	a.store.Mutate(userID, func(s *session.Session) {
		s.Positions = append(s.Positions, pos)
	})

	opLogger.Info("Buy executed",
		zap.Float64("amount_sol", amountSOL),
		zap.Float64("price_usd", price),
		zap.String("signature", sig.String()))

	return TradeResult{
		Amount:    amountSOL,
		Signature: sig.String(),
		Wallet:    snap.Wallet.PublicKey.String(),
	}, nil
}

// Sell submits a transfer for the given token amount. Recorded positions are
// not reduced here; only SellAll clears them.
func (a *Actions) Sell(ctx context.Context, userID int64, amountTokens float64) (TradeResult, error) {
	snap := a.store.GetOrCreate(userID)
	if snap.Wallet == nil {
		return TradeResult{}, ErrNoWallet
	}
	if amountTokens <= 0 {
		return TradeResult{}, ErrInvalidAmount
	}

	opLogger := a.logger.With(
		zap.String("operation", "sell"),
		zap.String("correlation_id", uuid.New().String()),
		zap.Int64("user_id", userID),
	)

	sig, err := a.ledger.SubmitTransfer(ctx, amountTokens, snap.Wallet)
	if err != nil {
		opLogger.Error("Sell failed", zap.Error(err))
		return TradeResult{}, err
	}

	opLogger.Info("Sell executed",
		zap.Float64("amount_tokens", amountTokens),
		zap.String("signature", sig.String()))

	return TradeResult{
		Amount:    amountTokens,
		Signature: sig.String(),
		Wallet:    snap.Wallet.PublicKey.String(),
	}, nil
}

type SellAllResult struct {
	TotalAmount float64
	Signature   string
	Wallet      string
}

// SellAll liquidates every position recorded for the session's current pair
// in one transfer. Positions are removed only after the transfer succeeds;
// positions for other pairs are untouched.
func (a *Actions) SellAll(ctx context.Context, userID int64) (SellAllResult, error) {
	snap := a.store.GetOrCreate(userID)
	if snap.Wallet == nil {
		return SellAllResult{}, ErrNoWallet
	}

	pair := snap.SelectedPair
	total := 0.0
	for _, pos := range snap.Positions {
		if pos.PairID == pair {
			total += pos.Amount
		}
	}
	if total == 0 {
		return SellAllResult{}, ErrNothingToSell
	}

	opLogger := a.logger.With(
		zap.String("operation", "sell_all"),
		zap.String("correlation_id", uuid.New().String()),
		zap.Int64("user_id", userID),
	)

	sig, err := a.ledger.SubmitTransfer(ctx, total, snap.Wallet)
	if err != nil {
		opLogger.Error("Sell all failed", zap.Error(err))
		return SellAllResult{}, err
	}

	a.store.Mutate(userID, func(s *session.Session) {
		kept := s.Positions[:0]
		for _, pos := range s.Positions {
			if pos.PairID != pair {
				kept = append(kept, pos)
			}
		}
		s.Positions = kept
	})

	opLogger.Info("Sell all executed",
		zap.String("pair", pair),
		zap.Float64("total_tokens", total),
		zap.String("signature", sig.String()))

	return SellAllResult{
		TotalAmount: total,
		Signature:   sig.String(),
		Wallet:      snap.Wallet.PublicKey.String(),
	}, nil
}

type PositionLine struct {
	Position session.Position
	PnL      float64
}

type PositionsReport struct {
	PairID   string
	Price    float64
	Lines    []PositionLine
	TotalPnL float64
}

// Positions computes the unrealized PnL of every position recorded for the
// session's current pair at the oracle's current price.
func (a *Actions) Positions(ctx context.Context, userID int64) (PositionsReport, error) {
	snap := a.store.GetOrCreate(userID)
	if len(snap.Positions) == 0 {
		return PositionsReport{}, ErrNoPositions
	}
	if snap.SelectedPair == "" {
		return PositionsReport{}, ErrNoPair
	}

	var matching []session.Position
	for _, pos := range snap.Positions {
		if pos.PairID == snap.SelectedPair {
			matching = append(matching, pos)
		}
	}
	if len(matching) == 0 {
		return PositionsReport{}, ErrNoPositionsForPair
	}

	info := a.oracle.GetPairInfo(ctx, snap.SelectedPair)
	if !info.HasPrice {
		return PositionsReport{}, ErrNoPrice
	}

	report := PositionsReport{PairID: snap.SelectedPair, Price: info.Price}
	for _, pos := range matching {
		pnl := (info.Price - pos.PurchasePrice) * pos.Amount
		report.TotalPnL += pnl
		report.Lines = append(report.Lines, PositionLine{Position: pos, PnL: pnl})
	}
	return report, nil
}

type BalanceResult struct {
	Wallet string
	SOL    float64
}

// Balance reports the wallet's SOL balance. Query failures degrade to a zero
// balance instead of surfacing an error to the user.
func (a *Actions) Balance(ctx context.Context, userID int64) (BalanceResult, error) {
	snap := a.store.GetOrCreate(userID)
	if snap.Wallet == nil {
		return BalanceResult{}, ErrNoWallet
	}

	bal, err := a.ledger.GetBalance(ctx, snap.Wallet.PublicKey)
	if err != nil {
		a.logger.Warn("Balance query failed", zap.Int64("user_id", userID), zap.Error(err))
		bal = 0
	}
	return BalanceResult{Wallet: snap.Wallet.PublicKey.String(), SOL: bal}, nil
}
