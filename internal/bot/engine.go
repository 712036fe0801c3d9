// internal/bot/engine.go
package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gsnode/solana-telegram-trading-bot/internal/blockchain"
	"github.com/gsnode/solana-telegram-trading-bot/internal/session"
)

// Engine resolves classified chat events against per-user conversation state
// and turns them into trade actions and replies. Commands and buttons route
// directly; free text is interpreted through the session's input mode, which
// is consumed before the text is acted on.
type Engine struct {
	store   *session.Store
	actions *Actions
	logger  *zap.Logger
}

func NewEngine(store *session.Store, actions *Actions, logger *zap.Logger) *Engine {
	return &Engine{
		store:   store,
		actions: actions,
		logger:  logger.Named("engine"),
	}
}

// Dispatch handles one inbound event and returns the replies to send, in order.
func (e *Engine) Dispatch(ctx context.Context, ev Event) []Reply {
	switch ev := ev.(type) {
	case CommandEvent:
		return e.handleCommand(ctx, ev)
	case ButtonEvent:
		return e.handleButton(ctx, ev)
	case TextEvent:
		return e.handleText(ctx, ev)
	default:
		e.logger.Warn("Dropping event of unknown type", zap.Int64("user_id", ev.GetUserID()))
		return nil
	}
}

func (e *Engine) handleCommand(ctx context.Context, ev CommandEvent) []Reply {
	userID := ev.UserID

	switch ev.Name {
	case "start":
		return []Reply{mainMenu(e.store.GetOrCreate(userID))}

	case "connectwallet":
		if len(ev.Args) < 1 {
			e.await(userID, session.ModeAwaitingWalletKey)
			return []Reply{{Text: promptWalletKey}}
		}
		return e.connectWallet(userID, ev.Args[0])

	case "setpair":
		if len(ev.Args) < 1 {
			e.await(userID, session.ModeAwaitingPairAddress)
			return []Reply{{Text: promptPairAddress}}
		}
		return e.setPair(userID, ev.Args[0])

	case "price":
		return e.price(ctx, userID)

	case "buy":
		if e.store.GetOrCreate(userID).Wallet == nil {
			return []Reply{{Text: msgConnectBeforeBuying}}
		}
		return []Reply{buyMenu()}

	case "sell":
		if e.store.GetOrCreate(userID).Wallet == nil {
			return []Reply{{Text: msgConnectBeforeSelling}}
		}
		return []Reply{sellMenu()}

	case "balance":
		return e.balance(ctx, userID)

	case "positions":
		return e.positions(ctx, userID)

	case "alert":
		if len(ev.Args) < 1 {
			e.await(userID, session.ModeAwaitingAlertPrice)
			return []Reply{{Text: promptAlertPrice}}
		}
		return e.setAlert(userID, ev.Args[0], msgInvalidAlertCommand)

	default:
		// Unregistered commands are dropped without a reply.
		return nil
	}
}

func (e *Engine) handleButton(ctx context.Context, ev ButtonEvent) []Reply {
	userID := ev.UserID

	switch ev.Token {
	case tokenMenuConnectWallet:
		e.await(userID, session.ModeAwaitingWalletKey)
		return []Reply{{Text: promptWalletKey}}
	case tokenMenuSetPair:
		e.await(userID, session.ModeAwaitingPairAddress)
		return []Reply{{Text: promptPairAddress}}
	case tokenMenuBuy:
		if e.store.GetOrCreate(userID).Wallet == nil {
			return []Reply{{Text: msgConnectBeforeBuying}}
		}
		return []Reply{buyMenu()}
	case tokenMenuSell:
		if e.store.GetOrCreate(userID).Wallet == nil {
			return []Reply{{Text: msgConnectBeforeSelling}}
		}
		return []Reply{sellMenu()}
	case tokenMenuBalance:
		return e.balance(ctx, userID)
	case tokenMenuPositions:
		return e.positions(ctx, userID)
	case tokenMenuAlert:
		e.await(userID, session.ModeAwaitingAlertPrice)
		return []Reply{{Text: promptAlertPrice}}
	}

	if strings.HasPrefix(ev.Token, buyTokenPrefix) || strings.HasPrefix(ev.Token, sellTokenPrefix) {
		return e.handleTradeButton(ctx, ev)
	}

	e.logger.Debug("Dropping unknown callback token",
		zap.Int64("user_id", userID),
		zap.String("token", ev.Token))
	return nil
}

// handleTradeButton covers the buy_* and sell_* keyboards. All of them
// require a connected wallet, including the custom-amount prompts.
func (e *Engine) handleTradeButton(ctx context.Context, ev ButtonEvent) []Reply {
	userID := ev.UserID
	if e.store.GetOrCreate(userID).Wallet == nil {
		return []Reply{{Text: msgConnectBeforeOperating}}
	}

	switch {
	case ev.Token == tokenBuyCustom:
		e.await(userID, session.ModeAwaitingBuyAmount)
		return []Reply{{Text: promptBuyAmount}}

	case ev.Token == tokenSellCustom:
		e.await(userID, session.ModeAwaitingSellAmount)
		return []Reply{{Text: promptSellAmount}}

	case ev.Token == tokenSellAll:
		return e.sellAll(ctx, userID)

	case strings.HasPrefix(ev.Token, buyTokenPrefix):
		amount, err := strconv.ParseFloat(strings.TrimPrefix(ev.Token, buyTokenPrefix), 64)
		if err != nil {
			e.logger.Warn("Malformed buy token", zap.String("token", ev.Token))
			return nil
		}
		return e.buy(ctx, userID, amount)

	case strings.HasPrefix(ev.Token, sellTokenPrefix):
		amount, err := strconv.ParseFloat(strings.TrimPrefix(ev.Token, sellTokenPrefix), 64)
		if err != nil {
			e.logger.Warn("Malformed sell token", zap.String("token", ev.Token))
			return nil
		}
		return e.sell(ctx, userID, amount)
	}

	return nil
}

func (e *Engine) handleText(ctx context.Context, ev TextEvent) []Reply {
	userID := ev.UserID

	// Consume the pending input mode before acting on the text, so a failed
	// attempt never leaves the session stuck waiting.
	var mode session.Mode
	e.store.Mutate(userID, func(s *session.Session) {
		mode = s.Mode
		s.Mode = session.ModeIdle
	})

	switch mode {
	case session.ModeAwaitingWalletKey:
		return e.connectWallet(userID, ev.Text)

	case session.ModeAwaitingPairAddress:
		return e.setPair(userID, ev.Text)

	case session.ModeAwaitingAlertPrice:
		return e.setAlert(userID, ev.Text, msgInvalidAlertText)

	case session.ModeAwaitingBuyAmount:
		amount, err := strconv.ParseFloat(ev.Text, 64)
		if err != nil {
			return []Reply{{Text: msgInvalidBuyAmount}}
		}
		return e.buy(ctx, userID, amount)

	case session.ModeAwaitingSellAmount:
		amount, err := strconv.ParseFloat(ev.Text, 64)
		if err != nil {
			return []Reply{{Text: msgInvalidSellAmount}}
		}
		return e.sell(ctx, userID, amount)

	default:
		// Free text outside an input flow carries no meaning.
		return nil
	}
}

// await parks the session in the given input mode, replacing any prior one.
func (e *Engine) await(userID int64, mode session.Mode) {
	e.store.Mutate(userID, func(s *session.Session) {
		s.Mode = mode
	})
}

func (e *Engine) connectWallet(userID int64, secret string) []Reply {
	res, err := e.actions.ConnectWallet(userID, secret)

	var first Reply
	if err != nil {
		first = Reply{Text: msgWalletError(err)}
	} else {
		first = Reply{Text: msgWalletConnected(res.Masked)}
	}

	// The main menu follows either way so the refreshed wallet status shows.
	return []Reply{first, mainMenu(e.store.GetOrCreate(userID))}
}

func (e *Engine) setPair(userID int64, pairID string) []Reply {
	e.actions.SetPair(userID, pairID)
	return []Reply{{Text: msgPairSet(pairID)}, mainMenu(e.store.GetOrCreate(userID))}
}

func (e *Engine) price(ctx context.Context, userID int64) []Reply {
	res, err := e.actions.Price(ctx, userID)
	switch {
	case errors.Is(err, ErrNoPair):
		return []Reply{{Text: msgNoPairYet}}
	case errors.Is(err, ErrNoPrice):
		return []Reply{{Text: msgPriceUnavailable}}
	}

	replies := []Reply{{Text: msgCurrentPrice(res.PairID, res.Price)}}
	if res.Icon != "" {
		replies = append(replies, Reply{PhotoURL: res.Icon})
	}
	return replies
}

func (e *Engine) balance(ctx context.Context, userID int64) []Reply {
	res, err := e.actions.Balance(ctx, userID)
	if errors.Is(err, ErrNoWallet) {
		return []Reply{{Text: msgNoWalletForBalance}}
	}
	return []Reply{{Text: msgBalance(res.Wallet, res.SOL)}}
}

func (e *Engine) positions(ctx context.Context, userID int64) []Reply {
	report, err := e.actions.Positions(ctx, userID)
	switch {
	case errors.Is(err, ErrNoPositions):
		return []Reply{{Text: msgNoPositions}}
	case errors.Is(err, ErrNoPair):
		return []Reply{{Text: msgNoPairForPnL}}
	case errors.Is(err, ErrNoPositionsForPair):
		return []Reply{{Text: msgNoPositionsForPair}}
	case errors.Is(err, ErrNoPrice):
		return []Reply{{Text: msgPriceUnavailable}}
	}
	return []Reply{{Text: formatPositions(report)}}
}

func (e *Engine) setAlert(userID int64, raw, invalidMsg string) []Reply {
	threshold, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return []Reply{{Text: invalidMsg}}
	}
	e.actions.SetAlert(userID, threshold)
	return []Reply{{Text: msgAlertSet(threshold)}}
}

func (e *Engine) buy(ctx context.Context, userID int64, amount float64) []Reply {
	res, err := e.actions.Buy(ctx, userID, amount)
	switch {
	case errors.Is(err, ErrNoWallet):
		return []Reply{{Text: msgConnectBeforeOperating}}
	case errors.Is(err, ErrInvalidAmount):
		return []Reply{{Text: msgInvalidBuyAmount}}
	case errors.Is(err, blockchain.ErrInsufficientFunds):
		return []Reply{{Text: msgInsufficientBuyFunds}}
	case err != nil:
		return []Reply{{Text: msgPurchaseFailed(err)}}
	}
	return []Reply{{Text: msgPurchaseExecuted(res)}}
}

func (e *Engine) sell(ctx context.Context, userID int64, amount float64) []Reply {
	res, err := e.actions.Sell(ctx, userID, amount)
	switch {
	case errors.Is(err, ErrNoWallet):
		return []Reply{{Text: msgConnectBeforeOperating}}
	case errors.Is(err, ErrInvalidAmount):
		return []Reply{{Text: msgInvalidSellAmount}}
	case errors.Is(err, blockchain.ErrInsufficientFunds):
		return []Reply{{Text: msgInsufficientSellFunds}}
	case err != nil:
		return []Reply{{Text: msgSaleFailed(err)}}
	}
	return []Reply{{Text: msgSaleExecuted(res)}}
}

func (e *Engine) sellAll(ctx context.Context, userID int64) []Reply {
	res, err := e.actions.SellAll(ctx, userID)
	switch {
	case errors.Is(err, ErrNoWallet):
		return []Reply{{Text: msgConnectBeforeOperating}}
	case errors.Is(err, ErrNothingToSell):
		return []Reply{{Text: msgNothingToSell}}
	case errors.Is(err, blockchain.ErrInsufficientFunds):
		return []Reply{{Text: msgInsufficientSellFunds}}
	case err != nil:
		return []Reply{{Text: msgSaleFailed(err)}}
	}
	return []Reply{{Text: msgSellAllExecuted(res)}}
}
