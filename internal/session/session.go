// internal/session/session.go
package session

import (
	"time"

	"github.com/gsnode/solana-telegram-trading-bot/internal/wallet"
)

// Mode is the pending free-text prompt a session is waiting on. Exactly one
// value is active at a time; assigning a new mode replaces the previous one.
type Mode int

const (
	ModeIdle Mode = iota
	ModeAwaitingWalletKey
	ModeAwaitingPairAddress
	ModeAwaitingAlertPrice
	ModeAwaitingBuyAmount
	ModeAwaitingSellAmount
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeAwaitingWalletKey:
		return "awaiting_wallet_key"
	case ModeAwaitingPairAddress:
		return "awaiting_pair_address"
	case ModeAwaitingAlertPrice:
		return "awaiting_alert_price"
	case ModeAwaitingBuyAmount:
		return "awaiting_buy_amount"
	case ModeAwaitingSellAmount:
		return "awaiting_sell_amount"
	default:
		return "unknown"
	}
}

// Position is one executed buy. Created on backend success, never mutated
// afterwards except by removal.
type Position struct {
	Amount        float64
	PurchasePrice float64
	PairID        string
	Signature     string
	Timestamp     time.Time
}

// Session is the per-user state. All access goes through the Store; the
// wallet value is immutable once created, so sharing its pointer with
// snapshots is safe.
type Session struct {
	UserID         int64
	Wallet         *wallet.Wallet
	SelectedPair   string
	AlertThreshold float64
	HasAlert       bool
	Mode           Mode
	Positions      []Position
}

// clone returns a value copy with its own positions slice.
func (s *Session) clone() Session {
	out := *s
	out.Positions = append([]Position(nil), s.Positions...)
	return out
}

// Subscription is one user's active price-alert registration.
type Subscription struct {
	UserID    int64
	PairID    string
	Threshold float64
}
