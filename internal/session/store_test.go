package session

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestGetOrCreateCreatesIdleSession(t *testing.T) {
	store := NewStore(zap.NewNop())

	snap := store.GetOrCreate(42)
	if snap.UserID != 42 {
		t.Errorf("UserID = %d, want 42", snap.UserID)
	}
	if snap.Mode != ModeIdle {
		t.Errorf("Mode = %v, want idle", snap.Mode)
	}
	if snap.Wallet != nil || snap.SelectedPair != "" || snap.HasAlert || len(snap.Positions) != 0 {
		t.Errorf("new session is not empty: %+v", snap)
	}
	if store.Count() != 1 {
		t.Errorf("Count() = %d, want 1", store.Count())
	}
}

func TestMutateCreatesWhenAbsent(t *testing.T) {
	store := NewStore(zap.NewNop())

	store.Mutate(7, func(s *Session) {
		s.SelectedPair = "PAIRX"
	})

	snap := store.GetOrCreate(7)
	if snap.SelectedPair != "PAIRX" {
		t.Errorf("SelectedPair = %q, want PAIRX", snap.SelectedPair)
	}
}

func TestMutateSerializedPerUser(t *testing.T) {
	store := NewStore(zap.NewNop())

	const goroutines = 20
	const appendsPerGoroutine = 50

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < appendsPerGoroutine; i++ {
				store.Mutate(1, func(s *Session) {
					s.Positions = append(s.Positions, Position{
						Amount:    0.1,
						PairID:    "PAIRX",
						Timestamp: time.Now(),
					})
				})
			}
		}()
	}
	wg.Wait()

	snap := store.GetOrCreate(1)
	if got, want := len(snap.Positions), goroutines*appendsPerGoroutine; got != want {
		t.Errorf("positions lost under concurrency: got %d, want %d", got, want)
	}
}

func TestConcurrentGetOrCreateSameUser(t *testing.T) {
	store := NewStore(zap.NewNop())

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.GetOrCreate(99)
		}()
	}
	wg.Wait()

	if store.Count() != 1 {
		t.Errorf("Count() = %d, want exactly one session for one user", store.Count())
	}
}

func TestSnapshotDoesNotAliasStore(t *testing.T) {
	store := NewStore(zap.NewNop())
	store.Mutate(1, func(s *Session) {
		s.Positions = append(s.Positions, Position{Amount: 1, PairID: "PAIRX"})
	})

	snap := store.GetOrCreate(1)

	store.Mutate(1, func(s *Session) {
		s.Positions = append(s.Positions, Position{Amount: 2, PairID: "PAIRX"})
	})
	if len(snap.Positions) != 1 {
		t.Errorf("snapshot grew after a later mutation: %d positions", len(snap.Positions))
	}

	snap.Positions[0].Amount = 999
	fresh := store.GetOrCreate(1)
	if fresh.Positions[0].Amount != 1 {
		t.Errorf("writing through a snapshot leaked into the store: %v", fresh.Positions[0].Amount)
	}
}

func TestModeReplacesPrevious(t *testing.T) {
	store := NewStore(zap.NewNop())

	store.Mutate(5, func(s *Session) { s.Mode = ModeAwaitingBuyAmount })
	store.Mutate(5, func(s *Session) { s.Mode = ModeAwaitingAlertPrice })

	snap := store.GetOrCreate(5)
	if snap.Mode != ModeAwaitingAlertPrice {
		t.Errorf("Mode = %v, want awaiting_alert_price", snap.Mode)
	}
}

func TestAllSubscriptions(t *testing.T) {
	store := NewStore(zap.NewNop())

	// pair + alert: subscribed
	store.Mutate(1, func(s *Session) {
		s.SelectedPair = "PAIRX"
		s.AlertThreshold = 10
		s.HasAlert = true
	})
	// alert without pair: not subscribed
	store.Mutate(2, func(s *Session) {
		s.AlertThreshold = 5
		s.HasAlert = true
	})
	// pair without alert: not subscribed
	store.Mutate(3, func(s *Session) {
		s.SelectedPair = "PAIRY"
	})

	subs := store.AllSubscriptions()
	if len(subs) != 1 {
		t.Fatalf("AllSubscriptions() returned %d entries, want 1", len(subs))
	}
	got := subs[0]
	if got.UserID != 1 || got.PairID != "PAIRX" || got.Threshold != 10 {
		t.Errorf("unexpected subscription: %+v", got)
	}
}

func TestModeStrings(t *testing.T) {
	modes := map[Mode]string{
		ModeIdle:                "idle",
		ModeAwaitingWalletKey:   "awaiting_wallet_key",
		ModeAwaitingPairAddress: "awaiting_pair_address",
		ModeAwaitingAlertPrice:  "awaiting_alert_price",
		ModeAwaitingBuyAmount:   "awaiting_buy_amount",
		ModeAwaitingSellAmount:  "awaiting_sell_amount",
		Mode(99):                "unknown",
	}
	for mode, want := range modes {
		if mode.String() != want {
			t.Errorf("Mode(%d).String() = %q, want %q", int(mode), mode.String(), want)
		}
	}
}
