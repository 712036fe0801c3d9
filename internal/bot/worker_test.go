// internal/bot/worker_test.go
package bot

import (
	"context"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/gsnode/solana-telegram-trading-bot/internal/dex/screener"
	"github.com/gsnode/solana-telegram-trading-bot/internal/session"
)

// panicOracle blows up on any price lookup.
type panicOracle struct{}

func (panicOracle) GetPairInfo(ctx context.Context, pairID string) screener.PairInfo {
	panic("oracle exploded")
}

// recordingSender collects reply texts delivered by the pool.
type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *recordingSender) Send(ctx context.Context, userID int64, reply Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, reply.Text)
	return nil
}

func (s *recordingSender) Sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sent))
	copy(out, s.sent)
	return out
}

func TestWorkerPoolRecoversPanickingHandler(t *testing.T) {
	logger := zaptest.NewLogger(t)
	store := session.NewStore(logger)
	actions := NewActions(store, NewMockLedger(), panicOracle{}, logger)
	engine := NewEngine(store, actions, logger)

	store.Mutate(1, func(s *session.Session) {
		s.SelectedPair = "pair-1"
	})

	events := make(chan Event, 2)
	sender := &recordingSender{}
	pool := NewWorkerPool(context.Background(), events, engine, sender, logger)
	pool.Start(1)

	// The price handler reaches the oracle and panics; the next event must
	// still be served by the same worker.
	events <- CommandEvent{UserID: 1, Name: "price"}
	events <- CommandEvent{UserID: 2, Name: "start"}
	close(events)
	pool.Wait()

	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("Expected 1 reply after recovered panic, got %d: %v", len(sent), sent)
	}
	if !strings.Contains(sent[0], "Wallet not connected") {
		t.Errorf("Expected start menu reply, got %q", sent[0])
	}
}
