// internal/blockchain/solana/types.go
package solana

import (
	"sync"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
)

const (
	defaultTimeout     = 10 * time.Second
	maxConnectAttempts = 3
	connectRetryDelay  = 500 * time.Millisecond
)

// RPCClient wraps a single RPC endpoint with liveness state and usage metrics.
type RPCClient struct {
	Client  *rpc.Client
	URL     string
	mutex   sync.RWMutex
	active  bool
	metrics *RPCMetrics
}

// RPCMetrics accumulates per-endpoint request statistics.
type RPCMetrics struct {
	mutex        sync.RWMutex
	successCount uint64
	errorCount   uint64
	latency      time.Duration
}
