package solana

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/gsnode/solana-telegram-trading-bot/internal/blockchain"
	"github.com/gsnode/solana-telegram-trading-bot/internal/wallet"
)

// Client talks to Solana over a pool of RPC endpoints, rotating per call.
type Client struct {
	rpcClients []*RPCClient
	currIndex  int
	mutex      sync.Mutex
	dexWallet  solana.PublicKey
	logger     *zap.Logger
}

// NewClient creates a Solana client over the given RPC endpoints. The DEX
// wallet is the fixed counterparty every transfer is sent to.
func NewClient(rpcURLs []string, dexWallet string, logger *zap.Logger) (*Client, error) {
	if len(rpcURLs) == 0 {
		return nil, errors.New("empty RPC URL list")
	}

	counterparty, err := solana.PublicKeyFromBase58(dexWallet)
	if err != nil {
		return nil, fmt.Errorf("invalid DEX wallet address: %w", err)
	}

	var clients []*RPCClient
	for _, urlStr := range rpcURLs {
		if _, err := url.Parse(urlStr); err != nil {
			logger.Warn("Invalid RPC URL", zap.String("url", urlStr), zap.Error(err))
			continue
		}

		client := &RPCClient{
			Client:  rpc.New(urlStr),
			URL:     urlStr,
			active:  true,
			metrics: &RPCMetrics{},
		}
		clients = append(clients, client)
	}

	if len(clients) == 0 {
		return nil, errors.New("no valid RPC URLs provided")
	}

	c := &Client{
		rpcClients: clients,
		dexWallet:  counterparty,
		logger:     logger,
	}

	if err := c.validateConnections(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to validate connections: %w", err)
	}

	return c, nil
}

// testConnection checks that an RPC node answers.
func (c *Client) testConnection(ctx context.Context, rpcClient *RPCClient) error {
	version, err := rpcClient.Client.GetVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get version: %w", err)
	}

	_, err = rpcClient.Client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	c.logger.Debug("Successfully connected to RPC",
		zap.String("url", rpcClient.URL),
		zap.String("solana_core", version.SolanaCore))

	return nil
}

func (c *Client) validateConnections(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, client := range c.rpcClients {
		wg.Add(1)
		go func(rpcClient *RPCClient) {
			defer wg.Done()

			var lastErr error
			for attempt := 0; attempt < maxConnectAttempts; attempt++ {
				start := time.Now()
				if err := c.testConnection(ctx, rpcClient); err != nil {
					lastErr = err
					rpcClient.updateMetrics(false, time.Since(start))
					time.Sleep(connectRetryDelay)
					continue
				}
				rpcClient.updateMetrics(true, time.Since(start))
				return
			}
			if lastErr != nil {
				c.logger.Warn("RPC endpoint unreachable, disabling",
					zap.String("url", rpcClient.URL), zap.Error(lastErr))
				rpcClient.setActive(false)
			}
		}(client)
	}
	wg.Wait()

	if !c.hasActiveClients() {
		return errors.New("no active RPC connections available")
	}

	return nil
}

// GetRecentBlockhash fetches a fresh blockhash. Single attempt, no retry.
func (c *Client) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	client := c.getNextClient()
	if client == nil {
		return solana.Hash{}, errors.New("no active RPC clients available")
	}

	start := time.Now()
	result, err := client.Client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	client.updateMetrics(err == nil, time.Since(start))

	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	return result.Value.Blockhash, nil
}

// SubmitTransfer builds, signs and submits a single system transfer to the
// DEX wallet. The blockhash is fetched immediately before building to keep it
// fresh; preflight simulation is skipped. One attempt per call, failures come
// back classified.
func (c *Client) SubmitTransfer(ctx context.Context, amountSOL float64, signer *wallet.Wallet) (solana.Signature, error) {
	lamports := uint64(amountSOL * float64(solana.LAMPORTS_PER_SOL))
	instruction := system.NewTransferInstruction(lamports, signer.PublicKey, c.dexWallet).Build()

	blockhash, err := c.GetRecentBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, blockchain.ClassifyTransferError(err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		blockhash,
		solana.TransactionPayer(signer.PublicKey),
	)
	if err != nil {
		return solana.Signature{}, blockchain.ClassifyTransferError(fmt.Errorf("failed to create transaction: %w", err))
	}

	if err := signer.SignTransaction(tx); err != nil {
		return solana.Signature{}, blockchain.ClassifyTransferError(fmt.Errorf("failed to sign transaction: %w", err))
	}

	sig, err := c.sendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, blockchain.ClassifyTransferError(err)
	}

	c.logger.Info("Transfer submitted",
		zap.String("signature", sig.String()),
		zap.Float64("amount_sol", amountSOL),
		zap.String("from", signer.PublicKey.String()))

	return sig, nil
}

func (c *Client) sendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	client := c.getNextClient()
	if client == nil {
		return solana.Signature{}, errors.New("no active RPC clients available")
	}

	start := time.Now()
	sig, err := client.Client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       true,
		PreflightCommitment: rpc.CommitmentFinalized,
	})
	client.updateMetrics(err == nil, time.Since(start))

	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	return sig, nil
}

// GetBalance reads the account balance in SOL.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey) (float64, error) {
	client := c.getNextClient()
	if client == nil {
		return 0, errors.New("no active RPC clients available")
	}

	start := time.Now()
	result, err := client.Client.GetBalance(ctx, pubkey, rpc.CommitmentFinalized)
	client.updateMetrics(err == nil, time.Since(start))

	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	return float64(result.Value) / float64(solana.LAMPORTS_PER_SOL), nil
}

// LogEndpointMetrics dumps per-endpoint request statistics, used at shutdown.
func (c *Client) LogEndpointMetrics() {
	for _, client := range c.rpcClients {
		success, errs, latency := client.getMetrics()
		c.logger.Info("RPC endpoint stats",
			zap.String("url", client.URL),
			zap.Uint64("success", success),
			zap.Uint64("errors", errs),
			zap.Duration("avg_latency", latency))
	}
}

func (c *Client) hasActiveClients() bool {
	for _, client := range c.rpcClients {
		if client.isActive() {
			return true
		}
	}
	return false
}

func (c *Client) getNextClient() *RPCClient {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	initialIndex := c.currIndex
	for {
		c.currIndex = (c.currIndex + 1) % len(c.rpcClients)
		if c.rpcClients[c.currIndex].isActive() {
			return c.rpcClients[c.currIndex]
		}
		if c.currIndex == initialIndex {
			return nil
		}
	}
}
