// internal/blockchain/blockchain.go
package blockchain

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/gsnode/solana-telegram-trading-bot/internal/wallet"
)

// Client defines the ledger surface the bot needs from the execution backend.
type Client interface {
	// Fetch a fresh blockhash.
	GetRecentBlockhash(ctx context.Context) (solana.Hash, error)
	// Submit a transfer of amountSOL from the signer to the DEX wallet.
	SubmitTransfer(ctx context.Context, amountSOL float64, signer *wallet.Wallet) (solana.Signature, error)
	// Read the SOL balance of an account.
	GetBalance(ctx context.Context, pubkey solana.PublicKey) (float64, error)
}
