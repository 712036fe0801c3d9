// internal/bot/menus.go
package bot

import (
	"fmt"

	"github.com/gsnode/solana-telegram-trading-bot/internal/session"
)

// Callback tokens carried by the inline keyboards.
const (
	tokenMenuConnectWallet = "menu_connectwallet"
	tokenMenuSetPair       = "menu_setpair"
	tokenMenuBuy           = "menu_buy"
	tokenMenuSell          = "menu_sell"
	tokenMenuBalance       = "menu_balance"
	tokenMenuPositions     = "menu_positions"
	tokenMenuAlert         = "menu_alert"

	tokenBuyCustom  = "buy_custom"
	tokenSellCustom = "sell_custom"
	tokenSellAll    = "sell_all"

	buyTokenPrefix  = "buy_"
	sellTokenPrefix = "sell_"
)

// Prompts sent when the session starts waiting for typed input.
const (
	promptWalletKey   = "Please enter your private key (base58 format):"
	promptPairAddress = "Please enter the token pair (DexScreener Token Address):"
	promptAlertPrice  = "Please enter the alert price:"
	promptBuyAmount   = "Enter the amount of SOL to buy (e.g., 0.25):"
	promptSellAmount  = "Enter the number of tokens to sell (e.g., 25):"
)

// Fixed replies for missing preconditions and rejected input.
const (
	msgNoPairYet              = "You haven't set a pair yet. Use /setpair first."
	msgNoWalletForBalance     = "You don't have a connected wallet. Use /connectwallet"
	msgPriceUnavailable       = "Could not retrieve price or icon. Is the pair correct?"
	msgNoPositions            = "You have no open positions."
	msgNoPairForPnL           = "No pair set for PnL calculation."
	msgNoPositionsForPair     = "No open positions for the current pair."
	msgNothingToSell          = "You have no tokens to sell for the current pair."
	msgConnectBeforeBuying    = "You must connect your wallet with /connectwallet before buying."
	msgConnectBeforeSelling   = "You must connect your wallet with /connectwallet before selling."
	msgConnectBeforeOperating = "You must connect your wallet with /connectwallet before operating."
	msgInvalidAlertCommand    = "Invalid price. Please try /alert again."
	msgInvalidAlertText       = "Invalid price. Try /alert again."
	msgInvalidBuyAmount       = "Invalid amount. Try /buy again."
	msgInvalidSellAmount      = "Invalid amount. Try /sell again."
	msgInsufficientBuyFunds   = "💸 Insufficient funds for purchase."
	msgInsufficientSellFunds  = "💸 Insufficient funds for sale."
)

func walletStatus(s session.Session) string {
	if s.Wallet == nil {
		return "🔴 (Wallet not connected)"
	}
	return "🟢 " + s.Wallet.Masked()
}

// mainMenu builds the greeting reply with the session's wallet status and the
// option keyboard.
func mainMenu(s session.Session) Reply {
	return Reply{
		Text: fmt.Sprintf("*Hello! I'm your Solana Trading Bot.*\n\nWallet: %s\n\n_Select an option:_", walletStatus(s)),
		Keyboard: [][]Button{
			{{Label: "🔗 Connect Wallet", Token: tokenMenuConnectWallet}, {Label: "🔧 Set Pair", Token: tokenMenuSetPair}},
			{{Label: "💵 Buy", Token: tokenMenuBuy}, {Label: "📉 Sell", Token: tokenMenuSell}},
			{{Label: "💰 Balance", Token: tokenMenuBalance}, {Label: "📊 Positions", Token: tokenMenuPositions}},
			{{Label: "🚨 Alert", Token: tokenMenuAlert}},
		},
	}
}

func buyMenu() Reply {
	return Reply{
		Text: "Select an amount to buy:",
		Keyboard: [][]Button{
			{{Label: "💵 0.1 SOL", Token: "buy_0.1"}, {Label: "💵 0.3 SOL", Token: "buy_0.3"}},
			{{Label: "💵 0.5 SOL", Token: "buy_0.5"}, {Label: "💵 1 SOL", Token: "buy_1"}},
			{{Label: "✏️ Custom", Token: tokenBuyCustom}},
		},
	}
}

func sellMenu() Reply {
	return Reply{
		Text: "Select an amount to sell:",
		Keyboard: [][]Button{
			{{Label: "📉 10 tokens", Token: "sell_10"}, {Label: "📉 50 tokens", Token: "sell_50"}},
			{{Label: "📉 100 tokens", Token: "sell_100"}, {Label: "📉 500 tokens", Token: "sell_500"}},
			{{Label: "🚀 Sell All", Token: tokenSellAll}, {Label: "✏️ Custom", Token: tokenSellCustom}},
		},
	}
}

func msgWalletConnected(masked string) string {
	return fmt.Sprintf("✅ Wallet connected!\nWallet: 🟢 %s...", masked)
}

func msgWalletError(err error) string {
	return fmt.Sprintf("❌ Error connecting wallet: %v", err)
}

func msgPairSet(pairID string) string {
	return fmt.Sprintf("✅ Pair set to: `%s`", pairID)
}

func msgCurrentPrice(pairID string, price float64) string {
	return fmt.Sprintf("*Current price for %s:*\n💲 `%.6f USD`", pairID, price)
}

func msgBalance(pubkey string, sol float64) string {
	return fmt.Sprintf("*Your Wallet Balance:*\n💰 `%s`:\n`%v SOL`", pubkey, sol)
}

func msgAlertSet(threshold float64) string {
	return fmt.Sprintf("🚨 Alert set: I'll notify you when the price exceeds 💲%v USD.", threshold)
}

func msgPurchaseExecuted(res TradeResult) string {
	return fmt.Sprintf("✅ Purchase executed:\nAmount: %v SOL\nSignature: `%s`\nWallet: `%s`", res.Amount, res.Signature, res.Wallet)
}

func msgSaleExecuted(res TradeResult) string {
	return fmt.Sprintf("✅ Sale executed:\nAmount: %v tokens\nSignature: `%s`\nWallet: `%s`", res.Amount, res.Signature, res.Wallet)
}

func msgSellAllExecuted(res SellAllResult) string {
	return fmt.Sprintf("🚀 Sell All executed:\nAmount: %v tokens\nSignature: `%s`\nWallet: `%s`", res.TotalAmount, res.Signature, res.Wallet)
}

func msgPurchaseFailed(err error) string {
	return fmt.Sprintf("❌ Error during purchase: %v", err)
}

func msgSaleFailed(err error) string {
	return fmt.Sprintf("❌ Error during sale: %v", err)
}

// formatPositions renders the per-position PnL breakdown for one pair.
func formatPositions(report PositionsReport) string {
	msg := fmt.Sprintf("*📊 Positions for %s:*\n\n", report.PairID)
	for _, line := range report.Lines {
		msg += fmt.Sprintf("• *Purchase:* `%v SOL` at 💲`%.6f USD`\n  🕒 %s\n  *Signature:* `%s`\n  *PnL:* `%.2f USD`\n\n",
			line.Position.Amount,
			line.Position.PurchasePrice,
			line.Position.Timestamp.Format("2006-01-02 15:04:05"),
			line.Position.Signature,
			line.PnL,
		)
	}
	msg += fmt.Sprintf("👉 *Total PnL:* `%.2f USD`", report.TotalPnL)
	return msg
}

// alertText is the notification pushed when a pair price crosses a threshold.
func alertText(pairID string, price, threshold float64) string {
	return fmt.Sprintf("🚨 *ALERT!* The price for %s reached 💲%.6f (threshold %v USD).", pairID, price, threshold)
}
