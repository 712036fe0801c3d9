// internal/blockchain/errors.go
package blockchain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInsufficientFunds marks a transfer rejected for lack of balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrBackend marks any other backend failure, raw message attached.
var ErrBackend = errors.New("backend error")

// ClassifyTransferError maps a raw submission error onto the bot's error
// taxonomy. The backend reports balance problems only as message text, so
// classification is a case-insensitive substring check.
func ClassifyTransferError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "insufficient funds") {
		return fmt.Errorf("%w: %v", ErrInsufficientFunds, err)
	}
	return fmt.Errorf("%w: %v", ErrBackend, err)
}
