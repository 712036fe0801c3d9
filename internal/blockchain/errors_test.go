package blockchain

import (
	"errors"
	"strings"
	"testing"
)

func TestClassifyTransferError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"insufficient funds", errors.New("Transaction simulation failed: Insufficient Funds for fee"), ErrInsufficientFunds},
		{"insufficient funds lowercase", errors.New("rpc error: insufficient funds for instruction"), ErrInsufficientFunds},
		{"blockhash not found", errors.New("BlockhashNotFound"), ErrBackend},
		{"timeout", errors.New("context deadline exceeded"), ErrBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyTransferError(tt.err)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("ClassifyTransferError(nil) = %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("ClassifyTransferError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyTransferErrorKeepsRawMessage(t *testing.T) {
	raw := errors.New("some obscure rpc failure")
	got := ClassifyTransferError(raw)
	if !strings.Contains(got.Error(), "some obscure rpc failure") {
		t.Errorf("classified error lost the raw message: %v", got)
	}
}
