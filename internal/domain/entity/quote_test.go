package entity

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

func TestNewPriceQuote(t *testing.T) {
	denom := common.HexToAddress("0x0000000000000000000000000000000000000348")
	now := time.Unix(1_700_000_000, 0).UTC()

	tests := []struct {
		name    string
		amount  *big.Int
		wantErr bool
	}{
		{name: "positive amount", amount: big.NewInt(100_000_000)},
		{name: "zero amount", amount: big.NewInt(0)},
		{name: "nil amount", amount: nil, wantErr: true},
		{name: "negative amount", amount: big.NewInt(-1), wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := NewPriceQuote(tc.amount, 8, denom, now)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.Amount == tc.amount {
				t.Error("quote must copy the amount, not alias it")
			}
			if q.Amount.Cmp(tc.amount) != 0 {
				t.Errorf("amount %s, want %s", q.Amount, tc.amount)
			}
		})
	}
}

func TestPriceQuoteFresh(t *testing.T) {
	denom := common.HexToAddress("0x0000000000000000000000000000000000000348")
	asOf := time.Unix(1_700_000_000, 0).UTC()
	q, err := NewPriceQuote(big.NewInt(1), 8, denom, asOf)
	if err != nil {
		t.Fatalf("building quote: %v", err)
	}

	maxAge := 24 * time.Hour
	if !q.Fresh(asOf.Add(maxAge), maxAge) {
		t.Error("quote exactly at max age should still be fresh")
	}
	if q.Fresh(asOf.Add(maxAge+time.Second), maxAge) {
		t.Error("quote past max age should be stale")
	}
}

func TestLivenessFromRound(t *testing.T) {
	startedAt := time.Unix(1_700_000_000, 0).UTC()

	up := LivenessFromRound(RoundData{Answer: big.NewInt(0), StartedAt: startedAt})
	if !up.IsUp {
		t.Error("answer 0 should mean up")
	}
	down := LivenessFromRound(RoundData{Answer: big.NewInt(1), StartedAt: startedAt})
	if down.IsUp {
		t.Error("non-zero answer should mean down")
	}
	if down.StartedAt != startedAt {
		t.Errorf("startedAt %v, want %v", down.StartedAt, startedAt)
	}
}
