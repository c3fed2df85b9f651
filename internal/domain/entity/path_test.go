package entity

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	testBase  = common.HexToAddress("0x0000000000000000000000000000000000000001")
	testQuote = common.HexToAddress("0x0000000000000000000000000000000000000002")
	testInter = common.HexToAddress("0x0000000000000000000000000000000000000003")
)

func TestNewConversionPath(t *testing.T) {
	tests := []struct {
		name           string
		intermediaries []common.Address
		invertFlags    []bool
		wantErr        bool
	}{
		{
			name:        "direct hop",
			invertFlags: []bool{false},
		},
		{
			name:           "one intermediary",
			intermediaries: []common.Address{testInter},
			invertFlags:    []bool{false, true},
		},
		{
			name:        "missing flags",
			invertFlags: nil,
			wantErr:     true,
		},
		{
			name:           "too many flags",
			intermediaries: []common.Address{testInter},
			invertFlags:    []bool{false, false, false},
			wantErr:        true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConversionPath(testBase, testQuote, tc.intermediaries, tc.invertFlags)
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestConversionPathHops(t *testing.T) {
	path, err := NewConversionPath(testBase, testQuote, []common.Address{testInter}, []bool{true, false})
	if err != nil {
		t.Fatalf("building path: %v", err)
	}

	hops := path.Hops()
	if len(hops) != 2 {
		t.Fatalf("expected 2 hops, got %d", len(hops))
	}
	want := []Hop{
		{Base: testBase, Quote: testInter, Invert: true},
		{Base: testInter, Quote: testQuote, Invert: false},
	}
	for i, hop := range hops {
		if hop != want[i] {
			t.Errorf("hop %d: got %+v, want %+v", i, hop, want[i])
		}
	}
}
