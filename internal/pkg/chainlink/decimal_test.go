package chainlink

import (
	"math/big"
	"testing"
)

func TestScalePrice(t *testing.T) {
	tests := []struct {
		name string
		p    *big.Int
		from uint8
		to   uint8
		want *big.Int
	}{
		{"same decimals is identity", big.NewInt(12345), 8, 8, big.NewInt(12345)},
		{"scale up multiplies", big.NewInt(100_000_000), 8, 18, mustBig(t, "1000000000000000000")},
		{"scale down floors", big.NewInt(123_456_789), 8, 4, big.NewInt(12345)},
		{"scale down to zero decimals", big.NewInt(999), 3, 0, big.NewInt(0)},
		{"zero price stays zero", big.NewInt(0), 0, 18, big.NewInt(0)},
		{"full uint8 range", big.NewInt(1), 0, 255, new(big.Int).Exp(big.NewInt(10), big.NewInt(255), nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScalePrice(tt.p, tt.from, tt.to)
			if got.Cmp(tt.want) != 0 {
				t.Errorf("ScalePrice(%s, %d, %d) = %s, want %s", tt.p, tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestScalePriceRoundTripLaw(t *testing.T) {
	// scaling up by k then down by k recovers the original exactly
	p := big.NewInt(987_654_321)
	for k := uint8(0); k <= 30; k++ {
		up := ScalePrice(p, 8, 8+k)
		back := ScalePrice(up, 8+k, 8)
		if back.Cmp(p) != 0 {
			t.Fatalf("up/down round trip by %d changed %s to %s", k, p, back)
		}
	}
}

func TestMulDiv(t *testing.T) {
	tests := []struct {
		name  string
		x, y  *big.Int
		denom *big.Int
		want  *big.Int
	}{
		{"exact division", big.NewInt(6), big.NewInt(4), big.NewInt(8), big.NewInt(3)},
		{"floors toward zero", big.NewInt(7), big.NewInt(3), big.NewInt(10), big.NewInt(2)},
		{
			"intermediate product beyond 256 bits",
			new(big.Int).Exp(big.NewInt(2), big.NewInt(200), nil),
			new(big.Int).Exp(big.NewInt(2), big.NewInt(200), nil),
			new(big.Int).Exp(big.NewInt(2), big.NewInt(300), nil),
			new(big.Int).Exp(big.NewInt(2), big.NewInt(100), nil),
		},
		{"zero numerator", big.NewInt(0), big.NewInt(1000), big.NewInt(7), big.NewInt(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mulDiv(tt.x, tt.y, tt.denom)
			if got.Cmp(tt.want) != 0 {
				t.Errorf("mulDiv(%s, %s, %s) = %s, want %s", tt.x, tt.y, tt.denom, got, tt.want)
			}
		})
	}
}

func TestMulDivZeroDenominatorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on zero denominator")
		}
	}()
	mulDiv(big.NewInt(1), big.NewInt(1), big.NewInt(0))
}

func TestPow10Bounds(t *testing.T) {
	if got := pow10(0); got.Cmp(big.NewInt(1)) != 0 {
		t.Errorf("pow10(0) = %s, want 1", got)
	}
	if got := pow10(maxDecimalExponent); got.BitLen() == 0 {
		t.Error("pow10(maxDecimalExponent) returned zero")
	}

	for _, exp := range []int{-1, maxDecimalExponent + 1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic for exponent %d", exp)
				}
			}()
			pow10(exp)
		}()
	}
}

func TestSyncDecimalsUp(t *testing.T) {
	tests := []struct {
		name         string
		a            *big.Int
		aDec         uint8
		b            *big.Int
		bDec         uint8
		wantA, wantB *big.Int
		wantDec      uint8
	}{
		{
			"a scales up to b",
			big.NewInt(100_000_000), 8,
			mustBig(t, "2000000000000000000"), 18,
			mustBig(t, "1000000000000000000"), mustBig(t, "2000000000000000000"), 18,
		},
		{
			"b scales up to a",
			mustBig(t, "1000000000000000000"), 18,
			big.NewInt(300_000_000), 8,
			mustBig(t, "1000000000000000000"), mustBig(t, "3000000000000000000"), 18,
		},
		{"equal decimals untouched", big.NewInt(5), 6, big.NewInt(7), 6, big.NewInt(5), big.NewInt(7), 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotA, gotB, gotDec := SyncDecimalsUp(tt.a, tt.aDec, tt.b, tt.bDec)
			if gotA.Cmp(tt.wantA) != 0 || gotB.Cmp(tt.wantB) != 0 || gotDec != tt.wantDec {
				t.Errorf("SyncDecimalsUp = (%s, %s, %d), want (%s, %s, %d)",
					gotA, gotB, gotDec, tt.wantA, tt.wantB, tt.wantDec)
			}
		})
	}
}

func TestSyncDecimalsUpDoesNotMutateInputs(t *testing.T) {
	a := big.NewInt(100)
	b := big.NewInt(200)
	SyncDecimalsUp(a, 2, b, 8)
	if a.Cmp(big.NewInt(100)) != 0 || b.Cmp(big.NewInt(200)) != 0 {
		t.Errorf("inputs mutated: a=%s b=%s", a, b)
	}
}

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("invalid big integer literal %q", s)
	}
	return v
}
