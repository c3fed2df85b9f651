package chainlink

import (
	"fmt"
	"math/big"
)

// All quote arithmetic runs on math/big integers, so no multiplication can
// wrap. The only bounded quantities are decimal exponents: feed and asset
// decimals arrive as uint8, so any composed exponent outside [0, 510] is a
// corrupted input and fails loudly rather than allocating an absurd scale
// factor.
const maxDecimalExponent = 510

func pow10(exp int) *big.Int {
	if exp < 0 || exp > maxDecimalExponent {
		panic(fmt.Sprintf("chainlink: decimal exponent %d outside [0, %d]", exp, maxDecimalExponent))
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
}

// mulDiv computes floor(x*y/denom) with a full-precision intermediate
// product. denom must be non-zero; call sites guard feed-supplied divisors.
func mulDiv(x, y, denom *big.Int) *big.Int {
	if denom.Sign() == 0 {
		panic("chainlink: mulDiv by zero denominator")
	}
	prod := new(big.Int).Mul(x, y)
	return prod.Quo(prod, denom)
}

// ScalePrice re-expresses a non-negative price from one decimal precision in
// another: multiply by 10^(to-from) when scaling up, floor-divide when scaling
// down. Exact for any delta representable in uint8.
func ScalePrice(price *big.Int, fromDecimals, toDecimals uint8) *big.Int {
	if toDecimals >= fromDecimals {
		return new(big.Int).Mul(price, pow10(int(toDecimals)-int(fromDecimals)))
	}
	return new(big.Int).Quo(price, pow10(int(fromDecimals)-int(toDecimals)))
}

// SyncDecimalsUp brings two differently-scaled prices onto their higher
// decimal basis. Scaling up only, so no precision is lost before the two are
// combined.
func SyncDecimalsUp(a *big.Int, aDecimals uint8, b *big.Int, bDecimals uint8) (*big.Int, *big.Int, uint8) {
	if aDecimals < bDecimals {
		return ScalePrice(a, aDecimals, bDecimals), new(big.Int).Set(b), bDecimals
	}
	return new(big.Int).Set(a), ScalePrice(b, bDecimals, aDecimals), aDecimals
}
