package entity

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Hop is one adjacent feed lookup inside a conversion path. Invert means the
// registered feed quotes the pair the other way round, so the hop divides by
// the feed rate instead of multiplying.
type Hop struct {
	Base   common.Address
	Quote  common.Address
	Invert bool
}

// ConversionPath is an ordered chain of denominations between a base and a
// quote asset, with one invert flag per adjacent pair. Structural invariant:
// len(InvertFlags) == len(Intermediaries)+1. Paths are either caller-supplied
// or discovered by the router; they never outlive a single engine call.
type ConversionPath struct {
	Base           common.Address
	Quote          common.Address
	Intermediaries []common.Address
	InvertFlags    []bool
}

// NewConversionPath builds a path after checking the length invariant.
// Bounds against a deployment's intermediary limit are the router's concern.
func NewConversionPath(base, quote common.Address, intermediaries []common.Address, invertFlags []bool) (ConversionPath, error) {
	if len(invertFlags) != len(intermediaries)+1 {
		return ConversionPath{}, fmt.Errorf("invert flags length %d does not match %d intermediaries",
			len(invertFlags), len(intermediaries))
	}
	return ConversionPath{
		Base:           base,
		Quote:          quote,
		Intermediaries: intermediaries,
		InvertFlags:    invertFlags,
	}, nil
}

// Hops expands the path into its adjacent feed lookups, in walk order.
func (p ConversionPath) Hops() []Hop {
	hops := make([]Hop, 0, len(p.Intermediaries)+1)
	prev := p.Base
	for i, inter := range p.Intermediaries {
		hops = append(hops, Hop{Base: prev, Quote: inter, Invert: p.InvertFlags[i]})
		prev = inter
	}
	hops = append(hops, Hop{Base: prev, Quote: p.Quote, Invert: p.InvertFlags[len(p.InvertFlags)-1]})
	return hops
}
