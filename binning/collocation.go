// Public domain.

package binning

import (
	"github.com/mvaneijk/atmogrid/errs"
	"github.com/mvaneijk/atmogrid/product"
)

// CollocationPair matches a sample from dataset a with a sample from
// dataset b.
type CollocationPair struct {
	CollocationIndex int32
	ProductIndexA    int32
	SampleIndexA     int32
	ProductIndexB    int32
	SampleIndexB     int32
}

// CollocationResult is the list of matching pairs produced by a collocation
// run.
type CollocationResult struct {
	Pairs []CollocationPair
}

// filterForCollocationIndices reduces and reorders the pairs to the given
// collocation indices.  Indices without a pair are dropped silently; the
// caller detects the shortfall by comparing lengths.
func (r *CollocationResult) filterForCollocationIndices(indices []int32) *CollocationResult {
	byIndex := make(map[int32]CollocationPair, len(r.Pairs))
	for _, pair := range r.Pairs {
		byIndex[pair.CollocationIndex] = pair
	}
	out := &CollocationResult{}
	for _, ix := range indices {
		if pair, ok := byIndex[ix]; ok {
			out.Pairs = append(out.Pairs, pair)
		}
	}
	return out
}

// BinWithCollocated bins the product (from dataset a in the collocation
// result) such that all pairs sharing the same dataset b sample are
// averaged together.  The product must carry a 'collocation_index'
// variable.
func BinWithCollocated(p *product.Product, result *CollocationResult) error {
	collocationIndex, err := p.GetVariable("collocation_index")
	if err != nil {
		return err
	}

	filtered := result.filterForCollocationIndices(collocationIndex.Int32Data)
	if len(filtered.Pairs) != collocationIndex.NumElements() {
		return errs.New(errs.InvalidArgument, "product and collocation result are inconsistent")
	}

	numElements := collocationIndex.NumElements()
	index := make([]int, 0, numElements)
	binIndex := make([]int, numElements)
	for i := 0; i < numElements; i++ {
		j := 0
		for ; j < len(index); j++ {
			if filtered.Pairs[index[j]].ProductIndexB == filtered.Pairs[i].ProductIndexB &&
				filtered.Pairs[index[j]].SampleIndexB == filtered.Pairs[i].SampleIndexB {
				break
			}
		}
		if j == len(index) {
			index = append(index, i)
		}
		binIndex[i] = j
	}
	numBins := len(index)

	// the collocation index itself sits out the binning and is resampled to
	// the bin representatives afterwards
	if err := p.DetachVariable(collocationIndex); err != nil {
		return err
	}
	if err := Bin(p, numBins, binIndex); err != nil {
		return err
	}
	if err := collocationIndex.RearrangeDimension(0, numBins, index); err != nil {
		return err
	}
	return p.AddVariable(collocationIndex)
}
