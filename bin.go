// Public domain.

package atmogrid

import (
	"github.com/mvaneijk/atmogrid/binning"
	"github.com/mvaneijk/atmogrid/product"
)

// Bin reduces the product's time dimension to numBins bins, binning each
// time sample into the bin given by binIndex.
func Bin(p *product.Product, numBins int, binIndex []int) error {
	return fail(binning.Bin(p, numBins, binIndex))
}

// BinFull bins the product's variables such that all samples end up in a
// single bin.
func BinFull(p *product.Product) error {
	return fail(binning.BinFull(p))
}

// BinWithVariable bins the product such that samples sharing the same
// combination of values of the named variables share a bin.
func BinWithVariable(p *product.Product, names []string) error {
	return fail(binning.BinWithVariable(p, names))
}

// BinWithCollocated bins the product such that all collocation pairs with
// the same sample in the other dataset are averaged together.
func BinWithCollocated(p *product.Product, result *binning.CollocationResult) error {
	return fail(binning.BinWithCollocated(p, result))
}

// BinSpatial bins the product's variables into a time × latitude ×
// longitude grid with the given time bin assignment and grid edges.
func BinSpatial(p *product.Product, numTimeBins int, timeBinIndex []int,
	latitudeEdges, longitudeEdges []float64) error {
	return fail(binning.BinSpatial(p, numTimeBins, timeBinIndex, latitudeEdges, longitudeEdges))
}

// BinSpatialFull performs a spatial binning with all samples in a single
// time bin.
func BinSpatialFull(p *product.Product, latitudeEdges, longitudeEdges []float64) error {
	return fail(binning.BinSpatialFull(p, latitudeEdges, longitudeEdges))
}
