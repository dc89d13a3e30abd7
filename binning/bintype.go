// Public domain.

// Package binning reduces a product along the time dimension into bins, or
// into a time × latitude × longitude grid, preserving the semantics of
// every variable: averages, sums, angle means, uncertainty propagation and
// datetime extremes, with count and weight companion bookkeeping.
package binning

import (
	"strings"

	"github.com/mvaneijk/atmogrid/product"
)

// Type is the aggregation rule applied to a variable.
type Type int8

const (
	Skip Type = iota
	Remove
	Average
	Uncertainty
	Sum // only used for int32 and float32 data
	Angle // averaged through complex values
	TimeMin
	TimeMax
	TimeAverage
)

// binningType decides the aggregation rule for a variable.  timeBinning
// distinguishes a pure time reduction from the spatial context: in the
// spatial context uncertainties propagate with full correlation.
func binningType(v *product.Variable, timeBinning bool) Type {
	// variables with enumeration values get removed
	if len(v.EnumNames) > 0 {
		return Remove
	}

	// any variable with a time dimension that is not the first dimension
	// gets removed
	for i := 1; i < v.NumDims(); i++ {
		if v.DimKind[i] == product.Time {
			return Remove
		}
	}

	// only keep valid count variables
	if strings.HasSuffix(v.Name, "count") {
		if v.NumDims() < 1 || v.DimKind[0] != product.Time ||
			v.Type != product.Int32 || v.HasUnit() {
			return Remove
		}
		if v.Name == "count" && v.NumDims() != 1 {
			return Remove
		}
		return Sum
	}

	// only keep valid weight variables
	if strings.HasSuffix(v.Name, "weight") {
		if v.NumDims() < 1 || v.DimKind[0] != product.Time ||
			v.Type != product.Float32 || v.HasUnit() {
			return Remove
		}
		return Sum
	}

	// we only bin variables with a time dimension
	if v.NumDims() == 0 || v.DimKind[0] != product.Time {
		return Skip
	}

	// we can't bin string values
	if v.Type == product.String {
		return Remove
	}

	// we can't bin values that have no unit
	if !v.HasUnit() {
		return Remove
	}

	if strings.Contains(v.Name, "_uncertainty") {
		if !timeBinning || strings.Contains(v.Name, "_uncertainty_systematic") {
			// propagate uncertainty assuming full correlation
			return Average
		}
		// propagate uncertainty assuming no correlation
		return Uncertainty
	}

	// we can't bin averaging kernels
	if strings.Contains(v.Name, "_avk") {
		return Remove
	}

	// we can't bin latitude/longitude bounds if they define an area
	if v.Name == "latitude_bounds" || v.Name == "longitude_bounds" {
		if v.NumDims() > 0 && v.DimKind[v.NumDims()-1] == product.Independent &&
			v.Dim[v.NumDims()-1] > 2 {
			return Remove
		}
	}

	if strings.Contains(v.Name, "latitude") || strings.Contains(v.Name, "longitude") ||
		strings.Contains(v.Name, "angle") || strings.Contains(v.Name, "direction") {
		return Angle
	}

	// use minimum/maximum for datetime start/stop
	if v.NumDims() == 1 {
		if v.Name == "datetime_start" {
			return TimeMin
		}
		if v.Name == "datetime_stop" {
			return TimeMax
		}
	}

	// use average by default
	return Average
}

// spatialBinningType decides the aggregation rule for a variable in a
// spatial binning.
func spatialBinningType(v *product.Variable) Type {
	t := binningType(v, false)

	if t != Remove && t != Skip {
		// all latitude/longitude variables become grid coordinates
		if strings.Contains(v.Name, "latitude") || strings.Contains(v.Name, "longitude") {
			return Remove
		}

		// existing count and weight variables are removed for a spatial bin
		if t == Sum {
			return Remove
		}

		// datetime axis variables are binned in the time dimension only
		if v.Name == "datetime" || v.Name == "datetime_length" {
			if v.NumDims() != 1 || v.DimKind[0] != product.Time {
				return Remove
			}
			return TimeAverage
		}
	}

	return t
}
