// Public domain.

package binning

import (
	"math"

	"github.com/mvaneijk/atmogrid/errs"
	"github.com/mvaneijk/atmogrid/product"
)

// Bin reduces the product's time dimension to numBins bins.  Each time
// sample is put in the bin given by binIndex; all variables with a leading
// time dimension are resampled to the bins with the aggregation rule the
// classifier assigns them.
//
// Variables with a time dimension but no unit, or with string data, are
// removed; count and weight variables are summed.  All binned variables
// except count/weight are converted to float64 and empty bins become NaN.
//
// A global 'count' variable is added if not already present.  Only non-NaN
// values contribute to a bin; when NaN values make a variable's
// contribution count differ from the global count, a variable-specific
// '<name>_count' (or '<name>_weight') companion is created.
//
// Angle variables are averaged through unit vectors; their companion
// '<name>_weight' receives the magnitude of the vector sum.  Uncertainty
// variables use first order propagation, assuming no correlation for total
// and random uncertainties and full correlation for systematic ones.
func Bin(p *product.Product, numBins int, binIndex []int) error {
	numElements := p.Dimension[product.Time]
	if len(binIndex) != numElements {
		return errs.New(errs.InvalidArgument,
			"bin index length (%d) does not match time dimension length (%d)",
			len(binIndex), numElements)
	}
	for i := range binIndex {
		if binIndex[i] < 0 || binIndex[i] >= numBins {
			return errs.New(errs.InvalidArgument,
				"binIndex[%d] (%d) should be in the range [0..%d)", i, binIndex[i], numBins)
		}
	}

	c := newBinContext(p, func(v *product.Variable) Type {
		return binningType(v, true)
	})

	// size scratch buffers by the largest variable, before or after binning
	countSize := 0
	for k, v := range p.Variables {
		if c.bt[k] == Remove || c.bt[k] == Skip {
			continue
		}
		totalNumElements := v.NumElements()
		if numBins > numElements {
			totalNumElements = numBins * (totalNumElements / numElements)
		}
		if totalNumElements > countSize {
			countSize = totalNumElements
		}
	}

	// for each bin, the index of the first contributing sample; samples are
	// aggregated in place at that index
	index := make([]int, numBins)
	binCount := make([]int32, numBins)
	count := make([]int32, countSize)
	weight := make([]float32, countSize)

	for i := 0; i < numElements; i++ {
		if binCount[binIndex[i]] == 0 {
			index[binIndex[i]] = i
		}
		binCount[binIndex[i]]++
	}

	// pre-process all variables
	for k := 0; k < len(p.Variables); k++ {
		if c.bt[k] == Skip || c.bt[k] == Remove {
			continue
		}
		variable := p.Variables[k]

		if c.bt[k] != Sum {
			if err := variable.ConvertDataType(product.Float64); err != nil {
				return err
			}
		}

		// convert angles to complex values [cos(x),sin(x)], pre-multiplied
		// by existing weights
		if c.bt[k] == Angle {
			weightVariable := c.companionFor(variable, "weight")
			if weightVariable == nil {
				for i := 0; i < variable.NumElements(); i++ {
					weight[i] = 1
				}
				if err := c.addWeightVariable(Sum, variable.Name,
					variable.DimKind, variable.Dim, weight); err != nil {
					return err
				}
				weightVariable = c.companionFor(variable, "weight")
			}

			if err := product.ConvertUnitValues(variable.UnitString(), "rad",
				variable.Float64Data); err != nil {
				return err
			}
			if err := variable.AddDimension(variable.NumDims(), product.Independent, 2); err != nil {
				return err
			}
			for i := 0; i < variable.NumElements(); i += 2 {
				angle := variable.Float64Data[i]
				n := weightVariable.Float32Data[i/2]
				if n == 0 || math.IsNaN(angle) {
					variable.Float64Data[i] = 0
					variable.Float64Data[i+1] = 0
					weightVariable.Float32Data[i/2] = 0
				} else {
					variable.Float64Data[i] = float64(n) * math.Cos(angle)
					variable.Float64Data[i+1] = float64(n) * math.Sin(angle)
				}
			}
		}

		// pre-multiply by existing counts/weights (weights take preference)
		if c.bt[k] == Average || c.bt[k] == Uncertainty {
			if c.weightFor(variable, weight) {
				for i := 0; i < variable.NumElements(); i++ {
					variable.Float64Data[i] *= float64(weight[i])
				}
			} else if c.countFor(variable, count) {
				for i := 0; i < variable.NumElements(); i++ {
					variable.Float64Data[i] *= float64(count[i])
				}
			}
		}

		// square the pre-weighted uncertainties
		if c.bt[k] == Uncertainty {
			for i := 0; i < variable.NumElements(); i++ {
				variable.Float64Data[i] *= variable.Float64Data[i]
			}
		}
	}

	// sum up all samples into bins (in place), creating count/weight
	// companions where NaN values differentiate a variable from the global
	// count; summable variables follow in a second pass so that they cannot
	// be mistaken for valid pre-existing counts/weights
	for k := 0; k < len(p.Variables); k++ {
		if c.bt[k] == Skip || c.bt[k] == Remove || c.bt[k] == Sum {
			continue
		}
		variable := p.Variables[k]
		numSub := variable.NumElements() / numElements

		switch c.bt[k] {
		case TimeMin:
			for i := 0; i < numElements; i++ {
				target := index[binIndex[i]]
				if variable.Float64Data[i] < variable.Float64Data[target] {
					variable.Float64Data[target] = variable.Float64Data[i]
				}
			}
		case TimeMax:
			for i := 0; i < numElements; i++ {
				target := index[binIndex[i]]
				if variable.Float64Data[i] > variable.Float64Data[target] {
					variable.Float64Data[target] = variable.Float64Data[i]
				}
			}
		case Angle:
			for i := 0; i < numElements; i++ {
				target := index[binIndex[i]]
				if target == i {
					continue
				}
				for j := 0; j < numSub; j += 2 {
					variable.Float64Data[target*numSub+j] += variable.Float64Data[i*numSub+j]
					variable.Float64Data[target*numSub+j+1] += variable.Float64Data[i*numSub+j+1]
				}
			}
		default: // Average, Uncertainty
			useWeight := c.weightFor(variable, weight)
			haveCount := false
			if !useWeight {
				haveCount = c.countFor(variable, count)
				if !haveCount {
					for i := 0; i < variable.NumElements(); i++ {
						count[i] = 1
					}
				}
			}
			storeCount := false
			storeWeight := false

			for i := 0; i < numElements; i++ {
				target := index[binIndex[i]]
				if target != i {
					for j := 0; j < numSub; j++ {
						if math.IsNaN(variable.Float64Data[i*numSub+j]) {
							if useWeight {
								if weight[i*numSub+j] != 0 {
									weight[i*numSub+j] = 0
									storeWeight = true
								}
							} else if count[i*numSub+j] != 0 {
								count[i*numSub+j] = 0
								storeCount = true
							}
						} else {
							variable.Float64Data[target*numSub+j] += variable.Float64Data[i*numSub+j]
						}
					}
				} else {
					for j := 0; j < numSub; j++ {
						if math.IsNaN(variable.Float64Data[target*numSub+j]) {
							if useWeight {
								if weight[target*numSub+j] != 0 {
									weight[target*numSub+j] = 0
									storeWeight = true
								}
							} else if count[target*numSub+j] != 0 {
								count[target*numSub+j] = 0
								storeCount = true
							}
							variable.Float64Data[target*numSub+j] = 0
						}
					}
				}
			}

			if storeCount {
				if err := c.addCountVariable(Sum, variable.Name,
					variable.DimKind, variable.Dim, count); err != nil {
					return err
				}
			}
			if storeWeight {
				if err := c.addWeightVariable(Sum, variable.Name,
					variable.DimKind, variable.Dim, weight); err != nil {
					return err
				}
			}
		}
	}
	// the same, now only for the count and weight variables
	for k := 0; k < len(p.Variables); k++ {
		if c.bt[k] != Sum {
			continue
		}
		variable := p.Variables[k]
		numSub := variable.NumElements() / numElements

		for i := 0; i < numElements; i++ {
			target := index[binIndex[i]]
			if target == i {
				continue
			}
			if variable.Type == product.Int32 {
				for j := 0; j < numSub; j++ {
					variable.Int32Data[target*numSub+j] += variable.Int32Data[i*numSub+j]
				}
			} else {
				for j := 0; j < numSub; j++ {
					variable.Float32Data[target*numSub+j] += variable.Float32Data[i*numSub+j]
				}
			}
		}
	}

	// resample the time axis to the target bins; empty bins use sample 0
	// and are invalidated below
	for k := 0; k < len(p.Variables); k++ {
		if c.bt[k] == Skip || c.bt[k] == Remove {
			continue
		}
		if err := p.Variables[k].RearrangeDimension(0, numBins, index); err != nil {
			return err
		}
	}

	// set all empty bins to NaN (float64) or 0 (int32/float32 count/weight)
	for k := 0; k < len(p.Variables); k++ {
		if c.bt[k] == Skip || c.bt[k] == Remove {
			continue
		}
		variable := p.Variables[k]
		numSub := variable.NumElements() / numBins
		for i := 0; i < numBins; i++ {
			if binCount[i] != 0 {
				continue
			}
			for j := 0; j < numSub; j++ {
				switch variable.Type {
				case product.Int32:
					variable.Int32Data[i*numSub+j] = 0
				case product.Float32:
					variable.Float32Data[i*numSub+j] = 0
				default:
					variable.Float64Data[i*numSub+j] = math.NaN()
				}
			}
		}
	}

	p.Dimension[product.Time] = numBins

	// add the global count variable if it didn't exist yet
	if err := c.addCountVariable(Skip, "",
		[]product.DimensionKind{product.Time}, []int{numBins}, binCount); err != nil {
		return err
	}

	// post-process all variables
	for k := 0; k < len(p.Variables); k++ {
		if c.bt[k] == Skip || c.bt[k] == Remove {
			continue
		}
		variable := p.Variables[k]

		if c.bt[k] == Angle {
			// recover angles from the summed vectors
			for i := 0; i < variable.NumElements(); i += 2 {
				x := variable.Float64Data[i]
				y := variable.Float64Data[i+1]
				weight[i/2] = float32(math.Sqrt(x*x + y*y))
				variable.Float64Data[i] = math.Atan2(y, x)
			}
			if err := variable.RemoveDimension(variable.NumDims()-1, 0); err != nil {
				return err
			}
			if err := product.ConvertUnitValues("rad", variable.UnitString(),
				variable.Float64Data); err != nil {
				return err
			}

			// NaN where the weight vanished; the weight becomes the norm of
			// the averaged vector otherwise
			weightVariable := c.companionFor(variable, "weight")
			for i := 0; i < variable.NumElements(); i++ {
				if weightVariable.Float32Data[i] == 0 {
					variable.Float64Data[i] = math.NaN()
				} else {
					weightVariable.Float32Data[i] = weight[i]
				}
			}
		}

		// take the square root of the sum before dividing by the summed
		// counts/weights
		if c.bt[k] == Uncertainty {
			for i := 0; i < variable.NumElements(); i++ {
				variable.Float64Data[i] = math.Sqrt(variable.Float64Data[i])
			}
		}

		// divide by the sample count/weight; a zero denominator yields NaN
		if c.bt[k] == Average || c.bt[k] == Uncertainty {
			if c.weightFor(variable, weight) {
				for i := 0; i < variable.NumElements(); i++ {
					if weight[i] == 0 {
						variable.Float64Data[i] = math.NaN()
					} else {
						variable.Float64Data[i] /= float64(weight[i])
					}
				}
			} else if c.countFor(variable, count) {
				for i := 0; i < variable.NumElements(); i++ {
					if count[i] == 0 {
						variable.Float64Data[i] = math.NaN()
					} else {
						variable.Float64Data[i] /= float64(count[i])
					}
				}
			}
		}
	}

	// remove all variables that need to be removed, in reverse order
	for k := len(p.Variables) - 1; k >= 0; k-- {
		if c.bt[k] == Remove {
			if err := p.RemoveVariable(p.Variables[k]); err != nil {
				return err
			}
		}
	}

	return nil
}

// BinFull bins the product's variables such that all samples end up in a
// single bin.
func BinFull(p *product.Product) error {
	numElements := p.Dimension[product.Time]
	if numElements == 0 {
		return nil
	}
	return Bin(p, 1, make([]int, numElements))
}

// sampleEqual compares the values of a 1-D variable at two sample indexes.
// NaN values match each other, strings match by content.
func sampleEqual(v *product.Variable, i, j int) bool {
	switch v.Type {
	case product.Int8:
		return v.Int8Data[i] == v.Int8Data[j]
	case product.Int16:
		return v.Int16Data[i] == v.Int16Data[j]
	case product.Int32:
		return v.Int32Data[i] == v.Int32Data[j]
	case product.Float32:
		a, b := float64(v.Float32Data[i]), float64(v.Float32Data[j])
		return a == b || (math.IsNaN(a) && math.IsNaN(b))
	case product.Float64:
		a, b := v.Float64Data[i], v.Float64Data[j]
		return a == b || (math.IsNaN(a) && math.IsNaN(b))
	case product.String:
		return v.StringData[i] == v.StringData[j]
	}
	return false
}

// BinWithVariable bins the product such that all samples sharing the same
// combination of values of the named variables are averaged together.  The
// named variables must be one dimensional over time; they survive the
// binning even when the classifier would remove them.
func BinWithVariable(p *product.Product, names []string) error {
	if len(names) < 1 {
		return errs.New(errs.InvalidArgument, "binning requires at least one variable")
	}

	variables := make([]*product.Variable, len(names))
	for k, name := range names {
		v, err := p.GetVariable(name)
		if err != nil {
			return err
		}
		if v.NumDims() != 1 || v.DimKind[0] != product.Time {
			return errs.New(errs.InvalidArgument,
				"variable '%s' should be one dimensional and depend on time to be used for binning", name)
		}
		variables[k] = v
	}

	numElements := variables[0].NumElements()
	index := make([]int, 0, numElements)
	binIndex := make([]int, numElements)

	for i := 0; i < numElements; i++ {
		j := 0
		for ; j < len(index); j++ {
			equal := true
			for _, v := range variables {
				if !sampleEqual(v, index[j], i) {
					equal = false
					break
				}
			}
			if equal {
				break
			}
		}
		if j == len(index) {
			index = append(index, i)
		}
		binIndex[i] = j
	}
	numBins := len(index)

	// keep copies of the variables we bin on when binning would remove them
	copies := make([]*product.Variable, len(names))
	for k, v := range variables {
		if binningType(v, true) == Remove {
			copies[k] = v.Copy()
			if err := copies[k].RearrangeDimension(0, numBins, index); err != nil {
				return err
			}
		}
	}

	if err := Bin(p, numBins, binIndex); err != nil {
		return err
	}

	for _, cp := range copies {
		if cp != nil {
			if err := p.AddVariable(cp); err != nil {
				return err
			}
		}
	}
	return nil
}
