// Public domain.

package binning

import (
	"math"

	"github.com/mvaneijk/atmogrid/errs"
	"github.com/mvaneijk/atmogrid/product"
)

// BinSpatial bins the product's variables into a time × latitude ×
// longitude grid.  Each time sample is first assigned to a time bin by
// timeBinIndex, then to the lat/lon cells it covers.
//
// The grid is defined by strictly ascending edge arrays in degrees, with
// latitude edges in [-90,90] and a longitude span of at most 360 degrees.
//
// If the product has latitude_bounds {time,independent} and
// longitude_bounds {time,independent} variables an area binning is
// performed: each sample contributes to a cell with the fraction of the
// cell covered by its footprint polygon, with straight lines in the
// Plate-Carrée plane.  Otherwise latitude {time} and longitude {time}
// select a single cell per sample (point binning).
//
// Existing count and weight variables and all latitude/longitude variables
// are removed.  Binned variables are converted to float64 and gain the
// latitude and longitude dimensions; cells without samples become NaN.  A
// 'count' variable with samples per time bin and a 'weight' variable with
// the summed cell weights are added, plus '<name>_weight' companions where
// NaN values reduced a variable's own contributions.  The datetime axis
// variables are reduced along time only.  Fresh latitude_bounds and
// longitude_bounds variables describe the grid afterwards.
func BinSpatial(p *product.Product, numTimeBins int, timeBinIndex []int,
	latitudeEdges, longitudeEdges []float64) error {

	if p.Dimension[product.Latitude] > 0 || p.Dimension[product.Longitude] > 0 {
		return errs.New(errs.InvalidArgument, "spatial binning cannot be performed "+
			"on products that already have a latitude and/or longitude dimension")
	}

	numTimeElements := p.Dimension[product.Time]
	if len(timeBinIndex) != numTimeElements {
		return errs.New(errs.InvalidArgument,
			"time bin index length (%d) does not match time dimension length (%d)",
			len(timeBinIndex), numTimeElements)
	}
	for i := range timeBinIndex {
		if timeBinIndex[i] < 0 || timeBinIndex[i] >= numTimeBins {
			return errs.New(errs.InvalidArgument,
				"timeBinIndex[%d] (%d) should be in the range [0..%d)", i, timeBinIndex[i], numTimeBins)
		}
	}

	if len(latitudeEdges) < 2 {
		return errs.New(errs.InvalidArgument, "need at least 2 latitude edges to perform spatial binning")
	}
	if len(longitudeEdges) < 2 {
		return errs.New(errs.InvalidArgument, "need at least 2 longitude edges to perform spatial binning")
	}
	for _, edge := range latitudeEdges {
		if edge < -90 || edge > 90 {
			return errs.New(errs.InvalidArgument,
				"latitude edge value (%f) needs to be in the range [-90,90] for spatial binning", edge)
		}
	}
	for i := 1; i < len(latitudeEdges); i++ {
		if latitudeEdges[i] <= latitudeEdges[i-1] {
			return errs.New(errs.InvalidArgument,
				"latitude edge values need to be in strict ascending order for spatial binning")
		}
	}
	for i := 1; i < len(longitudeEdges); i++ {
		if longitudeEdges[i] <= longitudeEdges[i-1] {
			return errs.New(errs.InvalidArgument,
				"longitude edge values need to be in strict ascending order for spatial binning")
		}
	}
	if longitudeEdges[len(longitudeEdges)-1]-longitudeEdges[0] > 360 {
		return errs.New(errs.InvalidArgument,
			"longitude edge range (%f .. %f) cannot exceed 360 degrees",
			longitudeEdges[0], longitudeEdges[len(longitudeEdges)-1])
	}

	numLatitudeCells := len(latitudeEdges) - 1
	numLongitudeCells := len(longitudeEdges) - 1
	spatialBlockLength := numLatitudeCells * numLongitudeCells

	numLatlonIndex := make([]int, numTimeElements)
	var latlonCellIndex []int
	var latlonWeight []float64
	areaBinning := false

	boundsDims := []product.DimensionKind{product.Time, product.Independent}
	if latitudeBounds, err := p.GetDerivedVariable("latitude_bounds", boundsDims, "degree_north"); err == nil {
		if longitudeBounds, err := p.GetDerivedVariable("longitude_bounds", boundsDims, "degree_east"); err == nil {
			areaBinning = true
			latlonCellIndex, latlonWeight, err = cellsAndWeightsForBounds(
				latitudeBounds, longitudeBounds, latitudeEdges, longitudeEdges, numLatlonIndex)
			if err != nil {
				return err
			}
		}
	}
	if !areaBinning {
		pointDims := []product.DimensionKind{product.Time}
		latitude, err := p.GetDerivedVariable("latitude", pointDims, "degree_north")
		if err != nil {
			return err
		}
		longitude, err := p.GetDerivedVariable("longitude", pointDims, "degree_east")
		if err != nil {
			return err
		}
		latlonCellIndex = cellsForPoints(latitude, longitude, latitudeEdges, longitudeEdges, numLatlonIndex)
	}

	c := newBinContext(p, spatialBinningType)

	// size the weight scratch by the largest variable, before or after
	// gaining the lat/lon dimensions
	weightSize := 0
	for k, v := range p.Variables {
		if c.bt[k] == Remove || c.bt[k] == Skip {
			continue
		}
		totalNumElements := v.NumElements()
		if numTimeBins*spatialBlockLength > numTimeElements {
			totalNumElements = numTimeBins * spatialBlockLength * (totalNumElements / numTimeElements)
		}
		if totalNumElements > weightSize {
			weightSize = totalNumElements
		}
	}
	if weightSize < numTimeBins*spatialBlockLength {
		weightSize = numTimeBins * spatialBlockLength
	}

	// for each time bin, the index of the first contributing sample; only
	// samples that cover at least one grid cell contribute
	timeIndex := make([]int, numTimeBins)
	binCount := make([]int32, numTimeBins)
	weight := make([]float32, weightSize)

	for i := 0; i < numTimeElements; i++ {
		if numLatlonIndex[i] > 0 {
			if binCount[timeBinIndex[i]] == 0 {
				timeIndex[timeBinIndex[i]] = i
			}
			binCount[timeBinIndex[i]]++
		}
	}

	// pre-process all variables
	for k := 0; k < len(p.Variables); k++ {
		if c.bt[k] == Skip || c.bt[k] == Remove {
			continue
		}
		variable := p.Variables[k]

		if err := variable.ConvertDataType(product.Float64); err != nil {
			return err
		}

		if c.bt[k] == Angle {
			// convert angles to complex values [cos(x),sin(x)]
			if err := product.ConvertUnitValues(variable.UnitString(), "rad",
				variable.Float64Data); err != nil {
				return err
			}
			if err := variable.AddDimension(variable.NumDims(), product.Independent, 2); err != nil {
				return err
			}
			for i := 0; i < variable.NumElements(); i += 2 {
				variable.Float64Data[i] = math.Cos(variable.Float64Data[i])
				variable.Float64Data[i+1] = math.Sin(variable.Float64Data[i+1])
			}
		}
	}

	p.Dimension[product.Time] = numTimeBins
	p.Dimension[product.Latitude] = numLatitudeCells
	p.Dimension[product.Longitude] = numLongitudeCells

	// the global count variable holds samples per time bin
	if err := c.addCountVariable(Skip, "",
		[]product.DimensionKind{product.Time}, []int{numTimeBins}, binCount); err != nil {
		return err
	}

	// the global weight variable holds the summed cell weights
	gridDimKind := []product.DimensionKind{product.Time, product.Latitude, product.Longitude}
	gridDim := []int{numTimeBins, numLatitudeCells, numLongitudeCells}
	for i := 0; i < numTimeBins*spatialBlockLength; i++ {
		weight[i] = 0
	}
	cumsumIndex := 0
	for i := 0; i < numTimeElements; i++ {
		indexOffset := timeBinIndex[i] * spatialBlockLength
		for l := 0; l < numLatlonIndex[i]; l++ {
			if areaBinning {
				weight[indexOffset+latlonCellIndex[cumsumIndex]] += float32(latlonWeight[cumsumIndex])
			} else {
				weight[indexOffset+latlonCellIndex[cumsumIndex]]++
			}
			cumsumIndex++
		}
	}
	if err := c.addWeightVariable(Skip, "", gridDimKind, gridDim, weight); err != nil {
		return err
	}

	// sum up all samples into spatial bins, replacing each variable with
	// its gridded version, and create weight companions where needed
	for k := 0; k < len(p.Variables); k++ {
		if c.bt[k] == Skip || c.bt[k] == Remove {
			continue
		}
		variable := p.Variables[k]
		numSub := variable.NumElements() / numTimeElements

		if c.bt[k] == TimeMin || c.bt[k] == TimeMax || c.bt[k] == TimeAverage {
			// datetime axis variables are binned temporally, not spatially
			switch c.bt[k] {
			case TimeMin:
				for i := 0; i < numTimeElements; i++ {
					if numLatlonIndex[i] > 0 {
						target := timeIndex[timeBinIndex[i]]
						if variable.Float64Data[i] < variable.Float64Data[target] {
							variable.Float64Data[target] = variable.Float64Data[i]
						}
					}
				}
			case TimeMax:
				for i := 0; i < numTimeElements; i++ {
					if numLatlonIndex[i] > 0 {
						target := timeIndex[timeBinIndex[i]]
						if variable.Float64Data[i] > variable.Float64Data[target] {
							variable.Float64Data[target] = variable.Float64Data[i]
						}
					}
				}
			default:
				// datetime values should not be NaN, so no NaN filtering
				for i := 0; i < numTimeElements; i++ {
					if numLatlonIndex[i] > 0 {
						target := timeIndex[timeBinIndex[i]]
						if target != i {
							variable.Float64Data[target] += variable.Float64Data[i]
						}
					}
				}
			}
			if err := variable.RearrangeDimension(0, numTimeBins, timeIndex); err != nil {
				return err
			}
			for i := 0; i < variable.NumElements(); i++ {
				if binCount[i] == 0 {
					variable.Float64Data[i] = math.NaN()
				} else if c.bt[k] == TimeAverage {
					variable.Float64Data[i] /= float64(binCount[i])
				}
			}
			continue
		}

		// Average and Angle variables gain the lat/lon dimensions
		newDimKind := append([]product.DimensionKind{product.Time, product.Latitude, product.Longitude},
			variable.DimKind[1:]...)
		newDim := append([]int{numTimeBins, numLatitudeCells, numLongitudeCells},
			variable.Dim[1:]...)
		newVariable, err := product.NewVariable(variable.Name, variable.Type, newDimKind, newDim)
		if err != nil {
			return err
		}
		newVariable.CopyAttributesFrom(variable)

		// sum up all values per cell
		storeWeightVariable := false
		for i := range weight[:weightSize] {
			weight[i] = 0
		}
		cumsumIndex = 0
		for i := 0; i < numTimeElements; i++ {
			indexOffset := timeBinIndex[i] * spatialBlockLength
			for l := 0; l < numLatlonIndex[i]; l++ {
				target := indexOffset + latlonCellIndex[cumsumIndex]
				sampleWeight := 1.0
				if areaBinning {
					sampleWeight = latlonWeight[cumsumIndex]
				}
				if c.bt[k] == Angle {
					// one weight element per complex pair
					for j := 0; j < numSub; j += 2 {
						if !math.IsNaN(variable.Float64Data[i*numSub+j]) {
							weight[(target*numSub+j)/2] += float32(sampleWeight)
							newVariable.Float64Data[target*numSub+j] +=
								sampleWeight * variable.Float64Data[i*numSub+j]
							newVariable.Float64Data[target*numSub+j+1] +=
								sampleWeight * variable.Float64Data[i*numSub+j+1]
						}
					}
				} else {
					for j := 0; j < numSub; j++ {
						if !math.IsNaN(variable.Float64Data[i*numSub+j]) {
							weight[target*numSub+j] += float32(sampleWeight)
							newVariable.Float64Data[target*numSub+j] +=
								sampleWeight * variable.Float64Data[i*numSub+j]
						} else {
							storeWeightVariable = true
						}
					}
				}
				cumsumIndex++
			}
		}

		p.Variables[k] = newVariable
		variable = newVariable

		// post-process the gridded variable
		if c.bt[k] == Angle {
			for i := 0; i < variable.NumElements(); i += 2 {
				if weight[i/2] == 0 {
					variable.Float64Data[i] = math.NaN()
				} else {
					x := variable.Float64Data[i]
					y := variable.Float64Data[i+1]
					weight[i/2] = float32(math.Sqrt(x*x + y*y))
					variable.Float64Data[i] = math.Atan2(y, x)
				}
			}
			if err := variable.RemoveDimension(variable.NumDims()-1, 0); err != nil {
				return err
			}
			if err := product.ConvertUnitValues("rad", variable.UnitString(),
				variable.Float64Data); err != nil {
				return err
			}
			storeWeightVariable = true
		} else {
			for i := 0; i < variable.NumElements(); i++ {
				if weight[i] == 0 {
					variable.Float64Data[i] = math.NaN()
				} else {
					// divide by the sum of the weights
					variable.Float64Data[i] /= float64(weight[i])
				}
			}
		}

		if storeWeightVariable {
			if err := c.addWeightVariable(Skip, variable.Name,
				variable.DimKind, variable.Dim, weight); err != nil {
				return err
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

	// describe the grid with fresh bounds variables
	latitudeBounds, err := product.NewVariable("latitude_bounds", product.Float64,
		[]product.DimensionKind{product.Latitude, product.Independent},
		[]int{numLatitudeCells, 2})
	if err != nil {
		return err
	}
	for i := 0; i < numLatitudeCells; i++ {
		latitudeBounds.Float64Data[2*i] = latitudeEdges[i]
		latitudeBounds.Float64Data[2*i+1] = latitudeEdges[i+1]
	}
	latitudeBounds.SetUnit("degree_north")
	if err := p.AddVariable(latitudeBounds); err != nil {
		return err
	}

	longitudeBounds, err := product.NewVariable("longitude_bounds", product.Float64,
		[]product.DimensionKind{product.Longitude, product.Independent},
		[]int{numLongitudeCells, 2})
	if err != nil {
		return err
	}
	for i := 0; i < numLongitudeCells; i++ {
		longitudeBounds.Float64Data[2*i] = longitudeEdges[i]
		longitudeBounds.Float64Data[2*i+1] = longitudeEdges[i+1]
	}
	longitudeBounds.SetUnit("degree_east")
	if err := p.AddVariable(longitudeBounds); err != nil {
		return err
	}

	return nil
}

// BinSpatialFull performs a spatial binning with all samples in a single
// time bin.
func BinSpatialFull(p *product.Product, latitudeEdges, longitudeEdges []float64) error {
	numElements := p.Dimension[product.Time]
	if numElements == 0 {
		return nil
	}
	return BinSpatial(p, 1, make([]int, numElements), latitudeEdges, longitudeEdges)
}
