// Public domain.

package binning

import (
	"math"

	"github.com/mvaneijk/atmogrid/errs"
	"github.com/mvaneijk/atmogrid/product"
)

// wrap maps v into the range [min,max).
func wrap(v, min, max float64) float64 {
	return v - math.Floor((v-min)/(max-min))*(max-min)
}

// findIndex locates v in an ascending edge array: the result i satisfies
// edges[i] <= v < edges[i+1].  Values below the range give -1, values above
// give the cell count (len(edges)-1).  A value exactly on the last edge
// belongs to the last cell.
func findIndex(edges []float64, v float64) int {
	n := len(edges)
	switch {
	case v < edges[0]:
		return -1
	case v > edges[n-1]:
		return n - 1
	case v == edges[n-1]:
		return n - 2
	}
	i := 0
	for v >= edges[i+1] {
		i++
	}
	return i
}

// make2DPolygon maps the polygon to the right longitude range, closes it at
// a pole when it wraps the full 360 degrees, repeats the first point at the
// end, and reports the lat/lon extremes.  The slices must have room for
// three extra points.  A polygon that wraps 360 degrees of longitude while
// crossing the equator covers an undeterminable pole; it is rejected by
// returning 0.
func make2DPolygon(latitude, longitude []float64, numElements int,
	referenceLongitude float64) (n int, latMin, latMax, lonMin, lonMax float64) {

	if longitude[0] < referenceLongitude-180 {
		longitude[0] += 360
	}
	if longitude[0] >= referenceLongitude+180 {
		longitude[0] -= 360
	}

	lonMin = longitude[0]
	lonMax = lonMin
	latMin = latitude[0]
	latMax = latMin

	for i := 1; i < numElements; i++ {
		for longitude[i] < longitude[i-1]-180 {
			longitude[i] += 360
		}
		for longitude[i] > longitude[i-1]+180 {
			longitude[i] -= 360
		}

		if latitude[i] < latMin {
			latMin = latitude[i]
		} else if latitude[i] > latMax {
			latMax = latitude[i]
		}
		if longitude[i] < lonMin {
			lonMin = longitude[i]
		} else if longitude[i] > lonMax {
			lonMax = longitude[i]
		}
	}

	// close the polygon (this could have a different longitude, due to the
	// consecutive-vertex mapping)
	lon := longitude[0]
	for lon < longitude[numElements-1]-180 {
		lon += 360
	}
	for lon > longitude[numElements-1]+180 {
		lon -= 360
	}
	if lon < lonMin {
		lonMin = lon
	} else if lon > lonMax {
		lonMax = lon
	}

	// we are covering a pole if our longitude range equals 360 degrees
	if math.Abs(lonMax-(lonMin+360)) < 1e-4 {
		if latMax > 0 {
			if latMin < 0 {
				// can't tell which pole is covered
				return 0, 0, 0, 0, 0
			}
			latMax = 90
			// close the polygon via the North pole
			longitude[numElements] = longitude[numElements-1]
			latitude[numElements] = 90
			numElements++
			longitude[numElements] = longitude[0]
			latitude[numElements] = 90
			numElements++
		} else if latMin < 0 {
			latMin = -90
			// close the polygon via the South pole
			longitude[numElements] = longitude[numElements-1]
			latitude[numElements] = -90
			numElements++
			longitude[numElements] = longitude[0]
			latitude[numElements] = -90
			numElements++
		}
	}

	// wrap the longitude range to [reference-180,reference+360]
	if lonMin < referenceLongitude-360 {
		lonMin += 360
		lonMax += 360
		for i := 0; i < numElements; i++ {
			longitude[i] += 360
		}
	}
	for lonMin >= referenceLongitude+180 {
		lonMin -= 360
		lonMax -= 360
		for i := 0; i < numElements; i++ {
			longitude[i] -= 360
		}
	}

	// repeat the first point at the end to ease iterating over the edges
	latitude[numElements] = latitude[0]
	longitude[numElements] = longitude[0]
	numElements++

	return numElements, latMin, latMax, lonMin, lonMax
}

// planarArea returns the Plate-Carrée area of a closed (lon,lat) ring.
func planarArea(latitude, longitude []float64, numPoints int) float64 {
	area := 0.0
	for i := 0; i < numPoints-1; i++ {
		area += (longitude[i] + longitude[i+1]) * (latitude[i] - latitude[i+1])
	}
	area /= 2
	if area < 0 {
		area = -area
	}
	return area
}

// clipArea clips the closed polygon against a cell with Sutherland-Hodgman
// passes over the two latitude and two longitude half planes and returns
// the Plate-Carrée area of the clipped polygon.  latitudeEdges and
// longitudeEdges hold just the two bounds of the cell.  tempLatitude and
// tempLongitude must hold three times the polygon's points.
func clipArea(numPoints int, polyLatitude, polyLongitude []float64,
	tempLatitude, tempLongitude []float64, latitudeEdges, longitudeEdges []float64) float64 {

	if numPoints < 3 {
		return 0
	}

	// the first pass fills the temp buffers at offset numPoints, so that
	// the second pass can run in place from offset 0
	offset := numPoints
	numTemp := 0

	// clamp to the latitude range
	for i := 0; i < numPoints-1; i++ {
		latitude := polyLatitude[i]
		longitude := polyLongitude[i]
		nextLatitude := polyLatitude[i+1]
		nextLongitude := polyLongitude[i+1]

		if latitude < latitudeEdges[0] {
			if nextLatitude > latitudeEdges[0] {
				longitude += (latitudeEdges[0] - latitude) * (nextLongitude - longitude) / (nextLatitude - latitude)
				latitude = latitudeEdges[0]
			}
		} else if latitude > latitudeEdges[1] {
			if nextLatitude < latitudeEdges[1] {
				longitude += (latitudeEdges[1] - latitude) * (nextLongitude - longitude) / (nextLatitude - latitude)
				latitude = latitudeEdges[1]
			}
		}
		if latitude >= latitudeEdges[0] && latitude <= latitudeEdges[1] {
			tempLatitude[offset+numTemp] = latitude
			tempLongitude[offset+numTemp] = longitude
			numTemp++
			if nextLatitude < latitudeEdges[0] {
				tempLongitude[offset+numTemp] = longitude + (latitudeEdges[0]-latitude)*
					(nextLongitude-longitude)/(nextLatitude-latitude)
				tempLatitude[offset+numTemp] = latitudeEdges[0]
				numTemp++
			} else if nextLatitude > latitudeEdges[1] {
				tempLongitude[offset+numTemp] = longitude + (latitudeEdges[1]-latitude)*
					(nextLongitude-longitude)/(nextLatitude-latitude)
				tempLatitude[offset+numTemp] = latitudeEdges[1]
				numTemp++
			}
		}
	}

	if numTemp < 3 {
		return 0
	}
	if tempLatitude[offset] != tempLatitude[offset+numTemp-1] ||
		tempLongitude[offset] != tempLongitude[offset+numTemp-1] {
		tempLatitude[offset+numTemp] = tempLatitude[offset]
		tempLongitude[offset+numTemp] = tempLongitude[offset]
		numTemp++
	}

	// clamp to the longitude range
	numPoints = numTemp
	numTemp = 0
	for i := 0; i < numPoints-1; i++ {
		latitude := tempLatitude[offset+i]
		longitude := tempLongitude[offset+i]
		nextLatitude := tempLatitude[offset+i+1]
		nextLongitude := tempLongitude[offset+i+1]

		if longitude < longitudeEdges[0] {
			if nextLongitude > longitudeEdges[0] {
				latitude += (longitudeEdges[0] - longitude) * (nextLatitude - latitude) / (nextLongitude - longitude)
				longitude = longitudeEdges[0]
			}
		} else if longitude > longitudeEdges[1] {
			if nextLongitude < longitudeEdges[1] {
				latitude += (longitudeEdges[1] - longitude) * (nextLatitude - latitude) / (nextLongitude - longitude)
				longitude = longitudeEdges[1]
			}
		}
		if longitude >= longitudeEdges[0] && longitude <= longitudeEdges[1] {
			tempLatitude[numTemp] = latitude
			tempLongitude[numTemp] = longitude
			numTemp++
			if nextLongitude < longitudeEdges[0] {
				tempLatitude[numTemp] = latitude + (longitudeEdges[0]-longitude)*
					(nextLatitude-latitude)/(nextLongitude-longitude)
				tempLongitude[numTemp] = longitudeEdges[0]
				numTemp++
			} else if nextLongitude > longitudeEdges[1] {
				tempLatitude[numTemp] = latitude + (longitudeEdges[1]-longitude)*
					(nextLatitude-latitude)/(nextLongitude-longitude)
				tempLongitude[numTemp] = longitudeEdges[1]
				numTemp++
			}
		}
	}

	if numTemp < 3 {
		return 0
	}
	if tempLatitude[0] != tempLatitude[numTemp-1] || tempLongitude[0] != tempLongitude[numTemp-1] {
		tempLatitude[numTemp] = tempLatitude[0]
		tempLongitude[numTemp] = tempLongitude[0]
		numTemp++
	}

	return planarArea(tempLatitude, tempLongitude, numTemp)
}

// cellWeight returns the fraction of a cell covered by the polygon: the
// Plate-Carrée area of the clipped polygon divided by the cell's area.
// latitudeEdges and longitudeEdges hold just the two bounds of the cell.
func cellWeight(numPoints int, polyLatitude, polyLongitude []float64,
	tempLatitude, tempLongitude []float64, latitudeEdges, longitudeEdges []float64) float64 {

	cellArea := (latitudeEdges[1] - latitudeEdges[0]) * (longitudeEdges[1] - longitudeEdges[0])
	return clipArea(numPoints, polyLatitude, polyLongitude,
		tempLatitude, tempLongitude, latitudeEdges, longitudeEdges) / cellArea
}

// cellsAndWeightsForBounds determines, per sample, the grid cells the
// sample's footprint polygon covers and the fraction of each cell's
// Plate-Carrée area covered by the polygon.
//
// numLatlonIndex receives the number of matching cells per sample; the
// returned flat lists hold the cell index and weight of every match in
// sample order.
func cellsAndWeightsForBounds(latitudeBounds, longitudeBounds *product.Variable,
	latitudeEdges, longitudeEdges []float64,
	numLatlonIndex []int) (latlonCellIndex []int, latlonWeight []float64, err error) {

	numLatitudeCells := len(latitudeEdges) - 1
	numLongitudeCells := len(longitudeEdges) - 1

	numElements := latitudeBounds.Dim[0]
	maxNumVertices := latitudeBounds.Dim[latitudeBounds.NumDims()-1]
	if longitudeBounds.Dim[longitudeBounds.NumDims()-1] != maxNumVertices {
		return nil, nil, errs.New(errs.InvalidVariable,
			"latitude_bounds and longitude_bounds variables should have the same "+
				"length for the independent dimension")
	}

	// room for the closing point and for two pole points
	polyLatitude := make([]float64, maxNumVertices+3)
	polyLongitude := make([]float64, maxNumVertices+3)
	// the clip buffers hold three times the polygon
	tempLatitude := make([]float64, 3*(maxNumVertices+3))
	tempLongitude := make([]float64, 3*(maxNumVertices+3))

	// per row/column cell spans, with room to index one before and after
	minLatID := make([]int, numLongitudeCells+2)
	maxLatID := make([]int, numLongitudeCells+2)
	minLonID := make([]int, numLatitudeCells+2)
	maxLonID := make([]int, numLatitudeCells+2)

	for i := 0; i < numElements; i++ {
		numLatlonIndex[i] = 0

		copy(polyLatitude, latitudeBounds.Float64Data[i*maxNumVertices:(i+1)*maxNumVertices])
		copy(polyLongitude, longitudeBounds.Float64Data[i*maxNumVertices:(i+1)*maxNumVertices])
		numVertices := maxNumVertices
		for numVertices > 0 && math.IsNaN(polyLatitude[numVertices-1]) {
			numVertices--
		}
		if numVertices > 2 && polyLatitude[0] == polyLatitude[numVertices-1] &&
			polyLongitude[0] == polyLongitude[numVertices-1] {
			// drop the duplicate point; make2DPolygon reintroduces it
			numVertices--
		}
		if numVertices == 2 {
			// a bounding rect: expand the two corners to four points
			polyLatitude[2] = polyLatitude[1]
			polyLongitude[2] = polyLongitude[1]
			polyLatitude[1] = polyLatitude[0]
			polyLatitude[3] = polyLatitude[2]
			polyLongitude[3] = polyLongitude[0]
			numVertices = 4
		} else if numVertices < 2 {
			continue
		}

		var latMin, latMax, lonMin, lonMax float64
		numVertices, latMin, latMax, lonMin, lonMax =
			make2DPolygon(polyLatitude, polyLongitude, numVertices, longitudeEdges[0])
		if numVertices == 0 {
			continue
		}
		if latMax <= latitudeEdges[0] || latMin >= latitudeEdges[numLatitudeCells] {
			continue
		}

		// two passes to handle wrap-around; the second shifts by +360
		for loop := 0; loop < 2; loop++ {
			cumsumOffset := len(latlonCellIndex)

			if loop == 1 {
				lonMin += 360
				lonMax += 360
				for k := 0; k < numVertices; k++ {
					polyLongitude[k] += 360
				}
			}
			if lonMax <= longitudeEdges[0] || lonMin >= longitudeEdges[numLongitudeCells] {
				continue
			}

			for j := 0; j < numLongitudeCells+2; j++ {
				minLatID[j] = numLatitudeCells
				maxLatID[j] = -1
			}
			for j := 0; j < numLatitudeCells+2; j++ {
				minLonID[j] = numLongitudeCells
				maxLonID[j] = -1
			}

			// walk every edge, recording each crossed cell with a
			// placeholder weight of 1
			latID := findIndex(latitudeEdges, polyLatitude[0])
			lonID := findIndex(longitudeEdges, polyLongitude[0])
			if lonID >= 0 && lonID < numLongitudeCells && latID >= 0 && latID < numLatitudeCells {
				numLatlonIndex[i]++
				latlonCellIndex = append(latlonCellIndex, latID*numLongitudeCells+lonID)
				latlonWeight = append(latlonWeight, 1)
			}
			if latID < minLatID[lonID+1] {
				minLatID[lonID+1] = latID
			}
			if latID > maxLatID[lonID+1] {
				maxLatID[lonID+1] = latID
			}
			if lonID < minLonID[latID+1] {
				minLonID[latID+1] = lonID
			}
			if lonID > maxLonID[latID+1] {
				maxLonID[latID+1] = lonID
			}
			for j := 0; j < numVertices-1; j++ {
				latitude := polyLatitude[j]
				longitude := polyLongitude[j]
				nextLatitude := polyLatitude[j+1]
				nextLongitude := polyLongitude[j+1]

				nextLatID := findIndex(latitudeEdges, nextLatitude)
				nextLonID := findIndex(longitudeEdges, nextLongitude)

				for latID != nextLatID || lonID != nextLonID {
					// determine the intermediate cells the edge crosses
					if nextLatID > latID {
						slope := (nextLongitude - longitude) / (nextLatitude - latitude)
						if nextLonID > lonID &&
							longitude+(latitudeEdges[latID+1]-latitude)*slope > longitudeEdges[lonID+1] {
							// move right
							latitude += (longitudeEdges[lonID+1] - longitude) / slope
							longitude = longitudeEdges[lonID+1]
							lonID++
						} else if nextLonID < lonID &&
							longitude+(latitudeEdges[latID+1]-latitude)*slope < longitudeEdges[lonID] {
							// move left
							latitude += (longitudeEdges[lonID] - longitude) / slope
							longitude = longitudeEdges[lonID]
							lonID--
						} else {
							// move up
							longitude += (latitudeEdges[latID+1] - latitude) * slope
							latitude = latitudeEdges[latID+1]
							latID++
						}
					} else if nextLatID < latID {
						slope := (nextLongitude - longitude) / (nextLatitude - latitude)
						if nextLonID > lonID &&
							longitude+(latitudeEdges[latID]-latitude)*slope > longitudeEdges[lonID+1] {
							// move right
							latitude += (longitudeEdges[lonID+1] - longitude) / slope
							longitude = longitudeEdges[lonID+1]
							lonID++
						} else if nextLonID < lonID &&
							longitude+(latitudeEdges[latID]-latitude)*slope < longitudeEdges[lonID] {
							// move left
							latitude += (longitudeEdges[lonID] - longitude) / slope
							longitude = longitudeEdges[lonID]
							lonID--
						} else {
							// move down
							longitude += (latitudeEdges[latID] - latitude) * slope
							latitude = latitudeEdges[latID]
							latID--
						}
					} else {
						slope := (nextLatitude - latitude) / (nextLongitude - longitude)
						if nextLonID > lonID {
							// move right
							latitude += (longitudeEdges[lonID+1] - longitude) * slope
							longitude = longitudeEdges[lonID+1]
							lonID++
						} else {
							// move left
							latitude += (longitudeEdges[lonID] - longitude) * slope
							longitude = longitudeEdges[lonID]
							lonID--
						}
					}
					if lonID >= 0 && lonID < numLongitudeCells && latID >= 0 && latID < numLatitudeCells {
						if lonID < minLonID[latID+1] || lonID > maxLonID[latID+1] ||
							latID < minLatID[lonID+1] || latID > maxLatID[lonID+1] {
							numLatlonIndex[i]++
							latlonCellIndex = append(latlonCellIndex, latID*numLongitudeCells+lonID)
							latlonWeight = append(latlonWeight, 1)
						}
					}
					if latID < minLatID[lonID+1] {
						minLatID[lonID+1] = latID
					}
					if latID > maxLatID[lonID+1] {
						maxLatID[lonID+1] = latID
					}
					if lonID < minLonID[latID+1] {
						minLonID[latID+1] = lonID
					}
					if lonID > maxLonID[latID+1] {
						maxLonID[latID+1] = lonID
					}
				}
			}

			// replace the placeholder weights with the overlap fraction
			// per cell
			for j := cumsumOffset; j < len(latlonCellIndex); j++ {
				latID = latlonCellIndex[j] / numLongitudeCells
				lonID = latlonCellIndex[j] - latID*numLongitudeCells
				latlonWeight[j] = cellWeight(numVertices, polyLatitude, polyLongitude,
					tempLatitude, tempLongitude,
					latitudeEdges[latID:latID+2], longitudeEdges[lonID:lonID+2])
			}

			// add the grid cells that lie fully inside the polygon
			for j := 0; j < numLatitudeCells; j++ {
				if minLonID[j+1] >= maxLonID[j+1] {
					continue
				}
				for k := minLonID[j+1] + 1; k < maxLonID[j+1]; k++ {
					cellIndex := j*numLongitudeCells + k
					if j <= minLatID[k+1] || j >= maxLatID[k+1] {
						continue
					}
					// skip cells already added for a partial overlap
					l := cumsumOffset
					for ; l < len(latlonCellIndex); l++ {
						if cellIndex == latlonCellIndex[l] {
							break
						}
					}
					if l == len(latlonCellIndex) {
						numLatlonIndex[i]++
						latlonCellIndex = append(latlonCellIndex, cellIndex)
						latlonWeight = append(latlonWeight,
							cellWeight(numVertices, polyLatitude, polyLongitude,
								tempLatitude, tempLongitude,
								latitudeEdges[j:j+2], longitudeEdges[k:k+2]))
					}
				}
			}
		}
	}

	return latlonCellIndex, latlonWeight, nil
}

// cellsForPoints determines, per point sample, the single grid cell the
// sample falls in.  The lower cell edge is inclusive and the upper edge
// exclusive, except for the last cell when the grid does not wrap fully
// around.
func cellsForPoints(latitude, longitude *product.Variable,
	latitudeEdges, longitudeEdges []float64, numLatlonIndex []int) []int {

	numLatitudeCells := len(latitudeEdges) - 1
	numLongitudeCells := len(longitudeEdges) - 1
	var latlonCellIndex []int

	numElements := latitude.Dim[0]
	for i := 0; i < numElements; i++ {
		latitudeIndex := findIndex(latitudeEdges, latitude.Float64Data[i])
		if latitudeIndex < 0 || latitudeIndex >= numLatitudeCells {
			numLatlonIndex[i] = 0
			continue
		}
		wrappedLongitude := wrap(longitude.Float64Data[i], longitudeEdges[0], longitudeEdges[0]+360)
		longitudeIndex := findIndex(longitudeEdges, wrappedLongitude)
		if longitudeIndex < 0 || longitudeIndex >= numLongitudeCells {
			numLatlonIndex[i] = 0
			continue
		}
		numLatlonIndex[i] = 1
		latlonCellIndex = append(latlonCellIndex, latitudeIndex*numLongitudeCells+longitudeIndex)
	}
	return latlonCellIndex
}
