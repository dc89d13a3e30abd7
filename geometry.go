// Public domain.

package atmogrid

import (
	"github.com/soniakeys/unit"

	"github.com/mvaneijk/atmogrid/errs"
	"github.com/mvaneijk/atmogrid/sphere"
)

func fail(err error) error {
	if err != nil {
		errs.SetLast(err)
	}
	return err
}

// PointDistance returns the surface distance in meters between two points
// given in degrees, assuming a spherical earth.
func PointDistance(latitudeA, longitudeA, latitudeB, longitudeB float64) float64 {
	return sphere.SurfaceDistance(latitudeA, longitudeA, latitudeB, longitudeB)
}

// PointInArea determines whether a point is inside the area bounded by the
// given polygon (or bounding rect for two vertices), all in degrees.
func PointInArea(latitude, longitude float64, latitudeBounds, longitudeBounds []float64) (bool, error) {
	polygon, err := sphere.PolygonFromBounds(latitudeBounds, longitudeBounds, true)
	if err != nil {
		return false, fail(err)
	}
	point := sphere.Point{Lat: unit.AngleFromDeg(latitude), Lon: unit.AngleFromDeg(longitude)}
	point.Check()
	return polygon.ContainsPoint(point), nil
}

// AreaOverlap determines whether two areas on the surface of the earth
// overlap.  The bounds are polygon vertices, or rect corners for two
// entries, in degrees.
func AreaOverlap(latitudeBoundsA, longitudeBoundsA, latitudeBoundsB, longitudeBoundsB []float64) (bool, error) {
	polygonA, err := sphere.PolygonFromBounds(latitudeBoundsA, longitudeBoundsA, true)
	if err != nil {
		return false, fail(err)
	}
	polygonB, err := sphere.PolygonFromBounds(latitudeBoundsB, longitudeBoundsB, true)
	if err != nil {
		return false, fail(err)
	}
	return sphere.Overlapping(polygonA, polygonB), nil
}

// AreaOverlapFraction determines whether two areas overlap and the overlap
// fraction area(A∩B)/min(area(A),area(B)).
func AreaOverlapFraction(latitudeBoundsA, longitudeBoundsA, latitudeBoundsB, longitudeBoundsB []float64) (bool, float64, error) {
	polygonA, err := sphere.PolygonFromBounds(latitudeBoundsA, longitudeBoundsA, true)
	if err != nil {
		return false, 0, fail(err)
	}
	polygonB, err := sphere.PolygonFromBounds(latitudeBoundsB, longitudeBoundsB, true)
	if err != nil {
		return false, 0, fail(err)
	}
	overlap, fraction, err := sphere.OverlappingFraction(polygonA, polygonB)
	return overlap, fraction, fail(err)
}

// Area returns the surface area in m² of a polygon given by its bounds in
// degrees.
func Area(latitudeBounds, longitudeBounds []float64) (float64, error) {
	polygon, err := sphere.PolygonFromBounds(latitudeBounds, longitudeBounds, true)
	if err != nil {
		return 0, fail(err)
	}
	return polygon.SurfaceArea(), nil
}
