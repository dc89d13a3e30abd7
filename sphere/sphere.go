// Public domain.

// Package sphere implements points, great-circle lines, small circles and
// convex polygons on the unit sphere, with ZXZ Euler rotation machinery.
//
// Angles are unit.Angle throughout, 3D vectors are coord.Cart.  Results in
// meters use the WGS84 sphere radius.
package sphere

import (
	"math"

	"github.com/soniakeys/coord"
)

// EarthRadius is the radius of the WGS84 sphere in meters.
const EarthRadius = 6371007.1809184756

// epsilon for absolute floating point comparisons.
const epsilon = 1e-10

func fpZero(a float64) bool  { return math.Abs(a) <= epsilon }
func fpEq(a, b float64) bool { return math.Abs(a-b) <= epsilon }
func fpNe(a, b float64) bool { return !fpEq(a, b) }
func fpLt(a, b float64) bool { return a < b-epsilon }
func fpGt(a, b float64) bool { return a > b+epsilon }
func fpLe(a, b float64) bool { return a <= b+epsilon }
func fpGe(a, b float64) bool { return a >= b-epsilon }

// norm returns the length of v.
func norm(v *coord.Cart) float64 {
	return math.Sqrt(v.Square())
}

// vecEqual compares two vectors under the package epsilon.
func vecEqual(a, b *coord.Cart) bool {
	return fpEq(a.X, b.X) && fpEq(a.Y, b.Y) && fpEq(a.Z, b.Z)
}
