// Public domain.

package sphere

import (
	"math"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/unit"

	"github.com/mvaneijk/atmogrid/errs"
)

// Axis identifies a rotation axis of an Euler transformation.
type Axis byte

const (
	AxisX Axis = 'X'
	AxisY Axis = 'Y'
	AxisZ Axis = 'Z'
)

// Euler is a rotation over three angles around three axes.  The package
// constructors produce ZXZ transformations: phi around Z, theta around X,
// psi around Z.
type Euler struct {
	Phi, Theta, Psi             unit.Angle
	PhiAxis, ThetaAxis, PsiAxis Axis
}

// SetZXZ sets the axes of rotation to Z, X, Z.
func (e *Euler) SetZXZ() {
	e.PhiAxis = AxisZ
	e.ThetaAxis = AxisX
	e.PsiAxis = AxisZ
}

// Validate reports an InvalidArgument error if any axis is not X, Y or Z.
func (e *Euler) Validate() error {
	for _, a := range [3]Axis{e.PhiAxis, e.ThetaAxis, e.PsiAxis} {
		switch a {
		case AxisX, AxisY, AxisZ:
		default:
			return errs.New(errs.InvalidArgument, "invalid Euler axis '%c'", a)
		}
	}
	return nil
}

// rotate applies a single axis rotation to u.
func rotate(u coord.Cart, axis Axis, sin, cos float64) coord.Cart {
	var v coord.Cart
	switch axis {
	case AxisX:
		v.X = u.X
		v.Y = cos*u.Y - sin*u.Z
		v.Z = sin*u.Y + cos*u.Z
	case AxisY:
		v.X = cos*u.X + sin*u.Z
		v.Y = u.Y
		v.Z = -sin*u.X + cos*u.Z
	case AxisZ:
		v.X = cos*u.X - sin*u.Y
		v.Y = sin*u.X + cos*u.Y
		v.Z = u.Z
	default:
		v = u
	}
	return v
}

// Apply rotates the vector v over the three axes in order phi, theta, psi.
// Axes outside X, Y, Z are detected by Validate; Apply leaves the vector
// unrotated for such an axis.
func (e *Euler) Apply(v *coord.Cart) coord.Cart {
	u := *v
	angles := [3]unit.Angle{e.Phi, e.Theta, e.Psi}
	axes := [3]Axis{e.PhiAxis, e.ThetaAxis, e.PsiAxis}
	for i := 0; i < 3; i++ {
		if fpZero(angles[i].Rad()) {
			continue
		}
		s, c := angles[i].Sincos()
		u = rotate(u, axes[i], s, c)
	}
	return u
}

// RotatePoint applies the transformation to a spherical point and returns
// the canonicalized result.
func (e *Euler) RotatePoint(p Point) Point {
	v := p.Vector()
	out := e.Apply(&v)
	q := PointFromVector(&out)
	q.Check()
	return q
}

// Invert replaces e with its inverse: the angles are negated in reverse
// order and the phi and psi axes are swapped.
func (e *Euler) Invert() {
	p := [3]Point{
		{Lon: -e.Psi},
		{Lon: -e.Theta},
		{Lon: -e.Phi},
	}
	for i := range p {
		p[i].Check()
	}
	e.Phi = p[0].Lon
	e.Theta = p[1].Lon
	e.Psi = p[2].Lon
	e.PhiAxis, e.PsiAxis = e.PsiAxis, e.PhiAxis
}

// two fixed test points used to compare transformations.
var eulerTestPoints = [2]Point{
	{Lat: 0, Lon: 0},
	{Lat: 0, Lon: unit.Angle(math.Pi / 2)},
}

// Equal reports whether e and f carry the two fixed test points to the same
// destinations.
func (e *Euler) Equal(f *Euler) bool {
	for _, tp := range eulerTestPoints {
		if !e.RotatePoint(tp).Equal(f.RotatePoint(tp)) {
			return false
		}
	}
	return true
}

// Compose determines the ZXZ transformation equivalent to applying in and
// then t, by tracking the images of the two fixed test points.
func Compose(in, t *Euler) Euler {
	p0 := t.RotatePoint(in.RotatePoint(eulerTestPoints[0]))
	p1 := t.RotatePoint(in.RotatePoint(eulerTestPoints[1]))
	return EulerFromVector(p0, p1)
}

// inverseEulerFromVector builds the ZXZ transformation that carries the
// spherical vector begin→end onto the equator starting at (0,0).
func inverseEulerFromVector(begin, end Point) Euler {
	var inv Euler
	inv.SetZXZ()
	if begin.Equal(end) {
		return inv
	}

	vb := begin.Vector()
	ve := end.Vector()
	var cross coord.Cart
	cross.Cross(&vb, &ve)
	node := PointFromVector(&cross)

	inv.Phi = -node.Lon - unit.Angle(math.Pi/2)
	inv.Theta = node.Lat - unit.Angle(math.Pi/2)
	inv.Psi = 0

	rotated := inv.RotatePoint(begin)
	inv.Psi = -rotated.Lon
	return inv
}

// EulerFromVector builds the ZXZ transformation whose application carries
// (0,0) to begin and (L,0) to end, L being the arc length of begin→end.
func EulerFromVector(begin, end Point) Euler {
	e := inverseEulerFromVector(begin, end)
	e.Invert()
	return e
}
