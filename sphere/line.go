// Public domain.

package sphere

import (
	"math"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/unit"
)

// Line is a great-circle segment.  The segment is obtained by rotating the
// canonical segment (0,0)→(Length,0) with the ZXZ Euler transformation
// (Phi, Theta, Psi).
type Line struct {
	Phi, Theta, Psi unit.Angle
	Length          unit.Angle
}

// LineRel classifies the relationship between two line segments.
type LineRel int8

const (
	LineEqual LineRel = iota
	LineContains
	LineContained
	LineOverlap
	LineCross
	LineConnected
	LineSeparate
)

func (r LineRel) String() string {
	switch r {
	case LineEqual:
		return "equal"
	case LineContains:
		return "contains"
	case LineContained:
		return "contained"
	case LineOverlap:
		return "overlap"
	case LineCross:
		return "cross"
	case LineConnected:
		return "connected"
	case LineSeparate:
		return "separate"
	}
	return "?"
}

// eulerFromLine returns the transformation defining the line.
func eulerFromLine(l Line) Euler {
	var e Euler
	e.SetZXZ()
	e.Phi = l.Phi
	e.Theta = l.Theta
	e.Psi = l.Psi
	return e
}

// inverseEulerFromLine returns the transformation that carries the line onto
// the equator starting at (0,0).
func inverseEulerFromLine(l Line) Euler {
	e := eulerFromLine(l)
	e.Invert()
	return e
}

// lineApplyEuler transforms a line with an Euler transformation.
func lineApplyEuler(l Line, tr *Euler) Line {
	e := eulerFromLine(l)
	c := Compose(&e, tr)
	return Line{Phi: c.Phi, Theta: c.Theta, Psi: c.Psi, Length: l.Length}
}

// swapBeginEnd returns the line with begin and end point exchanged.
func swapBeginEnd(l Line) Line {
	tmp := Line{
		Phi:    -l.Length,
		Theta:  unit.Angle(math.Pi),
		Psi:    0,
		Length: l.Length,
	}
	tr := eulerFromLine(l)
	return lineApplyEuler(tmp, &tr)
}

// lineEqual compares two lines by length and by the transformations that
// define them.  A full great circle compares equal regardless of phi.
func lineEqual(l1, l2 Line) bool {
	if fpNe(l1.Length.Rad(), l2.Length.Rad()) {
		return false
	}
	e1 := eulerFromLine(l1)
	e2 := eulerFromLine(l2)
	if fpEq(l2.Length.Rad(), twoPi) {
		e2.Phi = l1.Phi
	}
	return e1.Equal(&e2)
}

// Begin returns the begin point of the line.
func (l Line) Begin() Point {
	e := eulerFromLine(l)
	return e.RotatePoint(Point{})
}

// End returns the end point of the line.
func (l Line) End() Point {
	e := eulerFromLine(l)
	return e.RotatePoint(Point{Lon: l.Length})
}

// ContainsPoint reports whether p lies on the segment: rotated into the
// line's frame its latitude must be 0 and its longitude within [0,Length].
func (l Line) ContainsPoint(p Point) bool {
	inv := inverseEulerFromLine(l)
	q := inv.RotatePoint(p)
	if !fpZero(q.Lat.Rad()) {
		return false
	}
	return fpGe(q.Lon.Rad(), 0) && fpLe(q.Lon.Rad(), l.Length.Rad())
}

// meridian returns the meridian line for a given longitude.
func meridian(lon unit.Angle) Line {
	p := Point{Lon: lon}
	p.Check()
	return Line{
		Phi:    unit.Angle(-math.Pi / 2),
		Theta:  unit.Angle(math.Pi / 2),
		Psi:    p.Lon,
		Length: unit.Angle(math.Pi),
	}
}

// LineFromPoints derives the segment from begin to end.
func LineFromPoints(begin, end Point) Line {
	length := Distance(begin, end)

	// a segment of length π along a meridian has no unique great circle
	// through an Euler derivation; construct it directly
	if fpEq(length.Rad(), math.Pi) && fpEq(begin.Lon.Rad(), end.Lon.Rad()) {
		return meridian(begin.Lon)
	}

	if fpEq(length.Rad(), 0) {
		return Line{
			Phi:    unit.Angle(math.Pi / 2),
			Theta:  begin.Lat,
			Psi:    begin.Lon - unit.Angle(math.Pi/2),
			Length: 0,
		}
	}

	se := EulerFromVector(begin, end)
	return Line{Phi: se.Phi, Theta: se.Theta, Psi: se.Psi, Length: length}
}

// LineRelationship classifies the relationship between two segments.
//
// The longer line is rotated onto the equator from longitude 0 to its
// length.  If the other line then also lies on the equator the cases are
// settled by endpoint containment; otherwise the equator crossing node of
// the other line decides between cross and separate, with endpoint
// coincidence reported as connected.
func LineRelationship(line1, line2 Line) LineRel {
	if lineEqual(line1, line2) {
		return LineEqual
	}
	if lineEqual(swapBeginEnd(line1), line2) {
		return LineContains
	}

	var se Euler
	var sl1, sl2 Line
	var switched bool
	switch {
	case fpGe(line1.Length.Rad(), line2.Length.Rad()):
		se = inverseEulerFromLine(line1)
		sl1.Length = line1.Length
		sl2 = lineApplyEuler(line2, &se)
	case fpGe(line2.Length.Rad(), line1.Length.Rad()):
		se = inverseEulerFromLine(line2)
		sl1.Length = line2.Length
		sl2 = lineApplyEuler(line1, &se)
		switched = true
	default:
		// length is NaN for at least one of the lines
		return LineSeparate
	}
	if fpZero(sl1.Length.Rad()) {
		// both are points
		return LineSeparate
	}

	p0 := sl1.Begin()
	p1 := sl1.End()
	p2 := sl2.Begin()
	p3 := sl2.End()

	// sl2 at equator
	if fpZero(p2.Lat.Rad()) && fpZero(p3.Lat.Rad()) {
		a1 := sl1.ContainsPoint(p2)
		a2 := sl1.ContainsPoint(p3)
		switch {
		case a1 && a2:
			if switched {
				return LineContained
			}
			return LineContains
		case a1:
			if fpEq(p0.Lon.Rad(), p2.Lon.Rad()) || fpEq(p1.Lon.Rad(), p2.Lon.Rad()) {
				return LineConnected
			}
			return LineOverlap
		case a2:
			if fpEq(p0.Lon.Rad(), p3.Lon.Rad()) || fpEq(p1.Lon.Rad(), p3.Lon.Rad()) {
				return LineConnected
			}
			return LineOverlap
		}
		return LineSeparate
	}

	var res int
	if fpGt(sl2.Length.Rad(), 0) {
		if p0.Equal(p2) || p0.Equal(p3) || p1.Equal(p2) || p1.Equal(p3) {
			res = 1 << LineConnected
		}
	}

	a1 := fpGe(p2.Lat.Rad(), 0) && fpLe(p3.Lat.Rad(), 0) // sl2 crosses equator descending
	a2 := fpLe(p2.Lat.Rad(), 0) && fpGe(p3.Lat.Rad(), 0) // sl2 crosses equator ascending

	if !(a1 || a2) {
		res |= 1 << LineSeparate
	} else {
		se = inverseEulerFromLine(sl2)
		var sp Point
		if a1 {
			sp.Lon = unit.Angle(math.Pi) - se.Phi
		} else {
			sp.Lon = -se.Phi
		}
		sp.Check()
		if fpGe(sp.Lon.Rad(), 0) && fpLe(sp.Lon.Rad(), p1.Lon.Rad()) {
			res |= 1 << LineCross
		} else {
			res |= 1 << LineSeparate
		}
	}

	if res == 1<<LineSeparate {
		return LineSeparate
	}
	if res&(1<<LineConnected) != 0 {
		return LineConnected
	}
	if res&(1<<LineCross) != 0 {
		return LineCross
	}
	return LineSeparate
}

// IntersectionPoint returns the point where the great circles through p's
// and q's endpoints intersect, computed as the cross product of the two
// plane normals.  If the circles coincide both coordinates are NaN.
func IntersectionPoint(p, q Line) Point {
	lp := Line3D{Begin: p.Begin().Vector(), End: p.End().Vector()}
	lq := Line3D{Begin: q.Begin().Vector(), End: q.End().Vector()}

	np := lp.Normal()
	nq := lq.Normal()

	var u coord.Cart
	u.Cross(&np, &nq)

	n := norm(&u)
	if n == 0 {
		return Point{Lat: unit.Angle(math.NaN()), Lon: unit.Angle(math.NaN())}
	}
	u.MulScalar(&u, 1/n)

	pt := Point{
		Lat: unit.Angle(math.Asin(u.Z)),
		Lon: unit.Angle(math.Atan2(u.Y, u.X)),
	}
	pt.Check()
	return pt
}

// PointDistance returns the 3D point-line distance |(u−p)×(u−q)| / |p−q|,
// or NaN for a degenerate segment.
func (l Line) PointDistance(pt Point) float64 {
	p := l.Begin().Vector()
	q := l.End().Vector()
	u := pt.Vector()

	var uMinP, uMinQ, pMinQ, cross coord.Cart
	uMinP.Sub(&u, &p)
	uMinQ.Sub(&u, &q)
	pMinQ.Sub(&p, &q)
	cross.Cross(&uMinP, &uMinQ)

	d := norm(&pMinQ)
	if d == 0 {
		return math.NaN()
	}
	return norm(&cross) / d
}
