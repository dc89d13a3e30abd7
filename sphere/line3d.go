// Public domain.

package sphere

import (
	"math"

	"github.com/soniakeys/coord"
)

// Line3D is a great-circle segment held as its begin and end unit vectors.
// It is the cheap primitive for plane-intersection tests; Line is the
// Euler-angle form used wherever a segment has to be rotated.
type Line3D struct {
	Begin, End coord.Cart
}

// Normal returns the normal of the plane through the segment's great circle.
func (l *Line3D) Normal() coord.Cart {
	var n coord.Cart
	n.Cross(&l.Begin, &l.End)
	return n
}

// ContainsPoint reports whether the point, assumed normalized and on the
// great circle of the segment, lies between begin and end.  The angles from
// the endpoints must add up to the total angle of the segment.
func (l *Line3D) ContainsPoint(p *coord.Cart) bool {
	thetaBegin := math.Acos(l.Begin.Dot(p))
	thetaEnd := math.Acos(p.Dot(&l.End))
	thetaLine := math.Acos(l.Begin.Dot(&l.End))
	return fpEq(thetaBegin+thetaEnd, thetaLine)
}

// Intersects reports whether two segments intersect or are equal.  Any two
// segments on the same great circle report true, whether or not they
// overlap.  Otherwise segments that only share an endpoint (connected) and
// separate segments report false.
func (l *Line3D) Intersects(m *Line3D) bool {
	n1 := l.Normal()
	n2 := m.Normal()

	var i1 coord.Cart
	i1.Cross(&n1, &n2)

	n := norm(&i1)
	if n == 0 {
		// same great circle
		return true
	}
	i1.MulScalar(&i1, 1/n)

	var i2 coord.Cart
	i2.Neg(&i1)

	if vecEqual(&l.Begin, &m.Begin) || vecEqual(&l.Begin, &m.End) ||
		vecEqual(&l.End, &m.Begin) || vecEqual(&l.End, &m.End) {
		return false
	}

	return (l.ContainsPoint(&i1) && m.ContainsPoint(&i1)) ||
		(l.ContainsPoint(&i2) && m.ContainsPoint(&i2))
}

// SegmentsIntersect reports whether the segments p1→p2 and q1→q2 intersect
// or are equal.
func SegmentsIntersect(p1, p2, q1, q2 Point) bool {
	lp := Line3D{Begin: p1.Vector(), End: p2.Vector()}
	lq := Line3D{Begin: q1.Vector(), End: q2.Vector()}
	return lp.Intersects(&lq)
}
