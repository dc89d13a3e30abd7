// Public domain.

package sphere

import (
	"math"

	"github.com/soniakeys/coord"
	"github.com/soniakeys/unit"
	xrand "golang.org/x/exp/rand"

	"github.com/mvaneijk/atmogrid/errs"
)

// Polygon is a convex polygon on the unit sphere.  Vertices are ordered,
// the closing edge from the last vertex back to the first is implicit, and
// the interior lies to the left of each edge.  Input order may be clockwise
// or counter-clockwise; Centre detects orientation and compensates.
type Polygon struct {
	Point []Point
}

// LinePolyRel classifies a line against a polygon.
type LinePolyRel int8

const (
	LinePolySeparate LinePolyRel = iota
	LinePolyContained
	LinePolyOverlap
)

// PolyRel classifies a polygon against a polygon.
type PolyRel int8

const (
	PolySeparate PolyRel = iota
	PolyContains
	PolyContained
	PolyOverlap
)

// NewPolygon creates a polygon from a vertex list.  The slice is taken over
// by the polygon.
func NewPolygon(points []Point) *Polygon {
	return &Polygon{Point: points}
}

// segment returns the i-th edge, connecting vertex i to vertex i+1 (or back
// to vertex 0 for the last edge).  The index must be valid.
func (p *Polygon) segment(i int) Line {
	if i == len(p.Point)-1 {
		return LineFromPoints(p.Point[i], p.Point[0])
	}
	return LineFromPoints(p.Point[i], p.Point[i+1])
}

// Segment returns the i-th edge of the polygon.
func (p *Polygon) Segment(i int) (Line, error) {
	if i < 0 || i >= len(p.Point) {
		return Line{}, errs.New(errs.InvalidArgument,
			"index (%d) out of range [0,%d)", i, len(p.Point))
	}
	return p.segment(i), nil
}

// applyEuler returns the polygon with all vertices transformed.
func (p *Polygon) applyEuler(e *Euler) *Polygon {
	out := &Polygon{Point: make([]Point, len(p.Point))}
	for i := range p.Point {
		out.Point[i] = e.RotatePoint(p.Point[i])
	}
	return out
}

// boundsContainAnyPoint checks points against the lat/lon bounding box of
// the polygon.  Boundaries crossing the dateline are handled by mapping
// longitudes near the previous vertex; a boundary covering a pole extends
// the box to that pole.  The latitude limits are inflated to the great
// circle midpoint so that edges are enclosed, not their chords.
func (p *Polygon) boundsContainAnyPoint(points []Point) bool {
	if len(p.Point) == 0 || len(points) == 0 {
		return false
	}

	minLon := p.Point[0].Lon.Rad()
	maxLon := minLon
	refLon := minLon
	minLat := p.Point[0].Lat.Rad()
	maxLat := minLat

	for i := 1; i < len(p.Point); i++ {
		lon := p.Point[i].Lon.Rad()
		lat := p.Point[i].Lat.Rad()

		if lat < minLat {
			minLat = lat
		} else if lat > maxLat {
			maxLat = lat
		}

		if lon < refLon-math.Pi {
			lon += twoPi
		} else if lon > refLon+math.Pi {
			lon -= twoPi
		}
		if lon < minLon {
			minLon = lon
		} else if lon > maxLon {
			maxLon = lon
		}
		refLon = lon
	}
	// close the polygon (this could have a different longitude, due to the
	// refLon mapping)
	lon := p.Point[0].Lon.Rad()
	if lon < refLon-math.Pi {
		lon += twoPi
	} else if lon > refLon+math.Pi {
		lon -= twoPi
	}
	if lon < minLon {
		minLon = lon
	} else if lon > maxLon {
		maxLon = lon
	}
	// we are covering a pole if our longitude range equals 2π
	// (if we cross the equator then we don't know which pole is covered,
	// so the whole earth remains the bounding box)
	if fpEq(maxLon, minLon+twoPi) {
		if maxLat > 0 {
			maxLat = math.Pi / 2
		}
		if minLat < 0 {
			minLat = -math.Pi / 2
		}
	}

	// compensate for greatcircle segments not running along a parallel:
	// take the latitude of the midpoint of the greatcircle defined by
	// (maxLat,-(maxLon-minLon)/2) and (maxLat,(maxLon-minLon)/2)
	if maxLat > 0 && maxLat < math.Pi/2 {
		x := math.Cos(0.5*(maxLon-minLon)) / math.Tan(maxLat)
		maxLat = math.Asin(1 / math.Sqrt(x*x+1))
	}
	if minLat < 0 && minLat > -math.Pi/2 {
		x := math.Cos(0.5*(maxLon-minLon)) / math.Tan(-minLat)
		minLat = -math.Asin(1 / math.Sqrt(x*x+1))
	}

	for i := range points {
		lon := points[i].Lon.Rad()
		lat := points[i].Lat.Rad()

		if lon < minLon {
			lon += twoPi
		} else if lon > maxLon {
			lon -= twoPi
		}

		if fpLe(minLat, lat) && fpLe(lat, maxLat) &&
			fpLe(minLon, lon) && fpLe(lon, maxLon) {
			return true
		}
	}
	return false
}

// Centre returns the centroid vector of the polygon: the weighted sum of
// edge plane normals, with the weight being the half-chord arc of the edge.
// A clockwise polygon negates the sum.  A zero sum returns (1,0,0).
func (p *Polygon) Centre() coord.Cart {
	var centre coord.Cart
	norm2 := 0.0

	if len(p.Point) > 2 {
		n := len(p.Point)
		a := p.Point[n-1].Vector()
		b := p.Point[0].Vector()
		var edge1 coord.Cart
		edge1.Sub(&b, &a)
		rotation := 0.0

		for i := 0; i < n; i++ {
			dotab := a.Dot(&b)
			var outer coord.Cart
			outer.Cross(&a, &b)
			outerNorm := norm(&outer)

			var v coord.Cart
			var weight float64
			if dotab < 0 {
				v.Add(&a, &b)
				weight = (math.Pi - 2*math.Asin(norm(&v)/2)) / 2
			} else {
				v.Sub(&a, &b)
				weight = math.Asin(norm(&v) / 2)
			}

			centre.X += weight * outer.X / outerNorm
			centre.Y += weight * outer.Y / outerNorm
			centre.Z += weight * outer.Z / outerNorm

			// update the rotation sign (CW vs CCW)
			var c coord.Cart
			if i < n-1 {
				c = p.Point[i+1].Vector()
			} else {
				c = p.Point[0].Vector()
			}
			var edge2, cr coord.Cart
			edge2.Sub(&c, &b)
			cr.Cross(&edge1, &edge2)
			rotation += cr.Dot(&b)

			a = b
			b = c
			edge1 = edge2
		}

		if rotation < 0 {
			centre.Neg(&centre)
		}
		norm2 = centre.Square()
	}

	if norm2 == 0 {
		return coord.Cart{X: 1}
	}
	return centre
}

// Check validates the polygon.  A polygon is invalid if its centroid is the
// zero vector, if non-adjacent edges cross or overlap, or if any vertex
// leaves the hemisphere around the centroid.
func (p *Polygon) Check() error {
	centre := p.Centre()
	if fpZero(centre.X) && fpZero(centre.Y) && fpZero(centre.Z) {
		return errs.New(errs.InvalidArgument, "invalid polygon (polygon too large)")
	}

	for i := 0; i < len(p.Point); i++ {
		linei := p.segment(i)
		for k := i + 1; k < len(p.Point); k++ {
			linek := p.segment(k)
			rel := LineRelationship(linei, linek)
			if rel != LineConnected && rel != LineSeparate {
				return errs.New(errs.InvalidArgument, "invalid polygon (line segments overlap)")
			}
		}
	}

	// all vertices should be on the northern hemisphere with the centroid
	// rotated to the north pole
	cp := PointFromVector(&centre)
	var se Euler
	se.SetZXZ()
	se.Phi = unit.Angle(-math.Pi/2) - cp.Lon
	se.Theta = unit.Angle(-math.Pi/2) + cp.Lat
	se.Psi = 0

	for i := range p.Point {
		q := se.RotatePoint(p.Point[i])
		if fpLe(q.Lat.Rad(), 0) {
			return errs.New(errs.InvalidArgument, "invalid polygon")
		}
	}
	return nil
}

// maximum number of degeneracy-escape rotations in ContainsPoint
const maxEquatorRetries = 10000

// ContainsPoint reports whether q lies inside or on the boundary of the
// polygon.
//
// After the vertex, bounding box and edge checks, the polygon is rotated so
// that q becomes (0,0) and the edges crossing the equator at a longitude in
// (0,π) are counted.  If a vertex lands exactly on the equator the polygon
// is rotated around the X axis by an angle from a deterministically seeded
// generator and the test retries.
func (p *Polygon) ContainsPoint(q Point) bool {
	for i := range p.Point {
		if p.Point[i].Equal(q) {
			return true
		}
	}

	if !p.boundsContainAnyPoint([]Point{q}) {
		return false
	}

	for i := range p.Point {
		if p.segment(i).ContainsPoint(q) {
			return true
		}
	}

	// rotate so that q is (0,0)
	var se Euler
	se.SetZXZ()
	se.Phi = unit.Angle(math.Pi/2) - q.Lon
	se.Theta = -q.Lat
	se.Psi = unit.Angle(-math.Pi / 2)
	tmp := p.applyEuler(&se)

	for counter := 0; ; counter++ {
		onEquator := false
		for i := range tmp.Point {
			if fpZero(tmp.Point[i].Lat.Rad()) {
				if fpEq(math.Cos(tmp.Point[i].Lon.Rad()), -1) {
					return false
				}
				onEquator = true
				break
			}
		}
		if !onEquator {
			break
		}
		if counter > maxEquatorRetries {
			return false
		}

		// rotate the polygon around the X axis by a pseudo random angle,
		// deterministically seeded by the retry count
		rnd := xrand.New(&xrand.PCGSource{})
		rnd.Seed(uint64(counter))
		var re Euler
		re.PhiAxis, re.ThetaAxis, re.PsiAxis = AxisX, AxisX, AxisX
		re.Phi = unit.Angle(rnd.Float64() * twoPi)
		tmp = tmp.applyEuler(&re)
	}

	// count edges crossing the equator between longitudes 0 and π
	counter := 0
	for i := range tmp.Point {
		sl := tmp.segment(i)
		begin := sl.Begin()
		end := sl.End()

		desc := fpGt(begin.Lat.Rad(), 0) && fpLt(end.Lat.Rad(), 0)
		asc := fpLt(begin.Lat.Rad(), 0) && fpGt(end.Lat.Rad(), 0)
		if !desc && !asc {
			continue
		}

		te := inverseEulerFromLine(sl)
		var node Point
		if asc {
			node.Lon = unit.Angle(twoPi) - te.Phi
		} else {
			node.Lon = unit.Angle(math.Pi) - te.Phi
		}
		node.Check()
		if node.Lon.Rad() < math.Pi {
			counter++
		}
	}

	return counter%2 == 1
}

// LinePolyRelationship classifies a line against the polygon as separate,
// contained or overlapping.  A line equal to a polygon edge is along the
// boundary, not interior, and reports separate.
func (p *Polygon) LinePolyRelationship(line Line) LinePolyRel {
	const (
		slOS = int8(1) << LineSeparate
		slEQ = int8(1) << LineEqual
		slCD = int8(1) << LineContained
		slCR = int8(1) << LineCross
		slCN = int8(1) << LineConnected
		slOV = int8(1) << LineOverlap
	)

	begin := line.Begin()
	end := line.End()
	p1 := p.ContainsPoint(begin)
	p2 := p.ContainsPoint(end)

	var res int8
	for i := range p.Point {
		sl := p.segment(i)
		pos := int8(1) << LineRelationship(sl, line)
		if pos == slEQ {
			// a line equal to a polygon edge is separate; remaining edges
			// can only be connected or separate
			return LinePolySeparate
		}
		if pos == slOV {
			return LinePolyOverlap
		}
		if pos == slCR {
			bal := sl.ContainsPoint(begin)
			eal := sl.ContainsPoint(end)
			if !bal && !eal {
				return LinePolyOverlap
			}
			if (bal && p2) || (eal && p1) {
				pos = slCD
			} else {
				return LinePolyOverlap
			}
		}
		res |= pos
	}

	if res&slCD != 0 && res-slCD-slOS-slCN-1 < 0 {
		return LinePolyContained
	}
	if p1 && p2 && res-slOS-slCN-1 < 0 {
		return LinePolyContained
	}
	if !p1 && !p2 && res-slOS-1 < 0 {
		return LinePolySeparate
	}
	if p1 && !p2 && res-slOS-slCN-1 < 0 {
		return LinePolySeparate
	}
	if !p1 && p2 && res-slOS-slCN-1 < 0 {
		return LinePolySeparate
	}
	return LinePolyOverlap
}

// polygonEqual reports whether a and b list the same vertices in the same
// cyclic order.
func polygonEqual(a, b *Polygon) bool {
	n := len(a.Point)
	if n != len(b.Point) {
		return false
	}
rotation:
	for r := 0; r < n; r++ {
		for i := 0; i < n; i++ {
			if !a.Point[i].Equal(b.Point[(i+r)%n]) {
				continue rotation
			}
		}
		return true
	}
	return false
}

// Relationship classifies polygon a against polygon b as separate,
// contains, contained or overlapping.  Identical polygons report contains:
// an edge shared between two polygons lies on neither interior, so without
// this case two equal polygons would compare separate.
func Relationship(a, b *Polygon) PolyRel {
	if polygonEqual(a, b) {
		return PolyContains
	}
	return polyRelationship(a, b, false)
}

func polyRelationship(a, b *Polygon, recheck bool) PolyRel {
	const (
		spOS = int8(1) << LinePolySeparate
		spCT = int8(1) << LinePolyContained
	)

	if !recheck {
		if !a.boundsContainAnyPoint(b.Point) && !b.boundsContainAnyPoint(a.Point) {
			return PolySeparate
		}
	}

	var res int8
	for i := range b.Point {
		sl := b.segment(i)
		pos := int8(1) << a.LinePolyRelationship(sl)
		if pos == int8(1)<<LinePolyOverlap {
			// one overlapping edge makes the polygons overlap
			return PolyOverlap
		}
		res |= pos
	}

	if res == spOS {
		if !recheck {
			if polyRelationship(b, a, true) == PolyContains {
				return PolyContained
			}
		}
		return PolySeparate
	}

	// contained plus separate edges means a contains b with at least one
	// equal edge; a crossing would have reported overlap above
	if res-spCT-spOS-1 < 0 {
		return PolyContains
	}
	return PolyOverlap
}

// Overlapping reports whether a and b overlap (including containment).
func Overlapping(a, b *Polygon) bool {
	rel := Relationship(a, b)
	return rel == PolyContains || rel == PolyContained || rel == PolyOverlap
}

// Intersection constructs the convex intersection polygon of two
// overlapping polygons by walking the edges of a, inserting edge-crossing
// points and the vertices of b that lie inside a in order.
func Intersection(a, b *Polygon) (*Polygon, error) {
	nA := len(a.Point)
	nB := len(b.Point)

	aInB := make([]bool, nA)
	bInA := make([]bool, nB)
	for i := range a.Point {
		aInB[i] = b.ContainsPoint(a.Point[i])
	}
	for i := range b.Point {
		bInA[i] = a.ContainsPoint(b.Point[i])
	}

	var pts []Point
	for offsetA := 0; offsetA < nA; offsetA++ {
		nextA := (offsetA + 1) % nA

		if aInB[offsetA] {
			pts = append(pts, a.Point[offsetA])
		}
		if aInB[offsetA] == aInB[nextA] {
			continue
		}

		// switching polygons: find the segment of b that crosses this one
		lineA := a.segment(offsetA)
		for offsetB := 0; offsetB < nB; offsetB++ {
			nextB := (offsetB + 1) % nB
			if bInA[offsetB] == bInA[nextB] {
				continue
			}
			lineB := b.segment(offsetB)
			rel := LineRelationship(lineA, lineB)
			if rel == LineSeparate {
				continue
			}
			if rel == LineCross {
				var its Point
				if bInA[offsetB] {
					its = IntersectionPoint(lineB, lineA)
				} else {
					its = IntersectionPoint(lineA, lineB)
				}
				pts = append(pts, its)
			}
			// otherwise the segments share a great circle and no
			// intermediate point is needed
			if !aInB[nextA] {
				if bInA[nextB] {
					// add points from b in ascending order
					for bInA[nextB] && nextB != offsetB {
						pts = append(pts, b.Point[nextB])
						nextB++
						if nextB == nB {
							nextB = 0
						}
					}
				} else {
					// add points from b in descending order
					for bInA[offsetB] && offsetB != nextB {
						pts = append(pts, b.Point[offsetB])
						offsetB--
						if offsetB == -1 {
							offsetB = nB - 1
						}
					}
				}
			}
			break
		}
	}

	out := NewPolygon(pts)
	if err := out.Check(); err != nil {
		return nil, errs.New(errs.InvalidArgument, "invalid intersection polygon")
	}
	return out, nil
}

// the haversine function
func hav(x float64) float64 {
	return (1 - math.Cos(x)) / 2
}

// SurfaceArea returns the surface area of the polygon in m² on the WGS84
// sphere, by Girard's theorem applied per edge against the pole.  Of the
// two areas bounded by the polygon the one covering at most half the
// sphere is returned.
func (p *Polygon) SurfaceArea() float64 {
	n := len(p.Point)
	if n < 3 {
		return 0
	}

	area := 0.0
	for i := 0; i < n; i++ {
		latA := p.Point[i].Lat.Rad()
		lonA := p.Point[i].Lon.Rad()
		var latC, lonC float64
		if i < n-1 {
			latC = p.Point[i+1].Lat.Rad()
			lonC = p.Point[i+1].Lon.Rad()
		} else {
			latC = p.Point[0].Lat.Rad()
			lonC = p.Point[0].Lon.Rad()
		}
		if lonC < lonA-math.Pi {
			lonC += twoPi
		} else if lonC > lonA+math.Pi {
			lonC -= twoPi
		}
		if lonA == lonC {
			continue
		}

		a := math.Pi/2 - latC
		c := math.Pi/2 - latA
		sinangle := math.Sqrt(hav(a-c) + math.Sin(a)*math.Sin(c)*hav(lonC-lonA))
		if sinangle > 1 {
			sinangle = 1
		} else if sinangle < -1 {
			sinangle = -1
		}
		b := 2 * math.Asin(sinangle)
		s := 0.5 * (a + b + c)
		e := 4 * math.Atan(math.Sqrt(math.Abs(
			math.Tan(s/2)*math.Tan((s-a)/2)*math.Tan((s-b)/2)*math.Tan((s-c)/2))))
		if lonC < lonA {
			e = -e
		}
		area += e
	}

	area = math.Abs(area)
	if area > twoPi {
		area = 2*twoPi - area
	}
	return EarthRadius * EarthRadius * area
}

// OverlappingFraction determines whether a and b overlap and, if so, the
// overlap fraction area(a∩b)/min(area(a),area(b)).  Containment either way
// reports fraction 1.
func OverlappingFraction(a, b *Polygon) (overlapping bool, fraction float64, err error) {
	switch Relationship(a, b) {
	case PolyContains, PolyContained:
		return true, 1, nil
	case PolyOverlap:
		intersect, err := Intersection(a, b)
		if err != nil {
			return false, 0, err
		}
		areaAB := intersect.SurfaceArea()
		areaA := a.SurfaceArea()
		areaB := b.SurfaceArea()
		minArea := areaA
		if areaB < minArea {
			minArea = areaB
		}
		if fpZero(minArea) {
			// just report full overlap if the smaller area vanishes
			return true, 1, nil
		}
		return true, areaAB / minArea, nil
	}
	return false, 0, nil
}

// PolygonFromBounds builds a polygon from latitude and longitude bound
// arrays in degrees.
//
// Two entries are the opposite corners of a bounding rectangle and expand
// to four vertices.  Otherwise the entries are the vertices themselves;
// trailing NaN entries and a duplicated closing vertex are dropped, and at
// least three vertices must remain.  With check set the polygon is
// validated before being returned.
func PolygonFromBounds(latBounds, lonBounds []float64, check bool) (*Polygon, error) {
	if len(latBounds) != len(lonBounds) {
		return nil, errs.New(errs.InvalidArgument,
			"latitude and longitude bounds should have the same length")
	}
	n := len(latBounds)
	for n > 0 && (math.IsNaN(latBounds[n-1]) || math.IsNaN(lonBounds[n-1])) {
		n--
	}

	if len(latBounds) == 2 {
		// two vertices are the corner points of a bounding box
		pts := make([]Point, 4)
		pts[0] = Point{Lat: unit.AngleFromDeg(latBounds[0]), Lon: unit.AngleFromDeg(lonBounds[0])}
		pts[1] = Point{Lat: unit.AngleFromDeg(latBounds[0]), Lon: unit.AngleFromDeg(lonBounds[1])}
		pts[2] = Point{Lat: unit.AngleFromDeg(latBounds[1]), Lon: unit.AngleFromDeg(lonBounds[1])}
		pts[3] = Point{Lat: unit.AngleFromDeg(latBounds[1]), Lon: unit.AngleFromDeg(lonBounds[0])}
		for i := range pts {
			pts[i].Check()
		}
		if pts[0].Lat == pts[2].Lat || pts[0].Lon == pts[2].Lon {
			return nil, errs.New(errs.InvalidArgument, "invalid polygon (line segments overlap)")
		}
		return NewPolygon(pts), nil
	}

	if n > 2 {
		begin := Point{Lat: unit.AngleFromDeg(latBounds[0]), Lon: unit.AngleFromDeg(lonBounds[0])}
		end := Point{Lat: unit.AngleFromDeg(latBounds[n-1]), Lon: unit.AngleFromDeg(lonBounds[n-1])}
		if begin.Equal(end) {
			n--
		}
	}
	if n < 3 {
		return nil, errs.New(errs.InvalidArgument,
			"polygon should have at least three vertices")
	}

	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		pts[i] = Point{Lat: unit.AngleFromDeg(latBounds[i]), Lon: unit.AngleFromDeg(lonBounds[i])}
		pts[i].Check()
	}
	polygon := NewPolygon(pts)
	if check {
		if err := polygon.Check(); err != nil {
			return nil, err
		}
	}
	return polygon, nil
}
