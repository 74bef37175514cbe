package geometry

import "math"

// Line is an ordered sequence of points. A closed line's last point is
// understood to connect back to its first; Line itself does not duplicate
// the closing point.
type Line struct {
	Points []Point
	Closed bool
}

// NewLine builds a Line from points.
func NewLine(points []Point, closed bool) Line {
	return Line{Points: append([]Point(nil), points...), Closed: closed}
}

// Len returns the number of vertices.
func (l Line) Len() int { return len(l.Points) }

// Reversed returns a copy of l with point order reversed.
func (l Line) Reversed() Line {
	out := make([]Point, len(l.Points))
	for i, p := range l.Points {
		out[len(l.Points)-1-i] = p
	}

	return Line{Points: out, Closed: l.Closed}
}

// SignedArea returns the signed polygon area of a closed line (shoelace
// formula). Positive means counter-clockwise traversal.
func (l Line) SignedArea() float64 {
	n := len(l.Points)
	if n < 3 {
		return 0
	}

	var sum float64

	for i := range n {
		j := (i + 1) % n
		sum += l.Points[i].X*l.Points[j].Y - l.Points[j].X*l.Points[i].Y
	}

	return sum / 2
}

// Clockwise reports whether a closed line is traversed clockwise.
func (l Line) Clockwise() bool {
	return l.SignedArea() < 0
}

// ArcLength returns the total traversal length, including the closing
// segment when Closed.
func (l Line) ArcLength() float64 {
	n := len(l.Points)
	if n < 2 {
		return 0
	}

	var total float64

	for i := 0; i < n-1; i++ {
		total += l.Points[i].Dist(l.Points[i+1])
	}

	if l.Closed {
		total += l.Points[n-1].Dist(l.Points[0])
	}

	return total
}

// AvgPointSpacing returns ArcLength / segment count, or 0 for degenerate lines.
func (l Line) AvgPointSpacing() float64 {
	n := len(l.Points)
	if n < 2 {
		return 0
	}

	segs := n - 1
	if l.Closed {
		segs = n
	}

	if segs == 0 {
		return 0
	}

	return l.ArcLength() / float64(segs)
}

// ClosestPointIndex returns the index of the vertex nearest to target.
// Stands in for the external line_closest_point primitive (spec.md §1).
func (l Line) ClosestPointIndex(target Point) int {
	best := 0
	bestDist := math.Inf(1)

	for i, p := range l.Points {
		d := p.Dist(target)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}

	return best
}

// RotatedToStartAt returns a copy of a closed line rotated so vertex idx
// becomes index 0, preserving traversal order.
func (l Line) RotatedToStartAt(idx int) Line {
	n := len(l.Points)
	if n == 0 || idx%n == 0 {
		return l
	}

	idx = ((idx % n) + n) % n

	out := make([]Point, n)
	for i := range n {
		out[i] = l.Points[(idx+i)%n]
	}

	return Line{Points: out, Closed: l.Closed}
}

// Centroid returns the arithmetic mean of the vertices (a cheap stand-in
// for an area-weighted centroid, sufficient for label-offset purposes).
func (l Line) Centroid() Point {
	if len(l.Points) == 0 {
		return Point{}
	}

	var sum Point
	for _, p := range l.Points {
		sum = sum.Add(p)
	}

	return sum.Scale(1 / float64(len(l.Points)))
}

// PointInPolygon reports whether target lies inside the closed line l,
// using the standard ray-casting test.
func PointInPolygon(l Line, target Point) bool {
	inside := false
	n := len(l.Points)

	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := l.Points[i], l.Points[j]

		intersects := (pi.Y > target.Y) != (pj.Y > target.Y) &&
			target.X < (pj.X-pi.X)*(target.Y-pi.Y)/(pj.Y-pi.Y)+pi.X

		if intersects {
			inside = !inside
		}
	}

	return inside
}
