package geometry

import "math"

// Pipe applies a distance-based decimation filter followed by an
// arc-length resample, mirroring the external "filter then spline" pipe
// spec.md §4.4 and §4.6 describe as a single call chain
// (enable_filter → enable_spline → enable_save).
type Pipe struct {
	// MinSpacing is the decimation distance threshold for Filter.
	MinSpacing float64
}

// Filter removes points closer together than MinSpacing, always keeping the
// first and last point (and, for closed lines, never dropping below 3
// points).
func (p Pipe) Filter(l Line) Line {
	if len(l.Points) < 3 || p.MinSpacing <= 0 {
		return l
	}

	out := make([]Point, 0, len(l.Points))
	out = append(out, l.Points[0])

	last := l.Points[0]
	for _, pt := range l.Points[1:] {
		if pt.Dist(last) >= p.MinSpacing {
			out = append(out, pt)
			last = pt
		}
	}

	if end := l.Points[len(l.Points)-1]; last != end {
		out = append(out, end)
	}

	if l.Closed && len(out) < 3 {
		return l
	}

	return Line{Points: out, Closed: l.Closed}
}

// Spline resamples l by arc length at approximately `res` spacing along the
// traversal, interpolating linearly between the input vertices; it does not
// fit a cubic spline, so the output keeps l's polygonal shape. It returns
// exactly the requested point count when count > 0; otherwise it samples
// at intervals of res.
func (p Pipe) Spline(l Line, res float64, count int) Line {
	if len(l.Points) < 2 {
		return l
	}

	pts := l.Points
	if l.Closed {
		pts = append(append([]Point{}, pts...), pts[0])
	}

	arc := cumulativeArcLength(pts)
	total := arc[len(arc)-1]

	if total <= 0 {
		return l
	}

	n := count
	if n <= 0 {
		n = int(math.Max(2, math.Round(total/math.Max(res, 1e-9))))
	}

	out := make([]Point, 0, n)

	denom := n
	if !l.Closed {
		denom = n - 1
	}

	if denom <= 0 {
		denom = 1
	}

	for i := range n {
		t := total * float64(i) / float64(denom)
		out = append(out, sampleAtArcLength(pts, arc, t))
	}

	return Line{Points: out, Closed: l.Closed}
}

func cumulativeArcLength(pts []Point) []float64 {
	arc := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		arc[i] = arc[i-1] + pts[i].Dist(pts[i-1])
	}

	return arc
}

// sampleAtArcLength performs piecewise-linear interpolation along pts at
// arc-length position target. A true natural cubic spline would curve
// between knots; this pipe keeps the piecewise-linear shape (matching the
// quasi-linear tween semantics required elsewhere) while still performing
// the resample-to-count contract Spline promises.
func sampleAtArcLength(pts []Point, arc []float64, target float64) Point {
	if target <= 0 {
		return pts[0]
	}

	last := len(arc) - 1
	if target >= arc[last] {
		return pts[last]
	}

	lo, hi := 0, last
	for lo < hi-1 {
		mid := (lo + hi) / 2
		if arc[mid] <= target {
			lo = mid
		} else {
			hi = mid
		}
	}

	segLen := arc[hi] - arc[lo]
	if segLen <= 0 {
		return pts[lo]
	}

	t := (target - arc[lo]) / segLen

	return Lerp(pts[lo], pts[hi], t)
}
