// Package geometry provides the polygon/line primitives the interpolation
// engine and the graphics product generator both build on: points, lines,
// areas with holes and dividing lines, point-in-polygon tests, and a small
// filter+spline "pipe" used for resampling. spec.md treats this as an
// external geometry library ("assume it is provided"); this package is a
// minimal, self-contained stand-in so everything built on top of it is
// exercisable and testable without a real FPA dependency.
package geometry

import "math"

// Point is a 2-D coordinate in either map space (interpolation) or page
// space (GPG), in user units.
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y

	return math.Hypot(dx, dy)
}

// Lerp linearly interpolates between p and q at fraction t ([0,1]).
func Lerp(p, q Point, t float64) Point {
	return Point{
		X: p.X + (q.X-p.X)*t,
		Y: p.Y + (q.Y-p.Y)*t,
	}
}
