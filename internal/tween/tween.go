// Package tween implements the temporal interpolator (spec.md §4.5): a
// quasi-linear blend across a sample's active keyframe times, producing one
// position per requested tween frame, plus the merge/split and
// intermediate-control-node adjustments layered on top of it.
package tween

import (
	"sort"

	"github.com/fpasys/fpagpgen/internal/geometry"
)

// QuasiLinear blends a single coordinate series (x or y) across key times to
// produce values at the requested tween times, mirroring the
// `QuasiLinear_Tween(k_times, kx, ky, N, t_times, tx, ty)` contract (spec.md
// §4.5). keyTimes must be strictly increasing and aligned with values;
// tweenTimes need not be sorted relative to keyTimes but are typically a
// dense, monotone sequence spanning [keyTimes[0], keyTimes[last]].
func QuasiLinear(keyTimes []float64, values []float64, tweenTimes []float64) []float64 {
	out := make([]float64, len(tweenTimes))

	for i, t := range tweenTimes {
		out[i] = interpolateAt(keyTimes, values, t)
	}

	return out
}

func interpolateAt(keyTimes, values []float64, t float64) float64 {
	n := len(keyTimes)
	if n == 0 {
		return 0
	}

	if n == 1 || t <= keyTimes[0] {
		return values[0]
	}

	if t >= keyTimes[n-1] {
		return values[n-1]
	}

	idx := sort.SearchFloat64s(keyTimes, t)
	if idx == 0 {
		return values[0]
	}

	lo, hi := idx-1, idx
	span := keyTimes[hi] - keyTimes[lo]

	if span <= 0 {
		return values[lo]
	}

	frac := (t - keyTimes[lo]) / span

	return values[lo] + frac*(values[hi]-values[lo])
}

// Points2D blends a series of 2-D points (one sample index's position
// across keys) to the requested tween times.
func Points2D(keyTimes []float64, positions []geometry.Point, tweenTimes []float64) []geometry.Point {
	xs := make([]float64, len(positions))
	ys := make([]float64, len(positions))

	for i, p := range positions {
		xs[i] = p.X
		ys[i] = p.Y
	}

	tx := QuasiLinear(keyTimes, xs, tweenTimes)
	ty := QuasiLinear(keyTimes, ys, tweenTimes)

	out := make([]geometry.Point, len(tweenTimes))
	for i := range tweenTimes {
		out[i] = geometry.Point{X: tx[i], Y: ty[i]}
	}

	return out
}
