// Package resample implements the spatial resampler (spec.md §4.4): it
// refits every boundary/hole/divide segment through the geometry pipe so
// that each segment contributes an identical, key-independent point count
// across all active keyframes of a chain.
package resample

import (
	"errors"
	"fmt"

	"github.com/fpasys/fpagpgen/internal/geometry"
)

// ErrSegmentDegenerate is returned when a segment has fewer than two raw
// points at some key; the caller is expected to replicate the prior
// (constant) sample for that key rather than abort the chain.
var ErrSegmentDegenerate = errors.New("resample: segment has fewer than 2 points")

const minSamples = 10

// TargetCount computes npseg = round(0.75*maxPts + 0.25*minPts) clamped to
// at least minSamples, per spec.md §4.4.
func TargetCount(minPts, maxPts int) int {
	n := int(0.75*float64(maxPts) + 0.25*float64(minPts) + 0.5)
	if n < minSamples {
		n = minSamples
	}

	return n
}

// SegmentLines bundles, for one segment, the raw per-key polylines that
// must all resample to the same point count. Segments are always open arcs
// regardless of whether the parent chain is a closed boundary/hole or an
// open divide — closedness is reassembled one level up, at the whole-chain
// tween stage.
type SegmentLines struct {
	Lines []geometry.Line // one per active key, in key order
}

// Resampled holds, per active key, the resampled line with exactly
// TargetCount points.
type Resampled struct {
	NPSeg int
	Keys  []geometry.Line
}

// Segment resamples every key's raw line for one segment to an identical
// point count, per spec.md §4.4 steps 1-2: each key's line is refit
// through the filter and then splined to exactly npseg points by
// resampleOne, with a single spline call and no search over res.
func Segment(seg SegmentLines) (Resampled, error) {
	minPts, maxPts := 0, 0

	for i, l := range seg.Lines {
		n := l.Len()
		if n < 2 {
			return Resampled{}, fmt.Errorf("resample: key %d: %w", i, ErrSegmentDegenerate)
		}

		if i == 0 || n < minPts {
			minPts = n
		}

		if n > maxPts {
			maxPts = n
		}
	}

	npseg := TargetCount(minPts, maxPts)

	out := Resampled{NPSeg: npseg, Keys: make([]geometry.Line, len(seg.Lines))}

	for i, l := range seg.Lines {
		resampled, err := resampleOne(l, npseg)
		if err != nil {
			return Resampled{}, fmt.Errorf("resample: key %d: %w", i, err)
		}

		out.Keys[i] = resampled
	}

	return out, nil
}

// resampleOne refits raw once through the pipe's filter at res ≈
// 0.75·avg_point_spacing (spec.md §4.4 step 1), then splines it to exactly
// npseg points. The spec's original algorithm binary-searches res within
// [spmin,spmax] because its spline only accepts a target spacing; this
// pipe's Spline already accepts an explicit target count and guarantees it
// by construction, so the search collapses to a single spline call.
func resampleOne(raw geometry.Line, npseg int) (geometry.Line, error) {
	refitRes := 0.75 * raw.AvgPointSpacing()
	if refitRes < 1 {
		refitRes = 1
	}

	filterPipe := geometry.Pipe{MinSpacing: refitRes}
	refit := filterPipe.Filter(raw)

	if refit.Len() < 2 {
		return geometry.Line{}, ErrSegmentDegenerate
	}

	splinePipe := geometry.Pipe{MinSpacing: refitRes}

	return splinePipe.Spline(refit, 0, npseg), nil
}
