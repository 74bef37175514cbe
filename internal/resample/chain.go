package resample

import (
	"fmt"

	"github.com/fpasys/fpagpgen/internal/geometry"
)

// ChainSamples holds the concatenated per-key sample arrays for a whole
// chain, `keyx[is][k]`/`keyy[is][k]` collapsed into one geometry.Point per
// (sample, key), per spec.md §4.4 "Output: per key k, two arrays
// keyx[is][k], keyy[is][k] for is in [0, nspts)".
type ChainSamples struct {
	NSPts int
	// Keys[k] is the resampled line for active key k, concatenated across
	// every segment in traversal order; Keys[k].Len() == NSPts.
	Keys []geometry.Line
}

// Chain resamples every segment of a chain and concatenates the results,
// per spec.md §4.4's "Total samples per chain nspts = Σ npseg". When a
// segment is degenerate (<2 points) at some key, that key's contribution is
// replaced by the resampled segment of the closest earlier non-degenerate
// key, or of the first non-degenerate key when no earlier one exists.
func Chain(segments []SegmentLines) (ChainSamples, error) {
	if len(segments) == 0 {
		return ChainSamples{}, nil
	}

	numKeys := len(segments[0].Lines)

	perSegment := make([]Resampled, len(segments))

	for si, seg := range segments {
		resampled, err := segmentWithReplication(seg)
		if err != nil {
			return ChainSamples{}, fmt.Errorf("resample: segment %d: %w", si, err)
		}

		perSegment[si] = resampled
	}

	out := ChainSamples{Keys: make([]geometry.Line, numKeys)}

	for k := range numKeys {
		var pts []geometry.Point

		for _, seg := range perSegment {
			pts = append(pts, seg.Keys[k].Points...)
		}

		out.Keys[k] = geometry.Line{Points: pts}
	}

	if numKeys > 0 {
		out.NSPts = out.Keys[0].Len()
	}

	return out, nil
}

// segmentWithReplication resamples a segment, substituting a constant
// (replicated) line for any key whose raw input is degenerate rather than
// failing the whole chain.
func segmentWithReplication(seg SegmentLines) (Resampled, error) {
	validIdx := -1

	for i, l := range seg.Lines {
		if l.Len() >= 2 {
			validIdx = i

			break
		}
	}

	if validIdx < 0 {
		return Resampled{}, ErrSegmentDegenerate
	}

	minPts, maxPts := 0, 0

	for _, l := range seg.Lines {
		n := l.Len()
		if n < 2 {
			continue
		}

		if minPts == 0 || n < minPts {
			minPts = n
		}

		if n > maxPts {
			maxPts = n
		}
	}

	npseg := TargetCount(minPts, maxPts)

	out := Resampled{NPSeg: npseg, Keys: make([]geometry.Line, len(seg.Lines))}

	var lastGood geometry.Line

	for i, l := range seg.Lines {
		if l.Len() < 2 {
			out.Keys[i] = lastGood

			continue
		}

		resampled, err := resampleOne(l, npseg)
		if err != nil {
			return Resampled{}, fmt.Errorf("key %d: %w", i, err)
		}

		out.Keys[i] = resampled
		lastGood = resampled
	}

	for i := range out.Keys {
		if out.Keys[i].Len() == 0 {
			out.Keys[i] = out.Keys[validIdx]
		}
	}

	return out, nil
}
