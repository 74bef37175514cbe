// Package interp orchestrates the temporal interpolation engine end to
// end: link-chain promotion, merge/split detection, segmentation, spatial
// resampling, temporal tweening, and topology reconstruction, reporting
// progress exactly where spec.md §5 requires it.
package interp

import (
	"fmt"

	"github.com/fpasys/fpagpgen/internal/arealink"
	"github.com/fpasys/fpagpgen/internal/geometry"
	"github.com/fpasys/fpagpgen/internal/linkchain"
	"github.com/fpasys/fpagpgen/internal/resample"
	"github.com/fpasys/fpagpgen/internal/topology"
	"github.com/fpasys/fpagpgen/internal/tween"
)

// ProgressReporter receives Run's progress as two typed methods
// (SPEC_FULL.md §C.6) instead of one generic callback. Run calls ChainDone
// after each representative link chain it completes, then, once every
// chain is done, FrameDone once for each tween frame that received at least
// one chain line. FrameDone therefore precedes topology assembly;
// AssembleFrames reports no progress.
type ProgressReporter interface {
	ChainDone(chainID, done, total int)
	FrameDone(frameIndex, done, total int)
}

// NopReporter implements ProgressReporter with no-ops, for callers that
// don't need progress feedback (e.g. tests, the MCP interpolate tool, and
// CLI interpolate runs without checkpointing).
type NopReporter struct{}

// ChainDone implements ProgressReporter.
func (NopReporter) ChainDone(int, int, int) {}

// FrameDone implements ProgressReporter.
func (NopReporter) FrameDone(int, int, int) {}

// ChainBoundary is one reconstructed, oriented tween-frame line for a
// chain, keyed by the tween-frame index it belongs to.
type ChainBoundary struct {
	TweenIndex int
	Line       geometry.Line
}

// ChainOutput is the full per-tween-frame output of one representative
// link, per chain, oriented and reconstructed. AssembleFrames is the
// second pass that groups these by output area and finishes the job
// (divide/hole insertion, label replication, area reordering).
type ChainOutput struct {
	Link       *arealink.ALink
	Boundaries []ChainBoundary
}

// Input bundles everything Run needs to process one set of link chains.
type Input struct {
	Chains      []*linkchain.Chain
	Keys        []linkchain.KeyframeSet
	KeyTimes    []float64 // aligned with Keys, same length, strictly increasing
	TweenTimes  []float64 // dense target times, spans the union of chain active windows
	AreaOf      arealink.AreaRefAt
	CommonNodes map[int][]float64 // chain id -> link-node arc-length fractions shared across the common group
	Reporter    ProgressReporter

	// Spots carries each keyframe's source labels/spots per output area
	// (iarea), consumed by AssembleFrames' label replication (spec.md §4.6).
	// Absent or empty entries simply produce no replicated labels for that
	// area.
	Spots map[int][]topology.Spot
}

// Run executes the full per-chain pipeline (build, merge/split, common
// detection, segmentation, resample, tween, reconstruct+orient) and returns
// one ChainOutput per surviving representative link.
func Run(in Input) ([]ChainOutput, error) {
	reporter := in.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}

	links := arealink.Build(in.Chains, in.Keys)
	links = arealink.DetectMergeSplit(links, in.AreaOf)
	arealink.DetectCommon(links)

	reps := representatives(links)

	outputs := make([]ChainOutput, 0, len(reps))

	for i, link := range reps {
		out, err := runOneChain(link, in)
		if err != nil {
			return nil, fmt.Errorf("interp: chain %d: %w", link.ID, err)
		}

		outputs = append(outputs, out)
		reporter.ChainDone(link.ID, i+1, len(reps))
	}

	reportFrames(in.TweenTimes, outputs, reporter)

	return outputs, nil
}

func representatives(links []*arealink.ALink) []*arealink.ALink {
	out := make([]*arealink.ALink, 0, len(links))

	for _, l := range links {
		if l.LType != linkchain.MemberNone && l.IsRepresentative() {
			out = append(out, l)
		}
	}

	return out
}

func runOneChain(link *arealink.ALink, in Input) (ChainOutput, error) {
	closed := link.LType != linkchain.MemberDiv

	segments, err := buildSegments(link, closed, in.CommonNodes[link.ID])
	if err != nil {
		return ChainOutput{}, err
	}

	samples, err := resample.Chain(segments)
	if err != nil {
		return ChainOutput{}, fmt.Errorf("resample: %w", err)
	}

	keyTimes := keyTimesWindow(in.KeyTimes, link.SKey, link.EKey)
	keySamples := toSampleMatrix(samples)

	tweenTimes := tweenTimesWindow(in.TweenTimes, keyTimes)
	frames := tween.Chain(keyTimes, keySamples, tweenTimes, closed)

	boundaries := make([]ChainBoundary, 0, len(frames.Frames))

	wantCW := representativeOrientation(link)

	for i, frame := range frames.Frames {
		reconstructed, ok := topology.ReconstructLine([]geometry.Line{frame}, nil)
		if !ok {
			continue
		}

		if closed {
			reconstructed = topology.OrientBoundary(reconstructed, wantCW)
		} else {
			reconstructed = topology.OrientDivide(reconstructed, firstFlip(link))
		}

		boundaries = append(boundaries, ChainBoundary{TweenIndex: tweenIndex(in.TweenTimes, tweenTimes[i]), Line: reconstructed})
	}

	return ChainOutput{Link: link, Boundaries: boundaries}, nil
}

func representativeOrientation(link *arealink.ALink) bool {
	for _, k := range link.Keys {
		if k.Line.Len() == 0 {
			continue
		}

		if link.LType == linkchain.MemberHole {
			return k.HCW
		}

		return k.CW
	}

	return false
}

func firstFlip(link *arealink.ALink) bool {
	for _, k := range link.Keys {
		if k.Line.Len() > 0 {
			return k.Flip
		}
	}

	return false
}

func buildSegments(link *arealink.ALink, closed bool, commonNodePositions []float64) ([]resample.SegmentLines, error) {
	active := activeKeyIndices(link)
	if len(active) == 0 {
		return nil, nil
	}

	for _, k := range active {
		arealink.Segment(&link.Keys[k], closed, commonNodePositions)
	}

	nseg := link.Keys[active[0]].NSeg

	segments := make([]resample.SegmentLines, nseg)
	for s := range segments {
		segments[s] = resample.SegmentLines{Lines: make([]geometry.Line, len(active))}
	}

	for ai, k := range active {
		alkey := link.Keys[k]
		for s := 0; s < nseg && s < len(alkey.DSeg); s++ {
			segments[s].Lines[ai] = sliceSegment(alkey, s)
		}
	}

	return segments, nil
}

func sliceSegment(alkey arealink.ALKey, segIdx int) geometry.Line {
	start := alkey.DSeg[segIdx]
	count := alkey.DSpt[segIdx]

	pts := make([]geometry.Point, 0, count)

	n := alkey.Line.Len()
	for i := 0; i < count; i++ {
		pts = append(pts, alkey.Line.Points[(start+i)%n])
	}

	return geometry.Line{Points: pts, Closed: false}
}

func activeKeyIndices(link *arealink.ALink) []int {
	out := make([]int, 0, len(link.Keys))

	for k, alkey := range link.Keys {
		if alkey.Line.Len() > 0 {
			out = append(out, k)
		}
	}

	return out
}

func keyTimesWindow(all []float64, skey, ekey int) []float64 {
	if skey < 0 {
		skey = 0
	}

	if ekey >= len(all) {
		ekey = len(all) - 1
	}

	if skey > ekey {
		return nil
	}

	return append([]float64(nil), all[skey:ekey+1]...)
}

func toSampleMatrix(samples resample.ChainSamples) [][]geometry.Point {
	if len(samples.Keys) == 0 {
		return nil
	}

	matrix := make([][]geometry.Point, samples.NSPts)
	for is := range matrix {
		matrix[is] = make([]geometry.Point, len(samples.Keys))

		for k, line := range samples.Keys {
			if is < line.Len() {
				matrix[is][k] = line.Points[is]
			}
		}
	}

	return matrix
}

func tweenTimesWindow(all, keyTimes []float64) []float64 {
	if len(keyTimes) == 0 {
		return nil
	}

	lo, hi := keyTimes[0], keyTimes[len(keyTimes)-1]

	out := make([]float64, 0, len(all))

	for _, t := range all {
		if t >= lo && t <= hi {
			out = append(out, t)
		}
	}

	return out
}

func tweenIndex(all []float64, t float64) int {
	for i, v := range all {
		if v == t {
			return i
		}
	}

	return -1
}

func reportFrames(tweenTimes []float64, outputs []ChainOutput, reporter ProgressReporter) {
	for fi := range tweenTimes {
		done := false

		for _, out := range outputs {
			for _, b := range out.Boundaries {
				if b.TweenIndex == fi {
					done = true

					break
				}
			}
		}

		if done {
			reporter.FrameDone(fi, fi+1, len(tweenTimes))
		}
	}
}
