package interp

import (
	"fmt"

	"github.com/fpasys/fpagpgen/internal/arealink"
	"github.com/fpasys/fpagpgen/internal/geometry"
	"github.com/fpasys/fpagpgen/internal/linkchain"
	"github.com/fpasys/fpagpgen/internal/topology"
)

// FrameArea is one tween frame's fully assembled output area: a boundary
// with its dividing lines and holes applied and its labels replicated, per
// spec.md §4.6 (component #6, the topology assembler). Run itself stops at
// oriented per-chain boundary lines (ChainOutput); AssembleFrames is the
// second pass that groups those lines by output area and finishes the
// job, so this is the function an interpolation driver calls to get a
// drawable polygon field frame instead of loose boundary/divide/hole
// lines.
type FrameArea struct {
	TweenIndex int
	IArea      int
	Area       geometry.Area
	Labels     []topology.Spot
}

// frameAreaKey identifies one (tween frame, output area) pair while
// assembling.
type frameAreaKey struct {
	tween int
	iarea int
}

// AssembleFrames groups every chain's per-tween-frame boundary/divide/hole
// output by the area it belongs to and runs each group through the
// topology assembler: InsertDivides in the order the divide chains'
// outputs arrive, InsertHoles, and ReplicateLabels from in.Spots. Areas of
// a tween frame keep the order in which their first output arrived
// (ReorderAreas is given that same order as its reference); they are not
// reordered to match a keyframe's area order. Divide chains
// contribute their representative link's LeftAttrs/RightAttrs (the
// lval/rval/llab/lcal bundle spec.md's scenario S4 names), read from the
// chain's first active keyframe.
//
// warn receives the same diagnostics InsertDivides/InsertHoles emit for
// tolerated conditions (restamped survivor, skipped hole); a nil warn
// discards them.
func AssembleFrames(outputs []ChainOutput, in Input, warn topology.Warner) ([]FrameArea, error) {
	areas := make(map[frameAreaKey]*geometry.Area)
	order := make(map[int][]int) // tween -> iarea ids in first-seen order

	ensureArea := func(tween, iarea int) *geometry.Area {
		key := frameAreaKey{tween, iarea}

		a, ok := areas[key]
		if !ok {
			a = &geometry.Area{Subareas: []geometry.Subarea{{}}}
			areas[key] = a
			order[tween] = append(order[tween], iarea)
		}

		return a
	}

	// Boundaries first, so every divide/hole below has a Boundary/Subareas[0]
	// to attach to.
	for _, out := range outputs {
		if out.Link.LType != linkchain.MemberBound {
			continue
		}

		iarea := outputIArea(out.Link)

		for _, b := range out.Boundaries {
			a := ensureArea(b.TweenIndex, iarea)
			a.Boundary = b.Line
		}
	}

	for _, out := range outputs {
		if out.Link.LType != linkchain.MemberDiv {
			continue
		}

		iarea := outputIArea(out.Link)
		left, right := divideAttrs(out.Link)

		for _, b := range out.Boundaries {
			a := ensureArea(b.TweenIndex, iarea)

			spec := topology.DivideSpec{Which: len(a.Subareas) - 1, Line: b.Line, Left: left, Right: right}
			if err := topology.InsertDivides(a, []topology.DivideSpec{spec}, warn); err != nil {
				return nil, fmt.Errorf("interp: assemble frame %d area %d: %w", b.TweenIndex, iarea, err)
			}
		}
	}

	for _, out := range outputs {
		if out.Link.LType != linkchain.MemberHole {
			continue
		}

		iarea := outputIArea(out.Link)

		for _, b := range out.Boundaries {
			a := ensureArea(b.TweenIndex, iarea)
			topology.InsertHoles(a, []geometry.Line{b.Line}, warn)
		}
	}

	labels := replicateAreaLabels(outputs, in, areas)

	result := make([]FrameArea, 0, len(areas))

	for tween, ids := range order {
		reordered := topology.ReorderAreas(ids, func(id int) int { return id }, ids)

		for _, id := range reordered {
			key := frameAreaKey{tween, id}

			result = append(result, FrameArea{
				TweenIndex: tween,
				IArea:      id,
				Area:       *areas[key],
				Labels:     labels[key],
			})
		}
	}

	return result, nil
}

// replicateAreaLabels runs topology.ReplicateLabels for every (tween,
// iarea) pair that has a boundary, using in.Spots[iarea] as the source
// labels and in.Keys[nearestKey] as the keyframe boundary reference, per
// spec.md §4.6's label-replication paragraph. Frames inside the owning
// boundary chain's active keyframe window get a zero offset; frames
// outside it (excursions) get the centroid-shift offset.
func replicateAreaLabels(outputs []ChainOutput, in Input, areas map[frameAreaKey]*geometry.Area) map[frameAreaKey][]topology.Spot {
	out := make(map[frameAreaKey][]topology.Spot)

	if len(in.Spots) == 0 {
		return out
	}

	for _, chainOut := range outputs {
		if chainOut.Link.LType != linkchain.MemberBound {
			continue
		}

		iarea := outputIArea(chainOut.Link)

		spots := in.Spots[iarea]
		if len(spots) == 0 {
			continue
		}

		for _, b := range chainOut.Boundaries {
			key := frameAreaKey{b.TweenIndex, iarea}

			a, ok := areas[key]
			if !ok {
				continue
			}

			nearest := nearestKeyframe(in.KeyTimes, in.TweenTimes, b.TweenIndex)

			var keyBoundary geometry.Line

			if nearest >= 0 && nearest < len(in.Keys) {
				if line, ok := in.Keys[nearest].Line(iarea, linkchain.MemberBound, 0); ok {
					keyBoundary = line
				}
			}

			inside := chainOut.Link.SKey <= nearest && nearest <= chainOut.Link.EKey

			out[key] = topology.ReplicateLabels(spots, keyBoundary, a.Boundary, inside)
		}
	}

	return out
}

func nearestKeyframe(keyTimes, tweenTimes []float64, tweenIndex int) int {
	if tweenIndex < 0 || tweenIndex >= len(tweenTimes) || len(keyTimes) == 0 {
		return -1
	}

	t := tweenTimes[tweenIndex]

	best, bestDist := 0, -1.0

	for i, kt := range keyTimes {
		dist := kt - t
		if dist < 0 {
			dist = -dist
		}

		if bestDist < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}

	return best
}

func outputIArea(link *arealink.ALink) int {
	for _, k := range link.Keys {
		if k.Line.Len() > 0 {
			return k.IArea
		}
	}

	return 0
}

func divideAttrs(link *arealink.ALink) (geometry.Attrs, geometry.Attrs) {
	for _, k := range link.Keys {
		if k.Line.Len() > 0 {
			return k.LeftAttrs, k.RightAttrs
		}
	}

	return geometry.Attrs{}, geometry.Attrs{}
}
