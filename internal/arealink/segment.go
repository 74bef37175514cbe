package arealink

import (
	"sort"

	"github.com/fpasys/fpagpgen/internal/geometry"
)

// MemberRef identifies the (area, member) pair a link references at a
// keyframe, used to test commonality (spec.md §4.3: "Two chains are common
// at a frame if both reference the same (iarea, imem)").
type MemberRef struct {
	IArea int
	IMem  int
}

// RefAt returns the MemberRef a link occupies at keyframe k, or ok=false if
// absent there.
func RefAt(link *ALink, k int) (ref MemberRef, ok bool) {
	if k < 0 || k >= len(link.Keys) {
		return MemberRef{}, false
	}

	alkey := link.Keys[k]
	if alkey.Line.Len() == 0 && alkey.IArea == 0 && alkey.IMem == 0 {
		return MemberRef{}, false
	}

	return MemberRef{IArea: alkey.IArea, IMem: alkey.IMem}, true
}

// DetectCommon marks, for every representative candidate, all sibling
// links whose full active life is entirely common with it (spec.md §4.3
// paragraph 1). Only links of the same LType are compared.
func DetectCommon(links []*ALink) {
	for _, rep := range links {
		if !rep.IsRepresentative() || len(rep.Keys) == 0 {
			continue
		}

		for _, other := range links {
			if other.ID == rep.ID || other.ICom != other.ID || other.LType != rep.LType {
				continue
			}

			if fullyCommon(rep, other) {
				other.ICom = rep.ID
				rep.Common = append(rep.Common, other.ID)
			}
		}
	}
}

func fullyCommon(a, b *ALink) bool {
	lo := max(a.SKey, b.SKey)
	hi := min(a.EKey, b.EKey)

	if lo > hi {
		return false
	}

	for k := lo; k <= hi; k++ {
		refA, okA := RefAt(a, k)
		refB, okB := RefAt(b, k)

		if okA != okB {
			return false
		}

		if okA && refA != refB {
			return false
		}
	}

	return true
}

// Segment partitions a representative link's line into segments anchored
// at link-node positions, per spec.md §4.3. Closed lines (boundary, hole)
// are cut cyclically with `len(commonLinkNodePositions)+1` segments
// anchored at the representative's first link node; open lines (divide)
// always include the two endpoints as segment boundaries.
//
// commonLinkNodePositions is the union of link-node positions (arc-length
// fractions in [0,1)) contributed by the representative and every chain
// marked common with it, already deduplicated and excluding the anchor
// itself.
func Segment(alkey *ALKey, closed bool, commonLinkNodePositions []float64) {
	line := alkey.Line
	if line.Len() < 2 {
		alkey.NSeg = 0

		return
	}

	total := line.ArcLength()
	if total <= 0 {
		alkey.NSeg = 1
		alkey.DSeg = []int{0}
		alkey.DSpan = []float64{0}
		alkey.DSpt = []int{line.Len()}

		return
	}

	arcAt := cumulativeArc(line)

	boundaries := make([]float64, 0, len(commonLinkNodePositions)+2)
	boundaries = append(boundaries, 0)
	boundaries = append(boundaries, commonLinkNodePositions...)

	if !closed {
		boundaries = append(boundaries, 1)
	}

	sort.Float64s(boundaries)
	boundaries = dedupeSorted(boundaries)

	alkey.NSeg = len(boundaries)
	if !closed && len(boundaries) >= 2 {
		alkey.NSeg = len(boundaries) - 1
	}

	alkey.DSeg = make([]int, len(boundaries))
	alkey.DSpan = make([]float64, len(boundaries))
	alkey.DSpt = make([]int, len(boundaries))

	for i, frac := range boundaries {
		target := frac * total
		idx := vertexIndexAtArc(arcAt, target)
		alkey.DSeg[i] = idx
		alkey.DSpan[i] = target
	}

	for i := range boundaries {
		next := i + 1
		if next >= len(alkey.DSeg) {
			if closed {
				alkey.DSpt[i] = line.Len() - alkey.DSeg[i] + alkey.DSeg[0]
			} else {
				alkey.DSpt[i] = line.Len() - alkey.DSeg[i]
			}

			continue
		}

		alkey.DSpt[i] = alkey.DSeg[next] - alkey.DSeg[i]
	}
}

func cumulativeArc(l geometry.Line) []float64 {
	n := l.Len()
	arc := make([]float64, n)

	for i := 1; i < n; i++ {
		arc[i] = arc[i-1] + l.Points[i].Dist(l.Points[i-1])
	}

	if l.Closed && n > 0 {
		_ = arc // closing segment length not needed for per-vertex arc table
	}

	return arc
}

func vertexIndexAtArc(arc []float64, target float64) int {
	best := 0
	bestDiff := -1.0

	for i, a := range arc {
		diff := a - target
		if diff < 0 {
			diff = -diff
		}

		if bestDiff < 0 || diff < bestDiff {
			bestDiff = diff
			best = i
		}
	}

	return best
}

func dedupeSorted(in []float64) []float64 {
	if len(in) == 0 {
		return in
	}

	out := in[:1]

	for _, v := range in[1:] {
		if v-out[len(out)-1] > 1e-9 {
			out = append(out, v)
		}
	}

	return out
}

// PseudoLinkPosition chooses an arc-length fraction for a chain absent at
// keyframe k, matching the representative's fractional position at the
// last (or next) active key, per spec.md §4.3 "Pseudo-links are created for
// keys where a chain is absent".
func PseudoLinkPosition(repPositionFraction float64) float64 {
	return repPositionFraction
}
