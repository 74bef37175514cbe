// Package arealink resolves raw link chains into per-keyframe ALKEY/ALINK
// records, detects merges and splits, and partitions boundaries/divides/
// holes into segments (spec.md §3 "Per-key link record (ALKEY)"/"Area link
// (ALINK)", §4.1-4.3).
package arealink

import (
	"github.com/fpasys/fpagpgen/internal/geometry"
	"github.com/fpasys/fpagpgen/internal/linkchain"
)

// ALKey is the per-keyframe link record derived from a chain (spec.md §3
// "ALKEY"). Cross-references to the owning ALink and to sibling chains are
// held as indices, never pointers, per spec.md §9's arena-index guidance.
type ALKey struct {
	IArea int
	MType linkchain.MemberType
	IMem  int

	// Line is the resolved geometry at this keyframe (boundary/divide/hole).
	Line geometry.Line

	CW   bool // outer polygon traversed clockwise
	HCW  bool // hole clockwise
	Flip bool // divide reversed relative to the chain's canonical direction

	LPos geometry.Point // link node position

	// Segmentation, filled by Segment (spec.md §4.3). All ALKeys of one
	// chain share the same NSeg and the same DSeg sequence (invariant 1,
	// spec.md §8).
	NSeg  int
	DSeg  []int     // vertex index of each segment boundary, in traversal order
	DSpan []float64 // arc-length position of each segment boundary
	DSpt  []int     // point count contributed by each segment

	// Merge/split scale factors (spec.md §4.2 mfact/sfact).
	MFact, SFact float64

	// SubidMap maps this ALKey's divide index to the owning area's Subids
	// slot, when MType == MemberDiv.
	SubidMap int

	// HoleCount is the number of holes associated with this area at this
	// keyframe (informational, used by the topology assembler).
	HoleCount int

	// LeftAttrs/RightAttrs are the attribute bundles for the two sides of a
	// MemberDiv ALKey (spec.md "attribute bundles for left/right side of a
	// divide": lsub/lval/llab/lcal and rsub/rval/rlab/rcal).
	LeftAttrs, RightAttrs geometry.Attrs
}
