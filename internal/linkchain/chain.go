// Package linkchain models the user-drawn temporal correspondences between
// members of polygon sets across keyframes (spec.md §3 "Link chain", §4.1).
package linkchain

import (
	"errors"
	"fmt"

	"github.com/fpasys/fpagpgen/internal/geometry"
)

// MemberType identifies which part of an area a chain node references.
type MemberType int

// Member types, per spec.md §3 ALKEY's `mtype`.
const (
	MemberNone MemberType = iota
	MemberBound
	MemberDiv
	MemberHole
)

func (m MemberType) String() string {
	switch m {
	case MemberBound:
		return "Bound"
	case MemberDiv:
		return "Div"
	case MemberHole:
		return "Hole"
	default:
		return "None"
	}
}

// Node is one keyframe's reference for a chain: either a specific member
// of a specific area, or absent (the chain has no presence in that
// keyframe). Position carries the link node's 2-D placement along the
// referenced line, used to anchor segmentation.
type Node struct {
	Present  bool
	IArea    int
	MType    MemberType
	IMem     int
	Position geometry.Point

	// LeftAttrs/RightAttrs carry the dividing line's two-sided attribute
	// bundle (lsub/lval/llab/lcal and rsub/rval/rlab/rcal, spec.md §3's
	// "attribute bundles for left/right side of a divide"), meaningful only
	// when MType == MemberDiv.
	LeftAttrs, RightAttrs geometry.Attrs
}

// ControlNode is an intermediate user-placed steering point on a chain at a
// non-keyframe tween time (spec.md GLOSSARY "Control node").
type ControlNode struct {
	// Tween is the tween-frame index this control node is anchored to.
	Tween int
	Pos   geometry.Point
}

// Chain is the raw, per-field link chain: an ordered list of per-keyframe
// nodes plus any intermediate control nodes, and the active window
// (splus/eplus) per spec.md §3.
type Chain struct {
	ID           int
	Nodes        []Node // indexed by keyframe
	ControlNodes []ControlNode
	Splus, Eplus int // start/end tween-frame bounds of activity
}

// ErrLinkTypeMixed is returned when a chain's active nodes reference more
// than one MemberType, per spec.md §4.1 "Fails with LinkTypeMixed if a
// chain references different mtypes across keys".
var ErrLinkTypeMixed = errors.New("link chain references mixed member types across keyframes")

// ResolvedType returns the chain's single MemberType, or ErrLinkTypeMixed if
// its present nodes disagree. A chain with no present nodes resolves to
// MemberNone without error.
func (c *Chain) ResolvedType() (MemberType, error) {
	resolved := MemberNone
	seen := false

	for _, n := range c.Nodes {
		if !n.Present {
			continue
		}

		if !seen {
			resolved = n.MType
			seen = true

			continue
		}

		if n.MType != resolved {
			return MemberNone, fmt.Errorf("%w: chain %d", ErrLinkTypeMixed, c.ID)
		}
	}

	return resolved, nil
}

// ActiveKeys returns the sorted indices of keyframes where the chain has a
// present node.
func (c *Chain) ActiveKeys() []int {
	out := make([]int, 0, len(c.Nodes))

	for i, n := range c.Nodes {
		if n.Present {
			out = append(out, i)
		}
	}

	return out
}

// FirstActiveKey returns the first keyframe index with a present node, or
// -1 if the chain has none.
func (c *Chain) FirstActiveKey() int {
	for i, n := range c.Nodes {
		if n.Present {
			return i
		}
	}

	return -1
}

// IsActiveAt reports whether the chain has a present node at keyframe k.
func (c *Chain) IsActiveAt(k int) bool {
	return k >= 0 && k < len(c.Nodes) && c.Nodes[k].Present
}
