package linkchain

import "github.com/fpasys/fpagpgen/internal/geometry"

// KeyframeSet is the minimal view into a keyframe's polygon field the
// linkchain builder needs: line lookup by (area, member) reference. A
// concrete field/area store lives above this package; this interface keeps
// linkchain decoupled from it per spec.md §9's arena-index guidance.
type KeyframeSet interface {
	// Line returns the boundary (imem ignored), divide imem, or hole imem
	// of area iarea, and whether the lookup succeeded.
	Line(iarea int, mtype MemberType, imem int) (geometry.Line, bool)
}

// Precomputed holds the per-chain values spec.md §4.1 says to precompute
// once a chain's MemberType is resolved: boundary clockwise-ness, hole
// clockwise-ness, or divide endpoint positions.
type Precomputed struct {
	Type MemberType

	// CW is set for MemberBound: true if the boundary at the chain's first
	// active keyframe is traversed clockwise.
	CW bool

	// HCW is set for MemberHole: true if the hole is traversed clockwise.
	HCW bool

	// DivideEndpoints is set for MemberDiv: the two endpoint positions of
	// the divide at the chain's first active keyframe.
	DivideEndpoints [2]geometry.Point
}

// Precompute resolves the chain's type and fills in the type-specific
// precomputed fields, reading the first active keyframe's referenced line
// from keys.
func Precompute(c *Chain, keys []KeyframeSet) (Precomputed, error) {
	mtype, err := c.ResolvedType()
	if err != nil {
		return Precomputed{}, err
	}

	out := Precomputed{Type: mtype}

	firstKey := c.FirstActiveKey()
	if firstKey < 0 || mtype == MemberNone {
		return out, nil
	}

	node := c.Nodes[firstKey]

	line, ok := keys[firstKey].Line(node.IArea, mtype, node.IMem)
	if !ok {
		return out, nil
	}

	switch mtype {
	case MemberBound:
		out.CW = line.Clockwise()
	case MemberHole:
		out.HCW = line.Clockwise()
	case MemberDiv:
		if line.Len() >= 2 {
			out.DivideEndpoints = [2]geometry.Point{line.Points[0], line.Points[line.Len()-1]}
		}
	case MemberNone:
	}

	return out, nil
}
