package arealink

import (
	"github.com/fpasys/fpagpgen/internal/geometry"
	"github.com/fpasys/fpagpgen/internal/linkchain"
)

// Build walks every chain and emits one ALink per chain, filling ALKey for
// each keyframe where the chain has a present node (spec.md §4.1). A chain
// that fails ResolvedType (mixed member types) is skipped — LType is
// forced to MemberNone and no ALKeys are filled, per spec.md §4.1: "ltype
// is then forced to None and the chain is skipped by later stages".
func Build(chains []*linkchain.Chain, keys []linkchain.KeyframeSet) []*ALink {
	out := make([]*ALink, 0, len(chains))

	for _, c := range chains {
		out = append(out, buildOne(c, keys))
	}

	return out
}

func buildOne(c *linkchain.Chain, keys []linkchain.KeyframeSet) *ALink {
	link := &ALink{
		ID:           c.ID,
		ICom:         c.ID,
		SPlus:        c.Splus,
		EPlus:        c.Eplus,
		ControlNodes: append([]linkchain.ControlNode(nil), c.ControlNodes...),
	}

	mtype, err := c.ResolvedType()
	if err != nil {
		link.LType = linkchain.MemberNone

		return link
	}

	link.LType = mtype

	active := c.ActiveKeys()
	if len(active) == 0 {
		return link
	}

	link.SKey = active[0]
	link.EKey = active[len(active)-1]
	link.Keys = make([]ALKey, len(c.Nodes))

	pre, preErr := linkchain.Precompute(c, keys)
	if preErr != nil {
		link.LType = linkchain.MemberNone

		return link
	}

	for _, k := range active {
		node := c.Nodes[k]

		line, ok := geometry.Line{}, false
		if k < len(keys) {
			line, ok = keys[k].Line(node.IArea, mtype, node.IMem)
		}

		alkey := ALKey{
			IArea: node.IArea,
			MType: mtype,
			IMem:  node.IMem,
			LPos:  node.Position,
		}

		if ok {
			alkey.Line = line
		}

		switch mtype {
		case linkchain.MemberBound:
			alkey.CW = pre.CW
		case linkchain.MemberHole:
			alkey.HCW = pre.HCW
		case linkchain.MemberDiv:
			alkey.LeftAttrs = node.LeftAttrs
			alkey.RightAttrs = node.RightAttrs
		case linkchain.MemberNone:
		}

		link.Keys[k] = alkey
	}

	return link
}
