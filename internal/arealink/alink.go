package arealink

import "github.com/fpasys/fpagpgen/internal/linkchain"

// LType mirrors the chain's resolved MemberType once promoted to an ALink;
// None means the chain was dropped (e.g. after ErrLinkTypeMixed).
type LType = linkchain.MemberType

// ALink is the per-chain area-link record (spec.md §3 "Area link (ALINK)").
type ALink struct {
	ID int

	LType LType

	// SKey/EKey are the active keyframe window; SPlus/EPlus the active
	// tween-frame window, which may extend beyond the keyframe window
	// (spec.md §3 "Start/end times (splus/eplus) may extend before the
	// first key node and after the last").
	SKey, EKey   int
	SPlus, EPlus int

	MFlag, SFlag bool // merging at end / splitting at start

	// ICom is the id of the representative link when several chains sit on
	// the same boundary/hole/divide (spec.md "icom"). A representative
	// chain has ICom == ID.
	ICom int

	// Common holds the ids of all chains merged into this representative.
	Common []int

	// Keys holds one ALKey per keyframe where the chain is active; absent
	// keyframes have a zero-value entry with Present=false tracked
	// separately by the caller via linkchain.Chain.Nodes.
	Keys []ALKey

	ControlNodes []linkchain.ControlNode

	// IAOut is the output area index occupied by this chain's boundary at
	// each tween frame (spec.md "iaout[] (output area index per tween)").
	IAOut []int
}

// IsRepresentative reports whether this ALink is the segmentation
// representative for its common-link group.
func (a *ALink) IsRepresentative() bool {
	return a.ICom == a.ID
}

// ActiveAtTween reports whether tween-frame t falls inside [SPlus, EPlus].
func (a *ALink) ActiveAtTween(t int) bool {
	return t >= a.SPlus && t <= a.EPlus
}
