package arealink

import "github.com/fpasys/fpagpgen/internal/linkchain"

// AreaRefAt reports the area index a chain's node at keyframe k references,
// and whether a node is present there at all.
type AreaRefAt func(link *ALink, k int) (iarea int, present bool)

// DetectMergeSplit implements spec.md §4.2: for each boundary-type link and
// each interior keyframe k where it is active on both sides, scan sibling
// boundary links sharing the same area at k. A merge is detected at k if a
// sibling's node at k-1 references a different area than this link's node
// at k-1; a split is detected symmetrically at k+1.
//
// On detection the chain is split into two ALinks at k: the pre-merge (or
// pre-split) half keeps keyframes [SKey..k] with MFlag=true, the post half
// keeps the rest. Both scale factors are computed from the boundary
// lengths at the shared frame.
func DetectMergeSplit(links []*ALink, areaOf AreaRefAt) []*ALink {
	out := make([]*ALink, 0, len(links))

	for _, link := range links {
		if link.LType != linkchain.MemberBound || len(link.Keys) == 0 {
			out = append(out, link)

			continue
		}

		split := detectOne(link, links, areaOf)
		out = append(out, split...)
	}

	return out
}

func detectOne(link *ALink, all []*ALink, areaOf AreaRefAt) []*ALink {
	for k := link.SKey + 1; k < link.EKey; k++ {
		if !hasKey(link, k-1) || !hasKey(link, k+1) {
			continue
		}

		iareaK, present := areaOf(link, k)
		if !present {
			continue
		}

		for _, sib := range all {
			if sib.ID == link.ID || sib.LType != linkchain.MemberBound {
				continue
			}

			sibAreaK, sibPresent := areaOf(sib, k)
			if !sibPresent || sibAreaK != iareaK {
				continue
			}

			sibPrevArea, sibPrevPresent := areaOf(sib, k-1)
			linkPrevArea, linkPrevPresent := areaOf(link, k-1)

			if sibPrevPresent && linkPrevPresent && sibPrevArea != linkPrevArea {
				return splitAt(link, k, true)
			}

			sibNextArea, sibNextPresent := areaOf(sib, k+1)
			linkNextArea, linkNextPresent := areaOf(link, k+1)

			if sibNextPresent && linkNextPresent && sibNextArea != linkNextArea {
				return splitAt(link, k, false)
			}
		}
	}

	return []*ALink{link}
}

func hasKey(link *ALink, k int) bool {
	return k >= 0 && k < len(link.Keys) && link.Keys[k].Line.Len() > 0
}

// splitAt divides link into a pre-half (ending at k, flagged per isMerge)
// and a post-half (starting at k), per spec.md §4.2's contract that every
// surviving boundary chain describes a single topological object over its
// lifetime after this pass.
func splitAt(link *ALink, k int, isMerge bool) []*ALink {
	pre := *link
	pre.EKey = k
	pre.Keys = append([]ALKey(nil), link.Keys[:k+1]...)

	post := *link
	post.SKey = k
	post.Keys = append([]ALKey(nil), link.Keys[k:]...)

	preLen := pre.Keys[len(pre.Keys)-1].Line.ArcLength()
	postLen := post.Keys[0].Line.ArcLength()
	total := preLen + postLen

	if total > 0 {
		pre.Keys[len(pre.Keys)-1].MFact = preLen / total
		post.Keys[0].MFact = postLen / total
	}

	if isMerge {
		pre.MFlag = true
	} else {
		post.SFlag = true
	}

	return []*ALink{&pre, &post}
}
