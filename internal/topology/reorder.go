package topology

// rankedItem pairs a frame area with its sort key: rank (position implied
// by the nearest keyframe's ordering) and seq (original index, used as a
// stable tiebreaker between equal ranks).
type rankedItem[T any] struct {
	area T
	rank int
	seq  int
}

// ReorderAreas reorders frameAreas to match nearestKeyOrder's relative
// ordering of area identities (spec.md §4.6 "Area reordering").
//
// areaID maps a frame-area index to a stable identity (typically the owning
// chain's id) comparable against nearestKeyOrder's entries. Frame areas
// whose identity is absent from nearestKeyOrder (excursion-only areas) are
// appended in their original relative order; no other keyframe's ordering
// is consulted for them.
func ReorderAreas[T any](frameAreas []T, areaID func(T) int, nearestKeyOrder []int) []T {
	rank := make(map[int]int, len(nearestKeyOrder))
	for i, id := range nearestKeyOrder {
		rank[id] = i
	}

	items := make([]rankedItem[T], len(frameAreas))

	for i, a := range frameAreas {
		id := areaID(a)

		r, known := rank[id]
		if !known {
			r = len(nearestKeyOrder) + i
		}

		items[i] = rankedItem[T]{area: a, rank: r, seq: i}
	}

	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && lessRanked(items[j], items[j-1]); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}

	out := make([]T, len(items))
	for i, it := range items {
		out[i] = it.area
	}

	return out
}

func lessRanked[T any](a, b rankedItem[T]) bool {
	if a.rank != b.rank {
		return a.rank < b.rank
	}

	return a.seq < b.seq
}
