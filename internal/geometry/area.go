package geometry

import "errors"

// Attrs is the attribute bundle carried by a subarea: category, value,
// label, and a free-form "CAL" (Construction/Attribute/Label) record, per
// spec.md §3 "Polygon field frame".
type Attrs struct {
	Category string
	Value    string
	Label    string
	CAL      map[string]string
}

// Subarea is one piece of an Area's interior, bounded by dividing lines.
type Subarea struct {
	Attrs Attrs
}

// Area is a closed boundary, a set of interior holes, a set of dividing
// lines partitioning the interior, and one Subarea per partition, per
// spec.md §3 "Polygon field frame". Dividing-line index i maps to subarea
// pairing via Subids, matching spec.md's "subids is a permutation mapping
// dividing-line index to subarea-to-divide index" invariant.
type Area struct {
	Boundary  Line
	Holes     []Line
	Divides   []Line
	Subareas  []Subarea
	Subids    []int
	Default   Attrs
}

// DivideSide identifies which side of a dividing line a subarea falls on.
type DivideSide int

// Divide sides.
const (
	DivideLeft DivideSide = iota
	DivideRight
)

// ErrDivideFailed is returned by DivideArea when a dividing line cannot
// split the target subarea (spec.md §4.6, kind DivAreaLeft/DivAreaRight).
var ErrDivideFailed = errors.New("dividing line does not split the subarea")

// DivideFailure reports which side of a failed divide survived, matching
// spec.md §4.6's `DivAreaLeft|DivAreaRight` failure reasons.
type DivideFailure struct {
	Survivor DivideSide
}

func (f *DivideFailure) Error() string {
	if f.Survivor == DivideLeft {
		return "divide_area: right side degenerate, left survives"
	}

	return "divide_area: left side degenerate, right survives"
}

// DivideArea splits subarea `which` of a by divl, producing two subareas
// tagged with left/right attrs. On success it appends the new subarea,
// records the divide, and extends Subids. The only geometric failure this
// stand-in detects is a dividing line of fewer than two points; it then
// returns a *DivideFailure with Survivor DivideLeft, and callers must
// restamp the surviving subarea per spec.md §4.6. Whether the line actually
// crosses the target polygon is not checked.
func DivideArea(a *Area, which int, divl Line, left, right Attrs) (leftIdx, rightIdx int, err error) {
	if which < 0 || which >= len(a.Subareas) {
		return 0, 0, ErrDivideFailed
	}

	if divl.Len() < 2 {
		return 0, 0, &DivideFailure{Survivor: DivideLeft}
	}

	a.Subareas[which].Attrs = left
	a.Subareas = append(a.Subareas, Subarea{Attrs: right})
	rightIdx = len(a.Subareas) - 1
	leftIdx = which

	a.Divides = append(a.Divides, divl)
	a.Subids = append(a.Subids, rightIdx)

	return leftIdx, rightIdx, nil
}

// ResetAreaSubids renumbers Subids after a subarea is removed (the
// restamp-and-shuffle step spec.md §4.6 calls for after a DivideFailure).
func ResetAreaSubids(a *Area, removed int) {
	newIDs := make([]int, 0, len(a.Subids))

	for _, id := range a.Subids {
		switch {
		case id == removed:
			continue
		case id > removed:
			newIDs = append(newIDs, id-1)
		default:
			newIDs = append(newIDs, id)
		}
	}

	a.Subids = newIDs

	if removed >= 0 && removed < len(a.Subareas) {
		a.Subareas = append(a.Subareas[:removed], a.Subareas[removed+1:]...)
	}
}

// HoleInsideArea reports whether every vertex of hole lies within a's
// boundary, the minimal-geometry stand-in for spec.md §4.6
// `hole_inside_area`. Dividing lines are not consulted, so a hole that
// crosses a divide still reports true.
func HoleInsideArea(a Area, hole Line) bool {
	for _, p := range hole.Points {
		if !PointInPolygon(a.Boundary, p) {
			return false
		}
	}

	return true
}
