// Package topology implements the topology assembler (spec.md §4.6): per
// tween-frame-per-chain boundary reconstruction and orientation, hole and
// divide insertion into the frame's areas, label replication, and area
// reordering.
package topology

import (
	"errors"
	"fmt"

	"github.com/fpasys/fpagpgen/internal/geometry"
)

// Warner receives diagnostic messages for conditions the assembler
// tolerates rather than fails on (spec.md §4.6 "warn and skip", "silently
// skipped with a debug note").
type Warner func(format string, args ...any)

func warn(w Warner, format string, args ...any) {
	if w != nil {
		w(format, args...)
	}
}

// ReconstructLine resolves the resample pipe's output candidates down to a
// single line, per spec.md §4.6 step 1: "If zero lines come out, warn and
// skip; if >1 come out, keep the first and warn." The geometry pipe used
// elsewhere in this module always yields exactly one candidate, so the
// multi-line branch is structurally unreachable today; it is kept so a
// future resample stage that can split on self-intersection has somewhere
// to plug in, matching the richer contract this step describes.
func ReconstructLine(candidates []geometry.Line, w Warner) (geometry.Line, bool) {
	switch len(candidates) {
	case 0:
		warn(w, "topology: pipe produced zero lines, skipping")

		return geometry.Line{}, false
	case 1:
		return candidates[0], true
	default:
		warn(w, "topology: pipe produced %d lines, keeping the first", len(candidates))

		return candidates[0], true
	}
}

// OrientBoundary reverses line if its traversal direction disagrees with
// the representative key's recorded clockwise flag, per spec.md §4.6 step 2.
func OrientBoundary(line geometry.Line, wantCW bool) geometry.Line {
	if line.Clockwise() != wantCW {
		return line.Reversed()
	}

	return line
}

// OrientDivide applies the representative's flip flag to a divide line, per
// spec.md §4.6 step 2 "For divides, apply flip."
func OrientDivide(line geometry.Line, flip bool) geometry.Line {
	if flip {
		return line.Reversed()
	}

	return line
}

// DivideSpec describes one pending divide insertion, ordered the way the
// caller must present them: spec.md §4.6 "Dividing lines are inserted in
// the order of areakey->sids".
type DivideSpec struct {
	Which       int
	Line        geometry.Line
	Left, Right geometry.Attrs
}

// InsertDivides applies every divide in order, restamping the surviving
// subarea and resetting subids on partial failure, per spec.md §4.6
// "If divide_area fails with a reason DivAreaLeft|DivAreaRight, restamp the
// surviving subarea with the matching side's attributes and call
// reset_area_subids". After the loop, the area's default attributes are
// reset from subarea 0, per the same paragraph's last sentence.
func InsertDivides(area *geometry.Area, divides []DivideSpec, w Warner) error {
	for _, d := range divides {
		_, _, err := geometry.DivideArea(area, d.Which, d.Line, d.Left, d.Right)
		if err == nil {
			continue
		}

		var failure *geometry.DivideFailure
		if !errors.As(err, &failure) {
			return fmt.Errorf("topology: divide %d: %w", d.Which, err)
		}

		survivorAttrs := d.Left
		if failure.Survivor == geometry.DivideRight {
			survivorAttrs = d.Right
		}

		if d.Which >= 0 && d.Which < len(area.Subareas) {
			area.Subareas[d.Which].Attrs = survivorAttrs
		}

		geometry.ResetAreaSubids(area, d.Which)
		warn(w, "topology: divide %d failed (%v), restamped survivor and reset subids", d.Which, failure.Survivor)
	}

	if len(area.Subareas) > 0 {
		area.Default = area.Subareas[0].Attrs
	}

	return nil
}

// InsertHoles adds every hole whose geometry lies inside the area,
// silently skipping (with a warn callback, used for debug logging by the
// caller) any that do not, per spec.md §4.6 "Holes are then inserted into
// their containing area only if hole_inside_area succeeds; missing holes
// are silently skipped with a debug note."
func InsertHoles(area *geometry.Area, holes []geometry.Line, w Warner) {
	for i, h := range holes {
		if !geometry.HoleInsideArea(*area, h) {
			warn(w, "topology: hole %d not inside area, skipping", i)

			continue
		}

		area.Holes = append(area.Holes, h)
	}
}
