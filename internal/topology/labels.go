package topology

import "github.com/fpasys/fpagpgen/internal/geometry"

// Spot is a labelled point feature attached to a subarea (a "spot" in
// spec.md §4.6's label-replication paragraph).
type Spot struct {
	SourceSubarea int
	Attrs         geometry.Attrs
	Pos           geometry.Point
}

// ReplicateLabels copies spots from the nearest active key's subarea into
// the tween frame, offsetting each by the centroid shift between the
// keyframe and tween-frame boundary samples, per spec.md §4.6 "Label
// replication": "copied into the tween frame, with an offset equal to the
// centroid shift... For frames inside the active window, offset is zero."
func ReplicateLabels(spots []Spot, keyBoundary, tweenBoundary geometry.Line, insideActiveWindow bool) []Spot {
	offset := geometry.Point{}

	if !insideActiveWindow {
		keyCentroid := keyBoundary.Centroid()
		tweenCentroid := tweenBoundary.Centroid()
		offset = tweenCentroid.Sub(keyCentroid)
	}

	out := make([]Spot, len(spots))
	for i, s := range spots {
		out[i] = Spot{
			SourceSubarea: s.SourceSubarea,
			Attrs:         s.Attrs,
			Pos:           s.Pos.Add(offset),
		}
	}

	return out
}
