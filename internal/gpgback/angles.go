package gpgback

import "math"

// SVGArc is the set of parameters an SVG elliptical arc path command
// needs, per spec.md §4.9 "For SVG, derive SVG arc parameters
// (rx,ry,x-axis-rotation,large-arc,sweep,ex,ey) and emit a <path>".
type SVGArc struct {
	RX, RY       float64
	XAxisRotate  float64
	LargeArcFlag bool
	SweepFlag    bool
	EndX, EndY   float64
}

// EllipseToSVGArc converts an EllipseSpec (centre, radii, CCW start/end
// angle in degrees) into the parameters one SVG <path> arc command needs.
// SVG's y-axis grows downward and its sweep flag is defined clockwise, so
// the spec's CCW convention is mirrored here (spec.md §4.9 "SVG converts
// [angle] to CW").
func EllipseToSVGArc(e EllipseSpec) SVGArc {
	rx, ry := e.Width/2, e.Height/2

	sangle, eangle := e.StartAngle, e.EndAngle
	if e.FullEllipse() {
		sangle, eangle = 0, 359.999
	}

	endX, endY := ellipsePointCW(e.CenterX, e.CenterY, rx, ry, eangle, e.Rotation)

	extent := arcExtentCW(sangle, eangle)

	return SVGArc{
		RX:           rx,
		RY:           ry,
		XAxisRotate:  e.Rotation,
		LargeArcFlag: extent > 180,
		SweepFlag:    true,
		EndX:         endX,
		EndY:         endY,
	}
}

// EllipseStartPoint returns the arc's start point for the path's initial
// moveto, in the same CW/mirrored convention as EllipseToSVGArc.
func EllipseStartPoint(e EllipseSpec) (x, y float64) {
	rx, ry := e.Width/2, e.Height/2

	return ellipsePointCW(e.CenterX, e.CenterY, rx, ry, e.StartAngle, e.Rotation)
}

func ellipsePointCW(cx, cy, rx, ry, angleDeg, rotationDeg float64) (x, y float64) {
	// Mirror the CCW point-on-ellipse (y negated, since SVG's y-axis grows
	// downward) then apply the ellipse's own rotation and translate to its
	// centre.
	px := rx * math.Cos(angleDeg*math.Pi/180)
	py := -ry * math.Sin(angleDeg*math.Pi/180)

	rot := rotationDeg * math.Pi / 180
	rx2 := px*math.Cos(rot) - py*math.Sin(rot)
	ry2 := px*math.Sin(rot) + py*math.Cos(rot)

	return cx + rx2, cy + ry2
}

// arcExtentCW returns the clockwise angular span of [sangle,eangle] within
// [0,360), used to choose SVG's large-arc-flag.
func arcExtentCW(sangle, eangle float64) float64 {
	span := sangle - eangle
	for span < 0 {
		span += 360
	}

	return math.Mod(span, 360)
}
</content>
