package gpgback

import (
	"fmt"
	"io"
	"strings"

	"github.com/fpasys/fpagpgen/internal/geometry"
)

// SVG implements GraphicsBackend by emitting XML 1.0 + SVG 1.1, per
// spec.md §6 "SVG: XML 1.0 + SVG 1.1 DTD, <svg viewBox=\"0 0 w h\">,
// Y-coordinates mirrored against PageHeight; groups use <g> wrappers with
// passed-through key=value attributes; clip paths use <defs><clipPath
// id=\"clipN\">; text escapes & < > ' \" to entities."
type SVG struct {
	out            io.Writer
	width, height  float64
	nextClipID     int
	clipStackDepth int
}

// NewSVG builds an SVG back end writing to out.
func NewSVG(out io.Writer) *SVG {
	return &SVG{out: out}
}

func (s *SVG) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(s.out, format, args...)
	if err != nil {
		return fmt.Errorf("gpgback: svg write: %w", err)
	}

	return nil
}

// mirrorY mirrors a Y-coordinate against the page height, per spec.md §6's
// "Y-coordinates mirrored against PageHeight".
func (s *SVG) mirrorY(y float64) float64 {
	return s.height - y
}

func (s *SVG) InitializeDisplay() error {
	return s.printf(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
}

func (s *SVG) InitializeSize(width, height float64) error {
	s.width, s.height = width, height

	if err := s.InitializeDisplay(); err != nil {
		return err
	}

	return s.printf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %g %g">`+"\n", width, height)
}

func (s *SVG) CloseFile() error {
	return s.printf("</svg>\n")
}

func (s *SVG) WriteComment(text string) error {
	return s.printf("<!-- %s -->\n", strings.ReplaceAll(text, "--", "- -"))
}

func (s *SVG) WriteGroup(start bool, attrs map[string]string) error {
	if !start {
		return s.printf("</g>\n")
	}

	var b strings.Builder

	for k, v := range attrs {
		fmt.Fprintf(&b, " %s=%q", k, v)
	}

	return s.printf("<g%s>\n", b.String())
}

func (s *SVG) WriteBitmap(file string, x, y, width, height float64) error {
	return s.WriteImage(file, x, y, width, height)
}

func (s *SVG) WriteImage(file string, x, y, width, height float64) error {
	return s.printf(`<image href=%q x="%g" y="%g" width="%g" height="%g"/>`+"\n",
		file, x, s.mirrorY(y)-height, width, height)
}

func (s *SVG) WriteBox(x, y, width, height float64, doOutline, doFill bool) error {
	return s.printf(`<rect x="%g" y="%g" width="%g" height="%g" %s/>`+"\n",
		x, s.mirrorY(y)-height, width, height, presentationAttrs(doOutline, doFill))
}

func (s *SVG) WriteEllipse(spec EllipseSpec) error {
	if spec.Width <= 0 || spec.Height <= 0 {
		return fmt.Errorf("%w: %gx%g", ErrDegenerateEllipse, spec.Width, spec.Height)
	}

	mirrored := spec
	mirrored.CenterY = s.mirrorY(spec.CenterY)

	if spec.FullEllipse() {
		return s.printf(`<ellipse cx="%g" cy="%g" rx="%g" ry="%g" transform="rotate(%g %g %g)" %s/>`+"\n",
			mirrored.CenterX, mirrored.CenterY, spec.Width/2, spec.Height/2,
			spec.Rotation, mirrored.CenterX, mirrored.CenterY, presentationAttrs(spec.DoOutline, spec.DoFill))
	}

	startX, startY := EllipseStartPoint(mirrored)
	arc := EllipseToSVGArc(mirrored)

	sweep := 0
	if arc.SweepFlag {
		sweep = 1
	}

	large := 0
	if arc.LargeArcFlag {
		large = 1
	}

	closeCmd := ""
	if spec.Closed {
		closeCmd = " Z"
	}

	return s.printf(`<path d="M %g %g A %g %g %g %d %d %g %g%s" %s/>`+"\n",
		startX, startY, arc.RX, arc.RY, arc.XAxisRotate, large, sweep, arc.EndX, arc.EndY, closeCmd,
		presentationAttrs(spec.DoOutline, spec.DoFill))
}

func (s *SVG) WriteUnderline(x1, y1, x2, y2 float64) error {
	return s.printf(`<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="currentColor"/>`+"\n",
		x1, s.mirrorY(y1), x2, s.mirrorY(y2))
}

func (s *SVG) WriteText(spec TextSpec) error {
	anchor := "start"

	switch spec.Justify {
	case JustifyCenter:
		anchor = "middle"
	case JustifyRight:
		anchor = "end"
	case JustifyLeft:
	}

	transform := ""
	if spec.Rotation != 0 {
		transform = fmt.Sprintf(` transform="rotate(%g %g %g)"`, -spec.Rotation, spec.X, s.mirrorY(spec.Y))
	}

	return s.printf(`<text x="%g" y="%g" font-size="%g" text-anchor="%s"%s>%s</text>`+"\n",
		spec.X, s.mirrorY(spec.Y), spec.Size, anchor, transform, escapeXML(spec.Text))
}

func (s *SVG) WriteLines(lines []geometry.Line) error {
	for _, l := range lines {
		if err := s.printf(`<polyline points="%s" fill="none" stroke="currentColor"/>`+"\n", s.pointsAttr(l)); err != nil {
			return err
		}
	}

	return nil
}

func (s *SVG) WriteOutlines(lines []geometry.Line, doOutline, doFill bool) error {
	for _, l := range lines {
		tag := "polyline"
		if l.Closed {
			tag = "polygon"
		}

		if err := s.printf(`<%s points="%s" %s/>`+"\n", tag, s.pointsAttr(l), presentationAttrs(doOutline, doFill)); err != nil {
			return err
		}
	}

	return nil
}

// WriteBoundaries emits each area's boundary plus holes as one <path> with
// fill-rule evenodd, per spec.md §4.9 "(with holes honouring even-odd
// rule)".
func (s *SVG) WriteBoundaries(areas []geometry.Area, doOutline, doFill bool) error {
	for _, a := range areas {
		var b strings.Builder

		b.WriteString(s.subpath(a.Boundary))

		for _, h := range a.Holes {
			b.WriteString(s.subpath(h))
		}

		if err := s.printf(`<path d="%s" fill-rule="evenodd" %s/>`+"\n", b.String(), presentationAttrs(doOutline, doFill)); err != nil {
			return err
		}
	}

	return nil
}

func (s *SVG) WriteFeatures(lines []geometry.Line, doOutline, doFill bool) error {
	return s.WriteOutlines(lines, doOutline, doFill)
}

// WriteSymbol inlines the symbol library file named by spec.File inside a
// <g transform=...> wrapper, substituting stroke/fill attributes from its
// PSMet_both|outline|fill tag and spec.Presentation, per spec.md §4.9 and
// original_source/sapp/fpagpgen/gra_io.c's write_svgmet_symbol. A
// presentation mismatch is returned wrapped in
// ErrSymbolPresentationMismatch after the symbol is still written without
// colour substitution (the body's own stroke/fill attributes apply as-is).
func (s *SVG) WriteSymbol(spec SymbolSpec) error {
	if spec.Scale <= 0 {
		return fmt.Errorf("%w: %g", ErrSymbolScale, spec.Scale)
	}

	sym, err := ReadSymbolFile(spec.File, ParseSymbolFileSVG)
	if err != nil {
		return err
	}

	scale := spec.Scale / 100

	if err := s.printf(`<g transform="translate(%g,%g) rotate(%g) scale(%g)"`,
		spec.X, s.mirrorY(spec.Y), -spec.Rotation, scale); err != nil {
		return err
	}

	var attrs []string

	mismatch := SymbolPresentationLines(sym.Tag, spec.Presentation, scale, func(kind, value string) {
		switch kind {
		case "colour":
			attrs = append(attrs, fmt.Sprintf(`stroke="%s"`, value))
		case "width":
			attrs = append(attrs, fmt.Sprintf(`stroke-width="%s"`, value))
		case "dash":
			attrs = append(attrs, fmt.Sprintf(`stroke-dasharray="%s"`, value))
		case "fill":
			attrs = append(attrs, fmt.Sprintf(`fill="%s"`, value))
		}
	})

	// PSMet_both/PSMet_outline draw stroke only; default their fill to none
	// so the wrapper doesn't pick up SVG's black default fill.
	if sym.Tag == SymbolTagBoth || sym.Tag == SymbolTagOutline {
		attrs = append(attrs, `fill="none"`)
	}

	for _, a := range attrs {
		if err := s.printf(" %s", a); err != nil {
			return err
		}
	}

	if err := s.printf(">\n"); err != nil {
		return err
	}

	bodyTag := sym.Tag
	if mismatch != nil {
		bodyTag = SymbolTagNone
	}

	for _, line := range SubstitutePresentation(sym.Body, bodyTag, svgSymbolLineSubstitute(spec.Presentation)) {
		if err := s.printf("  %s\n", line); err != nil {
			return err
		}
	}

	if err := s.printf("</g>\n"); err != nil {
		return err
	}

	return mismatch
}

// svgSymbolLineSubstitute rewrites a symbol body line's stroke/fill
// attribute value in place, leaving lines without that attribute untouched.
func svgSymbolLineSubstitute(pres Presentation) func(string) string {
	return func(line string) string {
		out := line

		if c := pres["outline"]; c != "" && c != ColourNone && strings.Contains(out, `stroke="`) {
			out = replaceXMLAttr(out, "stroke", c)
		}

		if c := pres["fill"]; c != "" && c != ColourNone && strings.Contains(out, `fill="`) {
			out = replaceXMLAttr(out, "fill", c)
		}

		return out
	}
}

func replaceXMLAttr(line, attr, value string) string {
	prefix := attr + `="`

	idx := strings.Index(line, prefix)
	if idx < 0 {
		return line
	}

	start := idx + len(prefix)

	end := strings.Index(line[start:], `"`)
	if end < 0 {
		return line
	}

	return line[:start] + value + line[start+end:]
}

// GraphicsSymbolSize reads the symbol file's viewBox header and returns its
// bounding box scaled, per spec.md §4.9 and
// original_source/sapp/fpagpgen/gra_io.c's svgmet_symbol_size.
func (s *SVG) GraphicsSymbolSize(file string, scale float64) (SymbolSize, error) {
	if scale <= 0 {
		return SymbolSize{}, fmt.Errorf("%w: %g", ErrSymbolScale, scale)
	}

	sym, err := ReadSymbolFile(file, ParseSymbolFileSVG)
	if err != nil {
		return SymbolSize{}, err
	}

	sc := scale / 100

	return SymbolSize{
		Width:   sym.Width() * sc,
		Height:  sym.Height() * sc,
		CenterX: sym.CenterX() * sc,
		CenterY: sym.CenterY() * sc,
	}, nil
}

// WriteOutlineMask pushes or pops a <clipPath>, per spec.md §4.9
// "Clipping masks ... back ends must honour evenodd where holes exist".
func (s *SVG) WriteOutlineMask(line geometry.Line, on bool) error {
	if !on {
		if s.clipStackDepth > 0 {
			s.clipStackDepth--
		}

		return s.printf("</g>\n")
	}

	id := s.nextClipID
	s.nextClipID++
	s.clipStackDepth++

	if err := s.printf(`<defs><clipPath id="clip%d"><path d="%s" fill-rule="evenodd"/></clipPath></defs>`+"\n", id, s.subpath(line)); err != nil {
		return err
	}

	return s.printf(`<g clip-path="url(#clip%d)">`+"\n", id)
}

func (s *SVG) WriteBoundaryMask(area geometry.Area, on bool) error {
	if !on {
		return s.WriteOutlineMask(geometry.Line{}, false)
	}

	var b strings.Builder

	b.WriteString(s.subpath(area.Boundary))

	for _, h := range area.Holes {
		b.WriteString(s.subpath(h))
	}

	id := s.nextClipID
	s.nextClipID++
	s.clipStackDepth++

	if err := s.printf(`<defs><clipPath id="clip%d"><path d="%s" fill-rule="evenodd"/></clipPath></defs>`+"\n", id, b.String()); err != nil {
		return err
	}

	return s.printf(`<g clip-path="url(#clip%d)">`+"\n", id)
}

func (s *SVG) pointsAttr(l geometry.Line) string {
	var b strings.Builder

	for i, pt := range l.Points {
		if i > 0 {
			b.WriteByte(' ')
		}

		fmt.Fprintf(&b, "%g,%g", pt.X, s.mirrorY(pt.Y))
	}

	return b.String()
}

func (s *SVG) subpath(l geometry.Line) string {
	if l.Len() == 0 {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "M %g %g ", l.Points[0].X, s.mirrorY(l.Points[0].Y))

	for _, pt := range l.Points[1:] {
		fmt.Fprintf(&b, "L %g %g ", pt.X, s.mirrorY(pt.Y))
	}

	if l.Closed {
		b.WriteString("Z ")
	}

	return b.String()
}

func presentationAttrs(doOutline, doFill bool) string {
	fill := "none"
	if doFill {
		fill = "currentColor"
	}

	stroke := "none"
	if doOutline {
		stroke = "currentColor"
	}

	return fmt.Sprintf(`fill="%s" stroke="%s"`, fill, stroke)
}

func escapeXML(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"'", "&apos;",
		`"`, "&quot;",
	)

	return r.Replace(s)
}
</content>
