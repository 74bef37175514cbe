package gpgback

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fpasys/fpagpgen/internal/geometry"
)

// ErrDegenerateEllipse is returned when width or height is non-positive,
// per spec.md §7 "Geometry warnings — degenerate ellipse (w or h ≤ 0)".
var ErrDegenerateEllipse = errors.New("gpgback: degenerate ellipse")

// PostScript implements GraphicsBackend by emitting standard PostScript
// drawing operators, per spec.md §4.9 and §6 "PS: begins with
// %!PS-Adobe-2.0-for-FPA-V5 PSMet_size[0 h w 0]; if w>h emits 90 rotate and
// translate; body is standard PostScript drawing operators and a small
// custom font-encoding block; ends with showpage."
type PostScript struct {
	out           io.Writer
	width, height float64
}

// NewPostScript builds a PostScript back end writing to out.
func NewPostScript(out io.Writer) *PostScript {
	return &PostScript{out: out}
}

func (p *PostScript) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(p.out, format, args...)
	if err != nil {
		return fmt.Errorf("gpgback: ps write: %w", err)
	}

	return nil
}

func (p *PostScript) InitializeDisplay() error {
	return p.printf("%%!PS-Adobe-2.0-for-FPA-V5 PSMet_size[0 %g %g 0]\n", p.height, p.width)
}

func (p *PostScript) InitializeSize(width, height float64) error {
	p.width, p.height = width, height

	if err := p.InitializeDisplay(); err != nil {
		return err
	}

	if width > height {
		return p.printf("90 rotate 0 %g translate\n", -height)
	}

	return nil
}

func (p *PostScript) CloseFile() error {
	return p.printf("showpage\n")
}

func (p *PostScript) WriteComment(s string) error {
	return p.printf("%% %s\n", s)
}

func (p *PostScript) WriteGroup(start bool, attrs map[string]string) error {
	if start {
		return p.printf("%% group-begin %v\n", attrs)
	}

	return p.printf("%% group-end\n")
}

func (p *PostScript) WriteBitmap(file string, x, y, width, height float64) error {
	return p.printf("%% bitmap %s %g %g %g %g\n", file, x, y, width, height)
}

func (p *PostScript) WriteImage(file string, x, y, width, height float64) error {
	return p.printf("%% image %s %g %g %g %g\n", file, x, y, width, height)
}

func (p *PostScript) WriteBox(x, y, width, height float64, doOutline, doFill bool) error {
	if err := p.printf("newpath %g %g moveto %g %g lineto %g %g lineto %g %g lineto closepath\n",
		x, y, x+width, y, x+width, y+height, x, y+height); err != nil {
		return err
	}

	return p.finishPath(doOutline, doFill)
}

func (p *PostScript) WriteEllipse(spec EllipseSpec) error {
	if spec.Width <= 0 || spec.Height <= 0 {
		return fmt.Errorf("%w: %gx%g", ErrDegenerateEllipse, spec.Width, spec.Height)
	}

	sangle, eangle := spec.StartAngle, spec.EndAngle
	if spec.FullEllipse() {
		sangle, eangle = 0, 360
	}

	if err := p.printf("gsave %g %g translate %g rotate 1 %g scale 0 0 %g %g %g arc\n",
		spec.CenterX, spec.CenterY, spec.Rotation, spec.Height/spec.Width, spec.Width/2, sangle, eangle); err != nil {
		return err
	}

	if spec.Closed {
		if err := p.printf("closepath\n"); err != nil {
			return err
		}
	}

	if err := p.finishPath(spec.DoOutline, spec.DoFill); err != nil {
		return err
	}

	return p.printf("grestore\n")
}

func (p *PostScript) WriteUnderline(x1, y1, x2, y2 float64) error {
	return p.printf("newpath %g %g moveto %g %g lineto stroke\n", x1, y1, x2, y2)
}

func (p *PostScript) WriteText(spec TextSpec) error {
	offset := 0.0

	switch spec.Justify {
	case JustifyCenter:
		offset = -float64(len(spec.Text)) * spec.Size * 0.3
	case JustifyRight:
		offset = -float64(len(spec.Text)) * spec.Size * 0.6
	case JustifyLeft:
	}

	if err := p.printf("gsave %g %g translate %g rotate %g 0 moveto (%s) show grestore\n",
		spec.X, spec.Y, spec.Rotation, offset, escapePSText(spec.Text)); err != nil {
		return err
	}

	return nil
}

func (p *PostScript) WriteLines(lines []geometry.Line) error {
	for _, l := range lines {
		if err := p.writeLinePath(l); err != nil {
			return err
		}

		if err := p.printf("stroke\n"); err != nil {
			return err
		}
	}

	return nil
}

func (p *PostScript) WriteOutlines(lines []geometry.Line, doOutline, doFill bool) error {
	for _, l := range lines {
		if err := p.writeLinePath(l); err != nil {
			return err
		}

		if err := p.finishPath(doOutline, doFill); err != nil {
			return err
		}
	}

	return nil
}

// WriteBoundaries draws each area's boundary with its holes cut out using
// PostScript's eofill, per spec.md §4.9 "(with holes honouring even-odd
// rule)".
func (p *PostScript) WriteBoundaries(areas []geometry.Area, doOutline, doFill bool) error {
	for _, a := range areas {
		if err := p.writeLinePath(a.Boundary); err != nil {
			return err
		}

		for _, h := range a.Holes {
			if err := p.writeLinePath(h); err != nil {
				return err
			}
		}

		if doFill {
			if err := p.printf("eofill\n"); err != nil {
				return err
			}
		}

		if doOutline {
			if err := p.printf("stroke\n"); err != nil {
				return err
			}
		}
	}

	return nil
}

func (p *PostScript) WriteFeatures(lines []geometry.Line, doOutline, doFill bool) error {
	return p.WriteOutlines(lines, doOutline, doFill)
}

// WriteSymbol inlines the symbol library file named by spec.File, wrapped in
// a gsave/translate/rotate/scale block, with its PSMet_both|outline|fill tag
// substituting colour/line-width operators from spec.Presentation, per
// spec.md §4.9 and original_source/sapp/fpagpgen/gra_io.c's
// write_psmet_symbol. A presentation mismatch (colour unset, or outline/fill
// disagreeing for PSMet_both) is returned wrapped in
// ErrSymbolPresentationMismatch after the symbol is still written without
// colour substitution; callers should treat it as a warning, not a fatal
// error.
func (p *PostScript) WriteSymbol(spec SymbolSpec) error {
	if spec.Scale <= 0 {
		return fmt.Errorf("%w: %g", ErrSymbolScale, spec.Scale)
	}

	sym, err := ReadSymbolFile(spec.File, ParseSymbolFile)
	if err != nil {
		return err
	}

	scale := spec.Scale / 100

	if err := p.printf("gsave\n%g %g translate\n%g rotate\n%g %g scale\n",
		spec.X, spec.Y, spec.Rotation, scale, scale); err != nil {
		return err
	}

	var preamble []string

	mismatch := SymbolPresentationLines(sym.Tag, spec.Presentation, scale, func(kind, value string) {
		switch kind {
		case "colour", "fill":
			preamble = append(preamble, fmt.Sprintf("%s setrgbcolor", value))
		case "width":
			preamble = append(preamble, fmt.Sprintf("%s setlinewidth", value))
		case "dash":
			preamble = append(preamble, fmt.Sprintf("%s setdash", value))
		}
	})

	for _, line := range preamble {
		if err := p.printf("%s\n", line); err != nil {
			return err
		}
	}

	bodyTag := sym.Tag
	if mismatch != nil {
		bodyTag = SymbolTagNone
	}

	for _, line := range SubstitutePresentation(sym.Body, bodyTag, psSymbolLineSubstitute(spec.Presentation)) {
		if err := p.printf("%s\n", line); err != nil {
			return err
		}
	}

	if err := p.printf("grestore\n"); err != nil {
		return err
	}

	return mismatch
}

// psSymbolLineSubstitute rewrites a symbol body line's colour/line-width
// operator in place, leaving lines that aren't one of PostScript's
// setrgbcolor/setlinewidth/setdash operators untouched.
func psSymbolLineSubstitute(pres Presentation) func(string) string {
	return func(line string) string {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasSuffix(trimmed, "setrgbcolor"):
			if c := pres["outline"]; c != "" && c != ColourNone {
				return c + " setrgbcolor"
			}
		case strings.HasSuffix(trimmed, "setlinewidth"):
			if w := pres["line_width"]; w != "" {
				return w + " setlinewidth"
			}
		case strings.HasSuffix(trimmed, "setdash"):
			if d := pres["line_style"]; d != "" {
				return d + " setdash"
			}
		}

		return line
	}
}

// GraphicsSymbolSize reads the symbol file's PSMet_size header and returns
// its bounding box scaled, per spec.md §4.9 and
// original_source/sapp/fpagpgen/gra_io.c's psmet_symbol_size.
func (p *PostScript) GraphicsSymbolSize(file string, scale float64) (SymbolSize, error) {
	if scale <= 0 {
		return SymbolSize{}, fmt.Errorf("%w: %g", ErrSymbolScale, scale)
	}

	sym, err := ReadSymbolFile(file, ParseSymbolFile)
	if err != nil {
		return SymbolSize{}, err
	}

	s := scale / 100

	return SymbolSize{
		Width:   sym.Width() * s,
		Height:  sym.Height() * s,
		CenterX: sym.CenterX() * s,
		CenterY: sym.CenterY() * s,
	}, nil
}

func (p *PostScript) WriteOutlineMask(line geometry.Line, on bool) error {
	if !on {
		return p.printf("initclip\n")
	}

	if err := p.writeLinePath(line); err != nil {
		return err
	}

	return p.printf("eoclip\n")
}

func (p *PostScript) WriteBoundaryMask(area geometry.Area, on bool) error {
	if !on {
		return p.printf("initclip\n")
	}

	if err := p.writeLinePath(area.Boundary); err != nil {
		return err
	}

	for _, h := range area.Holes {
		if err := p.writeLinePath(h); err != nil {
			return err
		}
	}

	return p.printf("eoclip\n")
}

func (p *PostScript) writeLinePath(l geometry.Line) error {
	if l.Len() == 0 {
		return nil
	}

	if err := p.printf("newpath %g %g moveto\n", l.Points[0].X, l.Points[0].Y); err != nil {
		return err
	}

	for _, pt := range l.Points[1:] {
		if err := p.printf("%g %g lineto\n", pt.X, pt.Y); err != nil {
			return err
		}
	}

	if l.Closed {
		return p.printf("closepath\n")
	}

	return nil
}

func (p *PostScript) finishPath(doOutline, doFill bool) error {
	if doFill {
		if err := p.printf("fill\n"); err != nil {
			return err
		}
	}

	if doOutline {
		return p.printf("stroke\n")
	}

	return nil
}

func escapePSText(s string) string {
	out := make([]byte, 0, len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '(' || c == ')' || c == '\\' {
			out = append(out, '\\')
		}

		out = append(out, c)
	}

	return string(out)
}
</content>
