package gpgback

import (
	"fmt"
	"io"
	"strings"

	"github.com/fpasys/fpagpgen/internal/geometry"
)

// CorelMetafile implements GraphicsBackend by emitting Corel Metafile
// (CMF) directives, per spec.md §6 "CMF: @CorelMF 101 -w/2 h/2 w/2 -h/2,
// @mp 1000 units are thousandths of an inch; @u/@U for group start/end;
// @wd @dt @xO @uO @xF @uF @f for presentation; @r @e @m @l @L @t @tb @cl @p
// for geometry."
type CorelMetafile struct {
	out           io.Writer
	width, height float64
}

// NewCorelMetafile builds a Corel Metafile back end writing to out.
func NewCorelMetafile(out io.Writer) *CorelMetafile {
	return &CorelMetafile{out: out}
}

func (c *CorelMetafile) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(c.out, format, args...)
	if err != nil {
		return fmt.Errorf("gpgback: cmf write: %w", err)
	}

	return nil
}

func (c *CorelMetafile) InitializeDisplay() error {
	return c.printf("@mp 1000\n")
}

func (c *CorelMetafile) InitializeSize(width, height float64) error {
	c.width, c.height = width, height

	if err := c.printf("@CorelMF 101 %g %g %g %g\n", -width/2, height/2, width/2, -height/2); err != nil {
		return err
	}

	return c.InitializeDisplay()
}

func (c *CorelMetafile) CloseFile() error {
	return nil
}

func (c *CorelMetafile) WriteComment(s string) error {
	return c.printf("; %s\n", s)
}

func (c *CorelMetafile) WriteGroup(start bool, attrs map[string]string) error {
	if start {
		return c.printf("@u %v\n", attrs)
	}

	return c.printf("@U\n")
}

func (c *CorelMetafile) WriteBitmap(file string, x, y, width, height float64) error {
	return c.printf("@p %s %g %g %g %g\n", file, x, y, width, height)
}

func (c *CorelMetafile) WriteImage(file string, x, y, width, height float64) error {
	return c.WriteBitmap(file, x, y, width, height)
}

func (c *CorelMetafile) WriteBox(x, y, width, height float64, doOutline, doFill bool) error {
	return c.printf("@r %g %g %g %g %s\n", x, y, x+width, y+height, presentationCode(doOutline, doFill))
}

// WriteEllipse emits @e with deci-degree angles, per spec.md §4.9 "for CMF
// use @e with deci-degree angles".
func (c *CorelMetafile) WriteEllipse(spec EllipseSpec) error {
	if spec.Width <= 0 || spec.Height <= 0 {
		return fmt.Errorf("%w: %gx%g", ErrDegenerateEllipse, spec.Width, spec.Height)
	}

	sangle, eangle := spec.StartAngle, spec.EndAngle
	if spec.FullEllipse() {
		sangle, eangle = 0, 3600
	} else {
		sangle *= 10
		eangle *= 10
	}

	return c.printf("@e %g %g %g %g %g %g %s\n",
		spec.CenterX, spec.CenterY, spec.Width/2, spec.Height/2, sangle, eangle, presentationCode(spec.DoOutline, spec.DoFill))
}

func (c *CorelMetafile) WriteUnderline(x1, y1, x2, y2 float64) error {
	return c.printf("@m %g %g @l %g %g\n", x1, y1, x2, y2)
}

func (c *CorelMetafile) WriteText(spec TextSpec) error {
	just := "l"

	switch spec.Justify {
	case JustifyCenter:
		just = "c"
	case JustifyRight:
		just = "r"
	case JustifyLeft:
	}

	return c.printf("@t %g %g %g %s %g %q\n", spec.X, spec.Y, spec.Size, just, spec.Rotation, spec.Text)
}

func (c *CorelMetafile) WriteLines(lines []geometry.Line) error {
	for _, l := range lines {
		if err := c.writePath(l); err != nil {
			return err
		}
	}

	return nil
}

func (c *CorelMetafile) WriteOutlines(lines []geometry.Line, doOutline, doFill bool) error {
	for _, l := range lines {
		if err := c.writePath(l); err != nil {
			return err
		}

		if err := c.printf("@L %s\n", presentationCode(doOutline, doFill)); err != nil {
			return err
		}
	}

	return nil
}

// WriteBoundaries emits each area's boundary followed by its holes as @L
// sub-paths; CMF's @L operator honours even-odd fill across the group the
// way PS's eofill does.
func (c *CorelMetafile) WriteBoundaries(areas []geometry.Area, doOutline, doFill bool) error {
	for _, a := range areas {
		if err := c.writePath(a.Boundary); err != nil {
			return err
		}

		for _, h := range a.Holes {
			if err := c.writePath(h); err != nil {
				return err
			}
		}

		if err := c.printf("@L %s\n", presentationCode(doOutline, doFill)); err != nil {
			return err
		}
	}

	return nil
}

func (c *CorelMetafile) WriteFeatures(lines []geometry.Line, doOutline, doFill bool) error {
	return c.WriteOutlines(lines, doOutline, doFill)
}

// WriteSymbol inlines the symbol library file named by spec.File inside an
// @u/@U group, substituting @xO/@xF/@wd operators from its
// PSMet_both|outline|fill tag and spec.Presentation, per spec.md §4.9 and
// original_source/sapp/fpagpgen/gra_io.c's write_cormet_symbol. CMF has no
// native transform-group primitive the way PS/SVG do, so the body is
// emitted through a translate/rotate/scale comment-delimited @u/@U block
// rather than replicating the original's per-operator coordinate transform.
// A presentation mismatch is returned wrapped in
// ErrSymbolPresentationMismatch after the symbol is still written without
// colour substitution.
func (c *CorelMetafile) WriteSymbol(spec SymbolSpec) error {
	if spec.Scale <= 0 {
		return fmt.Errorf("%w: %g", ErrSymbolScale, spec.Scale)
	}

	sym, err := ReadSymbolFile(spec.File, ParseSymbolFile)
	if err != nil {
		return err
	}

	scale := spec.Scale / 100

	if err := c.printf("@u symbol=%s\n", spec.File); err != nil {
		return err
	}

	if err := c.printf("@tr %g %g %g %g %g\n", spec.X, spec.Y, spec.Rotation, scale, scale); err != nil {
		return err
	}

	var preamble []string

	mismatch := SymbolPresentationLines(sym.Tag, spec.Presentation, scale, func(kind, value string) {
		switch kind {
		case "colour":
			preamble = append(preamble, fmt.Sprintf("@xO %s", value))
		case "fill":
			preamble = append(preamble, fmt.Sprintf("@xF %s", value))
		case "width":
			preamble = append(preamble, fmt.Sprintf("@wd %s", value))
		case "dash":
			preamble = append(preamble, fmt.Sprintf("@dt %s", value))
		}
	})

	for _, line := range preamble {
		if err := c.printf("%s\n", line); err != nil {
			return err
		}
	}

	bodyTag := sym.Tag
	if mismatch != nil {
		bodyTag = SymbolTagNone
	}

	for _, line := range SubstitutePresentation(sym.Body, bodyTag, cmfSymbolLineSubstitute(spec.Presentation)) {
		if err := c.printf("%s\n", line); err != nil {
			return err
		}
	}

	if err := c.printf("@U\n"); err != nil {
		return err
	}

	return mismatch
}

// cmfSymbolLineSubstitute rewrites a symbol body line's leading @xO/@xF/@wd
// operator value in place, leaving other lines untouched.
func cmfSymbolLineSubstitute(pres Presentation) func(string) string {
	return func(line string) string {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return line
		}

		switch fields[0] {
		case "@xO":
			if c := pres["outline"]; c != "" && c != ColourNone {
				return "@xO " + c
			}
		case "@xF":
			if c := pres["fill"]; c != "" && c != ColourNone {
				return "@xF " + c
			}
		case "@wd":
			if w := pres["line_width"]; w != "" {
				return "@wd " + w
			}
		}

		return line
	}
}

// GraphicsSymbolSize reads the symbol file's PSMet_size-style header and
// returns its bounding box scaled, per spec.md §4.9 and
// original_source/sapp/fpagpgen/gra_io.c's cormet_symbol_size.
func (c *CorelMetafile) GraphicsSymbolSize(file string, scale float64) (SymbolSize, error) {
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

func (c *CorelMetafile) WriteOutlineMask(line geometry.Line, on bool) error {
	if !on {
		return c.printf("@cl off\n")
	}

	if err := c.writePath(line); err != nil {
		return err
	}

	return c.printf("@cl on\n")
}

func (c *CorelMetafile) WriteBoundaryMask(area geometry.Area, on bool) error {
	if !on {
		return c.printf("@cl off\n")
	}

	if err := c.writePath(area.Boundary); err != nil {
		return err
	}

	for _, h := range area.Holes {
		if err := c.writePath(h); err != nil {
			return err
		}
	}

	return c.printf("@cl on\n")
}

func (c *CorelMetafile) writePath(l geometry.Line) error {
	if l.Len() == 0 {
		return nil
	}

	if err := c.printf("@m %g %g\n", l.Points[0].X, l.Points[0].Y); err != nil {
		return err
	}

	for _, pt := range l.Points[1:] {
		if err := c.printf("@l %g %g\n", pt.X, pt.Y); err != nil {
			return err
		}
	}

	if l.Closed {
		return c.printf("@l %g %g\n", l.Points[0].X, l.Points[0].Y)
	}

	return nil
}

func presentationCode(doOutline, doFill bool) string {
	switch {
	case doOutline && doFill:
		return "@xO @xF"
	case doOutline:
		return "@xO"
	case doFill:
		return "@xF"
	default:
		return ""
	}
}
</content>
