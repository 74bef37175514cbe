// Package gpgback implements the four concrete graphics back ends
// (PostScript, SVG, Corel Metafile, fixed-pitch text) behind a single
// GraphicsBackend interface, per spec.md §4.9 and §9's redesign note: "A
// reimplementation should define a GraphicsBackend trait ... with one impl
// per back end, replacing the function-pointer vtable bound at startup
// from the program type." Each back end owns the mechanics of its own
// output format; internal/gpg's directive handlers hold the GraphicsBackend
// they were configured with and call it, never branching on back-end kind
// themselves.
package gpgback

import (
	"errors"

	"github.com/fpasys/fpagpgen/internal/geometry"
)

// Justify is text horizontal justification, computed against string length
// per spec.md §4.9 "write_text(str,x,y,size,justify,rotation,do_outline)".
type Justify int

// Justification values.
const (
	JustifyLeft Justify = iota
	JustifyCenter
	JustifyRight
)

// EllipseSpec bundles write_ellipse's parameters, per spec.md §4.9
// "write_ellipse(sangle,eangle,closed,rotation,do_outline,do_fill)".
// Angles are degrees, counter-clockwise, matching the spec's input
// convention; back ends that draw clockwise (SVG) convert internally.
type EllipseSpec struct {
	CenterX, CenterY float64
	Width, Height    float64
	StartAngle       float64
	EndAngle         float64
	Closed           bool
	Rotation         float64
	DoOutline        bool
	DoFill           bool
}

// FullEllipse reports whether sangle == eangle, spec.md §4.9's "full
// ellipse when sangle == eangle".
func (e EllipseSpec) FullEllipse() bool {
	return e.StartAngle == e.EndAngle
}

// TextSpec bundles write_text's parameters.
type TextSpec struct {
	Text      string
	X, Y      float64
	Size      float64
	Justify   Justify
	Rotation  float64
	DoOutline bool
}

// Presentation carries the drawing style (outline/fill colour, line width,
// line style) a symbol file's PSMet_both|PSMet_outline|PSMet_fill tag
// substitutes into its body, per spec.md §4.9. It mirrors the well-known
// keys gpg.Context.CurrentPresentation() produces; gpgback never imports
// internal/gpg, so this is a plain string map rather than a shared type.
type Presentation = map[string]string

// ColourNone is the sentinel presentation value meaning "no colour set",
// mirrored from the original's ColourNone macro.
const ColourNone = "none"

// SymbolSpec bundles write_symbol's parameters, per spec.md §4.9
// "write_symbol(file,x,y,scale,rotation) (inlines a symbol library file
// with colour/line-width substitutions)".
type SymbolSpec struct {
	File     string
	X, Y     float64
	Scale    float64
	Rotation float64

	// Presentation is the current presentation state, consulted when the
	// symbol file's tag calls for colour/line-width substitution.
	Presentation Presentation
}

// SymbolSize is graphics_symbol_size's result: the symbol's bounding box
// and its centre, relative to the requested scale.
type SymbolSize struct {
	Width, Height float64
	CenterX       float64
	CenterY       float64
}

// ErrUnsupportedOnBackend is returned by a back end for an operation its
// output format cannot express, per spec.md §9's open question on TexMet
// outline/fill semantics (resolved in DESIGN.md: TexMet only supports
// write_text; every filled/outlined geometry operation returns this).
var ErrUnsupportedOnBackend = errors.New("gpgback: operation not supported on this backend")

// GraphicsBackend is the full set of drawing operations a GPG back end
// implements, per spec.md §4.9's required-operations list.
type GraphicsBackend interface {
	InitializeDisplay() error
	InitializeSize(width, height float64) error
	CloseFile() error

	WriteComment(s string) error
	WriteGroup(start bool, attrs map[string]string) error

	WriteBitmap(file string, x, y, width, height float64) error
	WriteImage(file string, x, y, width, height float64) error
	WriteBox(x, y, width, height float64, doOutline, doFill bool) error
	WriteEllipse(spec EllipseSpec) error
	WriteUnderline(x1, y1, x2, y2 float64) error
	WriteText(spec TextSpec) error

	WriteLines(lines []geometry.Line) error
	WriteOutlines(lines []geometry.Line, doOutline, doFill bool) error
	WriteBoundaries(areas []geometry.Area, doOutline, doFill bool) error
	WriteFeatures(lines []geometry.Line, doOutline, doFill bool) error

	WriteSymbol(spec SymbolSpec) error
	GraphicsSymbolSize(file string, scale float64) (SymbolSize, error)

	WriteOutlineMask(line geometry.Line, on bool) error
	WriteBoundaryMask(area geometry.Area, on bool) error
}
</content>
