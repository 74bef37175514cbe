package gpgback

import (
	"strings"

	"github.com/fpasys/fpagpgen/internal/geometry"
)

// TexMet implements GraphicsBackend over a fixed Tnx×Tny character grid,
// per spec.md §4.9 "TexMet. Acts on a character grid Tnx×Tny; text(x,y,
// size,justify,…) writes at integer column/row with justification computed
// on string length; out-of-range positions clamp with a warning." Every
// geometry-drawing operation other than write_text returns
// ErrUnsupportedOnBackend, per the resolved open question in DESIGN.md: a
// flat character buffer cannot express filled/outlined shapes, and this
// reports that explicitly rather than silently no-oping.
type TexMet struct {
	nx, ny int
	grid   [][]rune
	warn   func(format string, args ...any)
}

// NewTexMet builds a nx×ny character grid back end, space-filled. warn may
// be nil to discard clamp warnings.
func NewTexMet(nx, ny int, warn func(format string, args ...any)) *TexMet {
	grid := make([][]rune, ny)
	for row := range grid {
		grid[row] = make([]rune, nx)
		for col := range grid[row] {
			grid[row][col] = ' '
		}
	}

	return &TexMet{nx: nx, ny: ny, grid: grid, warn: warn}
}

func (t *TexMet) warnf(format string, args ...any) {
	if t.warn != nil {
		t.warn(format, args...)
	}
}

// Dump renders the grid row by row, per spec.md §6 "output is the buffer
// row by row."
func (t *TexMet) Dump() string {
	var b strings.Builder

	for _, row := range t.grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}

	return b.String()
}

func (t *TexMet) InitializeDisplay() error { return nil }

func (t *TexMet) InitializeSize(_, _ float64) error { return nil }

func (t *TexMet) CloseFile() error { return nil }

func (t *TexMet) WriteComment(_ string) error { return nil }

func (t *TexMet) WriteGroup(_ bool, _ map[string]string) error { return nil }

func (t *TexMet) WriteBitmap(_ string, _, _, _, _ float64) error { return ErrUnsupportedOnBackend }

func (t *TexMet) WriteImage(_ string, _, _, _, _ float64) error { return ErrUnsupportedOnBackend }

func (t *TexMet) WriteBox(_, _, _, _ float64, _, _ bool) error { return ErrUnsupportedOnBackend }

func (t *TexMet) WriteEllipse(_ EllipseSpec) error { return ErrUnsupportedOnBackend }

func (t *TexMet) WriteUnderline(_, _, _, _ float64) error { return ErrUnsupportedOnBackend }

// WriteText writes spec.Text at the integer column/row of (X,Y), each
// truncated toward zero,
// justified against the string's length, clamping to the grid with a
// warning when it would otherwise write out of range.
func (t *TexMet) WriteText(spec TextSpec) error {
	col := int(spec.X)
	row := int(spec.Y)

	switch spec.Justify {
	case JustifyCenter:
		col -= len(spec.Text) / 2
	case JustifyRight:
		col -= len(spec.Text)
	case JustifyLeft:
	}

	if row < 0 {
		t.warnf("gpgback: texmet write_text row %d out of range, clamped to 0", row)

		row = 0
	}

	if row >= t.ny {
		t.warnf("gpgback: texmet write_text row %d out of range, clamped to %d", row, t.ny-1)

		row = t.ny - 1
	}

	if col < 0 {
		t.warnf("gpgback: texmet write_text col %d out of range, clamped to 0", col)

		col = 0
	}

	for i, r := range spec.Text {
		c := col + i
		if c >= t.nx {
			t.warnf("gpgback: texmet write_text col %d out of range, text truncated", c)

			break
		}

		t.grid[row][c] = r
	}

	return nil
}

func (t *TexMet) WriteLines(_ []geometry.Line) error { return ErrUnsupportedOnBackend }

func (t *TexMet) WriteOutlines(_ []geometry.Line, _, _ bool) error { return ErrUnsupportedOnBackend }

func (t *TexMet) WriteBoundaries(_ []geometry.Area, _, _ bool) error { return ErrUnsupportedOnBackend }

func (t *TexMet) WriteFeatures(_ []geometry.Line, _, _ bool) error { return ErrUnsupportedOnBackend }

func (t *TexMet) WriteSymbol(_ SymbolSpec) error { return ErrUnsupportedOnBackend }

func (t *TexMet) GraphicsSymbolSize(_ string, _ float64) (SymbolSize, error) {
	return SymbolSize{}, ErrUnsupportedOnBackend
}

func (t *TexMet) WriteOutlineMask(_ geometry.Line, _ bool) error { return ErrUnsupportedOnBackend }

func (t *TexMet) WriteBoundaryMask(_ geometry.Area, _ bool) error { return ErrUnsupportedOnBackend }
</content>
