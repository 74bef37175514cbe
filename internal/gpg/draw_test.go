package gpg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpasys/fpagpgen/internal/geometry"
	"github.com/fpasys/fpagpgen/internal/gpg"
	"github.com/fpasys/fpagpgen/internal/gpgback"
)

// recordingBackend is a gpgback.GraphicsBackend test double that records
// the name and arguments of whichever method was last called.
type recordingBackend struct {
	calls []string

	lastBox      [6]float64
	lastEllipse  gpgback.EllipseSpec
	lastText     gpgback.TextSpec
	lastSymbol   gpgback.SymbolSpec
	lastLines    []geometry.Line
	lastAreas    []geometry.Area
	lastComment  string
	lastGroupOn  bool
	lastGroupMap map[string]string
	lastMaskLine geometry.Line
	lastMaskArea geometry.Area
	lastMaskOn   bool
	symbolSize   gpgback.SymbolSize
}

func (b *recordingBackend) InitializeDisplay() error { b.calls = append(b.calls, "InitializeDisplay"); return nil }

func (b *recordingBackend) InitializeSize(width, height float64) error {
	b.calls = append(b.calls, "InitializeSize")

	return nil
}

func (b *recordingBackend) CloseFile() error { b.calls = append(b.calls, "CloseFile"); return nil }

func (b *recordingBackend) WriteComment(s string) error {
	b.calls = append(b.calls, "WriteComment")
	b.lastComment = s

	return nil
}

func (b *recordingBackend) WriteGroup(start bool, attrs map[string]string) error {
	b.calls = append(b.calls, "WriteGroup")
	b.lastGroupOn = start
	b.lastGroupMap = attrs

	return nil
}

func (b *recordingBackend) WriteBitmap(file string, x, y, width, height float64) error {
	b.calls = append(b.calls, "WriteBitmap")

	return nil
}

func (b *recordingBackend) WriteImage(file string, x, y, width, height float64) error {
	b.calls = append(b.calls, "WriteImage")

	return nil
}

func (b *recordingBackend) WriteBox(x, y, width, height float64, doOutline, doFill bool) error {
	b.calls = append(b.calls, "WriteBox")
	b.lastBox = [6]float64{x, y, width, height, boolToFloat(doOutline), boolToFloat(doFill)}

	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}

	return 0
}

func (b *recordingBackend) WriteEllipse(spec gpgback.EllipseSpec) error {
	b.calls = append(b.calls, "WriteEllipse")
	b.lastEllipse = spec

	return nil
}

func (b *recordingBackend) WriteUnderline(x1, y1, x2, y2 float64) error {
	b.calls = append(b.calls, "WriteUnderline")

	return nil
}

func (b *recordingBackend) WriteText(spec gpgback.TextSpec) error {
	b.calls = append(b.calls, "WriteText")
	b.lastText = spec

	return nil
}

func (b *recordingBackend) WriteLines(lines []geometry.Line) error {
	b.calls = append(b.calls, "WriteLines")
	b.lastLines = lines

	return nil
}

func (b *recordingBackend) WriteOutlines(lines []geometry.Line, doOutline, doFill bool) error {
	b.calls = append(b.calls, "WriteOutlines")
	b.lastLines = lines

	return nil
}

func (b *recordingBackend) WriteBoundaries(areas []geometry.Area, doOutline, doFill bool) error {
	b.calls = append(b.calls, "WriteBoundaries")
	b.lastAreas = areas

	return nil
}

func (b *recordingBackend) WriteFeatures(lines []geometry.Line, doOutline, doFill bool) error {
	b.calls = append(b.calls, "WriteFeatures")
	b.lastLines = lines

	return nil
}

func (b *recordingBackend) WriteSymbol(spec gpgback.SymbolSpec) error {
	b.calls = append(b.calls, "WriteSymbol")
	b.lastSymbol = spec

	return nil
}

func (b *recordingBackend) GraphicsSymbolSize(file string, scale float64) (gpgback.SymbolSize, error) {
	b.calls = append(b.calls, "GraphicsSymbolSize")

	return b.symbolSize, nil
}

func (b *recordingBackend) WriteOutlineMask(line geometry.Line, on bool) error {
	b.calls = append(b.calls, "WriteOutlineMask")
	b.lastMaskLine = line
	b.lastMaskOn = on

	return nil
}

func (b *recordingBackend) WriteBoundaryMask(area geometry.Area, on bool) error {
	b.calls = append(b.calls, "WriteBoundaryMask")
	b.lastMaskArea = area
	b.lastMaskOn = on

	return nil
}

func newDrawRegistry() *gpg.Registry {
	r := gpg.NewRegistry()
	gpg.RegisterDrawDirectives(r)

	return r
}

func TestWriteBoxCallsBackendWithParsedFields(t *testing.T) {
	r := newDrawRegistry()
	backend := &recordingBackend{}
	ctx := gpg.NewContext(nil)
	ctx.Backend = backend

	err := r.Dispatch(ctx, gpg.Directive{Name: "write_box", Body: []gpg.KV{
		{Key: "x", Value: "1"}, {Key: "y", Value: "2"},
		{Key: "width", Value: "3"}, {Key: "height", Value: "4"},
		{Key: "outline", Value: "true"}, {Key: "fill", Value: "false"},
	}}, gpg.BackendAny)
	require.NoError(t, err)
	assert.Equal(t, [6]float64{1, 2, 3, 4, 1, 0}, backend.lastBox)
}

func TestWriteEllipseCallsBackendWithSpec(t *testing.T) {
	r := newDrawRegistry()
	backend := &recordingBackend{}
	ctx := gpg.NewContext(nil)
	ctx.Backend = backend

	err := r.Dispatch(ctx, gpg.Directive{Name: "write_ellipse", Body: []gpg.KV{
		{Key: "cx", Value: "10"}, {Key: "cy", Value: "20"},
		{Key: "width", Value: "5"}, {Key: "height", Value: "6"},
		{Key: "sangle", Value: "0"}, {Key: "eangle", Value: "90"},
		{Key: "fill", Value: "true"},
	}}, gpg.BackendAny)
	require.NoError(t, err)
	assert.Equal(t, 10.0, backend.lastEllipse.CenterX)
	assert.Equal(t, 90.0, backend.lastEllipse.EndAngle)
	assert.True(t, backend.lastEllipse.DoFill)
}

func TestWriteTextParsesJustifyCenter(t *testing.T) {
	r := newDrawRegistry()
	backend := &recordingBackend{}
	ctx := gpg.NewContext(nil)
	ctx.Backend = backend

	err := r.Dispatch(ctx, gpg.Directive{Name: "write_text", Body: []gpg.KV{
		{Key: "text", Value: "hello"}, {Key: "justify", Value: "center"},
	}}, gpg.BackendAny)
	require.NoError(t, err)
	assert.Equal(t, "hello", backend.lastText.Text)
	assert.Equal(t, gpgback.JustifyCenter, backend.lastText.Justify)
}

func TestWriteSymbolExpandsFileCodeword(t *testing.T) {
	r := newDrawRegistry()
	backend := &recordingBackend{}
	ctx := gpg.NewContext(map[string]string{"home": "/data"})
	ctx.Backend = backend

	err := r.Dispatch(ctx, gpg.Directive{Name: "write_symbol", Body: []gpg.KV{
		{Key: "file", Value: "<home>/sym.ps"},
	}}, gpg.BackendAny)
	require.NoError(t, err)
	assert.Equal(t, "/data/sym.ps", backend.lastSymbol.File)
}

func TestWriteLinesParsesPoints(t *testing.T) {
	r := newDrawRegistry()
	backend := &recordingBackend{}
	ctx := gpg.NewContext(nil)
	ctx.Backend = backend

	err := r.Dispatch(ctx, gpg.Directive{Name: "write_lines", Body: []gpg.KV{
		{Value: "1,2"}, {Value: "3,4"},
	}}, gpg.BackendAny)
	require.NoError(t, err)
	require.Len(t, backend.lastLines, 1)
	assert.Equal(t, []geometry.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}, backend.lastLines[0].Points)
}

func TestWriteLinesBadPointFails(t *testing.T) {
	r := newDrawRegistry()
	backend := &recordingBackend{}
	ctx := gpg.NewContext(nil)
	ctx.Backend = backend

	err := r.Dispatch(ctx, gpg.Directive{Name: "write_lines", Body: []gpg.KV{
		{Value: "not-a-point"},
	}}, gpg.BackendAny)
	require.Error(t, err)
}

func TestWriteBoundariesParsesBoundaryAndHoles(t *testing.T) {
	r := newDrawRegistry()
	backend := &recordingBackend{}
	ctx := gpg.NewContext(nil)
	ctx.Backend = backend

	err := r.Dispatch(ctx, gpg.Directive{Name: "write_boundaries", Body: []gpg.KV{
		{Value: "0,0"}, {Value: "10,0"}, {Value: "10,10"}, {Value: "0,10"},
		{Key: "hole", Value: "2,2;3,2;3,3;2,3"},
	}}, gpg.BackendAny)
	require.NoError(t, err)
	require.Len(t, backend.lastAreas, 1)
	assert.Len(t, backend.lastAreas[0].Boundary.Points, 4)
	require.Len(t, backend.lastAreas[0].Holes, 1)
	assert.Len(t, backend.lastAreas[0].Holes[0].Points, 4)
}

func TestGraphicsSymbolSizeStoresValues(t *testing.T) {
	r := newDrawRegistry()
	backend := &recordingBackend{symbolSize: gpgback.SymbolSize{Width: 10, Height: 20, CenterX: 5, CenterY: 10}}
	ctx := gpg.NewContext(map[string]string{})
	ctx.Backend = backend

	err := r.Dispatch(ctx, gpg.Directive{Name: "graphics_symbol_size", Body: []gpg.KV{
		{Key: "file", Value: "sym.ps"}, {Key: "as", Value: "s1"},
	}}, gpg.BackendAny)
	require.NoError(t, err)
	assert.Equal(t, "10", ctx.Values["s1_width"])
	assert.Equal(t, "20", ctx.Values["s1_height"])
}

func TestDrawDirectivesFailWithoutBackend(t *testing.T) {
	r := newDrawRegistry()
	ctx := gpg.NewContext(nil)

	err := r.Dispatch(ctx, gpg.Directive{Name: "write_box"}, gpg.BackendAny)
	require.Error(t, err)
	assert.ErrorIs(t, err, gpg.ErrNoBackend)
}

func TestWriteOutlineMaskTogglesClip(t *testing.T) {
	r := newDrawRegistry()
	backend := &recordingBackend{}
	ctx := gpg.NewContext(nil)
	ctx.Backend = backend

	err := r.Dispatch(ctx, gpg.Directive{Name: "write_outline_mask", Body: []gpg.KV{
		{Value: "0,0"}, {Value: "1,0"}, {Value: "1,1"}, {Key: "on", Value: "true"},
	}}, gpg.BackendAny)
	require.NoError(t, err)
	assert.True(t, backend.lastMaskOn)
}
