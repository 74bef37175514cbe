package gpg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fpasys/fpagpgen/internal/geometry"
	"github.com/fpasys/fpagpgen/internal/gpgback"
)

// ErrNoBackend is returned by a drawing directive when ctx.Backend is nil.
var ErrNoBackend = fmt.Errorf("gpg: no graphics backend bound to context")

// RegisterDrawDirectives adds every drawing directive spec.md §4.9 names
// (write_box, write_ellipse, write_underline, write_text, write_symbol,
// write_group, write_lines, write_outlines, write_features) to r. Each
// handler parses its directive body into the matching gpgback parameter
// struct and calls through ctx.Backend, never branching on back-end kind
// itself — that's entirely gpgback's concern.
func RegisterDrawDirectives(r *Registry) {
	r.MustRegister(Descriptor{Name: "write_comment", Handler: handleWriteComment})
	r.MustRegister(Descriptor{Name: "write_group", Handler: handleWriteGroup})
	r.MustRegister(Descriptor{Name: "write_box", Handler: handleWriteBox})
	r.MustRegister(Descriptor{Name: "write_ellipse", Handler: handleWriteEllipse})
	r.MustRegister(Descriptor{Name: "write_underline", Handler: handleWriteUnderline})
	r.MustRegister(Descriptor{Name: "write_text", Handler: handleWriteText})
	r.MustRegister(Descriptor{Name: "write_symbol", Handler: handleWriteSymbol})
	r.MustRegister(Descriptor{Name: "write_lines", Handler: handleWriteLines})
	r.MustRegister(Descriptor{Name: "write_outlines", Handler: handleWriteOutlines})
	r.MustRegister(Descriptor{Name: "write_features", Handler: handleWriteFeatures})
	r.MustRegister(Descriptor{Name: "write_boundaries", Handler: handleWriteBoundaries})
	r.MustRegister(Descriptor{Name: "write_bitmap", Handler: handleWriteBitmap})
	r.MustRegister(Descriptor{Name: "write_image", Handler: handleWriteImage})
	r.MustRegister(Descriptor{Name: "write_outline_mask", Handler: handleWriteOutlineMask})
	r.MustRegister(Descriptor{Name: "write_boundary_mask", Handler: handleWriteBoundaryMask})
	r.MustRegister(Descriptor{Name: "graphics_symbol_size", Handler: handleGraphicsSymbolSize})
	r.MustRegister(Descriptor{Name: "initialize_display", Handler: handleInitializeDisplay})
	r.MustRegister(Descriptor{Name: "initialize_size", Handler: handleInitializeSize})
	r.MustRegister(Descriptor{Name: "close_file", Handler: handleCloseFile})
}

func floatArg(d Directive, key string, def float64) (float64, error) {
	raw, ok := d.Get(key)
	if !ok {
		return def, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("gpg: %s=%q: %w", key, raw, err)
	}

	return v, nil
}

func boolArg(d Directive, key string) bool {
	raw, ok := d.Get(key)

	return ok && (raw == "true" || raw == "1" || raw == "yes")
}

func handleWriteComment(ctx *Context, d Directive) error {
	if ctx.Backend == nil {
		return ErrNoBackend
	}

	bare := d.Bare()
	if len(bare) == 0 {
		return nil
	}

	if err := ctx.Backend.WriteComment(bare[0]); err != nil {
		return fmt.Errorf("gpg: @write_comment: %w", err)
	}

	return nil
}

func handleWriteGroup(ctx *Context, d Directive) error {
	if ctx.Backend == nil {
		return ErrNoBackend
	}

	action, _ := d.Get("action")

	attrs := make(map[string]string)

	for _, kv := range d.Body {
		if kv.Key != "" && kv.Key != "action" {
			attrs[kv.Key] = kv.Value
		}
	}

	if err := ctx.Backend.WriteGroup(action == "start", attrs); err != nil {
		return fmt.Errorf("gpg: @write_group: %w", err)
	}

	return nil
}

func handleWriteBox(ctx *Context, d Directive) error {
	if ctx.Backend == nil {
		return ErrNoBackend
	}

	x, err := floatArg(d, "x", 0)
	if err != nil {
		return err
	}

	y, err := floatArg(d, "y", 0)
	if err != nil {
		return err
	}

	width, err := floatArg(d, "width", 0)
	if err != nil {
		return err
	}

	height, err := floatArg(d, "height", 0)
	if err != nil {
		return err
	}

	if err := ctx.Backend.WriteBox(x, y, width, height, boolArg(d, "outline"), boolArg(d, "fill")); err != nil {
		return fmt.Errorf("gpg: @write_box: %w", err)
	}

	return nil
}

func handleWriteEllipse(ctx *Context, d Directive) error {
	if ctx.Backend == nil {
		return ErrNoBackend
	}

	spec := gpgback.EllipseSpec{Closed: boolArg(d, "closed"), DoOutline: boolArg(d, "outline"), DoFill: boolArg(d, "fill")}

	var err error

	if spec.CenterX, err = floatArg(d, "cx", 0); err != nil {
		return err
	}

	if spec.CenterY, err = floatArg(d, "cy", 0); err != nil {
		return err
	}

	if spec.Width, err = floatArg(d, "width", 0); err != nil {
		return err
	}

	if spec.Height, err = floatArg(d, "height", 0); err != nil {
		return err
	}

	if spec.StartAngle, err = floatArg(d, "sangle", 0); err != nil {
		return err
	}

	if spec.EndAngle, err = floatArg(d, "eangle", 0); err != nil {
		return err
	}

	if spec.Rotation, err = floatArg(d, "rotation", 0); err != nil {
		return err
	}

	if err := ctx.Backend.WriteEllipse(spec); err != nil {
		return fmt.Errorf("gpg: @write_ellipse: %w", err)
	}

	return nil
}

func handleWriteUnderline(ctx *Context, d Directive) error {
	if ctx.Backend == nil {
		return ErrNoBackend
	}

	x1, err := floatArg(d, "x1", 0)
	if err != nil {
		return err
	}

	y1, err := floatArg(d, "y1", 0)
	if err != nil {
		return err
	}

	x2, err := floatArg(d, "x2", 0)
	if err != nil {
		return err
	}

	y2, err := floatArg(d, "y2", 0)
	if err != nil {
		return err
	}

	if err := ctx.Backend.WriteUnderline(x1, y1, x2, y2); err != nil {
		return fmt.Errorf("gpg: @write_underline: %w", err)
	}

	return nil
}

func handleWriteText(ctx *Context, d Directive) error {
	if ctx.Backend == nil {
		return ErrNoBackend
	}

	text, _ := d.Get("text")

	spec := gpgback.TextSpec{Text: text, DoOutline: boolArg(d, "outline")}

	switch justify, _ := d.Get("justify"); justify {
	case "center":
		spec.Justify = gpgback.JustifyCenter
	case "right":
		spec.Justify = gpgback.JustifyRight
	default:
		spec.Justify = gpgback.JustifyLeft
	}

	var err error

	if spec.X, err = floatArg(d, "x", 0); err != nil {
		return err
	}

	if spec.Y, err = floatArg(d, "y", 0); err != nil {
		return err
	}

	if spec.Size, err = floatArg(d, "size", 10); err != nil {
		return err
	}

	if spec.Rotation, err = floatArg(d, "rotation", 0); err != nil {
		return err
	}

	if err := ctx.Backend.WriteText(spec); err != nil {
		return fmt.Errorf("gpg: @write_text: %w", err)
	}

	return nil
}

func handleWriteSymbol(ctx *Context, d Directive) error {
	if ctx.Backend == nil {
		return ErrNoBackend
	}

	file, _ := d.Get("file")
	file, errs := ExpandCodewords(file, ctx.Values, ClassFile)

	for _, e := range errs {
		ctx.Warn(e)
	}

	spec := gpgback.SymbolSpec{File: file, Presentation: ctx.CurrentPresentation()}

	var err error

	if spec.X, err = floatArg(d, "x", 0); err != nil {
		return err
	}

	if spec.Y, err = floatArg(d, "y", 0); err != nil {
		return err
	}

	if spec.Scale, err = floatArg(d, "scale", 100); err != nil {
		return err
	}

	if spec.Rotation, err = floatArg(d, "rotation", 0); err != nil {
		return err
	}

	if err := ctx.Backend.WriteSymbol(spec); err != nil {
		// A presentation mismatch (colour unset, or outline/fill disagreeing)
		// is non-fatal: the original warns and continues, still having drawn
		// the symbol body without colour substitution.
		if errors.Is(err, gpgback.ErrSymbolPresentationMismatch) {
			ctx.Warn(fmt.Errorf("gpg: @write_symbol: %w", err))

			return nil
		}

		return fmt.Errorf("gpg: @write_symbol: %w", err)
	}

	return nil
}

func handleWriteLines(ctx *Context, d Directive) error {
	if ctx.Backend == nil {
		return ErrNoBackend
	}

	line, err := parsePointLine(d)
	if err != nil {
		return err
	}

	if err := ctx.Backend.WriteLines([]geometry.Line{line}); err != nil {
		return fmt.Errorf("gpg: @write_lines: %w", err)
	}

	return nil
}

func handleWriteOutlines(ctx *Context, d Directive) error {
	if ctx.Backend == nil {
		return ErrNoBackend
	}

	line, err := parsePointLine(d)
	if err != nil {
		return err
	}

	if err := ctx.Backend.WriteOutlines([]geometry.Line{line}, boolArg(d, "outline"), boolArg(d, "fill")); err != nil {
		return fmt.Errorf("gpg: @write_outlines: %w", err)
	}

	return nil
}

func handleWriteFeatures(ctx *Context, d Directive) error {
	if ctx.Backend == nil {
		return ErrNoBackend
	}

	line, err := parsePointLine(d)
	if err != nil {
		return err
	}

	if err := ctx.Backend.WriteFeatures([]geometry.Line{line}, boolArg(d, "outline"), boolArg(d, "fill")); err != nil {
		return fmt.Errorf("gpg: @write_features: %w", err)
	}

	return nil
}

// parsePointLine reads a directive's bare "x,y" body entries into one
// geometry.Line, honoring an optional closed=true entry.
func parsePointLine(d Directive) (geometry.Line, error) {
	points, err := parsePoints(d.Bare())
	if err != nil {
		return geometry.Line{}, err
	}

	return geometry.NewLine(points, boolArg(d, "closed")), nil
}

func parsePoints(raws []string) ([]geometry.Point, error) {
	var points []geometry.Point

	for _, raw := range raws {
		parts := strings.SplitN(raw, ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("gpg: expected \"x,y\" point, got %q", raw)
		}

		x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("gpg: point x %q: %w", parts[0], err)
		}

		y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("gpg: point y %q: %w", parts[1], err)
		}

		points = append(points, geometry.Point{X: x, Y: y})
	}

	return points, nil
}

// parseArea builds a geometry.Area from a directive's bare body entries
// (the boundary, as "x,y" points) plus one or more "hole" entries, each a
// semicolon-separated list of "x,y" points forming one interior hole.
func parseArea(d Directive) (geometry.Area, error) {
	boundaryPoints, err := parsePoints(d.Bare())
	if err != nil {
		return geometry.Area{}, err
	}

	area := geometry.Area{Boundary: geometry.NewLine(boundaryPoints, true)}

	for _, kv := range d.Body {
		if kv.Key != "hole" {
			continue
		}

		holePoints, err := parsePoints(strings.Split(kv.Value, ";"))
		if err != nil {
			return geometry.Area{}, fmt.Errorf("gpg: hole: %w", err)
		}

		area.Holes = append(area.Holes, geometry.NewLine(holePoints, true))
	}

	return area, nil
}

func handleWriteBoundaries(ctx *Context, d Directive) error {
	if ctx.Backend == nil {
		return ErrNoBackend
	}

	area, err := parseArea(d)
	if err != nil {
		return err
	}

	if err := ctx.Backend.WriteBoundaries([]geometry.Area{area}, boolArg(d, "outline"), boolArg(d, "fill")); err != nil {
		return fmt.Errorf("gpg: @write_boundaries: %w", err)
	}

	return nil
}

func handleWriteBitmap(ctx *Context, d Directive) error {
	if ctx.Backend == nil {
		return ErrNoBackend
	}

	return writeRasterImage(ctx, d, ctx.Backend.WriteBitmap, "write_bitmap")
}

func handleWriteImage(ctx *Context, d Directive) error {
	if ctx.Backend == nil {
		return ErrNoBackend
	}

	return writeRasterImage(ctx, d, ctx.Backend.WriteImage, "write_image")
}

func writeRasterImage(ctx *Context, d Directive, write func(file string, x, y, width, height float64) error, name string) error {
	file, _ := d.Get("file")
	file, errs := ExpandCodewords(file, ctx.Values, ClassFile)

	for _, e := range errs {
		ctx.Warn(e)
	}

	x, err := floatArg(d, "x", 0)
	if err != nil {
		return err
	}

	y, err := floatArg(d, "y", 0)
	if err != nil {
		return err
	}

	width, err := floatArg(d, "width", 0)
	if err != nil {
		return err
	}

	height, err := floatArg(d, "height", 0)
	if err != nil {
		return err
	}

	if err := write(file, x, y, width, height); err != nil {
		return fmt.Errorf("gpg: @%s: %w", name, err)
	}

	return nil
}

func handleWriteOutlineMask(ctx *Context, d Directive) error {
	if ctx.Backend == nil {
		return ErrNoBackend
	}

	line, err := parsePointLine(d)
	if err != nil {
		return err
	}

	if err := ctx.Backend.WriteOutlineMask(line, boolArg(d, "on")); err != nil {
		return fmt.Errorf("gpg: @write_outline_mask: %w", err)
	}

	return nil
}

func handleWriteBoundaryMask(ctx *Context, d Directive) error {
	if ctx.Backend == nil {
		return ErrNoBackend
	}

	area, err := parseArea(d)
	if err != nil {
		return err
	}

	if err := ctx.Backend.WriteBoundaryMask(area, boolArg(d, "on")); err != nil {
		return fmt.Errorf("gpg: @write_boundary_mask: %w", err)
	}

	return nil
}

// handleGraphicsSymbolSize queries a symbol file's bounding box and stores
// width/height/cx/cy into ctx.Values under the "as" key prefix, so a
// subsequent directive's codeword expansion can read them back.
func handleGraphicsSymbolSize(ctx *Context, d Directive) error {
	if ctx.Backend == nil {
		return ErrNoBackend
	}

	file, _ := d.Get("file")
	file, errs := ExpandCodewords(file, ctx.Values, ClassFile)

	for _, e := range errs {
		ctx.Warn(e)
	}

	scale, err := floatArg(d, "scale", 100)
	if err != nil {
		return err
	}

	size, err := ctx.Backend.GraphicsSymbolSize(file, scale)
	if err != nil {
		return fmt.Errorf("gpg: @graphics_symbol_size: %w", err)
	}

	as, _ := d.Get("as")
	if as == "" {
		as = "symbol"
	}

	if ctx.Values == nil {
		ctx.Values = make(map[string]string)
	}

	ctx.Values[as+"_width"] = strconv.FormatFloat(size.Width, 'g', -1, 64)
	ctx.Values[as+"_height"] = strconv.FormatFloat(size.Height, 'g', -1, 64)
	ctx.Values[as+"_cx"] = strconv.FormatFloat(size.CenterX, 'g', -1, 64)
	ctx.Values[as+"_cy"] = strconv.FormatFloat(size.CenterY, 'g', -1, 64)

	return nil
}

func handleInitializeDisplay(ctx *Context, d Directive) error {
	if ctx.Backend == nil {
		return ErrNoBackend
	}

	if err := ctx.Backend.InitializeDisplay(); err != nil {
		return fmt.Errorf("gpg: @initialize_display: %w", err)
	}

	return nil
}

func handleInitializeSize(ctx *Context, d Directive) error {
	if ctx.Backend == nil {
		return ErrNoBackend
	}

	width, err := floatArg(d, "width", 0)
	if err != nil {
		return err
	}

	height, err := floatArg(d, "height", 0)
	if err != nil {
		return err
	}

	if err := ctx.Backend.InitializeSize(width, height); err != nil {
		return fmt.Errorf("gpg: @initialize_size: %w", err)
	}

	return nil
}

func handleCloseFile(ctx *Context, _ Directive) error {
	if ctx.Backend == nil {
		return ErrNoBackend
	}

	if err := ctx.Backend.CloseFile(); err != nil {
		return fmt.Errorf("gpg: @close_file: %w", err)
	}

	return nil
}
</content>
