package gpgback

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// SymbolTag selects which parts of a symbol file's presentation the host
// back end's current colour/line-width substitute, per spec.md §4.9
// "a PSMet_both|PSMet_outline|PSMet_fill tag on the first line selects
// colour/line-width substitutions using the current presentation", plus the
// original's supplemented fourth tag (SPEC_FULL.md §C.4): PSMet_none
// suppresses all substitution, emitting the symbol literally.
type SymbolTag int

// Symbol substitution tags.
const (
	SymbolTagBoth SymbolTag = iota
	SymbolTagOutline
	SymbolTagFill
	SymbolTagNone
)

// ErrSymbolFileEmpty is returned when a symbol file has no header line.
var ErrSymbolFileEmpty = errors.New("gpgback: symbol file is empty")

// ErrSymbolScale is returned by WriteSymbol/GraphicsSymbolSize when the
// requested scale is non-positive, mirroring the original's
// "Problem with symbol scale" warning.
var ErrSymbolScale = errors.New("gpgback: invalid symbol scale")

// ErrSymbolPresentationMismatch is a non-fatal condition: the symbol file's
// tag calls for a colour (outline and/or fill) the current presentation
// doesn't supply, or PSMet_both's outline and fill disagree. The original
// reports this with warn_report and continues drawing the symbol body
// without substituting colour; callers should do the same via ctx.Warn
// rather than treating it as fatal.
var ErrSymbolPresentationMismatch = errors.New("gpgback: symbol presentation mismatch")

// SymbolFile is a parsed symbol library file: its declared bounding box,
// its substitution tag, and its body lines with the header and trailing
// showpage/</svg> terminator already stripped, per spec.md §4.9 "Symbol
// file. First line contains either PSMet_size[xmin ymax xmax ymin] or SVG
// viewBox; ... showpage/</svg> at EOF is stripped."
type SymbolFile struct {
	XMin, YMax, XMax, YMin float64
	Tag                    SymbolTag
	Body                   []string
}

// Width reports the symbol's declared width.
func (s SymbolFile) Width() float64 { return s.XMax - s.XMin }

// Height reports the symbol's declared height.
func (s SymbolFile) Height() float64 { return s.YMax - s.YMin }

// CenterX reports the symbol's declared horizontal center.
func (s SymbolFile) CenterX() float64 { return (s.XMin + s.XMax) / 2 }

// CenterY reports the symbol's declared vertical center.
func (s SymbolFile) CenterY() float64 { return (s.YMin + s.YMax) / 2 }

// ParseSymbolFile parses a PS-style symbol file: a PSMet_size header
// (optionally followed by a substitution tag), body lines, and a stripped
// trailing showpage.
func ParseSymbolFile(lines []string) (SymbolFile, error) {
	if len(lines) == 0 {
		return SymbolFile{}, ErrSymbolFileEmpty
	}

	bbox, tag, err := parsePSMetSizeHeader(lines[0])
	if err != nil {
		return SymbolFile{}, err
	}

	body := lines[1:]
	if len(body) > 0 && strings.TrimSpace(body[len(body)-1]) == "showpage" {
		body = body[:len(body)-1]
	}

	return SymbolFile{XMin: bbox[0], YMax: bbox[1], XMax: bbox[2], YMin: bbox[3], Tag: tag, Body: body}, nil
}

// ParseSymbolFileSVG parses an SVG-style symbol file: a viewBox header,
// body lines, and a stripped trailing </svg>.
func ParseSymbolFileSVG(lines []string) (SymbolFile, error) {
	if len(lines) == 0 {
		return SymbolFile{}, ErrSymbolFileEmpty
	}

	bbox, tag, err := parseViewBoxHeader(lines[0])
	if err != nil {
		return SymbolFile{}, err
	}

	body := lines[1:]
	if len(body) > 0 && strings.TrimSpace(body[len(body)-1]) == "</svg>" {
		body = body[:len(body)-1]
	}

	return SymbolFile{XMin: bbox[0], YMax: bbox[1], XMax: bbox[2], YMin: bbox[3], Tag: tag, Body: body}, nil
}

func parsePSMetSizeHeader(line string) ([4]float64, SymbolTag, error) {
	const prefix = "PSMet_size["

	idx := strings.Index(line, prefix)
	if idx < 0 {
		return [4]float64{}, SymbolTagBoth, fmt.Errorf("gpgback: symbol header missing %s", prefix)
	}

	end := strings.Index(line[idx:], "]")
	if end < 0 {
		return [4]float64{}, SymbolTagBoth, fmt.Errorf("gpgback: unterminated %s", prefix)
	}

	fields := strings.Fields(line[idx+len(prefix) : idx+end])
	if len(fields) != 4 {
		return [4]float64{}, SymbolTagBoth, fmt.Errorf("gpgback: %s expects 4 values, got %d", prefix, len(fields))
	}

	var bbox [4]float64

	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return [4]float64{}, SymbolTagBoth, fmt.Errorf("gpgback: symbol bbox value %q: %w", f, err)
		}

		bbox[i] = v
	}

	return bbox, parseTag(line[idx+end+1:]), nil
}

func parseViewBoxHeader(line string) ([4]float64, SymbolTag, error) {
	const prefix = "viewBox=\""

	idx := strings.Index(line, prefix)
	if idx < 0 {
		return [4]float64{}, SymbolTagBoth, fmt.Errorf("gpgback: symbol header missing %s", prefix)
	}

	rest := line[idx+len(prefix):]

	end := strings.Index(rest, "\"")
	if end < 0 {
		return [4]float64{}, SymbolTagBoth, fmt.Errorf("gpgback: unterminated %s", prefix)
	}

	fields := strings.Fields(rest[:end])
	if len(fields) != 4 {
		return [4]float64{}, SymbolTagBoth, fmt.Errorf("gpgback: %s expects 4 values, got %d", prefix, len(fields))
	}

	var minX, minY, width, height float64

	values := make([]float64, 4)

	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return [4]float64{}, SymbolTagBoth, fmt.Errorf("gpgback: viewBox value %q: %w", f, err)
		}

		values[i] = v
	}

	minX, minY, width, height = values[0], values[1], values[2], values[3]

	// viewBox is (minX, minY, width, height) with Y growing downward;
	// normalize to the PSMet bbox convention (xmin, ymax, xmax, ymin).
	bbox := [4]float64{minX, minY + height, minX + width, minY}

	return bbox, parseTag(rest[end+1:]), nil
}

// ReadSymbolFile opens path, reads it whole, and hands its lines to parse
// (ParseSymbolFile for PSMet-style headers, ParseSymbolFileSVG for SVG
// viewBox headers). The file is opened read-only and closed before this
// returns, matching the original's "open, read first line, close" resource
// discipline for symbol library files (spec.md §5).
func ReadSymbolFile(path string, parse func([]string) (SymbolFile, error)) (SymbolFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // symbol file path is operator-configured, consistent with internal/gpg's @include handling
	if err != nil {
		return SymbolFile{}, fmt.Errorf("gpgback: cannot open symbol file ... %s: %w", path, err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")

	sym, err := parse(lines)
	if err != nil {
		return SymbolFile{}, err
	}

	return sym, nil
}

// SymbolPresentationLines computes the colour/line-width/dash operators a
// symbol file's tag implies for the current presentation, mirroring
// original_source/sapp/fpagpgen/gra_io.c's write_*_symbol preamble: a
// PSMet_both symbol requires outline and fill to agree; PSMet_outline
// requires an outline colour; PSMet_fill requires a fill colour; PSMet_none
// emits nothing. emit is called once per resulting operator with a kind
// ("colour", "width", "dash", "fill") and its value; the caller formats the
// operator in its own back end's syntax. Returns ErrSymbolPresentationMismatch
// (non-fatal) when the tag's required colour is unset or, for PSMet_both,
// when outline and fill disagree; the caller should still emit the symbol
// body, just without colour substitution.
func SymbolPresentationLines(tag SymbolTag, pres Presentation, scale float64, emit func(kind, value string)) error {
	outline := pres["outline"]
	fill := pres["fill"]

	switch tag {
	case SymbolTagNone:
		return nil

	case SymbolTagBoth:
		if outline != fill {
			return fmt.Errorf("%w: outline %q and fill %q disagree for PSMet_both", ErrSymbolPresentationMismatch, outline, fill)
		}

		if outline == "" || outline == ColourNone {
			return fmt.Errorf("%w: outline and fill unset for PSMet_both", ErrSymbolPresentationMismatch)
		}

		emit("colour", outline)
		emitLineWidth(pres, scale, emit)
		emitDash(pres, emit)

		return nil

	case SymbolTagOutline:
		if outline == "" || outline == ColourNone {
			return fmt.Errorf("%w: outline unset for PSMet_outline", ErrSymbolPresentationMismatch)
		}

		emit("colour", outline)
		emitLineWidth(pres, scale, emit)
		emitDash(pres, emit)

		return nil

	case SymbolTagFill:
		if fill == "" || fill == ColourNone {
			return fmt.Errorf("%w: fill unset for PSMet_fill", ErrSymbolPresentationMismatch)
		}

		emit("fill", fill)

		return nil

	default:
		return nil
	}
}

func emitLineWidth(pres Presentation, scale float64, emit func(kind, value string)) {
	width := pres["line_width"]
	if width == "" {
		return
	}

	lw, err := strconv.ParseFloat(width, 64)
	if err != nil {
		return
	}

	if scale != 0 {
		lw /= scale
	}

	emit("width", strconv.FormatFloat(lw, 'g', -1, 64))
}

func emitDash(pres Presentation, emit func(kind, value string)) {
	if style := pres["line_style"]; style != "" {
		emit("dash", style)
	}
}

func parseTag(rest string) SymbolTag {
	switch {
	case strings.Contains(rest, "PSMet_outline"):
		return SymbolTagOutline
	case strings.Contains(rest, "PSMet_fill"):
		return SymbolTagFill
	case strings.Contains(rest, "PSMet_none"):
		return SymbolTagNone
	default:
		return SymbolTagBoth
	}
}

// SubstitutePresentation rewrites a symbol body's colour/line-width
// operators to the current presentation, per spec.md §4.9. substitute is
// called once per body line and returns the line unchanged when it isn't a
// colour/line-width operator recognized by the caller's back end.
func SubstitutePresentation(body []string, tag SymbolTag, substitute func(line string) string) []string {
	if tag == SymbolTagNone {
		out := make([]string, len(body))
		copy(out, body)

		return out
	}

	out := make([]string, len(body))
	for i, line := range body {
		out[i] = substitute(line)
	}

	return out
}
</content>
