// Package commands implements the fpagpgen CLI's subcommand tree: render and
// interpolate the two cores directly, mcp/serve expose them as long-running
// services, and validate/diff/plot/inspect round out the operator-facing
// tooling SPEC_FULL.md's ambient stack calls for.
package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fpasys/fpagpgen/internal/gpg"
	"github.com/fpasys/fpagpgen/internal/gpgback"
	"github.com/fpasys/fpagpgen/internal/gpgerr"
)

// ErrUnknownBackend is returned when a --backend flag names no supported
// back end.
var ErrUnknownBackend = errors.New("backend must be one of ps, svg, cmf, tex")

// texGridScale converts a PS/SVG/CMF-style page size into a TexMet
// character grid, one column/row per 10 units — TexMet has no native
// notion of page units, only a fixed character grid.
const texGridScale = 10.0

// defaultPageWidth/defaultPageHeight fill in a back end's page size when a
// command leaves --width/--height at zero, matching a US-Letter page in
// points.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// ProgramTypeFor returns the ProgramType for a --backend flag value, per
// spec.md §6's "Program identity is the basename of argv[0]" — the CLI
// substitutes an explicit flag for the four back ends' traditional
// separate binary names (psmet, svgmet, cormet, texmet).
func ProgramTypeFor(backend string) (gpg.ProgramType, error) {
	p, ok := gpg.ProgramTypeForBackend(backend)
	if !ok {
		return "", fmt.Errorf("%w: got %q", ErrUnknownBackend, backend)
	}

	return p, nil
}

// NewBackendFor builds the concrete gpgback.GraphicsBackend named by
// backend, writing to out, sized per width/height. It also returns the
// concrete *gpgback.TexMet when backend == "tex" (non-nil only then),
// since TexMet's rendered output lives in its in-memory character grid
// rather than being streamed to out as the other three back ends are.
func NewBackendFor(backend string, out io.Writer, width, height float64) (gpgback.GraphicsBackend, *gpgback.TexMet, gpg.BackendKind, error) {
	switch backend {
	case "ps":
		return gpgback.NewPostScript(out), nil, gpg.BackendPS, nil
	case "svg":
		return gpgback.NewSVG(out), nil, gpg.BackendSVG, nil
	case "cmf":
		return gpgback.NewCorelMetafile(out), nil, gpg.BackendCMF, nil
	case "tex":
		nx := int(width / texGridScale)
		if nx < 1 {
			nx = 1
		}

		ny := int(height / texGridScale)
		if ny < 1 {
			ny = 1
		}

		tex := gpgback.NewTexMet(nx, ny, nil)

		return tex, tex, gpg.BackendTex, nil
	default:
		return nil, nil, "", fmt.Errorf("%w: got %q", ErrUnknownBackend, backend)
	}
}

// ResolvePageSize fills width/height with the US-Letter default when left
// at zero.
func ResolvePageSize(width, height float64) (float64, float64) {
	if width == 0 {
		width = defaultPageWidth
	}

	if height == 0 {
		height = defaultPageHeight
	}

	return width, height
}

// openOutput opens path for writing, or returns os.Stdout wrapped so the
// caller's defer Close is always safe to call, when path is "" or "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}

	f, err := os.Create(path) //nolint:gosec // operator-specified output path
	if err != nil {
		return nil, fmt.Errorf("create output %s: %w", path, err)
	}

	return f, nil
}

// readSource reads fpdf directive source from path, or from stdin when
// path is "" or "-".
func readSource(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return "", fmt.Errorf("read source from stdin: %w", err)
		}

		return string(data), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // operator-specified source path
	if err != nil {
		return "", fmt.Errorf("read source %s: %w", path, err)
	}

	return string(data), nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// cmdStderr returns the stream CLI commands report warnings/fatals to.
func cmdStderr() io.Writer { return os.Stderr }

// asWarning reports whether err is a *gpgerr.Warning, setting *target when
// it is.
func asWarning(err error, target **gpgerr.Warning) bool {
	return errors.As(err, target)
}
