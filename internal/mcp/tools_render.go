package mcp

import (
	"bytes"
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fpasys/fpagpgen/internal/gpg"
	"github.com/fpasys/fpagpgen/internal/gpgback"
)

// defaultPageWidth/defaultPageHeight fill RenderInput.Width/Height when the
// caller leaves them at zero, matching a US-Letter page in points.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// texGridScale converts a PS/SVG/CMF-style page size into a TexMet
// character grid, one column/row per 10 units — TexMet has no native
// notion of page units, only a fixed character grid (internal/gpgback's
// NewTexMet).
const texGridScale = 10.0

// handleRender implements the fpagpgen_render MCP tool: run an fpdf
// directive source through the full control+draw directive registry
// against the requested back end, with its output captured into an
// in-memory buffer instead of a file, per the teacher's handleAnalyze
// pattern of building a fresh parser/engine per call
// (_examples/Sumatoshi-tech-codefang/internal/mcp/tools_analyze.go).
func handleRender(_ context.Context, _ *mcpsdk.CallToolRequest, in RenderInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := validateRenderInput(in); err != nil {
		return errorResult(err)
	}

	width := in.Width
	if width == 0 {
		width = defaultPageWidth
	}

	height := in.Height
	if height == 0 {
		height = defaultPageHeight
	}

	var buf bytes.Buffer

	backend, tex, kind, err := newBackendFor(in.Backend, &buf, width, height)
	if err != nil {
		return errorResult(err)
	}

	values := map[string]string{}
	if in.HomeDir != "" {
		values["home"] = in.HomeDir
	}

	ctx := gpg.NewContext(values)
	ctx.Backend = backend

	if progType, ok := gpg.ProgramTypeForBackend(in.Backend); ok {
		ctx.ProgramType = progType
	}

	registry := gpg.NewRegistry()
	gpg.RegisterControlDirectives(registry)
	gpg.RegisterDrawDirectives(registry)

	engine := gpg.NewEngine(registry, kind)

	if err := engine.Run(ctx, in.Source); err != nil {
		return errorResult(fmt.Errorf("render: %w", err))
	}

	warnings := make([]string, len(ctx.Warnings))
	for i, w := range ctx.Warnings {
		warnings[i] = w.Error()
	}

	output := buf.String()
	if tex != nil {
		output = tex.Dump()
	}

	return jsonResult(RenderOutput{Output: output, Warnings: warnings})
}

// newBackendFor builds the concrete gpgback.GraphicsBackend named by
// backend, writing to out, sized per width/height. It also returns the
// concrete *gpgback.TexMet when backend == "tex" (non-nil only then),
// since TexMet's rendered output lives in its in-memory character grid
// rather than being streamed to out as the other three back ends are.
func newBackendFor(backend string, out *bytes.Buffer, width, height float64) (gpgback.GraphicsBackend, *gpgback.TexMet, gpg.BackendKind, error) {
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
