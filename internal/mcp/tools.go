package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool name constants.
const (
	ToolNameRender      = "fpagpgen_render"
	ToolNameInterpolate = "fpagpgen_interpolate"
)

// Input size limits.
const (
	// MaxSourceInputBytes is the maximum allowed size for inline fpdf
	// source input (1 MB).
	MaxSourceInputBytes = 1 << 20
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptySource indicates the source parameter is empty.
	ErrEmptySource = errors.New("source parameter is required and must not be empty")
	// ErrSourceTooLarge indicates the source input exceeds the size limit.
	ErrSourceTooLarge = errors.New("source input exceeds maximum size")
	// ErrUnknownBackend indicates the backend parameter names no supported back end.
	ErrUnknownBackend = errors.New("backend must be one of ps, svg, cmf, tex")
	// ErrTooFewKeyframes indicates fewer than two keyframes were supplied.
	ErrTooFewKeyframes = errors.New("at least two keyframes are required")
	// ErrKeyframeMismatch indicates key_times and keyframes have different lengths.
	ErrKeyframeMismatch = errors.New("key_times and keyframes must have the same length")
	// ErrEmptyTweenTimes indicates tween_times was empty.
	ErrEmptyTweenTimes = errors.New("tween_times must not be empty")
	// ErrDegenerateKeyframe indicates a keyframe polygon had fewer than 3 points.
	ErrDegenerateKeyframe = errors.New("every keyframe polygon needs at least 3 points")
	// ErrKeyTimesNotIncreasing indicates key_times isn't strictly increasing.
	ErrKeyTimesNotIncreasing = errors.New("key_times must be strictly increasing")
)

// Point2D is one [x, y] coordinate pair in an MCP tool's JSON input/output.
type Point2D [2]float64

// RenderInput is the input schema for the fpagpgen_render tool.
type RenderInput struct {
	Source  string  `json:"source"             jsonschema:"fpdf directive source text to render"`
	Backend string  `json:"backend"            jsonschema:"target back end: ps, svg, cmf, or tex"`
	Width   float64 `json:"width,omitempty"    jsonschema:"page width in the back end's native units (default 612)"`
	Height  float64 `json:"height,omitempty"   jsonschema:"page height in the back end's native units (default 792)"`
	HomeDir string  `json:"home_dir,omitempty" jsonschema:"value substituted for the <home> codeword"`
}

// RenderOutput is the result of the fpagpgen_render tool.
type RenderOutput struct {
	Output   string   `json:"output"`
	Warnings []string `json:"warnings,omitempty"`
}

// InterpolateInput is the input schema for the fpagpgen_interpolate tool.
// It models a single closed boundary across its keyframes — a deliberately
// scoped-down convenience wrapper around internal/interp's full
// arbitrary-topology link-chain pipeline (which needs member-typed nodes,
// merge/split area references, and common-node sharing that a JSON schema
// can't express conveniently).
type InterpolateInput struct {
	KeyTimes   []float64   `json:"key_times"   jsonschema:"strictly increasing keyframe times, aligned with keyframes"`
	Keyframes  [][]Point2D `json:"keyframes"   jsonschema:"one closed polygon (ordered [x,y] pairs) per keyframe"`
	TweenTimes []float64   `json:"tween_times" jsonschema:"target times to interpolate boundaries at"`
}

// InterpolateOutput is the result of the fpagpgen_interpolate tool.
type InterpolateOutput struct {
	Frames []InterpolatedFrame `json:"frames"`
}

// InterpolatedFrame is one tween-frame boundary in an InterpolateOutput.
type InterpolatedFrame struct {
	Time    float64   `json:"time"`
	Polygon []Point2D `json:"polygon"`
}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// validateRenderInput checks RenderInput's constraints.
func validateRenderInput(in RenderInput) error {
	if in.Source == "" {
		return ErrEmptySource
	}

	if len(in.Source) > MaxSourceInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrSourceTooLarge, len(in.Source), MaxSourceInputBytes)
	}

	switch in.Backend {
	case "ps", "svg", "cmf", "tex":
	default:
		return fmt.Errorf("%w: got %q", ErrUnknownBackend, in.Backend)
	}

	return nil
}

// validateInterpolateInput checks InterpolateInput's constraints.
func validateInterpolateInput(in InterpolateInput) error {
	if len(in.KeyTimes) < 2 {
		return ErrTooFewKeyframes
	}

	if len(in.KeyTimes) != len(in.Keyframes) {
		return ErrKeyframeMismatch
	}

	if len(in.TweenTimes) == 0 {
		return ErrEmptyTweenTimes
	}

	for i := 1; i < len(in.KeyTimes); i++ {
		if in.KeyTimes[i] <= in.KeyTimes[i-1] {
			return fmt.Errorf("%w: entry %d (%.3f) <= entry %d (%.3f)",
				ErrKeyTimesNotIncreasing, i, in.KeyTimes[i], i-1, in.KeyTimes[i-1])
		}
	}

	for i, kf := range in.Keyframes {
		if len(kf) < 3 {
			return fmt.Errorf("%w: keyframe %d has %d points", ErrDegenerateKeyframe, i, len(kf))
		}
	}

	return nil
}
