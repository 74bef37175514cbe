package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fpasys/fpagpgen/internal/arealink"
	"github.com/fpasys/fpagpgen/internal/geometry"
	"github.com/fpasys/fpagpgen/internal/interp"
	"github.com/fpasys/fpagpgen/internal/linkchain"
)

// singleKeyframe implements linkchain.KeyframeSet over one fixed boundary
// line, ignoring area/member/index (the tool only ever models area 0's
// single boundary chain).
type singleKeyframe struct {
	line geometry.Line
}

func (k singleKeyframe) Line(_ int, _ linkchain.MemberType, _ int) (geometry.Line, bool) {
	return k.line, true
}

// handleInterpolate implements the fpagpgen_interpolate MCP tool: build a
// single-chain, single-area interp.Input from the JSON-friendly keyframe
// polygons and run interp.Run against it, per SPEC_FULL.md's
// supplemented MCP convenience layer (see tools.go's InterpolateInput doc
// comment for the scope this intentionally narrows).
func handleInterpolate(_ context.Context, _ *mcpsdk.CallToolRequest, in InterpolateInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := validateInterpolateInput(in); err != nil {
		return errorResult(err)
	}

	keys := make([]linkchain.KeyframeSet, len(in.Keyframes))
	nodes := make([]linkchain.Node, len(in.Keyframes))

	for i, polygon := range in.Keyframes {
		keys[i] = singleKeyframe{line: geometry.NewLine(toPoints(polygon), true)}
		nodes[i] = linkchain.Node{Present: true, IArea: 0, MType: linkchain.MemberBound, IMem: 0}
	}

	chain := &linkchain.Chain{ID: 1, Nodes: nodes}

	areaOf := func(_ *arealink.ALink, _ int) (int, bool) { return 0, true }

	req := interp.Input{
		Chains:     []*linkchain.Chain{chain},
		Keys:       keys,
		KeyTimes:   in.KeyTimes,
		TweenTimes: in.TweenTimes,
		AreaOf:     areaOf,
		Reporter:   interp.NopReporter{},
	}

	outputs, err := interp.Run(req)
	if err != nil {
		return errorResult(err)
	}

	// No divides or holes are modeled at this narrowed scope, so assembly
	// only ever produces one subarea per frame equal to the chain's own
	// reconstructed boundary — but it still runs through interp.AssembleFrames
	// rather than reading outputs[0].Boundaries directly, so this tool
	// exercises the same area-assembly path as `fpagpgen interpolate`.
	assembled, err := interp.AssembleFrames(outputs, req, nil)
	if err != nil {
		return errorResult(err)
	}

	frames := make([]InterpolatedFrame, 0, len(assembled))

	for _, fa := range assembled {
		frames = append(frames, InterpolatedFrame{
			Time:    in.TweenTimes[fa.TweenIndex],
			Polygon: toPoint2Ds(fa.Area.Boundary),
		})
	}

	return jsonResult(InterpolateOutput{Frames: frames})
}

func toPoints(in []Point2D) []geometry.Point {
	out := make([]geometry.Point, len(in))
	for i, p := range in {
		out[i] = geometry.Point{X: p[0], Y: p[1]}
	}

	return out
}

func toPoint2Ds(line geometry.Line) []Point2D {
	out := make([]Point2D, len(line.Points))
	for i, p := range line.Points {
		out[i] = Point2D{p.X, p.Y}
	}

	return out
}
