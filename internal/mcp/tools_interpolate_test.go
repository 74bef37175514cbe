package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func squarePolygon(side float64) []Point2D {
	return []Point2D{{0, 0}, {side, 0}, {side, side}, {0, side}}
}

func TestHandleInterpolateProducesFrames(t *testing.T) {
	t.Parallel()

	input := InterpolateInput{
		KeyTimes:   []float64{0, 10},
		Keyframes:  [][]Point2D{squarePolygon(10), squarePolygon(20)},
		TweenTimes: []float64{0, 5, 10},
	}

	result, output, err := handleInterpolate(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	out, ok := output.Data.(InterpolateOutput)
	require.True(t, ok)
	assert.NotEmpty(t, out.Frames)

	for _, frame := range out.Frames {
		assert.GreaterOrEqual(t, len(frame.Polygon), 3)
	}
}

func TestHandleInterpolateTooFewKeyframesFails(t *testing.T) {
	t.Parallel()

	input := InterpolateInput{
		KeyTimes:   []float64{0},
		Keyframes:  [][]Point2D{squarePolygon(10)},
		TweenTimes: []float64{0},
	}

	result, _, err := handleInterpolate(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleInterpolateNonIncreasingKeyTimesFails(t *testing.T) {
	t.Parallel()

	input := InterpolateInput{
		KeyTimes:   []float64{10, 0},
		Keyframes:  [][]Point2D{squarePolygon(10), squarePolygon(20)},
		TweenTimes: []float64{0, 5, 10},
	}

	result, _, err := handleInterpolate(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleInterpolateDegenerateKeyframeFails(t *testing.T) {
	t.Parallel()

	input := InterpolateInput{
		KeyTimes:   []float64{0, 10},
		Keyframes:  [][]Point2D{{{0, 0}, {1, 1}}, squarePolygon(20)},
		TweenTimes: []float64{0, 5, 10},
	}

	result, _, err := handleInterpolate(context.Background(), &mcpsdk.CallToolRequest{}, input)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
