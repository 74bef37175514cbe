package tween_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpasys/fpagpgen/internal/geometry"
	"github.com/fpasys/fpagpgen/internal/linkchain"
	"github.com/fpasys/fpagpgen/internal/tween"
)

func TestQuasiLinearInterpolatesBetweenKeys(t *testing.T) {
	t.Parallel()

	keyTimes := []float64{0, 10}
	values := []float64{0, 100}
	tweenTimes := []float64{0, 2.5, 5, 10}

	out := tween.QuasiLinear(keyTimes, values, tweenTimes)

	require.Len(t, out, 4)
	assert.InDelta(t, 0, out[0], 1e-9)
	assert.InDelta(t, 25, out[1], 1e-9)
	assert.InDelta(t, 50, out[2], 1e-9)
	assert.InDelta(t, 100, out[3], 1e-9)
}

func TestQuasiLinearClampsOutsideRange(t *testing.T) {
	t.Parallel()

	out := tween.QuasiLinear([]float64{5, 15}, []float64{1, 2}, []float64{0, 20})
	assert.InDelta(t, 1, out[0], 1e-9)
	assert.InDelta(t, 2, out[1], 1e-9)
}

func TestChainProducesOneFramePerTweenTime(t *testing.T) {
	t.Parallel()

	keyTimes := []float64{0, 10}
	samples := [][]geometry.Point{
		{{X: 0, Y: 0}, {X: 10, Y: 0}},
		{{X: 0, Y: 5}, {X: 10, Y: 5}},
	}
	tweenTimes := []float64{0, 5, 10}

	frames := tween.Chain(keyTimes, samples, tweenTimes, true)

	require.Len(t, frames.Frames, 3)

	for _, f := range frames.Frames {
		assert.Equal(t, 2, f.Len())
		assert.True(t, f.Closed)
	}

	assert.InDelta(t, 5, frames.Frames[1].Points[0].X, 1e-9)
}

func TestApplySplitOffsetsWeightsAcrossSegment(t *testing.T) {
	t.Parallel()

	frames := tween.ChainFrames{Frames: []geometry.Line{
		{Points: []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}}},
	}}

	frames.ApplySplitOffsets(map[float64]int{1: 0}, []tween.SplitOffset{
		{TweenTime: 1, SegmentStart: 0, SegmentEnd: 4, DX: 4, DY: 0},
	})

	assert.InDelta(t, 0, frames.Frames[0].Points[0].X, 1e-9)
	assert.InDelta(t, 1+1, frames.Frames[0].Points[1].X, 1e-9)
	assert.InDelta(t, 2+2, frames.Frames[0].Points[2].X, 1e-9)
	assert.InDelta(t, 3+3, frames.Frames[0].Points[3].X, 1e-9)
}

func TestAugmentWithControlNodesInsertsTimeKnot(t *testing.T) {
	t.Parallel()

	keyTimes := []float64{0, 10}
	samples := [][]geometry.Point{{{X: 0, Y: 0}, {X: 10, Y: 10}}}
	nodes := []linkchain.ControlNode{{Tween: 5, Pos: geometry.Point{X: 4, Y: 6}}}

	augTimes, augSamples := tween.AugmentWithControlNodes(keyTimes, samples, nodes)

	require.Len(t, augTimes, 3)
	assert.Equal(t, 5.0, augTimes[1])
	assert.Equal(t, geometry.Point{X: 4, Y: 6}, augSamples[0][1])
}
