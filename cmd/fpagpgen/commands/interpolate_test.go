package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpasys/fpagpgen/internal/checkpoint"
)

func TestNewInterpolateCommand_Shape(t *testing.T) {
	t.Parallel()

	cmd := NewInterpolateCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "interpolate", cmd.Use)
}

func TestValidateInterpolateRequest(t *testing.T) {
	t.Parallel()

	err := validateInterpolateRequest(interpolateRequest{KeyTimes: []float64{0}})
	require.ErrorIs(t, err, ErrTooFewKeyframes)

	err = validateInterpolateRequest(interpolateRequest{
		KeyTimes:  []float64{0, 1},
		Keyframes: [][]point2D{{{0, 0}}},
	})
	require.ErrorIs(t, err, ErrKeyframeMismatch)

	err = validateInterpolateRequest(interpolateRequest{
		KeyTimes:  []float64{0, 1},
		Keyframes: [][]point2D{{{0, 0}}, {{1, 1}}},
	})
	require.NoError(t, err)
}

func TestRunInterpolation_Square(t *testing.T) {
	t.Parallel()

	square := []point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	expanded := []point2D{{0, 0}, {20, 0}, {20, 20}, {0, 20}}

	req := interpolateRequest{
		KeyTimes:   []float64{0, 10},
		Keyframes:  [][]point2D{square, expanded},
		TweenTimes: []float64{0, 5, 10},
	}

	resp, err := runInterpolation(req, nil)
	require.NoError(t, err)
	require.Len(t, resp.Frames, 3)
	assert.InDelta(t, 0.0, resp.Frames[0].Time, 1e-9)
	assert.InDelta(t, 10.0, resp.Frames[2].Time, 1e-9)
}

func TestRunInterpolation_DivideProducesSubareasAndLabel(t *testing.T) {
	t.Parallel()

	triangle := []point2D{{10, 10}, {90, 10}, {50, 90}}
	divide := []point2D{{50, 10}, {50, 90}}

	req := interpolateRequest{
		KeyTimes:   []float64{0, 10},
		Keyframes:  [][]point2D{triangle, triangle},
		TweenTimes: []float64{0, 5, 10},
		Divides: []divideSpec{{
			KeyLines: [][]point2D{divide, divide},
			Left:     attrsSpec{Category: "type", Value: "CLD"},
			Right:    attrsSpec{Category: "type", Value: "CLR"},
		}},
		Spots: []spotRequest{{Category: "type", Value: "H", X: 30, Y: 30}},
	}

	resp, err := runInterpolation(req, nil)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Frames)

	for _, frame := range resp.Frames {
		require.NotEmpty(t, frame.Polygon)
		require.Len(t, frame.Subareas, 2)

		values := []string{frame.Subareas[0].Attrs.Value, frame.Subareas[1].Attrs.Value}
		assert.ElementsMatch(t, []string{"CLD", "CLR"}, values)
	}
}

func TestRunInterpolate_CheckpointClearedOnSuccess(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := dir + "/req.json"
	output := dir + "/resp.json"
	configPath := dir + "/config.yaml"
	cpDir := dir + "/checkpoints"

	writeTestFile(t, input, `{
		"key_times": [0, 10],
		"keyframes": [[[0,0],[10,0],[10,10],[0,10]], [[0,0],[20,0],[20,20],[0,20]]],
		"tween_times": [0, 5, 10]
	}`)
	writeTestFile(t, configPath, "checkpoint:\n  dir: "+cpDir+"\n")

	err := runInterpolate(input, output, configPath, true, false)
	require.NoError(t, err)

	mgr := checkpoint.NewManager(cpDir, checkpoint.SourceHash(input))
	assert.False(t, mgr.Exists(), "checkpoint should be cleared after a successful run")

	raw, readErr := readSource(output)
	require.NoError(t, readErr)
	assert.NotEmpty(t, raw)
}

func TestRunInterpolate_ResumeReportsPriorProgress(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := dir + "/req.json"
	configPath := dir + "/config.yaml"
	cpDir := dir + "/checkpoints"

	writeTestFile(t, input, `{
		"key_times": [0, 10],
		"keyframes": [[[0,0],[10,0],[10,10],[0,10]], [[0,0],[20,0],[20,20],[0,20]]],
		"tween_times": [0, 5, 10]
	}`)
	writeTestFile(t, configPath, "checkpoint:\n  dir: "+cpDir+"\n  resume: true\n")

	mgr := checkpoint.NewManager(cpDir, checkpoint.SourceHash(input))
	require.NoError(t, mgr.Save(nil, checkpoint.RunState{
		TotalChains:     1,
		ProcessedChains: 1,
	}, input, interpolateStageNames))

	err := runInterpolate(input, dir+"/resp.json", configPath, false, true)
	require.NoError(t, err)

	assert.False(t, mgr.Exists(), "completed run should clear the resumed checkpoint")
}

func TestWriteInterpolateResponse_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	output := dir + "/resp.json"

	resp := interpolateResponse{Frames: []interpolatedFrame{{Time: 0, Polygon: []point2D{{1, 2}}}}}
	require.NoError(t, writeInterpolateResponse(output, resp))

	raw, err := readSource(output)
	require.NoError(t, err)

	var decoded interpolateResponse

	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, resp, decoded)
}
