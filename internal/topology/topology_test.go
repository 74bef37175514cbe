package topology_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpasys/fpagpgen/internal/geometry"
	"github.com/fpasys/fpagpgen/internal/topology"
)

func square(offset float64) geometry.Line {
	return geometry.NewLine([]geometry.Point{
		{X: 0 + offset, Y: 0}, {X: 10 + offset, Y: 0}, {X: 10 + offset, Y: 10}, {X: 0 + offset, Y: 10},
	}, true)
}

func TestReconstructLineBranches(t *testing.T) {
	t.Parallel()

	var warnings []string
	warn := func(format string, args ...any) { warnings = append(warnings, format) }

	_, ok := topology.ReconstructLine(nil, warn)
	assert.False(t, ok)
	assert.Len(t, warnings, 1)

	line, ok := topology.ReconstructLine([]geometry.Line{square(0)}, warn)
	assert.True(t, ok)
	assert.Equal(t, 4, line.Len())

	warnings = nil
	_, ok = topology.ReconstructLine([]geometry.Line{square(0), square(5)}, warn)
	assert.True(t, ok)
	assert.Len(t, warnings, 1)
}

func TestOrientBoundaryReversesWhenMismatched(t *testing.T) {
	t.Parallel()

	ccw := square(0)
	require.False(t, ccw.Clockwise())

	oriented := topology.OrientBoundary(ccw, true)
	assert.True(t, oriented.Clockwise())

	unchanged := topology.OrientBoundary(ccw, false)
	assert.Equal(t, ccw.Points, unchanged.Points)
}

func TestInsertHolesSkipsOutside(t *testing.T) {
	t.Parallel()

	area := geometry.Area{Boundary: square(0)}
	inside := geometry.NewLine([]geometry.Point{{X: 4, Y: 4}, {X: 6, Y: 4}, {X: 6, Y: 6}, {X: 4, Y: 6}}, true)
	outside := geometry.NewLine([]geometry.Point{{X: 40, Y: 40}, {X: 60, Y: 40}, {X: 60, Y: 60}, {X: 40, Y: 60}}, true)

	var warnings int
	topology.InsertHoles(&area, []geometry.Line{inside, outside}, func(string, ...any) { warnings++ })

	assert.Len(t, area.Holes, 1)
	assert.Equal(t, 1, warnings)
}

func TestReplicateLabelsZeroOffsetInsideWindow(t *testing.T) {
	t.Parallel()

	spots := []topology.Spot{{SourceSubarea: 0, Pos: geometry.Point{X: 5, Y: 5}}}

	out := topology.ReplicateLabels(spots, square(0), square(20), true)
	assert.Equal(t, geometry.Point{X: 5, Y: 5}, out[0].Pos)
}

func TestReplicateLabelsShiftsOutsideWindow(t *testing.T) {
	t.Parallel()

	spots := []topology.Spot{{SourceSubarea: 0, Pos: geometry.Point{X: 5, Y: 5}}}

	out := topology.ReplicateLabels(spots, square(0), square(20), false)
	assert.InDelta(t, 25, out[0].Pos.X, 1e-9)
	assert.InDelta(t, 5, out[0].Pos.Y, 1e-9)
}

func TestInsertDividesSplitsAndResetsDefault(t *testing.T) {
	t.Parallel()

	area := geometry.Area{
		Boundary: square(0),
		Subareas: []geometry.Subarea{{Attrs: geometry.Attrs{Label: "base"}}},
		Subids:   []int{0},
	}

	divl := geometry.NewLine([]geometry.Point{{X: 0, Y: 5}, {X: 10, Y: 5}}, false)

	err := topology.InsertDivides(&area, []topology.DivideSpec{
		{Which: 0, Line: divl, Left: geometry.Attrs{Label: "left"}, Right: geometry.Attrs{Label: "right"}},
	}, nil)

	require.NoError(t, err)
	require.Len(t, area.Subareas, 2)
	assert.Equal(t, "left", area.Subareas[0].Attrs.Label)
	assert.Equal(t, "right", area.Subareas[1].Attrs.Label)
	assert.Equal(t, "left", area.Default.Label)
}

func TestInsertDividesRestampsOnFailure(t *testing.T) {
	t.Parallel()

	area := geometry.Area{
		Boundary: square(0),
		Subareas: []geometry.Subarea{{Attrs: geometry.Attrs{Label: "base"}}},
		Subids:   []int{0},
	}

	var warnings int
	err := topology.InsertDivides(&area, []topology.DivideSpec{
		{Which: 0, Line: geometry.Line{}, Left: geometry.Attrs{Label: "left"}, Right: geometry.Attrs{Label: "right"}},
	}, func(string, ...any) { warnings++ })

	require.NoError(t, err)
	require.Len(t, area.Subareas, 1)
	assert.Equal(t, "left", area.Subareas[0].Attrs.Label)
	assert.Equal(t, 1, warnings)
}

func TestReorderAreasMatchesNearestKey(t *testing.T) {
	t.Parallel()

	frameAreas := []int{30, 10, 20, 99}
	nearestKeyOrder := []int{10, 20, 30}

	out := topology.ReorderAreas(frameAreas, func(id int) int { return id }, nearestKeyOrder)
	assert.Equal(t, []int{10, 20, 30, 99}, out)
}
