package gpg_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpasys/fpagpgen/internal/gpg"
)

func newTestRegistry() *gpg.Registry {
	r := gpg.NewRegistry()
	gpg.RegisterControlDirectives(r)

	return r
}

func TestHandleFileNameOpensAndClosesOutput(t *testing.T) {
	dir := t.TempDir()
	r := newTestRegistry()
	ctx := gpg.NewContext(map[string]string{"home": dir})

	err := r.Dispatch(ctx, gpg.Directive{Name: "file_name", Body: []gpg.KV{
		{Key: "dir", Value: "<home>"},
		{Key: "name", Value: "out.ps"},
	}}, gpg.BackendAny)
	require.NoError(t, err)
	require.NotNil(t, ctx.CurrentOutput)

	err = r.Dispatch(ctx, gpg.Directive{Name: "file_close"}, gpg.BackendAny)
	require.NoError(t, err)
	assert.Nil(t, ctx.CurrentOutput)

	_, statErr := os.Stat(filepath.Join(dir, "out.ps"))
	assert.NoError(t, statErr)
}

func TestHandleFileNameClosesPreviousOutput(t *testing.T) {
	dir := t.TempDir()
	r := newTestRegistry()
	ctx := gpg.NewContext(map[string]string{"home": dir})

	require.NoError(t, r.Dispatch(ctx, gpg.Directive{Name: "file_name", Body: []gpg.KV{
		{Key: "dir", Value: "<home>"}, {Key: "name", Value: "a.ps"},
	}}, gpg.BackendAny))

	first := ctx.CurrentOutput

	require.NoError(t, r.Dispatch(ctx, gpg.Directive{Name: "file_name", Body: []gpg.KV{
		{Key: "dir", Value: "<home>"}, {Key: "name", Value: "b.ps"},
	}}, gpg.BackendAny))

	assert.NotSame(t, first, ctx.CurrentOutput)

	_, err := os.Stat(filepath.Join(dir, "a.ps"))
	assert.NoError(t, err)
}

func TestHandleGroupDefinesGroup(t *testing.T) {
	r := newTestRegistry()
	ctx := gpg.NewContext(nil)

	err := r.Dispatch(ctx, gpg.Directive{Name: "group", Body: []gpg.KV{
		{Key: "group_name", Value: "g1"},
		{Key: "label", Value: "x"},
	}}, gpg.BackendAny)
	require.NoError(t, err)

	g, ok := ctx.Groups.Lookup("g1")
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, g.Keywords["label"])
}

func TestHandleLoopBeginAndEnd(t *testing.T) {
	r := newTestRegistry()
	ctx := gpg.NewContext(nil)

	err := r.Dispatch(ctx, gpg.Directive{Name: "loop_begin", Body: []gpg.KV{
		{Key: "iterations", Value: "2"},
	}}, gpg.BackendAny)
	require.NoError(t, err)
	require.Equal(t, 1, ctx.Loops.Depth())

	require.NoError(t, r.Dispatch(ctx, gpg.Directive{Name: "loop_end"}, gpg.BackendAny))
	assert.Equal(t, 1, ctx.Loops.Depth())

	require.NoError(t, r.Dispatch(ctx, gpg.Directive{Name: "loop_end"}, gpg.BackendAny))
	assert.Equal(t, 0, ctx.Loops.Depth())
}

func TestHandleLoopLocationLookUpBuildsTable(t *testing.T) {
	r := newTestRegistry()
	ctx := gpg.NewContext(nil)

	err := r.Dispatch(ctx, gpg.Directive{Name: "loop_location_look_up", Body: []gpg.KV{
		{Key: "name", Value: "stops"},
		{Key: "time", Value: "0"},
		{Key: "label", Value: "start"},
		{Key: "interval", Value: "5"},
		{Key: "time", Value: "10"},
		{Key: "label", Value: "end"},
		{Key: "interval", Value: "8"},
	}}, gpg.BackendAny)
	require.NoError(t, err)

	require.NotNil(t, ctx.Lookups)

	table, ok := ctx.Lookups["stops"]
	require.True(t, ok)
	require.Len(t, table.Entries, 2)
	assert.Equal(t, "start", table.Entries[0].Label)
	assert.Equal(t, "end", table.Entries[1].Label)
}

func TestHandleLoopLocationLookUpMissingNameFails(t *testing.T) {
	r := newTestRegistry()
	ctx := gpg.NewContext(nil)

	err := r.Dispatch(ctx, gpg.Directive{Name: "loop_location_look_up"}, gpg.BackendAny)
	require.Error(t, err)
}

func TestHandleValueLookUpBuildsTableWithoutUnitConversion(t *testing.T) {
	r := newTestRegistry()
	ctx := gpg.NewContext(nil)

	err := r.Dispatch(ctx, gpg.Directive{Name: "value_look_up", Body: []gpg.KV{
		{Key: "name", Value: "vhour"},
		{Key: "time", Value: "0"},
		{Key: "label", Value: "00z"},
		{Key: "interval", Value: "6"},
	}}, gpg.BackendAny)
	require.NoError(t, err)

	table, ok := ctx.Lookups["vhour"]
	require.True(t, ok)
	assert.Equal(t, gpg.LookupValue, table.Kind)
	require.Len(t, table.Entries, 1)
	assert.Equal(t, 6.0, table.Entries[0].IntervalKM)
}
</content>
