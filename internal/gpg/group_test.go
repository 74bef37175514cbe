package gpg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpasys/fpagpgen/internal/gpg"
)

func TestGroupTableDefineAndLookup(t *testing.T) {
	table := gpg.NewGroupTable()

	_, err := table.Define(gpg.Directive{Name: "group", Body: []gpg.KV{
		{Key: "group_name", Value: "colors"},
		{Key: "label", Value: "red"},
	}})
	require.NoError(t, err)

	g, ok := table.Lookup("colors")
	require.True(t, ok)
	assert.Equal(t, []string{"red"}, g.Keywords["label"])
}

func TestGroupTableDefineExtendsPerIterationList(t *testing.T) {
	table := gpg.NewGroupTable()

	_, err := table.Define(gpg.Directive{Name: "group", Body: []gpg.KV{
		{Key: "group_name", Value: "colors"},
		{Key: "label", Value: "red"},
	}})
	require.NoError(t, err)

	_, err = table.Define(gpg.Directive{Name: "group", Body: []gpg.KV{
		{Key: "group_name", Value: "colors"},
		{Key: "label", Value: "blue"},
	}})
	require.NoError(t, err)

	g, ok := table.Lookup("colors")
	require.True(t, ok)
	assert.Equal(t, []string{"red", "blue"}, g.Keywords["label"])
}

func TestGroupTableDefineMissingNameFails(t *testing.T) {
	table := gpg.NewGroupTable()

	_, err := table.Define(gpg.Directive{Name: "group", Body: []gpg.KV{{Key: "label", Value: "red"}}})
	require.Error(t, err)
}

func TestGroupExpansionUsesMostRecentValue(t *testing.T) {
	g := &gpg.Group{Name: "colors", Keywords: map[string][]string{"label": {"red", "blue"}}}

	assert.Equal(t, "label=blue", g.Expansion())
}

func TestMarshalUnmarshalGroupTableRoundTrips(t *testing.T) {
	table := gpg.NewGroupTable()

	_, err := table.Define(gpg.Directive{Name: "group", Body: []gpg.KV{
		{Key: "group_name", Value: "colors"},
		{Key: "label", Value: "red"},
	}})
	require.NoError(t, err)

	data, err := gpg.MarshalGroupTable(table)
	require.NoError(t, err)

	restored, err := gpg.UnmarshalGroupTable(data)
	require.NoError(t, err)

	g, ok := restored.Lookup("colors")
	require.True(t, ok)
	assert.Equal(t, []string{"red"}, g.Keywords["label"])
}
</content>
