package gpg_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpasys/fpagpgen/internal/gpg"
)

func TestParseDirectivesBuildsBodyEntries(t *testing.T) {
	tokens := gpg.Tokenize("@file_name{dir=<home>; name=out.ps}", nil)

	directives, err := gpg.ParseDirectives(tokens)
	require.NoError(t, err)
	require.Len(t, directives, 1)

	d := directives[0]
	assert.Equal(t, "file_name", d.Name)

	name, ok := d.Get("name")
	require.True(t, ok)
	assert.Equal(t, "out.ps", name)
}

func TestParseDirectivesCollectsBareValues(t *testing.T) {
	tokens := gpg.Tokenize("@process{echo hello world}", nil)

	directives, err := gpg.ParseDirectives(tokens)
	require.NoError(t, err)
	require.Len(t, directives, 1)

	assert.Equal(t, []string{"echo hello world"}, directives[0].Bare())
}

func TestParseDirectivesMissingBraceFails(t *testing.T) {
	tokens := []gpg.Token{{Kind: gpg.TokenDirectiveName, Text: "file_name"}}

	_, err := gpg.ParseDirectives(tokens)
	require.Error(t, err)
	assert.ErrorIs(t, err, gpg.ErrMissingBrace)
}

func TestParseDirectivesUnbalancedBracesFails(t *testing.T) {
	tokens := []gpg.Token{
		{Kind: gpg.TokenDirectiveName, Text: "file_name"},
		{Kind: gpg.TokenBraceOpen, Text: "{"},
		{Kind: gpg.TokenValue, Text: "x"},
	}

	_, err := gpg.ParseDirectives(tokens)
	require.Error(t, err)
	assert.ErrorIs(t, err, gpg.ErrUnbalancedBraces)
}

func TestParseDirectivesMultipleEqualsFails(t *testing.T) {
	tokens := []gpg.Token{
		{Kind: gpg.TokenDirectiveName, Text: "file_name"},
		{Kind: gpg.TokenBraceOpen, Text: "{"},
		{Kind: gpg.TokenValue, Text: "a"},
		{Kind: gpg.TokenEquals, Text: "="},
		{Kind: gpg.TokenValue, Text: "b"},
		{Kind: gpg.TokenEquals, Text: "="},
		{Kind: gpg.TokenValue, Text: "c"},
		{Kind: gpg.TokenBraceClose, Text: "}"},
	}

	_, err := gpg.ParseDirectives(tokens)
	require.Error(t, err)
	assert.ErrorIs(t, err, gpg.ErrMultipleEquals)
}

func TestParseDirectivesKeywordTooLongFails(t *testing.T) {
	longKey := strings.Repeat("k", 300)
	tokens := []gpg.Token{
		{Kind: gpg.TokenDirectiveName, Text: "file_name"},
		{Kind: gpg.TokenBraceOpen, Text: "{"},
		{Kind: gpg.TokenValue, Text: longKey},
		{Kind: gpg.TokenEquals, Text: "="},
		{Kind: gpg.TokenValue, Text: "v"},
		{Kind: gpg.TokenBraceClose, Text: "}"},
	}

	_, err := gpg.ParseDirectives(tokens)
	require.Error(t, err)
	assert.ErrorIs(t, err, gpg.ErrKeywordTooLong)
}

func TestParseDirectivesBodyTooLongFails(t *testing.T) {
	tokens := []gpg.Token{
		{Kind: gpg.TokenDirectiveName, Text: "file_name"},
		{Kind: gpg.TokenBraceOpen, Text: "{"},
	}

	for i := 0; i < 20; i++ {
		tokens = append(tokens,
			gpg.Token{Kind: gpg.TokenValue, Text: strings.Repeat("x", 255)},
			gpg.Token{Kind: gpg.TokenSemicolon, Text: ";"},
		)
	}

	tokens = append(tokens, gpg.Token{Kind: gpg.TokenBraceClose, Text: "}"})

	_, err := gpg.ParseDirectives(tokens)
	require.Error(t, err)
	assert.ErrorIs(t, err, gpg.ErrBodyTooLong)
}
</content>
