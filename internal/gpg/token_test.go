package gpg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpasys/fpagpgen/internal/gpg"
)

func TestTokenizeStripsCommentsAndSplitsDirective(t *testing.T) {
	src := "@file_name{dir=<home>; name=out.ps} ! trailing comment\n@file_close{}"

	tokens := gpg.Tokenize(src, nil)

	require.NotEmpty(t, tokens)
	assert.Equal(t, gpg.TokenDirectiveName, tokens[0].Kind)
	assert.Equal(t, "file_name", tokens[0].Text)

	var names []string

	for _, tok := range tokens {
		if tok.Kind == gpg.TokenDirectiveName {
			names = append(names, tok.Text)
		}
	}

	assert.Equal(t, []string{"file_name", "file_close"}, names)
}

func TestTokenizeJoinsLineContinuations(t *testing.T) {
	src := "@process{echo \\\nfoo}"

	tokens := gpg.Tokenize(src, nil)

	var values []string

	for _, tok := range tokens {
		if tok.Kind == gpg.TokenValue {
			values = append(values, tok.Text)
		}
	}

	require.Len(t, values, 1)
	assert.Equal(t, "echo foo", values[0])
}

func TestTokenizeResolvesEscapesAndUnquotes(t *testing.T) {
	src := `@group{group_name=g1; label="a\;b"}`

	tokens := gpg.Tokenize(src, nil)

	var found bool

	for _, tok := range tokens {
		if tok.Kind == gpg.TokenValue && tok.Text == "a;b" {
			found = true
		}
	}

	assert.True(t, found, "expected an unescaped 'a;b' value token, got %+v", tokens)
}

func TestTokenizeSplicesGroupReferences(t *testing.T) {
	src := "@process{<mygroup>}"

	groups := func(name string) (string, bool) {
		if name == "mygroup" {
			return "echo spliced", true
		}

		return "", false
	}

	tokens := gpg.Tokenize(src, groups)

	var values []string

	for _, tok := range tokens {
		if tok.Kind == gpg.TokenValue {
			values = append(values, tok.Text)
		}
	}

	require.Len(t, values, 2)
	assert.Equal(t, []string{"echo", "spliced"}, values)
}
</content>
