package gpgback_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpasys/fpagpgen/internal/gpgback"
)

func TestParseSymbolFileExtractsBBoxAndTag(t *testing.T) {
	lines := []string{
		"PSMet_size[0 20 10 0] PSMet_outline",
		"0 0 moveto 10 20 lineto",
		"showpage",
	}

	sym, err := gpgback.ParseSymbolFile(lines)
	require.NoError(t, err)

	assert.Equal(t, 0.0, sym.XMin)
	assert.Equal(t, 20.0, sym.YMax)
	assert.Equal(t, 10.0, sym.XMax)
	assert.Equal(t, 0.0, sym.YMin)
	assert.Equal(t, gpgback.SymbolTagOutline, sym.Tag)
	assert.Equal(t, []string{"0 0 moveto 10 20 lineto"}, sym.Body)
	assert.InDelta(t, 10.0, sym.Width(), 1e-9)
	assert.InDelta(t, 20.0, sym.Height(), 1e-9)
}

func TestParseSymbolFileDefaultsToBothTag(t *testing.T) {
	sym, err := gpgback.ParseSymbolFile([]string{"PSMet_size[0 1 1 0]", "showpage"})
	require.NoError(t, err)
	assert.Equal(t, gpgback.SymbolTagBoth, sym.Tag)
}

func TestParseSymbolFileEmptyFails(t *testing.T) {
	_, err := gpgback.ParseSymbolFile(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, gpgback.ErrSymbolFileEmpty)
}

func TestParseSymbolFileSVGExtractsBBoxFromViewBox(t *testing.T) {
	lines := []string{
		`viewBox="0 0 10 20" PSMet_fill`,
		`<circle cx="5" cy="10" r="5"/>`,
		"</svg>",
	}

	sym, err := gpgback.ParseSymbolFileSVG(lines)
	require.NoError(t, err)

	assert.Equal(t, gpgback.SymbolTagFill, sym.Tag)
	assert.InDelta(t, 10.0, sym.Width(), 1e-9)
	assert.InDelta(t, 20.0, sym.Height(), 1e-9)
	assert.Equal(t, []string{`<circle cx="5" cy="10" r="5"/>`}, sym.Body)
}

func TestSubstitutePresentationSkipsForNoneTag(t *testing.T) {
	body := []string{"1 0 0 setrgbcolor"}

	out := gpgback.SubstitutePresentation(body, gpgback.SymbolTagNone, func(line string) string {
		return "SUBSTITUTED"
	})

	assert.Equal(t, body, out)
}

func TestSubstitutePresentationAppliesForBothTag(t *testing.T) {
	body := []string{"1 0 0 setrgbcolor"}

	out := gpgback.SubstitutePresentation(body, gpgback.SymbolTagBoth, func(line string) string {
		return "SUBSTITUTED"
	})

	assert.Equal(t, []string{"SUBSTITUTED"}, out)
}
</content>
