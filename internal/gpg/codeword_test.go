package gpg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fpasys/fpagpgen/internal/gpg"
)

func TestExpandCodewordsReplacesKnownValues(t *testing.T) {
	out, errs := gpg.ExpandCodewords("<home>/out.ps", map[string]string{"home": "/data"}, gpg.ClassFile)

	assert.Empty(t, errs)
	assert.Equal(t, "/data/out.ps", out)
}

func TestExpandCodewordsUnknownCodewordWarns(t *testing.T) {
	out, errs := gpg.ExpandCodewords("<bogus>", map[string]string{}, gpg.ClassAll)

	assert.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], gpg.ErrUnknownCodeword)
	assert.Equal(t, "<bogus>", out)
}

func TestExpandCodewordsDisallowedClassWarns(t *testing.T) {
	out, errs := gpg.ExpandCodewords("<iteration>", map[string]string{"iteration": "3"}, gpg.AllowFileCodewordsOnly)

	assert.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], gpg.ErrCodewordNotAllowed)
	assert.Equal(t, "<iteration>", out)
}

func TestExpandCodewordsMissingValueWarns(t *testing.T) {
	out, errs := gpg.ExpandCodewords("<home>", map[string]string{}, gpg.ClassFile)

	assert.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], gpg.ErrUnknownCodeword)
	assert.Equal(t, "<home>", out)
}

func TestExpandCodewordsPassesThroughPlainText(t *testing.T) {
	out, errs := gpg.ExpandCodewords("plain/path.ps", nil, gpg.ClassAll)

	assert.Empty(t, errs)
	assert.Equal(t, "plain/path.ps", out)
}
</content>
