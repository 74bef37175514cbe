package gpg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fpasys/fpagpgen/internal/gpg"
)

func TestContextPresentationStackPushPop(t *testing.T) {
	ctx := gpg.NewContext(nil)

	assert.Nil(t, ctx.CurrentPresentation())

	ctx.PushPresentation(gpg.PresentationState{"color": "red"})
	ctx.PushPresentation(gpg.PresentationState{"color": "blue"})

	assert.Equal(t, "blue", ctx.CurrentPresentation()["color"])

	top := ctx.PopPresentation()
	assert.Equal(t, "blue", top["color"])
	assert.Equal(t, "red", ctx.CurrentPresentation()["color"])
}

func TestContextPopPresentationEmptyReturnsNil(t *testing.T) {
	ctx := gpg.NewContext(nil)

	assert.Nil(t, ctx.PopPresentation())
}

func TestContextWarnAccumulates(t *testing.T) {
	ctx := gpg.NewContext(nil)

	ctx.Warn(gpg.ErrUnknownCodeword)
	ctx.Warn(gpg.ErrCodewordNotAllowed)

	assert.Len(t, ctx.Warnings, 2)
}

func TestNewContextInitializesGroupTable(t *testing.T) {
	ctx := gpg.NewContext(map[string]string{"home": "/data"})

	assert.NotNil(t, ctx.Groups)
	assert.Equal(t, "/data", ctx.Values["home"])
}
</content>
