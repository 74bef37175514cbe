package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpasys/fpagpgen/internal/config"
)

func TestValidateSetupDocumentAcceptsValidDocument(t *testing.T) {
	t.Parallel()

	doc := map[string]any{
		"setup": map[string]any{
			"home":  "/data/fpa",
			"psout": "/data/fpa/ps",
		},
	}

	err := config.ValidateSetupDocument(doc)
	require.NoError(t, err)
}

func TestValidateSetupDocumentRejectsMissingHome(t *testing.T) {
	t.Parallel()

	doc := map[string]any{
		"setup": map[string]any{
			"psout": "/data/fpa/ps",
		},
	}

	err := config.ValidateSetupDocument(doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrSetupDocumentInvalid)
}

func TestValidateSetupJSONDecodesAndValidates(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"setup": {"home": "/data/fpa"}}`)

	err := config.ValidateSetupJSON(raw)
	require.NoError(t, err)
}

func TestValidateSetupJSONRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	err := config.ValidateSetupJSON([]byte(`{not json`))
	require.Error(t, err)
}
