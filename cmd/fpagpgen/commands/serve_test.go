package commands

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpasys/fpagpgen/internal/config"
)

func TestNewServeCommand_Shape(t *testing.T) {
	t.Parallel()

	cmd := NewServeCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "serve", cmd.Use)
}

func TestPrometheusHandler_ServesMetrics(t *testing.T) {
	t.Parallel()

	handler, err := prometheusHandler()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleHealthz(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handleHealthz(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStatusWriter_TracksCode(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec, status: http.StatusOK}

	sw.WriteHeader(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, sw.status)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenderOne_SVG(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}

	resp, err := renderOne(cfg, renderRequest{
		Source:  "@version { svgmet_1.1 }\n@initialize_display{}\n@write_comment{text=hi}\n@close_file{}\n",
		Backend: "svg",
	}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Output)
}

func TestRenderOne_UnknownBackend(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}

	_, err := renderOne(cfg, renderRequest{Source: "@close_file{}\n", Backend: "bogus"}, nil)
	require.Error(t, err)
}

func TestHandleRenderHTTP_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	handler := handleRenderHTTP(cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/render", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
