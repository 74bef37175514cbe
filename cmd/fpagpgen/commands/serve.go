package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/fpasys/fpagpgen/internal/cache"
	"github.com/fpasys/fpagpgen/internal/config"
	"github.com/fpasys/fpagpgen/internal/gpg"
	"github.com/fpasys/fpagpgen/internal/observability"
	"github.com/fpasys/fpagpgen/pkg/version"
)

// NewServeCommand builds the `fpagpgen serve` command: an HTTP "render on
// demand" mode exposing POST /render alongside a Prometheus /metrics scrape
// endpoint, per SPEC_FULL.md's AppMode distinction (internal/observability.
// ModeServe) and its domain-stack row for
// go.opentelemetry.io/otel/exporters/prometheus.
func NewServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an HTTP render-on-demand server with a /metrics endpoint",
		Long: `Serve starts an HTTP server exposing:
  POST /render  - render an fpdf source against a back end, same request
                  shape as the fpagpgen_render MCP tool
  GET  /metrics - Prometheus scrape endpoint backed by its own exporter and
                  registry; the /render RED metrics are recorded through
                  the observability meter and are not served here
  GET  /healthz - liveness probe`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			return runServe(cobraCmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "setup config file path (default search path)")

	return cmd
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = observability.ModeServe
	obsCfg.LogJSON = true

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	metricsHandler, err := prometheusHandler()
	if err != nil {
		return fmt.Errorf("build prometheus handler: %w", err)
	}

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("build RED metrics: %w", err)
	}

	var resourceCache *cache.ResourceCache
	if cfg.Cache.Enabled {
		resourceCache = cache.NewResourceCache(cfg.Cache.ResourceCacheBytes())

		if cfg.Cache.Compress && cfg.Cache.Directory != "" {
			spill, spillErr := cache.NewSpillDir(cfg.Cache.Directory)
			if spillErr != nil {
				return fmt.Errorf("build cache spill dir: %w", spillErr)
			}

			resourceCache.SetSpillDir(spill)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealthz)
	mux.Handle("/metrics", metricsHandler)
	mux.Handle("/render", observability.HTTPMiddleware(providers.Tracer, providers.Logger,
		withREDMetrics(red, handleRenderHTTP(cfg, resourceCache))))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           mux,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErrCh := make(chan error, 1)

	go func() {
		providers.Logger.Info("serve: listening", "addr", server.Addr)

		serveErr := server.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			serveErrCh <- serveErr

			return
		}

		serveErrCh <- nil
	}()

	select {
	case <-sigCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	case serveErr := <-serveErrCh:
		return serveErr
	}
}

// shutdownGrace bounds how long /render requests in flight get to finish
// once SIGINT/SIGTERM arrives.
const shutdownGrace = 10 * time.Second

// prometheusHandler creates a Prometheus metrics exporter backed by an OTel
// MeterProvider and returns an http.Handler serving the /metrics scrape
// endpoint. Each call creates an independent Prometheus registry to avoid
// collector conflicts when called more than once.
func prometheusHandler() (http.Handler, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	_ = sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// withREDMetrics wraps an HTTP handler to record RED metrics per request.
func withREDMetrics(metrics *observability.REDMetrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		decInflight := metrics.TrackInflight(r.Context(), "http.render")

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		decInflight()

		status := "ok"
		if sw.status >= http.StatusBadRequest {
			status = "error"
		}

		metrics.RecordRequest(r.Context(), "http.render", status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// renderRequest/renderResponse mirror internal/mcp's RenderInput/RenderOutput
// JSON shape so the same request document works against the MCP tool and
// this HTTP endpoint.
type renderRequest struct {
	Source  string  `json:"source"`
	Backend string  `json:"backend"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	HomeDir string  `json:"home_dir,omitempty"`
}

type renderResponse struct {
	Output   string   `json:"output"`
	Warnings []string `json:"warnings,omitempty"`
}

func handleRenderHTTP(cfg *config.Config, resourceCache *cache.ResourceCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)

			return
		}

		var req renderRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("decode request: %v", err), http.StatusBadRequest)

			return
		}

		resp, err := renderOne(cfg, req, resourceCache)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)

			return
		}

		w.Header().Set("Content-Type", "application/json")

		_ = json.NewEncoder(w).Encode(resp)
	}
}

// renderOne renders one request against cfg's setup codewords, reusing
// resourceCache (shared across requests by the caller, nil if disabled) for
// any @include the source triggers.
func renderOne(cfg *config.Config, req renderRequest, resourceCache *cache.ResourceCache) (renderResponse, error) {
	width, height := ResolvePageSize(req.Width, req.Height)

	var buf bytes.Buffer

	backend, tex, kind, err := NewBackendFor(req.Backend, &buf, width, height)
	if err != nil {
		return renderResponse{}, err
	}

	values := cfg.Setup.CodewordValues()
	if req.HomeDir != "" {
		values["home"] = req.HomeDir
	}

	ctx := gpg.NewContext(values)
	ctx.Backend = backend
	ctx.ResourceCache = resourceCache

	if progType, ok := gpg.ProgramTypeForBackend(req.Backend); ok {
		ctx.ProgramType = progType
	}

	registry := gpg.NewRegistry()
	gpg.RegisterControlDirectives(registry)
	gpg.RegisterDrawDirectives(registry)

	engine := gpg.NewEngine(registry, kind)

	if runErr := engine.Run(ctx, req.Source); runErr != nil {
		return renderResponse{}, fmt.Errorf("render: %w", runErr)
	}

	warnings := make([]string, len(ctx.Warnings))
	for i, w := range ctx.Warnings {
		warnings[i] = w.Error()
	}

	output := buf.String()
	if tex != nil {
		output = tex.Dump()
	}

	return renderResponse{Output: output, Warnings: warnings}, nil
}
