package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricChainsTotal      = "fpagpgen.interp.chains.total"
	metricFramesTotal      = "fpagpgen.interp.frames.total"
	metricFrameDuration    = "fpagpgen.interp.frame.duration.seconds"
	metricCacheHitsTotal   = "fpagpgen.resource.cache.hits.total"
	metricCacheMissesTotal = "fpagpgen.resource.cache.misses.total"

	attrCache = "cache"
)

// InterpMetrics holds OTel instruments for interpolation-engine metrics.
type InterpMetrics struct {
	chainsTotal   metric.Int64Counter
	framesTotal   metric.Int64Counter
	frameDuration metric.Float64Histogram
	cacheHits     metric.Int64Counter
	cacheMisses   metric.Int64Counter
}

// InterpStats holds the statistics for a single depiction-sequence
// interpolation run (see spec §5 interp_progress callback).
type InterpStats struct {
	Chains             int64
	Frames             int
	FrameDurations     []time.Duration
	SymbolCacheHits    int64
	SymbolCacheMisses  int64
	LookupCacheHits    int64
	LookupCacheMisses  int64
}

// NewInterpMetrics creates interpolation metric instruments from the given meter.
func NewInterpMetrics(mt metric.Meter) (*InterpMetrics, error) {
	chains, err := mt.Int64Counter(metricChainsTotal,
		metric.WithDescription("Total link chains processed"),
		metric.WithUnit("{chain}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricChainsTotal, err)
	}

	frames, err := mt.Int64Counter(metricFramesTotal,
		metric.WithDescription("Total tween frames assembled"),
		metric.WithUnit("{frame}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFramesTotal, err)
	}

	frameDur, err := mt.Float64Histogram(metricFrameDuration,
		metric.WithDescription("Per-frame topology assembly duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFrameDuration, err)
	}

	hits, err := mt.Int64Counter(metricCacheHitsTotal,
		metric.WithDescription("Resource cache hits by type"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheHitsTotal, err)
	}

	misses, err := mt.Int64Counter(metricCacheMissesTotal,
		metric.WithDescription("Resource cache misses by type"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheMissesTotal, err)
	}

	return &InterpMetrics{
		chainsTotal:   chains,
		framesTotal:   frames,
		frameDuration: frameDur,
		cacheHits:     hits,
		cacheMisses:   misses,
	}, nil
}

// RecordRun records interpolation statistics for a completed run.
// Safe to call on a nil receiver (no-op).
func (im *InterpMetrics) RecordRun(ctx context.Context, stats InterpStats) {
	if im == nil {
		return
	}

	im.chainsTotal.Add(ctx, stats.Chains)
	im.framesTotal.Add(ctx, int64(stats.Frames))

	for _, d := range stats.FrameDurations {
		im.frameDuration.Record(ctx, d.Seconds())
	}

	symbolAttrs := metric.WithAttributes(attribute.String(attrCache, "symbol"))
	im.cacheHits.Add(ctx, stats.SymbolCacheHits, symbolAttrs)
	im.cacheMisses.Add(ctx, stats.SymbolCacheMisses, symbolAttrs)

	lookupAttrs := metric.WithAttributes(attribute.String(attrCache, "lookup"))
	im.cacheHits.Add(ctx, stats.LookupCacheHits, lookupAttrs)
	im.cacheMisses.Add(ctx, stats.LookupCacheMisses, lookupAttrs)
}
