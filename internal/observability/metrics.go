// Package observability provides OTel metric instruments, a Prometheus
// scrape endpoint, and structured logging setup for math2visual.
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricHighlightsTotal      = "math2visual.highlights.total"
	metricHighlightDuration    = "math2visual.highlight.duration.seconds"
	metricPatchesTotal         = "math2visual.patches.total"
	metricRegenerationsTotal   = "math2visual.regenerations.total"
	metricRegenerationDuration = "math2visual.regeneration.duration.seconds"
	metricRegenerationInflight = "math2visual.regeneration.inflight"
	metricMissingEntitiesTotal = "math2visual.missing_entities.total"

	attrKind   = "kind"
	attrStatus = "status"

	statusOK    = "ok"
	statusError = "error"
)

// durationBucketBoundaries covers 1ms to 60s: highlight resolution is
// sub-millisecond, a generation round-trip can take tens of seconds.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// EngineMetrics holds the OTel instruments for the synchronization engine:
// highlight resolutions, scalar patches, and regeneration round-trips.
type EngineMetrics struct {
	highlightsTotal      metric.Int64Counter
	highlightDuration    metric.Float64Histogram
	patchesTotal         metric.Int64Counter
	regenerationsTotal   metric.Int64Counter
	regenerationDuration metric.Float64Histogram
	regenerationInflight metric.Int64UpDownCounter
	missingEntities      metric.Int64Counter
}

// NewEngineMetrics creates engine metric instruments from the given meter.
func NewEngineMetrics(mt metric.Meter) (*EngineMetrics, error) {
	b := newMetricBuilder(mt)

	em := &EngineMetrics{
		highlightsTotal:      b.counter(metricHighlightsTotal, "Total highlight resolutions by path kind", "{highlight}"),
		highlightDuration:    b.histogram(metricHighlightDuration, "Highlight resolution duration in seconds", "s", durationBucketBoundaries...),
		patchesTotal:         b.counter(metricPatchesTotal, "Total scalar patches by status", "{patch}"),
		regenerationsTotal:   b.counter(metricRegenerationsTotal, "Total regeneration round-trips by status", "{request}"),
		regenerationDuration: b.histogram(metricRegenerationDuration, "Regeneration round-trip duration in seconds", "s", durationBucketBoundaries...),
		regenerationInflight: b.upDownCounter(metricRegenerationInflight, "Number of in-flight regenerations", "{request}"),
		missingEntities:      b.counter(metricMissingEntitiesTotal, "Total entity names the backend had no icon for", "{entity}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return em, nil
}

// RecordHighlight records one resolved highlight. Safe to call on a nil
// receiver (no-op).
func (em *EngineMetrics) RecordHighlight(ctx context.Context, kind string, duration time.Duration) {
	if em == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrKind, kind))

	em.highlightsTotal.Add(ctx, 1, attrs)
	em.highlightDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordPatch records one scalar patch attempt. Safe to call on a nil
// receiver (no-op).
func (em *EngineMetrics) RecordPatch(ctx context.Context, err error) {
	if em == nil {
		return
	}

	em.patchesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, statusOf(err))))
}

// RecordRegeneration records one completed regeneration round-trip together
// with the number of entities the backend found no icons for. Safe to call
// on a nil receiver (no-op).
func (em *EngineMetrics) RecordRegeneration(ctx context.Context, duration time.Duration, missing int, err error) {
	if em == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String(attrStatus, statusOf(err)))

	em.regenerationsTotal.Add(ctx, 1, attrs)
	em.regenerationDuration.Record(ctx, duration.Seconds(), attrs)
	em.missingEntities.Add(ctx, int64(missing))
}

// TrackInflight increments the in-flight regeneration gauge and returns a
// function to decrement it. Safe to call on a nil receiver.
func (em *EngineMetrics) TrackInflight(ctx context.Context) func() {
	if em == nil {
		return func() {}
	}

	em.regenerationInflight.Add(ctx, 1)

	return func() {
		em.regenerationInflight.Add(ctx, -1)
	}
}

func statusOf(err error) string {
	if err != nil {
		return statusError
	}

	return statusOK
}