package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/platinummonkey/coffeeshop"

// OTelMetrics holds OpenTelemetry metric instruments for the storage and
// signing-key paths. HTTP server metrics come from otelhttp.
type OTelMetrics struct {
	storageOperations metric.Int64Counter
	storageDuration   metric.Float64Histogram
	keyCacheHits      metric.Int64Counter
	keyCacheMisses    metric.Int64Counter
}

// NewOTelMetrics creates the instruments on provider, or on the global
// meter provider when provider is nil.
func NewOTelMetrics(provider metric.MeterProvider) (*OTelMetrics, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(meterName)

	m := &OTelMetrics{}
	var err error

	m.storageOperations, err = meter.Int64Counter(
		"coffeeshop.storage.operations",
		metric.WithDescription("Total number of drink repository operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage operations counter: %w", err)
	}

	m.storageDuration, err = meter.Float64Histogram(
		"coffeeshop.storage.duration",
		metric.WithDescription("Drink repository operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage duration histogram: %w", err)
	}

	m.keyCacheHits, err = meter.Int64Counter(
		"coffeeshop.jwks.cache.hits",
		metric.WithDescription("Signing key lookups served from cache"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create key cache hits counter: %w", err)
	}

	m.keyCacheMisses, err = meter.Int64Counter(
		"coffeeshop.jwks.cache.misses",
		metric.WithDescription("Signing key lookups that required a JWKS fetch"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create key cache misses counter: %w", err)
	}

	return m, nil
}

// RecordStorageOperation records one repository call
func (m *OTelMetrics) RecordStorageOperation(ctx context.Context, operation, backend string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("backend", backend),
		attribute.String("status", status),
	)
	m.storageOperations.Add(ctx, 1, attrs)
	m.storageDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordKeyLookup records a signing key cache lookup
func (m *OTelMetrics) RecordKeyLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.keyCacheHits.Add(ctx, 1)
		return
	}
	m.keyCacheMisses.Add(ctx, 1)
}
