package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/pwndao/loan-pricing/internal/ports/outbound"
)

// Compile-time check that Metrics implements outbound.MetricsRecorder.
var _ outbound.MetricsRecorder = (*Metrics)(nil)

// Metrics implements the MetricsRecorder interface using OpenTelemetry.
type Metrics struct {
	conversionsTotal metric.Int64Counter
	probesTotal      metric.Int64Counter
}

// NewMetrics creates a new OpenTelemetry metrics recorder.
// meterName should typically be the package name or service name.
func NewMetrics(meterName string) (*Metrics, error) {
	meter := otel.Meter(meterName)

	conversions, err := meter.Int64Counter(
		"conversions_total",
		metric.WithDescription("Total number of denomination conversions, by operation and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversions_total counter: %w", err)
	}

	probes, err := meter.Int64Counter(
		"denominator_probes_total",
		metric.WithDescription("Total number of common-denominator probes, by candidate and result"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create denominator_probes_total counter: %w", err)
	}

	return &Metrics{
		conversionsTotal: conversions,
		probesTotal:      probes,
	}, nil
}

// RecordConversion increments the conversions counter with the operation name
// and how the call ended.
func (m *Metrics) RecordConversion(ctx context.Context, operation, outcome string) {
	m.conversionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

// RecordDenominatorProbe increments the probes counter for one candidate of
// the common-denominator search.
func (m *Metrics) RecordDenominatorProbe(ctx context.Context, denomination string, hit bool) {
	m.probesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("denomination", denomination),
		attribute.Bool("hit", hit),
	))
}
