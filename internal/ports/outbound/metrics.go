package outbound

import "context"

// MetricsRecorder provides an interface for recording application metrics.
// This allows the application layer to record metrics without depending on
// specific telemetry implementations.
type MetricsRecorder interface {
	// RecordConversion records one completed conversion request. outcome is
	// "success" or the fault kind ("sequencer_down", "stale_price", ...).
	RecordConversion(ctx context.Context, operation, outcome string)

	// RecordDenominatorProbe records one common-denominator candidate probe.
	// hit reports whether the candidate resolved.
	RecordDenominatorProbe(ctx context.Context, denomination string, hit bool)
}

// NoopMetrics is a MetricsRecorder that discards everything. Used as the
// default so services never nil-check their recorder.
type NoopMetrics struct{}

func (NoopMetrics) RecordConversion(context.Context, string, string)     {}
func (NoopMetrics) RecordDenominatorProbe(context.Context, string, bool) {}
