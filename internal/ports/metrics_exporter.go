package ports

import "context"

// MetricsExporter exports assignment and tracking counters to an external
// observability system.
type MetricsExporter interface {
	RecordAssignment(ctx context.Context, testID, variantID string)
	RecordExposure(ctx context.Context, testID, variantID, feature string)
	RecordConversion(ctx context.Context, testID, variantID, event string)
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}
