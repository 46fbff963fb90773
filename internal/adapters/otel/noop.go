package otel

import "context"

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) RecordAssignment(ctx context.Context, testID, variantID string) {}

func (e *NoOpExporter) RecordExposure(ctx context.Context, testID, variantID, feature string) {}

func (e *NoOpExporter) RecordConversion(ctx context.Context, testID, variantID, event string) {}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
