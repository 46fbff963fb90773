package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	serviceName    = "pontifex-experiments"
	serviceVersion = "1.0.0"
)

// Exporter publishes assignment and tracking counters to an OTEL Collector.
type Exporter struct {
	provider         *sdkmetric.MeterProvider
	meter            metric.Meter
	assignmentsTotal metric.Int64Counter
	exposuresTotal   metric.Int64Counter
	conversionsTotal metric.Int64Counter
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	assignmentsTotal, err := meter.Int64Counter(
		"experiment_assignments_total",
		metric.WithDescription("Total variant assignments"),
		metric.WithUnit("{assignment}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating assignments counter: %w", err)
	}

	exposuresTotal, err := meter.Int64Counter(
		"experiment_exposures_total",
		metric.WithDescription("Total recorded feature exposures"),
		metric.WithUnit("{exposure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating exposures counter: %w", err)
	}

	conversionsTotal, err := meter.Int64Counter(
		"experiment_conversions_total",
		metric.WithDescription("Total recorded conversions"),
		metric.WithUnit("{conversion}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating conversions counter: %w", err)
	}

	return &Exporter{
		provider:         provider,
		meter:            meter,
		assignmentsTotal: assignmentsTotal,
		exposuresTotal:   exposuresTotal,
		conversionsTotal: conversionsTotal,
	}, nil
}

// RecordAssignment counts a first-time variant assignment.
func (e *Exporter) RecordAssignment(ctx context.Context, testID, variantID string) {
	e.assignmentsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("test_id", testID),
		attribute.String("variant_id", variantID),
	))
}

// RecordExposure counts a feature exposure.
func (e *Exporter) RecordExposure(ctx context.Context, testID, variantID, feature string) {
	e.exposuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("test_id", testID),
		attribute.String("variant_id", variantID),
		attribute.String("feature", feature),
	))
}

// RecordConversion counts a conversion event.
func (e *Exporter) RecordConversion(ctx context.Context, testID, variantID, event string) {
	e.conversionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("test_id", testID),
		attribute.String("variant_id", variantID),
		attribute.String("event", event),
	))
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
