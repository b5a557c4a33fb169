package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter provides OpenTelemetry metrics export following OTel standards
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	collector     Collector

	meter          metric.Meter
	ingestGauge    metric.Int64ObservableGauge
	outboundGauge  metric.Int64ObservableGauge
	rateLimitGauge metric.Int64ObservableGauge
}

// NewOTelExporter creates a new OpenTelemetry metrics exporter with Prometheus format
func NewOTelExporter(collector Collector) (*OTelExporter, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(
		"alloy-bridge",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		collector:     collector,
		meter:         meter,
	}

	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// registerInstruments creates and registers all OpenTelemetry metric instruments
func (oe *OTelExporter) registerInstruments() error {
	var err error

	// Webhook ingest counts (per outcome)
	oe.ingestGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.ingest.count",
		metric.WithDescription("Number of webhook deliveries by outcome"),
		metric.WithUnit("{deliveries}"),
		metric.WithInt64Callback(oe.observeIngest),
	)
	if err != nil {
		return fmt.Errorf("creating ingest gauge: %w", err)
	}

	// Outbound API call counts (requests vs errors)
	oe.outboundGauge, err = oe.meter.Int64ObservableGauge(
		"alloy.client.requests",
		metric.WithDescription("Number of outbound API calls by result"),
		metric.WithUnit("{requests}"),
		metric.WithInt64Callback(oe.observeOutbound),
	)
	if err != nil {
		return fmt.Errorf("creating outbound gauge: %w", err)
	}

	// Rate limit responses observed
	oe.rateLimitGauge, err = oe.meter.Int64ObservableGauge(
		"alloy.client.rate_limited",
		metric.WithDescription("Number of 429 responses observed from the remote API"),
		metric.WithUnit("{responses}"),
		metric.WithInt64Callback(oe.observeRateLimited),
	)
	if err != nil {
		return fmt.Errorf("creating rate limit gauge: %w", err)
	}

	return nil
}

// observeIngest is a callback that reports webhook counts by outcome
func (oe *OTelExporter) observeIngest(ctx context.Context, observer metric.Int64Observer) error {
	snapshot, err := oe.collector.Collect(ctx)
	if err != nil {
		return err
	}

	for outcome, count := range snapshot.Ingest {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("webhook.outcome", outcome),
		))
	}

	return nil
}

// observeOutbound is a callback that reports outbound call counts
func (oe *OTelExporter) observeOutbound(ctx context.Context, observer metric.Int64Observer) error {
	snapshot, err := oe.collector.Collect(ctx)
	if err != nil {
		return err
	}

	observer.Observe(snapshot.OutboundRequests, metric.WithAttributes(
		attribute.String("result", "total"),
	))
	observer.Observe(snapshot.OutboundErrors, metric.WithAttributes(
		attribute.String("result", "error"),
	))

	return nil
}

// observeRateLimited is a callback that reports 429 counts
func (oe *OTelExporter) observeRateLimited(ctx context.Context, observer metric.Int64Observer) error {
	snapshot, err := oe.collector.Collect(ctx)
	if err != nil {
		return err
	}

	observer.Observe(snapshot.RateLimited)
	return nil
}

// ServeHTTP serves Prometheus-formatted metrics on the given HTTP handler
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return promhttp.Handler()
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
