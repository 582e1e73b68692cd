package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ExportInterval is how often metrics are pushed to the OTLP collector
const ExportInterval = 60 * time.Second

// exportTarget identifies the service and the collector both providers report to
type exportTarget struct {
	serviceName    string
	serviceVersion string
	endpoint       string
	insecure       bool
}

// targetFor resolves the export target of cfg, applying defaults
func targetFor(cfg *Config) exportTarget {
	if cfg == nil {
		cfg = &Config{}
	}
	return exportTarget{
		serviceName:    cfg.GetServiceName(),
		serviceVersion: cfg.GetServiceVersion(),
		endpoint:       cfg.GetEndpoint(),
		insecure:       cfg.GetInsecure(),
	}
}

func (t exportTarget) resource(ctx context.Context) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(t.serviceName),
			semconv.ServiceVersion(t.serviceVersion),
		),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// newTracerProvider returns an SDK tracer provider exporting over OTLP HTTP,
// or a no-op provider when tracing is disabled. The SDK provider is installed
// globally together with the W3C trace context propagator.
func newTracerProvider(ctx context.Context, target exportTarget, tc *TracingConfig) (trace.TracerProvider, error) {
	if tc == nil || !tc.Enabled {
		slog.Debug("Tracing disabled")
		return tracenoop.NewTracerProvider(), nil
	}

	res, err := target.resource(ctx)
	if err != nil {
		return nil, err
	}

	exporterOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(target.endpoint)}
	if target.insecure {
		exporterOpts = append(exporterOpts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(tc.GetSampling())),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	slog.Info("Tracing initialized",
		"endpoint", target.endpoint,
		"sampling_ratio", tc.GetSampling(),
		"insecure", target.insecure,
	)
	return tp, nil
}

// newMeterProvider returns an SDK meter provider with a periodic OTLP reader
// unless SkipOTLP is set, and a Prometheus reader registered on reg when
// Prometheus is enabled. Disabled metrics yield a no-op provider.
func newMeterProvider(
	ctx context.Context,
	target exportTarget,
	mc *MetricsConfig,
	reg *prometheus.Registry,
) (metric.MeterProvider, error) {
	if mc == nil || !mc.Enabled {
		slog.Debug("Metrics disabled")
		return metricnoop.NewMeterProvider(), nil
	}

	res, err := target.resource(ctx)
	if err != nil {
		return nil, err
	}
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if !mc.SkipOTLP {
		exporterOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(target.endpoint)}
		if target.insecure {
			exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
		}
		exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(ExportInterval)),
		))
	}

	if mc.Prometheus {
		if reg == nil {
			return nil, errors.New("prometheus metrics enabled without a registry")
		}
		reader, err := otelprom.New(otelprom.WithRegisterer(reg))
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)

	slog.Info("Metrics initialized",
		"endpoint", target.endpoint,
		"otlp", !mc.SkipOTLP,
		"prometheus", mc.Prometheus,
	)
	return mp, nil
}
