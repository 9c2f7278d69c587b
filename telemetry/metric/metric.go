// Package metric exposes the optional metrics sink for ideaflow. Without a
// call to Start the global Meter is a no-op and the engine runs unchanged.
package metric

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otelmetric "go.opentelemetry.io/otel/metric"
	noopm "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const instrumentName = "github.com/museworks/ideaflow"

// Meter is the global meter used by the orchestration engine.
var Meter otelmetric.Meter = noopm.Meter{}

// Option configures the metrics sink.
type Option func(*options)

type options struct {
	endpoint       string
	serviceName    string
	serviceVersion string
}

// WithEndpoint sets the OTLP gRPC endpoint ("host:port", no scheme). When not
// passed, OTEL_EXPORTER_OTLP_METRICS_ENDPOINT and OTEL_EXPORTER_OTLP_ENDPOINT
// are consulted, in that order.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithServiceName sets the reported service name.
func WithServiceName(name string) Option {
	return func(o *options) { o.serviceName = name }
}

// Start installs an OTLP gRPC metric exporter and swaps the global Meter to
// it. The returned function flushes and shuts the provider down.
func Start(ctx context.Context, opts ...Option) (func() error, error) {
	option := options{
		endpoint:       metricsEndpoint(),
		serviceName:    "ideaflow",
		serviceVersion: "0.1.0",
	}
	for _, opt := range opts {
		opt(&option)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(option.serviceName),
			semconv.ServiceVersion(option.serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	conn, err := grpc.NewClient(option.endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to dial metrics endpoint: %w", err)
	}
	exporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)
	Meter = otel.Meter(instrumentName)

	return func() error {
		if err := provider.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("failed to shutdown MeterProvider: %w", err)
		}
		return nil
	}, nil
}

func metricsEndpoint() string {
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	return "localhost:4317"
}
