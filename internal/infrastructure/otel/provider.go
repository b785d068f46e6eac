package otel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Config holds the OTLP log export configuration
type Config struct {
	// Enabled gates the whole export pipeline
	Enabled bool

	// Endpoint is the collector address, host:port
	Endpoint string

	// ServiceName identifies this service on exported records
	ServiceName string

	// ServiceVersion is stamped onto the resource
	ServiceVersion string

	// Environment is the deployment environment attribute
	Environment string

	// Insecure disables TLS towards the collector
	Insecure bool

	// UseHTTP selects the HTTP exporter instead of gRPC
	UseHTTP bool

	// Headers are sent with every export request (HTTP exporter only)
	Headers map[string]string

	// BatchTimeout bounds how long a batch export may take
	BatchTimeout time.Duration
}

// DefaultConfig returns the default export configuration, disabled
func DefaultConfig() *Config {
	return &Config{
		Endpoint:       "localhost:4317",
		ServiceName:    "projectsync",
		ServiceVersion: "0.1.0",
		Environment:    "development",
		Insecure:       true,
		BatchTimeout:   5 * time.Second,
	}
}

// Provider owns the OTLP logger provider and its exporter
type Provider struct {
	config      *Config
	logProvider *sdklog.LoggerProvider
	logger      log.Logger
}

// NewProvider builds the export pipeline. It fails when the config is
// disabled so callers cannot accidentally wire a dead exporter.
func NewProvider(cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if !cfg.Enabled {
		return nil, errors.New("otel export is not enabled")
	}

	ctx := context.Background()

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build otel resource: %w", err)
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	var batchOpts []sdklog.BatchProcessorOption
	if cfg.BatchTimeout > 0 {
		batchOpts = append(batchOpts, sdklog.WithExportTimeout(cfg.BatchTimeout))
	}

	logProvider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter, batchOpts...)),
	)

	return &Provider{
		config:      cfg,
		logProvider: logProvider,
		logger:      logProvider.Logger(cfg.ServiceName),
	}, nil
}

func newExporter(ctx context.Context, cfg *Config) (sdklog.Exporter, error) {
	if cfg.UseHTTP {
		opts := []otlploghttp.Option{otlploghttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlploghttp.WithInsecure())
		}
		if len(cfg.Headers) > 0 {
			opts = append(opts, otlploghttp.WithHeaders(cfg.Headers))
		}
		return otlploghttp.New(ctx, opts...)
	}

	if cfg.Insecure {
		conn, err := grpc.NewClient(
			cfg.Endpoint,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to dial collector: %w", err)
		}
		return otlploggrpc.New(ctx, otlploggrpc.WithGRPCConn(conn))
	}
	return otlploggrpc.New(ctx, otlploggrpc.WithEndpoint(cfg.Endpoint))
}

// Logger returns the OTEL logger records are emitted on
func (p *Provider) Logger() log.Logger {
	return p.logger
}

// LoggerProvider returns the underlying SDK provider
func (p *Provider) LoggerProvider() *sdklog.LoggerProvider {
	return p.logProvider
}

// ForceFlush pushes all pending records to the collector
func (p *Provider) ForceFlush(ctx context.Context) error {
	if p.logProvider != nil {
		return p.logProvider.ForceFlush(ctx)
	}
	return nil
}

// Shutdown flushes and stops the provider
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.logProvider != nil {
		return p.logProvider.Shutdown(ctx)
	}
	return nil
}

// Close implements io.Closer with a bounded shutdown
func (p *Provider) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.Shutdown(ctx)
}

var _ io.Closer = (*Provider)(nil)
