/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logger

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/trace"
	otelTrace "go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials"
)

// TracingConfig holds the configuration for OpenTelemetry tracing setup
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string
	Logger         Logger
	OTel           *OTelConfig
}

// InitializeTracing installs a global TracerProvider and starts a root span for the
// run. Spans are exported only when OTel is enabled with an endpoint; otherwise they
// are recorded in-process and dropped.
//
// The caller owns shutdown:
//
//	tp, ctx, span, err := logger.InitializeTracing(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer func() { _ = tp.Shutdown(context.Background()) }()
//	defer span.End()
func InitializeTracing(ctx context.Context, config TracingConfig) (*trace.TracerProvider, context.Context, otelTrace.Span, error) {
	if config.ServiceName == "" {
		config.ServiceName = defaultServiceName
	}

	if config.ServiceVersion == "" {
		config.ServiceVersion = defaultServiceVersion
	}

	res, err := newResource(ctx, config.ServiceName, config.ServiceVersion)
	if err != nil {
		return nil, ctx, nil, err
	}

	tpOptions := []trace.TracerProviderOption{trace.WithResource(res)}

	if config.OTel != nil && config.OTel.Enabled && config.OTel.Endpoint != "" {
		exporter, err := createTraceExporter(ctx, config.OTel)
		if err != nil {
			return nil, ctx, nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}

		tpOptions = append(tpOptions, trace.WithSpanProcessor(trace.NewBatchSpanProcessor(exporter)))
	}

	tp := trace.NewTracerProvider(tpOptions...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	ctx, rootSpan := otel.Tracer(config.ServiceName).Start(ctx, config.ServiceName+".main")

	if config.Logger != nil {
		sc := rootSpan.SpanContext()
		config.Logger.Debug().
			Str("service", config.ServiceName).
			Str("trace_id", sc.TraceID().String()).
			Msg("Initialized OpenTelemetry tracing")
	}

	return tp, ctx, rootSpan, nil
}

// GetTracer returns a tracer from the global TracerProvider.
func GetTracer(name string) otelTrace.Tracer {
	return otel.Tracer(name)
}

func createTraceExporter(ctx context.Context, config *OTelConfig) (trace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(config.Endpoint),
	}

	if config.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else if config.TLS != nil {
		tlsConfig, err := setupTLSConfig(config.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to setup TLS configuration: %w", err)
		}

		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(tlsConfig)))
	}

	if len(config.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(config.Headers))
	}

	return otlptracegrpc.New(ctx, opts...)
}
