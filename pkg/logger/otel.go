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
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	log "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.31.0"
	"google.golang.org/grpc/credentials"
)

var (
	ErrOTelLoggingDisabled  = errors.New("OTel logging is disabled")
	ErrOTelEndpointRequired = errors.New("OTel endpoint is required when enabled")
	errFailedToParseCACert  = errors.New("failed to parse CA certificate")
	errInvalidDuration      = errors.New("invalid duration")
)

const (
	defaultServiceName      = "fleetaudit"
	defaultServiceVersion   = "1.0.0"
	defaultScope            = "fleetaudit-logger"
	maxAttributeValueLength = 4096
)

// Duration is a time.Duration that unmarshals from "5s" style strings or nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errInvalidDuration, err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

type OTelConfig struct {
	Enabled      bool              `json:"enabled"`
	Endpoint     string            `json:"endpoint"`
	Headers      map[string]string `json:"headers"`
	ServiceName  string            `json:"service_name"`
	BatchTimeout Duration          `json:"batch_timeout"`
	Insecure     bool              `json:"insecure"`
	TLS          *TLSConfig        `json:"tls,omitempty"`
}

type TLSConfig struct {
	CertFile string `json:"cert_file"`
	KeyFile  string `json:"key_file"`
	CAFile   string `json:"ca_file,omitempty"`
}

// OTelWriter forwards zerolog JSON lines to an OTLP log exporter.
type OTelWriter struct {
	provider *sdklog.LoggerProvider
	loggers  map[string]log.Logger
	mu       sync.Mutex
	ctx      context.Context
}

//nolint:gochecknoglobals // needed for proper OTel shutdown handling
var otelProvider *sdklog.LoggerProvider

func NewOTelWriter(ctx context.Context, config OTelConfig) (*OTelWriter, error) {
	if !config.Enabled {
		return nil, ErrOTelLoggingDisabled
	}

	if config.Endpoint == "" {
		return nil, ErrOTelEndpointRequired
	}

	opts := []otlploggrpc.Option{
		otlploggrpc.WithEndpoint(config.Endpoint),
	}

	if config.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	} else if config.TLS != nil {
		tlsConfig, err := setupTLSConfig(config.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to setup TLS configuration: %w", err)
		}

		opts = append(opts, otlploggrpc.WithTLSCredentials(credentials.NewTLS(tlsConfig)))
	}

	if len(config.Headers) > 0 {
		opts = append(opts, otlploggrpc.WithHeaders(config.Headers))
	}

	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
	}

	res, err := newResource(ctx, config.ServiceName, defaultServiceVersion)
	if err != nil {
		return nil, err
	}

	batchTimeout := time.Duration(config.BatchTimeout)
	if batchTimeout == 0 {
		batchTimeout = 5 * time.Second
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter, sdklog.WithExportTimeout(batchTimeout))),
	)

	otelProvider = provider
	global.SetLoggerProvider(provider)

	return &OTelWriter{
		provider: provider,
		loggers:  make(map[string]log.Logger),
		ctx:      ctx,
	}, nil
}

func newResource(ctx context.Context, serviceName, serviceVersion string) (*resource.Resource, error) {
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	return res, nil
}

// Write converts one zerolog JSON line into an OTel log record. Lines that are not
// JSON objects are dropped.
func (w *OTelWriter) Write(p []byte) (int, error) {
	if w.provider == nil {
		return len(p), nil
	}

	entry := make(map[string]interface{})
	if err := json.Unmarshal(p, &entry); err != nil {
		return len(p), nil
	}

	record := log.Record{}

	if ts, ok := entry["time"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			record.SetTimestamp(parsed)
			delete(entry, "time")
		}
	}

	if level, ok := entry["level"].(string); ok {
		record.SetSeverity(mapZerologLevelToOTel(level))
		record.SetSeverityText(level)
		delete(entry, "level")
	}

	if message, ok := entry["message"].(string); ok {
		record.SetBody(log.StringValue(message))
		delete(entry, "message")
	}

	scope := defaultScope
	if component, ok := entry["component"].(string); ok && component != "" {
		scope = component
		delete(entry, "component")
	}

	for key, value := range entry {
		record.AddAttributes(log.String(key, formatAttributeValue(value)))
	}

	w.scopedLogger(scope).Emit(w.ctx, record)

	return len(p), nil
}

func (w *OTelWriter) scopedLogger(scope string) log.Logger {
	w.mu.Lock()
	defer w.mu.Unlock()

	l, ok := w.loggers[scope]
	if !ok {
		l = w.provider.Logger(scope)
		w.loggers[scope] = l
	}

	return l
}

func formatAttributeValue(value interface{}) string {
	var s string

	switch v := value.(type) {
	case nil:
		s = "null"
	case string:
		s = v
	case bool, float64, json.Number:
		s = fmt.Sprintf("%v", v)
	default:
		if b, err := json.Marshal(v); err == nil {
			s = string(b)
		} else {
			s = fmt.Sprintf("%v", v)
		}
	}

	if len(s) > maxAttributeValueLength {
		s = strings.ToValidUTF8(s[:maxAttributeValueLength-3], "") + "..."
	}

	return s
}

func mapZerologLevelToOTel(level string) log.Severity {
	switch strings.ToLower(level) {
	case "trace":
		return log.SeverityTrace
	case "debug":
		return log.SeverityDebug
	case "info":
		return log.SeverityInfo
	case "warn", "warning":
		return log.SeverityWarn
	case "error":
		return log.SeverityError
	case "fatal", "panic":
		return log.SeverityFatal
	default:
		return log.SeverityInfo
	}
}

// ShutdownOTel flushes and stops the log provider if one was started.
func ShutdownOTel() error {
	if otelProvider == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := otelProvider.Shutdown(ctx)
	otelProvider = nil

	return err
}

func setupTLSConfig(tlsConfig *TLSConfig) (*tls.Config, error) {
	config := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	if tlsConfig.CertFile != "" && tlsConfig.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(tlsConfig.CertFile, tlsConfig.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}

		config.Certificates = []tls.Certificate{cert}
	}

	if tlsConfig.CAFile != "" {
		caCert, err := os.ReadFile(tlsConfig.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}

		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, errFailedToParseCACert
		}

		config.RootCAs = pool
	}

	return config, nil
}
