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
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestOTelConfig(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_TIMEOUT", "")
	t.Setenv("OTEL_SERVICE_NAME", "")

	config := DefaultOTelConfig()

	if config.ServiceName != defaultServiceName {
		t.Errorf("Expected service name %q, got %q", defaultServiceName, config.ServiceName)
	}

	if config.BatchTimeout != Duration(5*time.Second) {
		t.Errorf("Expected default BatchTimeout to be 5s, got %v", config.BatchTimeout)
	}
}

func TestOTelConfigHeaders(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_HEADERS", "x-token = abc, x-tenant=ops")

	config := DefaultOTelConfig()

	if config.Headers["x-token"] != "abc" || config.Headers["x-tenant"] != "ops" {
		t.Errorf("unexpected headers: %v", config.Headers)
	}
}

func TestOTelWriter_Disabled(t *testing.T) {
	writer, err := NewOTelWriter(context.Background(), OTelConfig{Enabled: false})
	if !errors.Is(err, ErrOTelLoggingDisabled) {
		t.Errorf("Expected ErrOTelLoggingDisabled, got %v", err)
	}

	if writer != nil {
		t.Error("Writer should be nil when OTel is disabled")
	}
}

func TestOTelWriter_NoEndpoint(t *testing.T) {
	writer, err := NewOTelWriter(context.Background(), OTelConfig{Enabled: true})
	if !errors.Is(err, ErrOTelEndpointRequired) {
		t.Errorf("Expected ErrOTelEndpointRequired, got %v", err)
	}

	if writer != nil {
		t.Error("Writer should be nil when endpoint is empty")
	}
}

func TestLoggerWithOTelEnabledButNoEndpoint(t *testing.T) {
	config := &Config{
		Level: "info",
		OTel:  OTelConfig{Enabled: true},
	}

	if err := Init(context.Background(), config); err != nil {
		t.Fatalf("Init should fall back to local logging, got: %v", err)
	}

	Info().Str("test", "value").Msg("Test message with OTel enabled but no endpoint")
}

func TestMapZerologLevelToOTel(t *testing.T) {
	tests := []struct {
		zerologLevel string
		expected     string
	}{
		{"trace", "TRACE"},
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"fatal", "FATAL"},
		{"panic", "FATAL"},
		{"unknown", "INFO"},
	}

	for _, test := range tests {
		result := mapZerologLevelToOTel(test.zerologLevel)
		if result.String() != test.expected {
			t.Errorf("mapZerologLevelToOTel(%s) = %s, expected %s",
				test.zerologLevel, result.String(), test.expected)
		}
	}
}

func TestFormatAttributeValue(t *testing.T) {
	if got := formatAttributeValue(nil); got != "null" {
		t.Errorf("nil = %q", got)
	}

	if got := formatAttributeValue(json.Number("42")); got != "42" {
		t.Errorf("number = %q", got)
	}

	if got := formatAttributeValue(map[string]interface{}{"a": 1.0}); got != `{"a":1}` {
		t.Errorf("map = %q", got)
	}

	long := formatAttributeValue(strings.Repeat("x", maxAttributeValueLength*2))
	if len(long) != maxAttributeValueLength || !strings.HasSuffix(long, "...") {
		t.Errorf("expected truncation to %d bytes, got %d", maxAttributeValueLength, len(long))
	}
}

func TestInitializeTracingWithoutExporter(t *testing.T) {
	tp, ctx, span, err := InitializeTracing(context.Background(), TracingConfig{
		ServiceName: "fleetaudit-test",
		Logger:      NewTestLogger(),
	})
	if err != nil {
		t.Fatalf("InitializeTracing failed: %v", err)
	}

	defer func() { _ = tp.Shutdown(context.Background()) }()
	defer span.End()

	_, child := GetTracer("test").Start(ctx, "child")
	defer child.End()

	if child.SpanContext().TraceID() != span.SpanContext().TraceID() {
		t.Error("child span should share the root trace")
	}
}
