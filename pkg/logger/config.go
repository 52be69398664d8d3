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
	"os"
	"strings"
	"time"
)

// envPrefix scopes logging variables to fleetaudit. FLEETAUDIT_LOG_LEVEL wins
// over LOG_LEVEL, and so on for every variable read here.
const envPrefix = "FLEETAUDIT_"

const defaultBatchTimeout = 5 * time.Second

// DefaultConfig builds a logger configuration from the environment.
// The CLI writes its status lines to stdout, so structured logs default to stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:      envString("LOG_LEVEL", "info"),
		Debug:      envBool("DEBUG", false),
		Output:     envString("LOG_OUTPUT", "stderr"),
		TimeFormat: envString("LOG_TIME_FORMAT", ""),
		OTel:       DefaultOTelConfig(),
	}
}

// DefaultOTelConfig reads the standard OTLP log exporter variables. Export stays
// off unless OTEL_LOGS_ENABLED is set.
func DefaultOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      envBool("OTEL_LOGS_ENABLED", false),
		Endpoint:     envString("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT", ""),
		Headers:      parseHeaders(envString("OTEL_EXPORTER_OTLP_LOGS_HEADERS", "")),
		ServiceName:  envString("OTEL_SERVICE_NAME", defaultServiceName),
		BatchTimeout: Duration(envDuration("OTEL_EXPORTER_OTLP_LOGS_TIMEOUT", defaultBatchTimeout)),
		Insecure:     envBool("OTEL_EXPORTER_OTLP_LOGS_INSECURE", false),
	}
}

// parseHeaders splits "k1=v1,k2=v2". Pairs without '=' are skipped.
func parseHeaders(s string) map[string]string {
	headers := make(map[string]string)

	for _, pair := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}

		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return headers
}

func lookupEnv(key string) (string, bool) {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value, true
	}

	if value := os.Getenv(key); value != "" {
		return value, true
	}

	return "", false
}

func envString(key, defaultValue string) string {
	if value, ok := lookupEnv(key); ok {
		return value
	}

	return defaultValue
}

func envBool(key string, defaultValue bool) bool {
	value, ok := lookupEnv(key)
	if !ok {
		return defaultValue
	}

	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

// envDuration ignores values that do not parse.
func envDuration(key string, defaultValue time.Duration) time.Duration {
	value, ok := lookupEnv(key)
	if !ok {
		return defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return d
}
