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

// Package lifecycle sets up and tears down process-wide state for a fleetaudit run.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/fleetaudit/pkg/logger"
	"github.com/carverauto/fleetaudit/pkg/version"
)

const (
	serviceName     = "fleetaudit"
	shutdownTimeout = 5 * time.Second
)

// SetupLogging initializes the global logger and tracing from config. If config is
// nil, it uses the default configuration. The returned context carries the root span;
// the returned func ends it and flushes any OTLP exporters.
func SetupLogging(ctx context.Context, component string, config *logger.Config) (context.Context, logger.Logger, func(), error) {
	if config == nil {
		config = logger.DefaultConfig()
	}

	if err := logger.Init(ctx, config); err != nil {
		return ctx, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log := logger.CreateComponentLogger(component)

	otelConfig := config.OTel

	tp, ctx, span, err := logger.InitializeTracing(ctx, logger.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.GetVersion(),
		Logger:         log,
		OTel:           &otelConfig,
	})
	if err != nil {
		return ctx, nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	shutdown := func() {
		span.End()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Failed to flush traces")
		}

		if err := logger.ShutdownOTel(); err != nil {
			log.Warn().Err(err).Msg("Failed to flush OTel logs")
		}
	}

	return ctx, log, shutdown, nil
}

// SignalContext returns a context that is canceled on SIGINT or SIGTERM.
func SignalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
