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

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/carverauto/fleetaudit/pkg/config"
	"github.com/carverauto/fleetaudit/pkg/driver"
	"github.com/carverauto/fleetaudit/pkg/inventory"
	"github.com/carverauto/fleetaudit/pkg/inventory/solarwinds"
	"github.com/carverauto/fleetaudit/pkg/lifecycle"
	"github.com/carverauto/fleetaudit/pkg/logger"
	"github.com/carverauto/fleetaudit/pkg/models"
	"github.com/carverauto/fleetaudit/pkg/natsutil"
	"github.com/carverauto/fleetaudit/pkg/poller"
	"github.com/carverauto/fleetaudit/pkg/report"
)

const tracerName = "github.com/carverauto/fleetaudit/pkg/cli"

// HealthPublisher publishes poll results. natsutil.EventPublisher implements it.
type HealthPublisher interface {
	PublishResults(ctx context.Context, runID string, results []models.PollResult) natsutil.PublishSummary
}

// Runtime holds the collaborators of the pipelines. Nil fields are replaced by the
// production implementation built from the run configuration.
type Runtime struct {
	Out       io.Writer
	Logger    logger.Logger
	Now       func() time.Time
	Queriers  inventory.QuerierFactory
	Drivers   driver.Factory
	Publisher HealthPublisher

	console *Console
}

// NewRuntime returns a Runtime printing to out.
func NewRuntime(out io.Writer, log logger.Logger) *Runtime {
	return &Runtime{Out: out, Logger: log, Now: time.Now}
}

// Execute loads the configuration for cmd and runs its subcommand.
func Execute(ctx context.Context, cmd *CmdConfig, out io.Writer) error {
	cfg, err := LoadAuditConfig(ctx, cmd, logger.CreateComponentLogger("config"))
	if err != nil {
		return err
	}

	ctx, log, shutdown, err := lifecycle.SetupLogging(ctx, "fleetaudit", cfg.Logging)
	if err != nil {
		return err
	}
	defer shutdown()

	return NewRuntime(out, log).Dispatch(ctx, cmd.SubCmd, &cfg)
}

// Dispatch runs the pipeline named by subCmd.
func (rt *Runtime) Dispatch(ctx context.Context, subCmd string, cfg *config.AuditConfig) error {
	switch subCmd {
	case cmdFetch:
		return rt.RunFetch(ctx, cfg)
	case cmdFilter:
		return rt.RunFilter(ctx, cfg)
	case cmdPoll:
		return rt.RunPoll(ctx, cfg)
	case cmdRun:
		return rt.RunAll(ctx, cfg)
	default:
		return fmt.Errorf("%w: %w %q", ErrUsage, errUnknownSubcommand, subCmd)
	}
}

func (rt *Runtime) out() *Console {
	if rt.console == nil {
		rt.console = NewConsole(rt.Out)
	}

	return rt.console
}

func (rt *Runtime) now() time.Time {
	if rt.Now == nil {
		return time.Now()
	}

	return rt.Now()
}

func (rt *Runtime) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return logger.GetTracer(tracerName).Start(ctx, name)
}

func (rt *Runtime) queriers(cfg *config.AuditConfig) inventory.QuerierFactory {
	if rt.Queriers != nil {
		return rt.Queriers
	}

	log := logger.NewLogger(rt.Logger.WithComponent("solarwinds"))

	return func(server string) (inventory.Querier, error) {
		client, err := solarwinds.NewClient(cfg.SolarWinds(server), log)
		if err != nil {
			return nil, err
		}

		return client, nil
	}
}

func (rt *Runtime) drivers(cfg *config.AuditConfig) driver.Factory {
	if rt.Drivers != nil {
		return rt.Drivers
	}

	return driver.DefaultFactory(cfg.DriverOptions(), rt.Logger)
}

// RunFetch queries every region and overwrites the inventory CSV. Nothing is
// written when any region fails.
func (rt *Runtime) RunFetch(ctx context.Context, cfg *config.AuditConfig) error {
	ctx, span := rt.startSpan(ctx, "fleetaudit.fetch")
	defer span.End()

	fetcher := inventory.NewFetcher(cfg.FetcherConfig(), rt.queriers(cfg), fetchProgress{rt.out()},
		logger.NewLogger(rt.Logger.WithComponent("inventory")))

	devices, err := fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", errFetchFailed, err)
	}

	if err := inventory.WriteInventory(cfg.InventoryFile, devices); err != nil {
		return fmt.Errorf("%w: %w", errWriteInventory, err)
	}

	span.SetAttributes(attribute.Int("devices", len(devices)))

	rt.out().Generated(cfg.InventoryFile)

	return nil
}

// RunFilter keeps the supported devices of each configured region and writes the
// filtered inventory.
func (rt *Runtime) RunFilter(_ context.Context, cfg *config.AuditConfig) error {
	devices, err := rt.readInventory(cfg.InventoryFile)
	if err != nil {
		return err
	}

	filtered := make([]models.Device, 0, len(devices))

	for _, region := range cfg.Regions {
		rt.out().Banner(region)

		filtered = append(filtered, inventory.Filter(devices, region, cfg.Denylist)...)
	}

	if err := inventory.WriteFiltered(cfg.FilteredFile, filtered); err != nil {
		return fmt.Errorf("%w: %w", errWriteInventory, err)
	}

	rt.Logger.Info().
		Int("fetched", len(devices)).
		Int("kept", len(filtered)).
		Str("file", cfg.FilteredFile).
		Msg("Filtered inventory")

	rt.out().Generated(cfg.FilteredFile)

	return nil
}

// RunPoll polls every supported device of the inventory and writes the health report.
func (rt *Runtime) RunPoll(ctx context.Context, cfg *config.AuditConfig) error {
	runID := uuid.New().String()

	ctx, span := rt.startSpan(ctx, "fleetaudit.poll")
	defer span.End()

	span.SetAttributes(attribute.String("run_id", runID))

	devices, err := rt.readInventory(cfg.InventoryFile)
	if err != nil {
		return err
	}

	log := logger.NewLogger(rt.Logger.WithFields(map[string]interface{}{"component": "poller", "run_id": runID}))

	p, err := poller.New(poller.Config{
		Regions:        cfg.Regions,
		Denylist:       cfg.Denylist,
		Transport:      cfg.Transport,
		MaxConcurrency: cfg.MaxConcurrency,
		Timeout:        time.Duration(cfg.Timeout),
		Credentials:    cfg.Credentials(),
	}, rt.drivers(cfg), pollProgress{rt.out()}, log)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	results := p.Poll(ctx, devices)

	rep := report.Build(results, cfg.Policy())

	writer := report.NewWriter(cfg.ReportDir, logger.NewLogger(rt.Logger.WithComponent("report")))
	writer.Clock = rt.now

	paths, err := writer.Write(rep)
	if err != nil {
		return fmt.Errorf("%w: %w", errWriteReport, err)
	}

	rt.publish(ctx, cfg, runID, results)

	healthy := 0

	for i := range results {
		if results[i].Succeeded() {
			healthy++
		}
	}

	span.SetAttributes(attribute.Int("devices", len(results)), attribute.Int("healthy", healthy))

	log.Info().
		Int("devices", len(results)).
		Int("healthy", healthy).
		Int("failed", len(results)-healthy).
		Msg("Health poll complete")

	for _, path := range paths {
		rt.out().Generated(path)
	}

	return ctx.Err()
}

// RunAll fetches, filters and polls in one process.
func (rt *Runtime) RunAll(ctx context.Context, cfg *config.AuditConfig) error {
	if err := rt.RunFetch(ctx, cfg); err != nil {
		return err
	}

	if err := rt.RunFilter(ctx, cfg); err != nil {
		return err
	}

	return rt.RunPoll(ctx, cfg)
}

func (rt *Runtime) readInventory(path string) ([]models.Device, error) {
	rt.out().Notice("Getting supported devices from %s...", path)

	devices, err := inventory.ReadInventory(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errReadInventory, err)
	}

	return devices, nil
}

func (rt *Runtime) publish(ctx context.Context, cfg *config.AuditConfig, runID string, results []models.PollResult) {
	publisher := rt.Publisher

	if publisher == nil {
		if !cfg.NATS.Enabled() {
			return
		}

		natsLog := logger.NewLogger(rt.Logger.WithComponent("natsutil"))

		eventPublisher, nc, err := natsutil.Connect(ctx, cfg.NATS, natsLog)
		if err != nil {
			rt.Logger.Warn().Err(err).Msg("Health events not published")
			return
		}

		defer func() {
			if err := nc.Drain(); err != nil {
				natsLog.Debug().Err(err).Msg("Failed to drain NATS connection")
			}
		}()

		publisher = eventPublisher
	}

	summary := publisher.PublishResults(ctx, runID, results)
	if summary.Failed > 0 {
		rt.Logger.Warn().Int("failed", summary.Failed).Msg("Some health events were not published")
	}
}
