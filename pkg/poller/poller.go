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

// Package poller polls device health concurrently and collects one result per device.
package poller

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/carverauto/fleetaudit/pkg/driver"
	"github.com/carverauto/fleetaudit/pkg/inventory"
	"github.com/carverauto/fleetaudit/pkg/logger"
	"github.com/carverauto/fleetaudit/pkg/models"
)

const (
	// DefaultMaxConcurrency is the number of devices polled at once.
	DefaultMaxConcurrency = 100

	tracerName = "github.com/carverauto/fleetaudit/pkg/poller"
)

// Config holds the settings of a poll run.
type Config struct {
	Regions        []models.Region
	Denylist       []string
	Transport      string
	MaxConcurrency int
	// Timeout bounds each device session. Zero disables the bound.
	Timeout     time.Duration
	Credentials driver.Credentials
}

// Poller runs one health check per device through a driver.Factory.
type Poller struct {
	config   Config
	profiles map[Family]Profile
	factory  driver.Factory
	observer Observer
	clock    Clock
	tracer   trace.Tracer
	logger   logger.Logger
}

// New returns a Poller. A nil observer is allowed.
func New(config Config, factory driver.Factory, observer Observer, log logger.Logger) (*Poller, error) {
	profiles, err := Profiles(config.Transport)
	if err != nil {
		return nil, err
	}

	if config.MaxConcurrency < 1 {
		config.MaxConcurrency = DefaultMaxConcurrency
	}

	if len(config.Regions) == 0 {
		config.Regions = models.AllRegions()
	}

	if observer == nil {
		observer = nopObserver{}
	}

	return &Poller{
		config:   config,
		profiles: profiles,
		factory:  factory,
		observer: observer,
		clock:    realClock{},
		tracer:   logger.GetTracer(tracerName),
		logger:   log,
	}, nil
}

// Poll filters the inventory per region, in region order, and polls each region in turn.
// It returns one result per device that survived the filter.
func (p *Poller) Poll(ctx context.Context, devices []models.Device) []models.PollResult {
	var results []models.PollResult

	for _, region := range p.config.Regions {
		regionDevices := inventory.Filter(devices, region, p.config.Denylist)

		p.observer.RegionStarted(region, len(regionDevices))

		p.logger.Info().
			Str("region", string(region)).
			Int("devices", len(regionDevices)).
			Msg("Polling region")

		results = append(results, p.PollRegion(ctx, regionDevices)...)
	}

	return results
}

// PollRegion polls devices with at most MaxConcurrency sessions in flight.
// results[i] always belongs to devices[i]. Once ctx is done no further devices are
// started and the remaining ones fail with the context error.
func (p *Poller) PollRegion(ctx context.Context, devices []models.Device) []models.PollResult {
	results := make([]models.PollResult, len(devices))

	var g errgroup.Group

	g.SetLimit(p.config.MaxConcurrency)

	for i := range devices {
		if err := ctx.Err(); err != nil {
			results[i] = p.failed(devices[i], err)
			p.observer.DeviceDone(&results[i])

			continue
		}

		g.Go(func() error {
			results[i] = p.pollDevice(ctx, devices[i])
			p.observer.DeviceDone(&results[i])

			return nil
		})
	}

	_ = g.Wait()

	return results
}

func (p *Poller) failed(device models.Device, err error) models.PollResult {
	profile := p.profiles[Classify(device.Model)]

	return models.PollResult{
		Device:  device,
		Family:  string(Classify(device.Model)),
		Driver:  profile.Driver,
		Command: profile.Command,
		Status:  models.PollStatusFailed,
		Err:     err,
	}
}

func (p *Poller) pollDevice(ctx context.Context, device models.Device) models.PollResult {
	family := Classify(device.Model)
	profile := p.profiles[family]

	ctx, span := p.tracer.Start(ctx, "poller.device",
		trace.WithAttributes(
			attribute.String("device.name", device.Name),
			attribute.String("device.ip", device.IPAddress),
			attribute.String("device.region", string(device.Region)),
			attribute.String("device.family", string(family)),
			attribute.String("driver.name", profile.Driver),
		))
	defer span.End()

	start := p.clock.Now()
	version, err := p.collect(ctx, device, profile)
	duration := p.clock.Now().Sub(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		p.logger.Debug().
			Err(err).
			Str("device", device.Name).
			Str("ip", device.IPAddress).
			Dur("duration", duration).
			Msg("Device poll failed")

		result := p.failed(device, err)
		result.Duration = duration

		return result
	}

	span.SetAttributes(attribute.String("device.version", version))

	return models.PollResult{
		Device:   device,
		Family:   string(family),
		Driver:   profile.Driver,
		Command:  profile.Command,
		Status:   models.PollStatusSuccess,
		Version:  version,
		Duration: duration,
	}
}

func (p *Poller) collect(ctx context.Context, device models.Device, profile Profile) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	d, err := p.factory.New(profile.Driver, device.IPAddress, p.config.Credentials)
	if err != nil {
		return "", err
	}

	defer func() {
		if err := d.Close(); err != nil {
			p.logger.Debug().Err(err).Str("device", device.Name).Msg("Failed to close session")
		}
	}()

	if err := d.Open(ctx); err != nil {
		return "", err
	}

	output, err := d.CLI(ctx, []string{profile.Command})
	if err != nil {
		return "", err
	}

	return profile.Extract(output[profile.Command])
}
