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

	"github.com/carverauto/fleetaudit/pkg/config"
	"github.com/carverauto/fleetaudit/pkg/logger"
	"github.com/carverauto/fleetaudit/pkg/models"
)

// LoadAuditConfig builds the run configuration from defaults, then the config
// source selected by CONFIG_SOURCE, then any flags given explicitly. The result
// is validated for the subcommand; validation errors wrap ErrUsage.
func LoadAuditConfig(ctx context.Context, cmd *CmdConfig, log logger.Logger) (config.AuditConfig, error) {
	cfg := config.DefaultAuditConfig()

	if err := config.NewConfig(log).Load(ctx, cmd.ConfigFile, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", errConfigLoadFailed, err)
	}

	cfg.ApplyDefaults()

	if err := cmd.applyOverrides(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	if err := validateFor(cmd.SubCmd, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	if redacted, err := config.Redacted(&cfg); err == nil {
		log.Debug().RawJSON("config", redacted).Str("subcommand", cmd.SubCmd).Msg("Loaded configuration")
	}

	return cfg, nil
}

func validateFor(subCmd string, cfg *config.AuditConfig) error {
	switch subCmd {
	case cmdFilter:
		return cfg.ValidateRegions()
	case cmdFetch, cmdRun:
		if err := cfg.Validate(); err != nil {
			return err
		}

		return cfg.RequireServers()
	default:
		return cfg.Validate()
	}
}

//nolint:gocyclo // flat list of optional overrides
func (c *CmdConfig) applyOverrides(cfg *config.AuditConfig) error {
	if c.isSet("u") {
		cfg.Username = c.Username
	}

	if c.isSet("p") {
		cfg.Password = c.Password
	}

	servers := []struct {
		flag   string
		region models.Region
		host   string
	}{
		{"us", models.RegionUS, c.USServer},
		{"emea", models.RegionEMEA, c.EMEAServer},
		{"apac", models.RegionAPAC, c.APACServer},
	}

	for _, s := range servers {
		if !c.isSet(s.flag) {
			continue
		}

		if cfg.Servers == nil {
			cfg.Servers = make(map[models.Region]string)
		}

		cfg.Servers[s.region] = s.host
	}

	if c.isSet("swis-port") {
		cfg.SWISPort = c.SWISPort
	}

	if c.isSet("verify-tls") {
		cfg.VerifyTLS = c.VerifyTLS
	}

	if c.isSet("regions") {
		regions := make([]models.Region, 0, len(c.Regions))

		for _, r := range c.Regions {
			region, err := models.ParseRegion(r)
			if err != nil {
				return err
			}

			regions = append(regions, region)
		}

		cfg.Regions = regions
	}

	if c.isSet("denylist") {
		cfg.Denylist = c.Denylist
	}

	if c.isSet("inventory") {
		cfg.InventoryFile = c.InventoryFile
	}

	if c.isSet("filtered") {
		cfg.FilteredFile = c.FilteredFile
	}

	if c.isSet("report-dir") {
		cfg.ReportDir = c.ReportDir
	}

	if c.isSet("policy") {
		cfg.ReportPolicy = c.ReportPolicy
	}

	if c.isSet("transport") {
		cfg.Transport = c.Transport
	}

	if c.isSet("community") {
		cfg.SNMPCommunity = c.Community
	}

	if c.isSet("workers") {
		cfg.MaxConcurrency = c.MaxConcurrency
	}

	if c.isSet("timeout") {
		cfg.Timeout = models.Duration(c.Timeout)
	}

	if c.isSet("nats-url") {
		if cfg.NATS == nil {
			cfg.NATS = &models.NATSConfig{}
		}

		cfg.NATS.URL = c.NATSURL
	}

	if c.Debug {
		if cfg.Logging == nil {
			cfg.Logging = logger.DefaultConfig()
		}

		cfg.Logging.Debug = true
	}

	return nil
}
