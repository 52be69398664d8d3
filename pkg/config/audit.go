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

package config

import (
	"fmt"
	"time"

	"github.com/carverauto/fleetaudit/pkg/driver"
	"github.com/carverauto/fleetaudit/pkg/inventory"
	"github.com/carverauto/fleetaudit/pkg/inventory/solarwinds"
	"github.com/carverauto/fleetaudit/pkg/logger"
	"github.com/carverauto/fleetaudit/pkg/models"
	"github.com/carverauto/fleetaudit/pkg/report"
)

const (
	DefaultInventoryFile  = "device_list.csv"
	DefaultFilteredFile   = "New_device_list.csv"
	DefaultMaxConcurrency = 100
	DefaultTimeout        = 60 * time.Second
	DefaultQueryTimeout   = 2 * time.Minute
	DefaultSWISPort       = solarwinds.DefaultPort
	DefaultSSHPort        = 22
	DefaultSNMPPort       = 161
)

// AuditConfig is the complete configuration of one fleetaudit invocation.
// It is built once and passed by value to each pipeline.
type AuditConfig struct {
	Username string `json:"username"`
	Password string `json:"password" sensitive:"true"`

	// Regions lists the regions to process, in order.
	Regions []models.Region `json:"regions"`
	// Servers maps each region to its monitoring server hostname.
	Servers   map[models.Region]string `json:"servers"`
	SWISPort  int                      `json:"swis_port"`
	VerifyTLS bool                     `json:"verify_tls"`

	VendorPattern  string   `json:"vendor_pattern"`
	NameExclusions []string `json:"name_exclusions"`
	Denylist       []string `json:"denylist"`

	Transport      string          `json:"transport"`
	SSHPort        int             `json:"ssh_port"`
	SNMPPort       int             `json:"snmp_port"`
	SNMPCommunity  string          `json:"snmp_community" sensitive:"true"`
	MaxConcurrency int             `json:"max_concurrency"`
	Timeout        models.Duration `json:"timeout"`
	QueryTimeout   models.Duration `json:"query_timeout"`

	InventoryFile string `json:"inventory_file"`
	FilteredFile  string `json:"filtered_file"`
	ReportDir     string `json:"report_dir"`
	ReportPolicy  string `json:"report_policy"`

	NATS    *models.NATSConfig `json:"nats,omitempty"`
	Logging *logger.Config     `json:"logging,omitempty"`
}

// DefaultAuditConfig returns the configuration used when no file overrides a value.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Regions:        models.AllRegions(),
		Servers:        make(map[models.Region]string),
		SWISPort:       DefaultSWISPort,
		VendorPattern:  inventory.DefaultVendorPattern,
		NameExclusions: inventory.DefaultNameExclusions(),
		Denylist:       inventory.DefaultDenylist(),
		Transport:      driver.TransportSSH,
		SSHPort:        DefaultSSHPort,
		SNMPPort:       DefaultSNMPPort,
		MaxConcurrency: DefaultMaxConcurrency,
		Timeout:        models.Duration(DefaultTimeout),
		QueryTimeout:   models.Duration(DefaultQueryTimeout),
		InventoryFile:  DefaultInventoryFile,
		FilteredFile:   DefaultFilteredFile,
		ReportDir:      ".",
		ReportPolicy:   string(report.PolicySeparate),
	}
}

// ApplyDefaults fills zero values left by a partial file or environment.
func (c *AuditConfig) ApplyDefaults() {
	d := DefaultAuditConfig()

	if len(c.Regions) == 0 {
		c.Regions = d.Regions
	}

	if c.Servers == nil {
		c.Servers = d.Servers
	}

	if c.SWISPort == 0 {
		c.SWISPort = d.SWISPort
	}

	if c.VendorPattern == "" {
		c.VendorPattern = d.VendorPattern
	}

	if c.NameExclusions == nil {
		c.NameExclusions = d.NameExclusions
	}

	if c.Denylist == nil {
		c.Denylist = d.Denylist
	}

	if c.Transport == "" {
		c.Transport = d.Transport
	}

	if c.SSHPort == 0 {
		c.SSHPort = d.SSHPort
	}

	if c.SNMPPort == 0 {
		c.SNMPPort = d.SNMPPort
	}

	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = d.MaxConcurrency
	}

	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}

	if c.QueryTimeout == 0 {
		c.QueryTimeout = d.QueryTimeout
	}

	if c.InventoryFile == "" {
		c.InventoryFile = d.InventoryFile
	}

	if c.FilteredFile == "" {
		c.FilteredFile = d.FilteredFile
	}

	if c.ReportDir == "" {
		c.ReportDir = d.ReportDir
	}

	if c.ReportPolicy == "" {
		c.ReportPolicy = d.ReportPolicy
	}
}

// Validate implements Validator. Server entries are checked by RequireServers,
// since only the fetch pipeline needs them.
func (c *AuditConfig) Validate() error {
	if c.Username == "" || c.Password == "" {
		return ErrMissingCredentials
	}

	if err := c.ValidateRegions(); err != nil {
		return err
	}

	servers := make(map[models.Region]string, len(c.Servers))

	for r, host := range c.Servers {
		parsed, err := models.ParseRegion(string(r))
		if err != nil {
			return fmt.Errorf("servers: %w", err)
		}

		servers[parsed] = host
	}

	c.Servers = servers

	if c.MaxConcurrency < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidConcurrency, c.MaxConcurrency)
	}

	if c.Timeout < 0 || c.QueryTimeout < 0 {
		return ErrInvalidTimeout
	}

	switch c.Transport {
	case driver.TransportSSH:
	case driver.TransportSNMP:
		if c.SNMPCommunity == "" {
			return ErrMissingCommunity
		}
	default:
		return fmt.Errorf("%w: %q (expected %q or %q)",
			ErrInvalidTransport, c.Transport, driver.TransportSSH, driver.TransportSNMP)
	}

	if _, err := report.ParsePolicy(c.ReportPolicy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPolicy, err)
	}

	return nil
}

// ValidateRegions normalizes the configured regions and drops repeats, keeping
// the first occurrence. It is all the filter pipeline needs, since it never
// touches the network.
func (c *AuditConfig) ValidateRegions() error {
	if len(c.Regions) == 0 {
		return ErrNoRegions
	}

	regions := make([]models.Region, 0, len(c.Regions))
	seen := make(map[models.Region]bool, len(c.Regions))

	for _, r := range c.Regions {
		parsed, err := models.ParseRegion(string(r))
		if err != nil {
			return err
		}

		if seen[parsed] {
			continue
		}

		seen[parsed] = true
		regions = append(regions, parsed)
	}

	c.Regions = regions

	return nil
}

// RequireServers checks that every configured region has a monitoring server.
func (c *AuditConfig) RequireServers() error {
	for _, r := range c.Regions {
		if c.Servers[r] == "" {
			return fmt.Errorf("%w %s", ErrMissingServer, r)
		}
	}

	return nil
}

// Policy returns the parsed report policy. Call after Validate.
func (c *AuditConfig) Policy() report.Policy {
	p, err := report.ParsePolicy(c.ReportPolicy)
	if err != nil {
		return report.PolicySeparate
	}

	return p
}

// Credentials returns the device and monitoring credentials.
func (c *AuditConfig) Credentials() driver.Credentials {
	return driver.Credentials{
		Username:  c.Username,
		Password:  c.Password,
		Community: c.SNMPCommunity,
	}
}

// DriverOptions returns the transport settings for device drivers.
func (c *AuditConfig) DriverOptions() driver.Options {
	return driver.Options{
		Transport: c.Transport,
		SSHPort:   c.SSHPort,
		SNMPPort:  c.SNMPPort,
		Timeout:   time.Duration(c.Timeout),
	}
}

// FetcherConfig returns the inventory query settings.
func (c *AuditConfig) FetcherConfig() inventory.FetcherConfig {
	return inventory.FetcherConfig{
		Regions:        c.Regions,
		Servers:        c.Servers,
		VendorPattern:  c.VendorPattern,
		NameExclusions: c.NameExclusions,
	}
}

// SolarWinds returns the SWIS client settings for one monitoring server.
func (c *AuditConfig) SolarWinds(server string) solarwinds.Config {
	return solarwinds.Config{
		Server:    server,
		Port:      c.SWISPort,
		Username:  c.Username,
		Password:  c.Password,
		VerifyTLS: c.VerifyTLS,
		Timeout:   time.Duration(c.QueryTimeout),
	}
}
