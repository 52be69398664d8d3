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

// Package inventory fetches, filters and stores the device inventory.
package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/carverauto/fleetaudit/pkg/inventory/solarwinds"
	"github.com/carverauto/fleetaudit/pkg/logger"
	"github.com/carverauto/fleetaudit/pkg/models"
)

const (
	DefaultVendorPattern = "Cisco"

	nodeColumns = "DisplayName, IP_address, MachineType, IOSversion, Vendor, location"
)

// DefaultNameExclusions returns the DisplayName patterns excluded from the inventory query.
func DefaultNameExclusions() []string {
	return []string{"R-NBLX"}
}

// BuildQuery returns the SWQL statement selecting the nodes of one vendor, minus
// any whose DisplayName contains one of the exclusions.
func BuildQuery(vendor string, nameExclusions []string) string {
	var b strings.Builder

	b.WriteString("SELECT ")
	b.WriteString(nodeColumns)
	b.WriteString(" FROM Orion.Nodes where Vendor like '%")
	b.WriteString(quoteSWQL(vendor))
	b.WriteString("%'")

	for _, excl := range nameExclusions {
		if excl == "" {
			continue
		}

		b.WriteString(" and DisplayName not like '%")
		b.WriteString(quoteSWQL(excl))
		b.WriteString("%'")
	}

	b.WriteString(" order by DisplayName asc")

	return b.String()
}

func quoteSWQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// NormalizeRow converts one Orion.Nodes row into an inventory record for region.
func NormalizeRow(row solarwinds.Row, region models.Region) models.Device {
	version := firstSegment(row.String("IOSversion"), ",")
	if version == "" {
		version = models.NoVersion
	}

	return models.Device{
		Name:             firstSegment(row.String("DisplayName"), "."),
		IPAddress:        row.String("IP_address"),
		Site:             strings.TrimSpace(firstSegment(row.String("location"), "/")),
		Manufacturer:     row.String("Vendor"),
		Model:            row.String("MachineType"),
		InventoryVersion: version,
		Region:           region,
	}
}

func firstSegment(s, sep string) string {
	before, _, _ := strings.Cut(s, sep)
	return before
}

// FetchObserver receives progress callbacks while a fetch runs.
type FetchObserver interface {
	RegionStarted(region models.Region, server string)
	RegionFetched(region models.Region, devices []models.Device)
}

type nopObserver struct{}

func (nopObserver) RegionStarted(models.Region, string)          {}
func (nopObserver) RegionFetched(models.Region, []models.Device) {}

// FetcherConfig selects the regions and query used by a Fetcher.
type FetcherConfig struct {
	Regions        []models.Region
	Servers        map[models.Region]string
	VendorPattern  string
	NameExclusions []string
}

// Fetcher pulls the device inventory from every configured region.
type Fetcher struct {
	config     FetcherConfig
	newQuerier QuerierFactory
	observer   FetchObserver
	logger     logger.Logger
}

// NewFetcher returns a Fetcher. A nil observer is replaced by a no-op.
func NewFetcher(cfg FetcherConfig, newQuerier QuerierFactory, observer FetchObserver, log logger.Logger) *Fetcher {
	if cfg.VendorPattern == "" {
		cfg.VendorPattern = DefaultVendorPattern
	}

	if cfg.NameExclusions == nil {
		cfg.NameExclusions = DefaultNameExclusions()
	}

	if observer == nil {
		observer = nopObserver{}
	}

	return &Fetcher{
		config:     cfg,
		newQuerier: newQuerier,
		observer:   observer,
		logger:     log,
	}
}

// Query returns the SWQL statement sent to every region.
func (f *Fetcher) Query() string {
	return BuildQuery(f.config.VendorPattern, f.config.NameExclusions)
}

// Fetch runs one query per region in order and concatenates the normalized rows.
// Any failure aborts the fetch and nothing is returned.
func (f *Fetcher) Fetch(ctx context.Context) ([]models.Device, error) {
	if f.newQuerier == nil {
		return nil, errNoQuerierSetup
	}

	query := f.Query()

	var devices []models.Device

	for _, region := range f.config.Regions {
		server := f.config.Servers[region]
		if server == "" {
			return nil, fmt.Errorf("%w %s", errMissingServer, region)
		}

		f.observer.RegionStarted(region, server)

		regionDevices, err := f.fetchRegion(ctx, region, server, query)
		if err != nil {
			return nil, err
		}

		f.logger.Info().
			Str("region", string(region)).
			Str("server", server).
			Int("devices", len(regionDevices)).
			Msg("Fetched region inventory")

		f.observer.RegionFetched(region, regionDevices)

		devices = append(devices, regionDevices...)
	}

	return devices, nil
}

func (f *Fetcher) fetchRegion(ctx context.Context, region models.Region, server, query string) ([]models.Device, error) {
	q, err := f.newQuerier(server)
	if err != nil {
		return nil, fmt.Errorf("%w: region %s (%s): %w", ErrQueryFailed, region, server, err)
	}

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: region %s (%s): %w", ErrQueryFailed, region, server, err)
	}

	devices := make([]models.Device, 0, len(rows))

	for _, row := range rows {
		devices = append(devices, NormalizeRow(row, region))
	}

	return devices, nil
}
