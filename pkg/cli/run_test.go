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
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/fleetaudit/pkg/config"
	"github.com/carverauto/fleetaudit/pkg/driver"
	"github.com/carverauto/fleetaudit/pkg/inventory"
	"github.com/carverauto/fleetaudit/pkg/inventory/solarwinds"
	"github.com/carverauto/fleetaudit/pkg/logger"
	"github.com/carverauto/fleetaudit/pkg/models"
	"github.com/carverauto/fleetaudit/pkg/natsutil"
	"github.com/carverauto/fleetaudit/pkg/report"
)

var (
	runDate        = time.Date(2024, time.March, 5, 9, 30, 0, 0, time.UTC)
	errConnRefused = errors.New("dial tcp 10.1.0.1:22: connect: connection refused")
)

func node(name, ip, model, version, location string) solarwinds.Row {
	return solarwinds.Row{
		"DisplayName": name,
		"IP_address":  ip,
		"MachineType": model,
		"IOSversion":  version,
		"Vendor":      "Cisco",
		"location":    location,
	}
}

func testAuditConfig(t *testing.T) config.AuditConfig {
	t.Helper()

	dir := t.TempDir()

	cfg := config.DefaultAuditConfig()
	cfg.Username = "netops"
	cfg.Password = "s3cret"
	cfg.Regions = []models.Region{models.RegionUS, models.RegionEMEA}
	cfg.Servers = map[models.Region]string{
		models.RegionUS:   "npm-us.example.com",
		models.RegionEMEA: "npm-emea.example.com",
	}
	cfg.InventoryFile = filepath.Join(dir, config.DefaultInventoryFile)
	cfg.FilteredFile = filepath.Join(dir, config.DefaultFilteredFile)
	cfg.ReportDir = dir
	cfg.MaxConcurrency = 2

	require.NoError(t, cfg.Validate())

	return cfg
}

func newTestRuntime(out *bytes.Buffer) *Runtime {
	rt := NewRuntime(out, logger.NewTestLogger())
	rt.Now = func() time.Time { return runDate }

	return rt
}

func mockQueriers(ctrl *gomock.Controller, rows map[string][]solarwinds.Row, errs map[string]error) inventory.QuerierFactory {
	return func(server string) (inventory.Querier, error) {
		q := inventory.NewMockQuerier(ctrl)
		q.EXPECT().Query(gomock.Any(), gomock.Any()).Return(rows[server], errs[server])

		return q, nil
	}
}

type recordingPublisher struct {
	mu      sync.Mutex
	runID   string
	results []models.PollResult
}

func (p *recordingPublisher) PublishResults(_ context.Context, runID string, results []models.PollResult) natsutil.PublishSummary {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.runID = runID
	p.results = append(p.results, results...)

	return natsutil.PublishSummary{Published: len(results)}
}

func expectHealthy(factory *driver.MockFactory, d *driver.MockDriver, name, ip, command, output string) {
	factory.EXPECT().New(name, ip, driver.Credentials{Username: "netops", Password: "s3cret"}).Return(d, nil)
	d.EXPECT().Open(gomock.Any()).Return(nil)
	d.EXPECT().CLI(gomock.Any(), []string{command}).Return(map[string]string{command: output}, nil)
	d.EXPECT().Close().Return(nil)
}

// Three supported devices across two regions, one unreachable.
func TestRunAll_EndToEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := testAuditConfig(t)

	queriers := mockQueriers(ctrl, map[string][]solarwinds.Row{
		"npm-us.example.com": {
			node("us-sw-02.corp.example.com", "10.0.0.2", "Catalyst 9300-48P", "17.3.4a, RELEASE SOFTWARE", "NYC-DC1 / Rack 4"),
			node("us-nx-01.corp.example.com", "10.0.0.1", "Cisco Nexus 9396PX", "9.3(8)", "NYC-DC1/Row 2"),
		},
		"npm-emea.example.com": {
			node("emea-wlc-01", "10.1.0.9", "Cisco WLC 9800", "", "LON"),
			node("emea-rtr-01", "10.1.0.1", "ISR4451-X/K9", "", "LON-HQ"),
		},
	}, nil)

	factory := driver.NewMockFactory(ctrl)

	expectHealthy(factory, driver.NewMockDriver(ctrl), driver.NameNXOS, "10.0.0.1", "show ver | inc NX-OS",
		"Cisco Nexus Operating System (NX-OS) Software\n")
	expectHealthy(factory, driver.NewMockDriver(ctrl), driver.NameIOS, "10.0.0.2", "show ver | inc IOS XE",
		"Cisco IOS XE Software, Version 17.3.4a, RELEASE SOFTWARE (fc3)\n")

	down := driver.NewMockDriver(ctrl)
	factory.EXPECT().New(driver.NameIOS, "10.1.0.1", gomock.Any()).Return(down, nil)
	down.EXPECT().Open(gomock.Any()).Return(errConnRefused)
	down.EXPECT().Close().Return(nil)

	publisher := &recordingPublisher{}

	var out bytes.Buffer

	rt := newTestRuntime(&out)
	rt.Queriers = queriers
	rt.Drivers = factory
	rt.Publisher = publisher

	require.NoError(t, rt.RunAll(context.Background(), &cfg))

	fetched, err := inventory.ReadInventory(cfg.InventoryFile)
	require.NoError(t, err)
	require.Len(t, fetched, 4)
	assert.Equal(t, "us-sw-02", fetched[0].Name)
	assert.Equal(t, "NYC-DC1", fetched[0].Site)
	assert.Equal(t, "17.3.4a", fetched[0].InventoryVersion)
	assert.Equal(t, models.NoVersion, fetched[3].InventoryVersion)

	filtered, err := inventory.ReadInventory(cfg.FilteredFile)
	require.NoError(t, err)
	require.Len(t, filtered, 3)
	assert.Equal(t, []string{"us-nx-01", "us-sw-02", "emea-rtr-01"},
		[]string{filtered[0].Name, filtered[1].Name, filtered[2].Name})

	rows, err := inventory.ReadInventory(filepath.Join(cfg.ReportDir, "report 05-Mar-2024.csv"))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "us-nx-01", rows[0].Name)
	assert.Equal(t, "Cisco Nexus", rows[0].Version)
	assert.Equal(t, "us-sw-02", rows[1].Name)
	assert.Equal(t, "Version 17.3.4a", rows[1].Version)

	failures, err := inventory.ReadInventory(filepath.Join(cfg.ReportDir, "report 05-Mar-2024 failures.csv"))
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "emea-rtr-01", failures[0].Name)
	assert.Equal(t, models.RegionEMEA, failures[0].Region)
	assert.Empty(t, failures[0].Version)
	assert.Contains(t, failures[0].Error, "connection refused")

	assert.Len(t, publisher.results, 3)
	assert.NotEmpty(t, publisher.runID)

	console := out.String()
	assert.Contains(t, console, "Querying US devices from Orion NPM server npm-us.example.com...")
	assert.Contains(t, console, "✅ Successfully fetched and copied Hostname: us-sw-02 | IP Address: 10.0.0.2 | Model: Catalyst 9300-48P | IOS Version: 17.3.4a | Region: US")
	assert.Contains(t, console, "EMEA device count: 2")
	assert.Contains(t, console, "####### PROCESSING EMEA #######")
	assert.Contains(t, console, "✅ us-nx-01 :: Cisco Nexus")
	assert.Contains(t, console, "❌ emea-rtr-01 :: "+errConnRefused.Error())
	assert.Contains(t, console, "report 05-Mar-2024.csv - Successfully generated!")
}

func TestRunFetch_RegionFailureWritesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := testAuditConfig(t)

	var out bytes.Buffer

	rt := newTestRuntime(&out)
	rt.Queriers = mockQueriers(ctrl,
		map[string][]solarwinds.Row{"npm-us.example.com": {node("us-sw-01", "10.0.0.1", "Catalyst 9300", "17.3.4a", "NYC")}},
		map[string]error{"npm-emea.example.com": errors.New("401 Unauthorized")})

	err := rt.RunFetch(context.Background(), &cfg)
	require.ErrorIs(t, err, errFetchFailed)
	require.ErrorIs(t, err, inventory.ErrQueryFailed)
	assert.Contains(t, err.Error(), "EMEA")

	_, statErr := os.Stat(cfg.InventoryFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunFilter_Idempotent(t *testing.T) {
	cfg := testAuditConfig(t)

	require.NoError(t, inventory.WriteInventory(cfg.InventoryFile, []models.Device{
		{Name: "us-b", IPAddress: "10.0.0.2", Model: "Catalyst 9300", Region: models.RegionUS},
		{Name: "us-asa", IPAddress: "10.0.0.5", Model: "ASA5516", Region: models.RegionUS},
		{Name: "us-a", IPAddress: "10.0.0.1", Model: "ISR4451", Region: models.RegionUS},
		{Name: "apac-a", IPAddress: "10.2.0.1", Model: "ISR4451", Region: models.RegionAPAC},
	}))

	var out bytes.Buffer

	rt := newTestRuntime(&out)
	require.NoError(t, rt.RunFilter(context.Background(), &cfg))

	first, err := os.ReadFile(cfg.FilteredFile)
	require.NoError(t, err)

	// filtering the filtered output changes nothing
	again := cfg
	again.InventoryFile = cfg.FilteredFile
	again.FilteredFile = filepath.Join(t.TempDir(), "again.csv")
	require.NoError(t, rt.RunFilter(context.Background(), &again))

	second, err := os.ReadFile(again.FilteredFile)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	devices, err := inventory.ReadInventory(cfg.FilteredFile)
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "us-a", devices[0].Name)
	assert.Equal(t, "us-b", devices[1].Name)

	assert.Contains(t, out.String(), "####### PROCESSING US #######")
	assert.Contains(t, out.String(), "Getting supported devices from "+cfg.InventoryFile+"...")
}

func TestRunPoll_EmptyRegionWritesHeaderOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := testAuditConfig(t)
	require.NoError(t, inventory.WriteInventory(cfg.InventoryFile, nil))

	var out bytes.Buffer

	rt := newTestRuntime(&out)
	rt.Drivers = driver.NewMockFactory(ctrl)
	rt.Publisher = &recordingPublisher{}

	require.NoError(t, rt.RunPoll(context.Background(), &cfg))

	body, err := os.ReadFile(filepath.Join(cfg.ReportDir, report.FileName(runDate)))
	require.NoError(t, err)
	assert.Equal(t, "Device Name,IP Address,Site,Manufacturer,Model,IOS Version,Region,ios version\n", string(body))
}

func TestRunPoll_MissingInventory(t *testing.T) {
	cfg := testAuditConfig(t)

	var out bytes.Buffer

	err := newTestRuntime(&out).RunPoll(context.Background(), &cfg)
	require.ErrorIs(t, err, errReadInventory)
}

func TestDispatch_Unknown(t *testing.T) {
	cfg := testAuditConfig(t)

	var out bytes.Buffer

	err := newTestRuntime(&out).Dispatch(context.Background(), "reboot", &cfg)
	require.ErrorIs(t, err, ErrUsage)
}
