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

package inventory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/carverauto/fleetaudit/pkg/models"
)

// CSV column names shared by the inventory, filtered inventory and report files.
const (
	ColDeviceName    = "Device Name"
	ColIPAddress     = "IP Address"
	ColSite          = "Site"
	ColManufacturer  = "Manufacturer"
	ColModel         = "Model"
	ColIOSVersion    = "IOS Version"
	ColRegion        = "Region"
	ColPolledVersion = "ios version"
	ColError         = "Error"
)

// InventoryColumns is the header of the fetched inventory.
func InventoryColumns() []string {
	return []string{ColDeviceName, ColIPAddress, ColSite, ColManufacturer, ColModel, ColIOSVersion, ColRegion}
}

// FilteredColumns is the header of the filtered inventory and the health report.
func FilteredColumns() []string {
	return append(InventoryColumns(), ColPolledVersion)
}

// FailureColumns is FilteredColumns plus the poll error.
func FailureColumns() []string {
	return append(FilteredColumns(), ColError)
}

func fieldValue(d *models.Device, column string) string {
	switch column {
	case ColDeviceName:
		return d.Name
	case ColIPAddress:
		return d.IPAddress
	case ColSite:
		return d.Site
	case ColManufacturer:
		return d.Manufacturer
	case ColModel:
		return d.Model
	case ColIOSVersion:
		return d.InventoryVersion
	case ColRegion:
		return string(d.Region)
	case ColPolledVersion:
		return d.Version
	case ColError:
		return d.Error
	default:
		return ""
	}
}

// Encode writes devices as CSV with the given columns. An empty slice yields a header-only file.
func Encode(w io.Writer, columns []string, devices []models.Device) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(columns); err != nil {
		return err
	}

	record := make([]string, len(columns))

	for i := range devices {
		for j, col := range columns {
			record[j] = fieldValue(&devices[i], col)
		}

		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteFile replaces path with the CSV encoding of devices. The file is written
// next to its destination and renamed, so readers never see a partial file.
func WriteFile(path string, columns []string, devices []models.Device) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = Encode(tmp, columns, devices); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

// WriteInventory writes the fetched inventory schema.
func WriteInventory(path string, devices []models.Device) error {
	return WriteFile(path, InventoryColumns(), devices)
}

// WriteFiltered writes the filtered schema, which adds an empty ios version column.
func WriteFiltered(path string, devices []models.Device) error {
	blank := make([]models.Device, len(devices))

	for i := range devices {
		blank[i] = devices[i]
		blank[i].Version = ""
		blank[i].Error = ""
	}

	return WriteFile(path, FilteredColumns(), blank)
}

var requiredColumns = []string{ColDeviceName, ColIPAddress, ColModel, ColRegion}

// Decode reads an inventory, filtered inventory or report. Columns are matched by
// header name, so their order does not matter and unknown columns are ignored.
func Decode(r io.Reader) ([]models.Device, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}

	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))

	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}

		index[strings.TrimSpace(name)] = i
	}

	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, col)
		}
	}

	get := func(record []string, col string) string {
		if i, ok := index[col]; ok && i < len(record) {
			return record[i]
		}

		return ""
	}

	devices := make([]models.Device, 0)

	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w at line %d: %w", ErrInvalidRow, line, err)
		}

		region, err := models.ParseRegion(get(record, ColRegion))
		if err != nil {
			return nil, fmt.Errorf("%w at line %d (%s): %w", ErrInvalidRow, line, get(record, ColDeviceName), err)
		}

		devices = append(devices, models.Device{
			Name:             get(record, ColDeviceName),
			IPAddress:        get(record, ColIPAddress),
			Site:             get(record, ColSite),
			Manufacturer:     get(record, ColManufacturer),
			Model:            get(record, ColModel),
			InventoryVersion: get(record, ColIOSVersion),
			Region:           region,
			Version:          get(record, ColPolledVersion),
			Error:            get(record, ColError),
		})
	}

	return devices, nil
}

// ReadInventory reads devices from a CSV file written by any of the pipelines.
func ReadInventory(path string) ([]models.Device, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory: %w", err)
	}
	defer f.Close()

	devices, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return devices, nil
}
