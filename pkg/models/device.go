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

// Package models provides the data models shared by the fleetaudit pipelines.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Region is the monitoring region a device is managed from.
type Region string

const (
	RegionUS   Region = "US"
	RegionEMEA Region = "EMEA"
	RegionAPAC Region = "APAC"
)

// AllRegions returns the supported regions in processing order.
func AllRegions() []Region {
	return []Region{RegionUS, RegionEMEA, RegionAPAC}
}

// ParseRegion converts a region tag into a Region. Matching is case-insensitive.
func ParseRegion(s string) (Region, error) {
	for _, r := range AllRegions() {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownRegion, s)
}

// NoVersion is written to the inventory when the monitoring system has no version for a node.
const NoVersion = "None"

// Device is a single row of the device inventory.
type Device struct {
	Name             string `json:"device_name"`
	IPAddress        string `json:"ip_address"`
	Site             string `json:"site"`
	Manufacturer     string `json:"manufacturer"`
	Model            string `json:"model"`
	InventoryVersion string `json:"inventory_version"`
	Region           Region `json:"region"`

	// Version is filled in by the health poll.
	Version string `json:"version,omitempty"`
	// Error is set only when the health poll failed.
	Error string `json:"error,omitempty"`
}

// PollStatus is the outcome of polling one device.
type PollStatus string

const (
	PollStatusSuccess PollStatus = "success"
	PollStatusFailed  PollStatus = "failed"
)

// PollResult is the outcome of a single device health poll.
type PollResult struct {
	Device   Device        `json:"device"`
	Family   string        `json:"family"`
	Driver   string        `json:"driver"`
	Command  string        `json:"command"`
	Status   PollStatus    `json:"status"`
	Version  string        `json:"version,omitempty"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether the poll produced a version.
func (r *PollResult) Succeeded() bool {
	return r.Status == PollStatusSuccess
}

// Record returns the device row with the poll outcome applied.
// Exactly one of Version and Error is set on the returned device.
func (r *PollResult) Record() Device {
	d := r.Device

	if r.Succeeded() {
		d.Version = r.Version
		d.Error = ""

		return d
	}

	d.Version = ""
	d.Error = "unknown error"

	if r.Err != nil {
		d.Error = r.Err.Error()
	}

	return d
}
