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
	"sort"
	"strings"

	"github.com/carverauto/fleetaudit/pkg/models"
)

// DefaultDenylist returns the model substrings of platforms the health poll cannot audit.
func DefaultDenylist() []string {
	return []string{
		"Cisco Unified Communications Manager",
		"WLC",
		"Wireless",
		"Air",
		"AIR",
		"WsSvcFwm1sc",
		"ASA",
	}
}

// Filter returns the rows of region whose model contains none of the denylist
// substrings, sorted by device name. Matching is case-sensitive and rows is not modified.
func Filter(rows []models.Device, region models.Region, denylist []string) []models.Device {
	out := make([]models.Device, 0)

	for i := range rows {
		if rows[i].Region != region || Denied(rows[i].Model, denylist) {
			continue
		}

		out = append(out, rows[i])
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out
}

// FilterAll applies Filter to each region in order and concatenates the results.
func FilterAll(rows []models.Device, regions []models.Region, denylist []string) []models.Device {
	out := make([]models.Device, 0, len(rows))

	for _, region := range regions {
		out = append(out, Filter(rows, region, denylist)...)
	}

	return out
}

// Denied reports whether model contains any of the denylist substrings.
func Denied(model string, denylist []string) bool {
	for _, d := range denylist {
		if d != "" && strings.Contains(model, d) {
			return true
		}
	}

	return false
}
