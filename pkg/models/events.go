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

package models

import "time"

// CloudEvent represents a CloudEvents v1.0 envelope.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// DeviceHealthEventData is the payload of a device health event.
type DeviceHealthEventData struct {
	RunID      string     `json:"run_id"`
	DeviceName string     `json:"device_name"`
	IPAddress  string     `json:"ip_address"`
	Site       string     `json:"site"`
	Model      string     `json:"model"`
	Region     Region     `json:"region"`
	Family     string     `json:"family"`
	Status     PollStatus `json:"status"`
	Version    string     `json:"version,omitempty"`
	Error      string     `json:"error,omitempty"`
	DurationMs int64      `json:"duration_ms"`
	Timestamp  time.Time  `json:"timestamp"`
}

// NewDeviceHealthEventData builds the event payload for a poll result.
func NewDeviceHealthEventData(runID string, r *PollResult, ts time.Time) DeviceHealthEventData {
	rec := r.Record()

	return DeviceHealthEventData{
		RunID:      runID,
		DeviceName: rec.Name,
		IPAddress:  rec.IPAddress,
		Site:       rec.Site,
		Model:      rec.Model,
		Region:     rec.Region,
		Family:     r.Family,
		Status:     r.Status,
		Version:    rec.Version,
		Error:      rec.Error,
		DurationMs: r.Duration.Milliseconds(),
		Timestamp:  ts,
	}
}
