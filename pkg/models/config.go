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

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration is a time.Duration that unmarshals from "30s" style strings or nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// TLSConfig holds client certificate paths.
type TLSConfig struct {
	CertFile string `json:"cert_file"`
	KeyFile  string `json:"key_file"`
	CAFile   string `json:"ca_file"`
}

// SecurityConfig configures mTLS for outbound connections.
type SecurityConfig struct {
	Mode       string    `json:"mode"`
	CertDir    string    `json:"cert_dir"`
	ServerName string    `json:"server_name"`
	TLS        TLSConfig `json:"tls"`
}

// NATSConfig configures NATS connectivity for health event publishing.
type NATSConfig struct {
	URL      string          `json:"url"`
	Domain   string          `json:"domain,omitempty"`
	Stream   string          `json:"stream,omitempty"`
	Subject  string          `json:"subject,omitempty"`
	Security *SecurityConfig `json:"security,omitempty"`
}

// Enabled reports whether publishing was configured.
func (c *NATSConfig) Enabled() bool {
	return c != nil && c.URL != ""
}
