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

package solarwinds

import (
	"encoding/json"
	"fmt"
	"time"
)

// NullText is the text of a column that SWIS returned as JSON null.
const NullText = "None"

// Row is a single SWQL result row keyed by column name.
type Row map[string]any

// String returns the column as a string. A null column reads as NullText and a
// missing one as "".
func (r Row) String(column string) string {
	v, ok := r[column]
	if !ok {
		return ""
	}

	switch v := v.(type) {
	case nil:
		return NullText
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Config holds the connection settings for one SolarWinds Information Service endpoint.
type Config struct {
	Server    string
	Port      int
	Username  string
	Password  string `sensitive:"true"`
	VerifyTLS bool
	Timeout   time.Duration
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Results *[]Row `json:"results"`
}
