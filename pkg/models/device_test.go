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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegion(t *testing.T) {
	tests := []struct {
		input   string
		want    Region
		wantErr bool
	}{
		{input: "US", want: RegionUS},
		{input: "emea", want: RegionEMEA},
		{input: " APAC ", want: RegionAPAC},
		{input: "LATAM", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRegion(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownRegion)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPollResultRecord(t *testing.T) {
	dev := Device{Name: "rtr1", IPAddress: "10.0.0.1", Region: RegionUS}

	ok := &PollResult{Device: dev, Status: PollStatusSuccess, Version: "Version 17.3.4a"}
	rec := ok.Record()
	assert.Equal(t, "Version 17.3.4a", rec.Version)
	assert.Empty(t, rec.Error)

	failed := &PollResult{Device: dev, Status: PollStatusFailed, Err: errors.New("dial tcp: i/o timeout")}
	rec = failed.Record()
	assert.Empty(t, rec.Version)
	assert.Equal(t, "dial tcp: i/o timeout", rec.Error)

	// A failed result without an error value still carries an error marker.
	bare := &PollResult{Device: dev, Status: PollStatusFailed}
	assert.NotEmpty(t, bare.Record().Error)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Duration
		wantErr  bool
	}{
		{name: "string duration", input: `"5s"`, expected: Duration(5 * time.Second)},
		{name: "numeric duration (nanoseconds)", input: `5000000000`, expected: Duration(5 * time.Second)},
		{name: "invalid duration string", input: `"soon"`, wantErr: true},
		{name: "invalid type", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration

			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}
