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

package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/fleetaudit/pkg/logger"
	"github.com/carverauto/fleetaudit/pkg/models"
)

var errTestFixture = errors.New("fixture error")

func TestEnsureSubjectList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		subjects []string
		subject  string
		want     []string
	}{
		{
			name:     "adds subject when list empty",
			subjects: nil,
			subject:  DeviceHealthSubject,
			want:     []string{DeviceHealthSubject},
		},
		{
			name:     "keeps list when wildcard matches",
			subjects: []string{"events.devices.*"},
			subject:  DeviceHealthSubject,
			want:     []string{"events.devices.*"},
		},
		{
			name:     "keeps list when greater wildcard matches",
			subjects: []string{"events.>"},
			subject:  DeviceHealthSubject,
			want:     []string{"events.>"},
		},
		{
			name:     "appends when unmatched",
			subjects: []string{"events.poller.*"},
			subject:  DeviceHealthSubject,
			want:     []string{"events.poller.*", DeviceHealthSubject},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result := ensureSubjectList(append([]string(nil), tc.subjects...), tc.subject)

			if len(result) != len(tc.want) {
				t.Fatalf("expected %d subjects, got %d", len(tc.want), len(result))
			}

			for i := range tc.want {
				if tc.want[i] != result[i] {
					t.Fatalf("result[%d] = %q, want %q", i, result[i], tc.want[i])
				}
			}
		})
	}
}

func TestMatchesSubject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pattern  string
		subject  string
		expected bool
	}{
		{"exact match", "events.devices.health", "events.devices.health", true},
		{"single wildcard", "events.*.health", "events.devices.health", true},
		{"greater wildcard", "events.>", "events.devices.health", true},
		{"greater wildcard needs a token", "events.devices.health.>", "events.devices.health", false},
		{"no match length", "events.*", "events.devices.health", false},
		{"no match tokens", "logs.syslog.*", "events.devices.health", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := matchesSubject(tc.pattern, tc.subject); got != tc.expected {
				t.Fatalf("matchesSubject(%q, %q) = %t, want %t", tc.pattern, tc.subject, got, tc.expected)
			}
		})
	}
}

func TestIsStreamMissingErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"jetstream no stream response", jetstream.ErrNoStreamResponse, true},
		{"jetstream stream not found", jetstream.ErrStreamNotFound, true},
		{"nats no stream response", nats.ErrNoStreamResponse, true},
		{"nats stream not found", nats.ErrStreamNotFound, true},
		{"nats no responders", nats.ErrNoResponders, true},
		{"other error", errTestFixture, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := isStreamMissingErr(tc.err); got != tc.expected {
				t.Fatalf("isStreamMissingErr(%v) = %t, want %t", tc.err, got, tc.expected)
			}
		})
	}
}

type publishedMsg struct {
	subject string
	payload []byte
}

type fakeJetStream struct {
	mu       sync.Mutex
	msgs     []publishedMsg
	failFor  string
	sequence uint64
}

func (f *fakeJetStream) Publish(_ context.Context, subject string, payload []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failFor != "" && json.Valid(payload) {
		var event struct {
			Data models.DeviceHealthEventData `json:"data"`
		}

		if err := json.Unmarshal(payload, &event); err == nil && event.Data.DeviceName == f.failFor {
			return nil, nats.ErrNoResponders
		}
	}

	f.sequence++
	f.msgs = append(f.msgs, publishedMsg{subject: subject, payload: payload})

	return &jetstream.PubAck{Stream: DefaultStream, Sequence: f.sequence}, nil
}

func testResults() []models.PollResult {
	return []models.PollResult{
		{
			Device:   models.Device{Name: "core-sw-01", IPAddress: "10.0.0.1", Model: "Catalyst 9300", Region: models.RegionUS},
			Family:   "IOS",
			Status:   models.PollStatusSuccess,
			Version:  "Version 17.3.4a",
			Duration: 1500 * time.Millisecond,
		},
		{
			Device: models.Device{Name: "edge-rtr-01", IPAddress: "10.0.0.3", Model: "ISR4451", Region: models.RegionEMEA},
			Family: "IOS",
			Status: models.PollStatusFailed,
			Err:    errTestFixture,
		},
	}
}

type healthEvent struct {
	models.CloudEvent
	Data models.DeviceHealthEventData `json:"data"`
}

func TestPublishDeviceHealth(t *testing.T) {
	js := &fakeJetStream{}
	publisher := NewEventPublisher(js, DefaultStream, "", logger.NewTestLogger())
	publisher.now = func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) }

	results := testResults()

	require.NoError(t, publisher.PublishDeviceHealth(context.Background(), "run-1", &results[0]))
	require.NoError(t, publisher.PublishDeviceHealth(context.Background(), "run-1", &results[1]))
	require.Len(t, js.msgs, 2)

	var event healthEvent

	require.NoError(t, json.Unmarshal(js.msgs[0].payload, &event))

	assert.Equal(t, DeviceHealthSubject, js.msgs[0].subject)
	assert.Equal(t, "1.0", event.SpecVersion)
	assert.Equal(t, DeviceHealthEventType, event.Type)
	assert.Equal(t, DeviceHealthSubject, event.Subject)
	assert.Equal(t, "application/json", event.DataContentType)

	_, err := uuid.Parse(event.ID)
	require.NoError(t, err)

	assert.Equal(t, "run-1", event.Data.RunID)
	assert.Equal(t, "core-sw-01", event.Data.DeviceName)
	assert.Equal(t, models.PollStatusSuccess, event.Data.Status)
	assert.Equal(t, "Version 17.3.4a", event.Data.Version)
	assert.Equal(t, int64(1500), event.Data.DurationMs)
	assert.True(t, event.Data.Timestamp.Equal(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)))

	var failed healthEvent

	require.NoError(t, json.Unmarshal(js.msgs[1].payload, &failed))
	assert.NotEqual(t, event.ID, failed.ID)
	assert.Equal(t, models.PollStatusFailed, failed.Data.Status)
	assert.Equal(t, errTestFixture.Error(), failed.Data.Error)
	assert.Empty(t, failed.Data.Version)
	assert.NotContains(t, string(js.msgs[1].payload), `"version"`)
}

func TestPublishResults_CountsFailures(t *testing.T) {
	js := &fakeJetStream{failFor: "edge-rtr-01"}
	publisher := NewEventPublisher(js, DefaultStream, "fleet.health", logger.NewTestLogger())

	summary := publisher.PublishResults(context.Background(), "run-2", testResults())

	assert.Equal(t, PublishSummary{Published: 1, Failed: 1}, summary)
	require.Len(t, js.msgs, 1)
	assert.Equal(t, "fleet.health", js.msgs[0].subject)
	assert.Equal(t, "fleet.health", publisher.Subject())
}

func TestConnect_NotConfigured(t *testing.T) {
	_, _, err := Connect(context.Background(), &models.NATSConfig{}, logger.NewTestLogger())
	require.ErrorIs(t, err, ErrNATSNotConfigured)

	_, _, err = Connect(context.Background(), nil, logger.NewTestLogger())
	require.ErrorIs(t, err, ErrNATSNotConfigured)
}
