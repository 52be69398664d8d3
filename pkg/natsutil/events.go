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

// Package natsutil publishes fleetaudit events to NATS JetStream.
package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/fleetaudit/pkg/logger"
	"github.com/carverauto/fleetaudit/pkg/models"
)

const (
	// DefaultStream is the JetStream stream health events are stored in.
	DefaultStream = "fleetaudit"
	// DeviceHealthSubject is the subject device health events are published on.
	DeviceHealthSubject = "events.devices.health"
	// DeviceHealthEventType is the CloudEvents type of a device health event.
	DeviceHealthEventType = "com.carverauto.fleetaudit.device.health"

	defaultStreamSubjects = "events.devices.*"
	eventSource           = "fleetaudit/poller"
)

// JetStreamPublisher is the subset of jetstream.JetStream used to publish events.
type JetStreamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// EventPublisher provides methods for publishing CloudEvents to NATS JetStream.
type EventPublisher struct {
	js      JetStreamPublisher
	stream  string
	subject string
	now     func() time.Time
	logger  logger.Logger
}

// PublishSummary counts the outcome of publishing a batch of results.
type PublishSummary struct {
	Published int
	Failed    int
}

// NewEventPublisher creates a new EventPublisher for the specified stream and subject.
func NewEventPublisher(js JetStreamPublisher, streamName, subject string, log logger.Logger) *EventPublisher {
	if subject == "" {
		subject = DeviceHealthSubject
	}

	return &EventPublisher{
		js:      js,
		stream:  streamName,
		subject: subject,
		now:     time.Now,
		logger:  log,
	}
}

// Subject returns the subject events are published on.
func (p *EventPublisher) Subject() string {
	return p.subject
}

// PublishDeviceHealth publishes the outcome of one device poll.
func (p *EventPublisher) PublishDeviceHealth(ctx context.Context, runID string, result *models.PollResult) error {
	ts := p.now().UTC()

	event := models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            DeviceHealthEventType,
		DataContentType: "application/json",
		Subject:         p.subject,
		Time:            &ts,
		Data:            models.NewDeviceHealthEventData(runID, result, ts),
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal device health event: %w", err)
	}

	ack, err := p.js.Publish(ctx, event.Subject, eventBytes, jetstream.WithMsgID(event.ID))
	if err != nil {
		return fmt.Errorf("failed to publish device health event: %w", err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("subject", event.Subject).
		Uint64("seq", ack.Sequence).
		Msg("Published device health event")

	return nil
}

// PublishResults publishes every result. Failures are logged and counted, never returned.
func (p *EventPublisher) PublishResults(ctx context.Context, runID string, results []models.PollResult) PublishSummary {
	var summary PublishSummary

	for i := range results {
		if err := p.PublishDeviceHealth(ctx, runID, &results[i]); err != nil {
			summary.Failed++

			p.logger.Warn().
				Err(err).
				Str("device", results[i].Device.Name).
				Msg("Failed to publish device health event")

			continue
		}

		summary.Published++
	}

	p.logger.Info().
		Str("run_id", runID).
		Int("published", summary.Published).
		Int("failed", summary.Failed).
		Msg("Published device health events")

	return summary
}

// Connect dials NATS with cfg, ensures the stream exists and returns a publisher.
// The caller owns the returned connection.
func Connect(ctx context.Context, cfg *models.NATSConfig, log logger.Logger) (*EventPublisher, *nats.Conn, error) {
	if !cfg.Enabled() {
		return nil, nil, ErrNATSNotConfigured
	}

	nc, err := ConnectWithSecurity(ctx, cfg.URL, cfg.Security, log)
	if err != nil {
		return nil, nil, err
	}

	stream := cfg.Stream
	if stream == "" {
		stream = DefaultStream
	}

	subject := cfg.Subject
	if subject == "" {
		subject = DeviceHealthSubject
	}

	publisher, err := CreateEventPublisherWithDomain(ctx, nc, cfg.Domain, stream, subject, log)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	return publisher, nc, nil
}

// ConnectWithSecurity creates a NATS connection with security configuration.
func ConnectWithSecurity(_ context.Context, natsURL string, security *models.SecurityConfig, log logger.Logger) (*nats.Conn, error) {
	opts := []nats.Option{nats.Name("fleetaudit")}

	if security != nil && security.Mode != "" && security.Mode != "none" {
		tlsConf, err := TLSConfig(security)
		if err != nil {
			return nil, fmt.Errorf("failed to build NATS TLS config: %w", err)
		}

		opts = append(opts, nats.Secure(tlsConf))
	}

	opts = append(opts,
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
		nats.ConnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("Connected to NATS")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)

	nc, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return nc, nil
}

// CreateEventPublisherWithDomain creates an EventPublisher with optional NATS domain support.
func CreateEventPublisherWithDomain(
	ctx context.Context, nc *nats.Conn, domain, streamName, subject string, log logger.Logger) (*EventPublisher, error) {
	var js jetstream.JetStream

	var err error

	if domain != "" {
		js, err = jetstream.NewWithDomain(nc, domain)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream context with domain %s: %w", domain, err)
		}
	} else {
		js, err = jetstream.New(nc)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream context: %w", err)
		}
	}

	if err := ensureStream(ctx, js, streamName, subject, log); err != nil {
		return nil, err
	}

	return NewEventPublisher(js, streamName, subject, log), nil
}

func ensureStream(ctx context.Context, js jetstream.JetStream, name, subject string, log logger.Logger) error {
	stream, err := js.Stream(ctx, name)
	if err != nil {
		if !isStreamMissingErr(err) {
			return fmt.Errorf("failed to look up stream %s: %w", name, err)
		}

		_, err = js.CreateStream(ctx, jetstream.StreamConfig{
			Name:     name,
			Subjects: ensureSubjectList([]string{defaultStreamSubjects}, subject),
		})
		if err != nil {
			return fmt.Errorf("failed to create stream %s: %w", name, err)
		}

		log.Info().Str("stream", name).Msg("Created NATS JetStream stream")

		return nil
	}

	cfg := stream.CachedInfo().Config

	subjects := ensureSubjectList(cfg.Subjects, subject)
	if len(subjects) == len(cfg.Subjects) {
		return nil
	}

	cfg.Subjects = subjects

	if _, err := js.UpdateStream(ctx, cfg); err != nil {
		return fmt.Errorf("failed to add subject %s to stream %s: %w", subject, name, err)
	}

	log.Info().Str("stream", name).Str("subject", subject).Msg("Added subject to NATS JetStream stream")

	return nil
}

// ensureSubjectList appends subject unless an existing pattern already covers it.
func ensureSubjectList(subjects []string, subject string) []string {
	for _, pattern := range subjects {
		if matchesSubject(pattern, subject) {
			return subjects
		}
	}

	return append(subjects, subject)
}

// matchesSubject reports whether a NATS subject pattern (with * and > wildcards) matches subject.
func matchesSubject(pattern, subject string) bool {
	patternTokens := strings.Split(pattern, ".")
	subjectTokens := strings.Split(subject, ".")

	for i, token := range patternTokens {
		if token == ">" {
			return len(subjectTokens) > i
		}

		if i >= len(subjectTokens) {
			return false
		}

		if token != "*" && token != subjectTokens[i] {
			return false
		}
	}

	return len(patternTokens) == len(subjectTokens)
}

func isStreamMissingErr(err error) bool {
	return errors.Is(err, jetstream.ErrStreamNotFound) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrStreamNotFound) ||
		errors.Is(err, nats.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrNoResponders)
}
