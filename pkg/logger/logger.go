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

// Package logger provides JSON structured logging using zerolog
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

//nolint:gochecknoglobals // process-wide logger configured once by Init
var globalLogger zerolog.Logger

type Config struct {
	Level      string     `json:"level"`
	Debug      bool       `json:"debug"`
	Output     string     `json:"output"`
	TimeFormat string     `json:"time_format"`
	OTel       OTelConfig `json:"otel"`
}

func init() {
	globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.TimeFieldFormat = time.RFC3339
}

// Init configures the global logger. When OTel export is enabled but cannot be
// set up, logging continues locally and a warning is emitted.
func Init(ctx context.Context, config *Config) error {
	if config == nil {
		config = DefaultConfig()
	}

	var output io.Writer = os.Stderr

	if config.Output == "stdout" {
		output = os.Stdout
	}

	level := zerolog.InfoLevel

	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			return err
		}
	}

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	var otelErr error

	if config.OTel.Enabled {
		writer, err := NewOTelWriter(ctx, config.OTel)
		if err != nil {
			otelErr = err
		} else {
			output = io.MultiWriter(output, writer)
		}
	}

	globalLogger = zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	log.Logger = globalLogger

	if otelErr != nil {
		globalLogger.Warn().Err(otelErr).Msg("OTel log export disabled")
	}

	return nil
}

func SetLevel(level zerolog.Level) {
	globalLogger = globalLogger.Level(level)
	log.Logger = globalLogger
}

func SetDebug(debug bool) {
	if debug {
		SetLevel(zerolog.DebugLevel)
	} else {
		SetLevel(zerolog.InfoLevel)
	}
}

func GetLogger() zerolog.Logger {
	return globalLogger
}

func Debug() *zerolog.Event {
	return globalLogger.Debug()
}

func Info() *zerolog.Event {
	return globalLogger.Info()
}

func Warn() *zerolog.Event {
	return globalLogger.Warn()
}

func Error() *zerolog.Event {
	return globalLogger.Error()
}

func WithComponent(component string) zerolog.Logger {
	return globalLogger.With().Str("component", component).Logger()
}

// CreateComponentLogger returns a Logger bound to the global configuration and tagged
// with the component name.
func CreateComponentLogger(component string) Logger {
	return &componentLogger{logger: WithComponent(component)}
}

// NewLogger wraps an existing zerolog logger.
func NewLogger(l zerolog.Logger) Logger {
	return &componentLogger{logger: l}
}

type componentLogger struct {
	logger zerolog.Logger
}

func (c *componentLogger) Trace() *zerolog.Event { return c.logger.Trace() }
func (c *componentLogger) Debug() *zerolog.Event { return c.logger.Debug() }
func (c *componentLogger) Info() *zerolog.Event  { return c.logger.Info() }
func (c *componentLogger) Warn() *zerolog.Event  { return c.logger.Warn() }
func (c *componentLogger) Error() *zerolog.Event { return c.logger.Error() }
func (c *componentLogger) Fatal() *zerolog.Event { return c.logger.Fatal() }
func (c *componentLogger) With() zerolog.Context { return c.logger.With() }

func (c *componentLogger) WithComponent(component string) zerolog.Logger {
	return c.logger.With().Str("component", component).Logger()
}

func (c *componentLogger) WithFields(fields map[string]interface{}) zerolog.Logger {
	return c.logger.With().Fields(fields).Logger()
}

func (c *componentLogger) SetLevel(level zerolog.Level) {
	c.logger = c.logger.Level(level)
}

func (c *componentLogger) SetDebug(debug bool) {
	if debug {
		c.SetLevel(zerolog.DebugLevel)
	} else {
		c.SetLevel(zerolog.InfoLevel)
	}
}
