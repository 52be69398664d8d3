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

// Package config loads fleetaudit configuration from JSON files or the environment.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/carverauto/fleetaudit/pkg/logger"
	"github.com/carverauto/fleetaudit/pkg/models"
)

const (
	configSourceFile = "file"
	configSourceEnv  = "env"

	defaultEnvPrefix = "FLEETAUDIT_"
)

// ConfigLoader populates dst from a configuration source.
type ConfigLoader interface {
	Load(ctx context.Context, path string, dst interface{}) error
}

// Validator is implemented by configuration types that can check themselves.
type Validator interface {
	Validate() error
}

// Config holds the configuration loading dependencies.
type Config struct {
	defaultLoader ConfigLoader
	logger        logger.Logger
}

// NewConfig initializes a new Config instance with a default file loader.
// A nil logger discards loader diagnostics.
func NewConfig(log logger.Logger) *Config {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Config{
		defaultLoader: &FileConfigLoader{},
		logger:        log,
	}
}

// ValidateConfig validates a configuration if it implements Validator.
func ValidateConfig(cfg interface{}) error {
	v, ok := cfg.(Validator)
	if !ok {
		return nil
	}

	return v.Validate()
}

// Load reads cfg from the source selected by CONFIG_SOURCE and normalizes any
// SecurityConfig paths. It does not validate, so callers can apply overrides first.
func (c *Config) Load(ctx context.Context, path string, cfg interface{}) error {
	if err := c.loadWithSource(ctx, path, cfg); err != nil {
		return err
	}

	if err := c.normalizeSecurityConfig(cfg); err != nil {
		return fmt.Errorf("failed to normalize SecurityConfig: %w", err)
	}

	return nil
}

// LoadAndValidate loads a configuration, normalizes SecurityConfig paths if present, and validates it.
func (c *Config) LoadAndValidate(ctx context.Context, path string, cfg interface{}) error {
	if err := c.Load(ctx, path, cfg); err != nil {
		return err
	}

	return ValidateConfig(cfg)
}

// Source returns the configured source name, defaulting to file.
func Source() string {
	source := strings.ToLower(os.Getenv("CONFIG_SOURCE"))
	if source == "" {
		return configSourceFile
	}

	return source
}

func (c *Config) loadWithSource(ctx context.Context, path string, cfg interface{}) error {
	var loader ConfigLoader

	switch source := Source(); source {
	case configSourceEnv:
		prefix := os.Getenv("CONFIG_ENV_PREFIX")
		if prefix == "" {
			prefix = defaultEnvPrefix
		}

		loader = NewEnvConfigLoader(c.logger, prefix)
	case configSourceFile:
		loader = c.defaultLoader
	default:
		return fmt.Errorf("%w: %s (expected '%s' or '%s')",
			errInvalidConfigSource, source, configSourceFile, configSourceEnv)
	}

	if err := loader.Load(ctx, path, cfg); err != nil {
		return fmt.Errorf("%w: %w", errLoadConfigFailed, err)
	}

	return nil
}

// normalizeSecurityConfig resolves relative TLS paths against CertDir for every
// *models.SecurityConfig reachable from cfg.
func (c *Config) normalizeSecurityConfig(cfg interface{}) error {
	v := reflect.ValueOf(cfg)

	if v.Kind() != reflect.Ptr || v.IsNil() {
		return errInvalidConfigPtr
	}

	v = v.Elem()

	if v.Kind() != reflect.Struct {
		return nil
	}

	c.normalizeStructFields(v)

	return nil
}

var securityConfigType = reflect.TypeOf((*models.SecurityConfig)(nil))

func (c *Config) normalizeStructFields(v reflect.Value) {
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)

		switch {
		case field.Type() == securityConfigType:
			if !field.IsNil() {
				sec := field.Interface().(*models.SecurityConfig)
				c.normalizeTLSPaths(&sec.TLS, sec.CertDir)
			}
		case field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct:
			if !field.IsNil() {
				c.normalizeStructFields(field.Elem())
			}
		case field.Kind() == reflect.Struct:
			c.normalizeStructFields(field)
		}
	}
}

func (c *Config) normalizeTLSPaths(tls *models.TLSConfig, certDir string) {
	if certDir == "" {
		return
	}

	NormalizeTLSPaths(tls, certDir)

	c.logger.Debug().
		Str("cert_file", tls.CertFile).
		Str("key_file", tls.KeyFile).
		Str("ca_file", tls.CAFile).
		Msg("Normalized TLS paths")
}

// NormalizeTLSPaths joins relative certificate paths onto certDir. Empty and
// absolute paths are left alone.
func NormalizeTLSPaths(tls *models.TLSConfig, certDir string) {
	if certDir == "" {
		return
	}

	for _, p := range []*string{&tls.CertFile, &tls.KeyFile, &tls.CAFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(certDir, *p)
		}
	}
}
