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

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/carverauto/fleetaudit/pkg/logger"
)

// EnvConfigLoader loads configuration from environment variables.
// Nested struct fields use underscore separation, so with the FLEETAUDIT_ prefix
// FLEETAUDIT_NATS_URL maps to config.NATS.URL.
type EnvConfigLoader struct {
	logger logger.Logger
	prefix string
}

// NewEnvConfigLoader creates a new environment variable config loader.
func NewEnvConfigLoader(log logger.Logger, prefix string) *EnvConfigLoader {
	return &EnvConfigLoader{
		logger: log,
		prefix: prefix,
	}
}

// Load implements ConfigLoader by reading from environment variables. A complete
// JSON document in <prefix>CONFIG_JSON takes precedence over individual variables.
func (e *EnvConfigLoader) Load(_ context.Context, _ string, dst interface{}) error {
	if jsonConfig := os.Getenv(e.prefix + "CONFIG_JSON"); jsonConfig != "" {
		if err := json.Unmarshal([]byte(jsonConfig), dst); err != nil {
			return fmt.Errorf("failed to unmarshal %sCONFIG_JSON: %w", e.prefix, err)
		}

		e.logger.Debug().Msg("Loaded configuration from CONFIG_JSON environment variable")

		return nil
	}

	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return ErrDstMustBeNonNilPointer
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return ErrDstMustBePointerToStruct
	}

	return e.loadStruct(v, e.prefix)
}

func (e *EnvConfigLoader) loadStruct(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		jsonTag := fieldType.Tag.Get("json")
		if jsonTag == "" || jsonTag == "-" {
			continue
		}

		fieldName := strings.Split(jsonTag, ",")[0]
		envName := prefix + strings.ToUpper(strings.ReplaceAll(fieldName, ".", "_"))

		if err := e.setFieldValue(field, envName); err != nil {
			return err
		}
	}

	return nil
}

func (e *EnvConfigLoader) setFieldValue(field reflect.Value, envName string) error {
	if isStructLike(field) {
		return e.loadNested(field, envName+"_")
	}

	envValue, ok := os.LookupEnv(envName)
	if !ok || envValue == "" {
		return nil
	}

	if err := setFieldByKind(field, envName, envValue); err != nil {
		return err
	}

	e.logger.Debug().Str("env", envName).Msg("Loaded value from environment variable")

	return nil
}

func isStructLike(field reflect.Value) bool {
	if hasUnmarshaler(field) {
		return false
	}

	return field.Kind() == reflect.Struct ||
		(field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct)
}

// loadNested descends into a struct field. Nil pointers are only allocated when
// at least one variable with the nested prefix is present.
func (e *EnvConfigLoader) loadNested(field reflect.Value, prefix string) error {
	if field.Kind() != reflect.Ptr {
		return e.loadStruct(field, prefix)
	}

	if field.IsNil() {
		if !hasEnvPrefix(prefix) {
			return nil
		}

		field.Set(reflect.New(field.Type().Elem()))
	}

	return e.loadStruct(field.Elem(), prefix)
}

func hasEnvPrefix(prefix string) bool {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, prefix) {
			return true
		}
	}

	return false
}

func hasUnmarshaler(field reflect.Value) bool {
	if !field.CanAddr() {
		return false
	}

	_, ok := field.Addr().Interface().(json.Unmarshaler)

	return ok
}

func setFieldByKind(field reflect.Value, envName, envValue string) error {
	// Types with their own JSON decoding (durations) take the value as a JSON string.
	if hasUnmarshaler(field) {
		u := field.Addr().Interface().(json.Unmarshaler)
		if err := u.UnmarshalJSON([]byte(strconv.Quote(envValue))); err != nil {
			return fmt.Errorf("invalid value for %s: %w", envName, err)
		}

		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(envValue)
	case reflect.Bool:
		b, err := strconv.ParseBool(envValue)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %w", envName, err)
		}

		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(envValue, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %w", envName, err)
		}

		field.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(envValue, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid unsigned integer value for %s: %w", envName, err)
		}

		field.SetUint(u)
	case reflect.Slice:
		return setSliceField(field, envName, envValue)
	default:
		// maps and anything else are accepted as JSON
		if err := json.Unmarshal([]byte(envValue), field.Addr().Interface()); err != nil {
			return fmt.Errorf("unsupported value for %s: %w", envName, err)
		}
	}

	return nil
}

// setSliceField accepts comma-separated values for string slices and JSON otherwise.
func setSliceField(field reflect.Value, envName, envValue string) error {
	if field.Type().Elem().Kind() != reflect.String {
		if err := json.Unmarshal([]byte(envValue), field.Addr().Interface()); err != nil {
			return fmt.Errorf("invalid slice value for %s: %w", envName, err)
		}

		return nil
	}

	values := strings.Split(envValue, ",")
	slice := reflect.MakeSlice(field.Type(), len(values), len(values))

	for i, v := range values {
		slice.Index(i).SetString(strings.TrimSpace(v))
	}

	field.Set(slice)

	return nil
}
