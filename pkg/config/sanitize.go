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
	"encoding/json"
	"reflect"
	"strings"
)

// Redacted returns cfg as JSON with every field tagged sensitive:"true" removed,
// so the effective configuration can be logged.
func Redacted(cfg interface{}) ([]byte, error) {
	return json.Marshal(filterSensitive(reflect.ValueOf(cfg)))
}

func filterSensitive(rv reflect.Value) interface{} {
	if !rv.IsValid() {
		return nil
	}

	if rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}

		return filterSensitive(rv.Elem())
	}

	// leaf types with their own encoding (durations)
	if _, ok := rv.Interface().(json.Marshaler); ok {
		return rv.Interface()
	}

	switch rv.Kind() {
	case reflect.Struct:
		rt := rv.Type()
		result := make(map[string]interface{})

		for i := 0; i < rt.NumField(); i++ {
			field := rt.Field(i)

			if !field.IsExported() || field.Tag.Get("sensitive") == "true" {
				continue
			}

			jsonTag := field.Tag.Get("json")
			if jsonTag == "-" {
				continue
			}

			name := field.Name
			if tagName := strings.Split(jsonTag, ",")[0]; tagName != "" {
				name = tagName
			}

			result[name] = filterSensitive(rv.Field(i))
		}

		return result
	case reflect.Slice, reflect.Array:
		result := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			result[i] = filterSensitive(rv.Index(i))
		}

		return result
	case reflect.Map:
		result := make(map[string]interface{})

		for _, key := range rv.MapKeys() {
			if key.Kind() == reflect.String {
				result[key.String()] = filterSensitive(rv.MapIndex(key))
			}
		}

		return result
	default:
		return rv.Interface()
	}
}
