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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// FileConfigLoader loads configuration from a local JSON file.
// Fields absent from the file keep the values already present in dst; keys that
// match no field are rejected so a misspelled setting never passes silently.
type FileConfigLoader struct{}

// Load implements ConfigLoader. An empty path leaves dst untouched.
func (*FileConfigLoader) Load(_ context.Context, path string, dst interface{}) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w '%s': %w", errConfigFileInvalid, path, err)
	}

	if dec.More() {
		return fmt.Errorf("%w '%s': trailing data after the config object", errConfigFileInvalid, path)
	}

	return nil
}
