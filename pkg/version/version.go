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

// Package version reports the fleetaudit build version.
package version

// Set at build time with -ldflags "-X github.com/carverauto/fleetaudit/pkg/version.version=...".
//
//nolint:gochecknoglobals // ldflags injection
var (
	version = "dev"
	buildID = "dev"
)

// GetVersion returns the current version.
func GetVersion() string {
	return version
}

// GetBuildID returns the current build ID.
func GetBuildID() string {
	return buildID
}

// GetFullVersion returns version with build ID.
func GetFullVersion() string {
	return version + " (build: " + buildID + ")"
}
