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

import "errors"

var (
	errInvalidConfigSource = errors.New("invalid CONFIG_SOURCE value")
	errLoadConfigFailed    = errors.New("failed to load configuration")
	errInvalidConfigPtr    = errors.New("config must be a non-nil pointer")
	errConfigFileInvalid   = errors.New("invalid JSON config file")

	// ErrDstMustBeNonNilPointer indicates that the destination must be a non-nil pointer.
	ErrDstMustBeNonNilPointer = errors.New("dst must be a non-nil pointer")
	// ErrDstMustBePointerToStruct indicates that the destination must be a pointer to a struct.
	ErrDstMustBePointerToStruct = errors.New("dst must be a pointer to a struct")

	ErrMissingCredentials = errors.New("username and password are required")
	ErrNoRegions          = errors.New("at least one region is required")
	ErrMissingServer      = errors.New("no monitoring server configured for region")
	ErrInvalidConcurrency = errors.New("max_concurrency must be at least 1")
	ErrInvalidTransport   = errors.New("invalid transport")
	ErrMissingCommunity   = errors.New("snmp_community is required for the snmp transport")
	ErrInvalidPolicy      = errors.New("invalid report_policy")
	ErrInvalidTimeout     = errors.New("timeout must not be negative")
)
