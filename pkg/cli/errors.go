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

package cli

import "errors"

var (
	// ErrUsage marks errors caused by the command line or configuration rather than the run itself.
	ErrUsage = errors.New("usage error")

	errMissingSubcommand = errors.New("missing subcommand")
	errUnknownSubcommand = errors.New("unknown subcommand")
	errConfigLoadFailed  = errors.New("failed to load config")
	errFetchFailed       = errors.New("inventory fetch failed")
	errReadInventory     = errors.New("failed to read inventory")
	errWriteInventory    = errors.New("failed to write inventory")
	errWriteReport       = errors.New("failed to write report")
)
