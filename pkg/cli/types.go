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

import (
	"time"
)

// CmdConfig holds the parsed command line of one invocation.
type CmdConfig struct {
	SubCmd     string
	Help       bool
	ConfigFile string
	Debug      bool

	Username string
	Password string

	USServer   string
	EMEAServer string
	APACServer string
	SWISPort   int
	VerifyTLS  bool

	Regions  []string
	Denylist []string

	InventoryFile string
	FilteredFile  string
	ReportDir     string
	ReportPolicy  string

	Transport      string
	Community      string
	MaxConcurrency int
	Timeout        time.Duration

	NATSURL string

	Args []string

	// set records which flags were given explicitly, so only those override the config file.
	set map[string]bool
}

func (c *CmdConfig) isSet(name string) bool {
	return c.set[name]
}
