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
	"fmt"
	"io"

	"github.com/carverauto/fleetaudit/pkg/version"
)

// PrintUsage writes the command help to w.
func PrintUsage(w io.Writer) {
	_, _ = fmt.Fprintf(w, `fleetaudit %s: Cisco fleet inventory and health audit

Usage:
  fleetaudit <command> [options]

Commands:
  fetch     query each region's Orion NPM server and write the inventory CSV
  filter    keep supported devices per region and write the filtered CSV
  poll      connect to every supported device and write the health report
  run       fetch, filter and poll in one go

Common options:
  -config string      path to fleetaudit JSON config file
  -regions string     comma-separated regions to process (default US,EMEA,APAC)
  -debug              enable debug logging

Options for fetch, poll and run:
  -u, -username string  username for the monitoring API and devices
  -p, -password string  password for the monitoring API and devices
  -inventory string     fetched inventory CSV (default "device_list.csv")

Options for fetch and run:
  -us string          US Orion NPM server
  -emea string        EMEA Orion NPM server
  -apac string        APAC Orion NPM server
  -swis-port int      SolarWinds Information Service port (default 17778)
  -verify-tls         verify the monitoring server certificate

Options for filter, poll and run:
  -filtered string    filtered inventory CSV (default "New_device_list.csv")
  -denylist string    comma-separated model substrings to skip

Options for poll and run:
  -transport string   device transport: ssh or snmp (default "ssh")
  -community string   SNMP v2c community (snmp transport)
  -workers int        devices polled concurrently (default 100)
  -timeout duration   per-device session timeout (default 1m0s)
  -policy string      failed device handling: separate, include or omit (default "separate")
  -report-dir string  directory the report is written to (default ".")
  -nats-url string    publish health events to this NATS server

Environment:
  CONFIG_SOURCE=env reads the configuration from FLEETAUDIT_* variables instead of -config.

Examples:
  fleetaudit fetch -u admin -p secret -us npm-us.example.com -emea npm-emea.example.com -apac npm-apac.example.com
  fleetaudit filter
  fleetaudit poll -u admin -p secret -workers 50
  fleetaudit run -config /etc/fleetaudit/fleetaudit.json
`, version.GetVersion())
}
