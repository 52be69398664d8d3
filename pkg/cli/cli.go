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

// Package cli implements the fleetaudit subcommands.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"
)

// Subcommands.
const (
	cmdFetch  = "fetch"
	cmdFilter = "filter"
	cmdPoll   = "poll"
	cmdRun    = "run"
)

// Flag groups shared by several subcommands.
const (
	groupCredentials = 1 << iota
	groupServers
	groupInventory
	groupFilter
	groupPoll
)

// SubcommandHandler defines the interface for parsing subcommand flags.
type SubcommandHandler interface {
	Parse(args []string, cfg *CmdConfig) error
}

// FetchHandler handles flags for the fetch subcommand.
type FetchHandler struct{}

// Parse processes the command-line arguments for the fetch subcommand.
func (FetchHandler) Parse(args []string, cfg *CmdConfig) error {
	return parseSubcommand(cmdFetch, groupCredentials|groupServers|groupInventory, args, cfg)
}

// FilterHandler handles flags for the filter subcommand.
type FilterHandler struct{}

// Parse processes the command-line arguments for the filter subcommand.
func (FilterHandler) Parse(args []string, cfg *CmdConfig) error {
	return parseSubcommand(cmdFilter, groupInventory|groupFilter, args, cfg)
}

// PollHandler handles flags for the poll subcommand.
type PollHandler struct{}

// Parse processes the command-line arguments for the poll subcommand.
func (PollHandler) Parse(args []string, cfg *CmdConfig) error {
	return parseSubcommand(cmdPoll, groupCredentials|groupInventory|groupFilter|groupPoll, args, cfg)
}

// RunHandler handles flags for the run subcommand, which chains fetch, filter and poll.
type RunHandler struct{}

// Parse processes the command-line arguments for the run subcommand.
func (RunHandler) Parse(args []string, cfg *CmdConfig) error {
	return parseSubcommand(cmdRun, groupCredentials|groupServers|groupInventory|groupFilter|groupPoll, args, cfg)
}

func subcommands() map[string]SubcommandHandler {
	return map[string]SubcommandHandler{
		cmdFetch:  FetchHandler{},
		cmdFilter: FilterHandler{},
		cmdPoll:   PollHandler{},
		cmdRun:    RunHandler{},
	}
}

// ParseFlags parses the subcommand and its flags from args (os.Args[1:]).
// Errors wrap ErrUsage.
func ParseFlags(args []string) (*CmdConfig, error) {
	cfg := &CmdConfig{set: make(map[string]bool)}

	if len(args) == 0 {
		return cfg, fmt.Errorf("%w: %w", ErrUsage, errMissingSubcommand)
	}

	switch args[0] {
	case "-h", "-help", "--help", "help":
		cfg.Help = true
		return cfg, nil
	}

	cfg.SubCmd = args[0]

	handler, ok := subcommands()[cfg.SubCmd]
	if !ok {
		return cfg, fmt.Errorf("%w: %w %q", ErrUsage, errUnknownSubcommand, cfg.SubCmd)
	}

	if err := handler.Parse(args[1:], cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func parseSubcommand(name string, groups int, args []string, cfg *CmdConfig) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var regions, denylist string

	fs.StringVar(&cfg.ConfigFile, "config", "", "path to fleetaudit JSON config file")
	fs.BoolVar(&cfg.Debug, "debug", false, "enable debug logging")
	fs.StringVar(&regions, "regions", "", "comma-separated regions to process (default US,EMEA,APAC)")

	if groups&groupCredentials != 0 {
		fs.StringVar(&cfg.Username, "u", "", "username for the monitoring API and devices")
		fs.StringVar(&cfg.Username, "username", "", "alias for -u")
		fs.StringVar(&cfg.Password, "p", "", "password for the monitoring API and devices")
		fs.StringVar(&cfg.Password, "password", "", "alias for -p")
	}

	if groups&groupServers != 0 {
		fs.StringVar(&cfg.USServer, "us", "", "US Orion NPM server")
		fs.StringVar(&cfg.EMEAServer, "emea", "", "EMEA Orion NPM server")
		fs.StringVar(&cfg.APACServer, "apac", "", "APAC Orion NPM server")
		fs.IntVar(&cfg.SWISPort, "swis-port", 0, "SolarWinds Information Service port")
		fs.BoolVar(&cfg.VerifyTLS, "verify-tls", false, "verify the monitoring server certificate")
	}

	if groups&groupInventory != 0 {
		fs.StringVar(&cfg.InventoryFile, "inventory", "", "fetched inventory CSV")
	}

	if groups&groupFilter != 0 {
		fs.StringVar(&cfg.FilteredFile, "filtered", "", "filtered inventory CSV")
		fs.StringVar(&denylist, "denylist", "", "comma-separated model substrings to skip")
	}

	if groups&groupPoll != 0 {
		fs.StringVar(&cfg.ReportDir, "report-dir", "", "directory the report is written to")
		fs.StringVar(&cfg.ReportPolicy, "policy", "", "failed device handling: separate, include or omit")
		fs.StringVar(&cfg.Transport, "transport", "", "device transport: ssh or snmp")
		fs.StringVar(&cfg.Community, "community", "", "SNMP v2c community")
		fs.IntVar(&cfg.MaxConcurrency, "workers", 0, "devices polled concurrently")
		fs.DurationVar(&cfg.Timeout, "timeout", time.Duration(0), "per-device session timeout")
		fs.StringVar(&cfg.NATSURL, "nats-url", "", "publish health events to this NATS server")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			cfg.Help = true
			return nil
		}

		return fmt.Errorf("%w: parsing %s flags: %w", ErrUsage, name, err)
	}

	fs.Visit(func(f *flag.Flag) {
		cfg.set[canonicalFlag(f.Name)] = true
	})

	cfg.Regions = splitList(regions)
	cfg.Denylist = splitList(denylist)
	cfg.Args = fs.Args()

	return nil
}

func canonicalFlag(name string) string {
	switch name {
	case "username":
		return "u"
	case "password":
		return "p"
	default:
		return name
	}
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
