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

// Package driver opens short-lived read-only sessions to network devices.
package driver

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/carverauto/fleetaudit/pkg/logger"
)

//go:generate mockgen -destination=mock_driver.go -package=driver github.com/carverauto/fleetaudit/pkg/driver Driver,Factory

// Transports select how the poller reaches devices.
const (
	TransportSSH  = "ssh"
	TransportSNMP = "snmp"
)

// Registered driver names.
const (
	NameIOS  = "ios"
	NameNXOS = "nxos_ssh"
	NameSNMP = "snmp"
)

const defaultTimeout = 60 * time.Second

// Driver is a session to a single device.
type Driver interface {
	// Open establishes the session.
	Open(ctx context.Context) error
	// CLI runs each command and returns its output keyed by command.
	CLI(ctx context.Context, commands []string) (map[string]string, error)
	// Close releases the session. It is safe to call after a failed Open.
	Close() error
}

// Factory builds drivers by name.
type Factory interface {
	New(name, host string, creds Credentials) (Driver, error)
}

// Credentials authenticate a driver against a device.
type Credentials struct {
	Username  string
	Password  string `sensitive:"true"`
	Community string `sensitive:"true"`
}

// Options hold transport settings shared by every driver of a run.
type Options struct {
	Transport string
	SSHPort   int
	SNMPPort  int
	Timeout   time.Duration
}

// Constructor creates a driver for host.
type Constructor func(host string, creds Credentials, opts Options, log logger.Logger) Driver

// Registry is the default Factory. It maps driver names to constructors.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	opts         Options
	logger       logger.Logger
}

// NewRegistry returns an empty Registry.
func NewRegistry(opts Options, log logger.Logger) *Registry {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	return &Registry{
		constructors: make(map[string]Constructor),
		opts:         opts,
		logger:       log,
	}
}

// DefaultFactory returns a Registry with the ios, nxos_ssh and snmp drivers.
func DefaultFactory(opts Options, log logger.Logger) *Registry {
	r := NewRegistry(opts, log)

	r.Register(NameIOS, newSSHConstructor(NameIOS))
	r.Register(NameNXOS, newSSHConstructor(NameNXOS))
	r.Register(NameSNMP, NewSNMPDriver)

	return r
}

// Register adds or replaces a constructor.
func (r *Registry) Register(name string, c Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.constructors[name] = c
}

// Names returns the registered driver names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// New implements Factory.
func (r *Registry) New(name, host string, creds Credentials) (Driver, error) {
	r.mu.RLock()
	c, ok := r.constructors[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, name)
	}

	return c(host, creds, r.opts, logger.NewLogger(r.logger.WithComponent("driver."+name))), nil
}
