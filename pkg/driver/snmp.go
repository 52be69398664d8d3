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

package driver

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosnmp/gosnmp"

	"github.com/carverauto/fleetaudit/pkg/logger"
)

const (
	// OIDSysDescr is SNMPv2-MIB::sysDescr.0.
	OIDSysDescr = ".1.3.6.1.2.1.1.1.0"

	defaultSNMPPort = 161
	snmpRetries     = 1
)

type snmpClient interface {
	Connect() error
	Get(oids []string) (*gosnmp.SnmpPacket, error)
}

// SNMPDriver answers every CLI command with the device sysDescr over SNMP v2c.
type SNMPDriver struct {
	host   string
	snmp   *gosnmp.GoSNMP
	client snmpClient
	logger logger.Logger
}

// NewSNMPDriver returns an unopened SNMP driver. It satisfies Constructor.
func NewSNMPDriver(host string, creds Credentials, opts Options, log logger.Logger) Driver {
	port := opts.SNMPPort
	if port == 0 {
		port = defaultSNMPPort
	}

	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	g := &gosnmp.GoSNMP{
		Target:             host,
		Port:               uint16(port), //nolint:gosec // validated port range
		Community:          creds.Community,
		Version:            gosnmp.Version2c,
		Timeout:            opts.Timeout,
		Retries:            snmpRetries,
		MaxOids:            gosnmp.MaxOids,
		ExponentialTimeout: true,
	}

	return &SNMPDriver{host: host, snmp: g, client: g, logger: log}
}

// Open implements Driver. SNMP is connectionless, so this only binds the UDP socket.
func (d *SNMPDriver) Open(ctx context.Context) error {
	if d.snmp != nil {
		d.snmp.Context = ctx
	}

	if err := d.client.Connect(); err != nil {
		return fmt.Errorf("snmp connect to %s failed: %w", d.host, err)
	}

	return nil
}

// CLI implements Driver by fetching sysDescr once and returning it for every command.
func (d *SNMPDriver) CLI(_ context.Context, commands []string) (map[string]string, error) {
	packet, err := d.client.Get([]string{OIDSysDescr})
	if err != nil {
		return nil, fmt.Errorf("snmp get sysDescr from %s failed: %w", d.host, err)
	}

	descr, err := sysDescr(packet)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(commands))
	for _, cmd := range commands {
		out[cmd] = descr
	}

	return out, nil
}

func sysDescr(packet *gosnmp.SnmpPacket) (string, error) {
	if packet == nil || len(packet.Variables) == 0 {
		return "", ErrNoSNMPValue
	}

	v := packet.Variables[0]

	switch v.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
		return "", fmt.Errorf("%w: %v", ErrNoSNMPValue, v.Type)
	case gosnmp.OctetString:
	default:
		return "", fmt.Errorf("%w: unexpected type %v", ErrNoSNMPValue, v.Type)
	}

	switch value := v.Value.(type) {
	case []byte:
		return strings.ReplaceAll(string(value), "\r", ""), nil
	case string:
		return strings.ReplaceAll(value, "\r", ""), nil
	default:
		return "", fmt.Errorf("%w: unexpected value %T", ErrNoSNMPValue, v.Value)
	}
}

// Close implements Driver.
func (d *SNMPDriver) Close() error {
	if d.snmp == nil || d.snmp.Conn == nil {
		return nil
	}

	err := d.snmp.Conn.Close()
	d.snmp.Conn = nil

	return err
}
