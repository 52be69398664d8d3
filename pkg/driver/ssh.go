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
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/carverauto/fleetaudit/pkg/logger"
)

const defaultSSHPort = 22

// SSHDriver runs exec commands on a device over SSH. Host keys are not verified.
type SSHDriver struct {
	name    string
	host    string
	port    int
	creds   Credentials
	timeout time.Duration
	logger  logger.Logger

	client *ssh.Client
}

func newSSHConstructor(name string) Constructor {
	return func(host string, creds Credentials, opts Options, log logger.Logger) Driver {
		return NewSSHDriver(name, host, creds, opts, log)
	}
}

// NewSSHDriver returns an unopened SSH driver. A zero timeout means defaultTimeout.
func NewSSHDriver(name, host string, creds Credentials, opts Options, log logger.Logger) *SSHDriver {
	port := opts.SSHPort
	if port == 0 {
		port = defaultSSHPort
	}

	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	return &SSHDriver{
		name:    name,
		host:    host,
		port:    port,
		creds:   creds,
		timeout: opts.Timeout,
		logger:  log,
	}
}

func (d *SSHDriver) clientConfig() *ssh.ClientConfig {
	password := d.creds.Password

	return &ssh.ClientConfig{
		User: d.creds.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			// many IOS images only offer keyboard-interactive
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range questions {
					answers[i] = password
				}

				return answers, nil
			}),
		},
		//nolint:gosec // inventory devices are not pinned to known host keys
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         d.timeout,
	}
}

// Open dials the device and completes the SSH handshake within the driver timeout.
func (d *SSHDriver) Open(ctx context.Context) error {
	addr := net.JoinHostPort(d.host, strconv.Itoa(d.port))

	dialer := net.Dialer{Timeout: d.timeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	deadline := time.Now().Add(d.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	_ = conn.SetDeadline(deadline)

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, d.clientConfig())
	if err != nil {
		_ = conn.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}

		return fmt.Errorf("ssh handshake with %s failed: %w", addr, err)
	}

	_ = conn.SetDeadline(time.Time{})

	d.client = ssh.NewClient(sshConn, chans, reqs)

	d.logger.Debug().Str("host", d.host).Int("port", d.port).Msg("SSH session opened")

	return nil
}

// CLI runs every command on its own exec channel.
func (d *SSHDriver) CLI(ctx context.Context, commands []string) (map[string]string, error) {
	if d.client == nil {
		return nil, ErrNotOpen
	}

	out := make(map[string]string, len(commands))

	for _, cmd := range commands {
		output, err := d.run(ctx, cmd)
		if err != nil {
			return nil, err
		}

		out[cmd] = output
	}

	return out, nil
}

func (d *SSHDriver) run(ctx context.Context, cmd string) (string, error) {
	session, err := d.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to open session: %w", err)
	}
	defer func() { _ = session.Close() }()

	type result struct {
		output []byte
		err    error
	}

	done := make(chan result, 1)

	go func() {
		output, err := session.CombinedOutput(cmd)
		done <- result{output: output, err: err}
	}()

	select {
	case <-ctx.Done():
		_ = session.Close()
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("command %q failed: %w", cmd, r.err)
		}

		return strings.ReplaceAll(string(r.output), "\r", ""), nil
	}
}

// Close implements Driver.
func (d *SSHDriver) Close() error {
	if d.client == nil {
		return nil
	}

	err := d.client.Close()
	d.client = nil

	return err
}
