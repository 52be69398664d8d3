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

// Package solarwinds is a minimal client for the SolarWinds Information Service (SWIS) JSON API.
package solarwinds

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/carverauto/fleetaudit/pkg/logger"
)

const (
	DefaultPort = 17778

	queryPath      = "/SolarWinds/InformationService/v3/Json/Query"
	defaultTimeout = 2 * time.Minute
	maxErrorBody   = 512
)

// Client issues SWQL queries against one SWIS endpoint.
type Client struct {
	endpoint   string
	username   string
	password   string
	HTTPClient HTTPClient
	logger     logger.Logger
}

// NewClient returns a client for cfg.Server. TLS verification is skipped unless
// cfg.VerifyTLS is set, since Orion servers usually present self-signed certificates.
func NewClient(cfg Config, log logger.Logger) (*Client, error) {
	if cfg.Server == "" {
		return nil, errServerRequired
	}

	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	//nolint:gosec // Orion deployments commonly use self-signed certificates
	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: !cfg.VerifyTLS,
			},
		},
	}

	return &Client{
		endpoint:   "https://" + net.JoinHostPort(cfg.Server, strconv.Itoa(cfg.Port)) + queryPath,
		username:   cfg.Username,
		password:   cfg.Password,
		HTTPClient: httpClient,
		logger:     log,
	}, nil
}

// Endpoint returns the query URL used by the client.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Query runs a SWQL statement and returns its result rows.
func (c *Client) Query(ctx context.Context, swql string) ([]Row, error) {
	body, err := json.Marshal(queryRequest{Query: swql})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("endpoint", c.endpoint).Str("query", swql).Msg("Running SWQL query")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer c.closeResponse(resp)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %d", errAuthFailed, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: %d, response: %s", errUnexpectedStatusCode,
			resp.StatusCode, truncate(bodyBytes))
	}

	var qr queryResponse

	dec := json.NewDecoder(bytes.NewReader(bodyBytes))
	dec.UseNumber()

	if err := dec.Decode(&qr); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if qr.Results == nil {
		return nil, errMissingResults
	}

	return *qr.Results, nil
}

func (c *Client) closeResponse(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to close response body")
	}
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody]) + "..."
	}

	return string(b)
}
