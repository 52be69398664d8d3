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

package natsutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/fleetaudit/pkg/models"
)

func writeTestCerts(t *testing.T, dir string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "fleetaudit-test"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "client.pem"), certPEM, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "client-key.pem"), keyPEM, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "root.pem"), certPEM, 0o600))
}

func TestTLSConfig(t *testing.T) {
	dir := t.TempDir()
	writeTestCerts(t, dir)

	sec := &models.SecurityConfig{
		Mode:       "mtls",
		CertDir:    dir,
		ServerName: "nats.example.com",
		TLS: models.TLSConfig{
			CertFile: "client.pem",
			KeyFile:  "client-key.pem",
			CAFile:   "root.pem",
		},
	}

	conf, err := TLSConfig(sec)
	require.NoError(t, err)

	assert.Len(t, conf.Certificates, 1)
	assert.NotNil(t, conf.RootCAs)
	assert.Equal(t, "nats.example.com", conf.ServerName)
	assert.Equal(t, uint16(tls.VersionTLS13), conf.MinVersion)
	assert.Equal(t, "client.pem", sec.TLS.CertFile, "caller config is not rewritten")
}

func TestTLSConfig_Errors(t *testing.T) {
	_, err := TLSConfig(nil)
	require.ErrorIs(t, err, ErrMTLSRequired)

	_, err = TLSConfig(&models.SecurityConfig{Mode: "none"})
	require.ErrorIs(t, err, ErrMTLSRequired)

	dir := t.TempDir()
	writeTestCerts(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-ca.pem"), []byte("not a certificate"), 0o600))

	_, err = TLSConfig(&models.SecurityConfig{
		Mode:    "mtls",
		CertDir: dir,
		TLS:     models.TLSConfig{CertFile: "client.pem", KeyFile: "client-key.pem", CAFile: "bad-ca.pem"},
	})
	require.ErrorIs(t, err, ErrCAParsingFailed)

	_, err = TLSConfig(&models.SecurityConfig{
		Mode:    "mtls",
		CertDir: dir,
		TLS:     models.TLSConfig{CertFile: "missing.pem", KeyFile: "client-key.pem", CAFile: "root.pem"},
	})
	require.Error(t, err)
}
