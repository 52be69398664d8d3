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

package poller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/fleetaudit/pkg/driver"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		model string
		want  Family
	}{
		{model: "Cisco Nexus 9396PX", want: FamilyNXOS},
		{model: "N9K Nexus switch", want: FamilyNXOS},
		{model: "Catalyst 9300-48P", want: FamilyIOS},
		{model: "ISR4451-X/K9", want: FamilyIOS},
		{model: "nexus lowercase", want: FamilyIOS},
		{model: "", want: FamilyIOS},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.model))
		})
	}
}

func TestProfiles(t *testing.T) {
	ssh, err := Profiles(driver.TransportSSH)
	require.NoError(t, err)

	assert.Equal(t, driver.NameIOS, ssh[FamilyIOS].Driver)
	assert.Equal(t, "show ver | inc IOS XE", ssh[FamilyIOS].Command)
	assert.Equal(t, driver.NameNXOS, ssh[FamilyNXOS].Driver)
	assert.Equal(t, "show ver | inc NX-OS", ssh[FamilyNXOS].Command)

	snmp, err := Profiles(driver.TransportSNMP)
	require.NoError(t, err)

	for _, family := range []Family{FamilyIOS, FamilyNXOS} {
		assert.Equal(t, driver.NameSNMP, snmp[family].Driver)
		assert.Equal(t, "sysDescr", snmp[family].Command)
	}

	_, err = Profiles("telnet")
	require.ErrorIs(t, err, ErrUnknownTransport)
}

func TestBannerExtractor(t *testing.T) {
	tests := []struct {
		name    string
		banner  string
		output  string
		want    string
		wantErr bool
	}{
		{
			name:   "ios xe",
			banner: iosBanner,
			output: "Cisco IOS XE Software, Version 17.3.4a, RELEASE SOFTWARE (fc3)\n",
			want:   "Version 17.3.4a",
		},
		{
			name:   "ios xe with leading blank lines",
			banner: iosBanner,
			output: "\n\nCisco IOS XE Software, Version 16.12.05\n",
			want:   "Version 16.12.05",
		},
		{
			name:   "nxos banner line",
			banner: nxosBanner,
			output: "Cisco Nexus Operating System (NX-OS) Software\n",
			want:   "Cisco Nexus",
		},
		{
			name:   "nxos banner with trailing text",
			banner: nxosBanner,
			output: "\nCisco Nexus Operating System (NX-OS) Software, Version 7.0(3)I7(9)\n",
			want:   "Cisco Nexus",
		},
		{
			name:    "banner only",
			banner:  iosBanner,
			output:  "Cisco IOS XE Software\n",
			wantErr: true,
		},
		{
			name:    "empty output",
			banner:  nxosBanner,
			output:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BannerExtractor(tt.banner)(tt.output)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrEmptyVersion)
				assert.Empty(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractSysDescrVersion(t *testing.T) {
	got, err := ExtractSysDescrVersion("Cisco IOS Software [Amsterdam], Catalyst L3 Switch Software (CAT9K_IOSXE), Version 17.3.4a, RELEASE SOFTWARE (fc3)\nTechnical Support: http://www.cisco.com/techsupport")
	require.NoError(t, err)
	assert.Equal(t, "Version 17.3.4a", got)

	got, err = ExtractSysDescrVersion("Cisco NX-OS(tm) n9000, Software (n9000-dk9), Version 9.3(8), RELEASE SOFTWARE Copyright (c) 2002-2021 by Cisco Systems, Inc.")
	require.NoError(t, err)
	assert.Equal(t, "Version 9.3(8)", got)

	_, err = ExtractSysDescrVersion("Linux host 5.15.0 #1 SMP x86_64")
	require.ErrorIs(t, err, ErrEmptyVersion)
}
