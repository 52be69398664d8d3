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
	"fmt"
	"strings"

	"github.com/carverauto/fleetaudit/pkg/driver"
)

// Family is the OS family of a device. It selects the driver and command used to poll it.
type Family string

const (
	FamilyIOS  Family = "IOS"
	FamilyNXOS Family = "NXOS"
)

const (
	iosBanner  = "Cisco IOS XE Software"
	nxosBanner = "Operating System (NX-OS) Software"

	iosCommand  = "show ver | inc IOS XE"
	nxosCommand = "show ver | inc NX-OS"
	snmpCommand = "sysDescr"
)

// Classify returns FamilyNXOS for Nexus models and FamilyIOS for everything else.
func Classify(model string) Family {
	if strings.Contains(model, "Nexus") {
		return FamilyNXOS
	}

	return FamilyIOS
}

// Extractor pulls the version string out of raw command output.
type Extractor func(output string) (string, error)

// Profile describes how to poll one family over one transport.
type Profile struct {
	Driver  string
	Command string
	Extract Extractor
}

// Profiles returns the profile for each family on the given transport.
func Profiles(transport string) (map[Family]Profile, error) {
	switch transport {
	case driver.TransportSSH, "":
		return map[Family]Profile{
			FamilyIOS:  {Driver: driver.NameIOS, Command: iosCommand, Extract: BannerExtractor(iosBanner)},
			FamilyNXOS: {Driver: driver.NameNXOS, Command: nxosCommand, Extract: BannerExtractor(nxosBanner)},
		}, nil
	case driver.TransportSNMP:
		p := Profile{Driver: driver.NameSNMP, Command: snmpCommand, Extract: ExtractSysDescrVersion}

		return map[Family]Profile{FamilyIOS: p, FamilyNXOS: p}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, transport)
	}
}

// BannerExtractor removes banner from the output, then returns the first comma
// segment of the first non-empty line.
//
//	"Cisco IOS XE Software, Version 17.3.4a, RELEASE SOFTWARE (fc3)" -> "Version 17.3.4a"
//	"Cisco Nexus Operating System (NX-OS) Software"                  -> "Cisco Nexus"
func BannerExtractor(banner string) Extractor {
	return func(output string) (string, error) {
		output = strings.ReplaceAll(output, banner, "")

		for _, line := range strings.Split(output, "\n") {
			line = strings.TrimLeft(strings.TrimSpace(line), ", ")
			if line == "" {
				continue
			}

			if version := strings.TrimSpace(strings.Split(line, ",")[0]); version != "" {
				return version, nil
			}
		}

		return "", ErrEmptyVersion
	}
}

// ExtractSysDescrVersion returns the first "Version ..." segment of a sysDescr string.
func ExtractSysDescrVersion(descr string) (string, error) {
	for _, line := range strings.Split(descr, "\n") {
		for _, segment := range strings.Split(line, ",") {
			segment = strings.TrimSpace(segment)
			if strings.HasPrefix(segment, "Version") {
				return segment, nil
			}
		}
	}

	return "", ErrEmptyVersion
}
