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

// Package report builds and writes the device health report.
package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/carverauto/fleetaudit/pkg/inventory"
	"github.com/carverauto/fleetaudit/pkg/logger"
	"github.com/carverauto/fleetaudit/pkg/models"
)

// Policy decides where failed devices are reported.
type Policy string

const (
	// PolicySeparate writes failed devices to a companion failures file.
	PolicySeparate Policy = "separate"
	// PolicyInclude keeps failed devices in the main report with their error.
	PolicyInclude Policy = "include"
	// PolicyOmit drops failed devices from every file.
	PolicyOmit Policy = "omit"

	fileDateLayout = "02-Jan-2006"
)

var ErrUnknownPolicy = errors.New("unknown report policy")

// ParsePolicy converts a policy name into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicySeparate, PolicyInclude, PolicyOmit:
		return p, nil
	case "":
		return PolicySeparate, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Report is the set of rows produced by one health poll.
type Report struct {
	Policy   Policy
	Rows     []models.Device
	Failures []models.Device
	// Omitted counts failed devices left out under PolicyOmit.
	Omitted int
}

// Build arranges poll results according to policy. Rows are sorted by region then device name.
func Build(results []models.PollResult, policy Policy) Report {
	rep := Report{
		Policy:   policy,
		Rows:     make([]models.Device, 0, len(results)),
		Failures: make([]models.Device, 0),
	}

	for i := range results {
		record := results[i].Record()

		switch {
		case results[i].Succeeded():
			rep.Rows = append(rep.Rows, record)
		case policy == PolicyInclude:
			rep.Rows = append(rep.Rows, record)
		case policy == PolicyOmit:
			rep.Omitted++
		default:
			rep.Failures = append(rep.Failures, record)
		}
	}

	Sort(rep.Rows)
	Sort(rep.Failures)

	return rep
}

// Sort orders rows by region tag, then device name, both ascending.
// Region tags compare as strings, so APAC sorts before EMEA and US.
func Sort(rows []models.Device) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Region != rows[j].Region {
			return rows[i].Region < rows[j].Region
		}

		return rows[i].Name < rows[j].Name
	})
}

// FileName returns the main report file name for a run at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("report %s.csv", t.Format(fileDateLayout))
}

// FailuresFileName returns the failures file name for a run at t.
func FailuresFileName(t time.Time) string {
	return fmt.Sprintf("report %s failures.csv", t.Format(fileDateLayout))
}

// Writer writes reports into a directory.
type Writer struct {
	Dir    string
	Clock  func() time.Time
	Logger logger.Logger
}

// NewWriter returns a Writer using the wall clock.
func NewWriter(dir string, log logger.Logger) *Writer {
	return &Writer{Dir: dir, Clock: time.Now, Logger: log}
}

// Write stores rep and returns the paths written. The main report is always
// written, even when empty; the failures file only under PolicySeparate.
func (w *Writer) Write(rep Report) ([]string, error) {
	now := w.Clock()

	columns := inventory.FilteredColumns()
	if rep.Policy == PolicyInclude {
		columns = inventory.FailureColumns()
	}

	mainPath := filepath.Join(w.Dir, FileName(now))
	if err := inventory.WriteFile(mainPath, columns, rep.Rows); err != nil {
		return nil, err
	}

	paths := []string{mainPath}

	if rep.Omitted > 0 {
		w.Logger.Warn().Int("devices", rep.Omitted).Msg("Failed devices omitted from report")
	}

	if rep.Policy == PolicySeparate {
		failPath := filepath.Join(w.Dir, FailuresFileName(now))
		if err := inventory.WriteFile(failPath, inventory.FailureColumns(), rep.Failures); err != nil {
			return paths, err
		}

		paths = append(paths, failPath)
	}

	w.Logger.Info().
		Int("rows", len(rep.Rows)).
		Int("failures", len(rep.Failures)).
		Strs("files", paths).
		Msg("Wrote health report")

	return paths, nil
}
