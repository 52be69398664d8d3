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
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/carverauto/fleetaudit/pkg/models"
)

// Dracula theme colors.
const (
	draculaCyan   = "#8BE9FD"
	draculaGreen  = "#50FA7B"
	draculaPurple = "#BD93F9"
	draculaRed    = "#FF5555"
	draculaYellow = "#F1FA8C"
)

const bannerWidth = 7

// logStyles defines styles for logging messages
type logStyles struct {
	info, success, warning, error, banner lipgloss.Style
}

func newLogStyles(r *lipgloss.Renderer) logStyles {
	return logStyles{
		info: r.NewStyle().
			Foreground(lipgloss.Color(draculaCyan)),
		success: r.NewStyle().
			Foreground(lipgloss.Color(draculaGreen)),
		warning: r.NewStyle().
			Foreground(lipgloss.Color(draculaYellow)),
		error: r.NewStyle().
			Foreground(lipgloss.Color(draculaRed)).
			Bold(true),
		banner: r.NewStyle().
			Foreground(lipgloss.Color(draculaPurple)).
			Bold(true),
	}
}

// Console prints human-readable progress lines. It is safe for concurrent use.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	styles logStyles
}

// NewConsole returns a Console writing to out. Colors are dropped when out is not a terminal.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out, styles: newLogStyles(lipgloss.NewRenderer(out))}
}

func (c *Console) println(style lipgloss.Style, format string, args ...any) {
	line := style.Render(fmt.Sprintf(format, args...))

	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = fmt.Fprintln(c.out, line)
}

// Notice prints a step announcement.
func (c *Console) Notice(format string, args ...any) {
	c.println(c.styles.warning, format, args...)
}

// Info prints a summary line.
func (c *Console) Info(format string, args ...any) {
	c.println(c.styles.info, format, args...)
}

// Banner prints the region header, e.g. "####### PROCESSING US #######".
func (c *Console) Banner(region models.Region) {
	hashes := strings.Repeat("#", bannerWidth)
	c.println(c.styles.banner, "%s PROCESSING %s %s", hashes, region, hashes)
}

// Generated reports a file that was written.
func (c *Console) Generated(name string) {
	c.println(c.styles.success, "✅ %s - Successfully generated!", name)
}

// DeviceOK prints a successful device poll.
func (c *Console) DeviceOK(name, version string) {
	c.println(c.styles.success, "✅ %s :: %s", name, version)
}

// DeviceFailed prints a failed device poll.
func (c *Console) DeviceFailed(name string, err error) {
	c.println(c.styles.error, "❌ %s :: %v", name, err)
}

// fetchProgress adapts Console to inventory.FetchObserver.
type fetchProgress struct{ c *Console }

func (p fetchProgress) RegionStarted(region models.Region, server string) {
	p.c.Notice("Querying %s devices from Orion NPM server %s...", region, server)
}

func (p fetchProgress) RegionFetched(region models.Region, devices []models.Device) {
	for i := range devices {
		d := &devices[i]
		p.c.println(p.c.styles.success,
			"✅ Successfully fetched and copied Hostname: %s | IP Address: %s | Model: %s | IOS Version: %s | Region: %s",
			d.Name, d.IPAddress, d.Model, d.InventoryVersion, d.Region)
	}

	p.c.Info("%s device count: %d", region, len(devices))
}

// pollProgress adapts Console to poller.Observer.
type pollProgress struct{ c *Console }

func (p pollProgress) RegionStarted(region models.Region, _ int) {
	p.c.Banner(region)
}

func (p pollProgress) DeviceDone(result *models.PollResult) {
	if result.Succeeded() {
		p.c.DeviceOK(result.Device.Name, result.Version)
		return
	}

	p.c.DeviceFailed(result.Device.Name, result.Err)
}
