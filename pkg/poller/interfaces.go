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
	"time"

	"github.com/carverauto/fleetaudit/pkg/models"
)

// Observer is notified as a poll progresses. DeviceDone is called from
// worker goroutines and must be safe for concurrent use.
type Observer interface {
	RegionStarted(region models.Region, devices int)
	DeviceDone(result *models.PollResult)
}

// Clock abstracts time-related operations.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type nopObserver struct{}

func (nopObserver) RegionStarted(models.Region, int) {}
func (nopObserver) DeviceDone(*models.PollResult)    {}
