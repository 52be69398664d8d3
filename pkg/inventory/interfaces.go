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

package inventory

import (
	"context"

	"github.com/carverauto/fleetaudit/pkg/inventory/solarwinds"
)

//go:generate mockgen -destination=mock_inventory.go -package=inventory github.com/carverauto/fleetaudit/pkg/inventory Querier

// Querier runs a SWQL query against one monitoring server.
type Querier interface {
	Query(ctx context.Context, swql string) ([]solarwinds.Row, error)
}

// QuerierFactory returns a Querier for the given monitoring server.
type QuerierFactory func(server string) (Querier, error)
