/*
 * Copyright © 2025 Stable Wealth, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
 * an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := InitMetrics(registry)

	m.IncStartedOperations("deposit")
	m.IncStartedOperations("deposit")
	m.IncStartedOperations("withdraw")
	m.IncCompletedOperations("deposit")
	m.IncFailedOperations("withdraw")
	m.IncReconciliationNeeded()
	m.ObserveStageDuration("validating", 0.25)
	m.SetInFlightOperations(3)

	families, err := registry.Gather()
	require.NoError(t, err)

	byName := map[string]float64{}
	for _, mf := range families {
		for _, mm := range mf.GetMetric() {
			key := mf.GetName()
			for _, l := range mm.GetLabel() {
				key += "/" + l.GetValue()
			}
			switch {
			case mm.GetCounter() != nil:
				byName[key] = mm.GetCounter().GetValue()
			case mm.GetGauge() != nil:
				byName[key] = mm.GetGauge().GetValue()
			case mm.GetHistogram() != nil:
				byName[key] = float64(mm.GetHistogram().GetSampleCount())
			}
		}
	}

	assert.Equal(t, float64(2), byName["tx_orchestration_core_started_operations_total/deposit"])
	assert.Equal(t, float64(1), byName["tx_orchestration_core_started_operations_total/withdraw"])
	assert.Equal(t, float64(1), byName["tx_orchestration_core_completed_operations_total/deposit"])
	assert.Equal(t, float64(1), byName["tx_orchestration_core_failed_operations_total/withdraw"])
	assert.Equal(t, float64(1), byName["tx_orchestration_core_reconciliation_needed_total"])
	assert.Equal(t, float64(1), byName["tx_orchestration_core_stage_duration_seconds/validating"])
	assert.Equal(t, float64(3), byName["tx_orchestration_core_in_flight_operations"])
}
