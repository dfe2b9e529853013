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
	"github.com/prometheus/client_golang/prometheus"
)

type OperationMetrics interface {
	IncStartedOperations(kind string)
	IncCompletedOperations(kind string)
	IncFailedOperations(kind string)
	IncReconciliationNeeded()
	ObserveStageDuration(stage string, durationInSeconds float64)
	SetInFlightOperations(count int)
}

var METRICS_SUBSYSTEM = "tx_orchestration_core"

type operationMetrics struct {
	startedOperations    *prometheus.CounterVec
	completedOperations  *prometheus.CounterVec
	failedOperations     *prometheus.CounterVec
	reconciliationNeeded prometheus.Counter
	stageDuration        *prometheus.HistogramVec
	inFlightOperations   prometheus.Gauge
}

func InitMetrics(registry *prometheus.Registry) *operationMetrics {
	metrics := &operationMetrics{}

	metrics.startedOperations = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "started_operations_total",
		Help: "Operations started, by kind", Subsystem: METRICS_SUBSYSTEM}, []string{"kind"})
	metrics.completedOperations = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "completed_operations_total",
		Help: "Operations that reached the completed state, by kind", Subsystem: METRICS_SUBSYSTEM}, []string{"kind"})
	metrics.failedOperations = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "failed_operations_total",
		Help: "Operations that reached the failed state, by kind", Subsystem: METRICS_SUBSYSTEM}, []string{"kind"})
	metrics.reconciliationNeeded = prometheus.NewCounter(prometheus.CounterOpts{Name: "reconciliation_needed_total",
		Help: "Operations that succeeded on-chain but are awaiting ledger confirmation", Subsystem: METRICS_SUBSYSTEM})
	metrics.stageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "stage_duration_seconds",
		Help: "Time spent per operation stage", Subsystem: METRICS_SUBSYSTEM}, []string{"stage"})
	metrics.inFlightOperations = prometheus.NewGauge(prometheus.GaugeOpts{Name: "in_flight_operations",
		Help: "Operations currently being orchestrated", Subsystem: METRICS_SUBSYSTEM})

	registry.MustRegister(metrics.startedOperations)
	registry.MustRegister(metrics.completedOperations)
	registry.MustRegister(metrics.failedOperations)
	registry.MustRegister(metrics.reconciliationNeeded)
	registry.MustRegister(metrics.stageDuration)
	registry.MustRegister(metrics.inFlightOperations)
	return metrics
}

func (om *operationMetrics) IncStartedOperations(kind string) {
	om.startedOperations.WithLabelValues(kind).Inc()
}

func (om *operationMetrics) IncCompletedOperations(kind string) {
	om.completedOperations.WithLabelValues(kind).Inc()
}

func (om *operationMetrics) IncFailedOperations(kind string) {
	om.failedOperations.WithLabelValues(kind).Inc()
}

func (om *operationMetrics) IncReconciliationNeeded() {
	om.reconciliationNeeded.Inc()
}

func (om *operationMetrics) ObserveStageDuration(stage string, durationInSeconds float64) {
	om.stageDuration.WithLabelValues(stage).Observe(durationInSeconds)
}

func (om *operationMetrics) SetInFlightOperations(count int) {
	om.inFlightOperations.Set(float64(count))
}
