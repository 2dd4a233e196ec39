/*
 * Copyright © 2025 Kaleido, Inc.
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
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	SignSuccess           = "success"
	SignWalletUnavailable = "wallet_unavailable"
	SignRejected          = "rejected"
	SignUnavailable       = "unavailable"
	SignInvalidInput      = "invalid_input"

	VerifyValid      = "valid"
	VerifyMismatch   = "mismatch"
	VerifyUnrecorded = "unrecorded"
	VerifyMalformed  = "malformed"
)

type WalletVerifyMetrics interface {
	IncSign(outcome string)
	ObserveWalletWait(d time.Duration)
	IncVerify(outcome string)
}

var METRICS_SUBSYSTEM = "wallet_verify"

type walletVerifyMetrics struct {
	sign       *prometheus.CounterVec
	walletWait prometheus.Histogram
	verify     *prometheus.CounterVec
}

func InitMetrics(ctx context.Context, registry *prometheus.Registry) WalletVerifyMetrics {
	metrics := &walletVerifyMetrics{}

	labels := []string{"outcome"}
	metrics.sign = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "sign_total",
		Help: "Message signing requests by outcome", Subsystem: METRICS_SUBSYSTEM}, labels)
	metrics.walletWait = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "wallet_wait_seconds",
		Help: "Time spent waiting for the wallet to return a signature", Subsystem: METRICS_SUBSYSTEM,
		Buckets: []float64{0.01, 0.1, 1, 5, 15, 60, 300}})
	metrics.verify = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "verify_total",
		Help: "Signature verifications by outcome", Subsystem: METRICS_SUBSYSTEM}, labels)

	registry.MustRegister(metrics.sign)
	registry.MustRegister(metrics.walletWait)
	registry.MustRegister(metrics.verify)
	return metrics
}

func (m *walletVerifyMetrics) IncSign(outcome string) {
	m.sign.With(prometheus.Labels{"outcome": outcome}).Inc()
}

func (m *walletVerifyMetrics) ObserveWalletWait(d time.Duration) {
	m.walletWait.Observe(d.Seconds())
}

func (m *walletVerifyMetrics) IncVerify(outcome string) {
	m.verify.With(prometheus.Labels{"outcome": outcome}).Inc()
}
