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

// Package verification decides whether an (address, message, signature) triple
// is one this system issued. A signature must recover to the claimed address,
// and the ledger must hold a record of the same triple.
package verification

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kaleido-io/walletverify/pkg/cache"
	"github.com/kaleido-io/walletverify/pkg/ledger"
	"github.com/kaleido-io/walletverify/pkg/log"
	"github.com/kaleido-io/walletverify/pkg/metrics"
	"github.com/kaleido-io/walletverify/pkg/personalsign"
	"github.com/kaleido-io/walletverify/pkg/wvconf"
)

type Result struct {
	Valid            bool   `json:"valid"`
	RecoveredAddress string `json:"recoveredAddress"`
}

type Verifier interface {
	// Verify never fails. Malformed input is reported as an invalid result
	// with no recovered address.
	Verify(ctx context.Context, address, message, signature string) *Result
	CacheStats() cache.Stats
}

type recoveryKey struct {
	message   string
	signature string
}

type verifier struct {
	ledger    ledger.Ledger
	metrics   metrics.WalletVerifyMetrics
	recovered cache.Cache[recoveryKey, common.Address]
}

func NewVerifier(conf *wvconf.VerifierConfig, l ledger.Ledger, m metrics.WalletVerifyMetrics) Verifier {
	return &verifier{
		ledger:    l,
		metrics:   m,
		recovered: cache.NewCache[recoveryKey, common.Address](&conf.RecoveryCache, &wvconf.VerifierDefaults.RecoveryCache),
	}
}

func (v *verifier) Verify(ctx context.Context, address, message, signature string) *Result {
	ctx, _ = log.WithCorrelationID(ctx, "verify")
	result, outcome := v.verify(ctx, address, message, signature)
	v.metrics.IncVerify(outcome)
	log.L(ctx).Infof("Verification of signature for %s: %s", address, outcome)
	return result
}

func (v *verifier) verify(ctx context.Context, address, message, signature string) (*Result, string) {
	if address == "" || message == "" || signature == "" {
		log.L(ctx).Debugf("Verification input incomplete")
		return &Result{}, metrics.VerifyMalformed
	}
	claimed, err := personalsign.ParseAddress(ctx, address)
	if err != nil {
		log.L(ctx).Debugf("Verification address malformed: %s", err)
		return &Result{}, metrics.VerifyMalformed
	}
	recovered, err := v.recover(ctx, message, signature)
	if err != nil {
		log.L(ctx).Debugf("Signature recovery failed: %s", err)
		return &Result{}, metrics.VerifyMalformed
	}
	result := &Result{RecoveredAddress: recovered.Hex()}
	if recovered != claimed {
		return result, metrics.VerifyMismatch
	}
	// Cryptographic validity is not enough. Only triples this system recorded count.
	if v.ledger.FindMatch(ctx, recovered.Hex(), message, signature) == nil {
		return result, metrics.VerifyUnrecorded
	}
	result.Valid = true
	return result, metrics.VerifyValid
}

func (v *verifier) recover(ctx context.Context, message, signature string) (common.Address, error) {
	key := recoveryKey{message: message, signature: signature}
	if addr, ok := v.recovered.Get(key); ok {
		return addr, nil
	}
	addr, err := personalsign.RecoverAddress(ctx, message, signature)
	if err != nil {
		return common.Address{}, err
	}
	v.recovered.Set(key, addr)
	return addr, nil
}

func (v *verifier) CacheStats() cache.Stats {
	return v.recovered.Stats()
}
