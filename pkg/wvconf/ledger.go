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

package wvconf

import "github.com/kaleido-io/walletverify/pkg/confutil"

type LedgerConfig struct {
	// the fixed key the ledger is persisted under
	Key *string `json:"key"`
	// use the store's atomic read-modify-write where it has one, so concurrent
	// writers cannot drop each other's records
	AtomicAppend *bool `json:"atomicAppend"`
}

var LedgerDefaults = &LedgerConfig{
	Key:          confutil.P("wallet-verifications"),
	AtomicAppend: confutil.P(true),
}

type CacheConfig struct {
	Capacity *int `json:"capacity"`
}

type VerifierConfig struct {
	RecoveryCache CacheConfig `json:"recoveryCache"`
}

var VerifierDefaults = &VerifierConfig{
	RecoveryCache: CacheConfig{
		Capacity: confutil.P(1000),
	},
}
