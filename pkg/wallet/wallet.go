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

// Package wallet adapts the places a signing key can live (in this process,
// in a web3 secret storage file, or behind an external wallet's JSON-RPC
// endpoint) to a single signer capability bound to one address.
package wallet

import (
	"context"
	"fmt"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/kaleido-io/walletverify/internal/msgs"
	"github.com/kaleido-io/walletverify/pkg/wvconf"
)

type Signer interface {
	// Address is the checksummed address the signer is bound to
	Address(ctx context.Context) (string, error)
	// SignMessage performs personal message signing, returning 0x hex r||s||v.
	// May block for as long as the wallet takes to get approval from its user.
	SignMessage(ctx context.Context, message string) (string, error)
}

// RejectedError reports that the wallet (or its user) declined to sign
type RejectedError struct {
	Cause error
}

func (re *RejectedError) Error() string {
	return fmt.Sprintf("rejected: %s", re.Cause)
}

func (re *RejectedError) Unwrap() error {
	return re.Cause
}

// NewSigner builds the signer for the configured wallet type. A nil signer,
// with no error, means no wallet is configured.
func NewSigner(ctx context.Context, conf *wvconf.WalletConfig) (Signer, error) {
	switch conf.Type {
	case wvconf.WalletTypeNone:
		return nil, nil
	case wvconf.WalletTypeKeystoreV3:
		return NewKeystoreV3Signer(ctx, &conf.KeystoreV3)
	case wvconf.WalletTypeRPC:
		return NewRPCSigner(ctx, &conf.RPC)
	default:
		return nil, i18n.NewError(ctx, msgs.MsgWalletUnsupportedType, conf.Type)
	}
}
