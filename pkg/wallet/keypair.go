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

package wallet

import (
	"context"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/keystorev3"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"github.com/kaleido-io/walletverify/internal/msgs"
	"github.com/kaleido-io/walletverify/pkg/log"
	"github.com/kaleido-io/walletverify/pkg/personalsign"
	"github.com/kaleido-io/walletverify/pkg/wvconf"
)

type keyPairSigner struct {
	kp *secp256k1.KeyPair
}

// NewKeyPairSigner signs in-process with a key the caller owns and manages
func NewKeyPairSigner(kp *secp256k1.KeyPair) Signer {
	return &keyPairSigner{kp: kp}
}

// NewKeystoreV3Signer loads a key from an existing V3 wallet file. The file and
// its password file are only read, never created or modified.
func NewKeystoreV3Signer(ctx context.Context, conf *wvconf.KeystoreV3WalletConfig) (Signer, error) {
	keyData, err := os.ReadFile(conf.KeyFile)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgWalletKeyFileRead, conf.KeyFile)
	}

	passData, err := os.ReadFile(conf.PasswordFile)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgWalletPasswordFileRead, conf.PasswordFile)
	}

	wf, err := keystorev3.ReadWalletFile(keyData, passData)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgWalletKeystoreDecrypt, conf.KeyFile)
	}
	kp := secp256k1.KeyPairFromBytes(wf.PrivateKey())
	log.L(ctx).Infof("Loaded keystore wallet %s from %s", common.Address(kp.Address).Hex(), conf.KeyFile)
	return NewKeyPairSigner(kp), nil
}

func (s *keyPairSigner) Address(ctx context.Context) (string, error) {
	if s.kp == nil {
		return "", i18n.NewError(ctx, msgs.MsgWalletKeyPairMissing)
	}
	return common.Address(s.kp.Address).Hex(), nil
}

func (s *keyPairSigner) SignMessage(ctx context.Context, message string) (string, error) {
	if s.kp == nil {
		return "", i18n.NewError(ctx, msgs.MsgWalletKeyPairMissing)
	}
	sig, err := s.kp.SignDirect(personalsign.Hash([]byte(message)))
	if err != nil {
		return "", i18n.WrapError(ctx, err, msgs.MsgWalletSignFailed)
	}
	return personalsign.EncodeSignature(sig.R, sig.S, sig.V), nil
}
