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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hyperledger/firefly-signer/pkg/keystorev3"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"github.com/kaleido-io/walletverify/pkg/personalsign"
	"github.com/kaleido-io/walletverify/pkg/wvconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeyPair(t *testing.T) *secp256k1.KeyPair {
	kp, err := secp256k1.GenerateSecp256k1KeyPair()
	require.NoError(t, err)
	return kp
}

func TestKeyPairSignerRoundTrip(t *testing.T) {
	ctx := context.Background()
	kp := newTestKeyPair(t)
	s := NewKeyPairSigner(kp)

	addr, err := s.Address(ctx)
	require.NoError(t, err)
	assert.Equal(t, common.Address(kp.Address).Hex(), addr)

	sig, err := s.SignMessage(ctx, "req-42")
	require.NoError(t, err)
	assert.Regexp(t, "^0x[0-9a-f]{128}(1b|1c)$", sig)

	recovered, err := personalsign.RecoverAddress(ctx, "req-42", sig)
	require.NoError(t, err)
	assert.Equal(t, addr, recovered.Hex())
}

func TestKeyPairSignerMissingKey(t *testing.T) {
	ctx := context.Background()
	s := NewKeyPairSigner(nil)
	_, err := s.Address(ctx)
	assert.Regexp(t, "WV010511", err)
	_, err = s.SignMessage(ctx, "req-42")
	assert.Regexp(t, "WV010511", err)
}

func writeTestKeystore(t *testing.T, kp *secp256k1.KeyPair, password string) *wvconf.KeystoreV3WalletConfig {
	dir := t.TempDir()
	conf := &wvconf.KeystoreV3WalletConfig{
		KeyFile:      filepath.Join(dir, "wallet.key"),
		PasswordFile: filepath.Join(dir, "wallet.pwd"),
	}
	wf := keystorev3.NewWalletFileCustomBytesStandard(password, kp.PrivateKeyBytes())
	require.NoError(t, os.WriteFile(conf.KeyFile, wf.JSON(), 0600))
	require.NoError(t, os.WriteFile(conf.PasswordFile, []byte(password), 0600))
	return conf
}

func TestKeystoreV3Signer(t *testing.T) {
	ctx := context.Background()
	kp := newTestKeyPair(t)
	conf := writeTestKeystore(t, kp, "s3cret")

	s, err := NewSigner(ctx, &wvconf.WalletConfig{
		Type:       wvconf.WalletTypeKeystoreV3,
		KeystoreV3: *conf,
	})
	require.NoError(t, err)

	addr, err := s.Address(ctx)
	require.NoError(t, err)
	assert.Equal(t, common.Address(kp.Address).Hex(), addr)

	sig, err := s.SignMessage(ctx, "from a keystore")
	require.NoError(t, err)
	recovered, err := personalsign.RecoverAddress(ctx, "from a keystore", sig)
	require.NoError(t, err)
	assert.Equal(t, addr, recovered.Hex())
}

func TestKeystoreV3SignerErrors(t *testing.T) {
	ctx := context.Background()
	kp := newTestKeyPair(t)
	conf := writeTestKeystore(t, kp, "s3cret")

	_, err := NewKeystoreV3Signer(ctx, &wvconf.KeystoreV3WalletConfig{
		KeyFile:      filepath.Join(t.TempDir(), "missing.key"),
		PasswordFile: conf.PasswordFile,
	})
	assert.Regexp(t, "WV010501", err)

	_, err = NewKeystoreV3Signer(ctx, &wvconf.KeystoreV3WalletConfig{
		KeyFile:      conf.KeyFile,
		PasswordFile: filepath.Join(t.TempDir(), "missing.pwd"),
	})
	assert.Regexp(t, "WV010502", err)

	require.NoError(t, os.WriteFile(conf.PasswordFile, []byte("wrong"), 0600))
	_, err = NewKeystoreV3Signer(ctx, conf)
	assert.Regexp(t, "WV010503", err)
}

func TestNewSignerTypes(t *testing.T) {
	ctx := context.Background()

	s, err := NewSigner(ctx, &wvconf.WalletConfig{})
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = NewSigner(ctx, &wvconf.WalletConfig{Type: "ledger-hw"})
	assert.Regexp(t, "WV010500.*ledger-hw", err)

	_, err = NewSigner(ctx, &wvconf.WalletConfig{Type: wvconf.WalletTypeRPC})
	assert.Regexp(t, "WV010504", err)
}

func TestRejectedError(t *testing.T) {
	cause := errors.New("user said no")
	var err error = &RejectedError{Cause: cause}
	assert.Equal(t, "rejected: user said no", err.Error())
	assert.ErrorIs(t, err, cause)

	var re *RejectedError
	assert.True(t, errors.As(err, &re))
}
