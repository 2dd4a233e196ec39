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

// Package personalsign implements the personal message signing convention
// used by Ethereum wallets (EIP-191 version 0x45), where the message is
// prefixed with "\x19Ethereum Signed Message:\n" and its decimal byte length
// before being hashed with keccak256.
package personalsign

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/kaleido-io/walletverify/internal/msgs"
)

const (
	SignatureLength        = 65
	CompactSignatureLength = 64
)

// Hash returns the digest a wallet signs for a personal message
func Hash(message []byte) []byte {
	return accounts.TextHash(message)
}

// input is used exactly as supplied, so surrounding whitespace is not a prefix
func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// DecodeSignature parses a 0x hex signature into the canonical 65 byte
// r||s||v form with v in {0,1}. Compact EIP-2098 signatures are expanded.
// Signatures with a high s value are rejected, as they are malleated copies of
// a signature a wallet would never produce.
func DecodeSignature(ctx context.Context, sigHex string) ([]byte, error) {
	if !has0xPrefix(sigHex) {
		return nil, i18n.NewError(ctx, msgs.MsgSignatureInvalidHex)
	}
	raw, err := hexutil.Decode("0x" + sigHex[2:])
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgSignatureInvalidHex)
	}

	sig := make([]byte, SignatureLength)
	switch len(raw) {
	case SignatureLength:
		copy(sig, raw)
		v, ok := normalizeV(raw[64])
		if !ok {
			return nil, i18n.NewError(ctx, msgs.MsgSignatureInvalidV, raw[64])
		}
		sig[64] = v
	case CompactSignatureLength:
		// the top bit of s carries the y parity
		copy(sig, raw)
		sig[64] = raw[32] >> 7
		sig[32] &= 0x7f
	default:
		return nil, i18n.NewError(ctx, msgs.MsgSignatureInvalidLength, len(raw))
	}

	r := new(big.Int).SetBytes(sig[0:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(sig[64], r, s, true) {
		return nil, i18n.NewError(ctx, msgs.MsgSignatureInvalidValues)
	}
	return sig, nil
}

func normalizeV(v byte) (byte, bool) {
	switch {
	case v == 0 || v == 27:
		return 0, true
	case v == 1 || v == 28:
		return 1, true
	case v >= 35:
		// EIP-155 v = chainId*2 + 35 + yParity
		return (v - 35) % 2, true
	default:
		return 0, false
	}
}

// EncodeSignature renders r, s and a recovery id in the form wallets return
// from personal_sign: lower case 0x hex with v as 27 or 28.
func EncodeSignature(r, s, v *big.Int) string {
	sig := make([]byte, SignatureLength)
	r.FillBytes(sig[0:32])
	s.FillBytes(sig[32:64])
	recID := v.Uint64()
	if recID < 27 {
		recID += 27
	}
	sig[64] = byte(recID)
	return hexutil.Encode(sig)
}

// RecoverAddress returns the address whose key produced sigHex over message
func RecoverAddress(ctx context.Context, message, sigHex string) (common.Address, error) {
	sig, err := DecodeSignature(ctx, sigHex)
	if err != nil {
		return common.Address{}, err
	}
	pub, err := crypto.SigToPub(Hash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, i18n.WrapError(ctx, err, msgs.MsgSignatureRecoverFailed)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// ParseAddress accepts a 0x prefixed 20 byte hex address in any letter case
func ParseAddress(ctx context.Context, addr string) (common.Address, error) {
	if !has0xPrefix(addr) || !common.IsHexAddress(addr) {
		return common.Address{}, i18n.NewError(ctx, msgs.MsgAddressInvalid, addr)
	}
	return common.HexToAddress(addr), nil
}

// SameAddress compares two addresses as identities, ignoring letter case
func SameAddress(a, b string) bool {
	return strings.ToLower(a) == strings.ToLower(b)
}
