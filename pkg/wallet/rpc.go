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
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-resty/resty/v2"
	"github.com/hyperledger/firefly-common/pkg/ffresty"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
	"github.com/kaleido-io/walletverify/internal/msgs"
	"github.com/kaleido-io/walletverify/pkg/log"
	"github.com/kaleido-io/walletverify/pkg/wvconf"
)

// EIP-1193 user rejected request
const rpcCodeUserRejected = 4001

type rpcSigner struct {
	rpc     rpcbackend.RPC
	account *ethtypes.Address0xHex
}

// NewRPCSigner talks to an external wallet over HTTP JSON-RPC, using
// eth_accounts and personal_sign
func NewRPCSigner(ctx context.Context, conf *wvconf.RPCWalletConfig) (Signer, error) {
	if conf.URL == "" {
		return nil, i18n.NewError(ctx, msgs.MsgWalletRPCURLMissing)
	}
	u, err := url.Parse(conf.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, i18n.WrapError(ctx, err, msgs.MsgWalletRPCInvalidURL, conf.URL)
	}

	s := &rpcSigner{}
	if conf.Account != nil && *conf.Account != "" {
		if s.account, err = ethtypes.NewAddress(*conf.Account); err != nil {
			return nil, i18n.WrapError(ctx, err, msgs.MsgWalletInvalidAccountConfig, *conf.Account)
		}
	}

	client := ffresty.NewWithConfig(ctx, ffresty.Config{
		URL: u.String(),
		HTTPConfig: ffresty.HTTPConfig{
			HTTPHeaders:  conf.HTTPHeaders,
			AuthUsername: conf.Auth.Username,
			AuthPassword: conf.Auth.Password,
		},
	})
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		log.L(res.Request.Context()).Tracef("Wallet RPC responded status=%d in %s", res.StatusCode(), res.Time())
		return nil
	})
	s.rpc = rpcbackend.NewRPCClient(client)
	return s, nil
}

func (s *rpcSigner) Address(ctx context.Context) (string, error) {
	if s.account != nil {
		return common.Address(*s.account).Hex(), nil
	}
	// the connected account can change between calls, so it is not cached
	var accounts []ethtypes.Address0xHex
	if rpcErr := s.rpc.CallRPC(ctx, &accounts, "eth_accounts"); rpcErr != nil {
		return "", i18n.WrapError(ctx, rpcErr.Error(), msgs.MsgWalletRPCAccountsFailed)
	}
	if len(accounts) == 0 {
		return "", i18n.NewError(ctx, msgs.MsgWalletRPCNoAccounts)
	}
	return common.Address(accounts[0]).Hex(), nil
}

type signResult struct {
	signature string
	err       error
}

// SignMessage dispatches the request detached from ctx. Cancelling ctx stops
// the wait, but the wallet still sees (and may still act on) the request.
func (s *rpcSigner) SignMessage(ctx context.Context, message string) (string, error) {
	address, err := s.Address(ctx)
	if err != nil {
		return "", err
	}

	result := make(chan *signResult, 1)
	go func() {
		callCtx := context.WithoutCancel(ctx)
		var signature string
		rpcErr := s.rpc.CallRPC(callCtx, &signature, "personal_sign", hexutil.Encode([]byte(message)), address)
		res := &signResult{signature: signature}
		switch {
		case rpcErr != nil:
			res.err = s.mapSignError(callCtx, rpcErr)
		case signature == "":
			res.err = i18n.NewError(callCtx, msgs.MsgWalletRPCSignFailed)
		}
		result <- res
	}()

	select {
	case res := <-result:
		return res.signature, res.err
	case <-ctx.Done():
		log.L(ctx).Warnf("Abandoned wait for wallet signature from %s", address)
		return "", i18n.NewError(ctx, msgs.MsgWalletRequestAbandoned, ctx.Err())
	}
}

func (s *rpcSigner) mapSignError(ctx context.Context, rpcErr *rpcbackend.RPCError) error {
	lowerMsg := strings.ToLower(rpcErr.Message)
	if rpcErr.Code == rpcCodeUserRejected ||
		strings.Contains(lowerMsg, "user rejected") ||
		strings.Contains(lowerMsg, "user denied") {
		return &RejectedError{
			Cause: i18n.NewError(ctx, msgs.MsgWalletRPCRejected, rpcErr.Code, rpcErr.Message),
		}
	}
	return i18n.WrapError(ctx, rpcErr.Error(), msgs.MsgWalletRPCSignFailed)
}
