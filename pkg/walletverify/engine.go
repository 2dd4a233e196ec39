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

// Package walletverify assembles the store, ledger, wallet, signing service and
// verifier described by a single configuration into one Engine.
package walletverify

import (
	"context"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/kaleido-io/walletverify/internal/msgs"
	"github.com/kaleido-io/walletverify/pkg/kvstore"
	"github.com/kaleido-io/walletverify/pkg/ledger"
	"github.com/kaleido-io/walletverify/pkg/log"
	"github.com/kaleido-io/walletverify/pkg/metrics"
	"github.com/kaleido-io/walletverify/pkg/signing"
	"github.com/kaleido-io/walletverify/pkg/verification"
	"github.com/kaleido-io/walletverify/pkg/wallet"
	"github.com/kaleido-io/walletverify/pkg/wvconf"
	"github.com/prometheus/client_golang/prometheus"
)

type Engine interface {
	// Sign uses the configured wallet, failing with WalletUnavailable if there is none
	Sign(ctx context.Context, message string) (*ledger.Record, error)
	SignWith(ctx context.Context, signer wallet.Signer, message string) (*ledger.Record, error)
	Verify(ctx context.Context, address, message, signature string) *verification.Result
	// Records lists every recorded signing in the order it happened
	Records(ctx context.Context) []*ledger.Record
	Wallet() wallet.Signer
	Metrics() *prometheus.Registry
	Close()
}

type engine struct {
	store    kvstore.Store
	ledger   ledger.Ledger
	wallet   wallet.Signer
	registry *prometheus.Registry
	signing  signing.Service
	verifier verification.Verifier
}

// LoadConfig reads a YAML configuration file
func LoadConfig(ctx context.Context, path string) (*wvconf.Config, error) {
	var conf wvconf.Config
	if err := wvconf.ReadAndParseYAMLFile(ctx, path, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func NewEngine(ctx context.Context, conf *wvconf.Config) (Engine, error) {
	log.InitConfig(&conf.Log)
	store, err := kvstore.NewStore(ctx, &conf.Store)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgEngineStoreInitFailed)
	}
	e, err := newEngine(ctx, conf, ledger.NewKVLedger(ctx, store, &conf.Ledger))
	if err != nil {
		store.Close()
		return nil, err
	}
	e.store = store
	return e, nil
}

// NewEngineWithLedger uses the supplied ledger in place of the configured store
func NewEngineWithLedger(ctx context.Context, conf *wvconf.Config, l ledger.Ledger) (Engine, error) {
	return newEngine(ctx, conf, l)
}

func newEngine(ctx context.Context, conf *wvconf.Config, l ledger.Ledger) (*engine, error) {
	signer, err := wallet.NewSigner(ctx, &conf.Wallet)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgEngineWalletInitFailed)
	}
	registry := prometheus.NewRegistry()
	m := metrics.InitMetrics(ctx, registry)
	e := &engine{
		ledger:   l,
		wallet:   signer,
		registry: registry,
		signing:  signing.NewService(l, m),
		verifier: verification.NewVerifier(&conf.Verifier, l, m),
	}
	log.L(ctx).Infof("Wallet verification engine started store=%q wallet=%q", conf.Store.Type, conf.Wallet.Type)
	return e, nil
}

func (e *engine) Sign(ctx context.Context, message string) (*ledger.Record, error) {
	return e.signing.Sign(ctx, e.wallet, message)
}

func (e *engine) SignWith(ctx context.Context, signer wallet.Signer, message string) (*ledger.Record, error) {
	return e.signing.Sign(ctx, signer, message)
}

func (e *engine) Verify(ctx context.Context, address, message, signature string) *verification.Result {
	return e.verifier.Verify(ctx, address, message, signature)
}

func (e *engine) Records(ctx context.Context) []*ledger.Record {
	return e.ledger.All(ctx)
}

func (e *engine) Wallet() wallet.Signer {
	return e.wallet
}

func (e *engine) Metrics() *prometheus.Registry {
	return e.registry
}

func (e *engine) Close() {
	if e.store != nil {
		e.store.Close()
	}
}
