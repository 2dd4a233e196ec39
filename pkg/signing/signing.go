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

package signing

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/kaleido-io/walletverify/internal/msgs"
	"github.com/kaleido-io/walletverify/pkg/ledger"
	"github.com/kaleido-io/walletverify/pkg/log"
	"github.com/kaleido-io/walletverify/pkg/metrics"
	"github.com/kaleido-io/walletverify/pkg/personalsign"
	"github.com/kaleido-io/walletverify/pkg/wallet"
)

type Service interface {
	// Sign asks the signer to sign the message, and on success appends exactly
	// one record to the ledger. Nothing is retried, and nothing is recorded on failure.
	Sign(ctx context.Context, signer wallet.Signer, message string) (*ledger.Record, error)
}

type service struct {
	ledger  ledger.Ledger
	metrics metrics.WalletVerifyMetrics
	now     func() time.Time
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

func NewService(l ledger.Ledger, m metrics.WalletVerifyMetrics, opts ...Option) Service {
	s := &service{
		ledger:  l,
		metrics: m,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *service) Sign(ctx context.Context, signer wallet.Signer, message string) (_ *ledger.Record, err error) {
	ctx, _ = log.WithCorrelationID(ctx, "sign")
	outcome := metrics.SignInvalidInput
	defer func() {
		s.metrics.IncSign(outcome)
		if err != nil {
			log.L(ctx).Warnf("Signing failed (%s): %s", outcome, err)
		}
	}()

	if signer == nil {
		outcome = metrics.SignWalletUnavailable
		return nil, &Error{Kind: WalletUnavailable, Cause: i18n.NewError(ctx, msgs.MsgSigningWalletUnavailable)}
	}
	if message == "" {
		return nil, i18n.NewError(ctx, msgs.MsgSigningEmptyMessage)
	}
	if !utf8.ValidString(message) {
		return nil, i18n.NewError(ctx, msgs.MsgSigningMessageNotUTF8)
	}

	address, err := signer.Address(ctx)
	if err != nil {
		outcome, err = s.walletError(ctx, err, msgs.MsgSigningWalletAddressFailed)
		return nil, err
	}
	log.L(ctx).Debugf("Requesting signature from %s for %d byte message", address, len(message))

	startTime := s.now()
	signature, err := signer.SignMessage(ctx, message)
	s.metrics.ObserveWalletWait(s.now().Sub(startTime))
	if err != nil {
		outcome, err = s.walletError(ctx, err, msgs.MsgSigningUnavailable)
		return nil, err
	}

	// Only a signature that verifies can be recorded as issued
	outcome = metrics.SignUnavailable
	recovered, err := personalsign.RecoverAddress(ctx, message, signature)
	if err != nil {
		return nil, &Error{Kind: SigningUnavailable, Cause: i18n.WrapError(ctx, err, msgs.MsgSigningSignatureMalformed)}
	}
	if !personalsign.SameAddress(recovered.Hex(), address) {
		return nil, &Error{Kind: SigningUnavailable, Cause: i18n.NewError(ctx, msgs.MsgSigningSignatureMismatch, recovered.Hex(), address)}
	}

	record := &ledger.Record{
		Address:   address,
		Message:   message,
		Signature: signature,
		Timestamp: s.now().UnixMilli(),
	}
	if err := s.ledger.Append(ctx, record); err != nil {
		return nil, &Error{Kind: SigningUnavailable, Cause: i18n.WrapError(ctx, err, msgs.MsgSigningRecordFailed)}
	}

	outcome = metrics.SignSuccess
	log.L(ctx).Infof("Signed and recorded message for %s", address)
	return record, nil
}

func (s *service) walletError(ctx context.Context, err error, unavailableMsg i18n.ErrorMessageKey) (string, error) {
	var rejected *wallet.RejectedError
	if errors.As(err, &rejected) {
		return metrics.SignRejected, &Error{Kind: SigningRejected, Cause: i18n.WrapError(ctx, err, msgs.MsgSigningRejected)}
	}
	return metrics.SignUnavailable, &Error{Kind: SigningUnavailable, Cause: i18n.WrapError(ctx, err, unavailableMsg)}
}
