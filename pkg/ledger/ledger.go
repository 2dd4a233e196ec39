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

package ledger

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/kaleido-io/walletverify/internal/msgs"
	"github.com/kaleido-io/walletverify/pkg/personalsign"
)

// Record is a single successful signing, as issued by this system. Records
// are never changed once appended.
type Record struct {
	Address   string `json:"address"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"` // milliseconds since the epoch
}

func (r *Record) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Matches compares the address ignoring case, and the message and signature exactly
func (r *Record) Matches(address, message, signature string) bool {
	return r.Message == message &&
		r.Signature == signature &&
		personalsign.SameAddress(r.Address, address)
}

func (r *Record) Validate(ctx context.Context) error {
	if _, err := personalsign.ParseAddress(ctx, r.Address); err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgLedgerRecordInvalid, "address")
	}
	// the stored form is JSON text, which cannot hold arbitrary bytes unchanged
	if r.Message == "" || !utf8.ValidString(r.Message) {
		return i18n.NewError(ctx, msgs.MsgLedgerRecordInvalid, "message")
	}
	if r.Signature == "" {
		return i18n.NewError(ctx, msgs.MsgLedgerRecordInvalid, "signature")
	}
	if r.Timestamp <= 0 {
		return i18n.NewError(ctx, msgs.MsgLedgerRecordInvalid, "timestamp")
	}
	return nil
}

// Ledger is the ordered, append-only list of signings this system has issued
type Ledger interface {
	Append(ctx context.Context, record *Record) error
	// All never fails. Unreadable data is reported as an empty ledger.
	All(ctx context.Context) []*Record
	// FindMatch returns the first record matching the triple, or nil
	FindMatch(ctx context.Context, address, message, signature string) *Record
}

func findMatch(records []*Record, address, message, signature string) *Record {
	for _, r := range records {
		if r.Matches(address, message, signature) {
			rCopy := *r
			return &rCopy
		}
	}
	return nil
}
