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

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/kaleido-io/walletverify/internal/msgs"
	"github.com/kaleido-io/walletverify/pkg/confutil"
	"github.com/kaleido-io/walletverify/pkg/kvstore"
	"github.com/kaleido-io/walletverify/pkg/log"
	"github.com/kaleido-io/walletverify/pkg/wvconf"
)

const corruptSuffix = ".corrupt"

type kvLedger struct {
	store  kvstore.Store
	atomic kvstore.AtomicStore
	key    string
}

// NewKVLedger keeps the whole ledger as a single value under a fixed key of
// the store. Where the store supports atomic updates (and they are enabled)
// concurrent appends are serialized, otherwise the last writer wins.
func NewKVLedger(ctx context.Context, store kvstore.Store, conf *wvconf.LedgerConfig) Ledger {
	l := &kvLedger{
		store: store,
		key:   confutil.StringNotEmpty(conf.Key, *wvconf.LedgerDefaults.Key),
	}
	if as, ok := store.(kvstore.AtomicStore); ok && confutil.Bool(conf.AtomicAppend, *wvconf.LedgerDefaults.AtomicAppend) {
		l.atomic = as
	}
	log.L(ctx).Debugf("Ledger key=%s atomic=%t", l.key, l.atomic != nil)
	return l
}

func (l *kvLedger) Append(ctx context.Context, record *Record) error {
	if err := record.Validate(ctx); err != nil {
		return err
	}
	rec := *record

	current, found, err := l.store.Get(ctx, l.key)
	if err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgLedgerReadFailed, l.key)
	}
	if found {
		if _, _, err := decodeRecords(ctx, current); err != nil {
			if err := l.preserveCorrupt(ctx, current, err); err != nil {
				return err
			}
		}
	}

	if l.atomic != nil {
		err = l.atomic.Update(ctx, l.key, func(current []byte, found bool) ([]byte, error) {
			return l.appendTo(ctx, current, found, &rec)
		})
	} else {
		var next []byte
		if next, err = l.appendTo(ctx, current, found, &rec); err == nil {
			err = l.store.Set(ctx, l.key, next)
		}
	}
	if err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgLedgerWriteFailed, l.key)
	}
	log.L(ctx).Debugf("Appended record for %s to ledger", rec.Address)
	return nil
}

// Corrupt data gets replaced by the append, so is copied aside first
func (l *kvLedger) preserveCorrupt(ctx context.Context, data []byte, parseErr error) error {
	backupKey := l.key + corruptSuffix
	log.L(ctx).Warnf("Ledger data under '%s' is unreadable (%s) - preserving %d bytes under '%s' and starting a new ledger", l.key, parseErr, len(data), backupKey)
	if err := l.store.Set(ctx, backupKey, data); err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgLedgerWriteFailed, backupKey)
	}
	return nil
}

func (l *kvLedger) appendTo(ctx context.Context, current []byte, found bool, rec *Record) ([]byte, error) {
	var records []*Record
	if found {
		var err error
		if records, _, err = decodeRecords(ctx, current); err != nil {
			records = nil
		}
	}
	return encodeRecords(append(records, rec))
}

func (l *kvLedger) All(ctx context.Context) []*Record {
	data, found, err := l.store.Get(ctx, l.key)
	if err != nil {
		log.L(ctx).Warnf("Ledger read failed, treating as empty: %s", err)
		return []*Record{}
	}
	if !found {
		return []*Record{}
	}
	records, version, err := decodeRecords(ctx, data)
	if err != nil {
		log.L(ctx).Warnf("%s", i18n.WrapError(ctx, err, msgs.MsgLedgerStoreCorrupt, l.key))
		return []*Record{}
	}
	log.L(ctx).Tracef("Read %d ledger records (version=%d)", len(records), version)
	return records
}

func (l *kvLedger) FindMatch(ctx context.Context, address, message, signature string) *Record {
	return findMatch(l.All(ctx), address, message, signature)
}
