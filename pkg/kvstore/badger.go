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

package kvstore

import (
	"context"
	"errors"
	"strings"

	"github.com/dgraph-io/badger/v3"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/kaleido-io/walletverify/internal/msgs"
	"github.com/kaleido-io/walletverify/pkg/confutil"
	"github.com/kaleido-io/walletverify/pkg/log"
	"github.com/kaleido-io/walletverify/pkg/wvconf"
)

type badgerStore struct {
	db              *badger.DB
	conflictRetries int
}

// NewBadgerStore opens (or creates) an embedded badger database. Updates run
// in serializable transactions, retried when another writer commits the same
// key first.
func NewBadgerStore(ctx context.Context, conf *wvconf.BadgerStoreConfig) (AtomicStore, error) {
	defs := wvconf.BadgerStoreDefaults
	path := confutil.StringNotEmpty(conf.Path, *defs.Path)
	opts := badger.DefaultOptions(path)
	if conf.InMemory {
		path = ":memory:"
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.
		WithSyncWrites(confutil.Bool(conf.SyncWrites, *defs.SyncWrites)).
		WithLogger(&badgerLogger{ctx: log.WithLogField(ctx, "badger", path)})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgKVStoreBadgerOpenFailed, path)
	}
	return &badgerStore{
		db:              db,
		conflictRetries: confutil.IntMin(conf.ConflictRetries, 0, *defs.ConflictRetries),
	}, nil
}

func (bs *badgerStore) Get(ctx context.Context, key string) (value []byte, found bool, err error) {
	if err := checkKey(ctx, key); err != nil {
		return nil, false, err
	}
	err = bs.db.View(func(txn *badger.Txn) error {
		value, found, err = bs.getInTxn(txn, key)
		return err
	})
	if err != nil {
		return nil, false, i18n.WrapError(ctx, err, msgs.MsgKVStoreBadgerError, key)
	}
	return value, found, nil
}

func (bs *badgerStore) getInTxn(txn *badger.Txn, key string) ([]byte, bool, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	value, err := item.ValueCopy(nil)
	return value, err == nil, err
}

func (bs *badgerStore) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	err := bs.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgKVStoreBadgerError, key)
	}
	return nil
}

func (bs *badgerStore) Update(ctx context.Context, key string, fn UpdateFn) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	var fnErr error
	for attempt := 0; ; attempt++ {
		err := bs.db.Update(func(txn *badger.Txn) error {
			current, found, err := bs.getInTxn(txn, key)
			if err != nil {
				return err
			}
			next, err := fn(current, found)
			if err != nil {
				fnErr = err
				return err
			}
			return txn.Set([]byte(key), next)
		})
		switch {
		case err == nil:
			return nil
		case fnErr != nil:
			return fnErr
		case errors.Is(err, badger.ErrConflict) && attempt < bs.conflictRetries:
			log.L(ctx).Debugf("Conflict updating key '%s' (attempt=%d)", key, attempt+1)
			continue
		case errors.Is(err, badger.ErrConflict):
			return i18n.WrapError(ctx, err, msgs.MsgKVStoreBadgerConflict, key, attempt+1)
		default:
			return i18n.WrapError(ctx, err, msgs.MsgKVStoreBadgerError, key)
		}
	}
}

func (bs *badgerStore) Close() {
	err := bs.db.Close()
	log.L(context.Background()).Infof("Badger store closed (err=%v)", err)
}

// badgerLogger routes badger's own logging onto ours. Badger is chatty at
// info, so that is demoted to debug.
type badgerLogger struct {
	ctx context.Context
}

func (bl *badgerLogger) Errorf(format string, args ...interface{}) {
	log.L(bl.ctx).Errorf(strings.TrimSpace(format), args...)
}

func (bl *badgerLogger) Warningf(format string, args ...interface{}) {
	log.L(bl.ctx).Warnf(strings.TrimSpace(format), args...)
}

func (bl *badgerLogger) Infof(format string, args ...interface{}) {
	log.L(bl.ctx).Debugf(strings.TrimSpace(format), args...)
}

func (bl *badgerLogger) Debugf(format string, args ...interface{}) {
	log.L(bl.ctx).Tracef(strings.TrimSpace(format), args...)
}
