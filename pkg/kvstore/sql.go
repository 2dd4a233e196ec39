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
	"time"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/kaleido-io/walletverify/internal/msgs"
	"github.com/kaleido-io/walletverify/internal/persistence"
	"github.com/kaleido-io/walletverify/pkg/log"
	"github.com/kaleido-io/walletverify/pkg/wvconf"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type kvEntry struct {
	Key     string `gorm:"column:kv_key;primaryKey"`
	Value   []byte `gorm:"column:value"`
	Updated int64  `gorm:"column:updated"`
}

func (kvEntry) TableName() string {
	return "kv_entries"
}

type sqlStore struct {
	p persistence.Persistence
}

// NewSQLStore keeps keys as rows of the kv_entries table in sqlite or postgres
func NewSQLStore(ctx context.Context, conf *wvconf.StoreConfig) (AtomicStore, error) {
	p, err := persistence.NewPersistence(ctx, conf)
	if err != nil {
		return nil, err
	}
	return NewSQLStoreWithPersistence(p), nil
}

// NewSQLStoreWithPersistence takes ownership of p, closing it on Close
func NewSQLStoreWithPersistence(p persistence.Persistence) AtomicStore {
	return &sqlStore{p: p}
}

func (ss *sqlStore) get(ctx context.Context, db *gorm.DB, key string) ([]byte, bool, error) {
	var rows []*kvEntry
	err := db.WithContext(ctx).
		Where("kv_key = ?", key).
		Limit(1).
		Find(&rows).
		Error
	if err != nil {
		return nil, false, i18n.WrapError(ctx, err, msgs.MsgKVStoreDBError, key)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0].Value, true, nil
}

func (ss *sqlStore) upsert(ctx context.Context, db *gorm.DB, key string, value []byte) error {
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "kv_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated"}),
		}).
		Create(&kvEntry{
			Key:     key,
			Value:   value,
			Updated: time.Now().UnixMilli(),
		}).
		Error
	if err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgKVStoreDBError, key)
	}
	return nil
}

func (ss *sqlStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := checkKey(ctx, key); err != nil {
		return nil, false, err
	}
	return ss.get(ctx, ss.p.DB(), key)
}

func (ss *sqlStore) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	return ss.upsert(ctx, ss.p.DB(), key, value)
}

func (ss *sqlStore) Update(ctx context.Context, key string, fn UpdateFn) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	return ss.p.Transaction(ctx, func(ctx context.Context, dbTX persistence.DBTX) error {
		var size int
		dbTX.AddFinalizer(func(txCtx context.Context, err error) {
			if err != nil {
				log.L(txCtx).Warnf("Update of key '%s' rolled back: %s", key, err)
			}
		})
		dbTX.AddPostCommit(func(txCtx context.Context) {
			log.L(txCtx).Debugf("Committed update of key '%s' (%d bytes)", key, size)
		})
		if err := ss.p.TakeNamedLock(ctx, dbTX, "kv:"+key); err != nil {
			return i18n.WrapError(ctx, err, msgs.MsgKVStoreDBError, key)
		}
		current, found, err := ss.get(ctx, dbTX.DB(), key)
		if err != nil {
			return err
		}
		next, err := fn(current, found)
		if err != nil {
			return err
		}
		size = len(next)
		return ss.upsert(ctx, dbTX.DB(), key, next)
	})
}

func (ss *sqlStore) Close() {
	ss.p.Close()
}
