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

// Package kvstore provides the local key-value persistence the ledger is kept
// in, with memory, filesystem, badger and SQL database backends.
package kvstore

import (
	"context"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/kaleido-io/walletverify/internal/msgs"
	"github.com/kaleido-io/walletverify/pkg/wvconf"
)

type Store interface {
	// Get returns found=false, and no error, when the key has never been set
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close()
}

// UpdateFn receives the current value of a key and returns the value to replace it with
type UpdateFn func(current []byte, found bool) ([]byte, error)

// AtomicStore is implemented by backends that can perform a read-modify-write
// of a single key without another writer interleaving. The fn may be invoked
// more than once if the backend retries on conflict, so it must be free of side effects.
type AtomicStore interface {
	Store
	Update(ctx context.Context, key string, fn UpdateFn) error
}

func NewStore(ctx context.Context, conf *wvconf.StoreConfig) (Store, error) {
	switch conf.Type {
	case wvconf.StoreTypeMemory:
		return NewMemoryStore(), nil
	case "", wvconf.StoreTypeFilesystem:
		return NewFilesystemStore(ctx, &conf.FileSystem)
	case wvconf.StoreTypeBadger:
		return NewBadgerStore(ctx, &conf.Badger)
	case wvconf.StoreTypeSQLite, wvconf.StoreTypePostgres:
		return NewSQLStore(ctx, conf)
	default:
		return nil, i18n.NewError(ctx, msgs.MsgKVStoreInvalidType, conf.Type)
	}
}

func checkKey(ctx context.Context, key string) error {
	if key == "" {
		return i18n.NewError(ctx, msgs.MsgKVStoreKeyEmpty)
	}
	return nil
}
