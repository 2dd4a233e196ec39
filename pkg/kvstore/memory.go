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
	"sync"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/kaleido-io/walletverify/internal/msgs"
)

type memoryStore struct {
	mux    sync.Mutex
	data   map[string][]byte
	closed bool
}

// NewMemoryStore is a process local store, lost on exit
func NewMemoryStore() AtomicStore {
	return &memoryStore{data: map[string][]byte{}}
}

func (ms *memoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := checkKey(ctx, key); err != nil {
		return nil, false, err
	}
	ms.mux.Lock()
	defer ms.mux.Unlock()
	if ms.closed {
		return nil, false, i18n.NewError(ctx, msgs.MsgKVStoreClosed)
	}
	v, found := ms.data[key]
	if !found {
		return nil, false, nil
	}
	return append([]byte{}, v...), true, nil
}

func (ms *memoryStore) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	ms.mux.Lock()
	defer ms.mux.Unlock()
	if ms.closed {
		return i18n.NewError(ctx, msgs.MsgKVStoreClosed)
	}
	ms.data[key] = append([]byte{}, value...)
	return nil
}

func (ms *memoryStore) Update(ctx context.Context, key string, fn UpdateFn) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	ms.mux.Lock()
	defer ms.mux.Unlock()
	if ms.closed {
		return i18n.NewError(ctx, msgs.MsgKVStoreClosed)
	}
	current, found := ms.data[key]
	next, err := fn(append([]byte{}, current...), found)
	if err != nil {
		return err
	}
	ms.data[key] = append([]byte{}, next...)
	return nil
}

func (ms *memoryStore) Close() {
	ms.mux.Lock()
	defer ms.mux.Unlock()
	ms.closed = true
}
