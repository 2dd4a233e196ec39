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
	"sync"
)

type memoryLedger struct {
	mux     sync.RWMutex
	records []*Record
}

func NewMemoryLedger() Ledger {
	return &memoryLedger{}
}

func (ml *memoryLedger) Append(ctx context.Context, record *Record) error {
	if err := record.Validate(ctx); err != nil {
		return err
	}
	rec := *record
	ml.mux.Lock()
	defer ml.mux.Unlock()
	ml.records = append(ml.records, &rec)
	return nil
}

func (ml *memoryLedger) All(ctx context.Context) []*Record {
	ml.mux.RLock()
	defer ml.mux.RUnlock()
	records := make([]*Record, len(ml.records))
	for i, r := range ml.records {
		rCopy := *r
		records[i] = &rCopy
	}
	return records
}

func (ml *memoryLedger) FindMatch(ctx context.Context, address, message, signature string) *Record {
	ml.mux.RLock()
	defer ml.mux.RUnlock()
	return findMatch(ml.records, address, message, signature)
}
