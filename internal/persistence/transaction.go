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

package persistence

import (
	"context"
	"runtime/debug"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/kaleido-io/walletverify/internal/msgs"
	"github.com/kaleido-io/walletverify/pkg/log"
	"gorm.io/gorm"
)

type DBTX interface {
	// Access the Gorm DB object for the transaction
	DB() *gorm.DB
	// Only called after a transaction is successfully committed
	AddPostCommit(func(txCtx context.Context))
	// Called in all cases (including panic cases) after the transaction completes. A non-nil error means it rolled back.
	AddFinalizer(func(txCtx context.Context, err error))
}

type transaction struct {
	txCtx       context.Context
	gdb         *gorm.DB
	postCommits []func(txCtx context.Context)
	finalizers  []func(txCtx context.Context, err error)
}

func (t *transaction) DB() *gorm.DB {
	return t.gdb
}

func (t *transaction) AddPostCommit(fn func(txCtx context.Context)) {
	t.postCommits = append(t.postCommits, fn)
}

func (t *transaction) AddFinalizer(fn func(txCtx context.Context, err error)) {
	t.finalizers = append(t.finalizers, fn)
}

func (gp *provider) Transaction(parentCtx context.Context, fn func(ctx context.Context, tx DBTX) error) (err error) {

	completed := false
	txCtx, _ := log.WithCorrelationID(parentCtx, "dbtx")
	tx := &transaction{txCtx: txCtx}
	defer func() {
		if !completed {
			panicData := recover()
			log.L(tx.txCtx).Errorf("Panic within database transaction: %v\n%s", panicData, debug.Stack())
			if err == nil {
				err = i18n.NewError(tx.txCtx, msgs.MsgPersistenceErrorInDBTransaction, panicData)
			}
		}
		for _, fn := range tx.finalizers {
			fn(tx.txCtx, err)
		}
		if err == nil {
			for _, fn := range tx.postCommits {
				fn(tx.txCtx)
			}
		}
		if !completed {
			panic(err) // having logged this, we continue to panic rather than switching to normal error handling
		}
	}()

	err = gp.gdb.Transaction(func(gormTX *gorm.DB) error {
		tx.gdb = gormTX.WithContext(tx.txCtx)
		return fn(tx.txCtx, tx)
	})

	completed = true
	return err // the defer relies on this being the named return
}
