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
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionOk(t *testing.T) {
	ctx := context.Background()

	p, mdb := newMockGormPSQLPersistence(t)

	finalizerCalled := false
	postCommitCalled := false

	mdb.ExpectBegin()
	mdb.ExpectExec("INSERT.*a_table").WillReturnResult(sqlmock.NewResult(0, 1))
	mdb.ExpectCommit()

	err := p.Transaction(ctx, func(ctx context.Context, tx DBTX) error {
		err := tx.DB().Exec("INSERT INTO a_table (col1) VALUES ('abc');").Error
		require.NoError(t, err)
		tx.AddFinalizer(func(ctx context.Context, err error) {
			require.Nil(t, err)
			finalizerCalled = true
		})
		tx.AddPostCommit(func(ctx context.Context) {
			postCommitCalled = true
		})
		return nil
	})
	require.NoError(t, err)

	assert.True(t, finalizerCalled)
	assert.True(t, postCommitCalled)
	require.NoError(t, mdb.ExpectationsWereMet())
}

func TestTransactionRollback(t *testing.T) {
	ctx := context.Background()

	p, mdb := newMockGormPSQLPersistence(t)

	finalizerCalled := false
	postCommitCalled := false

	mdb.ExpectBegin()
	mdb.ExpectRollback()

	err := p.Transaction(ctx, func(ctx context.Context, tx DBTX) error {
		tx.AddFinalizer(func(ctx context.Context, err error) {
			assert.Regexp(t, "pop", err)
			finalizerCalled = true
		})
		tx.AddPostCommit(func(ctx context.Context) {
			postCommitCalled = true
		})
		return fmt.Errorf("pop")
	})
	assert.Regexp(t, "pop", err)

	assert.True(t, finalizerCalled)
	assert.False(t, postCommitCalled)
	require.NoError(t, mdb.ExpectationsWereMet())
}

func TestTransactionPanic(t *testing.T) {
	ctx := context.Background()

	p, mdb := newMockGormPSQLPersistence(t)

	var finalizerErr error
	mdb.ExpectBegin()
	mdb.ExpectRollback()

	assert.Panics(t, func() {
		_ = p.Transaction(ctx, func(ctx context.Context, tx DBTX) error {
			tx.AddFinalizer(func(ctx context.Context, err error) {
				finalizerErr = err
			})
			panic("pop")
		})
	})
	assert.Regexp(t, "WV010107.*pop", finalizerErr)
}
