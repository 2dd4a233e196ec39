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

	"github.com/kaleido-io/walletverify/pkg/confutil"
	"github.com/kaleido-io/walletverify/pkg/wvconf"
)

// NewUnitTestPersistence returns an in-memory sqlite database migrated with the
// schema under db/migrations. The relative path assumes the caller's package
// sits two directories below the repository root.
func NewUnitTestPersistence(ctx context.Context) (Persistence, func(), error) {
	p, err := newSQLiteProvider(ctx, &wvconf.SQLDBConfig{
		DSN:           ":memory:",
		AutoMigrate:   confutil.P(true),
		MigrationsDir: "../../db/migrations/sqlite",
	})
	if err != nil {
		return nil, nil, err
	}
	return p, p.Close, nil
}
