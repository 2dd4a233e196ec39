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

package wvconf

import "github.com/kaleido-io/walletverify/pkg/confutil"

const (
	StoreTypeMemory     = "memory"
	StoreTypeFilesystem = "filesystem"
	StoreTypeBadger     = "badger"
	StoreTypeSQLite     = "sqlite"
	StoreTypePostgres   = "postgres"
)

type StoreConfig struct {
	Type       string                `json:"type"`
	FileSystem FileSystemStoreConfig `json:"filesystem"`
	Badger     BadgerStoreConfig     `json:"badger"`
	SQLite     SQLDBConfig           `json:"sqlite"`
	Postgres   SQLDBConfig           `json:"postgres"`
}

type FileSystemStoreConfig struct {
	Path     *string `json:"path"`
	FileMode *string `json:"fileMode"`
	DirMode  *string `json:"dirMode"`
}

var FileSystemStoreDefaults = &FileSystemStoreConfig{
	Path:     confutil.P("wvstore"),
	FileMode: confutil.P("0600"),
	DirMode:  confutil.P("0700"),
}

type BadgerStoreConfig struct {
	Path            *string `json:"path"`
	InMemory        bool    `json:"inMemory"`
	SyncWrites      *bool   `json:"syncWrites"`
	ConflictRetries *int    `json:"conflictRetries"`
}

var BadgerStoreDefaults = &BadgerStoreConfig{
	Path:            confutil.P("wvbadger"),
	SyncWrites:      confutil.P(true),
	ConflictRetries: confutil.P(10),
}

// Extensible in case we want to add more options
type DSNParamLocation struct {
	File string `json:"file,omitempty"` // whole file contains the property value - will be trimmed before use
}

type SQLDBConfig struct {
	DSN             string                      `json:"dsn"` // can have {{.ParamName}} for replacement from params
	DSNParams       map[string]DSNParamLocation `json:"dsnParams"`
	MaxOpenConns    *int                        `json:"maxOpenConns"`
	MaxIdleConns    *int                        `json:"maxIdleConns"`
	ConnMaxIdleTime *string                     `json:"connMaxIdleTime"`
	ConnMaxLifetime *string                     `json:"connMaxLifetime"`
	AutoMigrate     *bool                       `json:"autoMigrate"`
	MigrationsDir   string                      `json:"migrationsDir"`
	DebugQueries    bool                        `json:"debugQueries"`
	StatementCache  *bool                       `json:"statementCache"`
}
