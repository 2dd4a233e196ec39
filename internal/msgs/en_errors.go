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

package msgs

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"golang.org/x/text/language"
)

const walletVerifyPrefix = "WV01"

var registered sync.Once
var ffe = func(key, translation string, statusHint ...int) i18n.ErrorMessageKey {
	registered.Do(func() {
		i18n.RegisterPrefix(walletVerifyPrefix, "Wallet Verification")
	})
	if !strings.HasPrefix(key, walletVerifyPrefix) {
		panic(fmt.Errorf("must have prefix '%s': %s", walletVerifyPrefix, key))
	}
	return i18n.FFE(language.AmericanEnglish, key, translation, statusHint...)
}

var (
	// Config WV0100XX
	MsgConfigFileMissing    = ffe("WV010000", "Config file not found at path: %s")
	MsgConfigFileReadError  = ffe("WV010001", "Failed to read config file %s with error: %s")
	MsgConfigFileParseError = ffe("WV010002", "Failed to parse config file: %s")

	// Persistence WV0101XX
	MsgPersistenceInvalidType          = ffe("WV010100", "Invalid database type: %s")
	MsgPersistenceMissingDSN           = ffe("WV010101", "Missing database connection Data Source Name (DSN) config")
	MsgPersistenceInitFailed           = ffe("WV010102", "Database init failed")
	MsgPersistenceMigrationFailed      = ffe("WV010103", "Database migration failed")
	MsgPersistenceMissingMigrationDir  = ffe("WV010104", "Missing database migration directory for autoMigrate")
	MsgPersistenceInvalidDSNTemplate   = ffe("WV010105", "Templated substitution into database connection DSN failed")
	MsgPersistenceDSNParamLoadFile     = ffe("WV010106", "Failed to load DSN parameter '%s' from file '%s'")
	MsgPersistenceErrorInDBTransaction = ffe("WV010107", "Panic in database transaction: %v")

	// Key value store WV0102XX
	MsgKVStoreInvalidType      = ffe("WV010200", "Unsupported store type: '%s'")
	MsgKVStoreKeyEmpty         = ffe("WV010201", "Store key cannot be empty")
	MsgKVStoreBadPath          = ffe("WV010202", "Store path '%s' is not a directory")
	MsgKVStoreFSError          = ffe("WV010203", "Filesystem error accessing key '%s'")
	MsgKVStoreBadgerOpenFailed = ffe("WV010204", "Failed to open badger store at '%s'")
	MsgKVStoreBadgerError      = ffe("WV010205", "Badger store operation failed for key '%s'")
	MsgKVStoreBadgerConflict   = ffe("WV010206", "Badger update of key '%s' still conflicting after %d attempts")
	MsgKVStoreDBError          = ffe("WV010207", "Database store operation failed for key '%s'")
	MsgKVStoreClosed           = ffe("WV010208", "Store is closed")

	// Ledger WV0103XX
	MsgLedgerStoreCorrupt       = ffe("WV010300", "Ledger data under key '%s' could not be parsed")
	MsgLedgerUnsupportedVersion = ffe("WV010301", "Ledger data version %d is not supported (max=%d)")
	MsgLedgerRecordFieldMissing = ffe("WV010302", "Ledger record %d is missing required field '%s'")
	MsgLedgerRecordInvalid      = ffe("WV010303", "Record cannot be appended: field '%s' is missing or invalid")
	MsgLedgerReadFailed         = ffe("WV010304", "Failed to read ledger data under key '%s'")
	MsgLedgerWriteFailed        = ffe("WV010305", "Failed to write ledger data under key '%s'")

	// Personal message signatures WV0104XX
	MsgSignatureInvalidHex    = ffe("WV010400", "Signature is not valid hex")
	MsgSignatureInvalidLength = ffe("WV010401", "Signature must be 64 or 65 bytes (length=%d)")
	MsgSignatureInvalidV      = ffe("WV010402", "Signature recovery parameter v=%d is invalid")
	MsgSignatureInvalidValues = ffe("WV010403", "Signature r/s values are out of range")
	MsgSignatureRecoverFailed = ffe("WV010404", "Failed to recover public key from signature")
	MsgAddressInvalid         = ffe("WV010405", "Invalid wallet address '%s'")

	// Wallet WV0105XX
	MsgWalletUnsupportedType      = ffe("WV010500", "Unsupported wallet type: '%s'")
	MsgWalletKeyFileRead          = ffe("WV010501", "Failed to read keystore file '%s'")
	MsgWalletPasswordFileRead     = ffe("WV010502", "Failed to read keystore password file '%s'")
	MsgWalletKeystoreDecrypt      = ffe("WV010503", "Failed to decrypt keystore file '%s'")
	MsgWalletRPCURLMissing        = ffe("WV010504", "Wallet RPC URL missing")
	MsgWalletRPCInvalidURL        = ffe("WV010505", "Invalid wallet RPC URL: %s")
	MsgWalletRPCAccountsFailed    = ffe("WV010506", "Wallet eth_accounts request failed")
	MsgWalletRPCNoAccounts        = ffe("WV010507", "Wallet has no connected accounts")
	MsgWalletRPCSignFailed        = ffe("WV010508", "Wallet personal_sign request failed")
	MsgWalletRPCRejected          = ffe("WV010509", "Wallet declined the signing request (code=%d): %s")
	MsgWalletRequestAbandoned     = ffe("WV010510", "Stopped waiting for the wallet: %s")
	MsgWalletKeyPairMissing       = ffe("WV010511", "No key pair supplied for in-process signer")
	MsgWalletSignFailed           = ffe("WV010512", "In-process signing failed")
	MsgWalletInvalidAccountConfig = ffe("WV010513", "Configured wallet account '%s' is not a valid address")

	// Signing WV0106XX
	MsgSigningWalletUnavailable   = ffe("WV010600", "No wallet is connected")
	MsgSigningEmptyMessage        = ffe("WV010601", "Message to sign cannot be empty")
	MsgSigningRejected            = ffe("WV010602", "Signing request was rejected")
	MsgSigningUnavailable         = ffe("WV010603", "Signing is unavailable")
	MsgSigningSignatureMalformed  = ffe("WV010604", "Wallet returned a malformed signature")
	MsgSigningSignatureMismatch   = ffe("WV010605", "Wallet signature recovers to %s rather than the connected address %s")
	MsgSigningRecordFailed        = ffe("WV010606", "Failed to record the signature in the ledger")
	MsgSigningWalletAddressFailed = ffe("WV010607", "Failed to obtain the wallet address")
	MsgSigningMessageNotUTF8      = ffe("WV010608", "Message to sign must be valid UTF-8 text")

	// Engine WV0107XX
	MsgEngineStoreInitFailed  = ffe("WV010700", "Failed to initialize the ledger store")
	MsgEngineWalletInitFailed = ffe("WV010701", "Failed to initialize the configured wallet")
)
