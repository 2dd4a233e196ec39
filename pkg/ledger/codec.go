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
	"bytes"
	"context"
	"encoding/json"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/kaleido-io/walletverify/internal/msgs"
)

const (
	// A bare JSON array of records, with no envelope
	VersionLegacy = 0
	// {"version":1,"records":[...]}
	Version1 = 1

	CurrentVersion = Version1
)

type envelope struct {
	Version int       `json:"version"`
	Records []*Record `json:"records"`
}

// Every field is a pointer so a missing field can be told apart from a zero value
type wireEnvelope struct {
	Version *int               `json:"version"`
	Records *[]json.RawMessage `json:"records"`
}

type wireRecord struct {
	Address   *string `json:"address"`
	Message   *string `json:"message"`
	Signature *string `json:"signature"`
	Timestamp *int64  `json:"timestamp"`
}

func encodeRecords(records []*Record) ([]byte, error) {
	if records == nil {
		records = []*Record{}
	}
	return json.Marshal(&envelope{
		Version: CurrentVersion,
		Records: records,
	})
}

func decodeRecords(ctx context.Context, data []byte) ([]*Record, int, error) {
	data = bytes.TrimSpace(data)

	var rawRecords []json.RawMessage
	version := VersionLegacy
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &rawRecords); err != nil {
			return nil, -1, err
		}
	} else {
		var env wireEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, -1, err
		}
		if env.Version == nil {
			return nil, -1, i18n.NewError(ctx, msgs.MsgLedgerRecordFieldMissing, -1, "version")
		}
		if env.Records == nil {
			return nil, -1, i18n.NewError(ctx, msgs.MsgLedgerRecordFieldMissing, -1, "records")
		}
		version = *env.Version
		if version < Version1 || version > CurrentVersion {
			return nil, -1, i18n.NewError(ctx, msgs.MsgLedgerUnsupportedVersion, version, CurrentVersion)
		}
		rawRecords = *env.Records
	}

	records := make([]*Record, len(rawRecords))
	for i, raw := range rawRecords {
		var wr wireRecord
		if err := json.Unmarshal(raw, &wr); err != nil {
			return nil, -1, err
		}
		switch {
		case wr.Address == nil:
			return nil, -1, i18n.NewError(ctx, msgs.MsgLedgerRecordFieldMissing, i, "address")
		case wr.Message == nil:
			return nil, -1, i18n.NewError(ctx, msgs.MsgLedgerRecordFieldMissing, i, "message")
		case wr.Signature == nil:
			return nil, -1, i18n.NewError(ctx, msgs.MsgLedgerRecordFieldMissing, i, "signature")
		case wr.Timestamp == nil:
			return nil, -1, i18n.NewError(ctx, msgs.MsgLedgerRecordFieldMissing, i, "timestamp")
		}
		records[i] = &Record{
			Address:   *wr.Address,
			Message:   *wr.Message,
			Signature: *wr.Signature,
			Timestamp: *wr.Timestamp,
		}
	}
	return records, version, nil
}
