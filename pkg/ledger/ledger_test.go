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
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/kaleido-io/walletverify/pkg/confutil"
	"github.com/kaleido-io/walletverify/pkg/kvstore"
	"github.com/kaleido-io/walletverify/pkg/wvconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAddr = "0xAbCd" + strings.Repeat("0", 32) + "1234"

func testRecord(i int) *Record {
	return &Record{
		Address:   testAddr,
		Message:   fmt.Sprintf("req-%d", i),
		Signature: fmt.Sprintf("0xdeadbeef%.4d", i),
		Timestamp: 1700000000000 + int64(i),
	}
}

type failingStore struct {
	kvstore.Store
	getErr error
	setErr error
}

func (fs *failingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if fs.getErr != nil {
		return nil, false, fs.getErr
	}
	return fs.Store.Get(ctx, key)
}

func (fs *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if fs.setErr != nil {
		return fs.setErr
	}
	return fs.Store.Set(ctx, key, value)
}

func newTestLedgers(t *testing.T) map[string]Ledger {
	ctx := context.Background()
	fsStore, err := kvstore.NewFilesystemStore(ctx, &wvconf.FileSystemStoreConfig{Path: confutil.P(t.TempDir())})
	require.NoError(t, err)
	return map[string]Ledger{
		"memory":        NewMemoryLedger(),
		"kv-atomic":     NewKVLedger(ctx, kvstore.NewMemoryStore(), &wvconf.LedgerConfig{}),
		"kv-nonatomic":  NewKVLedger(ctx, kvstore.NewMemoryStore(), &wvconf.LedgerConfig{AtomicAppend: confutil.P(false)}),
		"kv-filesystem": NewKVLedger(ctx, fsStore, &wvconf.LedgerConfig{}),
	}
}

func TestLedgerAppendAllFind(t *testing.T) {
	ctx := context.Background()
	for name, l := range newTestLedgers(t) {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, l.All(ctx))
			assert.NotNil(t, l.All(ctx))

			for i := 0; i < 3; i++ {
				require.NoError(t, l.Append(ctx, testRecord(i)))
				assert.Len(t, l.All(ctx), i+1)
			}

			all := l.All(ctx)
			for i, r := range all {
				assert.Equal(t, testRecord(i), r)
			}

			match := l.FindMatch(ctx, strings.ToLower(testAddr), "req-1", "0xdeadbeef0001")
			require.NotNil(t, match)
			assert.Equal(t, testRecord(1), match)
			match = l.FindMatch(ctx, strings.ToUpper(testAddr), "req-1", "0xdeadbeef0001")
			require.NotNil(t, match)

			// message and signature are exact
			assert.Nil(t, l.FindMatch(ctx, testAddr, "REQ-1", "0xdeadbeef0001"))
			assert.Nil(t, l.FindMatch(ctx, testAddr, "req-1", "0xDEADBEEF0001"))
			assert.Nil(t, l.FindMatch(ctx, testAddr, "req-1", "0xdeadbeef0002"))
			assert.Nil(t, l.FindMatch(ctx, "0x"+strings.Repeat("1", 40), "req-1", "0xdeadbeef0001"))
		})
	}
}

func TestLedgerFirstMatchWins(t *testing.T) {
	ctx := context.Background()
	for name, l := range newTestLedgers(t) {
		t.Run(name, func(t *testing.T) {
			first := testRecord(1)
			second := testRecord(1)
			second.Address = strings.ToLower(testAddr)
			second.Timestamp++
			require.NoError(t, l.Append(ctx, first))
			require.NoError(t, l.Append(ctx, second))
			assert.Equal(t, first, l.FindMatch(ctx, testAddr, first.Message, first.Signature))
		})
	}
}

func TestLedgerRecordsImmutable(t *testing.T) {
	ctx := context.Background()
	for name, l := range newTestLedgers(t) {
		t.Run(name, func(t *testing.T) {
			r := testRecord(1)
			require.NoError(t, l.Append(ctx, r))
			r.Message = "changed"
			l.All(ctx)[0].Message = "changed again"
			l.FindMatch(ctx, testAddr, "req-1", r.Signature).Message = "and again"
			assert.Equal(t, "req-1", l.All(ctx)[0].Message)
		})
	}
}

func TestLedgerValidation(t *testing.T) {
	ctx := context.Background()
	for name, l := range newTestLedgers(t) {
		t.Run(name, func(t *testing.T) {
			r := testRecord(1)
			r.Address = "0x1234"
			assert.Regexp(t, "WV010303.*address", l.Append(ctx, r))

			r = testRecord(1)
			r.Message = ""
			assert.Regexp(t, "WV010303.*message", l.Append(ctx, r))

			r = testRecord(1)
			r.Message = "req-\xff\xfe-1"
			assert.Regexp(t, "WV010303.*message", l.Append(ctx, r))

			r = testRecord(1)
			r.Signature = ""
			assert.Regexp(t, "WV010303.*signature", l.Append(ctx, r))

			r = testRecord(1)
			r.Timestamp = 0
			assert.Regexp(t, "WV010303.*timestamp", l.Append(ctx, r))

			assert.Empty(t, l.All(ctx))
		})
	}
}

func TestKVLedgerMessagesByteExact(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	messages := []string{"héllo wörld", "line\u2028sep", "<a&b>", "\x00\t\"quoted\"", "🙂"}
	l := NewKVLedger(ctx, store, &wvconf.LedgerConfig{})
	for i, m := range messages {
		r := testRecord(i + 1)
		r.Message = m
		require.NoError(t, l.Append(ctx, r))
	}

	reopened := NewKVLedger(ctx, store, &wvconf.LedgerConfig{})
	records := reopened.All(ctx)
	require.Len(t, records, len(messages))
	for i, m := range messages {
		assert.Equal(t, []byte(m), []byte(records[i].Message))
	}
}

func TestKVLedgerEnvelope(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	l := NewKVLedger(ctx, store, &wvconf.LedgerConfig{})
	require.NoError(t, l.Append(ctx, testRecord(1)))

	data, found, err := store.Get(ctx, "wallet-verifications")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{
		"version": 1,
		"records": [{
			"address": "`+testAddr+`",
			"message": "req-1",
			"signature": "0xdeadbeef0001",
			"timestamp": 1700000000001
		}]
	}`, string(data))

	// a second ledger over the same store sees the same records
	l2 := NewKVLedger(ctx, store, &wvconf.LedgerConfig{})
	assert.Equal(t, l.All(ctx), l2.All(ctx))
}

func TestKVLedgerCustomKey(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	l := NewKVLedger(ctx, store, &wvconf.LedgerConfig{Key: confutil.P("other")})
	require.NoError(t, l.Append(ctx, testRecord(1)))
	_, found, err := store.Get(ctx, "wallet-verifications")
	require.NoError(t, err)
	assert.False(t, found)
	_, found, err = store.Get(ctx, "other")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestKVLedgerReadsLegacyArray(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	legacy := `[{"address":"` + strings.ToLower(testAddr) + `","message":"req-0","signature":"0xdeadbeef0000","timestamp":1700000000000}]`
	require.NoError(t, store.Set(ctx, "wallet-verifications", []byte(legacy)))

	l := NewKVLedger(ctx, store, &wvconf.LedgerConfig{})
	all := l.All(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, strings.ToLower(testAddr), all[0].Address)
	assert.NotNil(t, l.FindMatch(ctx, testAddr, "req-0", "0xdeadbeef0000"))

	// appending upgrades the format, and keeps the legacy records
	require.NoError(t, l.Append(ctx, testRecord(1)))
	data, _, err := store.Get(ctx, "wallet-verifications")
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, Version1, env.Version)
	assert.Len(t, env.Records, 2)

	_, found, err := store.Get(ctx, "wallet-verifications.corrupt")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestKVLedgerCorruptStore(t *testing.T) {
	ctx := context.Background()
	for _, garbage := range []string{
		`not json at all`,
		`{"version":1}`,
		`{"records":[]}`,
		`{"version":2,"records":[]}`,
		`[{"address":"0x00","message":"m","signature":"s"}]`,
		`[{"address":"0x00","message":"m","signature":"s","timestamp":"yesterday"}]`,
		`[null]`,
		`null`,
		``,
	} {
		t.Run(garbage, func(t *testing.T) {
			store := kvstore.NewMemoryStore()
			require.NoError(t, store.Set(ctx, "wallet-verifications", []byte(garbage)))
			l := NewKVLedger(ctx, store, &wvconf.LedgerConfig{})

			all := l.All(ctx)
			assert.NotNil(t, all)
			assert.Empty(t, all)
			assert.Nil(t, l.FindMatch(ctx, "0x00", "m", "s"))

			require.NoError(t, l.Append(ctx, testRecord(1)))
			assert.Equal(t, []*Record{testRecord(1)}, l.All(ctx))

			backup, found, err := store.Get(ctx, "wallet-verifications.corrupt")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, garbage, string(backup))
		})
	}
}

func TestKVLedgerConcurrentAtomicAppend(t *testing.T) {
	ctx := context.Background()
	l := NewKVLedger(ctx, kvstore.NewMemoryStore(), &wvconf.LedgerConfig{})

	const writers = 50
	wg := sync.WaitGroup{}
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, l.Append(ctx, testRecord(i)))
		}(i)
	}
	wg.Wait()
	assert.Len(t, l.All(ctx), writers)
}

func TestKVLedgerStoreFailures(t *testing.T) {
	ctx := context.Background()

	l := NewKVLedger(ctx, &failingStore{Store: kvstore.NewMemoryStore(), getErr: fmt.Errorf("pop")}, &wvconf.LedgerConfig{})
	assert.Regexp(t, "WV010304.*pop", l.Append(ctx, testRecord(1)))
	assert.Empty(t, l.All(ctx))
	assert.Nil(t, l.FindMatch(ctx, testAddr, "req-1", "0xdeadbeef0001"))

	// the wrapper hides the atomic update, so this is the get-then-set path
	l = NewKVLedger(ctx, &failingStore{Store: kvstore.NewMemoryStore(), setErr: fmt.Errorf("pop")}, &wvconf.LedgerConfig{})
	assert.Regexp(t, "WV010305.*pop", l.Append(ctx, testRecord(1)))
	assert.Empty(t, l.All(ctx))
}

func TestKVLedgerCorruptBackupFails(t *testing.T) {
	ctx := context.Background()
	inner := kvstore.NewMemoryStore()
	require.NoError(t, inner.Set(ctx, "wallet-verifications", []byte("garbage")))
	l := NewKVLedger(ctx, &failingStore{Store: inner, setErr: fmt.Errorf("pop")}, &wvconf.LedgerConfig{})

	assert.Regexp(t, "WV010305.*wallet-verifications.corrupt", l.Append(ctx, testRecord(1)))
	data, _, err := inner.Get(ctx, "wallet-verifications")
	require.NoError(t, err)
	assert.Equal(t, "garbage", string(data))
}

func TestDecodeRecordsErrors(t *testing.T) {
	ctx := context.Background()

	_, _, err := decodeRecords(ctx, []byte(`{"version":2,"records":[]}`))
	assert.Regexp(t, "WV010301.*2.*max=1", err)

	_, _, err = decodeRecords(ctx, []byte(`{"version":0,"records":[]}`))
	assert.Regexp(t, "WV010301", err)

	_, _, err = decodeRecords(ctx, []byte(`{"records":[]}`))
	assert.Regexp(t, "WV010302.*version", err)

	_, _, err = decodeRecords(ctx, []byte(`[{"address":"a","message":"m","signature":"s","timestamp":1},{"address":"a","signature":"s","timestamp":1}]`))
	assert.Regexp(t, "WV010302.*1.*message", err)

	records, version, err := decodeRecords(ctx, []byte(` {"version":1,"records":[]} `))
	require.NoError(t, err)
	assert.Equal(t, Version1, version)
	assert.Empty(t, records)

	records, version, err = decodeRecords(ctx, []byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, VersionLegacy, version)
	assert.Empty(t, records)
}

func TestRecordTime(t *testing.T) {
	r := testRecord(0)
	assert.Equal(t, int64(1700000000000), r.Time().UnixMilli())
}
