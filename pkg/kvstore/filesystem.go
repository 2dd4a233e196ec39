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
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/kaleido-io/walletverify/internal/msgs"
	"github.com/kaleido-io/walletverify/pkg/confutil"
	"github.com/kaleido-io/walletverify/pkg/log"
	"github.com/kaleido-io/walletverify/pkg/wvconf"
)

type filesystemStore struct {
	path     string
	fileMode os.FileMode
	dirMode  os.FileMode
}

// NewFilesystemStore keeps one file per key under a directory. Writes replace
// the file atomically, but there is no cross-process locking, so concurrent
// read-modify-write cycles are last-writer-wins.
func NewFilesystemStore(ctx context.Context, conf *wvconf.FileSystemStoreConfig) (Store, error) {
	defs := wvconf.FileSystemStoreDefaults
	fss := &filesystemStore{
		fileMode: confutil.UnixFileMode(conf.FileMode, *defs.FileMode),
		dirMode:  confutil.UnixFileMode(conf.DirMode, *defs.DirMode),
	}

	var pathInfo fs.FileInfo
	path, err := filepath.Abs(confutil.StringNotEmpty(conf.Path, *defs.Path))
	if err == nil {
		err = os.MkdirAll(path, fss.dirMode)
	}
	if err == nil {
		pathInfo, err = os.Stat(path)
	}
	if err != nil || !pathInfo.IsDir() {
		return nil, i18n.WrapError(ctx, err, msgs.MsgKVStoreBadPath, path)
	}
	fss.path = path
	log.L(ctx).Debugf("Filesystem store at %s", path)
	return fss, nil
}

// The prefix means no key can resolve to "." or ".."
func (fss *filesystemStore) keyPath(key string) string {
	return filepath.Join(fss.path, "-"+url.PathEscape(key))
}

func (fss *filesystemStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := checkKey(ctx, key); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(fss.keyPath(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, i18n.WrapError(ctx, err, msgs.MsgKVStoreFSError, key)
	}
	return data, true, nil
}

func (fss *filesystemStore) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(fss.path, ".tmp-*")
	if err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgKVStoreFSError, key)
	}
	tmpName := tmp.Name()
	_, err = tmp.Write(value)
	if err == nil {
		err = tmp.Chmod(fss.fileMode)
	}
	if err == nil {
		err = tmp.Sync()
	}
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmpName, fss.keyPath(key))
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return i18n.WrapError(ctx, err, msgs.MsgKVStoreFSError, key)
	}
	return nil
}

func (fss *filesystemStore) Close() {}
