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

package confutil

import (
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInt(t *testing.T) {
	assert.Equal(t, 12345, Int(nil, 12345))
	assert.Equal(t, 23456, Int(P(23456), 12345))
	assert.Equal(t, 10, IntMin(P(1), 10, 12345))
	assert.Equal(t, 12345, IntMin(nil, 10, 12345))
	assert.Equal(t, 11, IntMin(P(11), 10, 12345))
}

func TestBool(t *testing.T) {
	assert.True(t, Bool(nil, true))
	assert.False(t, Bool(P(false), true))
}

func TestStringNotEmpty(t *testing.T) {
	assert.Equal(t, "def", StringNotEmpty(nil, "def"))
	assert.Equal(t, "def", StringNotEmpty(P(""), "def"))
	assert.Equal(t, "val", StringNotEmpty(P("val"), "def"))
}

func TestUnixFileMode(t *testing.T) {
	assert.Equal(t, fs.FileMode(0644), UnixFileMode(nil, "0644"))
	assert.Equal(t, fs.FileMode(0600), UnixFileMode(P("0600"), "0644"))
	assert.Equal(t, fs.FileMode(0644), UnixFileMode(P("wrong"), "0644"))
	assert.Equal(t, fs.FileMode(0644), UnixFileMode(P("01777"), "0644"))
}

func TestDurationMin(t *testing.T) {
	assert.Equal(t, 10*time.Second, DurationMin(nil, 0, "10s"))
	assert.Equal(t, 5*time.Second, DurationMin(P("1s"), 5*time.Second, "10s"))
	assert.Equal(t, 20*time.Second, DurationMin(P("20s"), 5*time.Second, "10s"))
	assert.Equal(t, 10*time.Second, DurationMin(P("wrong"), 0, "10s"))
}

func TestByteSize(t *testing.T) {
	assert.Equal(t, int64(1024), ByteSize(nil, 0, "1Kb"))
	assert.Equal(t, int64(100*1024*1024), ByteSize(P("100Mb"), 0, "1Kb"))
	assert.Equal(t, int64(2048), ByteSize(P("1Kb"), 2048, "1Kb"))
	assert.Equal(t, int64(1024), ByteSize(P("wrong"), 0, "1Kb"))
}
