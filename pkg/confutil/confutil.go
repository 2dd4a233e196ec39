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

// Package confutil holds the small accessors used to resolve pointer-valued
// config fields against their defaults. The log package depends on this, so
// nothing in here may log.
package confutil

import (
	"io/fs"
	"strconv"
	"time"

	"github.com/docker/go-units"
)

func P[T any](v T) *T {
	return &v
}

func Int(iVal *int, def int) int {
	if iVal == nil {
		return def
	}
	return *iVal
}

func IntMin(iVal *int, min int, def int) int {
	if iVal == nil {
		return def
	} else if *iVal < min {
		return min
	}
	return *iVal
}

func Bool(bVal *bool, def bool) bool {
	if bVal == nil {
		return def
	}
	return *bVal
}

func StringNotEmpty(sVal *string, def string) string {
	if sVal == nil || *sVal == "" {
		return def
	}
	return *sVal
}

// UnixFileMode parses an octal permission string, falling back to the
// default if the value is unset, unparsable or has bits beyond 0777
func UnixFileMode(sVal *string, def string) fs.FileMode {
	if sVal != nil {
		if i64, err := strconv.ParseUint(*sVal, 8, 32); err == nil && i64 <= 0777 {
			return fs.FileMode(i64)
		}
	}
	i64, _ := strconv.ParseUint(def, 8, 32)
	return fs.FileMode(i64)
}

func DurationMin(sVal *string, min time.Duration, def string) time.Duration {
	if sVal != nil {
		if d, err := time.ParseDuration(*sVal); err == nil {
			if d < min {
				return min
			}
			return d
		}
	}
	d, _ := time.ParseDuration(def)
	return d
}

// ByteSize accepts human sizes such as "100Mb" or "16Kb"
func ByteSize(sVal *string, min int64, def string) int64 {
	if sVal != nil {
		if i, err := units.RAMInBytes(*sVal); err == nil {
			if i < min {
				return min
			}
			return i
		}
	}
	i, _ := units.RAMInBytes(def)
	return i
}
