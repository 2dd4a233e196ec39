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

package signing

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// No signer capability is present
	WalletUnavailable Kind = "WalletUnavailable"
	// The wallet or its user declined, and the user may retry
	SigningRejected Kind = "SigningRejected"
	// The wallet failed, the caller gave up waiting, or the result could not be recorded
	SigningUnavailable Kind = "SigningUnavailable"
)

// Error is returned for every failure after a signing request has been accepted
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Kind)
	}
	return e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) String() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Error())
}

// KindOf returns the Kind of a signing error, or "" for any other error
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
