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

const (
	WalletTypeNone       = ""
	WalletTypeKeystoreV3 = "keystorev3"
	WalletTypeRPC        = "rpc"
)

type WalletConfig struct {
	Type       string                 `json:"type"`
	KeystoreV3 KeystoreV3WalletConfig `json:"keystorev3"`
	RPC        RPCWalletConfig        `json:"rpc"`
}

// An existing web3 secret storage (V3) file, decrypted with the password
// held in a separate file. The files are only ever read.
type KeystoreV3WalletConfig struct {
	KeyFile      string `json:"keyFile"`
	PasswordFile string `json:"passwordFile"`
}

type HTTPClientAuth struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RPCWalletConfig struct {
	URL         string                 `json:"url"`
	HTTPHeaders map[string]interface{} `json:"httpHeaders"`
	Auth        HTTPClientAuth         `json:"auth"`
	// if unset the first entry of eth_accounts is used
	Account *string `json:"account"`
}
