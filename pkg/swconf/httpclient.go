/*
 * Copyright © 2025 Stable Wealth, Inc.
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

package swconf

import (
	"github.com/gene42xxx/stable-wealth-sub000/pkg/confutil"
)

type HTTPBasicAuthConfig struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type HTTPClientConfig struct {
	URL               string                 `json:"url"`
	HTTPHeaders       map[string]interface{} `json:"httpHeaders"`
	Auth              HTTPBasicAuthConfig    `json:"auth"`
	RequestTimeout    *string                `json:"requestTimeout,omitempty"`
	ConnectionTimeout *string                `json:"connectionTimeout,omitempty"`
}

var DefaultHTTPConfig = &HTTPClientConfig{
	ConnectionTimeout: confutil.P("30s"),
	RequestTimeout:    confutil.P("30s"),
}

type WSClientConfig struct {
	URL                    string  `json:"url"`
	InitialConnectAttempts *int    `json:"initialConnectAttempts"`
	ConnectionTimeout      *string `json:"connectionTimeout"`
	HeartbeatInterval      *string `json:"heartbeatInterval"`
}

// The market-data socket is the only collaborator with a bounded connection
// attempt timeout. Wallet and receipt waits are never bounded here.
var DefaultWSConfig = &WSClientConfig{
	InitialConnectAttempts: confutil.P(1),
	ConnectionTimeout:      confutil.P("8s"),
	HeartbeatInterval:      confutil.P("15s"),
}
