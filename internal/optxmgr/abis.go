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

package optxmgr

import (
	"encoding/json"

	"github.com/hyperledger/firefly-signer/pkg/abi"
)

// The token is a standard ERC-20; the vault is the investment contract value
// moves through. Only the entries the orchestrator actually calls or watches
// are declared.

var erc20ABI = mustParseABI(`[
	{"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"success","type":"bool"}]},
	{"type":"function","name":"approve","inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"success","type":"bool"}]},
	{"type":"function","name":"allowance","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"remaining","type":"uint256"}]},
	{"type":"function","name":"balanceOf","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"balance","type":"uint256"}]},
	{"type":"event","name":"Transfer","inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256"}]},
	{"type":"event","name":"Approval","inputs":[{"name":"owner","type":"address","indexed":true},{"name":"spender","type":"address","indexed":true},{"name":"value","type":"uint256"}]}
]`)

var vaultABI = mustParseABI(`[
	{"type":"function","name":"deposit","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"withdraw","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"adminTransfer","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"creditDeposit","inputs":[{"name":"sourceTx","type":"bytes32"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"event","name":"Deposited","inputs":[{"name":"account","type":"address","indexed":true},{"name":"amount","type":"uint256"}]},
	{"type":"event","name":"Withdrawn","inputs":[{"name":"account","type":"address","indexed":true},{"name":"amount","type":"uint256"}]}
]`)

func mustParseABI(abiJSON string) abi.ABI {
	var a abi.ABI
	if err := json.Unmarshal([]byte(abiJSON), &a); err != nil {
		panic(err)
	}
	return a
}
