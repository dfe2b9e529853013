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
	"context"
	"fmt"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gene42xxx/stable-wealth-sub000/pkg/confutil"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/swconf"
)

func TestNewManagerFromConfigFile(t *testing.T) {
	configFile := path.Join(t.TempDir(), "core.yaml")
	err := os.WriteFile(configFile, []byte(fmt.Sprintf(`
log:
  level: debug
blockchain:
  http:
    url: http://localhost:8545
  chainId: 1337
ledger:
  http:
    url: http://localhost:3000
priceFeed:
  http:
    url: http://localhost:3001
orchestrator:
  tokenAddress: "%s"
  vaultAddress: "%s"
opStore:
  dsn: "file::memory:?cache=shared"
`, testTokenAddr, testVaultAddr)), 0644)
	require.NoError(t, err)

	mgr, err := NewManagerFromConfigFile(context.Background(), configFile, nil, nil)
	require.NoError(t, err)
	mgr.Close()
}

func TestNewManagerFromConfigFileMissing(t *testing.T) {
	_, err := NewManagerFromConfigFile(context.Background(), path.Join(t.TempDir(), "nope.yaml"), nil, nil)
	assert.Regexp(t, "SW000003", err)
}

func TestNewManagerFromConfigBadChainURL(t *testing.T) {
	_, err := NewManagerFromConfig(context.Background(), &swconf.TxCoreConfig{}, nil, nil)
	assert.Regexp(t, "SW000100", err)
}

func TestNewManagerFromConfigMissingLedgerURL(t *testing.T) {
	conf := &swconf.TxCoreConfig{}
	conf.Blockchain.HTTP.URL = "http://localhost:8545"
	conf.Blockchain.ChainID = confutil.P(int64(1337))
	_, err := NewManagerFromConfig(context.Background(), conf, nil, nil)
	assert.Regexp(t, "SW000007", err)
}
