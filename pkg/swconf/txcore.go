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
	"github.com/gene42xxx/stable-wealth-sub000/pkg/retry"
)

type ChainClientConfig struct {
	HTTP                HTTPClientConfig `json:"http"`
	ChainID             *int64           `json:"chainId"`
	GasEstimateFactor   *float64         `json:"gasEstimateFactor"`
	ReceiptPollInterval *string          `json:"receiptPollInterval"`
	EventPollInterval   *string          `json:"eventPollInterval"`
}

var DefaultChainClientConfig = &ChainClientConfig{
	GasEstimateFactor:   confutil.P(1.5),
	ReceiptPollInterval: confutil.P("3s"),
	EventPollInterval:   confutil.P("5s"),
}

type LedgerConfig struct {
	HTTP      HTTPClientConfig    `json:"http"`
	NetworkID *int64              `json:"networkId"`
	ReadRetry retry.ConfigWithMax `json:"readRetry"`
}

var DefaultLedgerConfig = &LedgerConfig{
	NetworkID: confutil.P(int64(1)),
	ReadRetry: retry.ConfigWithMax{
		Config: retry.Config{
			InitialDelay: confutil.P("250ms"),
			MaxDelay:     confutil.P("5s"),
			Factor:       confutil.P(2.0),
		},
		MaxAttempts: confutil.P(3),
	},
}

type PriceFeedConfig struct {
	WS           WSClientConfig   `json:"ws"`
	HTTP         HTTPClientConfig `json:"http"`
	PollInterval *string          `json:"pollInterval"`
	Pair         *string          `json:"pair"`
}

var DefaultPriceFeedConfig = &PriceFeedConfig{
	PollInterval: confutil.P("60s"),
	Pair:         confutil.P("ETH-USD"),
}

type OrchestratorConfig struct {
	MaxInFlight     *int `json:"maxInFlight"`
	AdminFeePercent *int `json:"adminFeePercent"`
	// the stable token contract and the vault contract value moves through
	TokenAddress  *string `json:"tokenAddress"`
	VaultAddress  *string `json:"vaultAddress"`
	TokenDecimals *int    `json:"tokenDecimals"`
	Currency      *string `json:"currency"`
	// retries for ledger reads only; value-moving calls are never retried automatically
	LedgerReadRetry retry.ConfigWithMax `json:"ledgerReadRetry"`
}

var DefaultOrchestratorConfig = &OrchestratorConfig{
	MaxInFlight:     confutil.P(50),
	AdminFeePercent: confutil.P(0),
	TokenDecimals:   confutil.P(6),
	Currency:        confutil.P("USDT"),
	LedgerReadRetry: retry.ConfigWithMax{
		Config: retry.Config{
			InitialDelay: confutil.P("250ms"),
			MaxDelay:     confutil.P("10s"),
			Factor:       confutil.P(4.0),
		},
		MaxAttempts: confutil.P(3),
	},
}

// ApprovalPolicy selects the target amount of a re-approval.
type ApprovalPolicy string

const (
	// ApprovalPolicyUnlimited approves the maximum representable value, avoiding repeated paid approvals
	ApprovalPolicyUnlimited ApprovalPolicy = "unlimited"
	// ApprovalPolicyExact approves only the required amount, preferring minimal-allowance hygiene
	ApprovalPolicyExact ApprovalPolicy = "exact"
)

type AllowanceConfig struct {
	Policy *string `json:"policy"`
	// used only with the exact policy when a fixed cap is preferred over the per-operation amount
	ApprovalCap *string `json:"approvalCap"`
}

var DefaultAllowanceConfig = &AllowanceConfig{
	Policy: confutil.P(string(ApprovalPolicyUnlimited)),
}

type FeeEstimatorConfig struct {
	DebounceInterval  *string `json:"debounceInterval"`
	GasPriceCacheSize *int    `json:"gasPriceCacheSize"`
	GasPriceCacheTTL  *string `json:"gasPriceCacheTTL"`
}

var DefaultFeeEstimatorConfig = &FeeEstimatorConfig{
	DebounceInterval:  confutil.P("700ms"),
	GasPriceCacheSize: confutil.P(4),
	GasPriceCacheTTL:  confutil.P("15s"),
}

type OpStoreConfig struct {
	// sqlite DSN; ":memory:" for tests
	DSN         *string `json:"dsn"`
	AutoMigrate *bool   `json:"autoMigrate"`
}

var DefaultOpStoreConfig = &OpStoreConfig{
	DSN:         confutil.P("file:swtxcore.db"),
	AutoMigrate: confutil.P(true),
}
