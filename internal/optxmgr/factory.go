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

	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gene42xxx/stable-wealth-sub000/internal/ledger"
	"github.com/gene42xxx/stable-wealth-sub000/internal/metrics"
	"github.com/gene42xxx/stable-wealth-sub000/internal/opstore"
	"github.com/gene42xxx/stable-wealth-sub000/internal/pricefeed"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/chainclient"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/confutil"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/swconf"
)

// NewManagerFromConfig builds every collaborator from configuration. The
// wallet signer is the one collaborator that cannot come from config: it is
// the user-controlled signing surface.
func NewManagerFromConfig(ctx context.Context, conf *swconf.TxCoreConfig, wallet chainclient.WalletSigner, metricsRegistry *prometheus.Registry) (Manager, error) {
	log.SetLevel(confutil.StringNotEmpty(conf.Log.Level, *swconf.LogDefaults.Level))

	chain, err := chainclient.NewChainClient(ctx, wallet, &conf.Blockchain)
	if err != nil {
		return nil, err
	}
	ledgerClient, err := ledger.NewLedgerClient(ctx, &conf.Ledger)
	if err != nil {
		chain.Close()
		return nil, err
	}
	prices, err := pricefeed.NewPriceFeed(ctx, &conf.PriceFeed)
	if err != nil {
		chain.Close()
		return nil, err
	}
	store, err := opstore.NewStore(ctx, &conf.OpStore)
	if err != nil {
		prices.Stop()
		chain.Close()
		return nil, err
	}

	var operationMetrics metrics.OperationMetrics
	if metricsRegistry != nil {
		operationMetrics = metrics.InitMetrics(metricsRegistry)
	}
	return NewManager(ctx, conf, chain, ledgerClient, prices, store, operationMetrics)
}

// NewManagerFromConfigFile loads YAML configuration and builds the core.
func NewManagerFromConfigFile(ctx context.Context, filePath string, wallet chainclient.WalletSigner, metricsRegistry *prometheus.Registry) (Manager, error) {
	var conf swconf.TxCoreConfig
	if err := swconf.ReadAndParseYAMLFile(ctx, filePath, &conf); err != nil {
		return nil, err
	}
	return NewManagerFromConfig(ctx, &conf, wallet, metricsRegistry)
}
