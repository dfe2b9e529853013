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
	"math/big"
	"sync"
	"time"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"

	"github.com/gene42xxx/stable-wealth-sub000/internal/cache"
	"github.com/gene42xxx/stable-wealth-sub000/internal/msgs"
	"github.com/gene42xxx/stable-wealth-sub000/internal/pricefeed"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/chainclient"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/confutil"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/swconf"
)

// FeeEstimate is advisory, shown to the user before they sign. The display
// conversion is marked unavailable rather than guessed when no fresh market
// price exists.
type FeeEstimate struct {
	GasLimit  *big.Int
	GasPrice  *big.Int
	NativeFee *big.Int
	// NativeFee converted through the market price, display currency
	DisplayFee       string
	DisplayAvailable bool
}

type gasPriceEntry struct {
	price     *big.Int
	retrieved time.Time
}

// FeeEstimator computes a gas fee estimate for a prospective contract call.
// Gas prices are cached briefly; estimates themselves are never cached since
// they depend on the exact calldata.
type FeeEstimator struct {
	chain            chainclient.ChainClient
	prices           pricefeed.PriceSource
	debounceInterval time.Duration
	cacheTTL         time.Duration

	mux           sync.Mutex
	gasPriceCache cache.Cache[string, *gasPriceEntry]
}

func NewFeeEstimator(chain chainclient.ChainClient, prices pricefeed.PriceSource, conf *swconf.FeeEstimatorConfig) *FeeEstimator {
	return &FeeEstimator{
		chain:            chain,
		prices:           prices,
		debounceInterval: confutil.DurationMin(conf.DebounceInterval, 0, *swconf.DefaultFeeEstimatorConfig.DebounceInterval),
		cacheTTL:         confutil.DurationMin(conf.GasPriceCacheTTL, 0, *swconf.DefaultFeeEstimatorConfig.GasPriceCacheTTL),
		gasPriceCache: cache.NewCache[string, *gasPriceEntry](
			&cache.Config{Capacity: conf.GasPriceCacheSize},
			&cache.Config{Capacity: swconf.DefaultFeeEstimatorConfig.GasPriceCacheSize},
		),
	}
}

func (fe *FeeEstimator) Estimate(ctx context.Context, call *chainclient.ContractCall) (*FeeEstimate, error) {
	if call == nil {
		return nil, i18n.NewError(ctx, msgs.MsgFeeEstimateIncomplete)
	}
	gasLimit, err := fe.chain.EstimateGas(ctx, call)
	if err != nil {
		return nil, err
	}
	gasPrice, err := fe.gasPrice(ctx)
	if err != nil {
		return nil, err
	}

	estimate := &FeeEstimate{
		GasLimit:  gasLimit,
		GasPrice:  gasPrice,
		NativeFee: new(big.Int).Mul(gasLimit, gasPrice),
	}
	if quote, ok := fe.prices.Latest(); ok {
		// native fee is in wei; price quotes the whole native unit
		nativeFee := new(big.Float).SetInt(estimate.NativeFee)
		nativeFee.Quo(nativeFee, big.NewFloat(1e18))
		nativeFee.Mul(nativeFee, quote.Price)
		estimate.DisplayFee = nativeFee.Text('f', 2)
		estimate.DisplayAvailable = true
	}
	return estimate, nil
}

// InvalidateGasPrice drops the cached gas price. Called between operations so
// no estimate is built on a price observed during a previous operation.
func (fe *FeeEstimator) InvalidateGasPrice() {
	fe.mux.Lock()
	defer fe.mux.Unlock()
	fe.gasPriceCache.Delete("gasPrice")
}

func (fe *FeeEstimator) gasPrice(ctx context.Context) (*big.Int, error) {
	fe.mux.Lock()
	if cached, ok := fe.gasPriceCache.Get("gasPrice"); ok && time.Since(cached.retrieved) < fe.cacheTTL {
		fe.mux.Unlock()
		return cached.price, nil
	}
	fe.mux.Unlock()

	price, err := fe.chain.GasPrice(ctx)
	if err != nil {
		return nil, err
	}
	fe.mux.Lock()
	fe.gasPriceCache.Set("gasPrice", &gasPriceEntry{price: price, retrieved: time.Now()})
	fe.mux.Unlock()
	return price, nil
}

// Debouncer coalesces rapid re-estimate requests (every keystroke in an
// amount field) so only the latest call hits the chain, after the quiet
// interval elapses.
type Debouncer struct {
	fe       *FeeEstimator
	interval time.Duration

	mux     sync.Mutex
	timer   *time.Timer
	closed  bool
	pending func()
}

func (fe *FeeEstimator) NewDebouncer() *Debouncer {
	return &Debouncer{fe: fe, interval: fe.debounceInterval}
}

// Request schedules an estimate for the given call, superseding any estimate
// still waiting on the quiet interval. The callback runs on a background
// goroutine with whichever request survived.
func (d *Debouncer) Request(ctx context.Context, call *chainclient.ContractCall, onResult func(*FeeEstimate, error)) {
	d.mux.Lock()
	defer d.mux.Unlock()
	if d.closed {
		return
	}
	d.pending = func() {
		estimate, err := d.fe.Estimate(ctx, call)
		if err != nil {
			log.L(ctx).Debugf("Debounced fee estimate failed: %s", err)
		}
		onResult(estimate, err)
	}
	if d.timer == nil {
		d.timer = time.AfterFunc(d.interval, d.fire)
	} else {
		d.timer.Reset(d.interval)
	}
}

func (d *Debouncer) fire() {
	d.mux.Lock()
	run := d.pending
	d.pending = nil
	d.timer = nil
	d.mux.Unlock()
	if run != nil {
		run()
	}
}

func (d *Debouncer) Close() {
	d.mux.Lock()
	defer d.mux.Unlock()
	d.closed = true
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
