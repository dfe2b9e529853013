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

// Package pricefeed keeps the last known market price of the native asset so
// fee estimates can be shown in display currency. A websocket stream is
// preferred; when it cannot be established within the configured connection
// timeout, the feed degrades to HTTP polling. The price is advisory: when no
// fresh quote exists the source reports unavailable rather than a stale
// number.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hyperledger/firefly-common/pkg/ffresty"
	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/hyperledger/firefly-common/pkg/wsclient"

	"github.com/gene42xxx/stable-wealth-sub000/internal/msgs"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/confutil"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/swconf"
)

// PriceQuote is the last observed market price for the configured pair.
type PriceQuote struct {
	Pair  string
	Price *big.Float
	At    time.Time
}

// PriceSource is consumed by the fee estimator. The bool result is false
// whenever no sufficiently recent quote exists.
type PriceSource interface {
	Latest() (*PriceQuote, bool)
	Stop()
}

type tickerMessage struct {
	Type  string `json:"type"`
	Pair  string `json:"pair"`
	Price string `json:"price"`
}

type priceResponse struct {
	Pair  string `json:"pair"`
	Price string `json:"price"`
}

type priceFeed struct {
	pair         string
	pollInterval time.Duration
	staleAfter   time.Duration

	wsConf     *wsclient.WSConfig
	httpClient *resty.Client

	mux    sync.Mutex
	latest *PriceQuote

	cancelCtx context.CancelFunc
	done      chan struct{}
}

func NewPriceFeed(ctx context.Context, conf *swconf.PriceFeedConfig) (PriceSource, error) {
	pollInterval := confutil.DurationMin(conf.PollInterval, 1*time.Second, *swconf.DefaultPriceFeedConfig.PollInterval)
	pf := &priceFeed{
		pair:         confutil.StringNotEmpty(conf.Pair, *swconf.DefaultPriceFeedConfig.Pair),
		pollInterval: pollInterval,
		staleAfter:   2 * pollInterval,
		done:         make(chan struct{}),
	}

	if conf.WS.URL != "" {
		wsConf, err := parseWSConfig(ctx, &conf.WS)
		if err != nil {
			return nil, err
		}
		pf.wsConf = wsConf
	}
	if conf.HTTP.URL != "" {
		pf.httpClient = ffresty.NewWithConfig(ctx, ffresty.Config{
			URL: conf.HTTP.URL,
			HTTPConfig: ffresty.HTTPConfig{
				HTTPHeaders:           conf.HTTP.HTTPHeaders,
				HTTPRequestTimeout:    fftypes.FFDuration(confutil.DurationMin(conf.HTTP.RequestTimeout, 0, *swconf.DefaultHTTPConfig.RequestTimeout)),
				HTTPConnectionTimeout: fftypes.FFDuration(confutil.DurationMin(conf.HTTP.ConnectionTimeout, 0, *swconf.DefaultHTTPConfig.ConnectionTimeout)),
			},
		})
	}
	if pf.wsConf == nil && pf.httpClient == nil {
		return nil, i18n.NewError(ctx, msgs.MsgConfigMissingURL, "priceFeed")
	}

	runCtx, cancelCtx := context.WithCancel(ctx)
	pf.cancelCtx = cancelCtx
	go pf.run(runCtx)
	return pf, nil
}

func parseWSConfig(ctx context.Context, conf *swconf.WSClientConfig) (*wsclient.WSConfig, error) {
	u, err := url.Parse(conf.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return nil, i18n.NewError(ctx, msgs.MsgPriceFeedInvalidURL, conf.URL)
	}
	return &wsclient.WSConfig{
		WebSocketURL:           u.String(),
		ConnectionTimeout:      confutil.DurationMin(conf.ConnectionTimeout, 0, *swconf.DefaultWSConfig.ConnectionTimeout),
		HeartbeatInterval:      confutil.DurationMin(conf.HeartbeatInterval, 0, *swconf.DefaultWSConfig.HeartbeatInterval),
		InitialConnectAttempts: confutil.IntMin(conf.InitialConnectAttempts, 0, *swconf.DefaultWSConfig.InitialConnectAttempts),
	}, nil
}

func (pf *priceFeed) Latest() (*PriceQuote, bool) {
	pf.mux.Lock()
	defer pf.mux.Unlock()
	if pf.latest == nil || time.Since(pf.latest.At) > pf.staleAfter {
		return nil, false
	}
	return pf.latest, true
}

func (pf *priceFeed) Stop() {
	pf.cancelCtx()
	<-pf.done
}

func (pf *priceFeed) run(ctx context.Context) {
	defer close(pf.done)
	for {
		if pf.wsConf != nil {
			if err := pf.streamPrices(ctx); err != nil && ctx.Err() == nil {
				log.L(ctx).Warnf("Price stream unavailable, falling back to polling: %s", err)
			}
		}
		if ctx.Err() != nil {
			return
		}
		if pf.httpClient != nil {
			pf.pollOnce(ctx)
		}
		select {
		case <-time.After(pf.pollInterval):
		case <-ctx.Done():
			return
		}
	}
}

// streamPrices consumes the websocket until it closes or the context is
// cancelled. Connection establishment is the one bounded wait in the whole
// core (the configured timeout, 8s by default).
func (pf *priceFeed) streamPrices(ctx context.Context) error {
	wsc, err := wsclient.New(ctx, pf.wsConf, nil, nil)
	if err != nil {
		return err
	}
	defer wsc.Close()
	if err := wsc.Connect(); err != nil {
		return err
	}

	sub, _ := json.Marshal(map[string]string{"type": "subscribe", "pair": pf.pair})
	if err := wsc.Send(ctx, sub); err != nil {
		return err
	}

	for {
		select {
		case payload, ok := <-wsc.Receive():
			if !ok {
				return i18n.NewError(ctx, msgs.MsgPriceFeedBadPayload, "stream closed")
			}
			var tick tickerMessage
			if err := json.Unmarshal(payload, &tick); err != nil {
				log.L(ctx).Debugf("Discarding unparseable price message: %s", err)
				continue
			}
			if tick.Type != "ticker" || tick.Pair != pf.pair {
				continue
			}
			pf.record(ctx, tick.Price)
		case <-ctx.Done():
			return nil
		}
	}
}

func (pf *priceFeed) pollOnce(ctx context.Context) {
	var quote priceResponse
	res, err := pf.httpClient.R().SetContext(ctx).SetResult(&quote).
		Get(fmt.Sprintf("/api/prices/%s", pf.pair))
	if err != nil || !res.IsSuccess() {
		log.L(ctx).Debugf("Price poll for %s failed", pf.pair)
		return
	}
	pf.record(ctx, quote.Price)
}

func (pf *priceFeed) record(ctx context.Context, priceStr string) {
	price, ok := new(big.Float).SetString(priceStr)
	if !ok || price.Sign() <= 0 {
		log.L(ctx).Debugf("Discarding invalid price '%s'", priceStr)
		return
	}
	pf.mux.Lock()
	pf.latest = &PriceQuote{Pair: pf.pair, Price: price, At: time.Now()}
	pf.mux.Unlock()
}
