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

package chainclient

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"

	"github.com/gene42xxx/stable-wealth-sub000/internal/inflight"
	"github.com/gene42xxx/stable-wealth-sub000/internal/msgs"
)

func (cc *chainClient) GetTransactionReceipt(ctx context.Context, txHash ethtypes.HexBytes0xPrefix) (*Receipt, error) {
	var receipt *txReceiptJSONRPC
	if rpcErr := cc.rpc.CallRPC(ctx, &receipt, "eth_getTransactionReceipt", txHash); rpcErr != nil {
		return nil, i18n.NewError(ctx, msgs.MsgChainClientReceiptFailed, txHash, rpcErr.Error())
	}
	if receipt == nil || receipt.BlockHash == nil {
		// not mined yet
		return nil, nil
	}
	r := &Receipt{
		TransactionHash: receipt.TransactionHash,
		BlockNumber:     receipt.BlockNumber.Uint64(),
		From:            receipt.From,
		Success:         receipt.Status != nil && receipt.Status.BigInt().Sign() > 0,
	}
	if receipt.GasUsed != nil {
		r.GasUsed = receipt.GasUsed.BigInt()
	}
	return r, nil
}

// WaitForReceipt is the single suspension point for confirmation. Receipt
// polling always runs; when an EventMatch is supplied a log watcher runs as
// well, and whichever observes the transaction first completes the one
// waiter. The wait is unbounded - a chain can legitimately take minutes - so
// cancellation is only via the caller's context.
func (cc *chainClient) WaitForReceipt(ctx context.Context, txHash ethtypes.HexBytes0xPrefix, match *EventMatch) (*Receipt, error) {
	waiters := inflight.NewInflightManager[string, *Receipt]()
	defer waiters.Close()
	req := waiters.AddInflight(ctx, txHash.String())

	watchCtx, cancelWatchers := context.WithCancel(ctx)
	defer cancelWatchers()

	go cc.pollForReceipt(watchCtx, txHash, req)
	if match != nil {
		m := *match
		m.TxHash = txHash
		go func() {
			err := cc.WatchEvent(watchCtx, &m, func(ev *Event) {
				// the event proves the transaction mined; resolve via the receipt for status
				r, rErr := cc.GetTransactionReceipt(watchCtx, txHash)
				if rErr == nil && r != nil {
					req.Complete(r)
				}
			})
			if err != nil {
				log.L(watchCtx).Debugf("Event watcher for %s ended: %s", txHash, err)
			}
		}()
	}

	return req.Wait()
}

func (cc *chainClient) pollForReceipt(ctx context.Context, txHash ethtypes.HexBytes0xPrefix, req *inflight.InflightRequest[string, *Receipt]) {
	ticker := time.NewTicker(cc.receiptPollInterval)
	defer ticker.Stop()
	for {
		r, err := cc.GetTransactionReceipt(ctx, txHash)
		if err != nil {
			log.L(ctx).Debugf("Receipt poll for %s failed (will retry): %s", txHash, err)
		} else if r != nil {
			req.Complete(r)
			return
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (cc *chainClient) WatchEvent(ctx context.Context, match *EventMatch, onEvent func(*Event)) error {
	ev := match.ABI.Events()[match.EventName]
	if ev == nil {
		return i18n.NewError(ctx, msgs.MsgChainClientEventNotFound, match.EventName)
	}
	topic0, err := ev.SignatureHash()
	if err != nil {
		return err
	}

	var fromBlock ethtypes.HexUint64
	if rpcErr := cc.rpc.CallRPC(ctx, &fromBlock, "eth_blockNumber"); rpcErr != nil {
		return rpcErr.Error()
	}

	ticker := time.NewTicker(cc.eventPollInterval)
	defer ticker.Stop()
	for {
		filter := &logFilterJSONRPC{
			FromBlock: fmt.Sprintf("0x%x", fromBlock.Uint64()),
			ToBlock:   "latest",
			Address:   match.Address,
			Topics:    [][]ethtypes.HexBytes0xPrefix{{topic0}},
		}
		var logs []*logJSONRPC
		if rpcErr := cc.rpc.CallRPC(ctx, &logs, "eth_getLogs", filter); rpcErr != nil {
			log.L(ctx).Debugf("eth_getLogs poll failed (will retry): %s", rpcErr.Error())
		}
		for _, l := range logs {
			if l.Removed {
				continue
			}
			if len(match.TxHash) > 0 && !bytes.Equal(l.TransactionHash, match.TxHash) {
				continue
			}
			onEvent(&Event{
				Address:         l.Address,
				TransactionHash: l.TransactionHash,
				BlockNumber:     l.BlockNumber.Uint64(),
				Topics:          l.Topics,
				Data:            l.Data,
			})
			if l.BlockNumber.Uint64() >= fromBlock.Uint64() {
				fromBlock = ethtypes.HexUint64(l.BlockNumber.Uint64() + 1)
			}
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return i18n.NewError(ctx, msgs.MsgContextCanceled)
		}
	}
}
