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
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minedReceipt(txHash ethtypes.HexBytes0xPrefix, status int64) *txReceiptJSONRPC {
	return &txReceiptJSONRPC{
		BlockHash:       testTxHash(99),
		BlockNumber:     ethtypes.HexUint64(90),
		From:            testCallerAddr,
		GasUsed:         ethtypes.NewHexInteger64(21000),
		Status:          ethtypes.NewHexInteger64(status),
		To:              testTokenAddr,
		TransactionHash: txHash,
	}
}

func TestGetTransactionReceiptNotMined(t *testing.T) {
	mRPC := &mockRPC{}
	mRPC.register("eth_getTransactionReceipt", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		// null response from the node
		return nil
	})
	ctx, cc := newTestChainClient(t, mRPC, nil)

	r, err := cc.GetTransactionReceipt(ctx, testTxHash(1))
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestGetTransactionReceiptSuccess(t *testing.T) {
	mRPC := &mockRPC{}
	mRPC.register("eth_getTransactionReceipt", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		*(result.(**txReceiptJSONRPC)) = minedReceipt(testTxHash(1), 1)
		return nil
	})
	ctx, cc := newTestChainClient(t, mRPC, nil)

	r, err := cc.GetTransactionReceipt(ctx, testTxHash(1))
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.True(t, r.Success)
	assert.Equal(t, uint64(90), r.BlockNumber)
	assert.Equal(t, testTxHash(1), r.TransactionHash)
	assert.Equal(t, "21000", r.GasUsed.String())
}

func TestGetTransactionReceiptReverted(t *testing.T) {
	mRPC := &mockRPC{}
	mRPC.register("eth_getTransactionReceipt", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		*(result.(**txReceiptJSONRPC)) = minedReceipt(testTxHash(1), 0)
		return nil
	})
	ctx, cc := newTestChainClient(t, mRPC, nil)

	r, err := cc.GetTransactionReceipt(ctx, testTxHash(1))
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.False(t, r.Success)
}

func TestGetTransactionReceiptFail(t *testing.T) {
	mRPC := &mockRPC{}
	mRPC.register("eth_getTransactionReceipt", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		return &rpcbackend.RPCError{Message: "pop"}
	})
	ctx, cc := newTestChainClient(t, mRPC, nil)

	_, err := cc.GetTransactionReceipt(ctx, testTxHash(1))
	assert.Regexp(t, "SW000113.*pop", err)
}

func TestWaitForReceiptPollsUntilMined(t *testing.T) {
	var polls int64
	mRPC := &mockRPC{}
	mRPC.register("eth_getTransactionReceipt", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		if atomic.AddInt64(&polls, 1) < 3 {
			return nil
		}
		*(result.(**txReceiptJSONRPC)) = minedReceipt(testTxHash(1), 1)
		return nil
	})
	ctx, cc := newTestChainClient(t, mRPC, nil)

	r, err := cc.WaitForReceipt(ctx, testTxHash(1), nil)
	require.NoError(t, err)
	assert.True(t, r.Success)
	assert.GreaterOrEqual(t, atomic.LoadInt64(&polls), int64(3))
}

func TestWaitForReceiptPollSurvivesErrors(t *testing.T) {
	var polls int64
	mRPC := &mockRPC{}
	mRPC.register("eth_getTransactionReceipt", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		if atomic.AddInt64(&polls, 1) == 1 {
			return &rpcbackend.RPCError{Message: "pop"}
		}
		*(result.(**txReceiptJSONRPC)) = minedReceipt(testTxHash(1), 1)
		return nil
	})
	ctx, cc := newTestChainClient(t, mRPC, nil)

	r, err := cc.WaitForReceipt(ctx, testTxHash(1), nil)
	require.NoError(t, err)
	assert.True(t, r.Success)
}

func TestWaitForReceiptCanceled(t *testing.T) {
	mRPC := &mockRPC{}
	mRPC.register("eth_getTransactionReceipt", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		return nil // never mined
	})
	_, cc := newTestChainClient(t, mRPC, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := cc.WaitForReceipt(ctx, testTxHash(1), nil)
	assert.Regexp(t, "SW000006", err)
}

func TestWaitForReceiptResolvedByEvent(t *testing.T) {
	// the receipt only becomes visible once the log watcher has polled
	var logsSeen int64
	transferEvent := testABI.Events()["Transfer"]
	topic0, err := transferEvent.SignatureHash()
	require.NoError(t, err)

	mRPC := &mockRPC{}
	mRPC.register("eth_getTransactionReceipt", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		if atomic.LoadInt64(&logsSeen) > 0 {
			*(result.(**txReceiptJSONRPC)) = minedReceipt(testTxHash(1), 1)
		}
		return nil
	})
	mRPC.register("eth_blockNumber", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		*(result.(*ethtypes.HexUint64)) = 88
		return nil
	})
	mRPC.register("eth_getLogs", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		atomic.AddInt64(&logsSeen, 1)
		*(result.(*[]*logJSONRPC)) = []*logJSONRPC{{
			BlockNumber:     ethtypes.HexUint64(90),
			TransactionHash: testTxHash(1),
			Address:         testTokenAddr,
			Topics:          []ethtypes.HexBytes0xPrefix{topic0},
		}}
		return nil
	})
	ctx, cc := newTestChainClient(t, mRPC, nil)

	r, err := cc.WaitForReceipt(ctx, testTxHash(1), &EventMatch{
		Address:   testTokenAddr,
		ABI:       testABI,
		EventName: "Transfer",
	})
	require.NoError(t, err)
	assert.True(t, r.Success)
}

func TestWatchEventUnknownEvent(t *testing.T) {
	ctx, cc := newTestChainClient(t, &mockRPC{}, nil)
	err := cc.WatchEvent(ctx, &EventMatch{ABI: testABI, EventName: "nope"}, func(ev *Event) {})
	assert.Regexp(t, "SW000104.*nope", err)
}

func TestWatchEventBlockNumberFail(t *testing.T) {
	mRPC := &mockRPC{}
	mRPC.register("eth_blockNumber", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		return &rpcbackend.RPCError{Message: "pop"}
	})
	ctx, cc := newTestChainClient(t, mRPC, nil)
	err := cc.WatchEvent(ctx, &EventMatch{ABI: testABI, EventName: "Transfer"}, func(ev *Event) {})
	assert.Regexp(t, "pop", err)
}

func TestWatchEventFiltersAndDelivers(t *testing.T) {
	transferEvent := testABI.Events()["Transfer"]
	topic0, err := transferEvent.SignatureHash()
	require.NoError(t, err)

	mRPC := &mockRPC{}
	mRPC.register("eth_blockNumber", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		*(result.(*ethtypes.HexUint64)) = 100
		return nil
	})
	mRPC.register("eth_getLogs", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		*(result.(*[]*logJSONRPC)) = []*logJSONRPC{
			{
				// reorged out, must be skipped
				Removed:         true,
				BlockNumber:     ethtypes.HexUint64(101),
				TransactionHash: testTxHash(1),
				Topics:          []ethtypes.HexBytes0xPrefix{topic0},
			},
			{
				// different transaction, filtered by the match
				BlockNumber:     ethtypes.HexUint64(101),
				TransactionHash: testTxHash(2),
				Topics:          []ethtypes.HexBytes0xPrefix{topic0},
			},
			{
				BlockNumber:     ethtypes.HexUint64(102),
				TransactionHash: testTxHash(1),
				Address:         testTokenAddr,
				Topics:          []ethtypes.HexBytes0xPrefix{topic0},
			},
		}
		return nil
	})
	_, cc := newTestChainClient(t, mRPC, nil)

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan *Event, 1)
	go func() {
		_ = cc.WatchEvent(ctx, &EventMatch{
			Address:   testTokenAddr,
			ABI:       testABI,
			EventName: "Transfer",
			TxHash:    testTxHash(1),
		}, func(ev *Event) {
			select {
			case events <- ev:
			default:
			}
		})
	}()

	select {
	case ev := <-events:
		assert.Equal(t, uint64(102), ev.BlockNumber)
		assert.Equal(t, testTxHash(1), ev.TransactionHash)
		assert.Equal(t, testTokenAddr, ev.Address)
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}
	cancel()
}

func TestWatchEventStopsOnCancel(t *testing.T) {
	mRPC := &mockRPC{}
	mRPC.register("eth_blockNumber", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		*(result.(*ethtypes.HexUint64)) = 100
		return nil
	})
	mRPC.register("eth_getLogs", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		return &rpcbackend.RPCError{Message: "pop"} // poll errors are retried
	})
	_, cc := newTestChainClient(t, mRPC, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := cc.WatchEvent(ctx, &EventMatch{ABI: testABI, EventName: "Transfer"}, func(ev *Event) {})
	assert.Regexp(t, "SW000000", err)
}
