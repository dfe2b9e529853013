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
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gene42xxx/stable-wealth-sub000/pkg/confutil"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/swconf"
)

var testABI = mustParseABI(`[
	{
		"name": "allowance",
		"type": "function",
		"inputs": [
			{"name": "owner", "type": "address"},
			{"name": "spender", "type": "address"}
		],
		"outputs": [
			{"name": "remaining", "type": "uint256"}
		]
	},
	{
		"name": "transfer",
		"type": "function",
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "value", "type": "uint256"}
		],
		"outputs": [
			{"name": "success", "type": "bool"}
		]
	},
	{
		"name": "Transfer",
		"type": "event",
		"inputs": [
			{"name": "from", "type": "address", "indexed": true},
			{"name": "to", "type": "address", "indexed": true},
			{"name": "value", "type": "uint256"}
		]
	}
]`)

func mustParseABI(abiJSON string) abi.ABI {
	var a abi.ABI
	if err := json.Unmarshal([]byte(abiJSON), &a); err != nil {
		panic(err)
	}
	return a
}

var (
	testTokenAddr  = ethtypes.MustNewAddress("0x05235341b04cb8a2b114f3d15e45c95fdd9c1a5f")
	testCallerAddr = ethtypes.MustNewAddress("0xfb075bb99f2aa4c49955bf703509a227d7a12248")
)

func testTxHash(n int) ethtypes.HexBytes0xPrefix {
	h := make([]byte, 32)
	h[31] = byte(n)
	return h
}

// mockRPC dispatches CallRPC by method name, writing results through the
// typed result pointer the same way the real backend does.
type mockRPC struct {
	mux     sync.Mutex
	methods map[string]func(result interface{}, params ...interface{}) *rpcbackend.RPCError
}

func (m *mockRPC) register(method string, fn func(result interface{}, params ...interface{}) *rpcbackend.RPCError) {
	m.mux.Lock()
	defer m.mux.Unlock()
	if m.methods == nil {
		m.methods = map[string]func(result interface{}, params ...interface{}) *rpcbackend.RPCError{}
	}
	m.methods[method] = fn
}

func (m *mockRPC) CallRPC(ctx context.Context, result interface{}, method string, params ...interface{}) *rpcbackend.RPCError {
	m.mux.Lock()
	fn := m.methods[method]
	m.mux.Unlock()
	if fn == nil {
		return &rpcbackend.RPCError{Message: fmt.Sprintf("method %s not mocked", method)}
	}
	return fn(result, params...)
}

func newTestChainClient(t *testing.T, mRPC *mockRPC, wallet WalletSigner) (context.Context, ChainClient) {
	ctx := context.Background()
	cc, err := WrapRPCClient(ctx, wallet, mRPC, &swconf.ChainClientConfig{
		ChainID:             confutil.P(int64(1337)),
		ReceiptPollInterval: confutil.P("10ms"),
		EventPollInterval:   confutil.P("10ms"),
	})
	require.NoError(t, err)
	t.Cleanup(cc.Close)
	return ctx, cc
}

type mockWallet struct {
	signAndSubmit func(ctx context.Context, call *ContractCall) (ethtypes.HexBytes0xPrefix, error)
}

func (m *mockWallet) SignAndSubmit(ctx context.Context, call *ContractCall) (ethtypes.HexBytes0xPrefix, error) {
	return m.signAndSubmit(ctx, call)
}

func allowanceCall() *ContractCall {
	return &ContractCall{
		From:     testCallerAddr,
		To:       testTokenAddr,
		ABI:      testABI,
		Function: "allowance",
		Input: map[string]any{
			"owner":   testCallerAddr.String(),
			"spender": testTokenAddr.String(),
		},
	}
}

func transferCall() *ContractCall {
	return &ContractCall{
		From:     testCallerAddr,
		To:       testTokenAddr,
		ABI:      testABI,
		Function: "transfer",
		Input: map[string]any{
			"to":    testTokenAddr.String(),
			"value": "500000000",
		},
	}
}

func TestNewChainClientBadURL(t *testing.T) {
	_, err := NewChainClient(context.Background(), nil, &swconf.ChainClientConfig{
		HTTP: swconf.HTTPClientConfig{URL: "wrong://localhost"},
	})
	assert.Regexp(t, "SW000100", err)
}

func TestNewChainClientQueriesChainID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "eth_chainId", req.Method)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  "0x539",
		})
	}))
	defer server.Close()

	cc, err := NewChainClient(context.Background(), nil, &swconf.ChainClientConfig{
		HTTP: swconf.HTTPClientConfig{URL: server.URL},
	})
	require.NoError(t, err)
	defer cc.Close()
	assert.Equal(t, int64(1337), cc.ChainID())
}

func TestWrapRPCClientChainIDFail(t *testing.T) {
	mRPC := &mockRPC{}
	mRPC.register("eth_chainId", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		return &rpcbackend.RPCError{Message: "pop"}
	})
	_, err := WrapRPCClient(context.Background(), nil, mRPC, &swconf.ChainClientConfig{})
	assert.Regexp(t, "SW000101.*pop", err)
}

func TestReadContract(t *testing.T) {
	mRPC := &mockRPC{}
	mRPC.register("eth_call", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		*(result.(*ethtypes.HexBytes0xPrefix)) = ethtypes.MustNewHexBytes0xPrefix(
			fmt.Sprintf("0x%064x", big.NewInt(500000000)))
		return nil
	})
	ctx, cc := newTestChainClient(t, mRPC, nil)

	var res struct {
		Remaining string `json:"remaining"`
	}
	err := cc.ReadContract(ctx, allowanceCall(), &res)
	require.NoError(t, err)
	assert.Equal(t, "500000000", res.Remaining)
}

func TestReadContractByFullSignature(t *testing.T) {
	mRPC := &mockRPC{}
	mRPC.register("eth_call", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		*(result.(*ethtypes.HexBytes0xPrefix)) = ethtypes.MustNewHexBytes0xPrefix(
			fmt.Sprintf("0x%064x", big.NewInt(1)))
		return nil
	})
	ctx, cc := newTestChainClient(t, mRPC, nil)

	call := allowanceCall()
	call.Function = "allowance(address,address)"
	var res struct {
		Remaining string `json:"remaining"`
	}
	err := cc.ReadContract(ctx, call, &res)
	require.NoError(t, err)
	assert.Equal(t, "1", res.Remaining)
}

func TestReadContractMissingTo(t *testing.T) {
	ctx, cc := newTestChainClient(t, &mockRPC{}, nil)
	call := allowanceCall()
	call.To = nil
	err := cc.ReadContract(ctx, call, &map[string]any{})
	assert.Regexp(t, "SW000105", err)
}

func TestReadContractMissingInput(t *testing.T) {
	ctx, cc := newTestChainClient(t, &mockRPC{}, nil)
	call := allowanceCall()
	call.Input = nil
	err := cc.ReadContract(ctx, call, &map[string]any{})
	assert.Regexp(t, "SW000106", err)
}

func TestReadContractUnknownFunction(t *testing.T) {
	ctx, cc := newTestChainClient(t, &mockRPC{}, nil)
	call := allowanceCall()
	call.Function = "nope"
	err := cc.ReadContract(ctx, call, &map[string]any{})
	assert.Regexp(t, "SW000103.*nope", err)
}

func TestReadContractBadInput(t *testing.T) {
	ctx, cc := newTestChainClient(t, &mockRPC{}, nil)
	call := allowanceCall()
	call.Input = map[string]any{"owner": "not an address", "spender": testTokenAddr.String()}
	err := cc.ReadContract(ctx, call, &map[string]any{})
	assert.Regexp(t, "SW000108.*allowance", err)
}

func TestReadContractInputJSONString(t *testing.T) {
	mRPC := &mockRPC{}
	mRPC.register("eth_call", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		*(result.(*ethtypes.HexBytes0xPrefix)) = ethtypes.MustNewHexBytes0xPrefix(
			fmt.Sprintf("0x%064x", big.NewInt(42)))
		return nil
	})
	ctx, cc := newTestChainClient(t, mRPC, nil)

	call := allowanceCall()
	call.Input = fmt.Sprintf(`{"owner":"%s","spender":"%s"}`, testCallerAddr, testTokenAddr)
	var res struct {
		Remaining string `json:"remaining"`
	}
	require.NoError(t, cc.ReadContract(ctx, call, &res))
	assert.Equal(t, "42", res.Remaining)
}

func TestReadContractMissingOutput(t *testing.T) {
	ctx, cc := newTestChainClient(t, &mockRPC{}, nil)
	err := cc.ReadContract(ctx, allowanceCall(), nil)
	assert.Regexp(t, "SW000107", err)
}

func TestReadContractCallFail(t *testing.T) {
	mRPC := &mockRPC{}
	mRPC.register("eth_call", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		return &rpcbackend.RPCError{Message: "pop"}
	})
	ctx, cc := newTestChainClient(t, mRPC, nil)
	err := cc.ReadContract(ctx, allowanceCall(), &map[string]any{})
	assert.Regexp(t, "SW000109.*pop", err)
}

func TestEstimateGasAppliesFactor(t *testing.T) {
	mRPC := &mockRPC{}
	mRPC.register("eth_estimateGas", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		*(result.(*ethtypes.HexInteger)) = *ethtypes.NewHexInteger64(100000)
		return nil
	})
	ctx, cc := newTestChainClient(t, mRPC, nil)

	gasLimit, err := cc.EstimateGas(ctx, transferCall())
	require.NoError(t, err)
	// default headroom factor of 1.5
	assert.Equal(t, "150000", gasLimit.String())
}

func TestEstimateGasFail(t *testing.T) {
	mRPC := &mockRPC{}
	mRPC.register("eth_estimateGas", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		return &rpcbackend.RPCError{Message: "pop"}
	})
	ctx, cc := newTestChainClient(t, mRPC, nil)
	_, err := cc.EstimateGas(ctx, transferCall())
	assert.Regexp(t, "SW000110.*pop", err)
}

func TestGasPrice(t *testing.T) {
	mRPC := &mockRPC{}
	mRPC.register("eth_gasPrice", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		*(result.(*ethtypes.HexInteger)) = *ethtypes.NewHexInteger(big.NewInt(50000000000))
		return nil
	})
	ctx, cc := newTestChainClient(t, mRPC, nil)

	gasPrice, err := cc.GasPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, "50000000000", gasPrice.String())
}

func TestGasPriceFail(t *testing.T) {
	mRPC := &mockRPC{}
	mRPC.register("eth_gasPrice", func(result interface{}, params ...interface{}) *rpcbackend.RPCError {
		return &rpcbackend.RPCError{Message: "pop"}
	})
	ctx, cc := newTestChainClient(t, mRPC, nil)
	_, err := cc.GasPrice(ctx)
	assert.Regexp(t, "SW000111.*pop", err)
}

func TestWriteContractNoWallet(t *testing.T) {
	ctx, cc := newTestChainClient(t, &mockRPC{}, nil)
	_, err := cc.WriteContract(ctx, transferCall())
	assert.Regexp(t, "SW000114", err)
}

func TestWriteContractValidatesBeforeWallet(t *testing.T) {
	walletCalled := false
	wallet := &mockWallet{
		signAndSubmit: func(ctx context.Context, call *ContractCall) (ethtypes.HexBytes0xPrefix, error) {
			walletCalled = true
			return testTxHash(1), nil
		},
	}
	ctx, cc := newTestChainClient(t, &mockRPC{}, wallet)

	call := transferCall()
	call.Input = map[string]any{"to": "wrong", "value": "1"}
	_, err := cc.WriteContract(ctx, call)
	assert.Regexp(t, "SW000108", err)
	assert.False(t, walletCalled)
}

func TestWriteContractSubmits(t *testing.T) {
	wallet := &mockWallet{
		signAndSubmit: func(ctx context.Context, call *ContractCall) (ethtypes.HexBytes0xPrefix, error) {
			assert.Equal(t, "transfer", call.Function)
			return testTxHash(1), nil
		},
	}
	ctx, cc := newTestChainClient(t, &mockRPC{}, wallet)

	txHash, err := cc.WriteContract(ctx, transferCall())
	require.NoError(t, err)
	assert.Equal(t, testTxHash(1), txHash)
}

func TestWriteContractWalletRejection(t *testing.T) {
	wallet := &mockWallet{
		signAndSubmit: func(ctx context.Context, call *ContractCall) (ethtypes.HexBytes0xPrefix, error) {
			return nil, ErrSignatureRejected
		},
	}
	ctx, cc := newTestChainClient(t, &mockRPC{}, wallet)

	_, err := cc.WriteContract(ctx, transferCall())
	assert.ErrorIs(t, err, ErrSignatureRejected)
}
