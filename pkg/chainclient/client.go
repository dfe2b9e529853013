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
	"math/big"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"

	"github.com/gene42xxx/stable-wealth-sub000/internal/msgs"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/confutil"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/swconf"
)

type chainClient struct {
	chainID             int64
	gasEstimateFactor   float64
	receiptPollInterval time.Duration
	eventPollInterval   time.Duration
	rpc                 rpcbackend.RPC
	wallet              WalletSigner
	serializer          *abi.Serializer
}

func NewChainClient(ctx context.Context, wallet WalletSigner, conf *swconf.ChainClientConfig) (ChainClient, error) {
	u, err := url.Parse(conf.HTTP.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, i18n.NewError(ctx, msgs.MsgChainClientInvalidURL, conf.HTTP.URL)
	}
	rpc := rpcbackend.NewRPCClient(resty.New().
		SetBaseURL(u.String()).
		SetTimeout(confutil.DurationMin(conf.HTTP.RequestTimeout, 0, *swconf.DefaultHTTPConfig.RequestTimeout)))
	return WrapRPCClient(ctx, wallet, rpc, conf)
}

// WrapRPCClient is split out so tests (and in-process backends) can supply a
// pre-built RPC implementation.
func WrapRPCClient(ctx context.Context, wallet WalletSigner, rpc rpcbackend.RPC, conf *swconf.ChainClientConfig) (ChainClient, error) {
	cc := &chainClient{
		rpc:                 rpc,
		wallet:              wallet,
		gasEstimateFactor:   confutil.Float64Min(conf.GasEstimateFactor, 1.0, *swconf.DefaultChainClientConfig.GasEstimateFactor),
		receiptPollInterval: confutil.DurationMin(conf.ReceiptPollInterval, 50*time.Millisecond, *swconf.DefaultChainClientConfig.ReceiptPollInterval),
		eventPollInterval:   confutil.DurationMin(conf.EventPollInterval, 50*time.Millisecond, *swconf.DefaultChainClientConfig.EventPollInterval),
		serializer: abi.NewSerializer().
			SetFormattingMode(abi.FormatAsObjects).
			SetIntSerializer(abi.Base10StringIntSerializer).
			SetByteSerializer(abi.HexByteSerializer0xPrefix),
	}
	if conf.ChainID != nil {
		cc.chainID = *conf.ChainID
	} else if err := cc.setupChainID(ctx); err != nil {
		return nil, err
	}
	return cc, nil
}

func (cc *chainClient) Close() {
	// HTTP transport has no connection state to tear down
}

func (cc *chainClient) ChainID() int64 {
	return cc.chainID
}

func (cc *chainClient) setupChainID(ctx context.Context) error {
	var chainID ethtypes.HexUint64
	if rpcErr := cc.rpc.CallRPC(ctx, &chainID, "eth_chainId"); rpcErr != nil {
		return i18n.NewError(ctx, msgs.MsgChainClientChainIDFailed, rpcErr.Error())
	}
	cc.chainID = int64(chainID.Uint64())
	return nil
}

// resolveFunction finds the ABI entry for a plain name or full signature.
func (cc *chainClient) resolveFunction(ctx context.Context, a abi.ABI, nameOrFullSig string) (*abi.Entry, error) {
	for _, e := range a {
		if e.IsFunction() && e.Name != "" {
			if e.Name == nameOrFullSig {
				return e, nil
			}
			s, err := e.SignatureCtx(ctx)
			if err == nil && s == nameOrFullSig {
				return e, nil
			}
		}
	}
	return nil, i18n.NewError(ctx, msgs.MsgChainClientFunctionNotFound, nameOrFullSig)
}

func (cc *chainClient) buildCallData(ctx context.Context, call *ContractCall) (tx *ethsigner.Transaction, fn *abi.Entry, err error) {
	if call.To == nil {
		return nil, nil, i18n.NewError(ctx, msgs.MsgChainClientMissingTo)
	}
	if call.Input == nil {
		return nil, nil, i18n.NewError(ctx, msgs.MsgChainClientMissingInput)
	}
	fn, err = cc.resolveFunction(ctx, call.ABI, call.Function)
	if err != nil {
		return nil, nil, err
	}
	selector, err := fn.GenerateFunctionSelectorCtx(ctx)
	if err != nil {
		return nil, nil, err
	}
	inputs, err := fn.Inputs.TypeComponentTreeCtx(ctx)
	if err != nil {
		return nil, nil, err
	}

	var inputMap map[string]any
	switch input := call.Input.(type) {
	case map[string]any:
		inputMap = input
	case string:
		err = json.Unmarshal([]byte(input), &inputMap)
	case []byte:
		err = json.Unmarshal(input, &inputMap)
	default:
		var jsonInput []byte
		jsonInput, err = json.Marshal(call.Input)
		if err == nil {
			err = json.Unmarshal(jsonInput, &inputMap)
		}
	}
	var cv *abi.ComponentValue
	if err == nil {
		cv, err = inputs.ParseExternalCtx(ctx, inputMap)
	}
	var inputData []byte
	if err == nil {
		inputData, err = cv.EncodeABIDataCtx(ctx)
	}
	if err != nil {
		return nil, nil, i18n.WrapError(ctx, err, msgs.MsgChainClientInvalidInput, fn.Name)
	}

	tx = &ethsigner.Transaction{To: call.To}
	if call.From != nil {
		tx.From = json.RawMessage(`"` + call.From.String() + `"`)
	}
	if call.Value != nil {
		tx.Value = (*ethtypes.HexInteger)(call.Value)
	}
	tx.Data = make([]byte, len(selector)+len(inputData))
	copy(tx.Data, selector)
	copy(tx.Data[len(selector):], inputData)
	return tx, fn, nil
}

func (cc *chainClient) ReadContract(ctx context.Context, call *ContractCall, output any) error {
	tx, fn, err := cc.buildCallData(ctx, call)
	if err != nil {
		return err
	}
	if output == nil {
		return i18n.NewError(ctx, msgs.MsgChainClientMissingOutput)
	}
	var resData ethtypes.HexBytes0xPrefix
	if rpcErr := cc.rpc.CallRPC(ctx, &resData, "eth_call", tx, "latest"); rpcErr != nil {
		log.L(ctx).Errorf("eth_call %s failed: %+v", fn.Name, rpcErr)
		return i18n.NewError(ctx, msgs.MsgChainClientCallFailed, rpcErr.Error())
	}
	outputs, err := fn.Outputs.TypeComponentTreeCtx(ctx)
	if err != nil {
		return err
	}
	cv, err := outputs.DecodeABIDataCtx(ctx, resData, 0)
	if err != nil {
		return err
	}
	jsonData, err := cc.serializer.SerializeJSONCtx(ctx, cv)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonData, output)
}

func (cc *chainClient) EstimateGas(ctx context.Context, call *ContractCall) (*big.Int, error) {
	tx, fn, err := cc.buildCallData(ctx, call)
	if err != nil {
		return nil, err
	}
	var gasEstimate ethtypes.HexInteger
	if rpcErr := cc.rpc.CallRPC(ctx, &gasEstimate, "eth_estimateGas", tx); rpcErr != nil {
		log.L(ctx).Errorf("eth_estimateGas %s failed: %+v", fn.Name, rpcErr)
		return nil, i18n.NewError(ctx, msgs.MsgChainClientEstimateFailed, rpcErr.Error())
	}
	// submission headroom on top of the node's estimate
	gasLimitFactored := new(big.Float).SetInt(gasEstimate.BigInt())
	gasLimitFactored = gasLimitFactored.Mul(gasLimitFactored, big.NewFloat(cc.gasEstimateFactor))
	gasLimit, _ := gasLimitFactored.Int(nil)
	return gasLimit, nil
}

func (cc *chainClient) GasPrice(ctx context.Context) (*big.Int, error) {
	var gasPrice ethtypes.HexInteger
	if rpcErr := cc.rpc.CallRPC(ctx, &gasPrice, "eth_gasPrice"); rpcErr != nil {
		return nil, i18n.NewError(ctx, msgs.MsgChainClientGasPriceFailed, rpcErr.Error())
	}
	return gasPrice.BigInt(), nil
}

func (cc *chainClient) WriteContract(ctx context.Context, call *ContractCall) (ethtypes.HexBytes0xPrefix, error) {
	if cc.wallet == nil {
		from := ""
		if call.From != nil {
			from = call.From.String()
		}
		return nil, i18n.NewError(ctx, msgs.MsgChainClientWalletUnavailable, from)
	}
	// Validate the calldata encodes before handing anything to the wallet
	if _, _, err := cc.buildCallData(ctx, call); err != nil {
		return nil, err
	}
	txHash, err := cc.wallet.SignAndSubmit(ctx, call)
	if err != nil {
		return nil, err
	}
	log.L(ctx).Infof("Transaction %s submitted via wallet (fn=%s to=%s)", txHash, call.Function, call.To)
	return txHash, nil
}
