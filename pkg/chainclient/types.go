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
	"errors"
	"math/big"

	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

// ErrSignatureRejected is wrapped by WalletSigner implementations when the
// user declines the signature prompt, so callers can tell a rejection apart
// from a transport failure with errors.Is.
var ErrSignatureRejected = errors.New("signature request rejected by wallet")

// ContractCall describes one function invocation against a deployed contract.
// Inputs are supplied as anything JSON-serializable matching the function's
// ABI inputs (map, struct, or pre-marshalled JSON).
type ContractCall struct {
	From     *ethtypes.Address0xHex
	To       *ethtypes.Address0xHex
	ABI      abi.ABI
	Function string
	Input    any
	// Value is the native-asset value of the call, nil for token operations
	Value *big.Int
}

// EventMatch identifies a contract event to watch for, optionally narrowed to
// a single transaction hash.
type EventMatch struct {
	Address   *ethtypes.Address0xHex
	ABI       abi.ABI
	EventName string
	TxHash    ethtypes.HexBytes0xPrefix
}

// Receipt is the chain's confirmation record for a submitted transaction.
type Receipt struct {
	TransactionHash ethtypes.HexBytes0xPrefix
	BlockNumber     uint64
	From            *ethtypes.Address0xHex
	GasUsed         *big.Int
	Success         bool
}

// Event is a decoded-enough view of a matched contract event.
type Event struct {
	Address         *ethtypes.Address0xHex
	TransactionHash ethtypes.HexBytes0xPrefix
	BlockNumber     uint64
	Topics          []ethtypes.HexBytes0xPrefix
	Data            ethtypes.HexBytes0xPrefix
}

// WalletSigner is the external wallet collaborator. It prompts the user,
// signs, and broadcasts the transaction itself, returning the hash. The wait
// is unbounded: only the wallet's own flow resolves or rejects it.
type WalletSigner interface {
	SignAndSubmit(ctx context.Context, call *ContractCall) (txHash ethtypes.HexBytes0xPrefix, err error)
}

// ChainClient is the thin capability the orchestration core consumes for all
// chain interaction. Submission is delegated to the WalletSigner; everything
// else goes over JSON-RPC.
type ChainClient interface {
	Close()
	ChainID() int64

	ReadContract(ctx context.Context, call *ContractCall, output any) error
	EstimateGas(ctx context.Context, call *ContractCall) (gasLimit *big.Int, err error)
	GasPrice(ctx context.Context) (gasPrice *big.Int, err error)

	// WriteContract hands the call to the wallet for signature and broadcast
	WriteContract(ctx context.Context, call *ContractCall) (txHash ethtypes.HexBytes0xPrefix, err error)

	// GetTransactionReceipt returns nil (no error) while the transaction is unmined
	GetTransactionReceipt(ctx context.Context, txHash ethtypes.HexBytes0xPrefix) (*Receipt, error)

	// WaitForReceipt blocks until the transaction is mined, racing receipt
	// polling against a matched contract event when one is supplied.
	// There is no client-side timeout: cancellation is via the context only.
	WaitForReceipt(ctx context.Context, txHash ethtypes.HexBytes0xPrefix, match *EventMatch) (*Receipt, error)

	// WatchEvent polls for matching events and invokes onEvent for each,
	// until the context is cancelled.
	WatchEvent(ctx context.Context, match *EventMatch, onEvent func(*Event)) error
}

type txReceiptJSONRPC struct {
	BlockHash       ethtypes.HexBytes0xPrefix `json:"blockHash"`
	BlockNumber     ethtypes.HexUint64        `json:"blockNumber"`
	From            *ethtypes.Address0xHex    `json:"from"`
	GasUsed         *ethtypes.HexInteger      `json:"gasUsed"`
	Status          *ethtypes.HexInteger      `json:"status"`
	To              *ethtypes.Address0xHex    `json:"to"`
	TransactionHash ethtypes.HexBytes0xPrefix `json:"transactionHash"`
}

type logJSONRPC struct {
	Removed         bool                        `json:"removed"`
	LogIndex        ethtypes.HexUint64          `json:"logIndex"`
	BlockNumber     ethtypes.HexUint64          `json:"blockNumber"`
	TransactionHash ethtypes.HexBytes0xPrefix   `json:"transactionHash"`
	Address         *ethtypes.Address0xHex      `json:"address"`
	Data            ethtypes.HexBytes0xPrefix   `json:"data"`
	Topics          []ethtypes.HexBytes0xPrefix `json:"topics"`
}

type logFilterJSONRPC struct {
	FromBlock string                        `json:"fromBlock,omitempty"`
	ToBlock   string                        `json:"toBlock,omitempty"`
	Address   *ethtypes.Address0xHex        `json:"address,omitempty"`
	Topics    [][]ethtypes.HexBytes0xPrefix `json:"topics,omitempty"`
}
