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

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"

	"github.com/gene42xxx/stable-wealth-sub000/internal/ledger"
	"github.com/gene42xxx/stable-wealth-sub000/internal/msgs"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/chainclient"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/confutil"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/swconf"
)

// maxUint256 is the unlimited approval value.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// ApprovalPath is the outcome of the pre-withdrawal allowance decision.
type ApprovalPath int

const (
	// ApprovalNotNeeded - current allowance already covers the operation
	ApprovalNotNeeded ApprovalPath = iota
	// ApprovalDirect - allowance is zero, a single approve suffices
	ApprovalDirect
	// ApprovalZeroThenSet - a non-zero stale allowance must be zeroed before the new value is set
	ApprovalZeroThenSet
)

// AllowanceManager owns the token approval protocol for the vault spender.
// Allowance is always read fresh from the chain at decision time: approvals
// are mutated only by on-chain transactions, and another session may have
// changed them since this process last looked.
type AllowanceManager struct {
	chain  chainclient.ChainClient
	ledger ledger.Client
	token  *ethtypes.Address0xHex
	vault  *ethtypes.Address0xHex

	policy      swconf.ApprovalPolicy
	approvalCap *big.Int
	decimals    int
}

func NewAllowanceManager(chain chainclient.ChainClient, ledgerClient ledger.Client, token, vault *ethtypes.Address0xHex, decimals int, conf *swconf.AllowanceConfig) *AllowanceManager {
	am := &AllowanceManager{
		chain:    chain,
		ledger:   ledgerClient,
		token:    token,
		vault:    vault,
		decimals: decimals,
		policy:   swconf.ApprovalPolicy(confutil.StringNotEmpty(conf.Policy, *swconf.DefaultAllowanceConfig.Policy)),
	}
	if conf.ApprovalCap != nil {
		am.approvalCap = confutil.BigInt(conf.ApprovalCap, "0")
	}
	return am
}

// CurrentAllowance reads the live allowance of owner towards the vault.
// Never cached.
func (am *AllowanceManager) CurrentAllowance(ctx context.Context, owner *ethtypes.Address0xHex) (*big.Int, error) {
	var out struct {
		Remaining string `json:"remaining"`
	}
	err := am.chain.ReadContract(ctx, &chainclient.ContractCall{
		From:     owner,
		To:       am.token,
		ABI:      erc20ABI,
		Function: "allowance",
		Input: map[string]any{
			"owner":   owner.String(),
			"spender": am.vault.String(),
		},
	}, &out)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgOpAllowanceReadFailed, owner, err)
	}
	remaining, ok := new(big.Int).SetString(out.Remaining, 10)
	if !ok {
		return nil, i18n.NewError(ctx, msgs.MsgOpAllowanceReadFailed, owner, out.Remaining)
	}
	return remaining, nil
}

// DecideApprovalPath reads the allowance fresh and picks the approval
// sub-path. Skipping the sub-path when allowance suffices avoids a paid
// on-chain action; zeroing first is required by tokens that reject a
// non-zero to non-zero approval change.
func (am *AllowanceManager) DecideApprovalPath(ctx context.Context, owner *ethtypes.Address0xHex, required *big.Int) (ApprovalPath, error) {
	current, err := am.CurrentAllowance(ctx, owner)
	if err != nil {
		return ApprovalNotNeeded, err
	}
	switch {
	case current.Cmp(required) >= 0:
		log.L(ctx).Debugf("Allowance %s covers required %s, skipping approval", current, required)
		return ApprovalNotNeeded, nil
	case current.Sign() == 0:
		return ApprovalDirect, nil
	default:
		return ApprovalZeroThenSet, nil
	}
}

// ApprovalTarget is the value the full approval sets, per the configured
// policy.
func (am *AllowanceManager) ApprovalTarget(required *big.Int) *big.Int {
	if am.policy == swconf.ApprovalPolicyUnlimited {
		return maxUint256
	}
	if am.approvalCap != nil && am.approvalCap.Cmp(required) >= 0 {
		return am.approvalCap
	}
	return required
}

// Approve signs and submits one token approval for the vault spender and
// waits for its receipt. The wallet may reject; the chain may revert. A
// successful non-zero approval is reported to the ledger for bookkeeping,
// best effort.
func (am *AllowanceManager) Approve(ctx context.Context, owner *ethtypes.Address0xHex, value *big.Int) (ethtypes.HexBytes0xPrefix, error) {
	txHash, err := am.chain.WriteContract(ctx, &chainclient.ContractCall{
		From:     owner,
		To:       am.token,
		ABI:      erc20ABI,
		Function: "approve",
		Input: map[string]any{
			"spender": am.vault.String(),
			"value":   value.String(),
		},
	})
	if err != nil {
		return nil, err
	}
	receipt, err := am.chain.WaitForReceipt(ctx, txHash, &chainclient.EventMatch{
		Address:   am.token,
		ABI:       erc20ABI,
		EventName: "Approval",
	})
	if err != nil {
		return txHash, err
	}
	if !receipt.Success {
		return txHash, i18n.NewError(ctx, msgs.MsgOpApprovalFailed, txHash)
	}

	if value.Sign() > 0 {
		if err := am.ledger.RecordTokenApproval(ctx, &ledger.RecordTokenApprovalRequest{
			Owner:          owner,
			Spender:        am.vault,
			Token:          am.token,
			ApprovedAmount: FormatDisplayAmount(value, am.decimals),
			TxHash:         txHash,
		}); err != nil {
			// bookkeeping only - the approval itself succeeded on-chain
			log.L(ctx).Warnf("Failed to record token approval %s with ledger: %s", txHash, err)
		}
	}
	return txHash, nil
}
