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
	"strings"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"

	"github.com/gene42xxx/stable-wealth-sub000/internal/msgs"
)

// OperationKind selects the stage sequence an operation moves through.
type OperationKind string

const (
	KindDeposit       OperationKind = "deposit"
	KindWithdraw      OperationKind = "withdraw"
	KindAdminTransfer OperationKind = "admin_transfer"
	KindManualVerify  OperationKind = "manual_verify"
)

func (k OperationKind) Validate(ctx context.Context) error {
	switch k {
	case KindDeposit, KindWithdraw, KindAdminTransfer, KindManualVerify:
		return nil
	}
	return i18n.NewError(ctx, msgs.MsgOpUnknownKind, string(k))
}

// InFlightOpStage is the stage an operation is currently executing. Stages
// only move forward; a failed stage moves the operation to a terminal status,
// never back to an earlier stage.
type InFlightOpStage string

const (
	StageQueued             InFlightOpStage = "queued"
	StageValidating         InFlightOpStage = "validating"
	StageApprovingZero      InFlightOpStage = "approving_zero"
	StageApproving          InFlightOpStage = "approving"
	StageRequestingTransfer InFlightOpStage = "requesting_transfer"
	StageConfirmingTransfer InFlightOpStage = "confirming_transfer"
	StageProcessingContract InFlightOpStage = "processing_contract"
	StageConfirmingLedger   InFlightOpStage = "confirming_ledger"
	StageReconciling        InFlightOpStage = "reconciling"
	StageComplete           InFlightOpStage = "complete"
)

// InFlightStatus is the overall disposition of the operation.
type InFlightStatus string

const (
	StatusPending              InFlightStatus = "pending"
	StatusCancelled            InFlightStatus = "cancelled"
	StatusFailed               InFlightStatus = "failed"
	StatusReconciliationNeeded InFlightStatus = "reconciliation_needed"
	StatusComplete             InFlightStatus = "complete"
)

// Terminal statuses are immutable: no further stage may run, and the only
// allowed transition out of reconciliation_needed is a successful re-drive of
// the ledger confirmation.
func (s InFlightStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusFailed || s == StatusComplete
}

// ErrorKind classifies every failure surfaced by the orchestrator.
type ErrorKind string

const (
	// ErrorUserRejected - the wallet declined the signature. Terminal, never retried automatically.
	ErrorUserRejected ErrorKind = "user_rejected"
	// ErrorInsufficientFunds - gas or principal shortfall. Terminal with an actionable message.
	ErrorInsufficientFunds ErrorKind = "insufficient_funds"
	// ErrorChainReverted - the receipt came back unsuccessful. Terminal, and the ledger record is cancelled.
	ErrorChainReverted ErrorKind = "chain_reverted"
	// ErrorNetworkUnavailable - transient RPC or HTTP failure. Retryable only by explicit user action.
	ErrorNetworkUnavailable ErrorKind = "network_unavailable"
	// ErrorValidationRejected - the backend declined before any signature was requested.
	ErrorValidationRejected ErrorKind = "validation_rejected"
	// ErrorReconciliationNeeded - value moved on-chain but the ledger has not confirmed. Not a failure.
	ErrorReconciliationNeeded ErrorKind = "reconciliation_needed"
)

// OpError carries the taxonomy classification alongside the underlying error.
type OpError struct {
	Kind ErrorKind
	err  error
}

func newOpError(kind ErrorKind, err error) *OpError {
	return &OpError{Kind: kind, err: err}
}

func (e *OpError) Error() string {
	return e.err.Error()
}

func (e *OpError) Unwrap() error {
	return e.err
}

// OperationParams is the caller's intent for a new operation.
type OperationParams struct {
	// the connected wallet address driving (and usually funding) the operation
	Initiator *ethtypes.Address0xHex
	// decimal display-unit amount, e.g. "500" or "12.50". Not used for manual_verify.
	Amount string
	// admin_transfer only
	Recipient *ethtypes.Address0xHex
	// manual_verify only: the already-mined transaction to recover
	ForeignTxHash ethtypes.HexBytes0xPrefix
	Description   string
}

// OperationHandle identifies a started operation to the caller.
type OperationHandle struct {
	ID   string
	Kind OperationKind
}

// OperationSnapshot is the caller-visible view of an in-flight operation.
type OperationSnapshot struct {
	ID             string
	Kind           OperationKind
	Stage          InFlightOpStage
	Status         InFlightStatus
	StatusMessage  string
	Amount         *big.Int
	FinalAmount    *big.Int
	AdminFee       *big.Int
	LedgerRecordID string
	ChainTxHash    ethtypes.HexBytes0xPrefix
	LastError      *OpError
}

// ParseDisplayAmount converts a decimal display string to token base units.
// The token carries a fixed number of decimals; extra fraction digits are
// rejected rather than silently truncated.
func ParseDisplayAmount(ctx context.Context, s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" && frac == "" {
		return nil, i18n.NewError(ctx, msgs.MsgInvalidAmount, s)
	}
	if len(frac) > decimals || !digitsOnly(whole) || !digitsOnly(frac) {
		return nil, i18n.NewError(ctx, msgs.MsgInvalidAmount, s)
	}
	scaled := whole + frac + strings.Repeat("0", decimals-len(frac))
	v, ok := new(big.Int).SetString(scaled, 10)
	if !ok || v.Sign() <= 0 {
		return nil, i18n.NewError(ctx, msgs.MsgInvalidAmount, s)
	}
	return v, nil
}

// FormatDisplayAmount renders base units back to a display decimal string.
func FormatDisplayAmount(v *big.Int, decimals int) string {
	s := v.String()
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	whole, frac := s[:len(s)-decimals], s[len(s)-decimals:]
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
