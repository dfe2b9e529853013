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
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"

	"github.com/gene42xxx/stable-wealth-sub000/internal/ledger"
	"github.com/gene42xxx/stable-wealth-sub000/internal/msgs"
	"github.com/gene42xxx/stable-wealth-sub000/internal/opstore"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/chainclient"
)

// inFlightOperation is the stage controller for one operation. One advance
// runs at a time (advMux); state reads take the state mutex only, so
// snapshots stay available during an unbounded wallet or receipt wait.
type inFlightOperation struct {
	id     string
	kind   OperationKind
	params OperationParams
	m      *manager

	advMux sync.Mutex

	mux           sync.Mutex
	stage         InFlightOpStage
	status        InFlightStatus
	statusMessage string
	// amount the caller asked for, token base units
	amount *big.Int
	// backend-authoritative amount actually moved on-chain
	finalAmount *big.Int
	// admin_transfer only, snapshotted at validating time
	adminFeePercent int
	adminFee        *big.Int
	netAmount       *big.Int
	ledgerRecordID  string
	// the principal value-moving transaction
	chainTxHash ethtypes.HexBytes0xPrefix
	// the secondary contract-processing transaction, deposits and manual verification
	processingTxHash   ethtypes.HexBytes0xPrefix
	foreignDetails     *ledger.TransactionDetails
	lastError          *OpError
	signatureRequested bool
	persisted          bool
}

var stageMessages = map[InFlightOpStage]string{
	StageQueued:             "Queued",
	StageValidating:         "Validating with the backend",
	StageApprovingZero:      "Clearing the previous token approval",
	StageApproving:          "Approving the token spend",
	StageRequestingTransfer: "Waiting for the wallet signature",
	StageConfirmingTransfer: "Waiting for on-chain confirmation",
	StageProcessingContract: "Processing the contract call",
	StageConfirmingLedger:   "Confirming with the backend ledger",
	StageReconciling:        "Succeeded on-chain, awaiting server confirmation",
	StageComplete:           "Completed",
}

func (op *inFlightOperation) snapshot() *OperationSnapshot {
	op.mux.Lock()
	defer op.mux.Unlock()
	return &OperationSnapshot{
		ID:             op.id,
		Kind:           op.kind,
		Stage:          op.stage,
		Status:         op.status,
		StatusMessage:  op.statusMessage,
		Amount:         op.amount,
		FinalAmount:    op.finalAmount,
		AdminFee:       op.adminFee,
		LedgerRecordID: op.ledgerRecordID,
		ChainTxHash:    op.chainTxHash,
		LastError:      op.lastError,
	}
}

// advance drives exactly one stage to its terminal event. On a terminal
// operation it is an idempotent no-op returning the resting stage.
func (op *inFlightOperation) advance(ctx context.Context) (InFlightOpStage, error) {
	op.advMux.Lock()
	defer op.advMux.Unlock()

	op.mux.Lock()
	if op.status.Terminal() {
		stage := op.stage
		op.mux.Unlock()
		return stage, nil
	}
	current := op.stage
	op.mux.Unlock()

	next, err := op.nextStage(ctx, current)
	if err != nil {
		op.fail(ctx, err)
		return op.currentStage(), err
	}

	op.enterStage(ctx, next)
	started := time.Now()
	switch next {
	case StageValidating:
		err = op.executeValidating(ctx)
	case StageApprovingZero:
		err = op.executeApproval(ctx, big.NewInt(0))
	case StageApproving:
		err = op.executeApproval(ctx, op.m.allowance.ApprovalTarget(op.requiredAllowance()))
	case StageRequestingTransfer:
		err = op.executeRequestingTransfer(ctx)
	case StageConfirmingTransfer:
		err = op.executeConfirmingTransfer(ctx)
	case StageProcessingContract:
		err = op.executeProcessingContract(ctx)
	case StageConfirmingLedger, StageReconciling:
		err = op.executeConfirmingLedger(ctx)
	case StageComplete:
		op.complete(ctx)
	}
	op.m.metrics.ObserveStageDuration(string(next), time.Since(started).Seconds())

	if err != nil {
		op.fail(ctx, err)
		return op.currentStage(), err
	}
	if next == StageConfirmingLedger || next == StageReconciling {
		// confirmation succeeded, nothing left to run
		op.complete(ctx)
	}
	return op.currentStage(), nil
}

// nextStage picks the stage advance will run. The approval decision for
// withdrawals reads the allowance fresh right here, immediately before the
// choice it informs.
func (op *inFlightOperation) nextStage(ctx context.Context, current InFlightOpStage) (InFlightOpStage, error) {
	switch current {
	case StageQueued:
		return StageValidating, nil
	case StageValidating:
		switch op.kind {
		case KindDeposit:
			return StageRequestingTransfer, nil
		case KindManualVerify:
			return StageProcessingContract, nil
		default:
			path, err := op.m.allowance.DecideApprovalPath(ctx, op.params.Initiator, op.requiredAllowance())
			if err != nil {
				return current, err
			}
			switch path {
			case ApprovalZeroThenSet:
				return StageApprovingZero, nil
			case ApprovalDirect:
				return StageApproving, nil
			default:
				return StageRequestingTransfer, nil
			}
		}
	case StageApprovingZero:
		return StageApproving, nil
	case StageApproving:
		return StageRequestingTransfer, nil
	case StageRequestingTransfer:
		return StageConfirmingTransfer, nil
	case StageConfirmingTransfer:
		if op.kind == KindDeposit {
			return StageProcessingContract, nil
		}
		return StageConfirmingLedger, nil
	case StageProcessingContract:
		return StageConfirmingLedger, nil
	case StageReconciling:
		return StageReconciling, nil
	}
	return StageComplete, nil
}

// requiredAllowance is what the vault must be able to pull for this
// operation.
func (op *inFlightOperation) requiredAllowance() *big.Int {
	op.mux.Lock()
	defer op.mux.Unlock()
	if op.finalAmount != nil {
		return op.finalAmount
	}
	return op.amount
}

func (op *inFlightOperation) currentStage() InFlightOpStage {
	op.mux.Lock()
	defer op.mux.Unlock()
	return op.stage
}

func (op *inFlightOperation) enterStage(ctx context.Context, stage InFlightOpStage) {
	op.mux.Lock()
	op.stage = stage
	op.statusMessage = stageMessages[stage]
	op.mux.Unlock()
	op.updateRegistry(ctx)
	log.L(ctx).Infof("Operation %s (%s) entering stage %s", op.id, op.kind, stage)
}

func (op *inFlightOperation) executeValidating(ctx context.Context) error {
	if op.kind == KindManualVerify {
		return op.executeManualVerifyValidation(ctx)
	}

	pending, err := op.m.ledger.CreatePendingTransaction(ctx, &ledger.CreatePendingTransactionRequest{
		Amount:    FormatDisplayAmount(op.amount, op.m.decimals),
		Currency:  op.m.currency,
		Initiator: op.params.Initiator.String(),
		Type:      string(op.kind),
	})
	if err != nil {
		return err
	}
	finalAmount, err := ParseDisplayAmount(ctx, pending.FinalAmount, op.m.decimals)
	if err != nil {
		return err
	}

	op.mux.Lock()
	op.ledgerRecordID = pending.TransactionID
	op.finalAmount = finalAmount
	if op.kind == KindAdminTransfer {
		// snapshot: a config change after this point must not alter the fee
		op.adminFeePercent = op.m.adminFeePercent
		op.adminFee = new(big.Int).Div(new(big.Int).Mul(finalAmount, big.NewInt(int64(op.adminFeePercent))), big.NewInt(100))
		op.netAmount = new(big.Int).Sub(finalAmount, op.adminFee)
	} else {
		op.netAmount = finalAmount
	}
	netAmount := op.netAmount
	op.mux.Unlock()

	if netAmount.Sign() <= 0 {
		return i18n.NewError(ctx, msgs.MsgOpAmountBelowFee, FormatDisplayAmount(finalAmount, op.m.decimals))
	}
	op.updateRegistry(ctx)
	return nil
}

// executeManualVerifyValidation recovers a transfer the user reports as not
// reflected: the transaction is already mined, so validation is a ledger
// lookup by its hash plus a check that it really came from the connected
// wallet.
func (op *inFlightOperation) executeManualVerifyValidation(ctx context.Context) error {
	details, err := op.m.ledger.GetTransactionDetailsByHash(ctx, op.params.ForeignTxHash)
	if err != nil {
		return err
	}
	if details.FromAddress == nil || !strings.EqualFold(details.FromAddress.String(), op.params.Initiator.String()) {
		return i18n.NewError(ctx, msgs.MsgOpFromAddressMismatch, op.params.ForeignTxHash, details.FromAddress, op.params.Initiator)
	}
	amount, err := ParseDisplayAmount(ctx, details.Amount, op.m.decimals)
	if err != nil {
		return err
	}

	pending, err := op.m.ledger.CreatePendingTransaction(ctx, &ledger.CreatePendingTransactionRequest{
		TxHash:    op.params.ForeignTxHash,
		Amount:    details.Amount,
		Currency:  op.m.currency,
		Initiator: op.params.Initiator.String(),
		Type:      string(op.kind),
	})
	if err != nil {
		return err
	}

	op.mux.Lock()
	op.foreignDetails = details
	op.amount = amount
	op.finalAmount = amount
	op.netAmount = amount
	op.ledgerRecordID = pending.TransactionID
	op.chainTxHash = op.params.ForeignTxHash
	op.mux.Unlock()
	op.updateRegistry(ctx)
	return nil
}

func (op *inFlightOperation) executeApproval(ctx context.Context, value *big.Int) error {
	op.mux.Lock()
	op.signatureRequested = true
	op.mux.Unlock()
	_, err := op.m.allowance.Approve(ctx, op.params.Initiator, value)
	return err
}

// executeRequestingTransfer prompts the wallet for the principal value-moving
// transaction and records its hash. The ledger record must exist first - a
// transfer the backend has no record of can never be reconciled.
func (op *inFlightOperation) executeRequestingTransfer(ctx context.Context) error {
	op.mux.Lock()
	if op.ledgerRecordID == "" {
		op.mux.Unlock()
		return i18n.NewError(ctx, msgs.MsgOpNoLedgerRecord, op.id)
	}
	if len(op.chainTxHash) > 0 {
		op.mux.Unlock()
		return i18n.NewError(ctx, msgs.MsgOpSubmissionInFlight, op.id)
	}
	op.signatureRequested = true
	op.mux.Unlock()

	txHash, err := op.m.chain.WriteContract(ctx, op.principalCall())
	if err != nil {
		return err
	}

	op.mux.Lock()
	op.chainTxHash = txHash
	op.mux.Unlock()
	op.updateRegistry(ctx)
	op.persistBroadcast(ctx)

	if err := op.m.ledger.UpdateTransaction(ctx, &ledger.UpdateTransactionRequest{
		TransactionID: op.ledgerRecordID,
		Status:        "broadcast",
		ChainTxHash:   txHash,
	}); err != nil {
		// the transfer is in flight regardless; confirmation reconciles the record
		log.L(ctx).Warnf("Failed to update ledger record %s with hash %s: %s", op.ledgerRecordID, txHash, err)
	}
	return nil
}

// principalCall builds the value-moving call per kind, always using the
// backend-returned final amount, never the user's raw input.
func (op *inFlightOperation) principalCall() *chainclient.ContractCall {
	op.mux.Lock()
	defer op.mux.Unlock()
	switch op.kind {
	case KindDeposit:
		return &chainclient.ContractCall{
			From:     op.params.Initiator,
			To:       op.m.token,
			ABI:      erc20ABI,
			Function: "transfer",
			Input: map[string]any{
				"to":    op.m.vault.String(),
				"value": op.finalAmount.String(),
			},
		}
	case KindAdminTransfer:
		return &chainclient.ContractCall{
			From:     op.params.Initiator,
			To:       op.m.vault,
			ABI:      vaultABI,
			Function: "adminTransfer",
			Input: map[string]any{
				"to":     op.params.Recipient.String(),
				"amount": op.netAmount.String(),
			},
		}
	default: // withdraw
		return &chainclient.ContractCall{
			From:     op.params.Initiator,
			To:       op.m.vault,
			ABI:      vaultABI,
			Function: "withdraw",
			Input: map[string]any{
				"amount": op.finalAmount.String(),
			},
		}
	}
}

// executeConfirmingTransfer waits, unbounded, for the principal transaction
// to land - receipt polling raced against the matching contract event.
func (op *inFlightOperation) executeConfirmingTransfer(ctx context.Context) error {
	receipt, err := op.m.chain.WaitForReceipt(ctx, op.chainTxHash, op.principalEventMatch())
	if err != nil {
		return err
	}
	if !receipt.Success {
		return newOpError(ErrorChainReverted, i18n.NewError(ctx, msgs.MsgOpChainReverted, op.chainTxHash))
	}
	return nil
}

func (op *inFlightOperation) principalEventMatch() *chainclient.EventMatch {
	switch op.kind {
	case KindDeposit:
		return &chainclient.EventMatch{Address: op.m.token, ABI: erc20ABI, EventName: "Transfer"}
	case KindWithdraw:
		return &chainclient.EventMatch{Address: op.m.vault, ABI: vaultABI, EventName: "Withdrawn"}
	}
	// admin transfers rely on receipt polling alone
	return nil
}

// executeProcessingContract runs the secondary contract call: crediting a
// deposit into the vault, or crediting a manually verified transfer.
func (op *inFlightOperation) executeProcessingContract(ctx context.Context) error {
	var call *chainclient.ContractCall
	var match *chainclient.EventMatch
	if op.kind == KindManualVerify {
		call = &chainclient.ContractCall{
			From:     op.params.Initiator,
			To:       op.m.vault,
			ABI:      vaultABI,
			Function: "creditDeposit",
			Input: map[string]any{
				"sourceTx": op.params.ForeignTxHash.String(),
				"amount":   op.finalAmount.String(),
			},
		}
		match = &chainclient.EventMatch{Address: op.m.vault, ABI: vaultABI, EventName: "Deposited"}
	} else {
		call = &chainclient.ContractCall{
			From:     op.params.Initiator,
			To:       op.m.vault,
			ABI:      vaultABI,
			Function: "deposit",
			Input: map[string]any{
				"amount": op.finalAmount.String(),
			},
		}
		match = &chainclient.EventMatch{Address: op.m.vault, ABI: vaultABI, EventName: "Deposited"}
	}

	op.mux.Lock()
	op.signatureRequested = true
	op.mux.Unlock()

	txHash, err := op.m.chain.WriteContract(ctx, call)
	if err != nil {
		return err
	}
	op.mux.Lock()
	op.processingTxHash = txHash
	if len(op.chainTxHash) == 0 {
		op.chainTxHash = txHash
	}
	op.mux.Unlock()
	op.persistBroadcast(ctx)

	receipt, err := op.m.chain.WaitForReceipt(ctx, txHash, match)
	if err != nil {
		return err
	}
	if !receipt.Success {
		return newOpError(ErrorChainReverted, i18n.NewError(ctx, msgs.MsgOpChainReverted, txHash))
	}
	if err := op.m.ledger.UpdateTransaction(ctx, &ledger.UpdateTransactionRequest{
		TransactionID: op.ledgerRecordID,
		Status:        "processed",
		ChainTxHash:   txHash,
	}); err != nil {
		log.L(ctx).Warnf("Failed to update ledger record %s after processing: %s", op.ledgerRecordID, err)
	}
	return nil
}

// executeConfirmingLedger makes the one confirmation call. A failure here is
// the distinguished reconciliation case: the value already moved on-chain, so
// the operation must never be reported as failed.
func (op *inFlightOperation) executeConfirmingLedger(ctx context.Context) error {
	_, err := op.m.ledger.ConfirmTransaction(ctx, &ledger.ConfirmTransactionRequest{
		TransactionID: op.ledgerRecordID,
		TxHash:        op.chainTxHash,
		NetworkID:     op.m.ledger.NetworkID(),
	})
	if err != nil {
		op.markReconciliationNeeded(ctx, err)
		return newOpError(ErrorReconciliationNeeded, i18n.NewError(ctx, msgs.MsgOpReconciliationNeeded, op.chainTxHash))
	}
	return nil
}

func (op *inFlightOperation) markReconciliationNeeded(ctx context.Context, cause error) {
	op.mux.Lock()
	alreadyMarked := op.status == StatusReconciliationNeeded
	op.status = StatusReconciliationNeeded
	op.stage = StageReconciling
	op.statusMessage = stageMessages[StageReconciling]
	op.lastError = newOpError(ErrorReconciliationNeeded, i18n.NewError(ctx, msgs.MsgOpReconciliationNeeded, op.chainTxHash))
	op.mux.Unlock()
	op.updateRegistry(ctx)
	op.persistStatus(ctx, StatusReconciliationNeeded, cause.Error())
	if !alreadyMarked {
		op.m.metrics.IncReconciliationNeeded()
	}
	log.L(ctx).Warnf("Operation %s confirmed on-chain (%s) but ledger confirmation failed: %s", op.id, op.chainTxHash, cause)
}

func (op *inFlightOperation) complete(ctx context.Context) {
	op.mux.Lock()
	op.stage = StageComplete
	op.status = StatusComplete
	op.statusMessage = stageMessages[StageComplete]
	op.lastError = nil
	op.mux.Unlock()
	op.updateRegistry(ctx)
	op.persistStatus(ctx, StatusComplete, "")
	op.m.metrics.IncCompletedOperations(string(op.kind))
	log.L(ctx).Infof("Operation %s (%s) completed, tx %s", op.id, op.kind, op.chainTxHash)
}

// fail drives the operation to the failed status, classifying the error and
// cancelling the ledger record where one exists. The chain hash, if any, is
// pushed to the record first so the audit trail keeps it.
func (op *inFlightOperation) fail(ctx context.Context, cause error) {
	opErr := classify(ctx, cause)
	if opErr.Kind == ErrorReconciliationNeeded {
		// not a failure; state was already set by markReconciliationNeeded
		return
	}

	op.mux.Lock()
	op.status = StatusFailed
	op.lastError = opErr
	op.statusMessage = opErr.Error()
	recordID := op.ledgerRecordID
	txHash := op.chainTxHash
	op.mux.Unlock()
	op.updateRegistry(ctx)
	op.persistStatus(ctx, StatusFailed, opErr.Error())
	op.m.metrics.IncFailedOperations(string(op.kind))

	// A transient network failure after broadcast leaves the record pending:
	// the transaction may still land, and cancelling would contradict it.
	cancelRecord := recordID != "" && !(opErr.Kind == ErrorNetworkUnavailable && len(txHash) > 0)
	if cancelRecord {
		if len(txHash) > 0 {
			if err := op.m.ledger.UpdateTransaction(ctx, &ledger.UpdateTransactionRequest{
				TransactionID: recordID,
				Status:        "failed",
				ChainTxHash:   txHash,
				Description:   opErr.Error(),
			}); err != nil {
				log.L(ctx).Warnf("Failed to record failure on ledger record %s: %s", recordID, err)
			}
		}
		if err := op.m.ledger.CancelTransaction(ctx, recordID); err != nil {
			log.L(ctx).Warnf("Failed to cancel ledger record %s: %s", recordID, err)
		}
	}
	log.L(ctx).Errorf("Operation %s (%s) failed [%s]: %s", op.id, op.kind, opErr.Kind, opErr)
}

// classify maps an arbitrary collaborator error onto the error taxonomy.
func classify(ctx context.Context, err error) *OpError {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr
	}
	if errors.Is(err, chainclient.ErrSignatureRejected) {
		return newOpError(ErrorUserRejected, i18n.WrapError(ctx, err, msgs.MsgOpWalletRejected, err))
	}
	msg := err.Error()
	switch {
	case strings.Contains(strings.ToLower(msg), "insufficient funds"):
		return newOpError(ErrorInsufficientFunds, i18n.WrapError(ctx, err, msgs.MsgOpInsufficientFunds, err))
	case strings.HasPrefix(msg, "SW000204"): // backend validation rejection
		return newOpError(ErrorValidationRejected, err)
	case strings.HasPrefix(msg, "SW000309"), strings.HasPrefix(msg, "SW000315"), strings.HasPrefix(msg, "SW000001"):
		return newOpError(ErrorValidationRejected, err)
	default:
		return newOpError(ErrorNetworkUnavailable, err)
	}
}

func (op *inFlightOperation) updateRegistry(ctx context.Context) {
	snap := op.snapshot()
	displayAmount := ""
	if snap.FinalAmount != nil {
		displayAmount = FormatDisplayAmount(snap.FinalAmount, op.m.decimals)
	} else if snap.Amount != nil {
		displayAmount = FormatDisplayAmount(snap.Amount, op.m.decimals)
	}
	op.m.registry.Put(&PendingOperationEntry{
		Key:            op.id,
		Kind:           op.kind,
		Stage:          snap.Stage,
		Status:         snap.Status,
		Message:        snap.StatusMessage,
		DisplayAmount:  displayAmount,
		ChainTxHash:    snap.ChainTxHash,
		LedgerRecordID: snap.LedgerRecordID,
	})
	op.m.metrics.SetInFlightOperations(op.m.registry.Count())
}

// persistBroadcast writes the durable audit row the moment a transaction is
// broadcast, so a restart can still find the hash and the ledger record id.
func (op *inFlightOperation) persistBroadcast(ctx context.Context) {
	if op.m.store == nil {
		return
	}
	op.mux.Lock()
	stored := &opstore.StoredOperation{
		ID:             op.id,
		Kind:           string(op.kind),
		Initiator:      op.params.Initiator.String(),
		Amount:         FormatDisplayAmount(op.finalAmount, op.m.decimals),
		Currency:       op.m.currency,
		ChainTxHash:    op.chainTxHash.String(),
		LedgerRecordID: op.ledgerRecordID,
		Status:         "broadcast",
	}
	alreadyPersisted := op.persisted
	op.persisted = true
	op.mux.Unlock()

	var err error
	if alreadyPersisted {
		err = op.m.store.UpdateOperation(ctx, op.id, map[string]any{
			"chain_tx_hash": stored.ChainTxHash,
			"status":        stored.Status,
		})
	} else {
		err = op.m.store.InsertOperation(ctx, stored)
	}
	if err != nil {
		log.L(ctx).Warnf("Failed to persist broadcast audit for %s: %s", op.id, err)
	}
}

func (op *inFlightOperation) persistStatus(ctx context.Context, status InFlightStatus, lastError string) {
	if op.m.store == nil {
		return
	}
	op.mux.Lock()
	persisted := op.persisted
	op.mux.Unlock()
	if !persisted {
		// nothing was broadcast, the ledger record is the only trace
		return
	}
	if err := op.m.store.UpdateOperation(ctx, op.id, map[string]any{
		"status":     string(status),
		"last_error": lastError,
	}); err != nil {
		log.L(ctx).Warnf("Failed to persist status %s for %s: %s", status, op.id, err)
	}
}

// cancel is only honored before any signature has been requested.
func (op *inFlightOperation) cancel(ctx context.Context) error {
	op.advMux.Lock()
	defer op.advMux.Unlock()

	op.mux.Lock()
	if op.status.Terminal() {
		status := op.status
		op.mux.Unlock()
		return i18n.NewError(ctx, msgs.MsgOpTerminal, op.id, status)
	}
	if op.signatureRequested {
		stage := op.stage
		op.mux.Unlock()
		return i18n.NewError(ctx, msgs.MsgOpCancelTooLate, op.id, stage)
	}
	op.status = StatusCancelled
	op.statusMessage = "Cancelled"
	recordID := op.ledgerRecordID
	op.mux.Unlock()
	op.updateRegistry(ctx)

	if recordID != "" {
		if err := op.m.ledger.CancelTransaction(ctx, recordID); err != nil {
			log.L(ctx).Warnf("Failed to cancel ledger record %s: %s", recordID, err)
		}
	}
	log.L(ctx).Infof("Operation %s (%s) cancelled", op.id, op.kind)
	return nil
}
