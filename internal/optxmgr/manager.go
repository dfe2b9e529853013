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

// Package optxmgr sequences deposits, withdrawals, admin transfers and
// manual not-reflected recovery across three independently failing parties:
// the user's wallet signer, the chain, and the backend ledger. Each operation
// moves forward through a fixed stage sequence; a broadcast transaction is
// always driven to completed, failed, or the distinguished
// reconciliation-needed state.
package optxmgr

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gene42xxx/stable-wealth-sub000/internal/ledger"
	"github.com/gene42xxx/stable-wealth-sub000/internal/metrics"
	"github.com/gene42xxx/stable-wealth-sub000/internal/msgs"
	"github.com/gene42xxx/stable-wealth-sub000/internal/opstore"
	"github.com/gene42xxx/stable-wealth-sub000/internal/pricefeed"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/chainclient"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/confutil"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/swconf"
)

type Manager interface {
	// Start validates intent and registers a new queued operation. No
	// external call is made yet.
	Start(ctx context.Context, kind OperationKind, params *OperationParams) (*OperationHandle, error)
	// Advance drives exactly one stage to its terminal event. Idempotent
	// no-op on terminal operations.
	Advance(ctx context.Context, handle *OperationHandle) (InFlightOpStage, error)
	// Run advances until the operation rests: completed, failed, cancelled,
	// or reconciliation-needed.
	Run(ctx context.Context, handle *OperationHandle) error
	// Cancel is only honored before any signature has been requested.
	Cancel(ctx context.Context, handle *OperationHandle) error
	// Resume re-attaches to a broadcast transaction after a restart so its
	// ledger confirmation can be re-driven. Never re-submits to the chain.
	Resume(ctx context.Context, chainTxHash ethtypes.HexBytes0xPrefix) (*OperationHandle, error)
	Status(ctx context.Context, handle *OperationHandle) (*OperationSnapshot, error)
	PendingOperations() []*PendingOperationEntry
	// Dismiss drops a finished operation from the pending registry.
	// Operations still in flight, including reconciliation-needed ones,
	// cannot be dismissed.
	Dismiss(ctx context.Context, handle *OperationHandle) error
	// EstimateOperationFee prices the principal chain call of a prospective
	// operation. Advisory only.
	EstimateOperationFee(ctx context.Context, kind OperationKind, params *OperationParams) (*FeeEstimate, error)
	// NewFeeDebouncer coalesces rapid estimate requests from interactive input.
	NewFeeDebouncer() *Debouncer
	Close()
}

type manager struct {
	chain     chainclient.ChainClient
	ledger    ledger.Client
	prices    pricefeed.PriceSource
	store     opstore.Store
	metrics   metrics.OperationMetrics
	allowance *AllowanceManager
	fees      *FeeEstimator
	registry  *PendingOperationRegistry

	token           *ethtypes.Address0xHex
	vault           *ethtypes.Address0xHex
	currency        string
	decimals        int
	adminFeePercent int
	maxInFlight     int

	mux sync.Mutex
	ops map[string]*inFlightOperation
}

// NewManager wires the orchestration core from pre-built collaborators.
// store and operationMetrics may be nil; a nil store disables the durable
// audit (and Resume), a nil metrics sink falls back to a private registry.
func NewManager(ctx context.Context, conf *swconf.TxCoreConfig, chain chainclient.ChainClient, ledgerClient ledger.Client, prices pricefeed.PriceSource, store opstore.Store, operationMetrics metrics.OperationMetrics) (Manager, error) {
	oconf := &conf.Orchestrator
	if oconf.TokenAddress == nil || oconf.VaultAddress == nil {
		return nil, i18n.NewError(ctx, msgs.MsgInvalidAddress, "")
	}
	token, err := ethtypes.NewAddress(*oconf.TokenAddress)
	if err != nil {
		return nil, i18n.NewError(ctx, msgs.MsgInvalidAddress, *oconf.TokenAddress)
	}
	vault, err := ethtypes.NewAddress(*oconf.VaultAddress)
	if err != nil {
		return nil, i18n.NewError(ctx, msgs.MsgInvalidAddress, *oconf.VaultAddress)
	}
	if operationMetrics == nil {
		operationMetrics = metrics.InitMetrics(prometheus.NewRegistry())
	}
	decimals := confutil.IntMin(oconf.TokenDecimals, 0, *swconf.DefaultOrchestratorConfig.TokenDecimals)
	m := &manager{
		chain:           chain,
		ledger:          ledgerClient,
		prices:          prices,
		store:           store,
		metrics:         operationMetrics,
		registry:        NewPendingOperationRegistry(),
		token:           token,
		vault:           vault,
		currency:        confutil.StringNotEmpty(oconf.Currency, *swconf.DefaultOrchestratorConfig.Currency),
		decimals:        decimals,
		adminFeePercent: confutil.PercentMinMax(oconf.AdminFeePercent, 0, 100, *swconf.DefaultOrchestratorConfig.AdminFeePercent),
		maxInFlight:     confutil.IntMin(oconf.MaxInFlight, 1, *swconf.DefaultOrchestratorConfig.MaxInFlight),
		ops:             make(map[string]*inFlightOperation),
	}
	m.allowance = NewAllowanceManager(chain, ledgerClient, token, vault, decimals, &conf.Allowance)
	m.fees = NewFeeEstimator(chain, prices, &conf.FeeEstimator)
	return m, nil
}

func (m *manager) Start(ctx context.Context, kind OperationKind, params *OperationParams) (*OperationHandle, error) {
	if err := kind.Validate(ctx); err != nil {
		return nil, err
	}
	if params == nil || params.Initiator == nil {
		return nil, i18n.NewError(ctx, msgs.MsgInvalidAddress, "")
	}

	op := &inFlightOperation{
		id:     uuid.New().String(),
		kind:   kind,
		params: *params,
		m:      m,
		stage:  StageQueued,
		status: StatusPending,
	}
	switch kind {
	case KindManualVerify:
		if len(params.ForeignTxHash) == 0 {
			return nil, i18n.NewError(ctx, msgs.MsgOpMissingForeignTxHash)
		}
	case KindAdminTransfer:
		if params.Recipient == nil {
			return nil, i18n.NewError(ctx, msgs.MsgOpMissingRecipient)
		}
		fallthrough
	default:
		amount, err := ParseDisplayAmount(ctx, params.Amount, m.decimals)
		if err != nil {
			return nil, err
		}
		op.amount = amount
	}

	m.mux.Lock()
	inFlight := 0
	for id, existing := range m.ops {
		existing.mux.Lock()
		terminal := existing.status.Terminal()
		superseded := terminal && existing.kind == kind &&
			existing.params.Initiator != nil && *existing.params.Initiator == *params.Initiator
		existing.mux.Unlock()
		if superseded {
			// a finished operation of the same kind for this initiator makes way
			delete(m.ops, id)
			m.registry.Remove(id)
			continue
		}
		if !terminal {
			inFlight++
		}
	}
	if inFlight >= m.maxInFlight {
		m.mux.Unlock()
		return nil, i18n.NewError(ctx, msgs.MsgOpTooManyInFlight, m.maxInFlight)
	}
	m.ops[op.id] = op
	m.mux.Unlock()

	// a price observed during a previous operation must not leak into this one
	m.fees.InvalidateGasPrice()

	op.mux.Lock()
	op.statusMessage = stageMessages[StageQueued]
	op.mux.Unlock()
	op.updateRegistry(ctx)
	m.metrics.IncStartedOperations(string(kind))
	log.L(ctx).Infof("Started %s operation %s for %s", kind, op.id, params.Initiator)
	return &OperationHandle{ID: op.id, Kind: kind}, nil
}

func (m *manager) get(ctx context.Context, handle *OperationHandle) (*inFlightOperation, error) {
	if handle == nil {
		return nil, i18n.NewError(ctx, msgs.MsgOpNotFound, "")
	}
	m.mux.Lock()
	defer m.mux.Unlock()
	op, ok := m.ops[handle.ID]
	if !ok {
		return nil, i18n.NewError(ctx, msgs.MsgOpNotFound, handle.ID)
	}
	return op, nil
}

func (m *manager) Advance(ctx context.Context, handle *OperationHandle) (InFlightOpStage, error) {
	op, err := m.get(ctx, handle)
	if err != nil {
		return "", err
	}
	return op.advance(ctx)
}

func (m *manager) Run(ctx context.Context, handle *OperationHandle) error {
	op, err := m.get(ctx, handle)
	if err != nil {
		return err
	}
	for {
		if _, err := op.advance(ctx); err != nil {
			return err
		}
		op.mux.Lock()
		done := op.status.Terminal()
		op.mux.Unlock()
		if done {
			return nil
		}
	}
}

func (m *manager) Cancel(ctx context.Context, handle *OperationHandle) error {
	op, err := m.get(ctx, handle)
	if err != nil {
		return err
	}
	return op.cancel(ctx)
}

// Resume re-attaches to a broadcast-but-unconfirmed transaction, in memory if
// this process broadcast it, otherwise from the durable audit store. The
// resumed operation only re-drives the ledger confirmation.
func (m *manager) Resume(ctx context.Context, chainTxHash ethtypes.HexBytes0xPrefix) (*OperationHandle, error) {
	if entry, ok := m.registry.GetByChainTxHash(chainTxHash); ok {
		if entry.Status != StatusReconciliationNeeded {
			return nil, i18n.NewError(ctx, msgs.MsgOpNotReconciling, chainTxHash)
		}
		return &OperationHandle{ID: entry.Key, Kind: entry.Kind}, nil
	}

	if m.store == nil {
		return nil, i18n.NewError(ctx, msgs.MsgOpNotFound, chainTxHash)
	}
	stored, err := m.store.GetOperationByChainTxHash(ctx, chainTxHash.String())
	if err != nil {
		return nil, err
	}
	if stored.Status != "broadcast" && stored.Status != string(StatusReconciliationNeeded) {
		return nil, i18n.NewError(ctx, msgs.MsgOpNotReconciling, chainTxHash)
	}
	initiator, err := ethtypes.NewAddress(stored.Initiator)
	if err != nil {
		return nil, i18n.NewError(ctx, msgs.MsgInvalidAddress, stored.Initiator)
	}
	finalAmount, err := ParseDisplayAmount(ctx, stored.Amount, m.decimals)
	if err != nil {
		return nil, err
	}

	op := &inFlightOperation{
		id:             stored.ID,
		kind:           OperationKind(stored.Kind),
		params:         OperationParams{Initiator: initiator},
		m:              m,
		stage:          StageReconciling,
		status:         StatusReconciliationNeeded,
		statusMessage:  stageMessages[StageReconciling],
		finalAmount:    finalAmount,
		ledgerRecordID: stored.LedgerRecordID,
		chainTxHash:    chainTxHash,
		persisted:      true,
	}
	m.mux.Lock()
	m.ops[op.id] = op
	m.mux.Unlock()
	op.updateRegistry(ctx)
	log.L(ctx).Infof("Resumed operation %s for transaction %s", op.id, chainTxHash)
	return &OperationHandle{ID: op.id, Kind: op.kind}, nil
}

func (m *manager) Status(ctx context.Context, handle *OperationHandle) (*OperationSnapshot, error) {
	op, err := m.get(ctx, handle)
	if err != nil {
		return nil, err
	}
	return op.snapshot(), nil
}

func (m *manager) PendingOperations() []*PendingOperationEntry {
	return m.registry.All()
}

func (m *manager) Dismiss(ctx context.Context, handle *OperationHandle) error {
	op, err := m.get(ctx, handle)
	if err != nil {
		return err
	}
	op.mux.Lock()
	terminal := op.status.Terminal()
	status := op.status
	op.mux.Unlock()
	if !terminal {
		return i18n.NewError(ctx, msgs.MsgOpNotDismissable, op.id, status)
	}
	m.registry.Remove(op.id)
	m.mux.Lock()
	delete(m.ops, op.id)
	m.mux.Unlock()
	return nil
}

func (m *manager) EstimateOperationFee(ctx context.Context, kind OperationKind, params *OperationParams) (*FeeEstimate, error) {
	if params == nil || params.Initiator == nil {
		return nil, i18n.NewError(ctx, msgs.MsgFeeEstimateIncomplete)
	}
	amount, err := ParseDisplayAmount(ctx, params.Amount, m.decimals)
	if err != nil {
		return nil, err
	}

	var call *chainclient.ContractCall
	switch kind {
	case KindDeposit:
		call = &chainclient.ContractCall{
			From: params.Initiator, To: m.token, ABI: erc20ABI, Function: "transfer",
			Input: map[string]any{"to": m.vault.String(), "value": amount.String()},
		}
	case KindWithdraw:
		call = &chainclient.ContractCall{
			From: params.Initiator, To: m.vault, ABI: vaultABI, Function: "withdraw",
			Input: map[string]any{"amount": amount.String()},
		}
	case KindAdminTransfer:
		if params.Recipient == nil {
			return nil, i18n.NewError(ctx, msgs.MsgOpMissingRecipient)
		}
		call = &chainclient.ContractCall{
			From: params.Initiator, To: m.vault, ABI: vaultABI, Function: "adminTransfer",
			Input: map[string]any{"to": params.Recipient.String(), "amount": amount.String()},
		}
	default:
		return nil, i18n.NewError(ctx, msgs.MsgFeeEstimateIncomplete)
	}
	return m.fees.Estimate(ctx, call)
}

func (m *manager) NewFeeDebouncer() *Debouncer {
	return m.fees.NewDebouncer()
}

func (m *manager) Close() {
	if m.prices != nil {
		m.prices.Stop()
	}
	if m.store != nil {
		if err := m.store.Close(); err != nil {
			log.L(context.Background()).Warnf("Failed to close operation store: %s", err)
		}
	}
	m.chain.Close()
}
