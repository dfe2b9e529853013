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

// Package ledger is the REST client for the backend ledger service. The
// backend is the durable record of every transaction; the orchestration core
// creates a pending record before moving value, and confirms or cancels it
// afterwards.
package ledger

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/hyperledger/firefly-common/pkg/ffresty"
	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"

	"github.com/gene42xxx/stable-wealth-sub000/internal/msgs"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/confutil"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/retry"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/swconf"
)

// Client is the set of ledger operations the orchestration core consumes.
// Write operations are never retried automatically - a duplicate create or
// confirm is a financial side effect. The read used by the manual-verify
// path retries per the configured read retry.
type Client interface {
	CreatePendingTransaction(ctx context.Context, req *CreatePendingTransactionRequest) (*PendingTransaction, error)
	UpdateTransaction(ctx context.Context, req *UpdateTransactionRequest) error
	ConfirmTransaction(ctx context.Context, req *ConfirmTransactionRequest) (*ConfirmResult, error)
	CancelTransaction(ctx context.Context, transactionID string) error
	GetTransactionDetailsByHash(ctx context.Context, txHash ethtypes.HexBytes0xPrefix) (*TransactionDetails, error)
	RecordTokenApproval(ctx context.Context, req *RecordTokenApprovalRequest) error
	NetworkID() int64
}

type CreatePendingTransactionRequest struct {
	TxHash    ethtypes.HexBytes0xPrefix `json:"txHash,omitempty"`
	Amount    string                    `json:"amount"`
	Currency  string                    `json:"currency"`
	Initiator string                    `json:"initiator"`
	Type      string                    `json:"type"`
}

// PendingTransaction is the backend's validation result. FinalAmount is
/// authoritative: server-side policy may adjust the requested amount, and the
// chain call must use this value, not the caller's input.
type PendingTransaction struct {
	TransactionID string `json:"transactionId"`
	FinalAmount   string `json:"finalAmount"`
}

type UpdateTransactionRequest struct {
	TransactionID string                    `json:"-"`
	Status        string                    `json:"status"`
	ChainTxHash   ethtypes.HexBytes0xPrefix `json:"chainTxHash,omitempty"`
	Description   string                    `json:"description,omitempty"`
}

type ConfirmTransactionRequest struct {
	TransactionID string                    `json:"-"`
	TxHash        ethtypes.HexBytes0xPrefix `json:"txHash"`
	NetworkID     int64                     `json:"networkId"`
}

type ConfirmResult struct {
	Status string `json:"status"`
}

type TransactionDetails struct {
	Amount      string                 `json:"amount"`
	FromAddress *ethtypes.Address0xHex `json:"fromAddress"`
	BlockNumber uint64                 `json:"blockNumber"`
}

type RecordTokenApprovalRequest struct {
	Owner          *ethtypes.Address0xHex    `json:"owner"`
	Spender        *ethtypes.Address0xHex    `json:"spender"`
	Token          *ethtypes.Address0xHex    `json:"token"`
	ApprovedAmount string                    `json:"approvedAmount"`
	TxHash         ethtypes.HexBytes0xPrefix `json:"txHash"`
}

type apiError struct {
	Message string `json:"error"`
}

type ledgerClient struct {
	client    *resty.Client
	networkID int64
	readRetry *retry.Retry
}

func NewLedgerClient(ctx context.Context, conf *swconf.LedgerConfig) (Client, error) {
	if conf.HTTP.URL == "" {
		return nil, i18n.NewError(ctx, msgs.MsgConfigMissingURL, "ledger")
	}
	client := ffresty.NewWithConfig(ctx, ffresty.Config{
		URL: conf.HTTP.URL,
		HTTPConfig: ffresty.HTTPConfig{
			HTTPHeaders:           conf.HTTP.HTTPHeaders,
			AuthUsername:          conf.HTTP.Auth.Username,
			AuthPassword:          conf.HTTP.Auth.Password,
			HTTPRequestTimeout:    fftypes.FFDuration(confutil.DurationMin(conf.HTTP.RequestTimeout, 0, *swconf.DefaultHTTPConfig.RequestTimeout)),
			HTTPConnectionTimeout: fftypes.FFDuration(confutil.DurationMin(conf.HTTP.ConnectionTimeout, 0, *swconf.DefaultHTTPConfig.ConnectionTimeout)),
		},
	})
	return &ledgerClient{
		client:    client,
		networkID: confutil.Int64(conf.NetworkID, *swconf.DefaultLedgerConfig.NetworkID),
		readRetry: retry.NewRetryLimited(&conf.ReadRetry),
	}, nil
}

func (lc *ledgerClient) NetworkID() int64 {
	return lc.networkID
}

func (lc *ledgerClient) post(ctx context.Context, op, path string, body, result any) error {
	var errBody apiError
	req := lc.client.R().SetContext(ctx).SetBody(body).SetError(&errBody)
	if result != nil {
		req = req.SetResult(result)
	}
	res, err := req.Post(path)
	if err != nil {
		return i18n.NewError(ctx, msgs.MsgLedgerRequestFailed, op, err)
	}
	if !res.IsSuccess() {
		return statusError(ctx, op, res.StatusCode(), errBody.Message)
	}
	return nil
}

func statusError(ctx context.Context, op string, status int, message string) error {
	if status >= 400 && status < 500 {
		return i18n.NewError(ctx, msgs.MsgLedgerValidationReject, message)
	}
	return i18n.NewError(ctx, msgs.MsgLedgerBadStatus, op, status, message)
}

func (lc *ledgerClient) CreatePendingTransaction(ctx context.Context, req *CreatePendingTransactionRequest) (*PendingTransaction, error) {
	var pending PendingTransaction
	if err := lc.post(ctx, "createPendingTransaction", "/api/transactions/pending", req, &pending); err != nil {
		return nil, err
	}
	if pending.TransactionID == "" {
		return nil, i18n.NewError(ctx, msgs.MsgLedgerMissingRecordID)
	}
	if pending.FinalAmount == "" {
		// backend accepted the requested amount unchanged
		pending.FinalAmount = req.Amount
	}
	log.L(ctx).Debugf("Ledger pending record %s created (finalAmount=%s)", pending.TransactionID, pending.FinalAmount)
	return &pending, nil
}

func (lc *ledgerClient) UpdateTransaction(ctx context.Context, req *UpdateTransactionRequest) error {
	var errBody apiError
	res, err := lc.client.R().SetContext(ctx).SetBody(req).SetError(&errBody).
		Patch(fmt.Sprintf("/api/transactions/%s", req.TransactionID))
	if err != nil {
		return i18n.NewError(ctx, msgs.MsgLedgerRequestFailed, "updateTransaction", err)
	}
	if !res.IsSuccess() {
		return statusError(ctx, "updateTransaction", res.StatusCode(), errBody.Message)
	}
	return nil
}

func (lc *ledgerClient) ConfirmTransaction(ctx context.Context, req *ConfirmTransactionRequest) (*ConfirmResult, error) {
	if req.NetworkID == 0 {
		req.NetworkID = lc.networkID
	}
	var result ConfirmResult
	err := lc.post(ctx, "confirmTransaction", fmt.Sprintf("/api/transactions/%s/confirm", req.TransactionID), req, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (lc *ledgerClient) CancelTransaction(ctx context.Context, transactionID string) error {
	return lc.post(ctx, "cancelTransaction", fmt.Sprintf("/api/transactions/%s/cancel", transactionID), struct{}{}, nil)
}

func (lc *ledgerClient) GetTransactionDetailsByHash(ctx context.Context, txHash ethtypes.HexBytes0xPrefix) (*TransactionDetails, error) {
	var details TransactionDetails
	err := lc.readRetry.Do(ctx, func(attempt int) (retryable bool, err error) {
		var errBody apiError
		res, err := lc.client.R().SetContext(ctx).SetResult(&details).SetError(&errBody).
			Get(fmt.Sprintf("/api/transactions/by-hash/%s", txHash))
		if err != nil {
			return true, i18n.NewError(ctx, msgs.MsgLedgerRequestFailed, "getTransactionDetailsByHash", err)
		}
		if res.StatusCode() == 404 {
			return false, i18n.NewError(ctx, msgs.MsgLedgerDetailsNotFound, txHash)
		}
		if !res.IsSuccess() {
			// reads are side-effect free, transient server errors retry
			return res.StatusCode() >= 500, statusError(ctx, "getTransactionDetailsByHash", res.StatusCode(), errBody.Message)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return &details, nil
}

func (lc *ledgerClient) RecordTokenApproval(ctx context.Context, req *RecordTokenApprovalRequest) error {
	return lc.post(ctx, "recordTokenApproval", "/api/approvals", req, nil)
}
