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

package msgs

import (
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"golang.org/x/text/language"
)

var registered = false
var swe = func(key, translation string, statusHint ...int) i18n.ErrorMessageKey {
	if !registered {
		i18n.RegisterPrefix("SW00", "Stable Wealth Transaction Core")
		registered = true
	}
	return i18n.FFE(language.AmericanEnglish, key, translation, statusHint...)
}

var (
	// Generic SW0000XX
	MsgContextCanceled        = swe("SW000000", "Context canceled")
	MsgInvalidAmount          = swe("SW000001", "Invalid amount '%s': must be a positive decimal number")
	MsgInvalidAddress         = swe("SW000002", "Invalid address '%s'")
	MsgConfigFileMissing      = swe("SW000003", "Config file not found at path: %s")
	MsgConfigFileReadError    = swe("SW000004", "Failed to read config file %s: %s")
	MsgConfigFileParseError   = swe("SW000005", "Failed to parse config file: %s")
	MsgInflightRequestAborted = swe("SW000006", "Request aborted after %s")
	MsgConfigMissingURL       = swe("SW000007", "Missing URL in %s configuration")

	// Chain client SW0001XX
	MsgChainClientInvalidURL        = swe("SW000100", "Invalid RPC URL '%s'")
	MsgChainClientChainIDFailed     = swe("SW000101", "Failed to query chain ID: %s")
	MsgChainClientABIJSON           = swe("SW000102", "Failed to parse ABI JSON")
	MsgChainClientFunctionNotFound  = swe("SW000103", "Function '%s' not found in ABI")
	MsgChainClientEventNotFound     = swe("SW000104", "Event '%s' not found in ABI")
	MsgChainClientMissingTo         = swe("SW000105", "Missing 'to' address for contract call")
	MsgChainClientMissingInput      = swe("SW000106", "Missing input values for contract call")
	MsgChainClientMissingOutput     = swe("SW000107", "Missing output struct for contract call")
	MsgChainClientInvalidInput      = swe("SW000108", "Failed to encode inputs for %s")
	MsgChainClientCallFailed        = swe("SW000109", "Contract call failed: %s")
	MsgChainClientEstimateFailed    = swe("SW000110", "Gas estimation failed: %s")
	MsgChainClientGasPriceFailed    = swe("SW000111", "Failed to retrieve gas price: %s")
	MsgChainClientSubmitFailed      = swe("SW000112", "Transaction submission failed: %s")
	MsgChainClientReceiptFailed     = swe("SW000113", "Failed to retrieve receipt for %s: %s")
	MsgChainClientWalletUnavailable = swe("SW000114", "No wallet signer available for address %s")

	// Ledger client SW0002XX
	MsgLedgerRequestFailed    = swe("SW000200", "Ledger API %s failed: %s")
	MsgLedgerBadStatus        = swe("SW000201", "Ledger API %s returned status %d: %s")
	MsgLedgerMissingRecordID  = swe("SW000202", "Ledger API did not return a transaction record ID")
	MsgLedgerDetailsNotFound  = swe("SW000203", "No ledger details found for transaction hash %s")
	MsgLedgerValidationReject = swe("SW000204", "Operation rejected by backend validation: %s")

	// Orchestrator SW0003XX
	MsgOpUnknownKind          = swe("SW000300", "Unknown operation kind '%s'")
	MsgOpTerminal             = swe("SW000301", "Operation %s is terminal (%s) and cannot be modified")
	MsgOpCancelTooLate        = swe("SW000302", "Operation %s cannot be cancelled after a signature has been requested (stage=%s)")
	MsgOpNoLedgerRecord       = swe("SW000303", "Operation %s has no ledger record; refusing to submit value-moving transaction")
	MsgOpSubmissionInFlight   = swe("SW000304", "Operation %s already has a chain submission in flight")
	MsgOpWalletRejected       = swe("SW000305", "Wallet rejected the signature request: %s")
	MsgOpChainReverted        = swe("SW000306", "Transaction %s reverted on-chain")
	MsgOpInsufficientFunds    = swe("SW000307", "Insufficient funds for operation: %s")
	MsgOpReconciliationNeeded = swe("SW000308", "Transaction %s succeeded on-chain; ledger confirmation is still pending")
	MsgOpFromAddressMismatch  = swe("SW000309", "Transaction %s was sent from %s, not the connected wallet %s")
	MsgOpNotFound             = swe("SW000310", "No operation found for '%s'")
	MsgOpInvalidStageOutput   = swe("SW000311", "Unexpected nil %s in stage output: %+v")
	MsgOpNotReconciling       = swe("SW000312", "Operation for transaction %s is not awaiting ledger confirmation")
	MsgOpAllowanceReadFailed  = swe("SW000313", "Failed to read current allowance for %s: %s")
	MsgOpApprovalFailed       = swe("SW000314", "Token approval transaction %s failed")
	MsgOpAmountBelowFee       = swe("SW000315", "Amount %s does not cover the admin fee")
	MsgOpTooManyInFlight      = swe("SW000316", "Too many operations in flight (max %d)")
	MsgOpMissingRecipient     = swe("SW000317", "A recipient address is required for admin transfers")
	MsgOpMissingForeignTxHash = swe("SW000318", "A transaction hash is required for manual verification")
	MsgOpNotDismissable       = swe("SW000319", "Operation %s is still in progress and cannot be dismissed (status=%s)")

	// Fee estimator SW0004XX
	MsgFeeEstimateIncomplete = swe("SW000400", "Fee estimation inputs are incomplete")

	// Price feed SW0005XX
	MsgPriceFeedInvalidURL = swe("SW000500", "Invalid price feed URL '%s'")
	MsgPriceFeedBadPayload = swe("SW000501", "Malformed price feed payload: %s")

	// Operation store SW0006XX
	MsgOpStoreInitFailed = swe("SW000600", "Failed to initialize operation store: %s")
	MsgOpStoreNotFound   = swe("SW000601", "No stored operation for transaction hash %s")
)
