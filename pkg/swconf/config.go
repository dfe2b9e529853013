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

package swconf

import (
	"context"
	"os"

	"github.com/hyperledger/firefly-common/pkg/i18n"

	"github.com/gene42xxx/stable-wealth-sub000/internal/msgs"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/confutil"

	"sigs.k8s.io/yaml" // because it supports JSON tags, and our structs carry JSON tags throughout
)

// TxCoreConfig is the root configuration of the transaction orchestration core.
type TxCoreConfig struct {
	Log          LogConfig          `json:"log"`
	Blockchain   ChainClientConfig  `json:"blockchain"`
	Ledger       LedgerConfig       `json:"ledger"`
	PriceFeed    PriceFeedConfig    `json:"priceFeed"`
	Orchestrator OrchestratorConfig `json:"orchestrator"`
	Allowance    AllowanceConfig    `json:"allowance"`
	FeeEstimator FeeEstimatorConfig `json:"feeEstimator"`
	OpStore      OpStoreConfig      `json:"opStore"`
}

type LogConfig struct {
	// the logging level
	Level *string `json:"level"`
}

var LogDefaults = &LogConfig{
	Level: confutil.P("info"),
}

func ReadAndParseYAMLFile(ctx context.Context, filePath string, config interface{}) error {
	// Note we use the YAML parser (like Kubernetes) that handles json tags
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return i18n.NewError(ctx, msgs.MsgConfigFileMissing, filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return i18n.NewError(ctx, msgs.MsgConfigFileReadError, filePath, err.Error())
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return i18n.NewError(ctx, msgs.MsgConfigFileParseError, err.Error())
	}

	return nil
}
