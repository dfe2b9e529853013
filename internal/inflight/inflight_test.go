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
package inflight

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInFlightLifecycleOK(t *testing.T) {

	ifm := NewInflightManager[string, string]()

	id := uuid.NewString()
	req := ifm.AddInflight(context.Background(), id)
	assert.Equal(t, id, req.ID())

	assert.Nil(t, ifm.GetInflight("wrong"))
	assert.Equal(t, req, ifm.GetInflight(id))
	assert.Equal(t, 1, ifm.InFlightCount())

	// Complete
	go func() {
		req.Complete("hello")
	}()
	v, err := req.Wait()
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	// caller always responsible for cancelling
	req.Cancel()
	assert.Nil(t, ifm.GetInflight(id))

	// Duplicate notifies are swallowed
	req.Complete("ignore")
	req.Complete("mew")
}

func TestInFlightContextCancel(t *testing.T) {

	ifm := NewInflightManager[string, string]()

	ctx, cancel := context.WithCancel(context.Background())
	req := ifm.AddInflight(ctx, uuid.NewString())

	go cancel()
	_, err := req.Wait()
	assert.Regexp(t, "SW000006", err)
}

func TestInFlightManagerClose(t *testing.T) {

	ifm := NewInflightManager[string, string]()

	req := ifm.AddInflight(context.Background(), uuid.NewString())

	go func() {
		ifm.Close()
	}()
	_, err := req.Wait()
	assert.Regexp(t, "SW000006", err)

	// check we do not block after close
	req2 := ifm.AddInflight(context.Background(), uuid.NewString())
	assert.Equal(t, 1, ifm.InFlightCount())
	_, err = req2.Wait()
	assert.Regexp(t, "SW000006", err)
}
