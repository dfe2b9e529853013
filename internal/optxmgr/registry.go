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
	"sort"
	"sync"
	"time"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"

	"github.com/gene42xxx/stable-wealth-sub000/internal/msgs"
)

// PendingOperationEntry is the observer-facing record of one in-flight
// operation. Entries are keyed by a client-generated correlation id from the
// moment the operation starts; once a chain transaction hash exists the entry
// is additionally indexed by that hash.
type PendingOperationEntry struct {
	Key            string
	Kind           OperationKind
	Stage          InFlightOpStage
	Status         InFlightStatus
	Message        string
	DisplayAmount  string
	ChainTxHash    ethtypes.HexBytes0xPrefix
	LedgerRecordID string
	Updated        time.Time
}

// PendingOperationRegistry is purely in-memory, process-lifetime state. The
// backend ledger is the durable record; this exists so observers (UI, admin
// surfaces) can list what is in flight right now. Safe for concurrent use.
type PendingOperationRegistry struct {
	mux       sync.RWMutex
	entries   map[string]*PendingOperationEntry
	hashIndex map[string]string
}

func NewPendingOperationRegistry() *PendingOperationRegistry {
	return &PendingOperationRegistry{
		entries:   make(map[string]*PendingOperationEntry),
		hashIndex: make(map[string]string),
	}
}

func (r *PendingOperationRegistry) Put(entry *PendingOperationEntry) {
	r.mux.Lock()
	defer r.mux.Unlock()
	e := *entry
	e.Updated = time.Now()
	r.entries[e.Key] = &e
	if len(e.ChainTxHash) > 0 {
		r.hashIndex[e.ChainTxHash.String()] = e.Key
	}
}

// Update applies a patch to the entry under the registry lock. The patch sees
// a private copy, so a failed patch cannot leave a half-written entry.
func (r *PendingOperationRegistry) Update(ctx context.Context, key string, patch func(*PendingOperationEntry)) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	existing, ok := r.entries[key]
	if !ok {
		return i18n.NewError(ctx, msgs.MsgOpNotFound, key)
	}
	e := *existing
	patch(&e)
	e.Key = existing.Key
	e.Updated = time.Now()
	r.entries[key] = &e
	if len(e.ChainTxHash) > 0 {
		r.hashIndex[e.ChainTxHash.String()] = key
	}
	return nil
}

func (r *PendingOperationRegistry) Remove(key string) {
	r.mux.Lock()
	defer r.mux.Unlock()
	if e, ok := r.entries[key]; ok {
		if len(e.ChainTxHash) > 0 {
			delete(r.hashIndex, e.ChainTxHash.String())
		}
		delete(r.entries, key)
	}
}

func (r *PendingOperationRegistry) Get(key string) (*PendingOperationEntry, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	e, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	copied := *e
	return &copied, true
}

func (r *PendingOperationRegistry) GetByChainTxHash(txHash ethtypes.HexBytes0xPrefix) (*PendingOperationEntry, bool) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	key, ok := r.hashIndex[txHash.String()]
	if !ok {
		return nil, false
	}
	e, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	copied := *e
	return &copied, true
}

// All returns a point-in-time copy of every entry, oldest first.
func (r *PendingOperationRegistry) All() []*PendingOperationEntry {
	r.mux.RLock()
	defer r.mux.RUnlock()
	all := make([]*PendingOperationEntry, 0, len(r.entries))
	for _, e := range r.entries {
		copied := *e
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Updated.Before(all[j].Updated)
	})
	return all
}

func (r *PendingOperationRegistry) Count() int {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return len(r.entries)
}
