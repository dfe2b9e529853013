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

// Package opstore is the local durable audit of broadcast transactions. The
// backend ledger remains the system of record; this store exists so that a
// transaction that was broadcast but never confirmed with the ledger can be
// found again after a restart and driven to a terminal state.
package opstore

import (
	"context"
	"errors"
	"time"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	gormSQLite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gene42xxx/stable-wealth-sub000/internal/msgs"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/confutil"
	"github.com/gene42xxx/stable-wealth-sub000/pkg/swconf"
)

// StoredOperation is persisted at the moment a value-moving transaction is
// broadcast, and updated as it reaches a terminal state.
type StoredOperation struct {
	ID             string    `gorm:"column:id;primaryKey"`
	Kind           string    `gorm:"column:kind"`
	Initiator      string    `gorm:"column:initiator"`
	Amount         string    `gorm:"column:amount"`
	Currency       string    `gorm:"column:currency"`
	ChainTxHash    string    `gorm:"column:chain_tx_hash;index"`
	LedgerRecordID string    `gorm:"column:ledger_record_id"`
	Status         string    `gorm:"column:status;index"`
	LastError      string    `gorm:"column:last_error"`
	Created        time.Time `gorm:"column:created;autoCreateTime:false"`
	Updated        time.Time `gorm:"column:updated;autoUpdateTime:false"`
}

func (StoredOperation) TableName() string {
	return "operations"
}

type Store interface {
	InsertOperation(ctx context.Context, op *StoredOperation) error
	UpdateOperation(ctx context.Context, id string, updates map[string]any) error
	GetOperationByChainTxHash(ctx context.Context, chainTxHash string) (*StoredOperation, error)
	ListUnconfirmed(ctx context.Context) ([]*StoredOperation, error)
	Close() error
}

type sqlStore struct {
	gdb *gorm.DB
}

func NewStore(ctx context.Context, conf *swconf.OpStoreConfig) (Store, error) {
	dsn := confutil.StringNotEmpty(conf.DSN, *swconf.DefaultOpStoreConfig.DSN)
	gdb, err := gorm.Open(gormSQLite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgOpStoreInitFailed, dsn)
	}
	if confutil.Bool(conf.AutoMigrate, *swconf.DefaultOpStoreConfig.AutoMigrate) {
		if err := gdb.WithContext(ctx).AutoMigrate(&StoredOperation{}); err != nil {
			return nil, i18n.WrapError(ctx, err, msgs.MsgOpStoreInitFailed, dsn)
		}
	}
	log.L(ctx).Debugf("Operation store open at %s", dsn)
	return &sqlStore{gdb: gdb}, nil
}

// NewStoreWithDB is used by tests to supply a pre-opened database.
func NewStoreWithDB(gdb *gorm.DB) Store {
	return &sqlStore{gdb: gdb}
}

func (s *sqlStore) InsertOperation(ctx context.Context, op *StoredOperation) error {
	now := time.Now().UTC()
	op.Created = now
	op.Updated = now
	return s.gdb.WithContext(ctx).Create(op).Error
}

func (s *sqlStore) UpdateOperation(ctx context.Context, id string, updates map[string]any) error {
	updates["updated"] = time.Now().UTC()
	return s.gdb.WithContext(ctx).
		Model(&StoredOperation{}).
		Where("id = ?", id).
		Updates(updates).
		Error
}

func (s *sqlStore) GetOperationByChainTxHash(ctx context.Context, chainTxHash string) (*StoredOperation, error) {
	var op StoredOperation
	err := s.gdb.WithContext(ctx).
		Where("chain_tx_hash = ?", chainTxHash).
		First(&op).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, i18n.NewError(ctx, msgs.MsgOpStoreNotFound, chainTxHash)
	}
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// ListUnconfirmed returns every broadcast operation still awaiting its
// ledger confirmation.
func (s *sqlStore) ListUnconfirmed(ctx context.Context) ([]*StoredOperation, error) {
	var ops []*StoredOperation
	err := s.gdb.WithContext(ctx).
		Where("status = ?", "reconciliation_needed").
		Order("created").
		Find(&ops).
		Error
	if err != nil {
		return nil, err
	}
	return ops, nil
}

func (s *sqlStore) Close() error {
	db, err := s.gdb.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
