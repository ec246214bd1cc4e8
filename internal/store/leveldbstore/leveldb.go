/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package leveldbstore backs the storage contract with LevelDB. It is the
// default operational-tier backend: compact values, frequently touched keys.
package leveldbstore

import (
	"context"
	"errors"
	"fmt"

	"crowdfund-ledger-go/internal/store"

	"github.com/syndtr/goleveldb/leveldb"
	"go.uber.org/zap"
)

// Compile-time check: *Store must satisfy store.Store.
var _ store.Store = (*Store)(nil)

type Store struct {
	db *leveldb.DB
}

func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to open leveldb at %s: %w", path, err)
	}
	zap.L().Info("LevelDB store opened", zap.String("path", path))
	return &Store{db: db}, nil
}

func (s *Store) Get(_ context.Context, key store.Key, dest any) (bool, error) {
	data, err := s.db.Get(key.Encode(), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("leveldb get %s: %w", key, err)
	}
	return true, store.DecodeValue(data, dest)
}

func (s *Store) Set(_ context.Context, key store.Key, value any) error {
	data, err := store.EncodeValue(value)
	if err != nil {
		return err
	}
	if err := s.db.Put(key.Encode(), data, nil); err != nil {
		return fmt.Errorf("leveldb put %s: %w", key, err)
	}
	return nil
}

func (s *Store) Has(_ context.Context, key store.Key) (bool, error) {
	ok, err := s.db.Has(key.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("leveldb has %s: %w", key, err)
	}
	return ok, nil
}

func (s *Store) Remove(_ context.Context, key store.Key) error {
	if err := s.db.Delete(key.Encode(), nil); err != nil {
		return fmt.Errorf("leveldb delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close leveldb store", zap.Error(err))
		return err
	}
	return nil
}
