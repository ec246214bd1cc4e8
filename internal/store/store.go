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

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrClosed     = errors.New("store is closed")
	ErrInvalidKey = errors.New("invalid storage key")
)

// Store defines the contract that every backend (LevelDB, SQLite, memory)
// must satisfy. Values are JSON-encoded; Get reports whether the key was
// present. The engine runs one operational-tier and one archival-tier Store
// with independent lifetimes.
type Store interface {
	Get(ctx context.Context, key Key, dest any) (bool, error)
	Set(ctx context.Context, key Key, value any) error
	Has(ctx context.Context, key Key) (bool, error)
	Remove(ctx context.Context, key Key) error
	Close() error
}

// EncodeValue is the single value codec used by all backends.
func EncodeValue(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return data, nil
}

func DecodeValue(data []byte, dest any) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	return nil
}
