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

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisSink publishes events on a Redis pub/sub channel. Subscribers
// (indexers, notification fan-out) are external; nothing in the engine reads
// the channel back.
type RedisSink struct {
	client  *redis.Client
	channel string
}

func NewRedisSink(ctx context.Context, addr, channel string) (*RedisSink, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}
	if channel == "" {
		return nil, fmt.Errorf("redis channel cannot be empty")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to ping redis at %s: %w", addr, err)
	}

	zap.L().Info("Redis event sink connected",
		zap.String("addr", addr),
		zap.String("channel", channel))
	return &RedisSink{client: client, channel: channel}, nil
}

func (s *RedisSink) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("unable to encode event %s: %w", event.ID, err)
	}
	if err := s.client.Publish(ctx, s.channel, data).Err(); err != nil {
		return fmt.Errorf("unable to publish event %s: %w", event.ID, err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
