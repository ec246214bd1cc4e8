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

// Package events is the fire-and-forget notification sink. The engine
// publishes one event per state change after the mutation has been
// persisted; no delivery guarantee is assumed and failures never abort the
// originating operation.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Topics, one per state change.
const (
	TopicCampaignCreated          = "campaign_created"
	TopicCampaignCancelled        = "campaign_cancelled"
	TopicCampaignDeadlineExtended = "campaign_deadline_extended"
	TopicDonationMade             = "donation_made"
	TopicCreationFeePaid          = "creation_fee_paid"
	TopicCreationFeeSet           = "creation_fee_set"
	TopicDefaultAssetSet          = "crowdfunding_token_set"
	TopicPlatformFeesWithdrawn    = "platform_fees_withdrawn"

	TopicPoolCreated      = "pool_created"
	TopicPoolStateUpdated = "pool_state_updated"
	TopicContribution     = "contribution"
	TopicRefund           = "refund"
	TopicPoolClosed       = "pool_closed"

	TopicContractPaused       = "contract_paused"
	TopicContractUnpaused     = "contract_unpaused"
	TopicAdminRenounced       = "admin_renounced"
	TopicAddressBlacklisted   = "address_blacklisted"
	TopicAddressUnblacklisted = "address_unblacklisted"
	TopicCauseVerified        = "cause_verified"

	TopicEmergencyContactUpdated    = "emergency_contact_updated"
	TopicEmergencyWithdrawRequested = "emergency_withdraw_requested"
	TopicEmergencyWithdrawExecuted  = "emergency_withdraw_executed"
)

// Event is a single structured notification.
type Event struct {
	ID      string         `json:"id"`
	Topic   string         `json:"topic"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload"`
}

func New(topic string, payload map[string]any) Event {
	return Event{
		ID:      uuid.New().String(),
		Topic:   topic,
		At:      time.Now().UTC(),
		Payload: payload,
	}
}

// Sink delivers events somewhere. Publish must not block indefinitely.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// LogSink writes every event to the structured log. It is the default sink
// when no broker is configured.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.L()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(_ context.Context, event Event) error {
	s.logger.Info("Event published",
		zap.String("event_id", event.ID),
		zap.String("topic", event.Topic),
		zap.Any("payload", event.Payload))
	return nil
}

// Collector captures events in memory. Test sink.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Publish(_ context.Context, event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

// Events returns a copy of everything captured so far.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// ByTopic returns the captured events with the given topic.
func (c *Collector) ByTopic(topic string) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Event
	for _, e := range c.events {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}
