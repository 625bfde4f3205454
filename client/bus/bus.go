// Copyright 2023 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package bus

import (
	"context"
	"time"
)

const (
	// RetryBackoff is the delay between redeliveries of a message whose
	// handler reported a transient failure.
	RetryBackoff = time.Second
	// MaxRetryBackoff caps the exponential backoff applied on repeated
	// transient failures of the same message.
	MaxRetryBackoff = 30 * time.Second
)

// Message is one key/value record on a channel. Records sharing a key are
// delivered in order to a single consumer of the same group at a time.
type Message struct {
	TenantID string
	Key      string
	Data     []byte
}

// Handler processes one message. Returning nil acknowledges the message and
// advances the consumer position. Returning an error leaves the message
// unacknowledged so it is redelivered; handlers must resolve permanent
// (validation) failures themselves and return nil to preserve forward
// progress.
type Handler func(ctx context.Context, msg Message) error

// Client is the message bus client used by all pipeline stages. Delivery is
// at least once; consumers are expected to be idempotent.
//
//go:generate ../../utils/mockgen.sh
type Client interface {
	// Publish appends a record to a channel.
	Publish(ctx context.Context, channel string, msg Message) error
	// Consume delivers channel records of one consumer group to the
	// handler until the context is canceled. An in-flight handler call is
	// allowed to complete before Consume returns.
	Consume(ctx context.Context, channel, group string, handler Handler) error
	// Close releases the underlying connections.
	Close() error
}

// Backoff returns the bounded exponential backoff delay for the given
// delivery attempt (0-based).
func Backoff(attempt int) time.Duration {
	d := RetryBackoff
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= MaxRetryBackoff {
			return MaxRetryBackoff
		}
	}
	return d
}
