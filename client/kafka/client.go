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

package kafka

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"github.com/mendersoftware/go-lib-micro/log"

	"github.com/mendersoftware/devicehub/client/bus"
)

const headerTenantID = "tenant_id"

// NewClient returns a bus client backed by Kafka. The hash balancer routes
// all records of one key to the same partition, which is what gives the
// pipeline its per-device ordering guarantee.
func NewClient(brokers []string) bus.Client {
	return &client{
		brokers: brokers,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

type client struct {
	brokers []string
	writer  *kafka.Writer
}

func (c *client) Publish(ctx context.Context, channel string, msg bus.Message) error {
	err := c.writer.WriteMessages(ctx, kafka.Message{
		Topic: channel,
		Key:   []byte(msg.Key),
		Value: msg.Data,
		Headers: []kafka.Header{{
			Key:   headerTenantID,
			Value: []byte(msg.TenantID),
		}},
	})
	return errors.Wrapf(err, "kafka: failed to publish to %q", channel)
}

func (c *client) Consume(
	ctx context.Context,
	channel, group string,
	handler bus.Handler,
) error {
	l := log.FromContext(ctx)
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: c.brokers,
		GroupID: group,
		Topic:   channel,
	})
	//nolint:errcheck
	defer reader.Close()

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrapf(err,
				"kafka: failed to fetch message from %q", channel)
		}
		msg := bus.Message{
			Key:  string(m.Key),
			Data: m.Value,
		}
		for _, h := range m.Headers {
			if h.Key == headerTenantID {
				msg.TenantID = string(h.Value)
			}
		}
		// The offset is only committed once the handler succeeds, so a
		// crash mid-message redelivers it. Transient handler failures
		// are retried in place with bounded backoff to keep the
		// partition from advancing past an unprocessed message.
		for attempt := 0; ; attempt++ {
			err = handler(ctx, msg)
			if err == nil {
				break
			}
			l.Warnf("message handler failed (attempt %d): %v",
				attempt+1, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(bus.Backoff(attempt)):
			}
		}
		if err := reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "kafka: failed to commit offset")
		}
	}
}

func (c *client) Close() error {
	return c.writer.Close()
}
