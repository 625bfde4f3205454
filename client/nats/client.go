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

package nats

import (
	"context"
	"time"

	natsio "github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"github.com/mendersoftware/go-lib-micro/log"

	"github.com/mendersoftware/devicehub/client/bus"
)

const (
	// Set reconnect buffer size in bytes (10 MB)
	reconnectBufSize = 10 * 1024 * 1024
	// Set reconnect interval to 1 second
	reconnectWaitTime = 1 * time.Second

	streamName    = "DEVICEHUB"
	subjectPrefix = "devicehub."

	headerTenantID = "Devicehub-Tenant-Id"
	headerKey      = "Devicehub-Key"
)

var ackWait = 30 * time.Second

// NewClient returns a bus client backed by NATS JetStream. JetStream gives
// the at-least-once redelivery the pipeline relies on; strict per-key
// ordering under a scaled-out consumer group is only provided by the Kafka
// backend, which the timestamp-compared state merge tolerates.
func NewClient(url string, opts ...natsio.Option) (bus.Client, error) {
	conn, err := natsio.Connect(url, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "nats: failed to connect")
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "nats: failed to get JetStream context")
	}
	_, err = js.AddStream(&natsio.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subjectPrefix + ">"},
		Retention: natsio.InterestPolicy,
	})
	if err != nil && err != natsio.ErrStreamNameAlreadyInUse {
		conn.Close()
		return nil, errors.Wrap(err, "nats: failed to create stream")
	}
	return &client{
		conn: conn,
		js:   js,
	}, nil
}

// NewClientWithDefaults returns a bus client with the default
// reconnect-forever options.
func NewClientWithDefaults(url string) (bus.Client, error) {
	ctx := context.Background()
	l := log.FromContext(ctx)

	return NewClient(url,
		func(o *natsio.Options) error {
			o.AllowReconnect = true
			o.MaxReconnect = -1
			o.ReconnectBufSize = reconnectBufSize
			o.ReconnectWait = reconnectWaitTime
			o.RetryOnFailedConnect = true
			o.ClosedCB = func(_ *natsio.Conn) {
				l.Info("nats client closed the connection")
			}
			o.DisconnectedErrCB = func(_ *natsio.Conn, e error) {
				if e != nil {
					l.Warnf("nats client disconnected, err: %v", e)
				}
			}
			o.ReconnectedCB = func(_ *natsio.Conn) {
				l.Warn("nats client reconnected")
			}
			return nil
		},
	)
}

type client struct {
	conn *natsio.Conn
	js   natsio.JetStreamContext
}

func (c *client) Publish(ctx context.Context, channel string, msg bus.Message) error {
	m := natsio.NewMsg(subjectPrefix + channel)
	m.Header.Set(headerTenantID, msg.TenantID)
	m.Header.Set(headerKey, msg.Key)
	m.Data = msg.Data
	_, err := c.js.PublishMsg(m, natsio.Context(ctx))
	return errors.Wrapf(err, "nats: failed to publish to %q", channel)
}

func (c *client) Consume(
	ctx context.Context,
	channel, group string,
	handler bus.Handler,
) error {
	l := log.FromContext(ctx)
	msgs := make(chan *natsio.Msg, 1)
	sub, err := c.js.ChanQueueSubscribe(
		subjectPrefix+channel, group, msgs,
		natsio.ManualAck(),
		natsio.AckWait(ackWait),
		natsio.Durable(group),
	)
	if err != nil {
		return errors.Wrapf(err, "nats: failed to subscribe to %q", channel)
	}
	//nolint:errcheck
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m := <-msgs:
			msg := bus.Message{
				TenantID: m.Header.Get(headerTenantID),
				Key:      m.Header.Get(headerKey),
				Data:     m.Data,
			}
			if err := handler(ctx, msg); err != nil {
				l.Warnf("message handler failed, will redeliver: %v", err)
				if err := m.NakWithDelay(bus.RetryBackoff); err != nil {
					l.Errorf("failed to NAK message: %v", err)
				}
				continue
			}
			if err := m.Ack(); err != nil {
				l.Errorf("failed to ACK message: %v", err)
			}
		}
	}
}

func (c *client) Close() error {
	c.conn.Close()
	return nil
}
