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
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mendersoftware/devicehub/client/bus"
)

func init() {
	ackWait = time.Second
}

var natsPort int32 = 43069

func NewNATSTestServer(t *testing.T) (URI string) {
	port := atomic.AddInt32(&natsPort, 1)
	opts := &server.Options{
		Port:      int(port),
		JetStream: true,
		StoreDir:  t.TempDir(),
	}
	srv, err := server.NewServer(opts)
	if err != nil {
		panic(err)
	}
	go srv.Start()
	t.Cleanup(srv.Shutdown)

	// Spinlock until go routine is listening
	for i := 0; srv.Addr() == nil && i < 1000; i++ {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.Addr() == nil {
		panic("failed to setup NATS test server")
	}
	uri, err := url.Parse("nats://" + srv.Addr().String())
	if err != nil {
		panic(err)
	}

	return uri.String()
}

func TestPublishConsume(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping TestPublishConsume in short mode")
	}
	t.Parallel()

	uri := NewNATSTestServer(t)
	client, err := NewClient(uri)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(
		context.Background(), 10*time.Second)
	defer cancel()

	received := make(chan bus.Message, 1)
	go func() {
		//nolint:errcheck
		client.Consume(ctx, "test-events", "test-group",
			func(_ context.Context, msg bus.Message) error {
				received <- msg
				return nil
			})
	}()
	// give the durable consumer time to bind
	time.Sleep(100 * time.Millisecond)

	err = client.Publish(ctx, "test-events", bus.Message{
		TenantID: "acme",
		Key:      "d1",
		Data:     []byte("hello"),
	})
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Equal(t, "acme", msg.TenantID)
		assert.Equal(t, "d1", msg.Key)
		assert.Equal(t, []byte("hello"), msg.Data)
	case <-ctx.Done():
		assert.FailNow(t, "timeout waiting for message")
	}
}

func TestRedeliveryOnHandlerError(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping TestRedeliveryOnHandlerError in short mode")
	}
	t.Parallel()

	uri := NewNATSTestServer(t)
	client, err := NewClient(uri)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(
		context.Background(), 30*time.Second)
	defer cancel()

	var attempts int32
	done := make(chan struct{})
	go func() {
		//nolint:errcheck
		client.Consume(ctx, "retry-events", "retry-group",
			func(_ context.Context, msg bus.Message) error {
				if atomic.AddInt32(&attempts, 1) == 1 {
					return errors.New("transient failure")
				}
				close(done)
				return nil
			})
	}()
	time.Sleep(100 * time.Millisecond)

	err = client.Publish(ctx, "retry-events", bus.Message{
		Key:  "d1",
		Data: []byte("retry me"),
	})
	require.NoError(t, err)

	select {
	case <-done:
		assert.GreaterOrEqual(t, atomic.LoadInt32(&attempts), int32(2))
	case <-ctx.Done():
		assert.FailNow(t, "timeout waiting for redelivery")
	}
}
