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

package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mendersoftware/go-lib-micro/identity"
	"github.com/mendersoftware/go-lib-micro/log"

	"github.com/mendersoftware/devicehub/client/bus"
	"github.com/mendersoftware/devicehub/model"
)

const (
	websocketReadBufferSize  = 1024
	websocketWriteBufferSize = 1024

	// time allowed to write a message to the peer
	writeWait = 10 * time.Second
	// time allowed to read the next pong message from the peer
	pongWait = time.Minute
	// send pings to peer with this period, must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// per-subscriber buffer; slow consumers drop events, never block
	// the broker
	watchBufferSize = 64
)

// StateChangeBroker fans the state-change channel out to websocket
// subscribers. One bus consumer feeds all subscribers of this instance;
// delivery to watchers is best effort, the durable record stays in the
// event store.
type StateChangeBroker struct {
	mu          sync.Mutex
	subscribers map[chan *model.EnrichedDeviceEvent]string
}

// NewStateChangeBroker returns a new StateChangeBroker
func NewStateChangeBroker() *StateChangeBroker {
	return &StateChangeBroker{
		subscribers: make(map[chan *model.EnrichedDeviceEvent]string),
	}
}

// Run consumes the state-change channel until the context is canceled.
func (b *StateChangeBroker) Run(ctx context.Context, client bus.Client) error {
	return client.Consume(ctx,
		model.ChannelStateChangeEvents, model.GroupStateWatch,
		func(ctx context.Context, msg bus.Message) error {
			l := log.FromContext(ctx)
			var event model.EnrichedDeviceEvent
			if err := msgpack.Unmarshal(msg.Data, &event); err != nil {
				l.Errorf(
					"dropping undecodable state change: %s",
					err)
				return nil
			}
			b.broadcast(msg.TenantID, &event)
			return nil
		})
}

func (b *StateChangeBroker) broadcast(
	tenantID string,
	event *model.EnrichedDeviceEvent,
) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub, tenant := range b.subscribers {
		if tenant != tenantID {
			continue
		}
		select {
		case sub <- event:
		default:
		}
	}
}

func (b *StateChangeBroker) subscribe(
	tenantID string,
) chan *model.EnrichedDeviceEvent {
	sub := make(chan *model.EnrichedDeviceEvent, watchBufferSize)
	b.mu.Lock()
	b.subscribers[sub] = tenantID
	b.mu.Unlock()
	return sub
}

func (b *StateChangeBroker) unsubscribe(sub chan *model.EnrichedDeviceEvent) {
	b.mu.Lock()
	delete(b.subscribers, sub)
	b.mu.Unlock()
}

// Watch responds to GET /state-changes/watch, upgrading the request to a
// websocket that streams the tenant's state-change events as JSON.
func (h ManagementController) Watch(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.FromContext(ctx)

	tenantID := ""
	if idata := identity.FromContext(ctx); idata != nil {
		tenantID = idata.Tenant
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  websocketReadBufferSize,
		WriteBufferSize: websocketWriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "unable to upgrade the request " +
				"to websocket protocol",
		})
		return
	}
	//nolint:errcheck
	defer conn.Close()

	sub := h.broker.subscribe(tenantID)
	defer h.broker.unsubscribe(sub)

	// reader goroutine keeps the pong handler serviced and reports
	// the peer going away
	errChan := make(chan error, 1)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				errChan <- err
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-errChan:
			return
		case <-ticker.C:
			err := conn.WriteControl(websocket.PingMessage,
				nil, time.Now().Add(writeWait))
			if err != nil {
				return
			}
		case event := <-sub:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				l.Errorf("websocket write failed: %s", err)
				return
			}
		}
	}
}
