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

// Package worker contains the bus-driven pipeline stages. Each stage is an
// independent consumer group so a stalled stage never blocks the others.
package worker

import (
	"context"
	"sync"

	"github.com/mendersoftware/go-lib-micro/identity"
	"github.com/mendersoftware/go-lib-micro/log"

	"github.com/mendersoftware/devicehub/client/bus"
)

// Worker is one pipeline stage bound to a channel and consumer group.
type Worker struct {
	Channel string
	Group   string
	Handler bus.Handler
}

// tenantContext restores the tenant identity carried in the message
// envelope so store and client calls land in the right tenant scope.
func tenantContext(ctx context.Context, msg bus.Message) context.Context {
	if msg.TenantID == "" {
		return ctx
	}
	return identity.WithContext(ctx, &identity.Identity{
		Tenant: msg.TenantID,
	})
}

// Run starts one goroutine per worker and blocks until the context is
// canceled and every consumer has drained its in-flight message.
func Run(ctx context.Context, client bus.Client, workers []Worker) {
	l := log.FromContext(ctx)
	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w Worker) {
			defer wg.Done()
			err := client.Consume(ctx, w.Channel, w.Group, w.Handler)
			if err != nil && ctx.Err() == nil {
				l.Errorf("consumer %s/%s terminated: %s",
					w.Channel, w.Group, err)
			}
		}(w)
	}
	wg.Wait()
}
