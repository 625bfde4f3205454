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

package worker

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mendersoftware/go-lib-micro/log"

	"github.com/mendersoftware/devicehub/app"
	"github.com/mendersoftware/devicehub/client/bus"
	"github.com/mendersoftware/devicehub/client/events"
	"github.com/mendersoftware/devicehub/model"
)

// NewInboundWorker returns the first pipeline stage: it validates decoded
// events, resolves their registration, enriches them with assignment
// identifiers and hands them on, durably stored, to the merge stage.
// Malformed and unregistered events are diverted to their dead-letter
// channels so the main flow keeps moving.
func NewInboundWorker(
	client bus.Client,
	registration *app.RegistrationManager,
	eventStore events.Client,
) Worker {
	return Worker{
		Channel: model.ChannelDecodedEvents,
		Group:   model.GroupInboundPipeline,
		Handler: func(ctx context.Context, msg bus.Message) error {
			return handleDecodedEvent(
				tenantContext(ctx, msg),
				client, registration, eventStore, msg)
		},
	}
}

func handleDecodedEvent(
	ctx context.Context,
	client bus.Client,
	registration *app.RegistrationManager,
	eventStore events.Client,
	msg bus.Message,
) error {
	l := log.FromContext(ctx)
	var event model.DecodedDeviceEvent
	if err := msgpack.Unmarshal(msg.Data, &event); err != nil {
		l.Warnf("diverting undecodable event: %s", err)
		return divert(ctx, client, model.ChannelInvalidEvents, msg)
	}
	if err := event.Validate(); err != nil {
		l.Warnf("diverting invalid event from %q: %s",
			event.DeviceToken, err)
		return divert(ctx, client, model.ChannelInvalidEvents, msg)
	}

	assignment, err := registration.HandleDecodedEvent(ctx, &event)
	if errors.Is(err, app.ErrDeviceNotRegistered) ||
		errors.Is(err, app.ErrRegistrationRejected) {
		l.Warnf("diverting event from unregistered device %q: %s",
			event.DeviceToken, err)
		return divert(ctx, client, model.ChannelUnregisteredEvents, msg)
	} else if err != nil {
		// transient; leave the message for redelivery
		return err
	}

	enriched := app.Enrich(event, assignment)
	if err := eventStore.AppendEvent(ctx, &enriched); err != nil {
		return errors.Wrap(err, "failed to store enriched event")
	}
	data, err := msgpack.Marshal(&enriched)
	if err != nil {
		return errors.Wrap(err, "failed to marshal enriched event")
	}
	err = client.Publish(ctx, model.ChannelEnrichedEvents, bus.Message{
		TenantID: msg.TenantID,
		Key:      enriched.AssignmentID.String(),
		Data:     data,
	})
	return errors.Wrap(err, "failed to publish enriched event")
}

// divert republishes the original record on a dead-letter channel, keeping
// its key so per-device ordering survives the detour.
func divert(
	ctx context.Context,
	client bus.Client,
	channel string,
	msg bus.Message,
) error {
	err := client.Publish(ctx, channel, msg)
	return errors.Wrapf(err, "failed to divert event to %s", channel)
}
