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
	"github.com/mendersoftware/devicehub/model"
)

// NewMergeWorker returns the state-merge stage: it folds enriched events
// into the per-assignment device state and reports presence recoveries to
// the presence manager.
func NewMergeWorker(
	merge *app.StateMergeEngine,
	presence *app.PresenceManager,
) Worker {
	return Worker{
		Channel: model.ChannelEnrichedEvents,
		Group:   model.GroupStateMerge,
		Handler: func(ctx context.Context, msg bus.Message) error {
			return handleEnrichedEvent(
				tenantContext(ctx, msg), merge, presence, msg)
		},
	}
}

func handleEnrichedEvent(
	ctx context.Context,
	merge *app.StateMergeEngine,
	presence *app.PresenceManager,
	msg bus.Message,
) error {
	l := log.FromContext(ctx)
	var event model.EnrichedDeviceEvent
	if err := msgpack.Unmarshal(msg.Data, &event); err != nil {
		// enriched events are produced in-house; an undecodable one
		// is a bug, not device input, so drop loudly
		l.Errorf("dropping undecodable enriched event: %s", err)
		return nil
	}
	state, presenceCleared, err := merge.Merge(ctx, &event)
	if err != nil {
		return errors.Wrap(err, "failed to merge event into state")
	}
	if presenceCleared {
		if err := presence.NotifyPresent(ctx, state); err != nil {
			// the missing flag is already cleared; a lost
			// recovery notification is not worth re-merging
			l.Errorf("failed to notify device presence: %s", err)
		}
	}
	return nil
}
