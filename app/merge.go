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

package app

import (
	"context"

	"github.com/mendersoftware/devicehub/model"
	"github.com/mendersoftware/devicehub/store"
)

// StateMergeEngine folds enriched events into the per-assignment device
// state. The merge is convergent: event references are replaced
// latest-by-timestamp-wins and the interaction date only moves forward, so
// redelivered or reordered events within a partition produce the same
// state.
type StateMergeEngine struct {
	store store.DataStore
}

// NewStateMergeEngine returns a new StateMergeEngine
func NewStateMergeEngine(ds store.DataStore) *StateMergeEngine {
	return &StateMergeEngine{store: ds}
}

// Merge folds one enriched event into the state of its assignment,
// creating the state record on first contact. The second return value
// reports whether the device came back from a missing presence episode.
func (e *StateMergeEngine) Merge(
	ctx context.Context,
	event *model.EnrichedDeviceEvent,
) (*model.DeviceState, bool, error) {
	state, err := e.store.GetDeviceState(ctx, event.AssignmentID)
	if err != nil {
		return nil, false, err
	}
	if state == nil {
		state = model.NewDeviceState(event)
	}

	if event.OccurredAt.After(state.LastInteraction) {
		state.LastInteraction = event.OccurredAt
	}

	ref := model.EventRef{
		EventID:    event.ID,
		OccurredAt: event.OccurredAt,
	}
	switch event.Kind {
	case model.EventKindLocation:
		if state.LastLocationEvent == nil ||
			state.LastLocationEvent.Before(event.OccurredAt) {
			state.LastLocationEvent = &ref
		}
	case model.EventKindMeasurement:
		if state.LastMeasurementEvents == nil {
			state.LastMeasurementEvents = map[string]model.EventRef{}
		}
		for key := range event.Measurements {
			cur, ok := state.LastMeasurementEvents[key]
			if !ok || cur.Before(event.OccurredAt) {
				state.LastMeasurementEvents[key] = ref
			}
		}
	case model.EventKindAlert:
		if event.Alert == nil {
			break
		}
		if state.LastAlertEvents == nil {
			state.LastAlertEvents = map[string]model.EventRef{}
		}
		cur, ok := state.LastAlertEvents[event.Alert.Type]
		if !ok || cur.Before(event.OccurredAt) {
			state.LastAlertEvents[event.Alert.Type] = ref
		}
	default:
		// command and state-change events update the interaction
		// date only
	}

	// Any event implies presence.
	presenceCleared := state.PresenceMissingSince != nil
	state.PresenceMissingSince = nil

	if err := e.store.UpsertDeviceState(ctx, state); err != nil {
		return nil, false, err
	}
	return state, presenceCleared, nil
}
