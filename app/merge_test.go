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
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mendersoftware/devicehub/model"
	storemocks "github.com/mendersoftware/devicehub/store/mocks"
)

func newEnrichedEvent(
	assignmentID uuid.UUID,
	kind model.EventKind,
	occurredAt time.Time,
) *model.EnrichedDeviceEvent {
	return &model.EnrichedDeviceEvent{
		ID: uuid.New(),
		DecodedDeviceEvent: model.DecodedDeviceEvent{
			DeviceToken: "d1",
			Kind:        kind,
			OccurredAt:  occurredAt,
		},
		DeviceID:     uuid.New(),
		DeviceTypeID: uuid.New(),
		AssignmentID: assignmentID,
	}
}

func TestMergeFirstContactCreatesState(t *testing.T) {
	ctx := context.Background()
	assignmentID := uuid.New()
	now := time.Now()

	event := newEnrichedEvent(assignmentID, model.EventKindLocation, now)
	event.Location = &model.Location{Latitude: 59.9, Longitude: 10.7}

	ds := &storemocks.DataStore{}
	defer ds.AssertExpectations(t)
	ds.On("GetDeviceState", ctx, assignmentID).Return(nil, nil)
	ds.On("UpsertDeviceState", ctx,
		mock.AnythingOfType("*model.DeviceState")).Return(nil)

	engine := NewStateMergeEngine(ds)
	state, cleared, err := engine.Merge(ctx, event)
	require.NoError(t, err)
	assert.False(t, cleared)
	assert.Equal(t, assignmentID, state.AssignmentID)
	assert.Equal(t, "d1", state.DeviceToken)
	assert.True(t, state.LastInteraction.Equal(now))
	require.NotNil(t, state.LastLocationEvent)
	assert.Equal(t, event.ID, state.LastLocationEvent.EventID)
}

func TestMergeInteractionDateMonotonic(t *testing.T) {
	ctx := context.Background()
	assignmentID := uuid.New()
	now := time.Now()

	existing := &model.DeviceState{
		ID:              uuid.New(),
		DeviceToken:     "d1",
		AssignmentID:    assignmentID,
		LastInteraction: now,
		LastLocationEvent: &model.EventRef{
			EventID:    uuid.New(),
			OccurredAt: now,
		},
	}
	newest := *existing.LastLocationEvent

	// an out-of-order location event from one hour ago
	stale := newEnrichedEvent(
		assignmentID, model.EventKindLocation, now.Add(-time.Hour))
	stale.Location = &model.Location{Latitude: 1, Longitude: 1}

	ds := &storemocks.DataStore{}
	defer ds.AssertExpectations(t)
	ds.On("GetDeviceState", ctx, assignmentID).Return(existing, nil)
	ds.On("UpsertDeviceState", ctx,
		mock.AnythingOfType("*model.DeviceState")).Return(nil)

	engine := NewStateMergeEngine(ds)
	state, _, err := engine.Merge(ctx, stale)
	require.NoError(t, err)
	assert.True(t, state.LastInteraction.Equal(now),
		"interaction date must not move backwards")
	assert.Equal(t, newest, *state.LastLocationEvent,
		"stale event must not replace the newest reference")
}

func TestMergePerKindSlots(t *testing.T) {
	ctx := context.Background()
	assignmentID := uuid.New()
	base := time.Now()

	ds := &storemocks.DataStore{}
	defer ds.AssertExpectations(t)

	var stored *model.DeviceState
	ds.On("GetDeviceState", ctx, assignmentID).
		Return(func(context.Context, uuid.UUID) *model.DeviceState {
			return stored
		}, nil)
	ds.On("UpsertDeviceState", ctx,
		mock.AnythingOfType("*model.DeviceState")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*model.DeviceState)
		}).Return(nil)

	engine := NewStateMergeEngine(ds)

	measurement := newEnrichedEvent(
		assignmentID, model.EventKindMeasurement, base)
	measurement.Measurements = map[string]float64{
		"temperature": 21.5,
		"humidity":    40,
	}
	_, _, err := engine.Merge(ctx, measurement)
	require.NoError(t, err)

	alert := newEnrichedEvent(
		assignmentID, model.EventKindAlert, base.Add(time.Second))
	alert.Alert = &model.Alert{Type: "overheat", Level: "critical"}
	_, _, err = engine.Merge(ctx, alert)
	require.NoError(t, err)

	newerMeasurement := newEnrichedEvent(
		assignmentID, model.EventKindMeasurement, base.Add(2*time.Second))
	newerMeasurement.Measurements = map[string]float64{
		"temperature": 22.0,
	}
	state, _, err := engine.Merge(ctx, newerMeasurement)
	require.NoError(t, err)

	// temperature advanced, humidity kept the older reference
	assert.Equal(t, newerMeasurement.ID,
		state.LastMeasurementEvents["temperature"].EventID)
	assert.Equal(t, measurement.ID,
		state.LastMeasurementEvents["humidity"].EventID)
	assert.Equal(t, alert.ID,
		state.LastAlertEvents["overheat"].EventID)
	assert.True(t,
		state.LastInteraction.Equal(newerMeasurement.OccurredAt))
}

func TestMergeClearsPresenceMissing(t *testing.T) {
	ctx := context.Background()
	assignmentID := uuid.New()
	now := time.Now()
	missingSince := now.Add(-time.Hour)

	existing := &model.DeviceState{
		ID:                   uuid.New(),
		DeviceToken:          "d1",
		AssignmentID:         assignmentID,
		LastInteraction:      now.Add(-9 * time.Hour),
		PresenceMissingSince: &missingSince,
	}

	ds := &storemocks.DataStore{}
	defer ds.AssertExpectations(t)
	ds.On("GetDeviceState", ctx, assignmentID).Return(existing, nil)
	ds.On("UpsertDeviceState", ctx,
		mock.MatchedBy(func(s *model.DeviceState) bool {
			return s.PresenceMissingSince == nil
		})).Return(nil)

	engine := NewStateMergeEngine(ds)
	state, cleared, err := engine.Merge(ctx,
		newEnrichedEvent(assignmentID, model.EventKindCommandResponse, now))
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.Nil(t, state.PresenceMissingSince)
	assert.True(t, state.LastInteraction.Equal(now))
}
