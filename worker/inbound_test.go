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
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mendersoftware/devicehub/app"
	"github.com/mendersoftware/devicehub/client/bus"
	busmocks "github.com/mendersoftware/devicehub/client/bus/mocks"
	dmmocks "github.com/mendersoftware/devicehub/client/deviceman/mocks"
	evmocks "github.com/mendersoftware/devicehub/client/events/mocks"
	"github.com/mendersoftware/devicehub/model"
)

func TestInboundWorkerEnrichesAndPublishes(t *testing.T) {
	assignmentID := uuid.New()
	deviceTypeID := uuid.New()
	deviceID := uuid.New()
	device := &model.Device{
		ID:           deviceID,
		Token:        "d1",
		DeviceTypeID: deviceTypeID,
		AssignmentID: &assignmentID,
	}
	assignment := &model.DeviceAssignment{
		ID:           assignmentID,
		DeviceID:     deviceID,
		DeviceTypeID: deviceTypeID,
	}
	event := model.DecodedDeviceEvent{
		DeviceToken:  "d1",
		Kind:         model.EventKindMeasurement,
		OccurredAt:   time.Now(),
		Measurements: map[string]float64{"temperature": 20},
	}
	data, err := msgpack.Marshal(&event)
	require.NoError(t, err)

	deviceMgmt := &dmmocks.Client{}
	defer deviceMgmt.AssertExpectations(t)
	deviceMgmt.On("GetDeviceByToken", mock.Anything, "d1").
		Return(device, nil)
	deviceMgmt.On("GetDeviceAssignment", mock.Anything, assignmentID).
		Return(assignment, nil)

	eventStore := &evmocks.Client{}
	defer eventStore.AssertExpectations(t)
	eventStore.On("AppendEvent", mock.Anything,
		mock.MatchedBy(func(e *model.EnrichedDeviceEvent) bool {
			return e.AssignmentID == assignmentID &&
				e.DeviceID == deviceID &&
				e.DeviceToken == "d1"
		})).Return(nil)

	client := &busmocks.Client{}
	defer client.AssertExpectations(t)
	client.On("Publish", mock.Anything, model.ChannelEnrichedEvents,
		mock.MatchedBy(func(msg bus.Message) bool {
			return msg.Key == assignmentID.String() &&
				msg.TenantID == "acme"
		})).Return(nil)

	registration := app.NewRegistrationManager(deviceMgmt,
		model.RegistrationPolicy{AllowNewDevices: true})
	w := NewInboundWorker(client, registration, eventStore)
	assert.Equal(t, model.ChannelDecodedEvents, w.Channel)
	assert.Equal(t, model.GroupInboundPipeline, w.Group)

	err = w.Handler(context.Background(), bus.Message{
		TenantID: "acme",
		Key:      "d1",
		Data:     data,
	})
	assert.NoError(t, err)
}

func TestInboundWorkerDiverts(t *testing.T) {
	validEvent := model.DecodedDeviceEvent{
		DeviceToken: "ghost",
		Kind:        model.EventKindMeasurement,
		OccurredAt:  time.Now(),
	}
	validData, err := msgpack.Marshal(&validEvent)
	require.NoError(t, err)

	invalidEvent := model.DecodedDeviceEvent{
		DeviceToken: "d1",
		Kind:        "bogus-kind",
		OccurredAt:  time.Now(),
	}
	invalidData, err := msgpack.Marshal(&invalidEvent)
	require.NoError(t, err)

	testCases := []struct {
		Name string

		Data    []byte
		Channel string
		Lookup  bool
	}{{
		Name: "unregistered device",

		Data:    validData,
		Channel: model.ChannelUnregisteredEvents,
		Lookup:  true,
	}, {
		Name: "invalid event kind",

		Data:    invalidData,
		Channel: model.ChannelInvalidEvents,
	}, {
		Name: "undecodable payload",

		Data:    []byte("not msgpack"),
		Channel: model.ChannelInvalidEvents,
	}}
	for i := range testCases {
		tc := testCases[i]
		t.Run(tc.Name, func(t *testing.T) {
			deviceMgmt := &dmmocks.Client{}
			defer deviceMgmt.AssertExpectations(t)
			if tc.Lookup {
				deviceMgmt.On("GetDeviceByToken",
					mock.Anything, "ghost").
					Return(nil, nil)
			}

			eventStore := &evmocks.Client{}
			defer eventStore.AssertExpectations(t)

			client := &busmocks.Client{}
			defer client.AssertExpectations(t)
			client.On("Publish", mock.Anything, tc.Channel,
				mock.MatchedBy(func(msg bus.Message) bool {
					return string(msg.Data) == string(tc.Data)
				})).Return(nil)

			registration := app.NewRegistrationManager(deviceMgmt,
				model.RegistrationPolicy{AllowNewDevices: false})
			w := NewInboundWorker(client, registration, eventStore)
			err := w.Handler(context.Background(), bus.Message{
				Data: tc.Data,
			})
			assert.NoError(t, err,
				"diverted events must acknowledge the message")
			eventStore.AssertNotCalled(t, "AppendEvent",
				mock.Anything, mock.Anything)
		})
	}
}
