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

package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecodedDeviceEventValidate(t *testing.T) {
	now := time.Now()
	testCases := []struct {
		Name string

		Event DecodedDeviceEvent

		Valid bool
	}{{
		Name: "ok, measurement",

		Event: DecodedDeviceEvent{
			DeviceToken:  "d1",
			Kind:         EventKindMeasurement,
			OccurredAt:   now,
			Measurements: map[string]float64{"temperature": 21.5},
		},
		Valid: true,
	}, {
		Name: "ok, state change",

		Event: DecodedDeviceEvent{
			DeviceToken: "d1",
			Kind:        EventKindStateChange,
			OccurredAt:  now,
			StateChange: &StateChange{
				Category: StateChangeCategoryPresence,
				NewState: PresenceStateMissing,
			},
		},
		Valid: true,
	}, {
		Name: "missing device token",

		Event: DecodedDeviceEvent{
			Kind:       EventKindMeasurement,
			OccurredAt: now,
		},
	}, {
		Name: "unknown kind",

		Event: DecodedDeviceEvent{
			DeviceToken: "d1",
			Kind:        "telepathy",
			OccurredAt:  now,
		},
	}, {
		Name: "missing timestamp",

		Event: DecodedDeviceEvent{
			DeviceToken: "d1",
			Kind:        EventKindAlert,
		},
	}}
	for i := range testCases {
		tc := testCases[i]
		t.Run(tc.Name, func(t *testing.T) {
			err := tc.Event.Validate()
			if tc.Valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
