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
	"time"

	"github.com/google/uuid"
)

// EventRef references an event stored in the durable event store together
// with the time the event occurred. The timestamp makes merges tolerant of
// reordered delivery: a reference is only replaced by a newer one.
type EventRef struct {
	EventID    uuid.UUID `json:"event_id" bson:"event_id"`
	OccurredAt time.Time `json:"occurred_at" bson:"occurred_at"`
}

// Before reports whether the referenced event occurred strictly before t.
func (r EventRef) Before(t time.Time) bool {
	return r.OccurredAt.Before(t)
}

// DeviceState is the convergent per-assignment state record. One per
// assignment, created lazily on first merge. LastInteraction is
// monotonically non-decreasing across merges.
type DeviceState struct {
	ID           uuid.UUID  `json:"id" bson:"_id"`
	DeviceToken  string     `json:"device_token" bson:"device_token"`
	DeviceID     uuid.UUID  `json:"device_id" bson:"device_id"`
	DeviceTypeID uuid.UUID  `json:"device_type_id" bson:"device_type_id"`
	AssignmentID uuid.UUID  `json:"assignment_id" bson:"assignment_id"`
	CustomerID   *uuid.UUID `json:"customer_id,omitempty" bson:"customer_id,omitempty"`
	AreaID       *uuid.UUID `json:"area_id,omitempty" bson:"area_id,omitempty"`
	AssetID      *uuid.UUID `json:"asset_id,omitempty" bson:"asset_id,omitempty"`

	LastInteraction      time.Time  `json:"last_interaction" bson:"last_interaction"`
	PresenceMissingSince *time.Time `json:"presence_missing_since,omitempty" bson:"presence_missing_since,omitempty"`

	LastLocationEvent     *EventRef           `json:"last_location_event,omitempty" bson:"last_location_event,omitempty"`
	LastMeasurementEvents map[string]EventRef `json:"last_measurement_events,omitempty" bson:"last_measurement_events,omitempty"`
	LastAlertEvents       map[string]EventRef `json:"last_alert_events,omitempty" bson:"last_alert_events,omitempty"`
}

// NewDeviceState seeds a state record from the identifiers carried by the
// first enriched event observed for an assignment.
func NewDeviceState(event *EnrichedDeviceEvent) *DeviceState {
	return &DeviceState{
		ID:           uuid.New(),
		DeviceToken:  event.DeviceToken,
		DeviceID:     event.DeviceID,
		DeviceTypeID: event.DeviceTypeID,
		AssignmentID: event.AssignmentID,
		CustomerID:   event.CustomerID,
		AreaID:       event.AreaID,
		AssetID:      event.AssetID,
	}
}
