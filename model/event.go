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

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// EventKind discriminates the single tagged event variant. Exactly one of
// the kind-specific payload fields is set for a given kind.
type EventKind string

const (
	EventKindMeasurement       EventKind = "measurement"
	EventKindLocation          EventKind = "location"
	EventKindAlert             EventKind = "alert"
	EventKindCommandInvocation EventKind = "command-invocation"
	EventKindCommandResponse   EventKind = "command-response"
	EventKindStateChange       EventKind = "state-change"
)

var eventKinds = []interface{}{
	EventKindMeasurement,
	EventKindLocation,
	EventKindAlert,
	EventKindCommandInvocation,
	EventKindCommandResponse,
	EventKindStateChange,
}

// State change categories and well-known states.
const (
	StateChangeCategoryPresence = "presence"

	PresenceStateMissing = "missing"
	PresenceStatePresent = "present"
)

// Location is the payload of a location event.
type Location struct {
	Latitude  float64 `json:"latitude" bson:"latitude" msgpack:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude" msgpack:"longitude"`
	Elevation float64 `json:"elevation,omitempty" bson:"elevation,omitempty" msgpack:"elevation,omitempty"`
}

// Alert is the payload of an alert event. Type identifies the alert
// condition and is the key under which the latest alert is tracked in
// device state.
type Alert struct {
	Type    string `json:"type" bson:"type" msgpack:"type"`
	Level   string `json:"level,omitempty" bson:"level,omitempty" msgpack:"level,omitempty"`
	Message string `json:"message,omitempty" bson:"message,omitempty" msgpack:"message,omitempty"`
}

// StateChange is the payload of a state-change event.
type StateChange struct {
	Category      string `json:"category" bson:"category" msgpack:"category"`
	NewState      string `json:"new_state" bson:"new_state" msgpack:"new_state"`
	PreviousState string `json:"previous_state,omitempty" bson:"previous_state,omitempty" msgpack:"previous_state,omitempty"`
}

// CommandInvocation is the payload of a command-invocation event.
type CommandInvocation struct {
	Command    string            `json:"command" bson:"command" msgpack:"command"`
	Parameters map[string]string `json:"parameters,omitempty" bson:"parameters,omitempty" msgpack:"parameters,omitempty"`
}

// CommandResponse is the payload of a command-response event.
type CommandResponse struct {
	OriginatingEventID uuid.UUID `json:"originating_event_id" bson:"originating_event_id" msgpack:"originating_event_id"`
	Response           string    `json:"response,omitempty" bson:"response,omitempty" msgpack:"response,omitempty"`
}

// DecodedDeviceEvent is an event emitted by a protocol decoder. It has been
// decoded from the device payload but not yet verified against the device
// registry. Immutable once produced.
type DecodedDeviceEvent struct {
	DeviceToken     string    `json:"device_token" msgpack:"device_token"`
	OriginatorToken string    `json:"originator_token,omitempty" msgpack:"originator_token,omitempty"`
	Kind            EventKind `json:"kind" msgpack:"kind"`
	OccurredAt      time.Time `json:"occurred_at" msgpack:"occurred_at"`

	Measurements      map[string]float64 `json:"measurements,omitempty" msgpack:"measurements,omitempty"`
	Location          *Location          `json:"location,omitempty" msgpack:"location,omitempty"`
	Alert             *Alert             `json:"alert,omitempty" msgpack:"alert,omitempty"`
	CommandInvocation *CommandInvocation `json:"command_invocation,omitempty" msgpack:"command_invocation,omitempty"`
	CommandResponse   *CommandResponse   `json:"command_response,omitempty" msgpack:"command_response,omitempty"`
	StateChange       *StateChange       `json:"state_change,omitempty" msgpack:"state_change,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty" msgpack:"metadata,omitempty"`
}

// Validate validates the decoded event structure.
func (e DecodedDeviceEvent) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.DeviceToken, validation.Required),
		validation.Field(&e.Kind, validation.Required, validation.In(eventKinds...)),
		validation.Field(&e.OccurredAt, validation.Required),
	)
}

// EnrichedDeviceEvent is a decoded event verified against the device registry
// and stamped with the identifiers resolved from the active assignment.
type EnrichedDeviceEvent struct {
	ID uuid.UUID `json:"id" bson:"_id" msgpack:"id"`

	DecodedDeviceEvent `bson:",inline" msgpack:",inline"`

	DeviceID     uuid.UUID  `json:"device_id" bson:"device_id" msgpack:"device_id"`
	DeviceTypeID uuid.UUID  `json:"device_type_id" bson:"device_type_id" msgpack:"device_type_id"`
	AssignmentID uuid.UUID  `json:"assignment_id" bson:"assignment_id" msgpack:"assignment_id"`
	CustomerID   *uuid.UUID `json:"customer_id,omitempty" bson:"customer_id,omitempty" msgpack:"customer_id,omitempty"`
	AreaID       *uuid.UUID `json:"area_id,omitempty" bson:"area_id,omitempty" msgpack:"area_id,omitempty"`
	AssetID      *uuid.UUID `json:"asset_id,omitempty" bson:"asset_id,omitempty" msgpack:"asset_id,omitempty"`
}

// Validate validates the enriched event structure.
func (e EnrichedDeviceEvent) Validate() error {
	err := e.DecodedDeviceEvent.Validate()
	if err != nil {
		return err
	}
	return validation.ValidateStruct(&e,
		validation.Field(&e.ID, validation.Required),
		validation.Field(&e.DeviceID, validation.Required),
		validation.Field(&e.DeviceTypeID, validation.Required),
		validation.Field(&e.AssignmentID, validation.Required),
	)
}
