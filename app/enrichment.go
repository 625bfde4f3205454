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
	"github.com/google/uuid"

	"github.com/mendersoftware/devicehub/model"
)

// Enrich stamps the identifiers of the resolved assignment onto a verified
// event and assigns it a durable event ID. The transformation is pure: the
// assignment is trusted as resolved by the gatekeeper and not re-resolved
// here.
func Enrich(
	event model.DecodedDeviceEvent,
	assignment *model.DeviceAssignment,
) model.EnrichedDeviceEvent {
	return model.EnrichedDeviceEvent{
		ID:                 uuid.New(),
		DecodedDeviceEvent: event,
		DeviceID:           assignment.DeviceID,
		DeviceTypeID:       assignment.DeviceTypeID,
		AssignmentID:       assignment.ID,
		CustomerID:         assignment.CustomerID,
		AreaID:             assignment.AreaID,
		AssetID:            assignment.AssetID,
	}
}
