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

package deviceman

import "github.com/google/uuid"

// EntityRef is a resolved reference to a device type, customer, area or
// asset owned by the device-management service.
type EntityRef struct {
	ID    uuid.UUID `json:"id"`
	Token string    `json:"token"`
}

// DeviceCreateRequest creates a device record. The device-management
// service enforces token uniqueness.
type DeviceCreateRequest struct {
	Token        string            `json:"token"`
	DeviceTypeID uuid.UUID         `json:"device_type_id"`
	Comments     string            `json:"comments,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// AssignmentCreateRequest creates an assignment for an unassigned device.
type AssignmentCreateRequest struct {
	DeviceID   uuid.UUID  `json:"device_id"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	AreaID     *uuid.UUID `json:"area_id,omitempty"`
	AssetID    *uuid.UUID `json:"asset_id,omitempty"`
}
