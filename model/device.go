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
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Device represents a physical device known to the device-management
// collaborator.
type Device struct {
	ID           uuid.UUID  `json:"id"`
	Token        string     `json:"token"`
	DeviceTypeID uuid.UUID  `json:"device_type_id"`
	AssignmentID *uuid.UUID `json:"assignment_id,omitempty"`
}

// DeviceAssignment associates a device with its customer/area/asset context.
// Owned by the device-management collaborator; read-only here except for
// creation during registration.
type DeviceAssignment struct {
	ID           uuid.UUID  `json:"id"`
	DeviceID     uuid.UUID  `json:"device_id"`
	DeviceTypeID uuid.UUID  `json:"device_type_id"`
	CustomerID   *uuid.UUID `json:"customer_id,omitempty"`
	AreaID       *uuid.UUID `json:"area_id,omitempty"`
	AssetID      *uuid.UUID `json:"asset_id,omitempty"`
}

// DeviceRegistrationRequest registers a device directly, outside of the
// first-contact event path. Explicit tokens take precedence over the
// registration policy defaults.
type DeviceRegistrationRequest struct {
	DeviceToken     string            `json:"device_token"`
	DeviceTypeToken string            `json:"device_type_token,omitempty"`
	CustomerToken   string            `json:"customer_token,omitempty"`
	AreaToken       string            `json:"area_token,omitempty"`
	AssetToken      string            `json:"asset_token,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// Validate validates the registration request structure.
func (r DeviceRegistrationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DeviceToken, validation.Required,
			validation.Length(1, 256)),
	)
}

// RegistrationPolicy controls how unknown devices are handled on first
// contact. Read-only at runtime.
type RegistrationPolicy struct {
	AllowNewDevices bool

	UseDefaultDeviceType   bool
	DefaultDeviceTypeToken string
	UseDefaultCustomer     bool
	DefaultCustomerToken   string
	UseDefaultArea         bool
	DefaultAreaToken       string
	UseDefaultAsset        bool
	DefaultAssetToken      string
}
