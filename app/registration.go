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

	"github.com/pkg/errors"

	"github.com/mendersoftware/go-lib-micro/log"

	"github.com/mendersoftware/devicehub/client/deviceman"
	"github.com/mendersoftware/devicehub/model"
)

// Registration outcomes and failure classes.
var (
	// ErrDeviceNotRegistered means the event belongs to no registered
	// device and the policy forbids registering it. The event is
	// diverted, not failed.
	ErrDeviceNotRegistered = errors.New("device is not registered")
	// ErrRegistrationRejected marks a malformed registration that can
	// never succeed and must not be retried.
	ErrRegistrationRejected = errors.New("registration rejected")
)

// RegistrationManager is the gatekeeper between decoded events and the rest
// of the pipeline: it resolves the active assignment for a device token,
// registering unseen devices on first contact when the policy allows it.
type RegistrationManager struct {
	deviceMgmt deviceman.Client
	policy     model.RegistrationPolicy
}

// NewRegistrationManager returns a new RegistrationManager
func NewRegistrationManager(
	dm deviceman.Client,
	policy model.RegistrationPolicy,
) *RegistrationManager {
	return &RegistrationManager{
		deviceMgmt: dm,
		policy:     policy,
	}
}

// HandleDecodedEvent resolves the assignment an event belongs to. It
// returns ErrDeviceNotRegistered when the event must be diverted to the
// unregistered-events channel; any other error is transient and the caller
// must not advance past the message.
func (m *RegistrationManager) HandleDecodedEvent(
	ctx context.Context,
	event *model.DecodedDeviceEvent,
) (*model.DeviceAssignment, error) {
	device, err := m.deviceMgmt.GetDeviceByToken(ctx, event.DeviceToken)
	if err != nil {
		return nil, err
	}
	if device == nil {
		if !m.policy.AllowNewDevices {
			return nil, ErrDeviceNotRegistered
		}
		return m.HandleDeviceRegistration(ctx,
			model.DeviceRegistrationRequest{
				DeviceToken: event.DeviceToken,
				Metadata:    event.Metadata,
			})
	}
	return m.resolveAssignment(ctx, device, model.DeviceRegistrationRequest{
		DeviceToken: event.DeviceToken,
	})
}

// HandleDeviceRegistration registers a device from an explicit registration
// request, using the same precedence and idempotency rules as first-contact
// registration: explicit token > policy default > absent.
func (m *RegistrationManager) HandleDeviceRegistration(
	ctx context.Context,
	request model.DeviceRegistrationRequest,
) (*model.DeviceAssignment, error) {
	if err := request.Validate(); err != nil {
		return nil, errors.Wrap(ErrRegistrationRejected, err.Error())
	}
	device, err := m.getOrCreateDevice(ctx, request)
	if err != nil {
		return nil, err
	}
	return m.resolveAssignment(ctx, device, request)
}

// getOrCreateDevice looks up the device and creates it when unseen. The
// create relies on the token uniqueness enforced by device-management:
// when a concurrent registration wins the race the conflict is resolved by
// re-reading the device it created.
func (m *RegistrationManager) getOrCreateDevice(
	ctx context.Context,
	request model.DeviceRegistrationRequest,
) (*model.Device, error) {
	l := log.FromContext(ctx)

	device, err := m.deviceMgmt.GetDeviceByToken(ctx, request.DeviceToken)
	if err != nil {
		return nil, err
	} else if device != nil {
		return device, nil
	}
	if !m.policy.AllowNewDevices {
		return nil, ErrDeviceNotRegistered
	}

	deviceType, err := m.resolveDeviceType(ctx, request)
	if err != nil {
		return nil, err
	}

	l.Debugf("creating device %q as part of registration",
		request.DeviceToken)
	device, err = m.deviceMgmt.CreateDevice(ctx, deviceman.DeviceCreateRequest{
		Token:        request.DeviceToken,
		DeviceTypeID: deviceType.ID,
		Comments:     "Device created by on-demand registration.",
		Metadata:     request.Metadata,
	})
	if err == deviceman.ErrDeviceExists {
		l.Infof("device %q was registered concurrently",
			request.DeviceToken)
		device, err = m.deviceMgmt.GetDeviceByToken(ctx, request.DeviceToken)
		if err != nil {
			return nil, err
		} else if device == nil {
			return nil, errors.Errorf(
				"device %q exists but cannot be read back",
				request.DeviceToken)
		}
		return device, nil
	} else if err != nil {
		return nil, err
	}
	return device, nil
}

// resolveAssignment returns the active assignment of the device, creating
// one from the request and the policy defaults when the device is
// unassigned.
func (m *RegistrationManager) resolveAssignment(
	ctx context.Context,
	device *model.Device,
	request model.DeviceRegistrationRequest,
) (*model.DeviceAssignment, error) {
	if device.AssignmentID != nil {
		assignment, err := m.deviceMgmt.GetDeviceAssignment(
			ctx, *device.AssignmentID)
		if err != nil {
			return nil, err
		} else if assignment == nil {
			return nil, ErrDeviceNotRegistered
		}
		return assignment, nil
	}

	customer, err := m.resolveReference(ctx,
		m.deviceMgmt.GetCustomerByToken, "customer",
		request.CustomerToken,
		m.policy.UseDefaultCustomer, m.policy.DefaultCustomerToken)
	if err != nil {
		return nil, err
	}
	area, err := m.resolveReference(ctx,
		m.deviceMgmt.GetAreaByToken, "area",
		request.AreaToken,
		m.policy.UseDefaultArea, m.policy.DefaultAreaToken)
	if err != nil {
		return nil, err
	}
	asset, err := m.resolveReference(ctx,
		m.deviceMgmt.GetAssetByToken, "asset",
		request.AssetToken,
		m.policy.UseDefaultAsset, m.policy.DefaultAssetToken)
	if err != nil {
		return nil, err
	}

	createReq := deviceman.AssignmentCreateRequest{
		DeviceID: device.ID,
	}
	if customer != nil {
		createReq.CustomerID = &customer.ID
	}
	if area != nil {
		createReq.AreaID = &area.ID
	}
	if asset != nil {
		createReq.AssetID = &asset.ID
	}
	return m.deviceMgmt.CreateDeviceAssignment(ctx, createReq)
}

// resolveDeviceType resolves the device type for a registration. Unlike the
// assignment references the device type is mandatory: a request without an
// explicit token and without a policy default is rejected.
func (m *RegistrationManager) resolveDeviceType(
	ctx context.Context,
	request model.DeviceRegistrationRequest,
) (*deviceman.EntityRef, error) {
	if request.DeviceTypeToken != "" {
		ref, err := m.deviceMgmt.GetDeviceTypeByToken(
			ctx, request.DeviceTypeToken)
		if err != nil {
			return nil, err
		} else if ref == nil {
			return nil, errors.Wrapf(ErrRegistrationRejected,
				"registration request specified invalid "+
					"device type token %q",
				request.DeviceTypeToken)
		}
		return ref, nil
	}
	if m.policy.UseDefaultDeviceType {
		ref, err := m.deviceMgmt.GetDeviceTypeByToken(
			ctx, m.policy.DefaultDeviceTypeToken)
		if err != nil {
			return nil, err
		} else if ref == nil {
			return nil, errors.Wrapf(ErrRegistrationRejected,
				"default device type token %q does not resolve",
				m.policy.DefaultDeviceTypeToken)
		}
		return ref, nil
	}
	return nil, errors.Wrap(ErrRegistrationRejected,
		"device type not passed and no default provided")
}

// resolveReference resolves an optional assignment reference with the
// explicit > default > absent precedence. An unresolvable explicit token is
// a rejection; an absent reference resolves to nil.
func (m *RegistrationManager) resolveReference(
	ctx context.Context,
	lookup func(context.Context, string) (*deviceman.EntityRef, error),
	kind, explicitToken string,
	useDefault bool, defaultToken string,
) (*deviceman.EntityRef, error) {
	if explicitToken != "" {
		ref, err := lookup(ctx, explicitToken)
		if err != nil {
			return nil, err
		} else if ref == nil {
			return nil, errors.Wrapf(ErrRegistrationRejected,
				"registration request specified invalid "+
					"%s token %q", kind, explicitToken)
		}
		return ref, nil
	}
	if useDefault {
		ref, err := lookup(ctx, defaultToken)
		if err != nil {
			return nil, err
		} else if ref == nil {
			return nil, errors.Wrapf(ErrRegistrationRejected,
				"default %s token %q does not resolve",
				kind, defaultToken)
		}
		return ref, nil
	}
	return nil, nil
}
