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
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/mendersoftware/go-lib-micro/log"

	"github.com/mendersoftware/devicehub/model"
)

// DeviceBuilder seeds device registrations at startup, before any workers
// start consuming. Registration idempotency makes repeated runs of the same
// builder harmless.
type DeviceBuilder interface {
	Build(ctx context.Context) error
}

// FileDeviceBuilder registers devices described in a JSON file: an array of
// registration requests, applied in order.
type FileDeviceBuilder struct {
	path         string
	registration *RegistrationManager
}

// NewFileDeviceBuilder returns a new FileDeviceBuilder
func NewFileDeviceBuilder(
	path string,
	registration *RegistrationManager,
) *FileDeviceBuilder {
	return &FileDeviceBuilder{
		path:         path,
		registration: registration,
	}
}

// Build implements DeviceBuilder
func (b *FileDeviceBuilder) Build(ctx context.Context) error {
	l := log.FromContext(ctx)
	data, err := os.ReadFile(b.path)
	if err != nil {
		return errors.Wrap(err, "failed to read device seed file")
	}
	var requests []model.DeviceRegistrationRequest
	if err := json.Unmarshal(data, &requests); err != nil {
		return errors.Wrap(err, "failed to parse device seed file")
	}
	for _, request := range requests {
		_, err := b.registration.HandleDeviceRegistration(ctx, request)
		if err != nil {
			return errors.Wrapf(err, "failed to seed device %q",
				request.DeviceToken)
		}
	}
	l.Infof("seeded %d devices from %s", len(requests), b.path)
	return nil
}
