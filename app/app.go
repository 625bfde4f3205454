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

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mendersoftware/devicehub/client/commands"
	"github.com/mendersoftware/devicehub/client/deviceman"
	"github.com/mendersoftware/devicehub/client/events"
	"github.com/mendersoftware/devicehub/model"
	"github.com/mendersoftware/devicehub/store"
)

// ErrDeviceStateNotFound is returned for state lookups of assignments
// that have not recorded any event yet.
var ErrDeviceStateNotFound = errors.New("device state not found")

// App interface describes the application API exposed over HTTP.
//
//go:generate ../utils/mockgen.sh
type App interface {
	HealthCheck(ctx context.Context) error
	RegisterDevice(
		ctx context.Context,
		request model.DeviceRegistrationRequest,
	) (*model.DeviceAssignment, error)
	GetDeviceState(
		ctx context.Context,
		assignmentID uuid.UUID,
	) (*model.DeviceState, error)
	SubmitBatchOperation(
		ctx context.Context,
		operation *model.BatchOperation,
	) error
	GetBatchOperation(
		ctx context.Context,
		token string,
	) (*model.BatchOperation, error)
	GetBatchOperationStatus(
		ctx context.Context,
		token string,
	) (*model.BatchOperationStatus, error)
	ListBatchElements(
		ctx context.Context,
		token string,
		skip, limit int64,
	) ([]model.BatchElement, error)
}

// app is an app
type app struct {
	store        store.DataStore
	deviceMgmt   deviceman.Client
	events       events.Client
	commands     commands.Client
	registration *RegistrationManager
	batch        *BatchOperationManager
}

// New returns a new App composed of the managers and collaborator clients.
func New(
	ds store.DataStore,
	deviceMgmt deviceman.Client,
	ev events.Client,
	cmd commands.Client,
	registration *RegistrationManager,
	batch *BatchOperationManager,
) App {
	return &app{
		store:        ds,
		deviceMgmt:   deviceMgmt,
		events:       ev,
		commands:     cmd,
		registration: registration,
		batch:        batch,
	}
}

// HealthCheck performs a health check and returns an error if it fails
func (a *app) HealthCheck(ctx context.Context) error {
	if err := a.store.Ping(ctx); err != nil {
		return errors.Wrap(err, "error reaching MongoDB")
	}
	if err := a.deviceMgmt.CheckHealth(ctx); err != nil {
		return errors.Wrap(err, "error reaching device-management")
	}
	if err := a.events.CheckHealth(ctx); err != nil {
		return errors.Wrap(err, "error reaching event-store")
	}
	if err := a.commands.CheckHealth(ctx); err != nil {
		return errors.Wrap(err, "error reaching command-delivery")
	}
	return nil
}

func (a *app) RegisterDevice(
	ctx context.Context,
	request model.DeviceRegistrationRequest,
) (*model.DeviceAssignment, error) {
	return a.registration.HandleDeviceRegistration(ctx, request)
}

func (a *app) GetDeviceState(
	ctx context.Context,
	assignmentID uuid.UUID,
) (*model.DeviceState, error) {
	state, err := a.store.GetDeviceState(ctx, assignmentID)
	if err != nil {
		return nil, err
	} else if state == nil {
		return nil, ErrDeviceStateNotFound
	}
	return state, nil
}

func (a *app) SubmitBatchOperation(
	ctx context.Context,
	operation *model.BatchOperation,
) error {
	return a.batch.SubmitOperation(ctx, operation)
}

func (a *app) GetBatchOperation(
	ctx context.Context,
	token string,
) (*model.BatchOperation, error) {
	return a.batch.GetOperation(ctx, token)
}

func (a *app) GetBatchOperationStatus(
	ctx context.Context,
	token string,
) (*model.BatchOperationStatus, error) {
	return a.batch.GetOperationStatus(ctx, token)
}

func (a *app) ListBatchElements(
	ctx context.Context,
	token string,
	skip, limit int64,
) ([]model.BatchElement, error) {
	return a.batch.ListElements(ctx, token, skip, limit)
}
