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
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mendersoftware/go-lib-micro/log"

	"github.com/mendersoftware/devicehub/client/bus"
	"github.com/mendersoftware/devicehub/model"
	"github.com/mendersoftware/devicehub/store"
	"github.com/mendersoftware/devicehub/utils"
)

var (
	// ErrOperationExists is returned when submitting an operation whose
	// token is already taken.
	ErrOperationExists = errors.New("batch operation already exists")
	// ErrOperationNotFound is returned for lookups of an unknown
	// operation token.
	ErrOperationNotFound = errors.New("batch operation not found")
)

// BatchOperationManager runs the lifecycle of batch operations: intake,
// expansion into per-device elements and per-element execution through the
// handler registry. The three stages communicate only through the store and
// the bus so a crash between any two of them is recovered by redelivery.
type BatchOperationManager struct {
	store    store.DataStore
	bus      bus.Client
	registry *HandlerRegistry
	clock    utils.Clock
}

// NewBatchOperationManager returns a new BatchOperationManager
func NewBatchOperationManager(
	ds store.DataStore,
	b bus.Client,
	registry *HandlerRegistry,
	clock utils.Clock,
) *BatchOperationManager {
	return &BatchOperationManager{
		store:    ds,
		bus:      b,
		registry: registry,
		clock:    clock,
	}
}

// SubmitOperation validates and persists a new batch operation, then
// schedules its expansion. Callers may pre-assign the token to make the
// submission idempotent; without one a fresh token is generated.
func (m *BatchOperationManager) SubmitOperation(
	ctx context.Context,
	operation *model.BatchOperation,
) error {
	if operation.Token == "" {
		operation.Token = uuid.New().String()
	}
	if operation.CreatedTs.IsZero() {
		operation.CreatedTs = m.clock.Now()
	}
	if err := operation.Validate(); err != nil {
		return err
	}
	err := m.store.CreateBatchOperation(ctx, operation)
	if err == store.ErrOperationExists {
		return ErrOperationExists
	} else if err != nil {
		return errors.Wrap(err, "failed to store batch operation")
	}
	data, err := msgpack.Marshal(operation)
	if err != nil {
		return errors.Wrap(err, "failed to marshal batch operation")
	}
	err = m.bus.Publish(ctx, model.ChannelBatchOperations, bus.Message{
		TenantID: tenantFromContext(ctx),
		Key:      operation.Token,
		Data:     data,
	})
	return errors.Wrap(err, "failed to schedule batch operation")
}

// InitializeOperation expands an operation into one unprocessed element per
// target device, in request order, and schedules each for execution. The
// expansion is convergent: redelivering the same operation keeps existing
// elements untouched and re-publishes every reference, at-least-once.
func (m *BatchOperationManager) InitializeOperation(
	ctx context.Context,
	operation *model.BatchOperation,
) error {
	if len(operation.DeviceTokens) == 0 {
		// intake rejects these; a bad record on the channel must not
		// wedge the stage
		log.FromContext(ctx).Warnf(
			"dropping operation %q with no target devices",
			operation.Token)
		return nil
	}
	elements := make([]model.BatchElement, len(operation.DeviceTokens))
	for i, deviceToken := range operation.DeviceTokens {
		elements[i] = model.BatchElement{
			OperationToken: operation.Token,
			DeviceToken:    deviceToken,
			Index:          int64(i),
			Status:         model.ElementStatusUnprocessed,
		}
	}
	err := m.store.CreateBatchElements(ctx, elements)
	if err != nil {
		return errors.Wrap(err, "failed to expand batch operation")
	}
	tenantID := tenantFromContext(ctx)
	for i := range elements {
		ref := model.BatchElementRef{
			OperationToken: elements[i].OperationToken,
			DeviceToken:    elements[i].DeviceToken,
		}
		data, err := msgpack.Marshal(ref)
		if err != nil {
			return errors.Wrap(err, "failed to marshal element ref")
		}
		err = m.bus.Publish(ctx, model.ChannelBatchElements,
			bus.Message{
				TenantID: tenantID,
				Key:      ref.Key(),
				Data:     data,
			})
		if err != nil {
			return errors.Wrap(err,
				"failed to schedule batch element")
		}
	}
	return nil
}

// ProcessElement executes a single batch element through the handler
// registered for the operation type and records the terminal result. A
// redelivered element that already reached a terminal status is skipped
// without invoking the handler.
func (m *BatchOperationManager) ProcessElement(
	ctx context.Context,
	ref model.BatchElementRef,
) error {
	l := log.FromContext(ctx)
	operation, err := m.store.GetBatchOperation(ctx, ref.OperationToken)
	if err != nil {
		return errors.Wrap(err, "failed to load batch operation")
	} else if operation == nil {
		// element ref outlived its operation; nothing to execute
		l.Warnf("dropping element for unknown operation %q",
			ref.OperationToken)
		return nil
	}
	element, err := m.store.GetBatchElement(
		ctx, ref.OperationToken, ref.DeviceToken)
	if err != nil {
		return errors.Wrap(err, "failed to load batch element")
	} else if element == nil {
		l.Warnf("dropping unknown element %q", ref.Key())
		return nil
	} else if element.Status.Terminal() {
		return nil
	}

	status := model.ElementStatusSucceeded
	reason := ""
	if handler := m.registry.Resolve(operation.OperationType); handler == nil {
		status = model.ElementStatusFailed
		reason = fmt.Sprintf("no handler registered for operation type %q",
			operation.OperationType)
	} else if err := m.invoke(ctx, handler, operation, element); err != nil {
		status = model.ElementStatusFailed
		reason = err.Error()
	}

	updated, err := m.store.SetBatchElementResult(ctx,
		ref.OperationToken, ref.DeviceToken, status, reason, m.clock.Now())
	if err != nil {
		return errors.Wrap(err, "failed to record element result")
	} else if !updated {
		// concurrent delivery got there first; its result stands
		return nil
	}
	if status == model.ElementStatusFailed {
		l.Warnf("element %q failed: %s", ref.Key(), reason)
	}
	return nil
}

// invoke runs the handler, converting a panic into a failed element instead
// of taking the worker down with it.
func (m *BatchOperationManager) invoke(
	ctx context.Context,
	handler OperationHandler,
	operation *model.BatchOperation,
	element *model.BatchElement,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("handler panic: %v", r)
		}
	}()
	return handler.Process(ctx, operation, element)
}

// GetOperation returns the stored operation for the token.
func (m *BatchOperationManager) GetOperation(
	ctx context.Context,
	token string,
) (*model.BatchOperation, error) {
	operation, err := m.store.GetBatchOperation(ctx, token)
	if err != nil {
		return nil, err
	} else if operation == nil {
		return nil, ErrOperationNotFound
	}
	return operation, nil
}

// GetOperationStatus derives the operation status from its element
// statuses.
func (m *BatchOperationManager) GetOperationStatus(
	ctx context.Context,
	token string,
) (*model.BatchOperationStatus, error) {
	operation, err := m.store.GetBatchOperation(ctx, token)
	if err != nil {
		return nil, err
	} else if operation == nil {
		return nil, ErrOperationNotFound
	}
	return m.store.GetBatchOperationStatus(ctx, token)
}

// ListElements returns one page of the elements of an operation ordered by
// expansion index.
func (m *BatchOperationManager) ListElements(
	ctx context.Context,
	token string,
	skip, limit int64,
) ([]model.BatchElement, error) {
	operation, err := m.store.GetBatchOperation(ctx, token)
	if err != nil {
		return nil, err
	} else if operation == nil {
		return nil, ErrOperationNotFound
	}
	return m.store.ListBatchElements(ctx, token, skip, limit)
}
