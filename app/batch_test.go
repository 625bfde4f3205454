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
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mendersoftware/devicehub/client/bus"
	busmocks "github.com/mendersoftware/devicehub/client/bus/mocks"
	"github.com/mendersoftware/devicehub/model"
	"github.com/mendersoftware/devicehub/store"
	storemocks "github.com/mendersoftware/devicehub/store/mocks"
)

func TestSubmitOperationRejectsEmptyTargetList(t *testing.T) {
	ds := &storemocks.DataStore{}
	b := &busmocks.Client{}
	mgr := NewBatchOperationManager(ds, b, NewHandlerRegistry(),
		fixedClock(time.Now()))

	err := mgr.SubmitOperation(context.Background(),
		&model.BatchOperation{
			OperationType: "InvokeCommand",
		})
	var verr validation.Errors
	assert.ErrorAs(t, err, &verr)
	ds.AssertNotCalled(t, "CreateBatchOperation",
		mock.Anything, mock.Anything)
}

func TestSubmitOperationTokenConflict(t *testing.T) {
	ctx := context.Background()

	ds := &storemocks.DataStore{}
	defer ds.AssertExpectations(t)
	ds.On("CreateBatchOperation", ctx,
		mock.AnythingOfType("*model.BatchOperation")).
		Return(store.ErrOperationExists)
	b := &busmocks.Client{}
	defer b.AssertExpectations(t)

	mgr := NewBatchOperationManager(ds, b, NewHandlerRegistry(),
		fixedClock(time.Now()))
	err := mgr.SubmitOperation(ctx, &model.BatchOperation{
		Token:         "op-1",
		OperationType: "InvokeCommand",
		DeviceTokens:  []string{"d1"},
	})
	assert.ErrorIs(t, err, ErrOperationExists)
	b.AssertNotCalled(t, "Publish",
		mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitOperationGeneratesTokenAndSchedules(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	ds := &storemocks.DataStore{}
	defer ds.AssertExpectations(t)
	ds.On("CreateBatchOperation", ctx,
		mock.MatchedBy(func(op *model.BatchOperation) bool {
			return op.Token != "" && op.CreatedTs.Equal(now)
		})).Return(nil)
	b := &busmocks.Client{}
	defer b.AssertExpectations(t)
	b.On("Publish", ctx, model.ChannelBatchOperations,
		mock.MatchedBy(func(msg bus.Message) bool {
			return msg.Key != ""
		})).Return(nil)

	mgr := NewBatchOperationManager(ds, b, NewHandlerRegistry(),
		fixedClock(now))
	operation := &model.BatchOperation{
		OperationType: "InvokeCommand",
		Parameters:    map[string]string{"command": "reboot"},
		DeviceTokens:  []string{"d1", "d2"},
	}
	err := mgr.SubmitOperation(ctx, operation)
	require.NoError(t, err)
	assert.NotEmpty(t, operation.Token)
}

func TestInitializeOperationExpandsAllElements(t *testing.T) {
	ctx := context.Background()

	operation := &model.BatchOperation{
		Token:         "op-1",
		OperationType: "InvokeCommand",
		DeviceTokens:  []string{"d1", "d2", "d3"},
	}

	ds := &storemocks.DataStore{}
	defer ds.AssertExpectations(t)
	ds.On("CreateBatchElements", ctx,
		mock.MatchedBy(func(elements []model.BatchElement) bool {
			if len(elements) != 3 {
				return false
			}
			for i, e := range elements {
				if e.OperationToken != "op-1" ||
					e.DeviceToken != operation.DeviceTokens[i] ||
					e.Index != int64(i) ||
					e.Status != model.ElementStatusUnprocessed {
					return false
				}
			}
			return true
		})).Return(nil)

	b := &busmocks.Client{}
	defer b.AssertExpectations(t)
	for _, token := range operation.DeviceTokens {
		key := "op-1/" + token
		b.On("Publish", ctx, model.ChannelBatchElements,
			mock.MatchedBy(func(msg bus.Message) bool {
				return msg.Key == key
			})).Return(nil).Once()
	}

	mgr := NewBatchOperationManager(ds, b, NewHandlerRegistry(),
		fixedClock(time.Now()))
	err := mgr.InitializeOperation(ctx, operation)
	assert.NoError(t, err)
}

func TestInitializeOperationNoTargetsDropped(t *testing.T) {
	ctx := context.Background()

	ds := &storemocks.DataStore{}
	b := &busmocks.Client{}

	mgr := NewBatchOperationManager(ds, b, NewHandlerRegistry(),
		fixedClock(time.Now()))
	// a zero-element operation can never expand; it is dropped instead
	// of erroring into endless redelivery
	err := mgr.InitializeOperation(ctx, &model.BatchOperation{
		Token:         "op-1",
		OperationType: "InvokeCommand",
	})
	assert.NoError(t, err)
	ds.AssertNotCalled(t, "CreateBatchElements",
		mock.Anything, mock.Anything)
	b.AssertNotCalled(t, "Publish",
		mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessElementSkipsTerminal(t *testing.T) {
	ctx := context.Background()

	operation := &model.BatchOperation{
		Token:         "op-1",
		OperationType: "InvokeCommand",
		DeviceTokens:  []string{"d1"},
	}
	processed := time.Now()
	terminal := &model.BatchElement{
		OperationToken: "op-1",
		DeviceToken:    "d1",
		Status:         model.ElementStatusSucceeded,
		ProcessedTs:    &processed,
	}

	ds := &storemocks.DataStore{}
	defer ds.AssertExpectations(t)
	ds.On("GetBatchOperation", ctx, "op-1").Return(operation, nil)
	ds.On("GetBatchElement", ctx, "op-1", "d1").Return(terminal, nil)

	invoked := false
	registry := NewHandlerRegistry()
	registry.Register("InvokeCommand", OperationHandlerFunc(func(
		context.Context, *model.BatchOperation, *model.BatchElement,
	) error {
		invoked = true
		return nil
	}))

	mgr := NewBatchOperationManager(ds, &busmocks.Client{}, registry,
		fixedClock(time.Now()))
	err := mgr.ProcessElement(ctx, model.BatchElementRef{
		OperationToken: "op-1",
		DeviceToken:    "d1",
	})
	require.NoError(t, err)
	assert.False(t, invoked,
		"a terminal element must never be re-executed")
	ds.AssertNotCalled(t, "SetBatchElementResult", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		mock.Anything)
}

func TestProcessElementMissingHandler(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	operation := &model.BatchOperation{
		Token:         "op-1",
		OperationType: "FirmwareRollout",
		DeviceTokens:  []string{"d1"},
	}
	element := &model.BatchElement{
		OperationToken: "op-1",
		DeviceToken:    "d1",
		Status:         model.ElementStatusUnprocessed,
	}

	ds := &storemocks.DataStore{}
	defer ds.AssertExpectations(t)
	ds.On("GetBatchOperation", ctx, "op-1").Return(operation, nil)
	ds.On("GetBatchElement", ctx, "op-1", "d1").Return(element, nil)
	ds.On("SetBatchElementResult", ctx, "op-1", "d1",
		model.ElementStatusFailed,
		mock.MatchedBy(func(reason string) bool {
			return reason != ""
		}), now).Return(true, nil)

	mgr := NewBatchOperationManager(ds, &busmocks.Client{},
		NewHandlerRegistry(), fixedClock(now))
	err := mgr.ProcessElement(ctx, model.BatchElementRef{
		OperationToken: "op-1",
		DeviceToken:    "d1",
	})
	assert.NoError(t, err)
}

func TestProcessElementHandlerPanic(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	operation := &model.BatchOperation{
		Token:         "op-1",
		OperationType: "InvokeCommand",
		DeviceTokens:  []string{"d1"},
	}
	element := &model.BatchElement{
		OperationToken: "op-1",
		DeviceToken:    "d1",
		Status:         model.ElementStatusUnprocessed,
	}

	ds := &storemocks.DataStore{}
	defer ds.AssertExpectations(t)
	ds.On("GetBatchOperation", ctx, "op-1").Return(operation, nil)
	ds.On("GetBatchElement", ctx, "op-1", "d1").Return(element, nil)
	ds.On("SetBatchElementResult", ctx, "op-1", "d1",
		model.ElementStatusFailed,
		mock.MatchedBy(func(reason string) bool {
			return reason != ""
		}), now).Return(true, nil)

	registry := NewHandlerRegistry()
	registry.Register("InvokeCommand", OperationHandlerFunc(func(
		context.Context, *model.BatchOperation, *model.BatchElement,
	) error {
		panic("boom")
	}))

	mgr := NewBatchOperationManager(ds, &busmocks.Client{}, registry,
		fixedClock(now))
	err := mgr.ProcessElement(ctx, model.BatchElementRef{
		OperationToken: "op-1",
		DeviceToken:    "d1",
	})
	assert.NoError(t, err,
		"a handler panic must fail the element, not the worker")
}

// TestBatchOperationMixedOutcome runs an operation over two devices where
// one succeeds and one fails, and verifies the per-element results and the
// derived operation status.
func TestBatchOperationMixedOutcome(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	operation := &model.BatchOperation{
		Token:         "op-1",
		OperationType: "InvokeCommand",
		Parameters:    map[string]string{"command": "reboot"},
		DeviceTokens:  []string{"d1", "d2"},
		CreatedTs:     now,
	}
	elements := map[string]*model.BatchElement{
		"d1": {
			OperationToken: "op-1", DeviceToken: "d1",
			Index: 0, Status: model.ElementStatusUnprocessed,
		},
		"d2": {
			OperationToken: "op-1", DeviceToken: "d2",
			Index: 1, Status: model.ElementStatusUnprocessed,
		},
	}

	ds := &storemocks.DataStore{}
	defer ds.AssertExpectations(t)
	ds.On("GetBatchOperation", ctx, "op-1").Return(operation, nil)
	for token, element := range elements {
		ds.On("GetBatchElement", ctx, "op-1", token).
			Return(element, nil)
	}
	ds.On("SetBatchElementResult", ctx, "op-1", "d1",
		model.ElementStatusSucceeded, "", now).Return(true, nil)
	ds.On("SetBatchElementResult", ctx, "op-1", "d2",
		model.ElementStatusFailed,
		mock.MatchedBy(func(reason string) bool {
			return reason != ""
		}), now).Return(true, nil)

	registry := NewHandlerRegistry()
	registry.Register("InvokeCommand", OperationHandlerFunc(func(
		_ context.Context,
		_ *model.BatchOperation,
		element *model.BatchElement,
	) error {
		if element.DeviceToken == "d2" {
			return errors.New("device unreachable")
		}
		return nil
	}))

	mgr := NewBatchOperationManager(ds, &busmocks.Client{}, registry,
		fixedClock(now))
	for _, token := range operation.DeviceTokens {
		err := mgr.ProcessElement(ctx, model.BatchElementRef{
			OperationToken: "op-1",
			DeviceToken:    token,
		})
		require.NoError(t, err)
	}

	ds.On("GetBatchOperationStatus", ctx, "op-1").
		Return(&model.BatchOperationStatus{
			Token:     "op-1",
			Total:     2,
			Succeeded: 1,
			Failed:    1,
			Complete:  true,
		}, nil)
	status, err := mgr.GetOperationStatus(ctx, "op-1")
	require.NoError(t, err)
	assert.True(t, status.Complete)
	assert.Equal(t, int64(1), status.Succeeded)
	assert.Equal(t, int64(1), status.Failed)
}

func TestGetOperationNotFound(t *testing.T) {
	ctx := context.Background()

	ds := &storemocks.DataStore{}
	defer ds.AssertExpectations(t)
	ds.On("GetBatchOperation", ctx, "nope").Return(nil, nil)

	mgr := NewBatchOperationManager(ds, &busmocks.Client{},
		NewHandlerRegistry(), fixedClock(time.Now()))
	_, err := mgr.GetOperation(ctx, "nope")
	assert.ErrorIs(t, err, ErrOperationNotFound)
}
