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

package worker

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mendersoftware/go-lib-micro/log"

	"github.com/mendersoftware/devicehub/app"
	"github.com/mendersoftware/devicehub/client/bus"
	"github.com/mendersoftware/devicehub/model"
)

// NewBatchExpansionWorker returns the stage that expands accepted batch
// operations into per-device elements.
func NewBatchExpansionWorker(batch *app.BatchOperationManager) Worker {
	return Worker{
		Channel: model.ChannelBatchOperations,
		Group:   model.GroupBatchExpansion,
		Handler: func(ctx context.Context, msg bus.Message) error {
			return handleBatchOperation(
				tenantContext(ctx, msg), batch, msg)
		},
	}
}

func handleBatchOperation(
	ctx context.Context,
	batch *app.BatchOperationManager,
	msg bus.Message,
) error {
	l := log.FromContext(ctx)
	var operation model.BatchOperation
	if err := msgpack.Unmarshal(msg.Data, &operation); err != nil {
		l.Errorf("dropping undecodable batch operation: %s", err)
		return nil
	}
	err := batch.InitializeOperation(ctx, &operation)
	return errors.Wrapf(err, "failed to expand operation %q",
		operation.Token)
}

// NewBatchExecutionWorker returns the stage that executes individual batch
// elements through the registered operation handlers.
func NewBatchExecutionWorker(batch *app.BatchOperationManager) Worker {
	return Worker{
		Channel: model.ChannelBatchElements,
		Group:   model.GroupBatchExecution,
		Handler: func(ctx context.Context, msg bus.Message) error {
			return handleBatchElement(
				tenantContext(ctx, msg), batch, msg)
		},
	}
}

func handleBatchElement(
	ctx context.Context,
	batch *app.BatchOperationManager,
	msg bus.Message,
) error {
	l := log.FromContext(ctx)
	var ref model.BatchElementRef
	if err := msgpack.Unmarshal(msg.Data, &ref); err != nil {
		l.Errorf("dropping undecodable batch element ref: %s", err)
		return nil
	}
	err := batch.ProcessElement(ctx, ref)
	return errors.Wrapf(err, "failed to process element %q", ref.Key())
}
