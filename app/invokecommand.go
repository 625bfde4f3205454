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

	"github.com/mendersoftware/devicehub/client/commands"
	"github.com/mendersoftware/devicehub/model"
)

// OperationTypeInvokeCommand is the operation type handled by
// InvokeCommandHandler.
const OperationTypeInvokeCommand = "InvokeCommand"

// operation parameter keys understood by InvokeCommandHandler
const paramCommand = "command"

// InvokeCommandHandler delivers the command named by the operation
// parameters to each target device through the command-delivery client.
type InvokeCommandHandler struct {
	commands commands.Client
}

// NewInvokeCommandHandler returns a new InvokeCommandHandler
func NewInvokeCommandHandler(c commands.Client) *InvokeCommandHandler {
	return &InvokeCommandHandler{commands: c}
}

// Process implements OperationHandler
func (h *InvokeCommandHandler) Process(
	ctx context.Context,
	operation *model.BatchOperation,
	element *model.BatchElement,
) error {
	command := operation.Parameters[paramCommand]
	if command == "" {
		return errors.Errorf(
			"operation %q is missing the %q parameter",
			operation.Token, paramCommand)
	}
	parameters := make(map[string]string, len(operation.Parameters)-1)
	for key, value := range operation.Parameters {
		if key == paramCommand {
			continue
		}
		parameters[key] = value
	}
	err := h.commands.Invoke(ctx, commands.InvocationRequest{
		DeviceToken: element.DeviceToken,
		Command:     command,
		Parameters:  parameters,
	})
	return errors.Wrapf(err, "failed to invoke %q on device %q",
		command, element.DeviceToken)
}
