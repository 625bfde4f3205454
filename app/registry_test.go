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

	"github.com/stretchr/testify/assert"

	"github.com/mendersoftware/devicehub/model"
)

func TestHandlerRegistry(t *testing.T) {
	registry := NewHandlerRegistry()
	assert.Nil(t, registry.Resolve("InvokeCommand"))

	noop := OperationHandlerFunc(func(
		context.Context, *model.BatchOperation, *model.BatchElement,
	) error {
		return nil
	})
	registry.Register("InvokeCommand", noop)
	assert.NotNil(t, registry.Resolve("InvokeCommand"))
	assert.Nil(t, registry.Resolve("FirmwareRollout"))
}
