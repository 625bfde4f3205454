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
	"sync"

	"github.com/mendersoftware/devicehub/model"
)

// OperationHandler processes a single batch element. A nil return marks the
// element succeeded, a non-nil error marks it failed with the error text as
// the reason. Handlers must tolerate redelivery of the same element.
type OperationHandler interface {
	Process(
		ctx context.Context,
		operation *model.BatchOperation,
		element *model.BatchElement,
	) error
}

// OperationHandlerFunc adapts a plain function to the OperationHandler
// interface.
type OperationHandlerFunc func(
	ctx context.Context,
	operation *model.BatchOperation,
	element *model.BatchElement,
) error

// Process implements OperationHandler
func (f OperationHandlerFunc) Process(
	ctx context.Context,
	operation *model.BatchOperation,
	element *model.BatchElement,
) error {
	return f(ctx, operation, element)
}

// HandlerRegistry maps operation types to their handlers. Registration
// normally happens at startup, but the registry is safe for concurrent
// use so handlers can also be added while workers are running.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]OperationHandler
}

// NewHandlerRegistry returns a new, empty HandlerRegistry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[string]OperationHandler),
	}
}

// Register binds a handler to an operation type, replacing any previous
// binding for the same type.
func (r *HandlerRegistry) Register(operationType string, h OperationHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[operationType] = h
}

// Resolve returns the handler bound to the operation type, or nil when the
// type is unknown.
func (r *HandlerRegistry) Resolve(operationType string) OperationHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[operationType]
}
