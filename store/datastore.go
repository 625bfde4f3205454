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

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mendersoftware/devicehub/model"
)

var (
	ErrOperationExists = errors.New("store: batch operation already exists")
)

// DataStore interface for DataStore services
//
//nolint:lll - skip line length check for interface declaration.
//go:generate ../utils/mockgen.sh
type DataStore interface {
	Ping(ctx context.Context) error

	// ListTenants returns the IDs of all tenants with device hub data,
	// the default tenant ("") included. Device states live in per-tenant
	// databases, so any pass over all of them starts here.
	ListTenants(ctx context.Context) ([]string, error)

	// GetDeviceState returns nil without error when no state record
	// exists for the assignment yet.
	GetDeviceState(ctx context.Context, assignmentID uuid.UUID) (*model.DeviceState, error)
	UpsertDeviceState(ctx context.Context, state *model.DeviceState) error
	// ListMissingCandidates returns states with no interaction since the
	// cutoff and presence not yet flagged missing.
	ListMissingCandidates(ctx context.Context, cutoff time.Time, limit int64) ([]model.DeviceState, error)
	// SetPresenceMissing flags presence missing if it is not flagged
	// already. Returns false when another scan got there first.
	SetPresenceMissing(ctx context.Context, assignmentID uuid.UUID, when time.Time) (bool, error)

	CreateBatchOperation(ctx context.Context, operation *model.BatchOperation) error
	// GetBatchOperation returns nil without error for an unknown token.
	GetBatchOperation(ctx context.Context, token string) (*model.BatchOperation, error)
	// CreateBatchElements inserts the elements of one operation,
	// skipping any that exist already so that a redelivered expansion
	// message converges instead of failing.
	CreateBatchElements(ctx context.Context, elements []model.BatchElement) error
	// GetBatchElement returns nil without error for an unknown pair.
	GetBatchElement(ctx context.Context, operationToken, deviceToken string) (*model.BatchElement, error)
	ListBatchElements(ctx context.Context, operationToken string, skip, limit int64) ([]model.BatchElement, error)
	// SetBatchElementResult records the terminal status of an element.
	// The write is conditional on the element still being unprocessed;
	// returns false when it was already terminal.
	SetBatchElementResult(ctx context.Context, operationToken, deviceToken string, status model.ElementStatus, reason string, processedAt time.Time) (bool, error)
	// GetBatchOperationStatus derives the operation status from the
	// element statuses on demand.
	GetBatchOperationStatus(ctx context.Context, token string) (*model.BatchOperationStatus, error)

	Close() error
}
