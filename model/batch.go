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

package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ElementStatus is the processing status of a single batch element. The only
// allowed transition is Unprocessed to one of the terminal statuses; a
// terminal element is never re-executed.
type ElementStatus string

const (
	ElementStatusUnprocessed ElementStatus = "unprocessed"
	ElementStatusSucceeded   ElementStatus = "succeeded"
	ElementStatusFailed      ElementStatus = "failed"
)

// Terminal reports whether the status is a terminal one.
func (s ElementStatus) Terminal() bool {
	return s == ElementStatusSucceeded || s == ElementStatusFailed
}

// BatchOperation is a bulk operation request expanded into one element per
// target device. Immutable after creation.
type BatchOperation struct {
	Token         string            `json:"token" bson:"_id"`
	OperationType string            `json:"operation_type" bson:"operation_type"`
	Parameters    map[string]string `json:"parameters,omitempty" bson:"parameters,omitempty"`
	DeviceTokens  []string          `json:"device_tokens" bson:"device_tokens"`
	CreatedTs     time.Time         `json:"created_ts" bson:"created_ts"`
}

// Validate validates the batch operation structure. An empty device token
// list rejects the whole operation before any expansion takes place.
func (o BatchOperation) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Token, validation.Required),
		validation.Field(&o.OperationType, validation.Required),
		validation.Field(&o.DeviceTokens, validation.Required,
			validation.Length(1, 0)),
	)
}

// BatchElement is the unit of work produced by expanding a batch operation:
// one per (operation, device) pair, indexed in request order.
type BatchElement struct {
	OperationToken string        `json:"operation_token" bson:"operation_token"`
	DeviceToken    string        `json:"device_token" bson:"device_token"`
	Index          int64         `json:"index" bson:"index"`
	Status         ElementStatus `json:"status" bson:"status"`
	Reason         string        `json:"reason,omitempty" bson:"reason,omitempty"`
	ProcessedTs    *time.Time    `json:"processed_ts,omitempty" bson:"processed_ts,omitempty"`
}

// BatchElementRef identifies one element on the work-distribution channel.
type BatchElementRef struct {
	OperationToken string `json:"operation_token" msgpack:"operation_token"`
	DeviceToken    string `json:"device_token" msgpack:"device_token"`
}

// Key is the partition key of the element message.
func (r BatchElementRef) Key() string {
	return r.OperationToken + "/" + r.DeviceToken
}

// BatchOperationStatus is the derived status of an operation. Completion is
// computed on demand from the terminal element counts; the counts are a
// read-only projection and never the source of truth for any element.
type BatchOperationStatus struct {
	Token       string `json:"token"`
	Total       int64  `json:"total"`
	Unprocessed int64  `json:"unprocessed"`
	Succeeded   int64  `json:"succeeded"`
	Failed      int64  `json:"failed"`
	Complete    bool   `json:"complete"`
}
