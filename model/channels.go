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

// Bus channel names. Each channel is a sequence of key/value records; keys
// partition the channel so that records sharing a key are processed in
// order by a single worker at a time.
const (
	ChannelDecodedEvents      = "decoded-events"
	ChannelUnregisteredEvents = "unregistered-events"
	ChannelInvalidEvents      = "invalid-events"
	ChannelEnrichedEvents     = "enriched-events"
	ChannelStateChangeEvents  = "state-change-events"
	ChannelBatchOperations    = "unprocessed-batch-operations"
	ChannelBatchElements      = "unprocessed-batch-elements"
)

// Consumer group names, one per worker stage.
const (
	GroupInboundPipeline = "devicehub-inbound"
	GroupStateMerge      = "devicehub-state-merge"
	GroupBatchExpansion  = "devicehub-batch-expansion"
	GroupBatchExecution  = "devicehub-batch-execution"
	GroupStateWatch      = "devicehub-state-watch"
)
