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
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mendersoftware/go-lib-micro/identity"
	"github.com/mendersoftware/go-lib-micro/log"

	"github.com/mendersoftware/devicehub/client/bus"
	"github.com/mendersoftware/devicehub/client/events"
	"github.com/mendersoftware/devicehub/model"
	"github.com/mendersoftware/devicehub/store"
	"github.com/mendersoftware/devicehub/utils"
)

// number of candidate states examined per scan pass
const presenceScanBatchSize = 500

// NotificationStrategy decides whether a detected presence change becomes a
// state-change event. It is the debounce point of presence detection and is
// swappable without touching the PresenceManager.
type NotificationStrategy interface {
	ShouldGenerateEvent(state *model.DeviceState, change model.StateChange) bool
}

// SendOnceNotificationStrategy emits a single event per missing episode and
// suppresses further ones until the device comes back.
type SendOnceNotificationStrategy struct{}

// ShouldGenerateEvent implements NotificationStrategy
func (SendOnceNotificationStrategy) ShouldGenerateEvent(
	state *model.DeviceState,
	change model.StateChange,
) bool {
	if change.NewState == model.PresenceStateMissing {
		return state.PresenceMissingSince == nil
	}
	return true
}

// PresenceManagerConfig is the static configuration of a PresenceManager.
type PresenceManagerConfig struct {
	// MissingThreshold is the silence duration after which a device is
	// considered missing.
	MissingThreshold time.Duration
	// EmitPresent emits a symmetric "present" state-change event when a
	// missing device reappears.
	EmitPresent bool
}

// PresenceManager derives device liveness from the recency of the last
// interaction recorded in device state. Detection runs as a periodic scan;
// clearing happens on merge and is reported through NotifyPresent.
type PresenceManager struct {
	store    store.DataStore
	events   events.Client
	bus      bus.Client
	strategy NotificationStrategy
	clock    utils.Clock
	config   PresenceManagerConfig
}

// NewPresenceManager returns a new PresenceManager
func NewPresenceManager(
	ds store.DataStore,
	ev events.Client,
	b bus.Client,
	strategy NotificationStrategy,
	clock utils.Clock,
	config PresenceManagerConfig,
) *PresenceManager {
	if strategy == nil {
		strategy = SendOnceNotificationStrategy{}
	}
	return &PresenceManager{
		store:    ds,
		events:   ev,
		bus:      b,
		strategy: strategy,
		clock:    clock,
		config:   config,
	}
}

// Scan runs one presence detection pass over every tenant, the default
// tenant included. Device states live in per-tenant databases, so each
// tenant is scanned under its own identity.
func (m *PresenceManager) Scan(ctx context.Context) (int, error) {
	tenants, err := m.store.ListTenants(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to list tenants")
	}
	flagged := 0
	for _, tenant := range tenants {
		tctx := ctx
		if tenant != "" {
			tctx = identity.WithContext(ctx, &identity.Identity{
				Tenant: tenant,
			})
		}
		n, err := m.ScanOnce(tctx)
		flagged += n
		if err != nil {
			return flagged, errors.Wrapf(err,
				"presence scan failed for tenant %q", tenant)
		}
	}
	return flagged, nil
}

// ScanOnce detects devices that went missing since the previous pass and
// returns the number of missing episodes flagged. Scans of the same data
// are idempotent: the missing flag is written conditionally and candidate
// selection skips already-flagged states.
func (m *PresenceManager) ScanOnce(ctx context.Context) (int, error) {
	l := log.FromContext(ctx)
	now := m.clock.Now()
	cutoff := now.Add(-m.config.MissingThreshold)

	states, err := m.store.ListMissingCandidates(
		ctx, cutoff, presenceScanBatchSize)
	if err != nil {
		return 0, errors.Wrap(err, "failed to list presence candidates")
	}

	flagged := 0
	for i := range states {
		state := &states[i]
		change := model.StateChange{
			Category:      model.StateChangeCategoryPresence,
			NewState:      model.PresenceStateMissing,
			PreviousState: model.PresenceStatePresent,
		}
		if !m.strategy.ShouldGenerateEvent(state, change) {
			continue
		}
		updated, err := m.store.SetPresenceMissing(
			ctx, state.AssignmentID, now)
		if err != nil {
			return flagged, err
		} else if !updated {
			// another scan flagged it in the meantime
			continue
		}
		state.PresenceMissingSince = &now
		if err := m.emitStateChange(ctx, state, change, now); err != nil {
			return flagged, err
		}
		l.Infof("device %q missing since %s",
			state.DeviceToken, state.LastInteraction)
		flagged++
	}
	return flagged, nil
}

// NotifyPresent reports that a merge cleared a missing episode, emitting
// the symmetric "present" state-change event when configured.
func (m *PresenceManager) NotifyPresent(
	ctx context.Context,
	state *model.DeviceState,
) error {
	if !m.config.EmitPresent {
		return nil
	}
	change := model.StateChange{
		Category:      model.StateChangeCategoryPresence,
		NewState:      model.PresenceStatePresent,
		PreviousState: model.PresenceStateMissing,
	}
	if !m.strategy.ShouldGenerateEvent(state, change) {
		return nil
	}
	return m.emitStateChange(ctx, state, change, m.clock.Now())
}

// emitStateChange appends a presence state-change event to the durable
// event store and publishes it on the state-change channel.
func (m *PresenceManager) emitStateChange(
	ctx context.Context,
	state *model.DeviceState,
	change model.StateChange,
	now time.Time,
) error {
	event := &model.EnrichedDeviceEvent{
		ID: uuid.New(),
		DecodedDeviceEvent: model.DecodedDeviceEvent{
			DeviceToken: state.DeviceToken,
			Kind:        model.EventKindStateChange,
			OccurredAt:  now,
			StateChange: &change,
		},
		DeviceID:     state.DeviceID,
		DeviceTypeID: state.DeviceTypeID,
		AssignmentID: state.AssignmentID,
		CustomerID:   state.CustomerID,
		AreaID:       state.AreaID,
		AssetID:      state.AssetID,
	}
	if err := m.events.AppendEvent(ctx, event); err != nil {
		return errors.Wrap(err, "failed to append state-change event")
	}
	data, err := msgpack.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal state-change event")
	}
	err = m.bus.Publish(ctx, model.ChannelStateChangeEvents, bus.Message{
		TenantID: tenantFromContext(ctx),
		Key:      event.AssignmentID.String(),
		Data:     data,
	})
	return errors.Wrap(err, "failed to publish state-change event")
}

func tenantFromContext(ctx context.Context) string {
	if id := identity.FromContext(ctx); id != nil {
		return id.Tenant
	}
	return ""
}
